package socket

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/NFT-Forge-sol/nft-forge/x/core"
	mock_machine "github.com/NFT-Forge-sol/nft-forge/x/machine/mock"
)

// recordingService captures per-connection sends so tests can assert who an
// error reply went to without real sockets.
type recordingService struct {
	sent []core.Message
}

func (s *recordingService) AddClient(ws *websocket.Conn)    {}
func (s *recordingService) RemoveClient(ws *websocket.Conn) {}
func (s *recordingService) NotifyAllClients(message []byte) {}
func (s *recordingService) CurrentConnectionCount() int64   { return 0 }

func (s *recordingService) NotifyClient(ws *websocket.Conn, message []byte) error {
	var parsed core.Message
	if err := json.Unmarshal(message, &parsed); err != nil {
		return err
	}
	s.sent = append(s.sent, parsed)
	return nil
}

func (s *recordingService) lastError() string {
	if len(s.sent) == 0 {
		return ""
	}
	last := s.sent[len(s.sent)-1]
	if last.Type != core.MessageTypeError {
		return ""
	}
	text, _ := last.Payload.(string)
	return text
}

func TestRouterRejectsBadFrames(t *testing.T) {

	var ctx = context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no store call may happen for any of these
	mockMachine := mock_machine.NewMockService(ctrl)
	recorder := &recordingService{}
	router := NewRouter(mockMachine, recorder)

	router.Handle(ctx, nil, []byte("this is not json"))
	assert.Contains(t, recorder.lastError(), "malformed")

	router.Handle(ctx, nil, []byte(`{"payload": {}}`))
	assert.Contains(t, recorder.lastError(), "missing type")

	router.Handle(ctx, nil, []byte(`{"type": "SELF_DESTRUCT"}`))
	assert.Contains(t, recorder.lastError(), "unknown message type")

	router.Handle(ctx, nil, []byte(`{"type": "newCandyMachine"}`))
	assert.Contains(t, recorder.lastError(), "requires a candyMachine")

	router.Handle(ctx, nil, []byte(`{"type": "CANDY_MACHINE_MINTED"}`))
	assert.Contains(t, recorder.lastError(), "requires an id")

	assert.Len(t, recorder.sent, 5)
}

func TestRouterDispatch(t *testing.T) {

	var ctx = context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMachine := mock_machine.NewMockService(ctrl)
	recorder := &recordingService{}
	router := NewRouter(mockMachine, recorder)

	// list requests fan out to everyone, the requester gets no direct reply
	mockMachine.EXPECT().BroadcastList(gomock.Any()).Return(nil).Times(2)
	router.Handle(ctx, nil, []byte(`{"type": "GET_CANDY_MACHINES"}`))
	router.Handle(ctx, nil, []byte(`{"type": "CANDY_MACHINE_CREATED"}`))
	assert.Len(t, recorder.sent, 0)

	mockMachine.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, machine core.CandyMachine) (core.CandyMachine, error) {
			assert.Equal(t, "machine0", machine.ID)
			assert.Equal(t, "Forge", machine.Name)
			return machine, nil
		})
	router.Handle(ctx, nil, []byte(`{"type": "newCandyMachine", "candyMachine": {"id": "machine0", "name": "Forge"}}`))
	assert.Len(t, recorder.sent, 0)

	mockMachine.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(core.CandyMachine{}, core.NewErrorAlreadyExists())
	router.Handle(ctx, nil, []byte(`{"type": "newCandyMachine", "candyMachine": {"id": "machine0"}}`))
	assert.Contains(t, recorder.lastError(), "already exists")

	// the mint id is accepted both top-level and wrapped in a payload
	mockMachine.EXPECT().IncrementMinted(gomock.Any(), "machine0").Return(core.CandyMachine{}, nil).Times(2)
	router.Handle(ctx, nil, []byte(`{"type": "CANDY_MACHINE_MINTED", "id": "machine0"}`))
	router.Handle(ctx, nil, []byte(`{"type": "CANDY_MACHINE_MINTED", "payload": {"id": "machine0"}}`))

	mockMachine.EXPECT().
		IncrementMinted(gomock.Any(), "machine1").
		Return(core.CandyMachine{}, core.NewErrorSoldOut())
	router.Handle(ctx, nil, []byte(`{"type": "CANDY_MACHINE_MINTED", "id": "machine1"}`))
	assert.Contains(t, recorder.lastError(), "sold out")

	mockMachine.EXPECT().
		IncrementMinted(gomock.Any(), "machine2").
		Return(core.CandyMachine{}, core.NewErrorNotFound())
	router.Handle(ctx, nil, []byte(`{"type": "CANDY_MACHINE_MINTED", "id": "machine2"}`))
	assert.Contains(t, recorder.lastError(), "not found")
}
