package socket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

// registerHandler upgrades each request and parks the server side of the
// connection in the registry, the way the connect handler does.
type registerHandler struct {
	service Service
}

func (h *registerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := new(websocket.Upgrader).Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.service.AddClient(c)
	go func() {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				h.service.RemoveClient(c)
				return
			}
		}
	}()
}

func readWithDeadline(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	assert.NoError(t, err)
	return raw
}

func TestServiceBroadcast(t *testing.T) {

	service := NewService()
	server := httptest.NewServer(&registerHandler{service})
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	client1, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err)
	defer client1.Close()

	client2, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err)
	defer client2.Close()

	assert.Eventually(t, func() bool {
		return service.CurrentConnectionCount() == 2
	}, 5*time.Second, 10*time.Millisecond)

	// every client receives the identical frame
	service.NotifyAllClients([]byte(`{"type":"CANDY_MACHINES_LIST","payload":[]}`))
	assert.Equal(t, `{"type":"CANDY_MACHINES_LIST","payload":[]}`, string(readWithDeadline(t, client1)))
	assert.Equal(t, `{"type":"CANDY_MACHINES_LIST","payload":[]}`, string(readWithDeadline(t, client2)))

	// a departing client leaves the others untouched
	client1.Close()
	assert.Eventually(t, func() bool {
		return service.CurrentConnectionCount() == 1
	}, 5*time.Second, 10*time.Millisecond)

	service.NotifyAllClients([]byte(`still here`))
	assert.Equal(t, `still here`, string(readWithDeadline(t, client2)))
}

func TestServiceRemoveClientIdempotent(t *testing.T) {

	// the registry under test holds the client side here, so removal can be
	// exercised directly
	service := NewService()
	server := httptest.NewServer(&registerHandler{NewService()})
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err)

	service.AddClient(client)
	assert.Equal(t, int64(1), service.CurrentConnectionCount())

	service.RemoveClient(client)
	assert.Equal(t, int64(0), service.CurrentConnectionCount())

	service.RemoveClient(client)
	assert.Equal(t, int64(0), service.CurrentConnectionCount())
}
