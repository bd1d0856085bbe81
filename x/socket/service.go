package socket

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Service tracks the set of connected clients. It is the only component that
// writes to a client socket.
type Service interface {
	AddClient(ws *websocket.Conn)
	RemoveClient(ws *websocket.Conn)
	NotifyAllClients(message []byte)
	NotifyClient(ws *websocket.Conn, message []byte) error
	CurrentConnectionCount() int64
}

type service struct {
	clients      map[*websocket.Conn]bool
	clientsMutex *sync.Mutex
}

// NewService creates a new connection registry
func NewService() Service {
	return &service{
		make(map[*websocket.Conn]bool),
		&sync.Mutex{},
	}
}

// AddClient addes a connection to broadcast group
func (s *service) AddClient(ws *websocket.Conn) {
	s.clientsMutex.Lock()
	s.clients[ws] = true
	s.clientsMutex.Unlock()
}

// RemoveClient removes a connection from broadcast group.
// Removing a connection twice is a no-op.
func (s *service) RemoveClient(ws *websocket.Conn) {
	s.clientsMutex.Lock()
	delete(s.clients, ws)
	s.clientsMutex.Unlock()
	ws.Close()
}

// NotifyAllClients broadcasts message to all clients.
// A write failure drops that connection only; the remaining clients still
// receive the message.
func (s *service) NotifyAllClients(message []byte) {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()

	for client := range s.clients {
		err := client.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			slog.Info(
				"dropping client after failed write",
				slog.String("error", err.Error()),
				slog.String("module", "socket"),
			)
			delete(s.clients, client)
			client.Close()
		}
	}
}

// NotifyClient sends message to one connection only
func (s *service) NotifyClient(ws *websocket.Conn, message []byte) error {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()

	return ws.WriteMessage(websocket.TextMessage, message)
}

// CurrentConnectionCount returns the size of the broadcast group
func (s *service) CurrentConnectionCount() int64 {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()

	return int64(len(s.clients))
}
