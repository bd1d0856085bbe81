// Package socket is used for handling candy machine event streaming
package socket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/xid"
	"go.opentelemetry.io/otel"

	"github.com/NFT-Forge-sol/nft-forge/x/core"
	"github.com/NFT-Forge-sol/nft-forge/x/machine"
)

var tracer = otel.Tracer("socket")

// Handler is handles websocket
type Handler interface {
	Connect(c echo.Context) error
	CurrentConnectionCount() int64
}

type handler struct {
	service Service
	router  *Router
	machine machine.Service
}

// NewHandler creates a new socket handler
func NewHandler(service Service, router *Router, machineService machine.Service) Handler {
	return &handler{service, router, machineService}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Connect is used for start websocket connection
func (h handler) Connect(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"failed to upgrade websocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}

	connID := xid.New().String()
	h.service.AddClient(ws)
	defer h.service.RemoveClient(ws)

	slog.Info("client connected", slog.String("connID", connID), slog.String("module", "socket"))
	defer slog.Info("client disconnected", slog.String("connID", connID), slog.String("module", "socket"))

	h.greet(c.Request().Context(), ws, connID)

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			break
		}
		h.router.Handle(c.Request().Context(), ws, raw)
	}

	return nil
}

// greet welcomes a new connection and pushes the current record snapshot to
// it alone, so a client has a full view before its first request.
// A failed send here is logged, never fatal.
func (h handler) greet(ctx context.Context, ws *websocket.Conn, connID string) {
	hello, _ := json.Marshal(core.Message{
		Type:    core.MessageTypeConnectionSuccess,
		Payload: "connected",
	})
	if err := h.service.NotifyClient(ws, hello); err != nil {
		slog.Info(
			"failed to greet client",
			slog.String("connID", connID),
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return
	}

	machines, err := h.machine.GetAll(ctx)
	if err != nil {
		slog.Error(
			"failed to load snapshot for new client",
			slog.String("connID", connID),
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return
	}
	if machines == nil {
		machines = []core.CandyMachine{}
	}

	snapshot, _ := json.Marshal(core.Message{
		Type:    core.MessageTypeCandyMachinesList,
		Payload: machines,
	})
	if err := h.service.NotifyClient(ws, snapshot); err != nil {
		slog.Info(
			"failed to push snapshot to client",
			slog.String("connID", connID),
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
	}
}

// CurrentConnectionCount returns the number of open connections
func (h handler) CurrentConnectionCount() int64 {
	return h.service.CurrentConnectionCount()
}
