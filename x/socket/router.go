package socket

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/NFT-Forge-sol/nft-forge/x/core"
	"github.com/NFT-Forge-sol/nft-forge/x/machine"
)

// Router interprets inbound frames and turns them into record operations.
// A bad frame or a store error only ever answers the offending sender;
// nothing here can take down the read loop or other clients.
type Router struct {
	machine machine.Service
	service Service
}

// NewRouter creates a new message router
func NewRouter(machineService machine.Service, service Service) *Router {
	return &Router{machineService, service}
}

// Handle dispatches a single inbound frame
func (r *Router) Handle(ctx context.Context, conn *websocket.Conn, raw []byte) {
	ctx, span := tracer.Start(ctx, "Socket.Router.Handle")
	defer span.End()

	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		slog.InfoContext(
			ctx, "received malformed frame",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		r.sendError(conn, "malformed message: not a json object")
		return
	}
	if req.Type == "" {
		r.sendError(conn, "malformed message: missing type")
		return
	}

	switch req.Type {
	case core.MessageTypeGetCandyMachines, core.MessageTypeCandyMachineCreated:
		// both are full-refresh triggers: re-read the store and fan the
		// list out to every client, not just the requester
		if err := r.machine.BroadcastList(ctx); err != nil {
			r.sendError(conn, "failed to load candy machines")
		}

	case core.MessageTypeNewCandyMachine:
		if req.CandyMachine == nil {
			r.sendError(conn, "newCandyMachine requires a candyMachine record")
			return
		}
		_, err := r.machine.Create(ctx, *req.CandyMachine)
		if err != nil {
			if errors.Is(err, core.ErrorAlreadyExists{}) {
				r.sendError(conn, "candy machine already exists")
				return
			}
			r.sendError(conn, "failed to save candy machine")
		}

	case core.MessageTypeCandyMachineMinted:
		id := req.mintTarget()
		if id == "" {
			r.sendError(conn, "mint notification requires an id")
			return
		}
		_, err := r.machine.IncrementMinted(ctx, id)
		if err != nil {
			if errors.Is(err, core.ErrorNotFound{}) {
				r.sendError(conn, "candy machine not found")
				return
			}
			if errors.Is(err, core.ErrorSoldOut{}) {
				r.sendError(conn, "candy machine is sold out")
				return
			}
			r.sendError(conn, "failed to update minted count")
		}

	default:
		slog.InfoContext(
			ctx, "received unknown message type",
			slog.String("type", req.Type),
			slog.String("module", "socket"),
		)
		r.sendError(conn, "unknown message type: "+req.Type)
	}
}

func (r *Router) sendError(conn *websocket.Conn, message string) {
	jsonstr, err := json.Marshal(core.Message{
		Type:    core.MessageTypeError,
		Payload: message,
	})
	if err != nil {
		return
	}

	err = r.service.NotifyClient(conn, jsonstr)
	if err != nil {
		slog.Info(
			"failed to deliver error to client",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
	}
}
