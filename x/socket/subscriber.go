package socket

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NFT-Forge-sol/nft-forge/x/util"
)

// Subscriber forwards record change events from the redis broadcast channel
// to every connected client. Store mutations publish instead of writing to
// sockets directly, so a slow store call never stalls delivery that is
// already in flight, and multiple relay instances converge.
type Subscriber interface {
	Start(ctx context.Context)
}

type subscriber struct {
	rdb     *redis.Client
	service Service
	config  util.Config
}

// NewSubscriber creates a new event subscriber
func NewSubscriber(rdb *redis.Client, service Service, config util.Config) Subscriber {
	return &subscriber{rdb, service, config}
}

// Start launches the forwarding routine
func (s *subscriber) Start(ctx context.Context) {
	go s.watchEventRoutine(ctx)
}

func (s *subscriber) watchEventRoutine(ctx context.Context) {
	pubsub := s.rdb.Subscribe(ctx, s.config.Forge.EventChannel)
	defer pubsub.Close()

	for {
		message, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error(
				"failed to receive broadcast event",
				slog.String("error", err.Error()),
				slog.String("module", "socket"),
			)
			time.Sleep(time.Second)
			continue
		}

		s.service.NotifyAllClients([]byte(message.Payload))
	}
}
