//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=mock/service.go
package machine

import (
	"context"
	"log/slog"

	"github.com/NFT-Forge-sol/nft-forge/x/core"
	"github.com/NFT-Forge-sol/nft-forge/x/util"
)

// Service is the candy machine service interface.
// Every successful mutation announces itself on the broadcast channel, so
// connected clients converge without polling.
type Service interface {
	GetAll(ctx context.Context) ([]core.CandyMachine, error)
	Get(ctx context.Context, id string) (core.CandyMachine, error)
	GetByCreator(ctx context.Context, creatorAddress string) ([]core.CandyMachine, error)
	Create(ctx context.Context, machine core.CandyMachine) (core.CandyMachine, error)
	Update(ctx context.Context, machine core.CandyMachine) (core.CandyMachine, error)
	IncrementMinted(ctx context.Context, id string) (core.CandyMachine, error)
	UpdateStatus(ctx context.Context, id string, status string) (core.CandyMachine, error)
	Count(ctx context.Context) (int64, error)
	BroadcastList(ctx context.Context) error
}

type service struct {
	repository Repository
	config     util.Config
}

// NewService creates a new candy machine service
func NewService(repository Repository, config util.Config) Service {
	return &service{repository, config}
}

// Count returns the number of candy machine records
func (s *service) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Machine.Service.Count")
	defer span.End()

	return s.repository.Count(ctx)
}

// GetAll returns all active candy machines
func (s *service) GetAll(ctx context.Context) ([]core.CandyMachine, error) {
	ctx, span := tracer.Start(ctx, "Machine.Service.GetAll")
	defer span.End()

	return s.repository.GetAll(ctx)
}

// Get returns a candy machine by its address
func (s *service) Get(ctx context.Context, id string) (core.CandyMachine, error) {
	ctx, span := tracer.Start(ctx, "Machine.Service.Get")
	defer span.End()

	return s.repository.Get(ctx, id)
}

// GetByCreator returns all active candy machines owned by a creator
func (s *service) GetByCreator(ctx context.Context, creatorAddress string) ([]core.CandyMachine, error) {
	ctx, span := tracer.Start(ctx, "Machine.Service.GetByCreator")
	defer span.End()

	return s.repository.GetByCreator(ctx, creatorAddress)
}

// Create persists a new candy machine and announces the refreshed list
func (s *service) Create(ctx context.Context, machine core.CandyMachine) (core.CandyMachine, error) {
	ctx, span := tracer.Start(ctx, "Machine.Service.Create")
	defer span.End()

	if machine.Status == "" {
		machine.Status = core.StatusActive
	}
	if !core.IsValidStatus(machine.Status) {
		return core.CandyMachine{}, core.NewErrorInvalidStatus()
	}

	created, err := s.repository.Create(ctx, machine)
	if err != nil {
		span.RecordError(err)
		return core.CandyMachine{}, err
	}

	if err := s.BroadcastList(ctx); err != nil {
		slog.ErrorContext(
			ctx, "failed to announce created machine",
			slog.String("error", err.Error()),
			slog.String("module", "machine"),
		)
	}

	return created, nil
}

// Update edits the display fields of a candy machine and announces the
// refreshed list
func (s *service) Update(ctx context.Context, machine core.CandyMachine) (core.CandyMachine, error) {
	ctx, span := tracer.Start(ctx, "Machine.Service.Update")
	defer span.End()

	updated, err := s.repository.Update(ctx, machine)
	if err != nil {
		span.RecordError(err)
		return core.CandyMachine{}, err
	}

	if err := s.BroadcastList(ctx); err != nil {
		slog.ErrorContext(
			ctx, "failed to announce updated machine",
			slog.String("error", err.Error()),
			slog.String("module", "machine"),
		)
	}

	return updated, nil
}

// IncrementMinted bumps the minted counter and announces the updated record
func (s *service) IncrementMinted(ctx context.Context, id string) (core.CandyMachine, error) {
	ctx, span := tracer.Start(ctx, "Machine.Service.IncrementMinted")
	defer span.End()

	updated, err := s.repository.IncrementMinted(ctx, id)
	if err != nil {
		span.RecordError(err)
		return core.CandyMachine{}, err
	}

	err = s.repository.PublishEvent(ctx, core.Message{
		Type:    core.MessageTypeMintedCountUpdated,
		Payload: updated,
	})
	if err != nil {
		slog.ErrorContext(
			ctx, "failed to announce minted count",
			slog.String("error", err.Error()),
			slog.String("module", "machine"),
		)
	}

	return updated, nil
}

// UpdateStatus sets the lifecycle status and announces the refreshed list
func (s *service) UpdateStatus(ctx context.Context, id string, status string) (core.CandyMachine, error) {
	ctx, span := tracer.Start(ctx, "Machine.Service.UpdateStatus")
	defer span.End()

	if !core.IsValidStatus(status) {
		return core.CandyMachine{}, core.NewErrorInvalidStatus()
	}

	updated, err := s.repository.UpdateStatus(ctx, id, status)
	if err != nil {
		span.RecordError(err)
		return core.CandyMachine{}, err
	}

	if err := s.BroadcastList(ctx); err != nil {
		slog.ErrorContext(
			ctx, "failed to announce status change",
			slog.String("error", err.Error()),
			slog.String("module", "machine"),
		)
	}

	return updated, nil
}

// BroadcastList fetches the full record list and publishes it as a
// CANDY_MACHINES_LIST message for every connected client.
// Full-list refresh keeps clients free of merge logic.
func (s *service) BroadcastList(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Machine.Service.BroadcastList")
	defer span.End()

	machines, err := s.repository.GetAll(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if machines == nil {
		machines = []core.CandyMachine{}
	}

	return s.repository.PublishEvent(ctx, core.Message{
		Type:    core.MessageTypeCandyMachinesList,
		Payload: machines,
	})
}
