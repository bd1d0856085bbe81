//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=mock/repository.go
package machine

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NFT-Forge-sol/nft-forge/x/core"
	"github.com/NFT-Forge-sol/nft-forge/x/util"
)

const countCacheKey = "machine_count"

// Repository is the candy machine repository interface.
// It is the only component that touches the record store.
type Repository interface {
	GetAll(ctx context.Context) ([]core.CandyMachine, error)
	Get(ctx context.Context, id string) (core.CandyMachine, error)
	GetByCreator(ctx context.Context, creatorAddress string) ([]core.CandyMachine, error)
	Create(ctx context.Context, machine core.CandyMachine) (core.CandyMachine, error)
	Update(ctx context.Context, machine core.CandyMachine) (core.CandyMachine, error)
	IncrementMinted(ctx context.Context, id string) (core.CandyMachine, error)
	UpdateStatus(ctx context.Context, id string, status string) (core.CandyMachine, error)
	Count(ctx context.Context) (int64, error)
	PublishEvent(ctx context.Context, message core.Message) error
}

type repository struct {
	db     *gorm.DB
	rdb    *redis.Client
	mc     *memcache.Client
	config util.Config
}

// NewRepository creates a new candy machine repository
func NewRepository(db *gorm.DB, rdb *redis.Client, mc *memcache.Client, config util.Config) Repository {
	return &repository{db, rdb, mc, config}
}

// GetAll returns all active candy machines, newest first
func (r *repository) GetAll(ctx context.Context) ([]core.CandyMachine, error) {
	ctx, span := tracer.Start(ctx, "Machine.Repository.GetAll")
	defer span.End()

	var machines []core.CandyMachine
	err := r.db.WithContext(ctx).
		Where("status = ?", core.StatusActive).
		Order("c_date desc").
		Find(&machines).Error
	return machines, err
}

// Get returns a candy machine by its address
func (r *repository) Get(ctx context.Context, id string) (core.CandyMachine, error) {
	ctx, span := tracer.Start(ctx, "Machine.Repository.Get")
	defer span.End()

	var machine core.CandyMachine
	err := r.db.WithContext(ctx).First(&machine, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.CandyMachine{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.CandyMachine{}, err
	}
	return machine, nil
}

// GetByCreator returns all active candy machines owned by a creator address
func (r *repository) GetByCreator(ctx context.Context, creatorAddress string) ([]core.CandyMachine, error) {
	ctx, span := tracer.Start(ctx, "Machine.Repository.GetByCreator")
	defer span.End()

	var machines []core.CandyMachine
	err := r.db.WithContext(ctx).
		Where("creator_address = ? and status = ?", creatorAddress, core.StatusActive).
		Order("c_date desc").
		Find(&machines).Error
	return machines, err
}

// Create persists a new candy machine.
// A colliding address is rejected and the existing record stays untouched.
func (r *repository) Create(ctx context.Context, machine core.CandyMachine) (core.CandyMachine, error) {
	ctx, span := tracer.Start(ctx, "Machine.Repository.Create")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing core.CandyMachine
		err := tx.First(&existing, "id = ?", machine.ID).Error
		if err == nil {
			return core.NewErrorAlreadyExists()
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&machine).Error
	})
	if err != nil {
		span.RecordError(err)
		return core.CandyMachine{}, err
	}

	r.mc.Increment(countCacheKey, 1)

	return machine, nil
}

// Update updates the display fields of a candy machine.
// Supply counters and the creation timestamp are not writable here.
func (r *repository) Update(ctx context.Context, machine core.CandyMachine) (core.CandyMachine, error) {
	ctx, span := tracer.Start(ctx, "Machine.Repository.Update")
	defer span.End()

	var updated core.CandyMachine
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing core.CandyMachine
		err := tx.First(&existing, "id = ?", machine.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return core.NewErrorNotFound()
			}
			return err
		}

		existing.Name = machine.Name
		existing.Symbol = machine.Symbol
		existing.Price = machine.Price
		existing.GoLiveDate = machine.GoLiveDate
		existing.Metadata = machine.Metadata

		err = tx.Save(&existing).Error
		if err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return core.CandyMachine{}, err
	}

	return updated, nil
}

// IncrementMinted bumps the minted counter by one inside a single guarded
// UPDATE, so racing mints can neither lose updates nor exceed the supply.
func (r *repository) IncrementMinted(ctx context.Context, id string) (core.CandyMachine, error) {
	ctx, span := tracer.Start(ctx, "Machine.Repository.IncrementMinted")
	defer span.End()

	var machines []core.CandyMachine
	result := r.db.WithContext(ctx).
		Model(&machines).
		Clauses(clause.Returning{}).
		Where("id = ? and items_minted < items_available", id).
		Update("items_minted", gorm.Expr("items_minted + 1"))
	if result.Error != nil {
		span.RecordError(result.Error)
		return core.CandyMachine{}, result.Error
	}

	if result.RowsAffected == 0 {
		_, err := r.Get(ctx, id)
		if err != nil {
			return core.CandyMachine{}, err
		}
		return core.CandyMachine{}, core.NewErrorSoldOut()
	}

	return machines[0], nil
}

// UpdateStatus sets the lifecycle status of a candy machine
func (r *repository) UpdateStatus(ctx context.Context, id string, status string) (core.CandyMachine, error) {
	ctx, span := tracer.Start(ctx, "Machine.Repository.UpdateStatus")
	defer span.End()

	var machines []core.CandyMachine
	result := r.db.WithContext(ctx).
		Model(&machines).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		span.RecordError(result.Error)
		return core.CandyMachine{}, result.Error
	}
	if result.RowsAffected == 0 {
		return core.CandyMachine{}, core.NewErrorNotFound()
	}

	return machines[0], nil
}

// Count returns the number of candy machine records
func (r *repository) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Machine.Repository.Count")
	defer span.End()

	item, err := r.mc.Get(countCacheKey)
	if err == nil {
		count, err := strconv.ParseInt(string(item.Value), 10, 64)
		if err == nil {
			return count, nil
		}
	}

	var count int64
	err = r.db.WithContext(ctx).Model(&core.CandyMachine{}).Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	err = r.mc.Set(&memcache.Item{Key: countCacheKey, Value: []byte(strconv.FormatInt(count, 10))})
	if err != nil {
		slog.ErrorContext(
			ctx, "failed to cache machine count",
			slog.String("error", err.Error()),
			slog.String("module", "machine"),
		)
	}

	return count, nil
}

// PublishEvent publishes a wire message to the broadcast channel
func (r *repository) PublishEvent(ctx context.Context, message core.Message) error {
	ctx, span := tracer.Start(ctx, "Machine.Repository.PublishEvent")
	defer span.End()

	jsonstr, err := json.Marshal(message)
	if err != nil {
		return err
	}

	err = r.rdb.Publish(ctx, r.config.Forge.EventChannel, jsonstr).Err()
	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(
			ctx, "fail to publish message to Redis",
			slog.String("error", err.Error()),
			slog.String("module", "machine"),
		)
	}

	return err
}
