package machine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/NFT-Forge-sol/nft-forge/internal/testutil"
	"github.com/NFT-Forge-sol/nft-forge/x/core"
	"github.com/NFT-Forge-sol/nft-forge/x/util"
)

func TestRepository(t *testing.T) {

	var ctx = context.Background()

	db, cleanup_db := testutil.CreateDB()
	defer cleanup_db()

	rdb, cleanup_rdb := testutil.CreateRDB()
	defer cleanup_rdb()

	mc, cleanup_mc := testutil.CreateMC()
	defer cleanup_mc()

	config := util.Config{}
	config.Forge.EventChannel = "candymachines"

	repo := NewRepository(db, rdb, mc, config)

	machine0 := core.CandyMachine{
		ID:             "5KcyQ6zG6ZgtPM3GWTktyRYQ1m9uRLJvzZbTcmZbr6Ui",
		Name:           "Forge Originals",
		Symbol:         "FORGE",
		Price:          0.5,
		ItemsAvailable: 100,
		CreatorAddress: "8dHEsF9BDEweRtKXzYH7NnBN5zgRmzLpu7oz1EJcPGRQ",
		GoLiveDate:     time.Now().Add(-time.Hour),
		Metadata: core.MachineMetadata{
			Description: "the first drop",
			Image:       "https://example.com/forge.png",
		},
	}

	created0, err := repo.Create(ctx, machine0)
	if assert.NoError(t, err) {
		assert.Equal(t, machine0.ID, created0.ID)
		assert.Equal(t, int64(0), created0.ItemsMinted)
		assert.NotZero(t, created0.CDate)
	}

	// a colliding address must not disturb the stored record
	clash := machine0
	clash.Name = "Impostor"
	_, err = repo.Create(ctx, clash)
	assert.Error(t, err)
	assert.ErrorIs(t, err, core.ErrorAlreadyExists{})

	found, err := repo.Get(ctx, machine0.ID)
	if assert.NoError(t, err) {
		assert.Equal(t, "Forge Originals", found.Name)
	}

	_, err = repo.Get(ctx, "nonexistent")
	assert.ErrorIs(t, err, core.ErrorNotFound{})

	machine1 := core.CandyMachine{
		ID:             "3vQ9x1JzW3c5y8m2kq4T7rYbXhDnE6fGpLsM9aNcRtUe",
		Name:           "Forge Limited",
		Symbol:         "FSPC",
		Price:          1.2,
		ItemsAvailable: 5,
		CreatorAddress: "8dHEsF9BDEweRtKXzYH7NnBN5zgRmzLpu7oz1EJcPGRQ",
		GoLiveDate:     time.Now(),
	}
	_, err = repo.Create(ctx, machine1)
	assert.NoError(t, err)

	// newest first
	machines, err := repo.GetAll(ctx)
	if assert.NoError(t, err) {
		if assert.Len(t, machines, 2) {
			assert.Equal(t, machine1.ID, machines[0].ID)
			assert.Equal(t, machine0.ID, machines[1].ID)
		}
	}

	byCreator, err := repo.GetByCreator(ctx, machine0.CreatorAddress)
	if assert.NoError(t, err) {
		assert.Len(t, byCreator, 2)
	}

	byCreator, err = repo.GetByCreator(ctx, "someoneelse")
	if assert.NoError(t, err) {
		assert.Len(t, byCreator, 0)
	}

	count, err := repo.Count(ctx)
	if assert.NoError(t, err) {
		assert.Equal(t, int64(2), count)
	}

	// racing mints may not lose updates nor exceed the supply
	var wg sync.WaitGroup
	var successes, soldouts sync.Map
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.IncrementMinted(ctx, machine1.ID)
			if err == nil {
				successes.Store(i, true)
			} else if assert.ErrorIs(t, err, core.ErrorSoldOut{}) {
				soldouts.Store(i, true)
			}
		}(i)
	}
	wg.Wait()

	successCount := 0
	successes.Range(func(_, _ any) bool { successCount++; return true })
	soldoutCount := 0
	soldouts.Range(func(_, _ any) bool { soldoutCount++; return true })
	assert.Equal(t, 5, successCount)
	assert.Equal(t, 5, soldoutCount)

	found, err = repo.Get(ctx, machine1.ID)
	if assert.NoError(t, err) {
		assert.Equal(t, int64(5), found.ItemsMinted)
		assert.True(t, found.SoldOut())
	}

	_, err = repo.IncrementMinted(ctx, "nonexistent")
	assert.ErrorIs(t, err, core.ErrorNotFound{})

	// paused machines drop out of the listings but stay readable
	paused, err := repo.UpdateStatus(ctx, machine1.ID, core.StatusPaused)
	if assert.NoError(t, err) {
		assert.Equal(t, core.StatusPaused, paused.Status)
	}

	machines, err = repo.GetAll(ctx)
	if assert.NoError(t, err) {
		if assert.Len(t, machines, 1) {
			assert.Equal(t, machine0.ID, machines[0].ID)
		}
	}

	found, err = repo.Get(ctx, machine1.ID)
	if assert.NoError(t, err) {
		assert.Equal(t, core.StatusPaused, found.Status)
	}

	_, err = repo.UpdateStatus(ctx, "nonexistent", core.StatusEnded)
	assert.ErrorIs(t, err, core.ErrorNotFound{})

	// display fields are writable, supply counters are not
	edit := created0
	edit.Name = "Forge Originals v2"
	edit.Price = 0.75
	edit.ItemsMinted = 9999
	updated, err := repo.Update(ctx, edit)
	if assert.NoError(t, err) {
		assert.Equal(t, "Forge Originals v2", updated.Name)
		assert.Equal(t, 0.75, updated.Price)
		assert.Equal(t, int64(0), updated.ItemsMinted)
	}

	missing := core.CandyMachine{ID: "nonexistent", Name: "ghost"}
	_, err = repo.Update(ctx, missing)
	assert.ErrorIs(t, err, core.ErrorNotFound{})
}

func TestRepositoryPublishEvent(t *testing.T) {

	var ctx = context.Background()

	db, cleanup_db := testutil.CreateDB()
	defer cleanup_db()

	rdb, cleanup_rdb := testutil.CreateRDB()
	defer cleanup_rdb()

	mc, cleanup_mc := testutil.CreateMC()
	defer cleanup_mc()

	config := util.Config{}
	config.Forge.EventChannel = "candymachines"

	repo := NewRepository(db, rdb, mc, config)

	pubsub := rdb.Subscribe(ctx, config.Forge.EventChannel)
	defer pubsub.Close()

	// wait for the subscription to be established
	_, err := pubsub.Receive(ctx)
	assert.NoError(t, err)

	err = repo.PublishEvent(ctx, core.Message{
		Type:    core.MessageTypeMintedCountUpdated,
		Payload: core.CandyMachine{ID: "machine0", ItemsMinted: 1},
	})
	assert.NoError(t, err)

	timeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	received, err := pubsub.ReceiveMessage(timeout)
	if assert.NoError(t, err) {
		assert.Contains(t, received.Payload, core.MessageTypeMintedCountUpdated)
		assert.Contains(t, received.Payload, "machine0")
	}
}
