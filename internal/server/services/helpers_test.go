package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/satellite/internal/dbx"
	"github.com/dmitrijs2005/satellite/internal/logging"
	"github.com/dmitrijs2005/satellite/internal/server/blobstore"
	"github.com/dmitrijs2005/satellite/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/satellite/internal/server/uploads"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/require"
)

const (
	admin = "admin"
	alice = "alice"
	bob   = "bob"
	anon  = "anonymous"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	clock       *testclock.Clock
	store       *Store
	blobs       *blobstore.MemoryStore
	arena       *uploads.Arena
	rules       *RuleService
	docs        *DocService
	assets      *AssetService
	controllers *ControllerService
	settings    *SettingsService
	snapshots   *SnapshotService
}

func newEnv(t *testing.T, opts ...func(*AssetOptions)) *env {
	t.Helper()
	clk := testclock.NewClock(epoch)
	store := &Store{
		Tx:     dbx.NewMutexTransactor(),
		Repos:  repomanager.NewMemoryRepositoryManager(),
		Clock:  clk,
		Logger: logging.Nop{},
	}
	blobs := blobstore.NewMemoryStore()
	arena := uploads.NewArena(clk, 5*time.Minute, 1024, logging.Nop{})

	ao := AssetOptions{MaxChunkSize: 1024}
	for _, o := range opts {
		o(&ao)
	}

	e := &env{
		clock:       clk,
		store:       store,
		blobs:       blobs,
		arena:       arena,
		rules:       NewRuleService(store),
		docs:        NewDocService(store, nil),
		assets:      NewAssetService(store, arena, blobs, nil, ao),
		controllers: NewControllerService(store),
		settings:    NewSettingsService(store),
		snapshots:   NewSnapshotService(store, blobs),
	}
	require.NoError(t, e.controllers.Bootstrap(context.Background(), []string{admin}))
	return e
}

func ptr[T any](v T) *T { return &v }
