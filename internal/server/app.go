// Package server initializes and runs the satellite server. It selects the
// storage backends, restores and saves snapshots, and supervises the gRPC
// API, the HTTP gateway and the upload batch reaper until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/satellite/internal/dbx"
	"github.com/dmitrijs2005/satellite/internal/logging"
	"github.com/dmitrijs2005/satellite/internal/server/blobstore"
	"github.com/dmitrijs2005/satellite/internal/server/config"
	"github.com/dmitrijs2005/satellite/internal/server/delivery"
	"github.com/dmitrijs2005/satellite/internal/server/httpgw"
	"github.com/dmitrijs2005/satellite/internal/server/metrics"
	"github.com/dmitrijs2005/satellite/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/satellite/internal/server/services"
	"github.com/dmitrijs2005/satellite/internal/server/uploads"
	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/satellite/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	arena       *uploads.Arena
	controllers *services.ControllerService
	hooks       *services.Hooks
	snapshots   *services.SnapshotService
	grpc        *gs.GRPCServer
	gateway     *httpgw.Gateway
}

// openStore selects the Postgres backend when a DSN is configured and the
// process-memory one otherwise.
func openStore(ctx context.Context, c *config.Config) (*sql.DB, dbx.Transactor, repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		return nil, dbx.NewMutexTransactor(), repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("migrations error: %w", err)
	}
	return db, dbx.NewSQLTransactor(db), rm, nil
}

func openBlobs(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	if c.S3Bucket == "" {
		return blobstore.NewMemoryStore(), nil
	}
	return blobstore.NewS3Store(ctx, blobstore.S3Config{
		User:         c.S3RootUser,
		Password:     c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})
}

// NewApp wires every component from c. Log lines go to w.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	logger := logging.New(w, c.LogFormat, c.LogLevel)
	clk := clock.WallClock

	db, tx, repos, err := openStore(ctx, c)
	if err != nil {
		return nil, err
	}

	blobs, err := openBlobs(ctx, c)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	store := &services.Store{Tx: tx, Repos: repos, Clock: clk, Logger: logger}

	arena := uploads.NewArena(clk, c.BatchTTL, c.MaxChunkSize, logger)
	collector := metrics.NewCollector(arena.Len)
	arena.OnReap(collector.Reaped)
	registry := prometheus.NewRegistry()
	if err := registry.Register(collector); err != nil {
		return nil, err
	}

	hooks := services.NewHooks(logger, services.LogNotifier{Logger: logger}, collector)

	controllers := services.NewControllerService(store)
	settings := services.NewSettingsService(store)
	assets := services.NewAssetService(store, arena, blobs, hooks, services.AssetOptions{
		MaxChunkSize: c.MaxChunkSize,
		GenerateGzip: c.GenerateGzip,
	})
	snapshots := services.NewSnapshotService(store, blobs)
	if c.SnapshotPassphrase != "" {
		snapshots.SetPassphrase(c.SnapshotPassphrase)
	}

	app := &App{
		config:      c,
		logger:      logger,
		db:          db,
		arena:       arena,
		controllers: controllers,
		hooks:       hooks,
		snapshots:   snapshots,
	}

	if db == nil && c.SnapshotPath != "" {
		if err := snapshots.ImportFile(ctx, c.SnapshotPath); err != nil {
			return nil, fmt.Errorf("snapshot import error: %w", err)
		}
		logger.Info(ctx, "Snapshot restored", "path", c.SnapshotPath)
	}

	if err := controllers.Bootstrap(ctx, c.Controllers); err != nil {
		app.close()
		return nil, fmt.Errorf("controller bootstrap error: %w", err)
	}

	dlv := delivery.NewService(assets, settings, delivery.NewSealer([]byte(c.TokenSecret)), nil, logger)

	app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, gs.Services{
		Docs:        services.NewDocService(store, hooks),
		Assets:      assets,
		Rules:       services.NewRuleService(store),
		Controllers: controllers,
		Settings:    settings,
		Delivery:    dlv,
	}, collector, clk, c.SecretKey)
	app.gateway = httpgw.New(c.EndpointAddrHTTP, logger, dlv, registry, collector, c.SecretKey)

	return app, nil
}

func (app *App) close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close error", "error", err)
		}
	}
}

// Run serves until ctx is cancelled, a signal arrives or a component fails.
// On the way out it drains hooks and writes the snapshot if configured.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpc.Run(ctx) })
	g.Go(func() error { return app.gateway.Run(ctx) })
	g.Go(func() error { return app.arena.Run(ctx, app.config.ReapInterval) })

	err := g.Wait()

	app.hooks.Wait()

	if app.config.SnapshotPath != "" {
		saveCtx := context.WithoutCancel(ctx)
		if serr := app.snapshots.ExportFile(saveCtx, app.config.SnapshotPath); serr != nil {
			app.logger.Error(saveCtx, "snapshot export error", "error", serr)
		} else {
			app.logger.Info(saveCtx, "Snapshot saved", "path", app.config.SnapshotPath)
		}
	}

	app.close()
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return err
}
