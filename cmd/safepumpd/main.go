package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"safepump/config"
	"safepump/core/events"
	"safepump/core/state"
	"safepump/native/amm"
	"safepump/native/asset"
	"safepump/native/common"
	"safepump/native/coordinator"
	"safepump/observability"
	"safepump/observability/logging"
	"safepump/observability/metrics"
	telemetry "safepump/observability/otel"
	"safepump/rpc"
	"safepump/storage"
	"safepump/storage/journal"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file (.toml or .yaml)")
	allowMigrate := flag.Bool("allow-migrate", false, "Allow starting with a mismatched state schema (manual migrations only)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	logger := logging.Setup(cfg.Service, cfg.Environment, cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *allowMigrate); err != nil {
		logger.Error("safepumpd stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, allowMigrate bool) error {
	shutdown, err := telemetry.Init(ctx, telemetry.FromConfig(cfg))
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("telemetry shutdown", slog.Any("error", err))
		}
	}()

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "state"))
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	defer db.Close()

	dsn, err := journal.FileDSN(cfg.JournalPath)
	if err != nil {
		return err
	}
	j, err := journal.Open(dsn)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()
	j.SetLogger(logger)

	emitter := events.Fanout{j, observability.Events()}
	mgr := state.NewManager(db)
	if err := mgr.EnsureSchema(allowMigrate); err != nil {
		return err
	}

	coordParams, err := cfg.CoordinatorParams()
	if err != nil {
		return err
	}
	coord, err := coordinator.NewEngine(coordParams)
	if err != nil {
		return err
	}
	logger.Info("swap authorities loaded", "count", len(coordParams.Authorities), "badgeMint", coordParams.BadgeMint.String())
	pools, err := amm.NewEngine(cfg.PoolFeeBps())
	if err != nil {
		return err
	}
	assetParams, err := cfg.AssetParams()
	if err != nil {
		return err
	}
	assets, err := asset.NewEngine(assetParams, coord, pools, pools)
	if err != nil {
		return err
	}

	pauses := cfg.PauseView()
	swapMetrics := metrics.Swap()
	coord.SetLogger(logger)
	coord.SetPauses(pauses)
	coord.SetMetrics(swapMetrics)
	assets.SetLogger(logger)
	assets.SetPauses(pauses)
	assets.SetMetrics(swapMetrics)
	assets.SetState(mgr)
	assets.SetEmitter(emitter)

	clock := rpc.WallClock(time.Now, rpc.DefaultSlotDuration)
	if err := ensureInitialized(cfg, mgr, coord, clock(), emitter, logger); err != nil {
		return err
	}

	srv, err := rpc.NewServer(rpc.Config{
		State:       mgr,
		Coordinator: coord,
		Assets:      assets,
		Events:      j,
		Emitter:     emitter,
		Limiter:     rpc.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger),
		Logger:      logger,
		Env:         clock,
	})
	if err != nil {
		return err
	}
	return srv.Start(ctx, cfg.ListenAddress)
}

// ensureInitialized creates the coordinator global state on first start.
func ensureInitialized(cfg *config.Config, mgr *state.Manager, coord *coordinator.Engine, env common.Env, emitter events.Emitter, logger *slog.Logger) error {
	tx := mgr.Begin()
	if g, err := coord.Global(tx); err == nil {
		tx.Discard()
		logger.Info("coordinator loaded", "treasury", g.Treasury.String(), "launchedAt", g.LaunchedAt)
		return nil
	} else if !errors.Is(err, coordinator.ErrNotInitialized) {
		tx.Discard()
		return err
	}
	treasury, err := cfg.Treasury()
	if err != nil {
		tx.Discard()
		return err
	}
	if _, err := coord.Initialize(tx, env, treasury); err != nil {
		tx.Discard()
		return err
	}
	if err := tx.Commit(emitter); err != nil {
		tx.Discard()
		return err
	}
	logger.Info("coordinator initialized", "treasury", treasury.String())
	return nil
}
