package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/salon-scheduling/internal/config"
	"github.com/hackgods/salon-scheduling/internal/db"
	"github.com/hackgods/salon-scheduling/internal/logging"
	"github.com/hackgods/salon-scheduling/internal/salon"
	"github.com/hackgods/salon-scheduling/internal/seed"
)

func main() {
	clients := flag.Int("clients", 25, "number of demo clients")
	fakerSeed := flag.Uint64("seed", 0, "faker seed, 0 picks a random one")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic("logger init error: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("seed starting", zap.Int("days", cfg.SeedDays), zap.Int("clients", *clients))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns, MinConns: cfg.PGMinConns}, logger)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	snap := seed.Build(seed.Options{
		From:    time.Now(),
		Days:    cfg.SeedDays,
		Clients: *clients,
		Seed:    *fakerSeed,
	})

	repo := salon.NewPgRepository(pool)
	if err := repo.ReplaceAll(ctx, snap); err != nil {
		logger.Fatal("replace data", zap.Error(err))
	}

	rev, err := repo.Revision(ctx)
	if err != nil {
		logger.Fatal("read revision", zap.Error(err))
	}

	logger.Info("seed complete",
		zap.String("salon", snap.Salons[0].Name),
		zap.Int("masters", len(snap.Masters)),
		zap.Int("services", len(snap.Services)),
		zap.Int("working_slots", len(snap.WorkingSlots)),
		zap.Int("clients", len(snap.Clients)),
		zap.Int64("revision", rev))
}
