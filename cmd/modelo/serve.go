package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/modelo/capability"
	"github.com/gogpu/modelo/internal/prefs"
	"github.com/gogpu/modelo/internal/server"
)

func runServe(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	addr := fs.String("addr", "", "listen address (overrides server.addr)")
	redetect := fs.Bool("redetect", false, "ignore the cached capability tier and detect again")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := prefs.Open(cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	desc, cached, err := store.CachedDescriptor(ctx, cfg.Storage.CapabilityKey, *redetect, capability.Detect)
	if err != nil {
		logger.Warn("serve: caching capability failed", "err", err)
	}
	logger.Info("serve: capability", "tier", desc.Tier, "prober", desc.Prober, "cached", cached)

	srv := server.New(cfg, desc, server.WithStore(store), server.WithLogger(logger))
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
