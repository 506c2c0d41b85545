package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-rentalform/internal/config"
	"github.com/goliatone/go-rentalform/internal/mockapi"
)

func main() {
	configPath := flag.String("config", "", "configuration file (YAML or JSON)")
	latency := flag.Duration("latency", 0, "delay before every answer")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *latency); err != nil {
		fmt.Fprintf(os.Stderr, "rentalform-mockapi: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, latency time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.Log, os.Stderr)

	srv, err := mockapi.New(mockapi.WithLogger(logger), mockapi.WithLatency(latency))
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, cfg.MockAPI.Addr)
}
