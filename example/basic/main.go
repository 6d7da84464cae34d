package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/harris-mohamed/sensorsync"
)

func main() {
	cfg, err := sensorsync.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := sensorsync.NewRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}
	if err := rt.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("runtime exited: %v", err)
	}
}
