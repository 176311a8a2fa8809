package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	credenza "github.com/mlenz/credenza/internal/cmd/credenza"
	"github.com/mlenz/credenza/internal/platform/config"
)

func main() {
	cfg, err := credenza.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[CREDENZA] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := credenza.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("failed to run: %v", err)
	}
}
