package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	arcadecmd "github.com/gridstake/arcade/internal/cmd/arcade"
	"github.com/gridstake/arcade/internal/platform/config"
)

func main() {
	cfg, err := arcadecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[ARCADE] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := arcadecmd.Run(ctx, cfg); err != nil && ctx.Err() == nil {
		log.Fatalf("failed to run: %v", err)
	}
}
