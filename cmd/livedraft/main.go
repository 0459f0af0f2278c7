// Package main starts a livedraft participant and handles termination.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	livedraftcmd "github.com/louisbranch/livedraft/internal/cmd/livedraft"
	entrypoint "github.com/louisbranch/livedraft/internal/platform/cmd"
	"github.com/louisbranch/livedraft/internal/platform/config"
)

func main() {
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceLiveDraft))
	cfg, err := livedraftcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := livedraftcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("livedraft: %v", err)
	}
}
