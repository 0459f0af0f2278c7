// Package main starts the reference room relay server and handles termination.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	roomdcmd "github.com/louisbranch/livedraft/internal/cmd/roomd"
	entrypoint "github.com/louisbranch/livedraft/internal/platform/cmd"
	"github.com/louisbranch/livedraft/internal/platform/config"
)

func main() {
	cfg, err := roomdcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("%v", err)
	}
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceRoomd))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := roomdcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
