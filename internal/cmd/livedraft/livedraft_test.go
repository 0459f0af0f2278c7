package livedraft

import (
	"context"
	"flag"
	"strings"
	"testing"

	"github.com/louisbranch/livedraft/internal/services/livedraft/app"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("livedraft", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-room", "219456"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.ServerURL != "ws://localhost:8090/ws" {
		t.Fatalf("server url = %q, want default", cfg.ServerURL)
	}
	if cfg.Username != "livedraft" || cfg.Location != "Unknown" {
		t.Fatalf("identity = %q/%q, want defaults", cfg.Username, cfg.Location)
	}
	if cfg.HTTPAddr != "127.0.0.1:8091" || cfg.HealthAddr != "127.0.0.1:8092" {
		t.Fatalf("addrs = %q/%q, want defaults", cfg.HTTPAddr, cfg.HealthAddr)
	}
	if cfg.OutboundMode != "full-replace" {
		t.Fatalf("outbound mode = %q, want full-replace", cfg.OutboundMode)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("LIVEDRAFT_SERVER_URL", "ws://env:1/ws")
	t.Setenv("LIVEDRAFT_ROOM_ID", "env-room")
	t.Setenv("LIVEDRAFT_USERNAME", "SigmaBot")

	fs := flag.NewFlagSet("livedraft", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-server-url", "ws://flag:2/ws", "-render", "-outbound", "diff"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.ServerURL != "ws://flag:2/ws" {
		t.Fatalf("server url = %q, want flag value", cfg.ServerURL)
	}
	if cfg.RoomID != "env-room" {
		t.Fatalf("room = %q, want env value", cfg.RoomID)
	}
	if cfg.Username != "SigmaBot" {
		t.Fatalf("username = %q, want env value", cfg.Username)
	}
	if !cfg.Render || cfg.OutboundMode != "diff" {
		t.Fatalf("render/outbound = %v/%q, want true/diff", cfg.Render, cfg.OutboundMode)
	}
}

func TestParseConfigRequiresRoom(t *testing.T) {
	fs := flag.NewFlagSet("livedraft", flag.ContinueOnError)
	_, err := ParseConfig(fs, nil)
	if err == nil || !strings.Contains(err.Error(), "LIVEDRAFT_ROOM_ID") {
		t.Fatalf("err = %v, want missing room error", err)
	}
}

func TestParseConfigHealthCheckSkipsRoom(t *testing.T) {
	fs := flag.NewFlagSet("livedraft", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-healthcheck"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.HealthCheck {
		t.Fatal("expected healthcheck mode")
	}
}

func TestRuntimeConfig(t *testing.T) {
	in := strings.NewReader("hello\n")
	var out strings.Builder
	got, err := runtimeConfig(Config{RoomID: "r1", OutboundMode: "diff", Render: true}, in, &out)
	if err != nil {
		t.Fatalf("runtime config: %v", err)
	}
	if got.OutboundMode != app.OutboundDiff {
		t.Fatalf("outbound mode = %q, want diff", got.OutboundMode)
	}
	if got.Output != &out {
		t.Fatal("render output not wired")
	}
	if got.Input != nil {
		t.Fatal("stdin wired without -stdin")
	}
}

func TestRunRejectsUnknownOutboundMode(t *testing.T) {
	err := Run(context.Background(), Config{RoomID: "r1", OutboundMode: "ot"})
	if err == nil {
		t.Fatal("expected error for unknown outbound mode")
	}
}

func TestRunHealthCheckFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Run(ctx, Config{HealthCheck: true, HealthAddr: "127.0.0.1:1"}); err == nil {
		t.Fatal("expected healthcheck error")
	}
}
