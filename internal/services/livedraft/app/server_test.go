package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/livedraft/internal/roster"
	roomserver "github.com/louisbranch/livedraft/internal/services/room/app"
)

// syncBuffer lets the board write while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStatusHandlerUp(t *testing.T) {
	rr := httptest.NewRecorder()
	NewStatusHandler(roster.New()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/up", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if strings.TrimSpace(rr.Body.String()) != "OK" {
		t.Fatalf("body = %q, want OK", rr.Body.String())
	}
}

func TestStatusHandlerRoster(t *testing.T) {
	store := roster.New()
	store.Initialize([]roster.Seed{{ID: "1", DisplayName: "Bob"}}, map[string]string{"1": "hel"})

	rr := httptest.NewRecorder()
	NewStatusHandler(store).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/roster", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type = %q, want application/json", got)
	}
	var got []map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode roster: %v", err)
	}
	want := map[string]string{"id": "1", "displayName": "Bob", "location": "Unknown", "draftText": "hel"}
	if len(got) != 1 {
		t.Fatalf("roster = %v, want one participant", got)
	}
	for key, value := range want {
		if got[0][key] != value {
			t.Fatalf("roster[0][%q] = %q, want %q", key, got[0][key], value)
		}
	}
}

func TestStatusHandlerRosterRejectsPost(t *testing.T) {
	rr := httptest.NewRecorder()
	NewStatusHandler(roster.New()).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/roster", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestStatusHandlerMetrics(t *testing.T) {
	rr := httptest.NewRecorder()
	NewStatusHandler(roster.New()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "livedraft_roster_participants") {
		t.Fatalf("metrics body missing roster gauge")
	}
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing room", cfg: Config{ServerURL: "ws://localhost:8090/ws"}},
		{name: "missing server", cfg: Config{RoomID: "r1"}},
		{name: "render without output", cfg: Config{ServerURL: "ws://localhost:8090/ws", RoomID: "r1", Render: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Run(context.Background(), tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRunRendersRoomAndStops(t *testing.T) {
	srv := httptest.NewServer(roomserver.NewHandler())
	t.Cleanup(srv.Close)

	out := &syncBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- Run(ctx, Config{
			ServerURL: wsURL(srv),
			RoomID:    "r1",
			Username:  "Ann",
			Greeting:  "Hello, world!",
			Render:    true,
			Output:    out,
			Lang:      "en-US",
		})
	}()

	waitFor(t, "board render", func() bool {
		return strings.Contains(out.String(), "Room r1, 0 participants")
	})
	cancel()

	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run did not stop on cancel")
	}
}
