package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/louisbranch/livedraft/internal/roster"
)

func TestBoardRender(t *testing.T) {
	store := roster.New()
	store.Initialize([]roster.Seed{
		{ID: "1", DisplayName: "Bob", Location: "Porto"},
		{ID: "2"},
	}, map[string]string{"1": "hello"})

	tests := []struct {
		lang string
		want []string
	}{
		{
			lang: "en-US",
			want: []string{"Room r1, 2 participants", "Bob (Porto): hello", "Anonymous (Unknown): (not typing)"},
		},
		{
			lang: "pt-BR",
			want: []string{"Sala r1, 2 participantes", "Bob (Porto): hello", "Anonymous (Unknown): (sem digitar)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			var out bytes.Buffer
			NewBoard(&out, tt.lang, "r1").Render(store)
			got := out.String()
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Fatalf("board = %q, missing %q", got, want)
				}
			}
			if strings.Index(got, "Bob") > strings.Index(got, "Anonymous") {
				t.Fatalf("board = %q, want arrival order", got)
			}
		})
	}
}

func TestBoardRenderEmpty(t *testing.T) {
	var out bytes.Buffer
	NewBoard(&out, "", "r1").Render(roster.New())
	if !strings.Contains(out.String(), "Nobody else is here yet.") {
		t.Fatalf("board = %q", out.String())
	}
}

func TestBoardNilSafe(t *testing.T) {
	var board *Board
	board.Render(roster.New())
	NewBoard(nil, "en-US", "r1").Render(roster.New())
}
