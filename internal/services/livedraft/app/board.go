package app

import (
	"io"
	"sync"

	"github.com/louisbranch/livedraft/internal/roster"
	"github.com/louisbranch/livedraft/internal/services/livedraft/i18n"
	"golang.org/x/text/message"
)

// Board prints the roster to a terminal after every change.
type Board struct {
	mu      sync.Mutex
	out     io.Writer
	printer *message.Printer
	roomID  string
}

// NewBoard returns a board that writes to out in the language closest to lang.
func NewBoard(out io.Writer, lang string, roomID string) *Board {
	return &Board{
		out:     out,
		printer: message.NewPrinter(i18n.Match(lang)),
		roomID:  roomID,
	}
}

// Render prints every participant with their current draft, in arrival order.
func (b *Board) Render(store *roster.Store) {
	if b == nil || b.out == nil || store == nil {
		return
	}
	participants := store.List()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.printer.Fprintf(b.out, i18n.BoardHeaderKey, b.roomID, len(participants))
	_, _ = io.WriteString(b.out, "\n")
	if len(participants) == 0 {
		_, _ = io.WriteString(b.out, "  "+b.printer.Sprintf(i18n.BoardEmptyKey)+"\n")
		return
	}
	for _, p := range participants {
		text := p.DraftText
		if text == "" {
			text = b.printer.Sprintf(i18n.BoardIdleKey)
		}
		_, _ = io.WriteString(b.out, "  "+b.printer.Sprintf(i18n.BoardRowKey, p.DisplayName, p.Location, text)+"\n")
	}
}
