package i18n

import (
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		in   string
		want language.Tag
	}{
		{in: "en-US", want: language.English},
		{in: "pt-BR", want: language.BrazilianPortuguese},
		{in: "pt", want: language.BrazilianPortuguese},
		{in: "", want: language.English},
		{in: "not a tag!", want: language.English},
	}
	for _, tt := range tests {
		if got := Match(tt.in); got != tt.want {
			t.Fatalf("Match(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCatalogsCoverEveryKey(t *testing.T) {
	keys := []string{BoardHeaderKey, BoardEmptyKey, BoardRowKey, BoardIdleKey}
	for _, tag := range Supported() {
		printer := message.NewPrinter(tag)
		for _, key := range keys {
			if got := printer.Sprintf(key); got == key {
				t.Fatalf("%v: %s is not translated", tag, key)
			}
		}
	}
}

func TestBoardHeaderLocalized(t *testing.T) {
	got := message.NewPrinter(language.BrazilianPortuguese).Sprintf(BoardHeaderKey, "r1", 2)
	if got != "Sala r1, 2 participantes" {
		t.Fatalf("header = %q, want %q", got, "Sala r1, 2 participantes")
	}
}
