// Package i18n registers console board messages with golang.org/x/text/message.
package i18n

import "golang.org/x/text/language"

// Message keys used by the console board.
const (
	BoardHeaderKey = "board.header"
	BoardEmptyKey  = "board.empty"
	BoardRowKey    = "board.row"
	BoardIdleKey   = "board.idle"
)

var supported = []language.Tag{
	language.English,
	language.BrazilianPortuguese,
}

var matcher = language.NewMatcher(supported)

// Supported returns the languages that have a board catalog.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Match returns the supported language closest to lang, falling back to
// English for blank or unparseable input.
func Match(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	_, index, _ := matcher.Match(tag)
	return supported[index]
}
