package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.BrazilianPortuguese

	message.SetString(lang, BoardHeaderKey, "Sala %s, %d participantes")
	message.SetString(lang, BoardEmptyKey, "Ninguém mais chegou ainda.")
	message.SetString(lang, BoardRowKey, "%s (%s): %s")
	message.SetString(lang, BoardIdleKey, "(sem digitar)")
}
