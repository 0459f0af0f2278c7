package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, BoardHeaderKey, "Room %s, %d participants")
	message.SetString(lang, BoardEmptyKey, "Nobody else is here yet.")
	message.SetString(lang, BoardRowKey, "%s (%s): %s")
	message.SetString(lang, BoardIdleKey, "(not typing)")
}
