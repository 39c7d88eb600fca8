package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// Key names a user-facing message.
type Key string

const (
	Start           Key = "start"
	NoPermission    Key = "no_permission"
	InvalidFormat   Key = "invalid_format"
	ProcessingError Key = "processing_error"
)

var table = map[string]map[Key]string{
	"de": {
		Start: "Hi, ich wandle deine Sprachnachrichten in Text um. Sende mir hierfür einfach eine Sprachnachricht, " +
			"eine Audiodatei oder ein MP3/WAV-Dokument. Die Aufnahme wird nur temporär gespeichert, um sie an den " +
			"Transkriptionsdienst zu schicken, und danach sofort gelöscht.",
		NoPermission:    "Sorry, du hast keine Berechtigung, diesen Bot zu verwenden. Deine Telegram-ID ist %d.",
		InvalidFormat:   "Dieses Format wird nicht unterstützt. Bitte sende eine Sprachnachricht, eine Audiodatei oder ein MP3/WAV-Dokument.",
		ProcessingError: "Entschuldigung, bei der Verarbeitung deiner Sprachnachricht ist ein Fehler aufgetreten.",
	},
	"en": {
		Start: "Hi, I turn your voice messages into text. Just send me a voice message, an audio file " +
			"or an MP3/WAV document. The recording is stored only temporarily to hand it to the " +
			"transcription service and is deleted right afterwards.",
		NoPermission:    "Sorry, you are not allowed to use this bot. Your Telegram ID is %d.",
		InvalidFormat:   "This format is not supported. Please send a voice message, an audio file or an MP3/WAV document.",
		ProcessingError: "Sorry, something went wrong while processing your voice message.",
	},
}

// Catalog resolves language codes against the supported languages.
type Catalog struct {
	fallback  string
	supported []string
	matcher   language.Matcher
}

// NewCatalog returns a Catalog that falls back to fallbackCode. The fallback
// must be one of the supported languages.
func NewCatalog(fallbackCode string) (*Catalog, error) {
	tag, err := language.Parse(fallbackCode)
	if err != nil {
		return nil, fmt.Errorf("invalid fallback language %q: %w", fallbackCode, err)
	}
	base, _ := tag.Base()
	fallback := base.String()
	if _, ok := table[fallback]; !ok {
		return nil, fmt.Errorf("fallback language %q has no message table", fallbackCode)
	}

	supported := []string{fallback}
	for _, code := range []string{"en", "de"} {
		if code != fallback {
			supported = append(supported, code)
		}
	}
	tags := make([]language.Tag, len(supported))
	for i, code := range supported {
		tags[i] = language.Make(code)
	}

	return &Catalog{
		fallback:  fallback,
		supported: supported,
		matcher:   language.NewMatcher(tags),
	}, nil
}

// Fallback returns the language used when a requester's language is unsupported.
func (c *Catalog) Fallback() string {
	return c.fallback
}

// Resolve maps a Telegram language code ("de", "de-AT", "fr", "") to a supported
// language, using the fallback when nothing matches.
func (c *Catalog) Resolve(code string) string {
	if code == "" {
		return c.fallback
	}
	tag, err := language.Parse(code)
	if err != nil {
		return c.fallback
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return c.fallback
	}
	return c.supported[idx]
}

// Text renders key for the requester language code.
func (c *Catalog) Text(key Key, code string, args ...interface{}) string {
	return Text(key, c.Resolve(code), args...)
}

// Text renders key in lang, a supported base language such as "de".
func Text(key Key, lang string, args ...interface{}) string {
	tmpl := table[lang][key]
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
