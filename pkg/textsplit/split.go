// Package textsplit cuts transcripts into pieces that fit into one Telegram message.
package textsplit

import "unicode"

// MaxMessageLength is Telegram's per-message text limit.
const MaxMessageLength = 4096

// Split cuts text into segments of at most limit runes. A limit <= 0 means
// MaxMessageLength.
//
// Each cut happens at the last whitespace rune at or before the limit, and that
// rune is dropped. When no such rune exists the cut is made at the limit itself
// and nothing is dropped. Empty text yields no segments.
func Split(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var segments []string
	for len(runes) > limit {
		cut, skip := cutPoint(runes, limit)
		segments = append(segments, string(runes[:cut]))
		runes = runes[cut+skip:]
	}
	if len(runes) > 0 {
		segments = append(segments, string(runes))
	}
	return segments
}

// cutPoint returns where to end the next segment and how many runes to drop
// after it. runes is longer than limit.
func cutPoint(runes []rune, limit int) (cut, skip int) {
	for i := limit; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i, 1
		}
	}
	return limit, 0
}
