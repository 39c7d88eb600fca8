package textsplit

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmpty(t *testing.T) {
	assert.Empty(t, Split("", 10))
	assert.Empty(t, Split("", 0))
}

func TestSplitShortTextIsOneSegment(t *testing.T) {
	assert.Equal(t, []string{"hallo welt"}, Split("hallo welt", 10))
	assert.Equal(t, []string{"hallo welt"}, Split("hallo welt", 0))

	exact := strings.Repeat("x", MaxMessageLength)
	assert.Equal(t, []string{exact}, Split(exact, 0))
}

func TestSplitNineThousandCharacters(t *testing.T) {
	text := strings.Repeat("abcd ", 1800)
	require.Len(t, text, 9000)

	segments := Split(text, 4096)

	require.Len(t, segments, 3)
	for _, s := range segments {
		assert.LessOrEqual(t, utf8.RuneCountInString(s), 4096)
	}
	assert.Equal(t, text, strings.Join(segments, " "))
}

func TestSplitPrefersLastSpace(t *testing.T) {
	segments := Split("one two three four", 9)
	assert.Equal(t, []string{"one two", "three", "four"}, segments)
}

func TestSplitAtBoundaryJustAfterLimit(t *testing.T) {
	// the space sits exactly at index limit, so the first segment is full length
	segments := Split("abcde fgh", 5)
	assert.Equal(t, []string{"abcde", "fgh"}, segments)
}

func TestSplitHardCut(t *testing.T) {
	text := strings.Repeat("z", 25)
	segments := Split(text, 10)

	assert.Equal(t, []string{strings.Repeat("z", 10), strings.Repeat("z", 10), strings.Repeat("z", 5)}, segments)
	assert.Equal(t, text, strings.Join(segments, ""))
}

func TestSplitLeadingSpaceDoesNotProduceEmptySegment(t *testing.T) {
	segments := Split(" "+strings.Repeat("q", 12), 5)
	for _, s := range segments {
		assert.NotEmpty(t, s)
		assert.LessOrEqual(t, utf8.RuneCountInString(s), 5)
	}
}

func TestSplitCountsRunes(t *testing.T) {
	text := "äöü ßéè ñõç"
	segments := Split(text, 7)

	assert.Equal(t, []string{"äöü ßéè", "ñõç"}, segments)
	for _, s := range segments {
		assert.True(t, utf8.ValidString(s))
	}
}

func TestSplitRoundTripsSpaceSeparatedText(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		limit := 5 + rng.Intn(60)
		words := make([]string, 1+rng.Intn(80))
		for i := range words {
			words[i] = strings.Repeat(string(rune('a'+rng.Intn(26))), 1+rng.Intn(limit))
		}
		text := strings.Join(words, " ")

		segments := Split(text, limit)

		for _, s := range segments {
			require.LessOrEqual(t, utf8.RuneCountInString(s), limit)
		}
		require.Equal(t, text, strings.Join(segments, " "), "limit %d", limit)
		if utf8.RuneCountInString(text) <= limit {
			require.Len(t, segments, 1)
		}
	}
}
