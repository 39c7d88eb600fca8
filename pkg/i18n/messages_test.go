package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryLanguageHasEveryKey(t *testing.T) {
	for lang, msgs := range table {
		for _, key := range []Key{Start, NoPermission, InvalidFormat, ProcessingError} {
			assert.NotEmpty(t, msgs[key], "%s/%s", lang, key)
		}
	}
}

func TestResolve(t *testing.T) {
	catalog, err := NewCatalog("en")
	require.NoError(t, err)

	tests := []struct {
		code string
		want string
	}{
		{code: "de", want: "de"},
		{code: "de-AT", want: "de"},
		{code: "en", want: "en"},
		{code: "en-GB", want: "en"},
		{code: "fr", want: "en"},
		{code: "", want: "en"},
		{code: "not a tag!", want: "en"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.Resolve(tt.code))
		})
	}
}

func TestGermanFallback(t *testing.T) {
	catalog, err := NewCatalog("de-DE")
	require.NoError(t, err)

	assert.Equal(t, "de", catalog.Fallback())
	assert.Equal(t, "de", catalog.Resolve("fr"))
	assert.Equal(t, "en", catalog.Resolve("en-US"))
}

func TestNewCatalogRejectsUnknownFallback(t *testing.T) {
	_, err := NewCatalog("fr")
	require.Error(t, err)

	_, err = NewCatalog("!!")
	require.Error(t, err)
}

func TestTextEmbedsRequesterID(t *testing.T) {
	catalog, err := NewCatalog("en")
	require.NoError(t, err)

	assert.Contains(t, catalog.Text(NoPermission, "de", int64(336979047)), "336979047")
	assert.Contains(t, catalog.Text(NoPermission, "de", int64(336979047)), "Berechtigung")
	assert.Equal(t, Text(ProcessingError, "en"), catalog.Text(ProcessingError, "fr"))
}
