package i18n

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupKnownKey(t *testing.T) {
	b := NewBundle("en")
	got := b.Lookup("en", "transaction_confirm_error")
	assert.NotEqual(t, "transaction_confirm_error", got)
}

func TestLookupFallsBackToDefaultLocale(t *testing.T) {
	b := NewBundle("en")
	assert.Equal(t, b.Lookup("en", "start"), b.Lookup("de", "start"))
}

func TestLookupMissingKeyReturnsKey(t *testing.T) {
	b := NewBundle("en")
	assert.Equal(t, "no_such_key", b.Lookup("en", "no_such_key"))
}

func TestLookupFormatsArgs(t *testing.T) {
	b := NewBundle("en")
	got := b.Lookup("en", "transaction_category_added", "Drinks")
	assert.Contains(t, got, "Drinks")
	assert.NotContains(t, got, "%s")
}

func TestUnknownDefaultLocaleFallsBackToEnglish(t *testing.T) {
	b := NewBundle("xx")
	got := b.Lookup("xx", "start")
	assert.NotEqual(t, "start", got)
}

func TestRussianLocale(t *testing.T) {
	b := NewBundle("en")
	en := b.Lookup("en", "transaction_pattern")
	ru := b.Lookup("ru", "transaction_pattern")
	assert.NotEqual(t, en, ru)
}

func TestEveryEnglishKeyHasRussian(t *testing.T) {
	for key := range translations["en"] {
		_, ok := translations["ru"][key]
		assert.True(t, ok, "missing ru translation for %q", key)
	}
}

func TestFormatVerbsMatchAcrossLocales(t *testing.T) {
	for key, en := range translations["en"] {
		ru := translations["ru"][key]
		assert.Equal(t, strings.Count(en, "%"), strings.Count(ru, "%"), "verb count differs for %q", key)
	}
}
