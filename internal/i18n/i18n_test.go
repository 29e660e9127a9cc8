package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		accept   string
		expected language.Tag
	}{
		{"en-US,en;q=0.9", language.English},
		{"de-DE,de;q=0.9", language.German},
		{"fr-FR", language.English}, // Fallback
		{"", language.English},      // Empty
	}

	for _, tt := range tests {
		got := MatchLanguage(tt.accept)
		base, _ := got.Base()
		exp, _ := tt.expected.Base()
		assert.Equal(t, exp, base, "Accept: %s", tt.accept)
	}
}

func TestLocaleTag(t *testing.T) {
	assert.Equal(t, language.German, LocaleTag("de_DE.UTF-8"))
	assert.Equal(t, language.English, LocaleTag("en_GB"))
	assert.Equal(t, language.English, LocaleTag("C"))
	assert.Equal(t, language.English, LocaleTag(""))
	assert.Equal(t, language.English, LocaleTag("ja_JP.eucJP"))
}

func TestCLIPrinter(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "de_AT.UTF-8")
	assert.Equal(t, "Übersetzung nicht implementiert", NewCLIPrinter().Sprintf(MsgNotImplemented))

	t.Setenv("LC_ALL", "C")
	assert.Equal(t, "Translation not implemented", NewCLIPrinter().Sprintf(MsgNotImplemented))
	assert.Equal(t, "1 translated, 2 untranslated, 0 failed\n", NewCLIPrinter().Sprintf(MsgBatchSummary, 1, 2, 0))
}
