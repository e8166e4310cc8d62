//go:build !integration

package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslator(t *testing.T) {
	translator, err := newTranslatorFromBytes([]byte("greeting: Olá\nwelcome_user: Olá %s"))
	require.NoError(t, err)

	t.Run("should translate a simple key", func(t *testing.T) {
		assert.Equal(t, "Olá", translator.T("greeting"))
	})

	t.Run("should return key if not found", func(t *testing.T) {
		assert.Equal(t, "nonexistent_key", translator.T("nonexistent_key"))
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		assert.Equal(t, "Olá Ana", translator.T("welcome_user", "Ana"))
	})
}

func TestNewTranslator_Fallback(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en.yaml": {Data: []byte("a: A\nb: B")},
		"locales/pt.yaml": {Data: []byte("a: Á")},
	}
	tr, err := NewTranslator(fsys, "pt")
	require.NoError(t, err)
	assert.Equal(t, "Á", tr.T("a"))
	assert.Equal(t, "B", tr.T("b"))

	_, err = NewTranslator(fsys, "de")
	assert.Error(t, err)
}

func TestEmbeddedLocalesShareKeys(t *testing.T) {
	en, err := readLocale(LocalesFS, "en")
	require.NoError(t, err)
	pt, err := readLocale(LocalesFS, "pt")
	require.NoError(t, err)

	for k := range en {
		assert.Contains(t, pt, k, "pt locale is missing %q", k)
	}
	for _, k := range []string{"prompt_new_text", "prompt_add_sticker", "error_interval_minimum", "error_wrong_content"} {
		assert.Contains(t, en, k)
	}
}
