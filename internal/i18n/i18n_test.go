package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkmfujise/redscribe-docs/internal/config"
	"github.com/tkmfujise/redscribe-docs/internal/model"
)

func TestLocales(t *testing.T) {
	locales, err := Locales(config.Default())
	require.NoError(t, err)
	require.Len(t, locales, 2)

	ja, en := locales[0], locales[1]
	assert.Equal(t, "ja", ja.Code)
	assert.False(t, ja.Default)
	assert.Equal(t, "/redscribe-docs/ja/", ja.Base)
	assert.Equal(t, "日本語", ja.Label)

	assert.Equal(t, "en", en.Code)
	assert.True(t, en.Default)
	assert.Equal(t, "/redscribe-docs/", en.Base)
	assert.Equal(t, "English", en.Label)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ja"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ja", CatalogFile), []byte(`
"homepage.tutorial" = "チュートリアル"

[feature]
execution = "Godot で mruby を実行できます。"

["homepage.subtitle"]
message = "あなたのコードを、あなた自身のドメイン固有言語で。"
description = "hero subtitle"
`), 0o644))

	tr, err := Load(dir, "ja")
	require.NoError(t, err)
	assert.Equal(t, "ja", tr.Locale())
	assert.Equal(t, []string{"feature.execution", "homepage.subtitle", "homepage.tutorial"}, tr.IDs())

	assert.Equal(t, "チュートリアル", tr.T(model.Message{ID: "homepage.tutorial", Default: "Tutorial"}))
	assert.Equal(t, "Godot で mruby を実行できます。", tr.Lookup("feature.execution", "x"))
	assert.Equal(t, "あなたのコードを、あなた自身のドメイン固有言語で。", tr.Lookup("homepage.subtitle", "x"))
	assert.Equal(t, "REPL", tr.Lookup("feature.repl", "REPL"))
}

func TestLoadMissingCatalog(t *testing.T) {
	tr, err := Load(t.TempDir(), "en")
	require.NoError(t, err)
	assert.Empty(t, tr.IDs())
	assert.Equal(t, "Tutorial", tr.T(model.Message{ID: "homepage.tutorial", Default: "Tutorial"}))
}

func TestLoadInvalidCatalog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ja"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ja", CatalogFile), []byte(`count = 3`), 0o644))

	_, err := Load(dir, "ja")
	assert.ErrorContains(t, err, `message "count"`)
}

func TestNilTranslator(t *testing.T) {
	var tr *Translator
	assert.Equal(t, "fallback", tr.Lookup("any", "fallback"))
}
