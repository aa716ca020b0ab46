package site

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkmfujise/redscribe-docs/internal/config"
)

// TestBuildRepositoryContent builds the site shipped in this repository.
func TestBuildRepositoryContent(t *testing.T) {
	root := filepath.Join("..", "..")

	v := viper.New()
	config.SetDefaults(v)
	v.SetConfigFile(filepath.Join(root, "config.yaml"))
	require.NoError(t, v.ReadInConfig())
	cfg, err := config.Load(v)
	require.NoError(t, err)

	cfg.OutputDir = t.TempDir()
	cfg.Paths = config.Paths{
		Content:  filepath.Join(root, cfg.Paths.Content),
		I18n:     filepath.Join(root, cfg.Paths.I18n),
		Layouts:  filepath.Join(root, cfg.Paths.Layouts),
		Static:   filepath.Join(root, cfg.Paths.Static),
		Sidebars: filepath.Join(root, cfg.Paths.Sidebars),
	}

	res, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, res.BrokenLinks)

	assert.Contains(t, res.Pages["en"], "docs/intro/index.html")
	assert.Contains(t, res.Pages["ja"], "ja/docs/repl/index.html")
	assert.Contains(t, res.Pages["ja"], "ja/showcase/index.html")

	jaHome := readFile(t, cfg.OutputDir, "ja/index.html")
	assert.Contains(t, jaHome, "Godot エディタで Ruby ファイルを作成・編集できます。")
	assert.Contains(t, jaHome, "<h3>REPL</h3>")

	// every static file the pages reference is shipped
	for _, ref := range []string{"img/Editor_screenshot.png", "img/REPL_screenshot.png", "img/favicon.ico", "img/social_card.png", "img/logo.svg"} {
		assert.Contains(t, jaHome, cfg.BaseURL+ref)
		assert.FileExists(t, filepath.Join(cfg.OutputDir, filepath.FromSlash(ref)))
	}
}
