package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "ReDScribe", cfg.Title)
	assert.Equal(t, "Ruby-embedded DSL for Godot.", cfg.Tagline)
	assert.Equal(t, "/redscribe-docs/", cfg.BaseURL)
	assert.Equal(t, "https://github.com/tkmfujise/ReDScribe", cfg.CustomFields.GitHubURL)
	assert.Equal(t, "en", cfg.I18n.DefaultLocale)
	assert.Equal(t, []string{"ja", "en"}, cfg.I18n.Locales)
	assert.Equal(t, []string{"gdscript", "ruby"}, cfg.Theme.Prism.AdditionalLanguages)
	assert.True(t, cfg.Markdown.Mermaid)

	require.Len(t, cfg.Theme.Navbar.Items, 4)
	assert.Equal(t, "docSidebar", cfg.Theme.Navbar.Items[0].Type)
	assert.Equal(t, "tutorialSidebar", cfg.Theme.Navbar.Items[0].SidebarID)
	assert.Equal(t, "/showcase", cfg.Theme.Navbar.Items[1].To)
	assert.Equal(t, "localeDropdown", cfg.Theme.Navbar.Items[2].Type)
	assert.Equal(t, "right", cfg.Theme.Navbar.Items[3].Position)

	require.Len(t, cfg.Theme.Footer.Links, 2)
	assert.Equal(t, "Docs", cfg.Theme.Footer.Links[0].Title)
	require.Len(t, cfg.Theme.Footer.Links[0].Items, 2)
	assert.Equal(t, "/docs/intro", cfg.Theme.Footer.Links[0].Items[0].To)

	require.Len(t, cfg.Theme.Metadata, 2)
	assert.Equal(t, "keywords", cfg.Theme.Metadata[0].Name)

	md := cfg.Metadata()
	assert.Equal(t, "ReDScribe", md.Title)
	assert.Equal(t, cfg.CustomFields.GitHubURL, md.GitHubURL)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
title: Other
baseUrl: /docs-site/
i18n:
  defaultLocale: ja
  locales: [ja]
themeConfig:
  navbar:
    title: Other Nav
`), 0o644))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "Other", cfg.Title)
	assert.Equal(t, "/docs-site/", cfg.BaseURL)
	assert.Equal(t, "ja", cfg.I18n.DefaultLocale)
	assert.Equal(t, []string{"ja"}, cfg.I18n.Locales)
	assert.Equal(t, "Other Nav", cfg.Theme.Navbar.Title)
	// untouched keys keep their defaults
	assert.Equal(t, "Ruby-embedded DSL for Godot.", cfg.Tagline)
	assert.Equal(t, "ReDScribe Logo", cfg.Theme.Navbar.Logo.Alt)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty title", func(c *Config) { c.Title = "" }},
		{"base url without slashes", func(c *Config) { c.BaseURL = "redscribe-docs" }},
		{"relative url", func(c *Config) { c.URL = "tkmfujise.github.io" }},
		{"no locales", func(c *Config) { c.I18n.Locales = nil }},
		{"bad locale", func(c *Config) { c.I18n.Locales = []string{"en", "not a locale"} }},
		{"duplicate locale", func(c *Config) { c.I18n.Locales = []string{"en", "en"} }},
		{"default not listed", func(c *Config) { c.I18n.DefaultLocale = "fr" }},
		{"bad policy", func(c *Config) { c.OnBrokenLinks = "explode" }},
		{"bad navbar type", func(c *Config) {
			c.Theme.Navbar.Items = []NavbarItem{{Type: "search"}}
		}},
		{"navbar link without target", func(c *Config) {
			c.Theme.Navbar.Items = []NavbarItem{{Label: "Nowhere"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	assert.NoError(t, Default().Validate())
}
