package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
	"github.com/tkmfujise/redscribe-docs/internal/model"
	"golang.org/x/text/language"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid config")

// Broken link policies.
const (
	PolicyIgnore = "ignore"
	PolicyLog    = "log"
	PolicyWarn   = "warn"
	PolicyThrow  = "throw"
)

type Config struct {
	Title                 string       `mapstructure:"title"`
	Tagline               string       `mapstructure:"tagline"`
	Favicon               string       `mapstructure:"favicon"`
	URL                   string       `mapstructure:"url"`
	BaseURL               string       `mapstructure:"baseUrl"`
	OrganizationName      string       `mapstructure:"organizationName"`
	ProjectName           string       `mapstructure:"projectName"`
	OnBrokenLinks         string       `mapstructure:"onBrokenLinks"`
	OnBrokenMarkdownLinks string       `mapstructure:"onBrokenMarkdownLinks"`
	OutputDir             string       `mapstructure:"outputDir"`
	CustomFields          CustomFields `mapstructure:"customFields"`
	I18n                  I18n         `mapstructure:"i18n"`
	Markdown              Markdown     `mapstructure:"markdown"`
	Paths                 Paths        `mapstructure:"paths"`
	Theme                 Theme        `mapstructure:"themeConfig"`
}

type CustomFields struct {
	GitHubURL string `mapstructure:"githubUrl"`
}

type I18n struct {
	DefaultLocale string   `mapstructure:"defaultLocale"`
	Locales       []string `mapstructure:"locales"`
}

type Markdown struct {
	Mermaid bool `mapstructure:"mermaid"`
}

// Paths are the project directories, relative to the working directory.
type Paths struct {
	Content  string `mapstructure:"content"`
	I18n     string `mapstructure:"i18n"`
	Layouts  string `mapstructure:"layouts"`
	Static   string `mapstructure:"static"`
	Sidebars string `mapstructure:"sidebars"`
}

type Theme struct {
	Image    string    `mapstructure:"image"`
	Metadata []MetaTag `mapstructure:"metadata"`
	Navbar   Navbar    `mapstructure:"navbar"`
	Footer   Footer    `mapstructure:"footer"`
	Prism    Prism     `mapstructure:"prism"`
}

type MetaTag struct {
	Name    string `mapstructure:"name"`
	Content string `mapstructure:"content"`
}

type Navbar struct {
	Title string       `mapstructure:"title"`
	Logo  Logo         `mapstructure:"logo"`
	Items []NavbarItem `mapstructure:"items"`
}

type Logo struct {
	Alt string `mapstructure:"alt"`
	Src string `mapstructure:"src"`
}

// NavbarItem is a navbar entry. Type is "docSidebar", "localeDropdown" or
// empty for a plain link using To (internal) or Href (external).
type NavbarItem struct {
	Type      string `mapstructure:"type"`
	SidebarID string `mapstructure:"sidebarId"`
	Label     string `mapstructure:"label"`
	To        string `mapstructure:"to"`
	Href      string `mapstructure:"href"`
	Position  string `mapstructure:"position"`
}

type Footer struct {
	Style     string        `mapstructure:"style"`
	Links     []FooterGroup `mapstructure:"links"`
	Copyright string        `mapstructure:"copyright"`
}

type FooterGroup struct {
	Title string       `mapstructure:"title"`
	Items []FooterLink `mapstructure:"items"`
}

type FooterLink struct {
	Label string `mapstructure:"label"`
	To    string `mapstructure:"to"`
	Href  string `mapstructure:"href"`
}

type Prism struct {
	Theme               string   `mapstructure:"theme"`
	DarkTheme           string   `mapstructure:"darkTheme"`
	AdditionalLanguages []string `mapstructure:"additionalLanguages"`
}

// SetDefaults registers the ReDScribe site values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("title", "ReDScribe")
	v.SetDefault("tagline", "Ruby-embedded DSL for Godot.")
	v.SetDefault("favicon", "img/favicon.ico")
	v.SetDefault("url", "https://tkmfujise.github.io")
	v.SetDefault("baseUrl", "/redscribe-docs/")
	v.SetDefault("organizationName", "tkmfujise")
	v.SetDefault("projectName", "redscribe-docs")
	v.SetDefault("onBrokenLinks", PolicyThrow)
	v.SetDefault("onBrokenMarkdownLinks", PolicyWarn)
	v.SetDefault("outputDir", "build")
	v.SetDefault("customFields.githubUrl", "https://github.com/tkmfujise/ReDScribe")

	v.SetDefault("i18n.defaultLocale", "en")
	v.SetDefault("i18n.locales", []string{"ja", "en"})
	v.SetDefault("markdown.mermaid", true)

	v.SetDefault("paths.content", "content")
	v.SetDefault("paths.i18n", "i18n")
	v.SetDefault("paths.layouts", "layouts")
	v.SetDefault("paths.static", "static")
	v.SetDefault("paths.sidebars", "sidebars.yaml")

	v.SetDefault("themeConfig.image", "img/social_card.png")
	v.SetDefault("themeConfig.metadata", []map[string]interface{}{
		{"name": "keywords", "content": "Godot, Ruby, mruby, ゲーム, Game, DSL, ReDScribe"},
		{"name": "description", "content": "ReDScribe is a Ruby-embedded DSL for Godot. It enables writing DSL code in mruby directly inside Godot for streamlined game development."},
	})
	v.SetDefault("themeConfig.navbar.title", "ReDScribe")
	v.SetDefault("themeConfig.navbar.logo.alt", "ReDScribe Logo")
	v.SetDefault("themeConfig.navbar.logo.src", "img/logo.svg")
	v.SetDefault("themeConfig.navbar.items", []map[string]interface{}{
		{"type": "docSidebar", "sidebarId": "tutorialSidebar", "position": "left", "label": "Tutorial"},
		{"to": "/showcase", "label": "Showcase", "position": "left"},
		{"type": "localeDropdown", "position": "right"},
		{"href": "https://github.com/tkmfujise/ReDScribe", "label": "GitHub", "position": "right"},
	})
	v.SetDefault("themeConfig.footer.style", "light")
	v.SetDefault("themeConfig.footer.links", []map[string]interface{}{
		{"title": "Docs", "items": []map[string]interface{}{
			{"label": "Tutorial", "to": "/docs/intro"},
			{"label": "Showcase", "to": "/showcase"},
		}},
		{"title": "Community", "items": []map[string]interface{}{
			{"label": "GitHub", "href": "https://github.com/tkmfujise/ReDScribe"},
		}},
	})
	v.SetDefault("themeConfig.footer.copyright", "Copyright © {year} tkmfujise. Built with redscribe-docs.")
	v.SetDefault("themeConfig.prism.theme", "github")
	v.SetDefault("themeConfig.prism.darkTheme", "dracula")
	v.SetDefault("themeConfig.prism.additionalLanguages", []string{"gdscript", "ruby"})
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c Config) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: outputDir is required", ErrInvalid)
	}
	if !strings.HasPrefix(c.BaseURL, "/") || !strings.HasSuffix(c.BaseURL, "/") {
		return fmt.Errorf("%w: baseUrl %q must start and end with /", ErrInvalid, c.BaseURL)
	}
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: url %q must be an absolute URL", ErrInvalid, c.URL)
		}
	}

	if len(c.I18n.Locales) == 0 {
		return fmt.Errorf("%w: i18n.locales must not be empty", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.I18n.Locales))
	for _, loc := range c.I18n.Locales {
		if _, err := language.Parse(loc); err != nil {
			return fmt.Errorf("%w: locale %q: %v", ErrInvalid, loc, err)
		}
		if seen[loc] {
			return fmt.Errorf("%w: locale %q listed twice", ErrInvalid, loc)
		}
		seen[loc] = true
	}
	if !seen[c.I18n.DefaultLocale] {
		return fmt.Errorf("%w: defaultLocale %q is not in i18n.locales", ErrInvalid, c.I18n.DefaultLocale)
	}

	for name, p := range map[string]string{
		"onBrokenLinks":         c.OnBrokenLinks,
		"onBrokenMarkdownLinks": c.OnBrokenMarkdownLinks,
	} {
		switch p {
		case PolicyIgnore, PolicyLog, PolicyWarn, PolicyThrow:
		default:
			return fmt.Errorf("%w: %s must be one of ignore, log, warn, throw (got %q)", ErrInvalid, name, p)
		}
	}

	for i, item := range c.Theme.Navbar.Items {
		switch item.Type {
		case "", "docSidebar", "localeDropdown":
		default:
			return fmt.Errorf("%w: navbar item %d has unknown type %q", ErrInvalid, i, item.Type)
		}
		if item.Type == "" && item.To == "" && item.Href == "" {
			return fmt.Errorf("%w: navbar item %d (%s) needs to or href", ErrInvalid, i, item.Label)
		}
	}
	return nil
}

// Metadata returns the read-only site metadata derived from c.
func (c Config) Metadata() model.SiteMetadata {
	return model.SiteMetadata{
		Title:     c.Title,
		Tagline:   c.Tagline,
		URL:       c.URL,
		BaseURL:   c.BaseURL,
		GitHubURL: c.CustomFields.GitHubURL,
	}
}
