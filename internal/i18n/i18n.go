// Package i18n resolves the site locales and their translation catalogs.
package i18n

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/tkmfujise/redscribe-docs/internal/config"
	"github.com/tkmfujise/redscribe-docs/internal/model"
)

// CatalogFile is the catalog name inside each locale directory.
const CatalogFile = "code.toml"

// Locale is one configured site locale.
type Locale struct {
	Code    string
	Tag     language.Tag
	Label   string
	Default bool
	// Base is the URL path the locale is served under, ending in "/".
	Base string
}

// Locales resolves the configured locales in config order.
func Locales(cfg config.Config) ([]Locale, error) {
	out := make([]Locale, 0, len(cfg.I18n.Locales))
	for _, code := range cfg.I18n.Locales {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", code, err)
		}
		loc := Locale{
			Code:    code,
			Tag:     tag,
			Label:   Label(tag),
			Default: code == cfg.I18n.DefaultLocale,
			Base:    cfg.BaseURL,
		}
		if !loc.Default {
			loc.Base = cfg.BaseURL + code + "/"
		}
		out = append(out, loc)
	}
	return out, nil
}

// Label is the name of the language in itself, e.g. "日本語" for ja.
func Label(tag language.Tag) string {
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return tag.String()
}

// Translator looks up copy for one locale.
type Translator struct {
	locale   string
	messages map[string]string
}

// NewTranslator builds a translator from an in-memory catalog.
func NewTranslator(locale string, messages map[string]string) *Translator {
	if messages == nil {
		messages = map[string]string{}
	}
	return &Translator{locale: locale, messages: messages}
}

// Load reads dir/<locale>/code.toml. A missing catalog yields a
// translator that always returns the default text.
func Load(dir, locale string) (*Translator, error) {
	path := filepath.Join(dir, locale, CatalogFile)
	raw := map[string]interface{}{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewTranslator(locale, nil), nil
		}
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}

	messages := map[string]string{}
	if err := flatten("", raw, messages); err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return NewTranslator(locale, messages), nil
}

// flatten accepts both `"homepage.subtitle" = "..."` and nested tables,
// and tables carrying a `message` key (with an optional description).
func flatten(prefix string, in map[string]interface{}, out map[string]string) error {
	for k, v := range in {
		id := k
		if prefix != "" {
			id = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[id] = val
		case map[string]interface{}:
			if msg, ok := val["message"].(string); ok {
				out[id] = msg
				continue
			}
			if err := flatten(id, val, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("message %q: unsupported value of type %T", id, v)
		}
	}
	return nil
}

func (t *Translator) Locale() string { return t.locale }

// Lookup returns the translation for id, or def when there is none.
func (t *Translator) Lookup(id, def string) string {
	if t != nil {
		if s, ok := t.messages[id]; ok && s != "" {
			return s
		}
	}
	return def
}

// T translates msg.
func (t *Translator) T(msg model.Message) string {
	return t.Lookup(msg.ID, msg.Default)
}

// IDs returns the catalog ids in sorted order.
func (t *Translator) IDs() []string {
	ids := make([]string, 0, len(t.messages))
	for id := range t.messages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadAll loads the catalog of every locale.
func LoadAll(dir string, locales []Locale) (map[string]*Translator, error) {
	out := make(map[string]*Translator, len(locales))
	for _, loc := range locales {
		tr, err := Load(dir, loc.Code)
		if err != nil {
			return nil, err
		}
		out[loc.Code] = tr
	}
	return out, nil
}
