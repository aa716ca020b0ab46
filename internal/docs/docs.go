// Package docs loads the Markdown documents of the site: the tutorial
// docs and standalone pages such as the showcase.
package docs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark/ast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tkmfujise/redscribe-docs/internal/assets"
	"github.com/tkmfujise/redscribe-docs/internal/config"
	"github.com/tkmfujise/redscribe-docs/internal/ctxlog"
	"github.com/tkmfujise/redscribe-docs/internal/model"
)

// ErrBrokenMarkdownLink is returned for an unresolvable relative .md link
// when the policy is "throw".
var ErrBrokenMarkdownLink = errors.New("broken markdown link")

// Collection is a directory of Markdown files published under Prefix.
type Collection struct {
	Dir    string
	Prefix string
}

var (
	Docs  = Collection{Dir: "docs", Prefix: "docs/"}
	Pages = Collection{Dir: "pages", Prefix: ""}
)

// Options locate the sources of one locale.
type Options struct {
	ContentDir    string
	I18nDir       string
	Locale        string
	DefaultLocale string
	// Base is the URL path the locale is served under, ending in "/".
	Base string
	// SiteBase is the URL path static files are served under.
	SiteBase string
	// Static resolves site-absolute links to static files. Nil treats every
	// site-absolute link as a page.
	Static                fs.FS
	Mermaid               bool
	OnBrokenMarkdownLinks string
}

// OptionsFor derives the loader options of locale from cfg.
func OptionsFor(cfg config.Config, locale, base string) Options {
	return Options{
		ContentDir:            cfg.Paths.Content,
		I18nDir:               cfg.Paths.I18n,
		Locale:                locale,
		DefaultLocale:         cfg.I18n.DefaultLocale,
		Base:                  base,
		SiteBase:              cfg.BaseURL,
		Static:                assets.Project(cfg.Paths.Static),
		Mermaid:               cfg.Markdown.Mermaid,
		OnBrokenMarkdownLinks: cfg.OnBrokenMarkdownLinks,
	}
}

type source struct {
	id   string
	path string
	fm   map[string]interface{}
	body []byte
}

// Load reads every Markdown file of coll for the locale in opts. A file
// under <i18n>/<locale>/<coll.Dir>/ replaces the default-locale file with
// the same id. Items are returned sorted by id.
func Load(ctx context.Context, opts Options, coll Collection) ([]*model.ContentItem, error) {
	log := ctxlog.FromContext(ctx).With("collection", coll.Dir)

	root := filepath.Join(opts.ContentDir, coll.Dir)
	ids, err := findMarkdown(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("collection directory not found, skipping", "dir", root)
			return nil, nil
		}
		return nil, err
	}

	var sources []source
	for _, id := range ids {
		p := filepath.Join(root, filepath.FromSlash(id)+".md")
		if opts.Locale != opts.DefaultLocale {
			translated := filepath.Join(opts.I18nDir, opts.Locale, coll.Dir, filepath.FromSlash(id)+".md")
			if _, err := os.Stat(translated); err == nil {
				p = translated
			} else {
				log.Debug("no translation, using default locale", "doc", id)
			}
		}
		src, err := readSource(id, p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	items := make([]*model.ContentItem, len(sources))
	byID := make(map[string]*model.ContentItem, len(sources))
	for i, src := range sources {
		items[i] = newItem(src, opts.Locale, coll)
		byID[src.id] = items[i]
	}

	md := newMarkdown(opts.Mermaid)
	for i, src := range sources {
		item := items[i]
		rw := &linkRewriter{opts: opts, item: item, byID: byID}
		html, doc, err := render(md, src.body, rw.visit)
		if err != nil {
			return nil, fmt.Errorf("failed to convert markdown to HTML for file '%s': %w", src.path, err)
		}
		for _, broken := range rw.broken {
			switch opts.OnBrokenMarkdownLinks {
			case config.PolicyThrow:
				return nil, fmt.Errorf("%w: %s links to %s", ErrBrokenMarkdownLink, src.path, broken)
			case config.PolicyWarn:
				log.Warn("broken markdown link", "file", src.path, "target", broken)
			case config.PolicyLog:
				log.Info("broken markdown link", "file", src.path, "target", broken)
			}
		}
		if item.Title == "" {
			item.Title = firstHeading(doc, src.body)
		}
		if item.Title == "" {
			item.Title = titleFromID(src.id)
		}
		item.ContentHTML = template.HTML(html)
		log.Debug("rendered", "file", src.path, "permalink", item.Permalink)
	}
	return items, nil
}

func findMarkdown(root string) ([]string, error) {
	var ids []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", p, err)
		}
		ids = append(ids, strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel)))
		return nil
	})
	sort.Strings(ids)
	return ids, err
}

func readSource(id, p string) (source, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return source{}, fmt.Errorf("failed to read file '%s': %w", p, err)
	}
	fm := map[string]interface{}{}
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return source{}, fmt.Errorf("failed to parse front matter of '%s': %w", p, err)
	}
	return source{id: id, path: p, fm: fm, body: body}, nil
}

func newItem(src source, locale string, coll Collection) *model.ContentItem {
	item := &model.ContentItem{
		ID:              src.id,
		Title:           stringField(src.fm, "title"),
		Description:     stringField(src.fm, "description"),
		SidebarLabel:    stringField(src.fm, "sidebar_label"),
		SidebarPosition: numberField(src.fm, "sidebar_position"),
		SourcePath:      src.path,
		Locale:          locale,
		Frontmatter:     src.fm,
	}

	slug := src.id
	if s := stringField(src.fm, "slug"); s != "" {
		if strings.HasPrefix(s, "/") {
			slug = strings.Trim(s, "/")
		} else {
			slug = path.Join(path.Dir(src.id), s)
		}
	}
	item.Slug = strings.Trim(slug, "/")
	if item.Slug == "" || item.Slug == "." {
		item.Slug = ""
		item.Permalink = coll.Prefix
	} else {
		item.Permalink = coll.Prefix + item.Slug + "/"
	}
	return item
}

func stringField(fm map[string]interface{}, key string) string {
	s, _ := fm[key].(string)
	return s
}

func numberField(fm map[string]interface{}, key string) float64 {
	switch v := fm[key].(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

func titleFromID(id string) string {
	base := path.Base(id)
	base = strings.ReplaceAll(strings.ReplaceAll(base, "-", " "), "_", " ")
	return cases.Title(language.English).String(base)
}

// linkRewriter maps site-absolute and relative .md links to locale URLs
// and records the internal targets for broken-link checking. Static
// files are shared by all locales and resolve against the site base.
type linkRewriter struct {
	opts   Options
	item   *model.ContentItem
	byID   map[string]*model.ContentItem
	broken []string
}

func (r *linkRewriter) visit(n ast.Node) error {
	switch n := n.(type) {
	case *ast.Link:
		n.Destination = r.link(n.Destination)
	case *ast.Image:
		n.Destination = r.image(n.Destination)
	}
	return nil
}

func (r *linkRewriter) link(dest []byte) []byte {
	u, ok := internalURL(dest)
	if !ok {
		return dest
	}

	var target string
	switch {
	case strings.HasPrefix(u.Path, "/"):
		target = strings.TrimPrefix(u.Path, "/")
		if r.isStatic(target) {
			r.item.Assets = append(r.item.Assets, target)
			return withSuffix(r.opts.SiteBase+target, u)
		}
	case strings.HasSuffix(u.Path, ".md"):
		id := path.Join(path.Dir(r.item.ID), strings.TrimSuffix(u.Path, ".md"))
		doc, ok := r.byID[id]
		if !ok {
			r.broken = append(r.broken, string(dest))
			return dest
		}
		target = doc.Permalink
	default:
		return dest
	}

	r.item.Links = append(r.item.Links, target)
	return withSuffix(r.opts.Base+target, u)
}

// image points site-absolute sources at the site base; images are
// always static files.
func (r *linkRewriter) image(dest []byte) []byte {
	u, ok := internalURL(dest)
	if !ok || !strings.HasPrefix(u.Path, "/") || r.opts.Static == nil {
		return dest
	}
	target := strings.TrimPrefix(u.Path, "/")
	r.item.Assets = append(r.item.Assets, target)
	return withSuffix(r.opts.SiteBase+target, u)
}

func (r *linkRewriter) isStatic(target string) bool {
	return r.opts.Static != nil && assets.IsFile(r.opts.Static, target)
}

func internalURL(dest []byte) (*url.URL, bool) {
	s := string(dest)
	if s == "" || strings.HasPrefix(s, "#") || strings.HasPrefix(s, "//") {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme != "" {
		return nil, false
	}
	return u, true
}

func withSuffix(out string, u *url.URL) []byte {
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		out += "#" + u.Fragment
	}
	return []byte(out)
}
