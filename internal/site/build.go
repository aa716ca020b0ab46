// Package site builds the static website: one HTML tree per locale under
// the configured output directory.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tkmfujise/redscribe-docs/internal/assets"
	"github.com/tkmfujise/redscribe-docs/internal/config"
	"github.com/tkmfujise/redscribe-docs/internal/content"
	"github.com/tkmfujise/redscribe-docs/internal/ctxlog"
	"github.com/tkmfujise/redscribe-docs/internal/docs"
	"github.com/tkmfujise/redscribe-docs/internal/i18n"
	"github.com/tkmfujise/redscribe-docs/internal/model"
	"github.com/tkmfujise/redscribe-docs/internal/render"
)

// ErrBrokenLinks is returned when onBrokenLinks is "throw" and an
// internal link points to no generated page.
var ErrBrokenLinks = errors.New("broken links")

const defaultSidebar = "tutorialSidebar"

// BrokenLink is an internal link without a target page.
type BrokenLink struct {
	Locale string
	// Page is the source page, relative to the locale base.
	Page   string
	Target string
}

func (b BrokenLink) String() string {
	return fmt.Sprintf("[%s] %s -> /%s", b.Locale, b.Page, b.Target)
}

// Result summarizes a build.
type Result struct {
	// Pages maps a locale to the written HTML files, relative to the
	// output directory.
	Pages       map[string][]string
	BrokenLinks []BrokenLink
}

// Count returns the number of HTML files written.
func (r *Result) Count() int {
	n := 0
	for _, pages := range r.Pages {
		n += len(pages)
	}
	return n
}

// Builder renders the site described by a Config.
type Builder struct {
	cfg config.Config
	now func() time.Time
}

func NewBuilder(cfg config.Config) *Builder {
	return &Builder{cfg: cfg, now: time.Now}
}

// Build renders the site of cfg into cfg.OutputDir.
func Build(ctx context.Context, cfg config.Config) (*Result, error) {
	return NewBuilder(cfg).Build(ctx)
}

type localeResult struct {
	pages []string
	// links maps a page path to the internal links found on it.
	links map[string][]string
	// assets maps a page path to the static files it references,
	// relative to the site base.
	assets map[string][]string
	// routes holds every generated page path, trimmed of slashes.
	routes map[string]bool
}

func (b *Builder) Build(ctx context.Context) (*Result, error) {
	cfg := b.cfg
	log := ctxlog.FromContext(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Info("starting build", "outputDir", cfg.OutputDir, "baseUrl", cfg.BaseURL, "title", cfg.Title)

	locales, err := i18n.Locales(cfg)
	if err != nil {
		return nil, err
	}
	translators, err := i18n.LoadAll(cfg.Paths.I18n, locales)
	if err != nil {
		return nil, err
	}
	sidebars, err := docs.LoadSidebars(cfg.Paths.Sidebars)
	if err != nil {
		return nil, err
	}
	static := assets.Project(cfg.Paths.Static)
	renderer, err := render.New(render.Options{
		LayoutsDir: cfg.Paths.Layouts,
		Assets:     static,
		AssetBase:  cfg.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	if err := checkSiteAssets(cfg, static); err != nil {
		return nil, err
	}

	// nothing on disk changes before this point
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := prepareOutput(ctx, cfg); err != nil {
		return nil, err
	}

	results := make([]localeResult, len(locales))
	g, gctx := errgroup.WithContext(ctx)
	for i, loc := range locales {
		g.Go(func() error {
			lb := &localeBuild{
				cfg:      cfg,
				locale:   loc,
				renderer: renderer,
				sidebars: sidebars,
				chrome: &chrome{
					cfg:     cfg,
					locale:  loc,
					locales: locales,
					static:  static,
					tr:      translators[loc.Code],
					year:    b.now().Year(),
				},
			}
			res, err := lb.run(gctx)
			if err != nil {
				return fmt.Errorf("build locale %s: %w", loc.Code, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Pages: make(map[string][]string, len(locales))}
	for i, loc := range locales {
		result.Pages[loc.Code] = results[i].pages
		result.BrokenLinks = append(result.BrokenLinks, b.brokenLinks(loc, results[i])...)
	}

	if err := b.reportBrokenLinks(ctx, result.BrokenLinks); err != nil {
		return nil, err
	}
	log.Info("build completed", "pages", result.Count(), "locales", len(locales))
	return result, nil
}

func prepareOutput(ctx context.Context, cfg config.Config) error {
	log := ctxlog.FromContext(ctx)
	outputDir := cfg.OutputDir

	log.Debug("cleaning output directory", "dir", outputDir)
	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("failed to remove output directory '%s': %w", outputDir, err)
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	if err := copyFS(assets.Default(), outputDir); err != nil {
		return fmt.Errorf("failed to copy default assets: %w", err)
	}
	if _, err := os.Stat(cfg.Paths.Static); err == nil {
		log.Debug("copying static assets", "from", cfg.Paths.Static, "to", outputDir)
		if err := copyDirContents(cfg.Paths.Static, outputDir); err != nil {
			return fmt.Errorf("failed to copy static assets: %w", err)
		}
	} else {
		log.Debug("static assets directory not found, skipping copy", "dir", cfg.Paths.Static)
	}
	return nil
}

// checkSiteAssets fails the build when a static file named by the
// configuration is missing.
func checkSiteAssets(cfg config.Config, static fs.FS) error {
	refs := map[string]string{
		"favicon":           cfg.Favicon,
		"themeConfig.image": cfg.Theme.Image,
		"navbar logo":       cfg.Theme.Navbar.Logo.Src,
	}
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ref := refs[name]; ref != "" && !assets.IsFile(static, ref) {
			return fmt.Errorf("%s %s: %w", name, ref, fs.ErrNotExist)
		}
	}
	return nil
}

// brokenLinks checks every recorded link against the file its href
// points to: page links against the locale tree, asset links against the
// shared static files at the output root.
func (b *Builder) brokenLinks(loc i18n.Locale, res localeResult) []BrokenLink {
	var out []BrokenLink
	localeDir := filepath.Join(b.cfg.OutputDir, filepath.FromSlash(strings.TrimPrefix(loc.Base, b.cfg.BaseURL)))
	for _, page := range sortedKeys(res.links) {
		for _, target := range res.links[page] {
			route := strings.Trim(target, "/")
			if res.routes[route] || isFile(filepath.Join(localeDir, filepath.FromSlash(route))) {
				continue
			}
			out = append(out, BrokenLink{Locale: loc.Code, Page: page, Target: route})
		}
	}
	for _, page := range sortedKeys(res.assets) {
		for _, target := range res.assets[page] {
			if isFile(filepath.Join(b.cfg.OutputDir, filepath.FromSlash(target))) {
				continue
			}
			out = append(out, BrokenLink{Locale: loc.Code, Page: page, Target: target})
		}
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func (b *Builder) reportBrokenLinks(ctx context.Context, broken []BrokenLink) error {
	if len(broken) == 0 {
		return nil
	}
	log := ctxlog.FromContext(ctx)
	switch b.cfg.OnBrokenLinks {
	case config.PolicyThrow:
		lines := make([]string, len(broken))
		for i, bl := range broken {
			lines[i] = bl.String()
		}
		return fmt.Errorf("%w:\n  %s", ErrBrokenLinks, strings.Join(lines, "\n  "))
	case config.PolicyWarn:
		for _, bl := range broken {
			log.Warn("broken link", "locale", bl.Locale, "page", bl.Page, "target", bl.Target)
		}
	case config.PolicyLog:
		for _, bl := range broken {
			log.Info("broken link", "locale", bl.Locale, "page", bl.Page, "target", bl.Target)
		}
	}
	return nil
}

// localeBuild renders the pages of one locale.
type localeBuild struct {
	cfg      config.Config
	locale   i18n.Locale
	renderer *render.Renderer
	sidebars docs.Sidebars
	chrome   *chrome
	log      *slog.Logger

	res localeResult
}

func (lb *localeBuild) run(ctx context.Context) (localeResult, error) {
	log := ctxlog.FromContext(ctx).With("locale", lb.locale.Code)
	ctx = ctxlog.WithLogger(ctx, log)
	lb.log = log
	lb.res = localeResult{links: map[string][]string{}, assets: map[string][]string{}, routes: map[string]bool{}}

	opts := docs.OptionsFor(lb.cfg, lb.locale.Code, lb.locale.Base)
	docItems, err := docs.Load(ctx, opts, docs.Docs)
	if err != nil {
		return localeResult{}, err
	}
	pageItems, err := docs.Load(ctx, opts, docs.Pages)
	if err != nil {
		return localeResult{}, err
	}

	sidebar, missing := lb.sidebars.Resolve(lb.sidebarID(), docItems)
	for _, id := range missing {
		log.Warn("sidebar references unknown doc", "sidebar", lb.sidebarID(), "doc", id)
	}
	lb.chrome.docsEntry = docs.Docs.Prefix
	if len(sidebar) > 0 {
		lb.chrome.docsEntry = sidebar[0].Permalink
	}
	lb.res.links["(navbar/footer)"], lb.res.assets["(navbar/footer)"] = lb.chrome.internalLinks()

	if err := lb.home(); err != nil {
		return localeResult{}, err
	}
	for _, item := range docItems {
		if err := ctx.Err(); err != nil {
			return localeResult{}, err
		}
		if err := lb.doc(item, sidebar); err != nil {
			return localeResult{}, err
		}
	}
	for _, item := range pageItems {
		if err := ctx.Err(); err != nil {
			return localeResult{}, err
		}
		if err := lb.standalone(item); err != nil {
			return localeResult{}, err
		}
	}
	if err := lb.notFound(); err != nil {
		return localeResult{}, err
	}

	log.Info("locale built", "pages", len(lb.res.pages), "docs", len(docItems))
	return lb.res, nil
}

func (lb *localeBuild) sidebarID() string {
	for _, item := range lb.cfg.Theme.Navbar.Items {
		if item.Type == "docSidebar" && item.SidebarID != "" {
			return item.SidebarID
		}
	}
	return defaultSidebar
}

func (lb *localeBuild) home() error {
	page := lb.chrome.page("", "", content.HomeDescription)
	tr := lb.chrome.tr
	lb.res.links[""] = append(lb.res.links[""], content.TutorialPath)
	return lb.write("", "index.html", func(w io.Writer) error {
		return lb.renderer.ComposeHomepage(w, page, content.Features(), tr)
	})
}

func (lb *localeBuild) doc(item *model.ContentItem, sidebar []*model.ContentItem) error {
	page := lb.chrome.page(item.Permalink, item.Title, item.Description)
	page.Item = item
	page.Content = item.ContentHTML
	for _, s := range sidebar {
		page.Sidebar = append(page.Sidebar, model.Link{
			Label:  s.Label(),
			Href:   lb.locale.Base + s.Permalink,
			Active: s.Permalink == item.Permalink,
		})
	}
	lb.res.links[item.Permalink] = item.Links
	lb.res.assets[item.Permalink] = item.Assets
	return lb.write(item.Permalink, "index.html", func(w io.Writer) error {
		return lb.renderer.Execute(w, lb.layout(item, render.DocLayout), page)
	})
}

func (lb *localeBuild) standalone(item *model.ContentItem) error {
	page := lb.chrome.page(item.Permalink, item.Title, item.Description)
	page.Item = item
	page.Content = item.ContentHTML
	lb.res.links[item.Permalink] = item.Links
	lb.res.assets[item.Permalink] = item.Assets
	return lb.write(item.Permalink, "index.html", func(w io.Writer) error {
		return lb.renderer.Execute(w, lb.layout(item, render.ShowcaseLayout), page)
	})
}

func (lb *localeBuild) notFound() error {
	tr := lb.chrome.tr
	page := lb.chrome.page("404.html", tr.Lookup("theme.NotFound.title", "Page Not Found"), "")
	page.Content = template.HTML("<p>" + template.HTMLEscapeString(
		tr.Lookup("theme.NotFound.p1", "We could not find what you were looking for."),
	) + "</p>")
	return lb.writeFile("404.html", func(w io.Writer) error {
		return lb.renderer.Execute(w, render.NotFoundLayout, page)
	})
}

// layout honors a `layout` front matter key when the layout exists.
func (lb *localeBuild) layout(item *model.ContentItem, fallback string) string {
	name, _ := item.Frontmatter["layout"].(string)
	if name == "" {
		return fallback
	}
	if !lb.renderer.Has(name) {
		lb.log.Warn("front matter layout not found", "file", item.SourcePath, "layout", name, "using", fallback)
		return fallback
	}
	return name
}

// write renders the page at pagePath into <pagePath>/<file>.
func (lb *localeBuild) write(pagePath, file string, fn func(io.Writer) error) error {
	lb.res.routes[strings.Trim(pagePath, "/")] = true
	return lb.writeFile(pagePath+file, fn)
}

func (lb *localeBuild) writeFile(rel string, fn func(io.Writer) error) error {
	localeRel := strings.TrimPrefix(lb.locale.Base, lb.cfg.BaseURL) + rel
	outputPath := filepath.Join(lb.cfg.OutputDir, filepath.FromSlash(localeRel))

	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return fmt.Errorf("render %s: %w", localeRel, err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", filepath.Dir(outputPath), err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", outputPath, err)
	}
	lb.res.pages = append(lb.res.pages, localeRel)
	return nil
}
