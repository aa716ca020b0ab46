// Package render turns site data into HTML pages using html/template
// layouts. Default layouts are embedded; a project layouts directory can
// override any of them by file name.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tkmfujise/redscribe-docs/internal/assets"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page templates.
const (
	HomeLayout     = "home.html"
	DocLayout      = "doc.html"
	ShowcaseLayout = "showcase.html"
	NotFoundLayout = "404.html"
)

// Options configure a Renderer.
type Options struct {
	// LayoutsDir holds optional .html overrides.
	LayoutsDir string
	// Assets holds the static files: inline icons are read from it and
	// feature images must exist in it. Defaults to the embedded assets.
	Assets fs.FS
	// AssetBase prefixes static asset references, usually the site base URL.
	AssetBase string
}

type Renderer struct {
	tmpl      *template.Template
	assets    fs.FS
	assetBase string
}

// New parses the embedded layouts, then the overrides in opts.LayoutsDir.
func New(opts Options) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded layouts: %w", err)
	}

	overrides, err := layoutFiles(opts.LayoutsDir)
	if err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		tmpl, err = tmpl.ParseFiles(overrides...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layout files: %w", err)
		}
	}

	for _, name := range []string{HomeLayout, DocLayout, ShowcaseLayout, NotFoundLayout, "features"} {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("layout %q not found", name)
		}
	}
	if opts.Assets == nil {
		opts.Assets = assets.Default()
	}
	return &Renderer{tmpl: tmpl, assets: opts.Assets, assetBase: opts.AssetBase}, nil
}

// layoutFiles lists dir/*.html with base.html and partials first so that
// page layouts parsed later can use what they define.
func layoutFiles(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find layout files in '%s': %w", dir, err)
	}
	rank := func(p string) int {
		switch {
		case filepath.Base(p) == "base.html":
			return 0
		case strings.Contains(filepath.ToSlash(p), "/partials/"):
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		if rank(files[i]) != rank(files[j]) {
			return rank(files[i]) < rank(files[j])
		}
		return files[i] < files[j]
	})
	return files, nil
}

// Has reports whether a layout called name exists.
func (r *Renderer) Has(name string) bool {
	return r.tmpl.Lookup(name) != nil
}

// Execute renders the named layout to w.
func (r *Renderer) Execute(w io.Writer, name string, data any) error {
	// render into a buffer so a failing template leaves w untouched
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to execute template '%s': %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

var funcs = template.FuncMap{
	"hasH1": func(h template.HTML) bool {
		return strings.Contains(string(h), "<h1")
	},
	"prismTheme": prismThemeURL,
}

// prismThemeURL maps a theme name to a stylesheet from the prism-themes
// package. "github" has no exact counterpart there; ghcolors is closest.
func prismThemeURL(name string) string {
	switch name {
	case "":
		return ""
	case "github":
		name = "ghcolors"
	}
	return "https://cdn.jsdelivr.net/npm/prism-themes@1/themes/prism-" + name + ".min.css"
}
