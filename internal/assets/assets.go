// Package assets embeds the default static files of the site and
// resolves inline icons.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

//go:embed static
var embedded embed.FS

// Default returns the embedded static tree rooted at "static".
func Default() fs.FS {
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Layered reads from the first filesystem that has the requested file.
type Layered []fs.FS

func (l Layered) Open(name string) (fs.File, error) {
	for _, fsys := range l {
		f, err := fsys.Open(name)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Project layers the project static directory (if present) over the
// embedded defaults.
func Project(staticDir string) fs.FS {
	if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
		return Layered{os.DirFS(staticDir), Default()}
	}
	return Default()
}

// IsFile reports whether the site-relative path names a regular file in
// fsys.
func IsFile(fsys fs.FS, name string) bool {
	name = strings.TrimPrefix(name, "/")
	if name == "" || !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}

var (
	xmlProlog = regexp.MustCompile(`(?s)^\s*<\?xml.*?\?>\s*`)
	svgOpen   = regexp.MustCompile(`(?s)<svg\b[^>]*>`)
	svgAttr   = regexp.MustCompile(`\s+(class|role)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// Icon reads the SVG at ref and returns it as inline markup tagged with
// class and role="img". Classes already on the root element are kept
// after class; an existing role is replaced.
func Icon(fsys fs.FS, ref, class string) (template.HTML, error) {
	data, err := fs.ReadFile(fsys, strings.TrimPrefix(ref, "/"))
	if err != nil {
		return "", fmt.Errorf("read icon %s: %w", ref, err)
	}
	svg := xmlProlog.ReplaceAllString(string(data), "")
	loc := svgOpen.FindStringIndex(svg)
	if loc == nil {
		return "", fmt.Errorf("icon %s is not an SVG document", ref)
	}

	classes := []string{class}
	tag := svgAttr.ReplaceAllStringFunc(svg[loc[0]:loc[1]], func(attr string) string {
		m := svgAttr.FindStringSubmatch(attr)
		if m[1] == "class" {
			for _, c := range strings.Fields(m[2] + m[3]) {
				if c != class {
					classes = append(classes, c)
				}
			}
		}
		return ""
	})
	attrs := fmt.Sprintf(` class="%s" role="img"`, template.HTMLEscapeString(strings.Join(classes, " ")))
	svg = "<svg" + attrs + strings.TrimPrefix(tag, "<svg") + svg[loc[1]:]
	return template.HTML(strings.TrimSpace(svg)), nil
}
