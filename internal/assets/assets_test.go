package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	for _, name := range []string{"img/logo.svg", "css/site.css"} {
		_, err := fs.Stat(Default(), name)
		assert.NoError(t, err, name)
	}
}

func TestIcon(t *testing.T) {
	html, err := Icon(Default(), "img/logo.svg", "featureImage")
	require.NoError(t, err)

	s := string(html)
	assert.NotContains(t, s, "<?xml")
	assert.Regexp(t, `^<svg class="featureImage" role="img" xmlns=`, s)
}

func TestIconMergesRootAttributes(t *testing.T) {
	fsys := fstest.MapFS{
		"img/a.svg": {Data: []byte(`<svg class="brand  featureImage" role='presentation' data-class="keep" viewBox="0 0 1 1"><g class="inner"/></svg>`)},
		"img/b.svg": {Data: []byte(`<svg>` + "\n" + `</svg>`)},
	}

	html, err := Icon(fsys, "img/a.svg", "featureImage")
	require.NoError(t, err)
	s := string(html)
	assert.Equal(t, `<svg class="featureImage brand" role="img" data-class="keep" viewBox="0 0 1 1"><g class="inner"/></svg>`, s)
	assert.Equal(t, 1, strings.Count(s[:strings.Index(s, ">")], " class="))

	html, err = Icon(fsys, "img/b.svg", "x")
	require.NoError(t, err)
	assert.Equal(t, "<svg class=\"x\" role=\"img\">\n</svg>", string(html))
}

func TestIsFile(t *testing.T) {
	fsys := fstest.MapFS{"img/a.png": {Data: []byte("png")}}

	assert.True(t, IsFile(fsys, "img/a.png"))
	assert.True(t, IsFile(fsys, "/img/a.png"))
	assert.False(t, IsFile(fsys, "img"))
	assert.False(t, IsFile(fsys, "img/b.png"))
	assert.False(t, IsFile(fsys, "/"))
	assert.False(t, IsFile(fsys, "../img/a.png"))
}

func TestIconErrors(t *testing.T) {
	fsys := fstest.MapFS{"img/not.svg": {Data: []byte("<png/>")}}

	_, err := Icon(fsys, "img/missing.svg", "x")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = Icon(fsys, "/img/not.svg", "x")
	assert.ErrorContains(t, err, "not an SVG")
}

func TestProjectOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img", "logo.svg"), []byte(`<svg id="custom"></svg>`), 0o644))

	fsys := Project(dir)
	data, err := fs.ReadFile(fsys, "img/logo.svg")
	require.NoError(t, err)
	assert.Equal(t, `<svg id="custom"></svg>`, string(data))

	// falls through to the embedded files
	_, err = fs.ReadFile(fsys, "css/site.css")
	assert.NoError(t, err)

	// a missing project dir means defaults only
	_, err = fs.ReadFile(Project(filepath.Join(dir, "nope")), "css/site.css")
	assert.NoError(t, err)
}
