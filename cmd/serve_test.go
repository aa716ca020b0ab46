package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkmfujise/redscribe-docs/internal/config"
)

func TestSiteHandler(t *testing.T) {
	out := t.TempDir()
	for rel, body := range map[string]string{
		"index.html":            "home",
		"docs/intro/index.html": "intro",
		"404.html":              "not found",
		"ja/404.html":           "見つかりません",
		"css/site.css":          "body{}",
	} {
		p := filepath.Join(out, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}

	cfg := config.Default()
	cfg.OutputDir = out
	h := newSiteHandler(&rebuilder{cfg: cfg})

	tests := []struct {
		path     string
		code     int
		body     string
		location string
	}{
		{path: "/", code: http.StatusFound, location: "/redscribe-docs/"},
		{path: "/redscribe-docs/", code: http.StatusOK, body: "home"},
		{path: "/redscribe-docs/docs/intro/", code: http.StatusOK, body: "intro"},
		{path: "/redscribe-docs/docs/intro", code: http.StatusMovedPermanently, location: "/redscribe-docs/docs/intro/"},
		{path: "/redscribe-docs/css/site.css", code: http.StatusOK, body: "body{}"},
		{path: "/redscribe-docs/nope/", code: http.StatusNotFound, body: "not found"},
		{path: "/redscribe-docs/ja/nope/", code: http.StatusNotFound, body: "見つかりません"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
		})
	}
}

func TestSiteHandlerDisablesCaching(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.OutputDir, "index.html"), []byte("home"), 0o644))

	rec := httptest.NewRecorder()
	newSiteHandler(&rebuilder{cfg: cfg}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/redscribe-docs/", nil))
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
}

func TestSiteHandlerServesDuringRebuild(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.OutputDir, "index.html"), []byte("home"), 0o644))

	rb := &rebuilder{cfg: cfg}
	rb.building.Lock()
	defer rb.building.Unlock()

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		rec := httptest.NewRecorder()
		newSiteHandler(rb).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/redscribe-docs/", nil))
		done <- rec
	}()

	select {
	case rec := <-done:
		assert.Equal(t, "home", rec.Body.String())
	case <-time.After(2 * time.Second):
		t.Fatal("request blocked while a build was running")
	}
}

// buildableProject lays out a site that builds cleanly, with a stale
// file in the output directory.
func buildableProject(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	for rel, body := range map[string]string{
		"content/docs/intro.md":            "# Introduction\n",
		"static/img/favicon.ico":           "ico",
		"static/img/social_card.png":       "png",
		"static/img/Editor_screenshot.png": "png",
		"static/img/REPL_screenshot.png":   "png",
		"build/keep.html":                  "old",
	} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}

	cfg := config.Default()
	cfg.OnBrokenLinks = config.PolicyIgnore
	cfg.OutputDir = filepath.Join(root, "build")
	cfg.Paths = config.Paths{
		Content:  filepath.Join(root, "content"),
		I18n:     filepath.Join(root, "i18n"),
		Layouts:  filepath.Join(root, "layouts"),
		Static:   filepath.Join(root, "static"),
		Sidebars: filepath.Join(root, "sidebars.yaml"),
	}
	return cfg
}

func fakeWatcher() *fsnotify.Watcher {
	return &fsnotify.Watcher{Events: make(chan fsnotify.Event), Errors: make(chan error)}
}

func TestWatchRebuildsAfterChange(t *testing.T) {
	cfg := buildableProject(t)
	rb := &rebuilder{cfg: cfg}
	watcher := fakeWatcher()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rb.watch(ctx, watcher)

	watcher.Events <- fsnotify.Event{Name: filepath.Join(cfg.Paths.Content, "docs", "intro.md"), Op: fsnotify.Write}

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, "index.html"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	// wait for the build to finish before the temp dir is removed
	rb.building.Lock()
	defer rb.building.Unlock()
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "keep.html"))
}

func TestWatchDropsPendingRebuildOnShutdown(t *testing.T) {
	cfg := buildableProject(t)
	rb := &rebuilder{cfg: cfg}
	watcher := fakeWatcher()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rb.watch(ctx, watcher)
		close(done)
	}()

	watcher.Events <- fsnotify.Event{Name: filepath.Join(cfg.Paths.Content, "docs", "intro.md"), Op: fsnotify.Write}
	cancel()
	<-done
	time.Sleep(2 * debounceDuration)

	rb.building.Lock()
	defer rb.building.Unlock()
	assert.Equal(t, "old", readOutput(t, cfg, "keep.html"))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "index.html"))
}

func readOutput(t *testing.T, cfg config.Config, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}
