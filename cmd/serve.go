package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/tkmfujise/redscribe-docs/internal/config"
	"github.com/tkmfujise/redscribe-docs/internal/ctxlog"
	"github.com/tkmfujise/redscribe-docs/internal/site"
)

var (
	serverHost string
	serverPort int
)

const debounceDuration = 500 * time.Millisecond

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and rebuilds it on changes",
	Long: `The serve command performs an initial build, then serves the output
directory under the configured base URL. Content, translations, layouts,
static files and the config file are watched; any change triggers a rebuild.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := ctxlog.FromContext(ctx)

		log.Info("performing initial build")
		if _, err := site.Build(ctx, appConfig); err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()

		rb := &rebuilder{cfg: appConfig}
		go rb.watch(ctx, watcher)
		watchPaths(ctx, watcher, appConfig)

		addr := fmt.Sprintf("%s:%d", serverHost, serverPort)
		srv := &http.Server{
			Addr:              addr,
			Handler:           newSiteHandler(rb),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() { errc <- srv.ListenAndServe() }()
		log.Info("serving site", "url", fmt.Sprintf("http://localhost:%d%s", serverPort, appConfig.BaseURL), "dir", appConfig.OutputDir)

		select {
		case err := <-errc:
			return fmt.Errorf("failed to start HTTP server: %w", err)
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// rebuilder serializes rebuilds and tracks the config they use. mu only
// guards cfg, so requests are served from the previous output while a
// build runs.
type rebuilder struct {
	building sync.Mutex

	mu  sync.RWMutex
	cfg config.Config
}

func (rb *rebuilder) config() config.Config {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.cfg
}

func (rb *rebuilder) setConfig(cfg config.Config) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.cfg = cfg
}

func (rb *rebuilder) rebuild(ctx context.Context, reloadConfig bool) {
	log := ctxlog.FromContext(ctx)
	rb.building.Lock()
	defer rb.building.Unlock()
	if ctx.Err() != nil {
		return
	}

	cfg := rb.config()
	if reloadConfig {
		loaded, err := loadConfig(ctx)
		if err != nil {
			log.Error("config reload failed, keeping previous config", "error", err)
		} else {
			cfg = loaded
		}
	}

	log.Info("rebuilding site due to changes")
	start := time.Now()
	_, err := site.Build(ctx, cfg)
	rb.setConfig(cfg)
	if err != nil {
		log.Error("rebuild failed", "error", err)
		return
	}
	log.Info("site rebuilt", "took", time.Since(start).Round(time.Millisecond))
}

func (rb *rebuilder) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	log := ctxlog.FromContext(ctx)
	var (
		buildTimer *time.Timer
		reload     bool
		mu         sync.Mutex
	)
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		if buildTimer != nil {
			buildTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("change detected", "path", event.Name, "op", event.Op.String())

			// new subdirectories are not watched automatically
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					log.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			}

			mu.Lock()
			if filepath.Clean(event.Name) == filepath.Clean(configPath()) {
				reload = true
			}
			if buildTimer != nil {
				buildTimer.Stop()
			}
			buildTimer = time.AfterFunc(debounceDuration, func() {
				if ctx.Err() != nil {
					return
				}
				mu.Lock()
				r := reload
				reload = false
				mu.Unlock()
				rb.rebuild(ctx, r)
			})
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn("watcher error", "error", err)
		}
	}
}

// watchPaths adds the project directories, recursively, and the config
// file's directory to watcher.
func watchPaths(ctx context.Context, watcher *fsnotify.Watcher, cfg config.Config) {
	log := ctxlog.FromContext(ctx)
	for _, root := range []string{cfg.Paths.Content, cfg.Paths.I18n, cfg.Paths.Layouts, cfg.Paths.Static} {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			log.Debug("directory not found, not watching", "dir", root)
			continue
		}
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				log.Warn("error walking directory", "path", path, "error", err)
				return nil
			}
			if d.IsDir() {
				if err := watcher.Add(path); err != nil {
					log.Warn("failed to watch", "path", path, "error", err)
				}
			}
			return nil
		})
		if err != nil {
			log.Warn("error during initial directory walk", "dir", root, "error", err)
		}
	}

	// watching the directory survives editors that replace the file
	if err := watcher.Add(filepath.Dir(configPath())); err != nil {
		log.Warn("failed to watch config directory", "error", err)
	}
	if err := watcher.Add(filepath.Dir(cfg.Paths.Sidebars)); err != nil {
		log.Warn("failed to watch sidebars directory", "error", err)
	}
}

// newSiteHandler serves the output directory under the base URL with
// caching disabled. Unknown paths get the locale's 404 page.
func newSiteHandler(rb *rebuilder) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		cfg := rb.config()
		if !strings.HasPrefix(r.URL.Path, cfg.BaseURL) {
			http.Redirect(w, r, cfg.BaseURL, http.StatusFound)
			return
		}

		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		rel := strings.TrimPrefix(r.URL.Path, cfg.BaseURL)
		file := filepath.Join(cfg.OutputDir, filepath.FromSlash(rel))
		if strings.HasSuffix(r.URL.Path, "/") {
			file = filepath.Join(file, "index.html")
		}
		info, err := os.Stat(file)
		if err == nil && info.IsDir() && isFile(filepath.Join(file, "index.html")) {
			http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
			return
		}
		if err != nil || info.IsDir() {
			serveNotFound(w, r, cfg, rel)
			return
		}
		http.ServeFile(w, r, file)
	})
	return mux
}

func serveNotFound(w http.ResponseWriter, r *http.Request, cfg config.Config, rel string) {
	notFound := filepath.Join(cfg.OutputDir, "404.html")
	for _, loc := range cfg.I18n.Locales {
		if loc != cfg.I18n.DefaultLocale && strings.HasPrefix(rel, loc+"/") {
			notFound = filepath.Join(cfg.OutputDir, loc, "404.html")
			break
		}
	}
	data, err := os.ReadFile(notFound)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(data)
}

// isDir reports whether path is a directory.
func isDir(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

func isFile(path string) bool {
	fileInfo, err := os.Stat(path)
	return err == nil && !fileInfo.IsDir()
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "Host to bind the server to")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 3000, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
