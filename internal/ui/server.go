// Package ui provides the DataPulse web UI server.
package ui

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/datapulse/internal/events"
	"github.com/leapstack-labs/datapulse/internal/ui/features/common"
	"github.com/leapstack-labs/datapulse/internal/ui/notifier"
	"github.com/leapstack-labs/datapulse/internal/ui/router"
	"github.com/leapstack-labs/datapulse/internal/ui/workspace"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// Defaults for session housekeeping.
const (
	DefaultSessionIdle   = 30 * time.Minute
	DefaultSweepInterval = time.Minute
	reloadDebounce       = 100 * time.Millisecond
)

// ReloadFunc replaces the served dataset and reports what was loaded.
type ReloadFunc func(ctx context.Context) (events.ReloadSummary, error)

// Server is the main UI server.
type Server struct {
	catalog      core.Catalog
	publisher    events.Publisher
	sessionStore sessions.Store
	port         int
	watch        bool
	seedFile     string
	reload       ReloadFunc
	sessionIdle  time.Duration
	logger       *slog.Logger
	notifier     *notifier.Notifier

	once      sync.Once
	handler   http.Handler
	sweepers  []workspace.Sweeper
	setupErr  error
	reloadsMu sync.Mutex
}

// Config holds configuration for the UI server.
type Config struct {
	Catalog   core.Catalog
	Publisher events.Publisher
	Port      int
	// Watch enables the dev reload endpoints and, with SeedFile and Reload
	// set, live reloading of the dataset.
	Watch    bool
	SeedFile string
	Reload   ReloadFunc
	// SessionSecret signs the session cookie. Empty generates one.
	SessionSecret string
	SessionIdle   time.Duration
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	secret := cfg.SessionSecret
	if secret == "" {
		secret = generateSecret()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.Noop{}
	}
	idle := cfg.SessionIdle
	if idle <= 0 {
		idle = DefaultSessionIdle
	}

	return &Server{
		catalog:      cfg.Catalog,
		publisher:    publisher,
		sessionStore: workspace.NewCookieStore([]byte(secret)),
		port:         cfg.Port,
		watch:        cfg.Watch,
		seedFile:     cfg.SeedFile,
		reload:       cfg.Reload,
		sessionIdle:  idle,
		logger:       logger,
		notifier:     notifier.New(),
	}
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() (http.Handler, error) {
	s.once.Do(func() {
		r := chi.NewMux()
		r.Use(
			middleware.Logger,
			middleware.Recoverer,
			middleware.Compress(5),
		)

		sweepers, err := router.SetupRoutes(r, common.Deps{
			Catalog:      s.catalog,
			SessionStore: s.sessionStore,
			Notifier:     s.notifier,
			Publisher:    s.publisher,
			Logger:       s.logger,
			IsDev:        s.IsDev(),
		})
		if err != nil {
			s.setupErr = fmt.Errorf("failed to setup routes: %w", err)
			return
		}
		s.handler = r
		s.sweepers = sweepers
	})
	return s.handler, s.setupErr
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watchesSeed() {
		eg.Go(func() error {
			return s.watchSeed(egctx)
		})
	}

	eg.Go(func() error {
		s.sweepSessions(egctx, DefaultSweepInterval)
		return nil
	})

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev reports whether the dev reload endpoints are served.
func (s *Server) IsDev() bool {
	return s.watch
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

func (s *Server) watchesSeed() bool {
	return s.watch && s.seedFile != "" && s.reload != nil
}

// sweepSessions drops page state for sessions idle longer than sessionIdle.
func (s *Server) sweepSessions(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepSessions()
		}
	}
}

// SweepSessions runs one sweep over every per-session store and returns the
// number of states dropped.
func (s *Server) SweepSessions() int {
	dropped := 0
	for _, sw := range s.sweepers {
		dropped += sw.Sweep(s.sessionIdle)
	}
	if dropped > 0 {
		s.logger.Debug("swept idle sessions", "dropped", dropped)
	}
	return dropped
}

// ReloadNow reloads the dataset, tells every open page and publishes a
// catalog.reloaded event.
func (s *Server) ReloadNow(ctx context.Context) error {
	if s.reload == nil {
		return errors.New("dataset reload is not supported by this backend")
	}

	s.reloadsMu.Lock()
	defer s.reloadsMu.Unlock()

	summary, err := s.reload(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload dataset: %w", err)
	}

	s.logger.Info("dataset reloaded",
		"source", summary.Source,
		"connections", summary.Connections,
		"tables", summary.Tables,
	)
	s.notifier.Broadcast(notifier.Change{Kind: notifier.CatalogReloaded})
	if err := s.publisher.Publish(ctx, events.CatalogReloaded(summary)); err != nil {
		s.logger.Warn("failed to publish event", "error", err)
	}
	return nil
}

// watchSeed watches the seed file and reloads the dataset when it changes.
// The parent directory is watched so editors that replace the file on save
// are still seen.
func (s *Server) watchSeed(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(s.seedFile)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch seed file", "file", target, "error", err)
		// Don't fail - continue without watching
		<-ctx.Done()
		return nil
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, func() {
				s.logger.Debug("seed file changed, reloading", "file", event.Name)
				if err := s.ReloadNow(ctx); err != nil {
					s.logger.Error("reload failed", "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

func generateSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "datapulse-fallback-secret-key-32b"
	}
	return hex.EncodeToString(b)
}
