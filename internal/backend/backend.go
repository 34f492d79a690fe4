// Package backend opens the catalog backend selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/datapulse/internal/apiclient"
	"github.com/leapstack-labs/datapulse/internal/catalog"
	"github.com/leapstack-labs/datapulse/internal/cli/config"
	"github.com/leapstack-labs/datapulse/internal/simulate"
	"github.com/leapstack-labs/datapulse/internal/state"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// Reloader is implemented by backends whose dataset can be replaced at runtime.
type Reloader interface {
	Reload(ds catalog.Dataset)
}

// Backend is an opened catalog.
type Backend struct {
	Catalog core.Catalog
	Kind    string
	close   func() error
}

// Close releases the backend's resources.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Reloader returns the backend as a Reloader when it supports live reload.
func (b *Backend) Reloader() (Reloader, bool) {
	r, ok := b.Catalog.(Reloader)
	return r, ok
}

// LoadDataset returns the dataset for cfg: the seed file when set, otherwise
// the built-in sample data. A configured health score overrides the dataset's.
func LoadDataset(cfg config.CatalogConfig) (catalog.Dataset, error) {
	ds := catalog.DefaultDataset(time.Now())
	if cfg.SeedFile != "" {
		loaded, err := catalog.LoadDataset(cfg.SeedFile)
		if err != nil {
			return catalog.Dataset{}, err
		}
		ds = loaded
	}
	if cfg.HealthScore > 0 {
		h := cfg.HealthScore
		ds.Health = &h
	}
	return ds, nil
}

// Open opens the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.CatalogConfig, logger *slog.Logger) (*Backend, error) {
	prober := simulate.NewProber(cfg.Latency, cfg.FailureRate, cfg.RandomSeed)
	responder := simulate.NewResponder(cfg.EffectiveChatLatency())

	switch cfg.Backend {
	case "", config.BackendMock:
		ds, err := LoadDataset(cfg)
		if err != nil {
			return nil, err
		}
		mock := catalog.NewMock(ds,
			catalog.WithLatency(cfg.Latency),
			catalog.WithProber(prober),
			catalog.WithResponder(responder),
			catalog.WithLogger(logger),
		)
		logger.Debug("opened mock catalog", slog.Int("tables", len(ds.Tables)))
		return &Backend{Catalog: mock, Kind: config.BackendMock}, nil

	case config.BackendSQLite:
		return openSQLite(ctx, cfg, prober, responder, logger)

	case config.BackendRemote:
		client, err := apiclient.New(cfg.BaseURL, nil, logger)
		if err != nil {
			return nil, err
		}
		logger.Debug("using remote catalog", slog.String("base_url", cfg.BaseURL))
		return &Backend{Catalog: client, Kind: config.BackendRemote}, nil

	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.Backend)
	}
}

func openSQLite(ctx context.Context, cfg config.CatalogConfig, prober *simulate.Prober, responder *simulate.Responder, logger *slog.Logger) (*Backend, error) {
	if cfg.StatePath != ":memory:" {
		if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore(state.Options{
		Latency:   cfg.Latency,
		Prober:    prober,
		Responder: responder,
		Logger:    logger,
	})
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	ds, err := LoadDataset(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if _, err := store.Seed(ctx, ds); err != nil {
		_ = store.Close()
		return nil, err
	}

	logger.Debug("opened sqlite catalog", slog.String("path", cfg.StatePath))
	return &Backend{Catalog: store, Kind: config.BackendSQLite, close: store.Close}, nil
}
