// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package app wires the catalog client, the bookshelf store and the
// controllers built on them. The CLI builds one App per process and hands
// it to every command, so all of them share a single bookshelf.
package app

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/book-nook/internal/catalog"
	"github.com/pdiddy/book-nook/internal/detail"
	"github.com/pdiddy/book-nook/internal/httputil"
	"github.com/pdiddy/book-nook/internal/logging"
	"github.com/pdiddy/book-nook/internal/metrics"
	"github.com/pdiddy/book-nook/internal/search"
	"github.com/pdiddy/book-nook/internal/secrets"
	"github.com/pdiddy/book-nook/internal/shelf"
	"github.com/pdiddy/book-nook/pkg/types"
)

// App is the shared context of one process.
type App struct {
	Config  types.Config
	Log     logrus.FieldLogger
	Metrics *metrics.Metrics
	Catalog *catalog.Client
	Shelf   *shelf.Store

	storage shelf.Storage
}

// New builds an App from cfg. The contact secret, if present, is added to
// the User-Agent of catalog requests.
func New(cfg types.Config, sec secrets.Secrets, log logrus.FieldLogger) (*App, error) {
	if log == nil {
		log = logging.Discard()
	}
	m := metrics.New()

	storage, err := OpenStorage(cfg.Shelf)
	if err != nil {
		return nil, err
	}

	httpCfg := cfg.HTTP
	httpCfg.UserAgent = httputil.UserAgent(httpCfg.UserAgent, sec.Contact())
	client := httputil.NewClient(httpCfg, cfg.Catalog.RequestsPerSecond, logging.Component(log, "http"))

	a := &App{
		Config:  cfg,
		Log:     log,
		Metrics: m,
		Catalog: catalog.New(cfg.Catalog, client,
			catalog.WithLogger(logging.Component(log, "catalog")),
			catalog.WithMetrics(m),
		),
		Shelf: shelf.NewStore(storage,
			shelf.WithLogger(logging.Component(log, "shelf")),
			shelf.WithMetrics(m),
		),
		storage: storage,
	}
	log.WithFields(logrus.Fields{
		"backend": cfg.Shelf.Backend,
		"path":    cfg.Shelf.Path,
	}).Debug("app ready")
	return a, nil
}

// NewOrchestrator returns a search session starting in the configured
// default language.
func (a *App) NewOrchestrator(opts ...search.Option) *search.Orchestrator {
	base := []search.Option{
		search.WithLogger(logging.Component(a.Log, "search")),
		search.WithMetrics(a.Metrics),
		search.WithLanguage(a.Config.Catalog.DefaultLanguage),
	}
	return search.NewOrchestrator(a.Catalog, append(base, opts...)...)
}

// NewInspector returns a detail view backed by the catalog client.
func (a *App) NewInspector(opts ...detail.Option) *detail.Inspector {
	base := []detail.Option{
		detail.WithLogger(logging.Component(a.Log, "detail")),
		detail.WithMetrics(a.Metrics),
	}
	return detail.NewInspector(a.Catalog, a.Catalog, append(base, opts...)...)
}

// Close releases the bookshelf storage.
func (a *App) Close() error {
	if c, ok := a.storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// OpenStorage returns the bookshelf backend named by cfg.
func OpenStorage(cfg types.ShelfConfig) (shelf.Storage, error) {
	switch cfg.Backend {
	case types.ShelfSQLite:
		s, err := shelf.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening bookshelf database: %w", err)
		}
		return s, nil
	case types.ShelfFile:
		return shelf.NewFileStorage(cfg.Path), nil
	case types.ShelfMemory:
		return shelf.NewMemoryStorage(nil), nil
	default:
		return nil, fmt.Errorf("unknown shelf backend %q", cfg.Backend)
	}
}
