// Package app wires configuration into the extraction stack shared by the
// daemon and the CLI.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/crewsheet/internal/cache"
	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/core"
	"github.com/joseph-ayodele/crewsheet/internal/docsource"
	"github.com/joseph-ayodele/crewsheet/internal/export"
	"github.com/joseph-ayodele/crewsheet/internal/llm"
	"github.com/joseph-ayodele/crewsheet/internal/llm/openai"
	"github.com/joseph-ayodele/crewsheet/internal/metrics"
	"github.com/joseph-ayodele/crewsheet/internal/pipeline"
	"github.com/joseph-ayodele/crewsheet/internal/repository"
)

type Options struct {
	// WithoutStore skips the database; runs are not persisted.
	WithoutStore bool
	Metrics      *metrics.Metrics
	// Pdftotext names the fallback PDF converter binary; empty disables it.
	Pdftotext string
}

type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	DB        *repository.DB
	Runs      repository.ExtractionRunRepository
	Cache     cache.Cache
	Extractor *core.Extractor
	Loader    *docsource.Loader
	Processor *pipeline.Processor
	Exporter  *export.Service
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Build opens the store (unless disabled), picks the cache and the AI
// enhancer, and assembles the processor. Close releases what Build opened.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	if !opts.WithoutStore {
		db, err := repository.Open(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
			db.Close(logger)
			return nil, common.WrapError(err, "database health check")
		}
		runs := repository.NewExtractionRunRepository(db.Driver, logger)
		if err := runs.Migrate(ctx); err != nil {
			db.Close(logger)
			return nil, err
		}
		a.DB, a.Runs = db, runs
		a.Exporter = export.NewService(runs, logger)
	}

	c, err := cache.New(cfg.Cache, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if p, ok := c.(pinger); ok {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := p.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("app.cache.unavailable", "backend", cfg.Cache.Backend, "err", err)
			c = cache.NewMemory(cfg.Cache.TTL)
		}
	}
	a.Cache = c

	var enhancer llm.Enhancer
	if cfg.LLMEnabled() {
		enhancer = openai.NewClient(openai.ConfigFrom(cfg.LLM), logger)
	} else {
		logger.Info("app.ai.disabled", "reason", "no api key")
	}

	extractorOpts := []core.Option{core.WithCache(c)}
	if opts.Metrics != nil {
		extractorOpts = append(extractorOpts, core.WithRecorder(opts.Metrics))
	}
	a.Extractor = core.NewExtractor(logger, core.ConfigFrom(cfg), enhancer, extractorOpts...)
	a.Loader = docsource.NewLoader(docsource.Config{Pdftotext: opts.Pdftotext}, logger)

	var store pipeline.Store
	if a.Runs != nil {
		store = a.Runs
	}
	a.Processor = pipeline.NewProcessor(logger, a.Loader, a.Extractor, store)
	return a, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close(a.Logger)
		a.DB = nil
	}
}
