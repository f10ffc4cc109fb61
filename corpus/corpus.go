// Package corpus is the top layer of the document classification pipeline:
// it ingests labeled file lists into the catalog, assembles datasets from
// catalog snapshots, and trains the baseline classifier. The HTTP API and
// MCP tools are thin wrappers over the same three operations.
package corpus

import (
	"fmt"
	"log/slog"

	"github.com/hazyhaar/dlm/catalog"
	"github.com/hazyhaar/dlm/dataset"
	"github.com/hazyhaar/dlm/reader"
	"github.com/hazyhaar/dlm/trainer"
)

// Service owns the catalog store and the extraction pipeline.
type Service struct {
	cfg    *Config
	store  *catalog.Store
	pipe   *reader.Pipeline
	logger *slog.Logger

	// sem bounds concurrent extractions; fbSem additionally bounds the
	// slice of workers allowed to hit the fallback service at once.
	sem   chan struct{}
	fbSem chan struct{}
}

// Option customises Service construction.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	fallback reader.Fallback
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithFallback injects a fallback extractor, overriding fallback_url.
func WithFallback(f reader.Fallback) Option {
	return func(o *options) { o.fallback = f }
}

// New opens the catalog and wires the extraction pipeline.
func New(cfg *Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	fallback := o.fallback
	if fallback == nil && cfg.FallbackURL != "" {
		fallback = reader.NewTikaClient(cfg.FallbackURL)
	}

	store, err := catalog.OpenStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	pipe := reader.New(reader.Config{
		MaxTextBytes: cfg.MaxTextBytes,
		Fallback:     fallback,
		Logger:       o.logger,
	})

	return &Service{
		cfg:    cfg,
		store:  store,
		pipe:   pipe,
		logger: o.logger,
		sem:    make(chan struct{}, cfg.Workers),
		fbSem:  make(chan struct{}, cfg.FallbackWorkers),
	}, nil
}

// Store exposes the catalog for reporting layers.
func (s *Service) Store() *catalog.Store { return s.store }

// Config returns a copy of the configuration the service was built with.
func (s *Service) Config() Config { return *s.cfg }

// Close releases the catalog database.
func (s *Service) Close() error { return s.store.Close() }

// BuildDataset assembles training rows from the current catalog snapshot.
func (s *Service) BuildDataset(cfg dataset.FeatureConfig) ([]dataset.Row, error) {
	records, err := s.store.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return dataset.Build(records, cfg), nil
}

// Train builds a dataset and fits the baseline classifier on it.
func (s *Service) Train(cfg trainer.Config) (*trainer.Result, error) {
	rows, err := s.BuildDataset(dataset.FeatureConfig{IncludeText: cfg.UseText})
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	return trainer.Train(rows, cfg)
}
