// Package engine wires the report stages together: authenticate, fetch,
// build the matrix and render it.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/notecheck/internal/auth"
	"github.com/Veraticus/notecheck/internal/common"
	"github.com/Veraticus/notecheck/internal/matrix"
	"github.com/Veraticus/notecheck/internal/model"
)

// Config holds configuration options for the pipeline.
type Config struct {
	Catalogue model.Catalogue
	// FailOnEmpty stops before rendering when no record was included.
	FailOnEmpty bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Catalogue: model.DefaultCatalogue(),
	}
}

// Result summarizes a finished run.
type Result struct {
	Matrix model.Matrix
	Stats  matrix.Stats
}

// Pipeline runs one report from login to spreadsheet. Each stage runs only
// after the previous one succeeded.
type Pipeline struct {
	auth      Authenticator
	fetcher   RecordFetcher
	progress  Progress
	logger    *slog.Logger
	renderers []Renderer
	config    Config
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress reports build progress to p.
func WithProgress(p Progress) Option {
	return func(pl *Pipeline) {
		pl.progress = p
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(pl *Pipeline) {
		if logger != nil {
			pl.logger = logger
		}
	}
}

// WithConfig overrides the default configuration.
func WithConfig(config Config) Option {
	return func(pl *Pipeline) {
		pl.config = config
	}
}

// NewPipeline creates a pipeline. At least one renderer is required.
func NewPipeline(authenticator Authenticator, fetcher RecordFetcher, renderers []Renderer, opts ...Option) (*Pipeline, error) {
	if authenticator == nil || fetcher == nil {
		return nil, fmt.Errorf("%w: authenticator and fetcher are required", common.ErrMissingConfig)
	}
	if len(renderers) == 0 {
		return nil, fmt.Errorf("%w: at least one renderer is required", common.ErrMissingConfig)
	}

	pl := &Pipeline{
		auth:      authenticator,
		fetcher:   fetcher,
		renderers: renderers,
		logger:    slog.Default(),
		config:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(pl)
	}
	if len(pl.config.Catalogue) == 0 {
		pl.config.Catalogue = model.DefaultCatalogue()
	}
	return pl, nil
}

// Run authenticates with creds, asking source for an MFA code when the
// portal issues a challenge, and then produces the report for r.
func (p *Pipeline) Run(ctx context.Context, creds auth.Credentials, source auth.CodeSource, r model.DateRange) (*Result, error) {
	if err := ValidateRange(r); err != nil {
		return nil, err
	}

	if _, err := p.auth.Authenticate(ctx, creds, source); err != nil {
		p.logger.Error("Login failed", "error", err)
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	return p.Report(ctx, r)
}

// Report produces the report for r using an already established session.
func (p *Pipeline) Report(ctx context.Context, r model.DateRange) (*Result, error) {
	if _, err := p.auth.Session(); err != nil {
		return nil, err
	}

	records, err := p.fetcher.Fetch(ctx, r)
	if err != nil {
		p.logger.Error("Report search failed", "error", err)
		return nil, fmt.Errorf("report search failed: %w", err)
	}

	result := p.build(records)

	p.logger.Info("Matrix built",
		"records", result.Stats.Records,
		"included", result.Stats.Included,
		"skipped", result.Stats.Skipped,
		"clients", result.Stats.Clients)

	if result.Stats.Included == 0 && p.config.FailOnEmpty {
		return result, common.ErrNoRecords
	}

	if err := p.render(ctx, result.Matrix); err != nil {
		return result, err
	}

	return result, nil
}

func (p *Pipeline) build(records []model.DocumentRecord) *Result {
	b := matrix.NewBuilder(p.config.Catalogue)

	if p.progress != nil {
		p.progress.Start(len(records))
		defer p.progress.Finish()
	}

	for _, record := range records {
		b.Add(record)
		if p.progress != nil {
			p.progress.Increment()
		}
	}

	return &Result{
		Matrix: b.Matrix(),
		Stats:  b.Stats(),
	}
}

// render writes the matrix to each output in order and stops at the first
// failure; the later outputs are not written.
func (p *Pipeline) render(ctx context.Context, m model.Matrix) error {
	for _, r := range p.renderers {
		if err := r.Render(ctx, m); err != nil {
			p.logger.Error("Failed to write report", "error", err)
			return err
		}
	}
	return nil
}
