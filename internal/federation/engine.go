// Package federation answers journal and category queries over every
// registered backend source as if they were one store.
//
// The basic tier merges the results of all sources of one kind, removes
// exact-duplicate rows and maps them to domain entities. The compound tier
// joins the bibliographic side with the category links on the journal
// identifier. A failing source never fails a query: it is logged, counted and
// contributes no rows.
package federation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/journal-federation-service/internal/observability"
	"github.com/helixir/journal-federation-service/internal/sources"
)

// Engine federates the registered journal and category sources.
// Entities are built fresh for every call; the engine caches nothing.
type Engine struct {
	mu         sync.RWMutex
	journals   []sources.JournalSource
	categories []sources.CategorySource

	logger   zerolog.Logger
	metrics  *observability.Metrics
	parallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for recovered source failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// WithParallel controls whether the sources of one kind are queried
// concurrently. Enabled by default.
func WithParallel(enabled bool) Option {
	return func(e *Engine) {
		e.parallel = enabled
	}
}

// New creates an Engine with empty registries.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   zerolog.Nop(),
		parallel: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("component", "federation").Logger()
	return e
}

// AddJournalSource registers a bibliographic source. Registering the same
// source twice makes it contribute twice; exact duplicates are merged away.
func (e *Engine) AddJournalSource(src sources.JournalSource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.journals = append(e.journals, src)
}

// AddCategorySource registers a category-link source.
func (e *Engine) AddCategorySource(src sources.CategorySource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.categories = append(e.categories, src)
}

// ClearJournalSources removes every bibliographic source.
func (e *Engine) ClearJournalSources() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.journals = nil
}

// ClearCategorySources removes every category-link source.
func (e *Engine) ClearCategorySources() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.categories = nil
}

// JournalSources returns a snapshot of the bibliographic sources in
// registration order.
func (e *Engine) JournalSources() []sources.JournalSource {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]sources.JournalSource, len(e.journals))
	copy(out, e.journals)
	return out
}

// CategorySources returns a snapshot of the category-link sources in
// registration order.
func (e *Engine) CategorySources() []sources.CategorySource {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]sources.CategorySource, len(e.categories))
	copy(out, e.categories)
	return out
}

// observe records a finished query.
func (e *Engine) observe(ctx context.Context, query string, start time.Time, resultSize int) {
	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.RecordQuery(query, resultSize, elapsed.Seconds())
	}
	logger := observability.WithRequestContext(ctx, observability.WithQueryContext(e.logger, query))
	logger.Debug().
		Int("results", resultSize).
		Dur("duration", elapsed).
		Msg("query completed")
}
