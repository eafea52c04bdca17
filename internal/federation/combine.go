package federation

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/helixir/journal-federation-service/internal/domain"
	"github.com/helixir/journal-federation-service/internal/observability"
	"github.com/helixir/journal-federation-service/internal/sources"
	"github.com/helixir/journal-federation-service/internal/triples"
)

// Source kinds used in logs and metrics.
const (
	kindJournal  = "journal"
	kindCategory = "category"
)

type namedSource interface {
	Name() string
}

// gather calls read on every source and concatenates the results in
// registration order. A source that fails contributes no rows.
func gather[S namedSource, R ~[]T, T any](ctx context.Context, e *Engine, kind, op string, srcs []S, read func(context.Context, S) (R, error)) []T {
	results := make([]R, len(srcs))

	call := func(i int) {
		src := srcs[i]
		start := time.Now()
		rows, err := read(ctx, src)
		elapsed := time.Since(start).Seconds()
		if err != nil {
			e.sourceFailed(ctx, kind, src.Name(), op, err, elapsed)
			return
		}
		if e.metrics != nil {
			e.metrics.RecordSourceCall(kind, src.Name(), op, len(rows), elapsed)
		}
		results[i] = rows
	}

	if e.parallel && len(srcs) > 1 {
		var g errgroup.Group
		for i := range srcs {
			i := i
			g.Go(func() error {
				call(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range srcs {
			call(i)
		}
	}

	total := 0
	for _, rows := range results {
		total += len(rows)
	}
	out := make([]T, 0, total)
	for _, rows := range results {
		out = append(out, rows...)
	}
	return out
}

func (e *Engine) sourceFailed(ctx context.Context, kind, source, op string, err error, elapsed float64) {
	logger := observability.WithSourceContext(observability.WithRequestContext(ctx, e.logger), kind, source)
	logger.Warn().
		Err(err).
		Str("operation", op).
		Str("reason", domain.FailureReason(err)).
		Msg("source failed, continuing without its rows")
	if e.metrics != nil {
		e.metrics.RecordSourceFailure(kind, source, op, err, elapsed)
	}
}

// combineJournals merges the relations of every journal source, removes
// exact-duplicate triples and normalizes the result into wide records.
func (e *Engine) combineJournals(ctx context.Context, op string, read func(context.Context, sources.JournalSource) (triples.Relation, error)) []triples.Record {
	rel := gather(ctx, e, kindJournal, op, e.JournalSources(), read)

	merged := triples.Dedup(rel)
	if e.metrics != nil {
		e.metrics.RecordDuplicatesRemoved(len(rel) - len(merged))
	}

	records, dropped := triples.Normalize(merged)
	e.rowsDropped(op, dropped)
	return records
}

// combineCategories merges the rows of every category source and removes
// exact duplicates, keeping the first occurrence.
func combineCategories[T comparable](ctx context.Context, e *Engine, op string, read func(context.Context, sources.CategorySource) ([]T, error)) []T {
	rows := gather(ctx, e, kindCategory, op, e.CategorySources(), read)
	merged := unique(rows)
	if e.metrics != nil {
		e.metrics.RecordDuplicatesRemoved(len(rows) - len(merged))
	}
	return merged
}

func (e *Engine) rowsDropped(op string, count int) {
	if count == 0 {
		return
	}
	e.logger.Warn().
		Str("operation", op).
		Int("dropped", count).
		Msg("skipped malformed rows")
	if e.metrics != nil {
		e.metrics.RecordRowsDropped(count)
	}
}

func unique[T comparable](values []T) []T {
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
