package federation

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/journal-federation-service/internal/domain"
	"github.com/helixir/journal-federation-service/internal/observability"
	"github.com/helixir/journal-federation-service/internal/triples"
)

func TestEngine_Registry(t *testing.T) {
	e := New()
	j := &fakeJournals{name: "sparql"}
	c := &fakeCategories{name: "sqlite"}

	assert.Empty(t, e.JournalSources())
	assert.Empty(t, e.CategorySources())

	e.AddJournalSource(j)
	e.AddJournalSource(j)
	e.AddCategorySource(c)
	assert.Len(t, e.JournalSources(), 2)
	assert.Len(t, e.CategorySources(), 1)

	e.ClearJournalSources()
	assert.Empty(t, e.JournalSources())
	assert.Len(t, e.CategorySources(), 1)

	e.ClearCategorySources()
	assert.Empty(t, e.CategorySources())
}

func TestEngine_SnapshotIsIndependent(t *testing.T) {
	e := New()
	e.AddJournalSource(&fakeJournals{name: "a"})

	snapshot := e.JournalSources()
	e.AddJournalSource(&fakeJournals{name: "b"})

	assert.Len(t, snapshot, 1)
	assert.Len(t, e.JournalSources(), 2)
}

func TestEngine_NoSources(t *testing.T) {
	e := New()
	ctx := context.Background()

	journals := e.GetAllJournals(ctx)
	assert.NotNil(t, journals)
	assert.Empty(t, journals)

	entity, ok := e.GetEntityByID(ctx, "1234-5678")
	assert.False(t, ok)
	assert.Nil(t, entity)

	assert.Empty(t, e.JournalsInCategoriesWithQuartile(ctx, nil, nil))
}

func TestEngine_MergeDedupLaw(t *testing.T) {
	ctx := context.Background()
	rel := fixtureJournals()

	single := New()
	single.AddJournalSource(&fakeJournals{name: "primary", rel: rel})

	m := observability.NewMetrics("test_federation_merge_dedup")
	mirrored := New(WithMetrics(m))
	mirrored.AddJournalSource(&fakeJournals{name: "primary", rel: rel})
	mirrored.AddJournalSource(&fakeJournals{name: "replica", rel: rel})

	assert.Equal(t, single.GetAllJournals(ctx), mirrored.GetAllJournals(ctx))
	assert.Equal(t, float64(len(rel)), testutil.ToFloat64(m.DuplicateRowsRemoved))

	j1 := mirrored.GetJournalsWithTitle(ctx, "oncology")
	require.Len(t, j1, 1)
	assert.Equal(t, []string{"en", "fr"}, j1[0].Languages)
}

func TestEngine_PartialFailure(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	m := observability.NewMetrics("test_federation_partial_failure")
	e := New(WithLogger(zerolog.New(&buf)), WithMetrics(m))

	down := &fakeJournals{name: "down", err: domain.NewBackendUnavailableError("down", "GetAll", errors.New("connection refused"))}
	up := &fakeJournals{name: "up", rel: fixtureJournals()}
	e.AddJournalSource(down)
	e.AddJournalSource(up)

	journals := e.GetAllJournals(ctx)
	assert.Len(t, journals, 4)
	assert.Equal(t, int32(1), down.calls.Load())

	assert.Contains(t, buf.String(), "source failed")
	assert.Contains(t, buf.String(), `"source":"down"`)
	assert.Contains(t, buf.String(), `"reason":"backend_unavailable"`)
	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.SourceCallsFailed.WithLabelValues(kindJournal, "down", "GetAll", "backend_unavailable")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.QueriesTotal.WithLabelValues(QueryAllJournals)))
}

func TestEngine_FailureLogCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	e := New(WithLogger(zerolog.New(&buf)))
	e.AddJournalSource(&fakeJournals{name: "down", err: domain.NewBackendUnavailableError("down", "GetByTitleFragment", errors.New("timeout"))})

	ctx := observability.WithRequestID(context.Background(), "req-42")
	assert.Empty(t, e.GetJournalsWithTitle(ctx, "onco"))

	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), `"operation":"GetByTitleFragment"`)
}

func TestEngine_CategoryFailureIsRecovered(t *testing.T) {
	ctx := context.Background()
	m := observability.NewMetrics("test_federation_category_failure")
	e := New(WithMetrics(m))

	e.AddCategorySource(&fakeCategories{name: "broken", err: domain.NewQueryRejectedError("broken", "GetAllAreas", errors.New("no such table"))})
	e.AddCategorySource(&fakeCategories{name: "sqlite", rows: fixtureLinks()})

	areas := e.GetAllAreas(ctx)
	assert.Len(t, areas, 3)
	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.SourceCallsFailed.WithLabelValues(kindCategory, "broken", "GetAllAreas", "query_rejected")))
}

func TestEngine_AllSourcesFail(t *testing.T) {
	ctx := context.Background()
	e := New()
	e.AddJournalSource(&fakeJournals{name: "a", err: errors.New("boom")})
	e.AddJournalSource(&fakeJournals{name: "b", err: errors.New("boom")})
	e.AddCategorySource(&fakeCategories{name: "c", err: errors.New("boom")})

	journals := e.GetAllJournals(ctx)
	assert.NotNil(t, journals)
	assert.Empty(t, journals)

	categories := e.GetAllCategories(ctx)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)

	assert.Empty(t, e.DiamondJournalsInAreasAndCategoriesWithQuartile(ctx, nil, nil, nil))
}

func TestEngine_SequentialMatchesParallel(t *testing.T) {
	ctx := context.Background()

	build := func(parallel bool) *Engine {
		e := New(WithParallel(parallel))
		e.AddJournalSource(&fakeJournals{name: "a", rel: fixtureJournals()[:6]})
		e.AddJournalSource(&fakeJournals{name: "b", rel: fixtureJournals()})
		e.AddCategorySource(&fakeCategories{name: "c", rows: fixtureLinks()})
		e.AddCategorySource(&fakeCategories{name: "d", rows: fixtureLinks()[:2]})
		return e
	}

	sequential, parallel := build(false), build(true)

	assert.Equal(t, sequential.GetAllJournals(ctx), parallel.GetAllJournals(ctx))
	assert.Equal(t, sequential.GetAllCategories(ctx), parallel.GetAllCategories(ctx))
	assert.Equal(t,
		sequential.JournalsInCategoriesWithQuartile(ctx, nil, []string{"Q3"}),
		parallel.JournalsInCategoriesWithQuartile(ctx, nil, []string{"Q3"}))
}

func TestEngine_MalformedRowsAreDropped(t *testing.T) {
	ctx := context.Background()
	m := observability.NewMetrics("test_federation_malformed_rows")
	e := New(WithMetrics(m))

	rel := relation(
		journal("J1", "id", "1234-5678", "title", "Oncology Letters"),
		triples.Relation{{Subject: "", Predicate: base + "title", Object: "orphan"}},
	)
	e.AddJournalSource(&fakeJournals{name: "sparql", rel: rel})

	journals := e.GetAllJournals(ctx)
	require.Len(t, journals, 1)
	assert.Equal(t, "1234-5678", journals[0].PrimaryID())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MalformedRowsDropped))
}
