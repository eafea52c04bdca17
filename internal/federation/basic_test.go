package federation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/journal-federation-service/internal/domain"
	"github.com/helixir/journal-federation-service/internal/triples"
)

func fixtureJournals() triples.Relation {
	return relation(
		journal("J1",
			"id", "1234-5678", "title", "Oncology Letters", "publisher", "Spandidos",
			"language", "en", "language", "fr", "licence", "CC BY", "apc", "false", "seal", "true"),
		journal("J2",
			"id", "8765-4321", "title", "Plant Journal", "publisher", "Wiley",
			"language", "en", "licence", "CC BY-NC", "apc", "true", "seal", "false"),
		journal("J3",
			"id", "1111-2222", "title", "Botany Open", "publisher", "Botanical Society",
			"language", "en", "licence", "CC BY", "apc", "false", "seal", "false"),
		journal("J4",
			"id", "9999-0000", "title", "Unlinked Review", "publisher", "Wiley",
			"licence", "CC BY-SA", "apc", "false"),
	)
}

func fixtureLinks() []link {
	return []link{
		{"1234-5678", "Oncology", "Q1", "Medicine"},
		{"1234-5678", "Biology", "Q2", "Life Sciences"},
		{"8765-4321", "Botany", "Q3", "Plant Science"},
		{"1111-2222", "Botany", "Q3", "Plant Science"},
	}
}

func newFixtureEngine() *Engine {
	e := New()
	e.AddJournalSource(&fakeJournals{name: "sparql", rel: fixtureJournals()})
	e.AddCategorySource(&fakeCategories{name: "sqlite", rows: fixtureLinks()})
	return e
}

func TestGetAllJournals_Mapping(t *testing.T) {
	journals := newFixtureEngine().GetAllJournals(context.Background())
	require.Len(t, journals, 4)

	j1 := journals[0]
	assert.Equal(t, []string{"1234-5678"}, j1.IDs())
	assert.Equal(t, "Oncology Letters", j1.Title)
	require.NotNil(t, j1.Publisher)
	assert.Equal(t, "Spandidos", j1.Publisher.Name)
	assert.Equal(t, []string{"Spandidos"}, j1.Publisher.IDs())
	assert.Equal(t, []string{"en", "fr"}, j1.Languages)
	assert.Equal(t, "CC BY", j1.Licence)
	assert.True(t, j1.HasDOAJSeal)
	assert.False(t, j1.HasAPC)
	assert.Empty(t, j1.Categories())

	j2 := journals[1]
	assert.Equal(t, []string{"en"}, j2.Languages)
	assert.True(t, j2.HasAPC)

	j4 := journals[3]
	assert.Equal(t, []string{}, j4.Languages)
	assert.False(t, j4.HasDOAJSeal)
}

func TestJournalFragmentQueries(t *testing.T) {
	e := newFixtureEngine()
	ctx := context.Background()

	tests := []struct {
		name     string
		run      func() []*domain.Journal
		expected []string
	}{
		{"title fragment", func() []*domain.Journal { return e.GetJournalsWithTitle(ctx, "ONCO") }, []string{"1234-5678"}},
		{"publisher fragment", func() []*domain.Journal { return e.GetJournalsPublishedBy(ctx, "wiley") }, []string{"8765-4321", "9999-0000"}},
		{"licence fragment", func() []*domain.Journal { return e.GetJournalsWithLicense(ctx, "nc") }, []string{"8765-4321"}},
		{"with apc", func() []*domain.Journal { return e.GetJournalsWithAPC(ctx) }, []string{"8765-4321"}},
		{"with seal", func() []*domain.Journal { return e.GetJournalsWithDOAJSeal(ctx) }, []string{"1234-5678"}},
		{"no match", func() []*domain.Journal { return e.GetJournalsWithTitle(ctx, "astronomy") }, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			journals := tt.run()
			assert.NotNil(t, journals)
			assert.ElementsMatch(t, tt.expected, journalIDsOf(journals))
		})
	}
}

func TestGetEntityByID(t *testing.T) {
	ctx := context.Background()

	t.Run("journal", func(t *testing.T) {
		entity, ok := newFixtureEngine().GetEntityByID(ctx, "1234-5678")
		require.True(t, ok)
		assert.Equal(t, domain.EntityKindJournal, entity.Kind())
		j, isJournal := entity.(*domain.Journal)
		require.True(t, isJournal)
		assert.Equal(t, "Oncology Letters", j.Title)
	})

	t.Run("category", func(t *testing.T) {
		entity, ok := newFixtureEngine().GetEntityByID(ctx, "Botany")
		require.True(t, ok)
		c, isCategory := entity.(*domain.Category)
		require.True(t, isCategory)
		assert.Equal(t, "Botany", c.Title)
		assert.Equal(t, domain.QuartileQ3, c.Quartile)
		require.NotNil(t, c.Area)
		assert.Equal(t, "Plant Science", c.Area.Name)
		assert.Equal(t, []string{"Plant Science"}, c.Area.IDs())
	})

	t.Run("journal wins on collision", func(t *testing.T) {
		e := New()
		e.AddJournalSource(&fakeJournals{name: "sparql", rel: fixtureJournals()})
		categories := &fakeCategories{name: "sqlite", rows: []link{{"0000-0000", "1234-5678", "Q1", "Medicine"}}}
		e.AddCategorySource(categories)

		entity, ok := e.GetEntityByID(ctx, "1234-5678")
		require.True(t, ok)
		assert.Equal(t, domain.EntityKindJournal, entity.Kind())
		assert.Equal(t, int32(0), categories.calls.Load())
	})

	t.Run("not found", func(t *testing.T) {
		entity, ok := newFixtureEngine().GetEntityByID(ctx, "Astronomy")
		assert.False(t, ok)
		assert.Nil(t, entity)
	})
}

func TestCategoryQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("all categories merge mirrors", func(t *testing.T) {
		e := newFixtureEngine()
		e.AddCategorySource(&fakeCategories{name: "replica", rows: fixtureLinks()})

		categories := e.GetAllCategories(ctx)
		assert.Len(t, categories, 3)
	})

	t.Run("categories with quartile", func(t *testing.T) {
		categories := newFixtureEngine().GetCategoriesWithQuartile(ctx, []string{"Q1", "Q2"})
		ids := make([]string, 0, len(categories))
		for _, c := range categories {
			ids = append(ids, c.PrimaryID())
		}
		assert.ElementsMatch(t, []string{"Oncology", "Biology"}, ids)
	})

	t.Run("empty quartile set is unconstrained", func(t *testing.T) {
		e := newFixtureEngine()
		assert.Equal(t, e.GetAllCategories(ctx), e.GetCategoriesWithQuartile(ctx, nil))
	})

	t.Run("categories assigned to areas", func(t *testing.T) {
		categories := newFixtureEngine().GetCategoriesAssignedToAreas(ctx, []string{"Plant Science"})
		require.Len(t, categories, 1)
		assert.Equal(t, "Botany", categories[0].PrimaryID())
	})

	t.Run("areas assigned to categories", func(t *testing.T) {
		areas := newFixtureEngine().GetAreasAssignedToCategories(ctx, []string{"Oncology", "Biology"})
		names := make([]string, 0, len(areas))
		for _, a := range areas {
			names = append(names, a.Name)
		}
		assert.ElementsMatch(t, []string{"Medicine", "Life Sciences"}, names)
	})

	t.Run("all areas", func(t *testing.T) {
		areas := newFixtureEngine().GetAllAreas(ctx)
		assert.Len(t, areas, 3)
		for _, a := range areas {
			assert.Equal(t, domain.EntityKindArea, a.Kind())
		}
	})
}
