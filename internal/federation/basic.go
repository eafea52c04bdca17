package federation

import (
	"context"
	"time"

	"github.com/helixir/journal-federation-service/internal/domain"
	"github.com/helixir/journal-federation-service/internal/sources"
	"github.com/helixir/journal-federation-service/internal/triples"
)

// Query names used in logs and metrics.
const (
	QueryEntityByID                  = "entity_by_id"
	QueryAllJournals                 = "all_journals"
	QueryJournalsWithTitle           = "journals_with_title"
	QueryJournalsPublishedBy         = "journals_published_by"
	QueryJournalsWithLicense         = "journals_with_license"
	QueryJournalsWithAPC             = "journals_with_apc"
	QueryJournalsWithDOAJSeal        = "journals_with_doaj_seal"
	QueryAllCategories               = "all_categories"
	QueryAllAreas                    = "all_areas"
	QueryCategoriesWithQuartile      = "categories_with_quartile"
	QueryCategoriesAssignedToAreas   = "categories_assigned_to_areas"
	QueryAreasAssignedToCategories   = "areas_assigned_to_categories"
	QueryJournalsInCategories        = "journals_in_categories_with_quartile"
	QueryJournalsInAreasWithLicense  = "journals_in_areas_with_license"
	QueryDiamondJournalsInCategories = "diamond_journals_in_areas_and_categories_with_quartile"
)

// GetEntityByID looks id up among journals first and categories second.
// The bibliographic interpretation wins when both namespaces match. The
// boolean is false when nothing matches.
func (e *Engine) GetEntityByID(ctx context.Context, id string) (domain.Entity, bool) {
	start := time.Now()

	records := e.combineJournals(ctx, "GetByID", func(ctx context.Context, s sources.JournalSource) (triples.Relation, error) {
		return s.GetByID(ctx, id)
	})
	if journals := e.journalsFrom(QueryEntityByID, records); len(journals) > 0 {
		e.observe(ctx, QueryEntityByID, start, 1)
		return journals[0], true
	}

	rows := combineCategories(ctx, e, "GetByID", func(ctx context.Context, s sources.CategorySource) ([]sources.CategoryRow, error) {
		return s.GetByID(ctx, id)
	})
	if categories := e.categoriesFrom(QueryEntityByID, rows); len(categories) > 0 {
		e.observe(ctx, QueryEntityByID, start, 1)
		return categories[0], true
	}

	e.observe(ctx, QueryEntityByID, start, 0)
	return nil, false
}

// GetAllJournals returns every journal of every bibliographic source.
func (e *Engine) GetAllJournals(ctx context.Context) []*domain.Journal {
	return e.journalQuery(ctx, QueryAllJournals, "GetAll", func(ctx context.Context, s sources.JournalSource) (triples.Relation, error) {
		return s.GetAll(ctx)
	})
}

// GetJournalsWithTitle returns the journals whose title contains fragment.
func (e *Engine) GetJournalsWithTitle(ctx context.Context, fragment string) []*domain.Journal {
	return e.journalQuery(ctx, QueryJournalsWithTitle, "GetByTitleFragment", func(ctx context.Context, s sources.JournalSource) (triples.Relation, error) {
		return s.GetByTitleFragment(ctx, fragment)
	})
}

// GetJournalsPublishedBy returns the journals whose publisher contains fragment.
func (e *Engine) GetJournalsPublishedBy(ctx context.Context, fragment string) []*domain.Journal {
	return e.journalQuery(ctx, QueryJournalsPublishedBy, "GetByPublisherFragment", func(ctx context.Context, s sources.JournalSource) (triples.Relation, error) {
		return s.GetByPublisherFragment(ctx, fragment)
	})
}

// GetJournalsWithLicense returns the journals matching licence. Each source
// applies its own licence match mode.
func (e *Engine) GetJournalsWithLicense(ctx context.Context, licence string) []*domain.Journal {
	return e.journalQuery(ctx, QueryJournalsWithLicense, "GetByLicence", func(ctx context.Context, s sources.JournalSource) (triples.Relation, error) {
		return s.GetByLicence(ctx, licence)
	})
}

// GetJournalsWithAPC returns the journals charging an article processing charge.
func (e *Engine) GetJournalsWithAPC(ctx context.Context) []*domain.Journal {
	return e.journalQuery(ctx, QueryJournalsWithAPC, "GetWithAPC", func(ctx context.Context, s sources.JournalSource) (triples.Relation, error) {
		return s.GetWithAPC(ctx)
	})
}

// GetJournalsWithDOAJSeal returns the journals holding the DOAJ seal.
func (e *Engine) GetJournalsWithDOAJSeal(ctx context.Context) []*domain.Journal {
	return e.journalQuery(ctx, QueryJournalsWithDOAJSeal, "GetWithSeal", func(ctx context.Context, s sources.JournalSource) (triples.Relation, error) {
		return s.GetWithSeal(ctx)
	})
}

// GetAllCategories returns every distinct category assignment.
func (e *Engine) GetAllCategories(ctx context.Context) []*domain.Category {
	return e.categoryQuery(ctx, QueryAllCategories, "GetAllCategories", func(ctx context.Context, s sources.CategorySource) ([]sources.CategoryRow, error) {
		return s.GetAllCategories(ctx)
	})
}

// GetAllAreas returns every distinct area.
func (e *Engine) GetAllAreas(ctx context.Context) []*domain.Area {
	return e.areaQuery(ctx, QueryAllAreas, "GetAllAreas", func(ctx context.Context, s sources.CategorySource) ([]string, error) {
		return s.GetAllAreas(ctx)
	})
}

// GetCategoriesWithQuartile returns the assignments ranked with one of
// quartiles. An empty set returns every assignment.
func (e *Engine) GetCategoriesWithQuartile(ctx context.Context, quartiles []string) []*domain.Category {
	return e.categoryQuery(ctx, QueryCategoriesWithQuartile, "GetByQuartiles", func(ctx context.Context, s sources.CategorySource) ([]sources.CategoryRow, error) {
		return s.GetByQuartiles(ctx, quartiles)
	})
}

// GetCategoriesAssignedToAreas returns the assignments to one of areas.
// An empty set returns every assignment.
func (e *Engine) GetCategoriesAssignedToAreas(ctx context.Context, areas []string) []*domain.Category {
	return e.categoryQuery(ctx, QueryCategoriesAssignedToAreas, "GetByAreas", func(ctx context.Context, s sources.CategorySource) ([]sources.CategoryRow, error) {
		return s.GetByAreas(ctx, areas)
	})
}

// GetAreasAssignedToCategories returns the areas of the given categories.
// An empty set returns every area.
func (e *Engine) GetAreasAssignedToCategories(ctx context.Context, categoryIDs []string) []*domain.Area {
	return e.areaQuery(ctx, QueryAreasAssignedToCategories, "GetByCategories", func(ctx context.Context, s sources.CategorySource) ([]string, error) {
		return s.GetByCategories(ctx, categoryIDs)
	})
}

func (e *Engine) journalQuery(ctx context.Context, query, op string, read func(context.Context, sources.JournalSource) (triples.Relation, error)) []*domain.Journal {
	start := time.Now()
	journals := e.journalsFrom(query, e.combineJournals(ctx, op, read))
	e.observe(ctx, query, start, len(journals))
	return journals
}

func (e *Engine) categoryQuery(ctx context.Context, query, op string, read func(context.Context, sources.CategorySource) ([]sources.CategoryRow, error)) []*domain.Category {
	start := time.Now()
	categories := e.categoriesFrom(query, combineCategories(ctx, e, op, read))
	e.observe(ctx, query, start, len(categories))
	return categories
}

func (e *Engine) areaQuery(ctx context.Context, query, op string, read func(context.Context, sources.CategorySource) ([]string, error)) []*domain.Area {
	start := time.Now()
	areas, dropped := toAreas(combineCategories(ctx, e, op, read))
	e.rowsDropped(query, dropped)
	e.observe(ctx, query, start, len(areas))
	return areas
}

func (e *Engine) journalsFrom(query string, records []triples.Record) []*domain.Journal {
	journals, dropped := toJournals(records)
	e.rowsDropped(query, dropped)
	return journals
}

func (e *Engine) categoriesFrom(query string, rows []sources.CategoryRow) []*domain.Category {
	categories, dropped := toCategories(rows)
	e.rowsDropped(query, dropped)
	return categories
}
