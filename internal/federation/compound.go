package federation

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/helixir/journal-federation-service/internal/domain"
	"github.com/helixir/journal-federation-service/internal/sources"
	"github.com/helixir/journal-federation-service/internal/triples"
)

// set is a filter over one axis. An empty set allows every value.
type set map[string]struct{}

func newSet(values []string) set {
	s := make(set, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

func (s set) allows(value string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[value]
	return ok
}

func (s set) allowsAny(values []string) bool {
	if len(s) == 0 {
		return true
	}
	for _, v := range values {
		if _, ok := s[v]; ok {
			return true
		}
	}
	return false
}

// categoryFilter is the conjunction of the category-side filters.
type categoryFilter struct {
	ids       set
	areas     set
	quartiles set
}

func (f categoryFilter) match(row sources.CategoryRow) bool {
	return f.ids.allows(row.CategoryID) &&
		f.areas.allows(row.Area) &&
		f.quartiles.allows(row.Quartile)
}

// joinInput is the full bibliographic and category-link state read for one
// compound query.
type joinInput struct {
	records []triples.Record
	links   []sources.CategoryLink
}

// fetch reads every journal, and with withLinks every link row, from the
// registered sources.
func (e *Engine) fetch(ctx context.Context, withLinks bool) joinInput {
	var in joinInput

	readJournals := func() {
		in.records = e.combineJournals(ctx, "GetAll", func(ctx context.Context, s sources.JournalSource) (triples.Relation, error) {
			return s.GetAll(ctx)
		})
	}
	readLinks := func() {
		in.links = combineCategories(ctx, e, "GetLinks", func(ctx context.Context, s sources.CategorySource) ([]sources.CategoryLink, error) {
			return s.GetLinks(ctx)
		})
	}

	if !withLinks {
		readJournals()
		return in
	}
	if !e.parallel {
		readJournals()
		readLinks()
		return in
	}

	var g errgroup.Group
	for _, step := range []func(){readJournals, readLinks} {
		step := step
		g.Go(func() error {
			step()
			return nil
		})
	}
	_ = g.Wait()
	return in
}

// join keeps the journals that own at least one link row matching f and
// attaches the categories of exactly those rows. A journal matches a link
// through any of its identifiers.
func (e *Engine) join(query string, journals []*domain.Journal, links []sources.CategoryLink, f categoryFilter) []*domain.Journal {
	linked := make(map[string][]*domain.Category)
	dropped := 0
	for _, link := range links {
		row := link.Row()
		if !f.match(row) {
			continue
		}
		c, err := toCategory(row)
		if err != nil {
			dropped++
			continue
		}
		linked[link.ISSN] = append(linked[link.ISSN], c)
	}
	e.rowsDropped(query, dropped)

	out := make([]*domain.Journal, 0, len(journals))
	for _, j := range journals {
		matched := false
		for _, id := range j.IDs() {
			for _, c := range linked[id] {
				j.AddCategory(c)
				matched = true
			}
		}
		if matched {
			out = append(out, j)
		}
	}
	return out
}

// JournalsInCategoriesWithQuartile returns the journals linked to a category
// in categoryIDs ranked with a quartile in quartiles. An empty set leaves its
// axis unconstrained. Matching categories are attached to each journal.
func (e *Engine) JournalsInCategoriesWithQuartile(ctx context.Context, categoryIDs, quartiles []string) []*domain.Journal {
	start := time.Now()
	query := QueryJournalsInCategories

	in := e.fetch(ctx, true)
	journals := e.journalsFrom(query, in.records)

	result := e.join(query, journals, in.links, categoryFilter{
		ids:       newSet(categoryIDs),
		quartiles: newSet(quartiles),
	})

	e.observe(ctx, query, start, len(result))
	return result
}

// JournalsInAreasWithLicense returns the journals whose licence is in
// licences and, when areas is not empty, which are linked to a category
// assigned to one of areas. Licence matching is exact.
func (e *Engine) JournalsInAreasWithLicense(ctx context.Context, areas, licenceSet []string) []*domain.Journal {
	start := time.Now()
	query := QueryJournalsInAreasWithLicense

	areaFilter := newSet(areas)
	in := e.fetch(ctx, len(areaFilter) > 0)

	allowed := newSet(licenceSet)
	records := make([]triples.Record, 0, len(in.records))
	for _, rec := range in.records {
		if allowed.allowsAny(licences(rec)) {
			records = append(records, rec)
		}
	}
	journals := e.journalsFrom(query, records)

	if len(areaFilter) == 0 {
		e.observe(ctx, query, start, len(journals))
		return journals
	}

	result := e.join(query, journals, in.links, categoryFilter{areas: areaFilter})

	e.observe(ctx, query, start, len(result))
	return result
}

// DiamondJournalsInAreasAndCategoriesWithQuartile returns the journals
// charging no APC that are linked to a category matching every non-empty
// filter.
func (e *Engine) DiamondJournalsInAreasAndCategoriesWithQuartile(ctx context.Context, areas, categoryIDs, quartiles []string) []*domain.Journal {
	start := time.Now()
	query := QueryDiamondJournalsInCategories

	in := e.fetch(ctx, true)

	journals := e.journalsFrom(query, in.records)
	diamond := make([]*domain.Journal, 0, len(journals))
	for _, j := range journals {
		if j.IsDiamond() {
			diamond = append(diamond, j)
		}
	}

	result := e.join(query, diamond, in.links, categoryFilter{
		ids:       newSet(categoryIDs),
		areas:     newSet(areas),
		quartiles: newSet(quartiles),
	})

	e.observe(ctx, query, start, len(result))
	return result
}
