package federation

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/helixir/journal-federation-service/internal/domain"
	"github.com/helixir/journal-federation-service/internal/sources"
	"github.com/helixir/journal-federation-service/internal/triples"
)

const base = "http://application.org/"

// journal builds the triples of one subject from name/value pairs.
func journal(uri string, pairs ...string) triples.Relation {
	rel := make(triples.Relation, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		rel = append(rel, triples.Triple{Subject: uri, Predicate: base + pairs[i], Object: pairs[i+1]})
	}
	return rel
}

func relation(parts ...triples.Relation) triples.Relation {
	var out triples.Relation
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// fakeJournals answers reads from an in-memory relation.
type fakeJournals struct {
	name  string
	rel   triples.Relation
	err   error
	calls atomic.Int32
}

func (f *fakeJournals) Name() string { return f.name }

// where returns every triple of the subjects having a field value accepted by match.
func (f *fakeJournals) where(field string, match func(string) bool) (triples.Relation, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	subjects := make(map[string]bool)
	for _, t := range f.rel {
		if triples.LocalName(t.Predicate) == field && match(t.Object) {
			subjects[t.Subject] = true
		}
	}
	out := triples.Relation{}
	for _, t := range f.rel {
		if subjects[t.Subject] {
			out = append(out, t)
		}
	}
	return out, nil
}

func containsFold(fragment string) func(string) bool {
	return func(v string) bool {
		return strings.Contains(strings.ToLower(v), strings.ToLower(fragment))
	}
}

func (f *fakeJournals) GetAll(ctx context.Context) (triples.Relation, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return append(triples.Relation{}, f.rel...), nil
}

func (f *fakeJournals) GetByID(ctx context.Context, id string) (triples.Relation, error) {
	return f.where("id", func(v string) bool { return v == id })
}

func (f *fakeJournals) GetByTitleFragment(ctx context.Context, fragment string) (triples.Relation, error) {
	return f.where("title", containsFold(fragment))
}

func (f *fakeJournals) GetByPublisherFragment(ctx context.Context, fragment string) (triples.Relation, error) {
	return f.where("publisher", containsFold(fragment))
}

func (f *fakeJournals) GetByLicence(ctx context.Context, licence string) (triples.Relation, error) {
	return f.where("licence", containsFold(licence))
}

func (f *fakeJournals) GetWithAPC(ctx context.Context) (triples.Relation, error) {
	return f.where("apc", domain.ParseBool)
}

func (f *fakeJournals) GetWithSeal(ctx context.Context) (triples.Relation, error) {
	return f.where("seal", domain.ParseBool)
}

// link is one journal_category row.
type link struct {
	issn, categoryID, quartile, area string
}

// fakeCategories answers reads from in-memory link rows.
type fakeCategories struct {
	name  string
	rows  []link
	err   error
	calls atomic.Int32
}

func (f *fakeCategories) Name() string { return f.name }

func (f *fakeCategories) categories(match func(link) bool) ([]sources.CategoryRow, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := []sources.CategoryRow{}
	seen := make(map[sources.CategoryRow]bool)
	for _, r := range f.rows {
		if !match(r) {
			continue
		}
		row := sources.CategoryRow{CategoryID: r.categoryID, Quartile: r.quartile, Area: r.area}
		if !seen[row] {
			seen[row] = true
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeCategories) areas(match func(link) bool) ([]string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := []string{}
	seen := make(map[string]bool)
	for _, r := range f.rows {
		if match(r) && !seen[r.area] {
			seen[r.area] = true
			out = append(out, r.area)
		}
	}
	return out, nil
}

func inFilter(values []string, v string) bool {
	if len(values) == 0 {
		return true
	}
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func (f *fakeCategories) GetByID(ctx context.Context, id string) ([]sources.CategoryRow, error) {
	return f.categories(func(r link) bool { return r.categoryID == id })
}

func (f *fakeCategories) GetAllCategories(ctx context.Context) ([]sources.CategoryRow, error) {
	return f.categories(func(link) bool { return true })
}

func (f *fakeCategories) GetAllAreas(ctx context.Context) ([]string, error) {
	return f.areas(func(link) bool { return true })
}

func (f *fakeCategories) GetByQuartiles(ctx context.Context, quartiles []string) ([]sources.CategoryRow, error) {
	return f.categories(func(r link) bool { return inFilter(quartiles, r.quartile) })
}

func (f *fakeCategories) GetByAreas(ctx context.Context, areas []string) ([]sources.CategoryRow, error) {
	return f.categories(func(r link) bool { return inFilter(areas, r.area) })
}

func (f *fakeCategories) GetByCategories(ctx context.Context, categoryIDs []string) ([]string, error) {
	return f.areas(func(r link) bool { return inFilter(categoryIDs, r.categoryID) })
}

func (f *fakeCategories) GetLinks(ctx context.Context) ([]sources.CategoryLink, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]sources.CategoryLink, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, sources.CategoryLink{ISSN: r.issn, CategoryID: r.categoryID, Quartile: r.quartile, Area: r.area})
	}
	return out, nil
}

var (
	_ sources.JournalSource  = (*fakeJournals)(nil)
	_ sources.CategorySource = (*fakeCategories)(nil)
)

func journalIDsOf(journals []*domain.Journal) []string {
	ids := make([]string, 0, len(journals))
	for _, j := range journals {
		ids = append(ids, j.PrimaryID())
	}
	return ids
}
