// Package sources defines the read contracts that backend stores expose to the
// federation engine.
//
// Two capability shapes exist. A JournalSource reads bibliographic records from
// a triple store and answers with long relations; a CategorySource reads the
// category/area/quartile assignments of a relational store. Any number of
// sources of each shape can be registered with the engine, which treats them
// as one logical source.
//
// Every read fails with an error classified by domain.ErrBackendUnavailable on
// transport or connection failure and by domain.ErrQueryRejected on malformed
// filter input.
//
// Example usage:
//
//	src := sparql.New(sparql.Config{Name: "blazegraph", Endpoint: url})
//	rel, err := src.GetByTitleFragment(ctx, "plant")
package sources

import (
	"context"

	"github.com/helixir/journal-federation-service/internal/triples"
)

// CategoryRow is one category assignment: a category, its quartile and its area.
// An empty Quartile means absent.
type CategoryRow struct {
	CategoryID string
	Quartile   string
	Area       string
}

// CategoryLink is one row of the link table: a journal identifier (ISSN)
// assigned to a category with the quartile and area of that assignment.
type CategoryLink struct {
	ISSN       string
	CategoryID string
	Quartile   string
	Area       string
}

// Row returns the category side of the link.
func (l CategoryLink) Row() CategoryRow {
	return CategoryRow{CategoryID: l.CategoryID, Quartile: l.Quartile, Area: l.Area}
}

// JournalSource reads bibliographic records as long relations. Each method
// returns every triple of each matching subject, not only the matched one.
type JournalSource interface {
	// Name returns a human-readable name used for logging and metrics.
	Name() string

	// GetAll returns every journal.
	GetAll(ctx context.Context) (triples.Relation, error)

	// GetByID returns the journal whose id literal equals id.
	GetByID(ctx context.Context, id string) (triples.Relation, error)

	// GetByTitleFragment returns journals whose title contains text,
	// case-insensitively.
	GetByTitleFragment(ctx context.Context, text string) (triples.Relation, error)

	// GetByPublisherFragment returns journals whose publisher contains text,
	// case-insensitively.
	GetByPublisherFragment(ctx context.Context, text string) (triples.Relation, error)

	// GetByLicence returns journals matching the licence text.
	GetByLicence(ctx context.Context, text string) (triples.Relation, error)

	// GetWithAPC returns journals that charge an article processing charge.
	GetWithAPC(ctx context.Context) (triples.Relation, error)

	// GetWithSeal returns journals holding the DOAJ seal.
	GetWithSeal(ctx context.Context) (triples.Relation, error)
}

// CategorySource reads category assignments and journal links.
// An empty filter set means no restriction on that axis.
type CategorySource interface {
	// Name returns a human-readable name used for logging and metrics.
	Name() string

	// GetByID returns the assignments of one category.
	GetByID(ctx context.Context, id string) ([]CategoryRow, error)

	// GetAllCategories returns every distinct assignment.
	GetAllCategories(ctx context.Context) ([]CategoryRow, error)

	// GetAllAreas returns every distinct area.
	GetAllAreas(ctx context.Context) ([]string, error)

	// GetByQuartiles returns the assignments ranked with one of quartiles.
	GetByQuartiles(ctx context.Context, quartiles []string) ([]CategoryRow, error)

	// GetByAreas returns the assignments to one of areas.
	GetByAreas(ctx context.Context, areas []string) ([]CategoryRow, error)

	// GetByCategories returns the distinct areas the given categories are assigned to.
	GetByCategories(ctx context.Context, categoryIDs []string) ([]string, error)

	// GetLinks returns every link row. A NULL quartile reads as "".
	GetLinks(ctx context.Context) ([]CategoryLink, error)
}
