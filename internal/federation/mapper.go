package federation

import (
	"strings"

	"github.com/helixir/journal-federation-service/internal/domain"
	"github.com/helixir/journal-federation-service/internal/sources"
	"github.com/helixir/journal-federation-service/internal/triples"
)

// Field names of a normalized journal record (predicate local names).
const (
	fieldID        = "id"
	fieldEISSN     = "eissn"
	fieldTitle     = "title"
	fieldPublisher = "publisher"
	fieldLanguage  = "language"
	fieldLicence   = "licence"
	fieldLicense   = "license"
	fieldAPC       = "apc"
	fieldSeal      = "seal"
)

// journalIDs returns the identifiers of a record. The primary id follows the
// journal precedence over the id field, the eissn field and the title; a
// record carrying none of them falls back to the local name of its subject.
// Every stored id and eissn follows the primary id.
func journalIDs(rec triples.Record) []string {
	stored := rec.Values(fieldID)

	ids := domain.JournalIdentifiers{
		EISSN:    rec.Scalar(fieldEISSN),
		Title:    rec.Scalar(fieldTitle),
		RowIndex: -1,
	}
	if len(stored) > 0 {
		ids.ISSN = stored[0]
	}

	primary, err := domain.ResolveJournalID(ids)
	if err != nil {
		primary = triples.LocalName(rec.URI)
	}
	out := append([]string{primary}, stored...)
	return append(out, rec.Values(fieldEISSN)...)
}

// licences returns the licence values of a record under either spelling.
func licences(rec triples.Record) []string {
	if rec.Has(fieldLicence) {
		return rec.Values(fieldLicence)
	}
	return rec.Values(fieldLicense)
}

func toJournal(rec triples.Record) (*domain.Journal, error) {
	var publisher *domain.Publisher
	if name := strings.TrimSpace(rec.Scalar(fieldPublisher)); name != "" {
		p, err := domain.NewPublisher([]string{name}, name)
		if err != nil {
			return nil, err
		}
		publisher = p
	}

	licence := ""
	if values := licences(rec); len(values) > 0 {
		licence = values[0]
	}

	return domain.NewJournal(journalIDs(rec), domain.JournalAttributes{
		Title:       rec.Scalar(fieldTitle),
		Publisher:   publisher,
		Languages:   rec.Values(fieldLanguage),
		HasDOAJSeal: domain.ParseBool(rec.Scalar(fieldSeal)),
		HasAPC:      domain.ParseBool(rec.Scalar(fieldAPC)),
		Licence:     licence,
	})
}

// toJournals maps records to journals, skipping records that yield no
// identifier.
func toJournals(records []triples.Record) (journals []*domain.Journal, dropped int) {
	journals = make([]*domain.Journal, 0, len(records))
	for _, rec := range records {
		j, err := toJournal(rec)
		if err != nil {
			dropped++
			continue
		}
		journals = append(journals, j)
	}
	return journals, dropped
}

// toCategory maps one category row. The area value is both id and name.
func toCategory(row sources.CategoryRow) (*domain.Category, error) {
	var area *domain.Area
	if row.Area != "" {
		a, err := domain.NewArea([]string{row.Area}, row.Area)
		if err != nil {
			return nil, err
		}
		area = a
	}
	return domain.NewCategory([]string{row.CategoryID}, row.CategoryID, domain.Quartile(row.Quartile), area)
}

func toCategories(rows []sources.CategoryRow) (categories []*domain.Category, dropped int) {
	categories = make([]*domain.Category, 0, len(rows))
	for _, row := range rows {
		c, err := toCategory(row)
		if err != nil {
			dropped++
			continue
		}
		categories = append(categories, c)
	}
	return categories, dropped
}

func toAreas(names []string) (areas []*domain.Area, dropped int) {
	areas = make([]*domain.Area, 0, len(names))
	for _, name := range names {
		a, err := domain.NewArea([]string{name}, name)
		if err != nil {
			dropped++
			continue
		}
		areas = append(areas, a)
	}
	return areas, dropped
}
