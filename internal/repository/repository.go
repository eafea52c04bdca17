// Package repository provides the relational category-link readers of the
// journal federation service.
//
// # Overview
//
// Every reader implements sources.CategorySource over the link table
//
//	journal_category(issn, category_id, quartile, area)
//
// with primary key (issn, category_id, area). Two implementations exist:
//
//   - PgCategoryRepository: PostgreSQL through pgx, using DBTX
//   - SQLiteCategoryRepository: SQLite through database/sql and modernc.org/sqlite
//
// # Query semantics
//
// Category and area reads use SELECT DISTINCT. A filter set that is empty
// after trimming blank values means "no restriction" and returns the
// unfiltered result, never an empty one.
//
// # Error Handling
//
// Failures are wrapped in *domain.SourceError so callers can classify them
// with errors.Is:
//
//   - domain.ErrQueryRejected: the store refused the statement
//   - domain.ErrBackendUnavailable: connection, context or scan failure
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use by multiple goroutines.
//
// # Usage Pattern
//
//	db, _ := database.New(ctx, cfg, logger)
//	pgRepo := repository.NewPgCategoryRepository(db, "postgres")
//
//	sqlDB, _ := database.OpenSQLite(ctx, "relational.db", logger)
//	sqliteRepo := repository.NewSQLiteCategoryRepository(sqlDB, "relational.db")
package repository

import (
	"strings"

	"github.com/helixir/journal-federation-service/internal/database"
	"github.com/helixir/journal-federation-service/internal/sources"
)

// DBTX is the database interface supporting both pool and transaction contexts.
//
//	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
//	    rows, err := repository.NewPgCategoryRepository(tx, "postgres").GetLinks(ctx)
//	    ...
//	})
type DBTX = database.DBTX

// Shared column lists of the link table.
const (
	categoryColumns = "category_id, COALESCE(quartile, ''), area"
	linkColumns     = "issn, " + categoryColumns
)

// cleanFilter drops blank values and duplicates, keeping order.
// A nil result means the filter is unconstrained.
func cleanFilter(values []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// rowScanner is implemented by pgx.Rows and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategoryRow(s rowScanner) (sources.CategoryRow, error) {
	var row sources.CategoryRow
	err := s.Scan(&row.CategoryID, &row.Quartile, &row.Area)
	return row, err
}

func scanLink(s rowScanner) (sources.CategoryLink, error) {
	var link sources.CategoryLink
	err := s.Scan(&link.ISSN, &link.CategoryID, &link.Quartile, &link.Area)
	return link, err
}
