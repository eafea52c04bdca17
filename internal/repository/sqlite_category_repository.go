package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/helixir/journal-federation-service/internal/domain"
	"github.com/helixir/journal-federation-service/internal/sources"
)

// Compile-time interface verification.
var _ sources.CategorySource = (*SQLiteCategoryRepository)(nil)

// SQLiteCategoryRepository reads category assignments from a SQLite file.
type SQLiteCategoryRepository struct {
	db   *sql.DB
	name string
}

// NewSQLiteCategoryRepository creates a category repository over db.
// name identifies the store in logs and metrics.
func NewSQLiteCategoryRepository(db *sql.DB, name string) *SQLiteCategoryRepository {
	if name == "" {
		name = "sqlite"
	}
	return &SQLiteCategoryRepository{db: db, name: name}
}

// Name returns the store name.
func (r *SQLiteCategoryRepository) Name() string {
	return r.name
}

// GetByID returns the assignments of one category.
func (r *SQLiteCategoryRepository) GetByID(ctx context.Context, id string) ([]sources.CategoryRow, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewQueryRejectedError(r.name, "GetByID", errors.New("category id is required"))
	}

	query := `SELECT DISTINCT ` + categoryColumns + ` FROM journal_category WHERE category_id = ?`
	return r.queryCategories(ctx, "GetByID", query, id)
}

// GetAllCategories returns every distinct assignment.
func (r *SQLiteCategoryRepository) GetAllCategories(ctx context.Context) ([]sources.CategoryRow, error) {
	query := `SELECT DISTINCT ` + categoryColumns + ` FROM journal_category`
	return r.queryCategories(ctx, "GetAllCategories", query)
}

// GetAllAreas returns every distinct area.
func (r *SQLiteCategoryRepository) GetAllAreas(ctx context.Context) ([]string, error) {
	return r.queryStrings(ctx, "GetAllAreas", `SELECT DISTINCT area FROM journal_category`)
}

// GetByQuartiles returns the assignments ranked with one of quartiles.
func (r *SQLiteCategoryRepository) GetByQuartiles(ctx context.Context, quartiles []string) ([]sources.CategoryRow, error) {
	return r.filterCategories(ctx, "GetByQuartiles", "quartile", quartiles)
}

// GetByAreas returns the assignments to one of areas.
func (r *SQLiteCategoryRepository) GetByAreas(ctx context.Context, areas []string) ([]sources.CategoryRow, error) {
	return r.filterCategories(ctx, "GetByAreas", "area", areas)
}

// GetByCategories returns the distinct areas of the given categories.
func (r *SQLiteCategoryRepository) GetByCategories(ctx context.Context, categoryIDs []string) ([]string, error) {
	filter := cleanFilter(categoryIDs)
	if filter == nil {
		return r.GetAllAreas(ctx)
	}

	placeholders, args := inClause(filter)
	query := `SELECT DISTINCT area FROM journal_category WHERE category_id IN (` + placeholders + `)`
	return r.queryStrings(ctx, "GetByCategories", query, args...)
}

// GetLinks returns every link row with its quartile and area.
func (r *SQLiteCategoryRepository) GetLinks(ctx context.Context) ([]sources.CategoryLink, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+linkColumns+` FROM journal_category`)
	if err != nil {
		return nil, r.classify("GetLinks", err)
	}
	defer rows.Close()

	links := []sources.CategoryLink{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, r.classify("GetLinks", fmt.Errorf("failed to scan link: %w", err))
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, r.classify("GetLinks", err)
	}

	return links, nil
}

func (r *SQLiteCategoryRepository) filterCategories(ctx context.Context, op, column string, values []string) ([]sources.CategoryRow, error) {
	filter := cleanFilter(values)
	if filter == nil {
		return r.queryCategories(ctx, op, `SELECT DISTINCT `+categoryColumns+` FROM journal_category`)
	}

	placeholders, args := inClause(filter)
	query := `SELECT DISTINCT ` + categoryColumns + ` FROM journal_category WHERE ` + column + ` IN (` + placeholders + `)`
	return r.queryCategories(ctx, op, query, args...)
}

func (r *SQLiteCategoryRepository) queryCategories(ctx context.Context, op, query string, args ...any) ([]sources.CategoryRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.classify(op, err)
	}
	defer rows.Close()

	result := []sources.CategoryRow{}
	for rows.Next() {
		row, err := scanCategoryRow(rows)
		if err != nil {
			return nil, r.classify(op, fmt.Errorf("failed to scan category: %w", err))
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, r.classify(op, err)
	}

	return result, nil
}

func (r *SQLiteCategoryRepository) queryStrings(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.classify(op, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, r.classify(op, fmt.Errorf("failed to scan value: %w", err))
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, r.classify(op, err)
	}

	return values, nil
}

// classify maps SQL errors (bad statement, missing table) to ErrQueryRejected
// and everything else to ErrBackendUnavailable.
func (r *SQLiteCategoryRepository) classify(op string, err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_ERROR {
		return domain.NewQueryRejectedError(r.name, op, err)
	}
	return domain.NewBackendUnavailableError(r.name, op, err)
}

// inClause returns "?, ?, ..." and the matching arguments.
func inClause(values []string) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", "), args
}
