package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/helixir/journal-federation-service/internal/domain"
	"github.com/helixir/journal-federation-service/internal/sources"
)

// Compile-time interface verification.
var _ sources.CategorySource = (*PgCategoryRepository)(nil)

// PgCategoryRepository reads category assignments from PostgreSQL.
type PgCategoryRepository struct {
	db   DBTX
	name string
}

// NewPgCategoryRepository creates a new PostgreSQL category repository.
// name identifies the store in logs and metrics.
func NewPgCategoryRepository(db DBTX, name string) *PgCategoryRepository {
	if name == "" {
		name = "postgres"
	}
	return &PgCategoryRepository{db: db, name: name}
}

// Name returns the store name.
func (r *PgCategoryRepository) Name() string {
	return r.name
}

// GetByID returns the assignments of one category.
func (r *PgCategoryRepository) GetByID(ctx context.Context, id string) ([]sources.CategoryRow, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewQueryRejectedError(r.name, "GetByID", errors.New("category id is required"))
	}

	query := `
		SELECT DISTINCT ` + categoryColumns + `
		FROM journal_category
		WHERE category_id = $1`

	return r.queryCategories(ctx, "GetByID", query, id)
}

// GetAllCategories returns every distinct assignment.
func (r *PgCategoryRepository) GetAllCategories(ctx context.Context) ([]sources.CategoryRow, error) {
	query := `
		SELECT DISTINCT ` + categoryColumns + `
		FROM journal_category`

	return r.queryCategories(ctx, "GetAllCategories", query)
}

// GetAllAreas returns every distinct area.
func (r *PgCategoryRepository) GetAllAreas(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT area
		FROM journal_category`

	return r.queryStrings(ctx, "GetAllAreas", query)
}

// GetByQuartiles returns the assignments ranked with one of quartiles.
func (r *PgCategoryRepository) GetByQuartiles(ctx context.Context, quartiles []string) ([]sources.CategoryRow, error) {
	return r.filterCategories(ctx, "GetByQuartiles", "quartile", quartiles)
}

// GetByAreas returns the assignments to one of areas.
func (r *PgCategoryRepository) GetByAreas(ctx context.Context, areas []string) ([]sources.CategoryRow, error) {
	return r.filterCategories(ctx, "GetByAreas", "area", areas)
}

// GetByCategories returns the distinct areas of the given categories.
func (r *PgCategoryRepository) GetByCategories(ctx context.Context, categoryIDs []string) ([]string, error) {
	filter := cleanFilter(categoryIDs)
	if filter == nil {
		return r.GetAllAreas(ctx)
	}

	query := `
		SELECT DISTINCT area
		FROM journal_category
		WHERE category_id = ANY($1)`

	return r.queryStrings(ctx, "GetByCategories", query, filter)
}

// GetLinks returns every link row with its quartile and area.
func (r *PgCategoryRepository) GetLinks(ctx context.Context) ([]sources.CategoryLink, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM journal_category`

	rows, err := r.db.Query(ctx, query)
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

// filterCategories reads assignments whose column is one of values.
// column is always a constant supplied by this file.
func (r *PgCategoryRepository) filterCategories(ctx context.Context, op, column string, values []string) ([]sources.CategoryRow, error) {
	filter := cleanFilter(values)
	if filter == nil {
		return r.queryCategories(ctx, op, `
		SELECT DISTINCT `+categoryColumns+`
		FROM journal_category`)
	}

	query := `
		SELECT DISTINCT ` + categoryColumns + `
		FROM journal_category
		WHERE ` + column + ` = ANY($1)`

	return r.queryCategories(ctx, op, query, filter)
}

func (r *PgCategoryRepository) queryCategories(ctx context.Context, op, query string, args ...any) ([]sources.CategoryRow, error) {
	rows, err := r.db.Query(ctx, query, args...)
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

func (r *PgCategoryRepository) queryStrings(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.classify(op, err)
	}
	defer rows.Close()

	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, r.classify(op, err)
	}
	if values == nil {
		values = []string{}
	}

	return values, nil
}

// classify maps server errors to ErrQueryRejected and everything else to
// ErrBackendUnavailable.
func (r *PgCategoryRepository) classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return domain.NewQueryRejectedError(r.name, op, err)
	}
	return domain.NewBackendUnavailableError(r.name, op, err)
}
