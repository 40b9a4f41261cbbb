package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("category name already in use")
)

type Category struct {
	ID        uuid.UUID
	Name      string
	IsActive  bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

const categoryColumns = `id, name, is_active, deleted_at, created_at, updated_at`

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.IsActive, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repository) CreateCategory(ctx context.Context, name string) (Category, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name) VALUES ($1)
		RETURNING `+categoryColumns, name)

	category, err := scanCategory(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Category{}, ErrDuplicateCategory
		}
		return Category{}, err
	}

	return category, nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (Category, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND deleted_at IS NULL`, id)

	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, ErrCategoryNotFound
		}
		return Category{}, err
	}

	return category, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+categoryColumns+` FROM categories WHERE deleted_at IS NULL ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

type UpdateCategoryParams struct {
	Name     *string
	IsActive *bool
}

func (r *Repository) UpdateCategory(ctx context.Context, id uuid.UUID, params UpdateCategoryParams) (Category, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE categories SET
			name = COALESCE($2, name),
			is_active = COALESCE($3, is_active),
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+categoryColumns,
		id, params.Name, params.IsActive)

	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, ErrCategoryNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Category{}, ErrDuplicateCategory
		}
		return Category{}, err
	}

	return category, nil
}

// SoftDeleteCategory marks the category deleted. Leads keep their category
// reference; the category simply stops matching active-category queries.
func (r *Repository) SoftDeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE categories SET deleted_at = now(), is_active = false, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
