// Package repository provides data access for users, categories, and the
// executive-to-manager reporting tree.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/niketshah083/lead-management-backend-sub002/internal/directory/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Role         domain.Role
	ManagerID    *uuid.UUID
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateUserParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Role         domain.Role
	ManagerID    *uuid.UUID
}

const userColumns = `id, email, password_hash, first_name, last_name, phone, role, manager_id, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &role, &u.ManagerID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r *Repository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, phone, role, manager_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		params.Email, params.PasswordHash, params.FirstName, params.LastName, params.Phone, string(params.Role), params.ManagerID,
	)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ErrDuplicateEmail
		}
		return User{}, err
	}

	return user, nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	return user, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY last_name ASC, first_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

type UpdateUserParams struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Role      *domain.Role
	ManagerID *uuid.UUID
	ClearManager bool
	IsActive  *bool
}

func (r *Repository) UpdateUser(ctx context.Context, id uuid.UUID, params UpdateUserParams) (User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			phone = COALESCE($4, phone),
			role = COALESCE($5, role),
			manager_id = CASE WHEN $7 THEN NULL ELSE COALESCE($6, manager_id) END,
			is_active = COALESCE($8, is_active),
			updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, params.FirstName, params.LastName, params.Phone, roleText(params.Role), params.ManagerID, params.ClearManager, params.IsActive,
	)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	return user, nil
}

func roleText(role *domain.Role) *string {
	if role == nil {
		return nil
	}
	text := string(*role)
	return &text
}

// ListDirectReportIDs returns the ids of active users whose manager is the
// given user. The reporting tree is one level deep: executives report to a
// manager, managers report to no one.
func (r *Repository) ListDirectReportIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM users WHERE manager_id = $1 AND is_active = true
	`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ReplaceUserCategories swaps the user's category assignments inside one
// transaction so listings never observe a half-applied set.
func (r *Repository) ReplaceUserCategories(ctx context.Context, userID uuid.UUID, categoryIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_categories WHERE user_id = $1`, userID); err != nil {
		return err
	}

	for _, categoryID := range categoryIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_categories (user_id, category_id) VALUES ($1, $2)
			ON CONFLICT (user_id, category_id) DO NOTHING
		`, userID, categoryID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListUserCategoryIDs returns the ids of active categories assigned to a user.
func (r *Repository) ListUserCategoryIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT uc.category_id
		FROM user_categories uc
		JOIN categories c ON c.id = uc.category_id
		WHERE uc.user_id = $1 AND c.is_active = true AND c.deleted_at IS NULL
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
