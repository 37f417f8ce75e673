package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	dErrors "cradle/pkg/domain-errors"

	"cradle/internal/users/models"
)

// PostgresStore persists users in PostgreSQL. Roles are stored as JSONB.
type PostgresStore struct {
	db *sql.DB
}

var _ UserStore = (*PostgresStore)(nil)

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a user. A (tenant_id, email) collision maps to a conflict
// domain error.
func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	roles, err := json.Marshal(user.Roles)
	if err != nil {
		return fmt.Errorf("marshal roles: %w", err)
	}
	query := `
		INSERT INTO users (id, tenant_id, email, hashed_password, full_name, roles, is_active, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err = s.db.QueryRowContext(ctx, query,
		user.ID,
		user.TenantID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		roles,
		user.IsActive,
		user.IsVerified,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID within a tenant.
func (s *PostgresStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	query := userSelect + ` WHERE tenant_id = $1 AND id = $2`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email within a tenant.
func (s *PostgresStore) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	query := userSelect + ` WHERE tenant_id = $1 AND email = $2`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, tenantID, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

// Update replaces a user's mutable fields.
func (s *PostgresStore) Update(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	roles, err := json.Marshal(user.Roles)
	if err != nil {
		return fmt.Errorf("marshal roles: %w", err)
	}
	query := `
		UPDATE users
		SET email = $3, hashed_password = $4, full_name = $5, roles = $6,
		    is_active = $7, is_verified = $8, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
	`
	res, err := s.db.ExecContext(ctx, query,
		user.TenantID,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		roles,
		user.IsActive,
		user.IsVerified,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return fmt.Errorf("update user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows: %w", err)
	}
	if rows == 0 {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return nil
}

// Delete removes a user within a tenant.
func (s *PostgresStore) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows: %w", err)
	}
	if rows == 0 {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return nil
}

// List returns a page of users in a tenant ordered by creation time.
func (s *PostgresStore) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]*models.User, error) {
	query := userSelect + `
		WHERE tenant_id = $1
		ORDER BY created_at, id
		OFFSET $2 LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, tenantID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// TouchLastLogin records a successful login time.
func (s *PostgresStore) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = now(), updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch last login rows: %w", err)
	}
	if rows == 0 {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return nil
}

const userSelect = `
	SELECT id, tenant_id, email, hashed_password, full_name, roles,
	       is_active, is_verified, last_login_at, created_at, updated_at
	FROM users`

type userRow interface {
	Scan(dest ...any) error
}

func scanUser(row userRow) (*models.User, error) {
	var user models.User
	var roles []byte
	if err := row.Scan(
		&user.ID,
		&user.TenantID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&roles,
		&user.IsActive,
		&user.IsVerified,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(roles) > 0 {
		if err := json.Unmarshal(roles, &user.Roles); err != nil {
			return nil, fmt.Errorf("unmarshal roles: %w", err)
		}
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
