package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ekipteam/ekip/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
SELECT user_id, email, department, created_at
FROM users
WHERE email = $1`

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.UserID, &user.Email, &user.Department, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapError(domain.ErrNotFound, "get user by email",
			fmt.Errorf("email %q", email))
	}
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return &user, nil
}

// GetContext loads the identity attached to authenticated requests.
// Roles keep role_id order so token refreshes see a stable set.
func (r *UserRepository) GetContext(ctx context.Context, userID string) (*domain.UserContext, error) {
	const userQuery = `
SELECT user_id, email, department
FROM users
WHERE user_id = $1`

	var uc domain.UserContext
	err := r.db.QueryRowContext(ctx, userQuery, userID).Scan(
		&uc.UserID, &uc.Email, &uc.Department,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapError(domain.ErrNotFound, "get user context",
			fmt.Errorf("user %q", userID))
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	const rolesQuery = `
SELECT r.role_name
FROM user_roles ur
JOIN roles r ON r.role_id = ur.role_id
WHERE ur.user_id = $1
ORDER BY r.role_id`

	rows, err := r.db.QueryContext(ctx, rolesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("query user roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		uc.Roles = append(uc.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return &uc, nil
}
