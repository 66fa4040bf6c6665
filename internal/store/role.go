package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cartstack/identity/internal/uow"
	"github.com/cartstack/identity/types"
)

// RoleRepository handles persistence for roles. Roles are seeded out of
// band; this core only reads and attaches them.
type RoleRepository struct{}

func NewRoleRepository() *RoleRepository {
	return &RoleRepository{}
}

// GetRoleByTitle returns the role with the given title, or ErrNotFound.
func (r *RoleRepository) GetRoleByTitle(ctx context.Context, title string) (types.Role, error) {
	session, err := uow.FromContext(ctx)
	if err != nil {
		return types.Role{}, err
	}

	const query = `SELECT id, title FROM roles WHERE title = $1`
	var role types.Role
	err = session.QueryRowContext(ctx, query, title).Scan(&role.ID, &role.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Role{}, ErrNotFound
		}
		return types.Role{}, err
	}
	return role, nil
}

// EnsureRole creates the role with the given title if it does not already
// exist and returns it either way.
func (r *RoleRepository) EnsureRole(ctx context.Context, title string) (types.Role, error) {
	session, err := uow.FromContext(ctx)
	if err != nil {
		return types.Role{}, err
	}

	const insert = `
		INSERT INTO roles (title)
		VALUES ($1)
		ON CONFLICT (title) DO NOTHING`
	if _, err := session.ExecContext(ctx, insert, title); err != nil {
		return types.Role{}, err
	}
	return r.GetRoleByTitle(ctx, title)
}
