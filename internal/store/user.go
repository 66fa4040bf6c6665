package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cartstack/identity/internal/uow"
	"github.com/cartstack/identity/types"
)

// AccountRepository handles persistence for users and their role
// associations. All operations run against the session bound to the
// calling request's context; the repository never opens or closes a
// session itself.
type AccountRepository struct{}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{}
}

// CreateUser inserts the user and any roles already attached to it. On
// success the user's ID is populated from the store. A unique constraint
// failure surfaces as ErrDuplicateKey.
func (r *AccountRepository) CreateUser(ctx context.Context, user *types.User) error {
	session, err := uow.FromContext(ctx)
	if err != nil {
		return err
	}

	const insertUser = `
		INSERT INTO users (email, full_name, is_active, password)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := session.QueryRowContext(
		ctx,
		insertUser,
		user.Email,
		user.FullName,
		user.IsActive,
		user.Password,
	).Scan(&user.ID); err != nil {
		return mapUniqueViolation(err)
	}

	const insertRole = `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)`
	for _, role := range user.Roles {
		if _, err := session.ExecContext(ctx, insertRole, user.ID, role.ID); err != nil {
			return err
		}
	}
	return nil
}

// GetUserByEmail returns the user matching the given email with its roles
// resolved, or ErrNotFound when no such user exists.
func (r *AccountRepository) GetUserByEmail(ctx context.Context, email string) (types.User, error) {
	session, err := uow.FromContext(ctx)
	if err != nil {
		return types.User{}, err
	}

	const query = `
		SELECT id, email, full_name, is_active, password
		FROM users
		WHERE email = $1`
	var user types.User
	err = session.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.IsActive,
		&user.Password,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}

	user.Roles, err = r.rolesForUser(ctx, session, user.ID)
	if err != nil {
		return types.User{}, err
	}
	return user, nil
}

func (r *AccountRepository) rolesForUser(ctx context.Context, session uow.Session, userID int) ([]types.Role, error) {
	const query = `
		SELECT r.id, r.title
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.title`
	rows, err := session.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []types.Role
	for rows.Next() {
		var role types.Role
		if err := rows.Scan(&role.ID, &role.Title); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
