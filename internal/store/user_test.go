package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartstack/identity/internal/uow"
	"github.com/cartstack/identity/types"
)

func newSessionContext(t *testing.T) (context.Context, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return uow.NewContext(context.Background(), db), mock
}

func TestCreateUserAssignsID(t *testing.T) {
	ctx, mock := newSessionContext(t)
	repo := NewAccountRepository()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("a@x.com", "A", true, "secret1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	user := types.User{Email: "a@x.com", FullName: "A", IsActive: true, Password: "secret1"}
	require.NoError(t, repo.CreateUser(ctx, &user))

	assert.Equal(t, 7, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserPersistsAttachedRoles(t *testing.T) {
	ctx, mock := newSessionContext(t)
	repo := NewAccountRepository()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("b@x.com", "B", true, "secret1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_roles")).
		WithArgs(3, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := types.User{
		Email:    "b@x.com",
		FullName: "B",
		IsActive: true,
		Password: "secret1",
		Roles:    []types.Role{{ID: 1, Title: "admin"}},
	}
	require.NoError(t, repo.CreateUser(ctx, &user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserUniqueViolation(t *testing.T) {
	ctx, mock := newSessionContext(t)
	repo := NewAccountRepository()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_idx"})

	user := types.User{Email: "a@x.com", FullName: "A", IsActive: true, Password: "secret1"}
	err := repo.CreateUser(ctx, &user)
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestGetUserByEmailResolvesRoles(t *testing.T) {
	ctx, mock := newSessionContext(t)
	repo := NewAccountRepository()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "is_active", "password"}).
			AddRow(1, "admin@example.com", "Admin User", true, "adminpassword"))
	mock.ExpectQuery(regexp.QuoteMeta("JOIN user_roles")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(1, "admin").
			AddRow(2, "customer"))

	user, err := repo.GetUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "Admin User", user.FullName)
	assert.True(t, user.IsActive)
	assert.Equal(t, []string{"admin", "customer"}, user.RoleTitles())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmailNotFound(t *testing.T) {
	ctx, mock := newSessionContext(t)
	repo := NewAccountRepository()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByEmail(ctx, "ghost@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryRequiresSession(t *testing.T) {
	repo := NewAccountRepository()

	user := types.User{Email: "a@x.com", FullName: "A", Password: "secret1"}
	err := repo.CreateUser(context.Background(), &user)
	require.ErrorIs(t, err, uow.ErrNoSession)

	_, err = repo.GetUserByEmail(context.Background(), "a@x.com")
	require.ErrorIs(t, err, uow.ErrNoSession)
}
