package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartstack/identity/internal/store"
	"github.com/cartstack/identity/types"
)

// fakeAccountRepo is an in-memory AccountRepository keyed by email.
type fakeAccountRepo struct {
	users  map[string]types.User
	nextID int

	createErr error
	getErr    error
	// skipID leaves the user without an id after a "successful" insert.
	skipID bool
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{users: make(map[string]types.User), nextID: 1}
}

func (f *fakeAccountRepo) CreateUser(ctx context.Context, user *types.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.users[user.Email]; exists {
		return store.ErrDuplicateKey
	}
	if !f.skipID {
		user.ID = f.nextID
		f.nextID++
	}
	f.users[user.Email] = *user
	return nil
}

func (f *fakeAccountRepo) GetUserByEmail(ctx context.Context, email string) (types.User, error) {
	if f.getErr != nil {
		return types.User{}, f.getErr
	}
	user, exists := f.users[email]
	if !exists {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

type recordingPublisher struct {
	published []types.User
	err       error
}

func (r *recordingPublisher) AccountCreated(ctx context.Context, user types.User) error {
	if r.err != nil {
		return r.err
	}
	r.published = append(r.published, user)
	return nil
}

func TestSignupCreatesUser(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, nil)

	user, err := svc.Signup(context.Background(), "a@x.com", "A", "secret1")
	require.NoError(t, err)

	assert.Positive(t, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "A", user.FullName)
	assert.True(t, user.IsActive)
	assert.Empty(t, user.Roles)
	assert.NotNil(t, user.RoleTitles())
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, nil)

	_, err := svc.Signup(context.Background(), "a@x.com", "A", "secret1")
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), "a@x.com", "Another A", "secret2")
	require.ErrorIs(t, err, ErrDuplicateAccount)
	assert.Len(t, repo.users, 1)
}

func TestSignupDuplicateKeyRace(t *testing.T) {
	// The existence check and the insert are separate operations, so a
	// concurrent signup can slip between them. The store's unique
	// constraint breaks the tie and must still surface as a duplicate.
	repo := newFakeAccountRepo()
	repo.createErr = store.ErrDuplicateKey
	svc := NewAccountService(repo, nil)

	_, err := svc.Signup(context.Background(), "a@x.com", "A", "secret1")
	require.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestSignupPersistenceFault(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.skipID = true
	svc := NewAccountService(repo, nil)

	_, err := svc.Signup(context.Background(), "a@x.com", "A", "secret1")
	require.ErrorIs(t, err, ErrPersistenceFault)
}

func TestSignupRepositoryFailure(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.getErr = errors.New("connection reset")
	svc := NewAccountService(repo, nil)

	_, err := svc.Signup(context.Background(), "a@x.com", "A", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateAccount)
	assert.NotErrorIs(t, err, ErrPersistenceFault)
}

func TestSignupPublishesAccountCreated(t *testing.T) {
	repo := newFakeAccountRepo()
	publisher := &recordingPublisher{}
	svc := NewAccountService(repo, publisher)

	user, err := svc.Signup(context.Background(), "a@x.com", "A", "secret1")
	require.NoError(t, err)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, user.ID, publisher.published[0].ID)
}

func TestSignupSucceedsWhenPublishFails(t *testing.T) {
	repo := newFakeAccountRepo()
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc := NewAccountService(repo, publisher)

	user, err := svc.Signup(context.Background(), "a@x.com", "A", "secret1")
	require.NoError(t, err)
	assert.Positive(t, user.ID)
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, nil)

	created, err := svc.Signup(context.Background(), "a@x.com", "A", "secret1")
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, created.Email, user.Email)
	assert.Equal(t, created.FullName, user.FullName)
}

func TestLoginFailuresCollapse(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, nil)

	_, err := svc.Signup(context.Background(), "a@x.com", "A", "secret1")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), "a@x.com", "wrong")
	_, unknownEmail := svc.Login(context.Background(), "ghost@x.com", "secret1")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	// Unknown email and wrong password must be externally identical.
	assert.Equal(t, wrongPassword, unknownEmail)
}

func TestLoginRejectsUserWithoutID(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.users["a@x.com"] = types.User{Email: "a@x.com", FullName: "A", Password: "secret1"}
	svc := NewAccountService(repo, nil)

	_, err := svc.Login(context.Background(), "a@x.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRepositoryFailure(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.getErr = errors.New("connection reset")
	svc := NewAccountService(repo, nil)

	_, err := svc.Login(context.Background(), "a@x.com", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
