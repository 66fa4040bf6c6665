package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cartstack/identity/internal/store"
	"github.com/cartstack/identity/types"
)

var (
	// ErrDuplicateAccount is returned when a signup email is already
	// registered.
	ErrDuplicateAccount = errors.New("email already registered")

	// ErrInvalidCredentials is returned on any login failure. Unknown
	// email and wrong password collapse to this one error so callers
	// cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPersistenceFault is returned when the store accepted a write
	// but the resulting row is inconsistent.
	ErrPersistenceFault = errors.New("persistence fault")
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	CreateUser(ctx context.Context, user *types.User) error
	GetUserByEmail(ctx context.Context, email string) (types.User, error)
}

// EventPublisher notifies downstream systems of account changes.
type EventPublisher interface {
	AccountCreated(ctx context.Context, user types.User) error
}

// AccountService orchestrates signup and login. It is the single
// translation boundary between persistence outcomes and domain errors.
type AccountService struct {
	repo   AccountRepository
	events EventPublisher
}

// NewAccountService constructs an AccountService. events may be nil, in
// which case no account events are published.
func NewAccountService(repo AccountRepository, events EventPublisher) *AccountService {
	return &AccountService{repo: repo, events: events}
}

// Signup registers a new user and returns the persisted account. The
// email must not already be registered. The returned user carries its
// store-assigned id and the roles attached at creation time.
func (s *AccountService) Signup(ctx context.Context, email, fullName, password string) (types.User, error) {
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return types.User{}, ErrDuplicateAccount
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check existing user: %w", err)
	}

	user := types.User{
		Email:    email,
		FullName: fullName,
		IsActive: true,
		Password: password,
	}
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		// Two concurrent signups can pass the existence check above;
		// the store's unique constraint breaks the tie.
		if errors.Is(err, store.ErrDuplicateKey) {
			return types.User{}, ErrDuplicateAccount
		}
		return types.User{}, fmt.Errorf("create user: %w", err)
	}
	if user.ID == 0 {
		return types.User{}, ErrPersistenceFault
	}

	if s.events != nil {
		if err := s.events.AccountCreated(ctx, user); err != nil {
			log.Printf("services: account created event for user %d not published: %v", user.ID, err)
		}
	}
	return user, nil
}

// Login authenticates the given credentials and returns the stored
// account. The stored password must equal the submitted password exactly.
func (s *AccountService) Login(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, fmt.Errorf("look up user: %w", err)
	}
	if user.ID == 0 || user.Password != password {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}
