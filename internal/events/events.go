// Package events publishes account lifecycle events to a message broker
// for downstream commerce services. Publishing is best effort: the account
// operations themselves never depend on a broker being reachable.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cartstack/identity/types"
)

// Backend defines the broker-agnostic operations used by the publisher.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// AccountCreatedEvent is the payload emitted after a successful signup.
type AccountCreatedEvent struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher wraps a backend with a stable API bound to one channel.
type Publisher struct {
	backend Backend
	channel string
}

// NewPublisher constructs a Publisher for the provided backend and channel.
func NewPublisher(backend Backend, channel string) *Publisher {
	return &Publisher{backend: backend, channel: channel}
}

// Publish sends the event to the configured channel.
func (p *Publisher) Publish(ctx context.Context, eventType string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.backend.Publish(ctx, p.channel, data, map[string]string{"type": eventType})
	return err
}

// AccountCreated publishes an account.created event for the given user.
func (p *Publisher) AccountCreated(ctx context.Context, user types.User) error {
	return p.Publish(ctx, "account.created", AccountCreatedEvent{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Roles:     user.RoleTitles(),
		CreatedAt: time.Now().UTC(),
	})
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	return p.backend.Close()
}
