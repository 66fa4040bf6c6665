// Package uow binds one database session to the lifetime of a single
// inbound request. The session is carried in the request context, so
// repositories can reach it without it being threaded through every call,
// and concurrent requests never observe each other's session.
package uow

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNoSession is returned when a session is requested outside an active
// request scope. Hitting it means a repository was called without the
// middleware (or NewContext) having run, which is a programming error.
var ErrNoSession = errors.New("uow: no session in context")

// Session is the set of database operations available to request-scoped
// code. Both *sql.Conn and *sql.DB satisfy it.
type Session interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying the given session.
func NewContext(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, session)
}

// FromContext returns the session bound to the current request scope.
func FromContext(ctx context.Context) (Session, error) {
	session, ok := ctx.Value(ctxKey{}).(Session)
	if !ok || session == nil {
		return nil, ErrNoSession
	}
	return session, nil
}
