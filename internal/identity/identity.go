// Package identity supplies the owner id every planner query and write is scoped by.
package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrOwnerMissing signals that no authenticated owner is available.
var ErrOwnerMissing = errors.New("no authenticated owner")

// Provider returns the current owner id, or false when nobody is authenticated.
type Provider interface {
	OwnerID(ctx context.Context) (string, bool)
}

// Static always reports the same owner. The empty Static is unauthenticated.
type Static string

// OwnerID implements Provider.
func (s Static) OwnerID(context.Context) (string, bool) {
	id := strings.TrimSpace(string(s))
	return id, id != ""
}

// Anonymous is the provider used when nobody is signed in.
var Anonymous Provider = Static("")

type contextKey struct{}

// WithOwner returns a context carrying ownerID.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, contextKey{}, ownerID)
}

// FromContext returns the owner stored by WithOwner.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Context prefers an owner carried by the context and falls back to another provider.
type Context struct {
	Fallback Provider
}

// OwnerID implements Provider.
func (c Context) OwnerID(ctx context.Context) (string, bool) {
	if id, ok := FromContext(ctx); ok {
		return id, true
	}
	if c.Fallback == nil {
		return "", false
	}
	return c.Fallback.OwnerID(ctx)
}

// Require returns the current owner or ErrOwnerMissing.
func Require(ctx context.Context, p Provider) (string, error) {
	if p == nil {
		return "", ErrOwnerMissing
	}
	id, ok := p.OwnerID(ctx)
	if !ok {
		return "", ErrOwnerMissing
	}
	return id, nil
}
