package identity

import (
	"context"
	"errors"
)

const RoleAdmin = "admin"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("admin role required")
)

// Caller is the acting identity, passed explicitly into every usecase call.
type Caller struct {
	ActorID string
	Roles   []string
}

func (c Caller) Authenticated() bool { return c.ActorID != "" }

func (c Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (c Caller) IsAdmin() bool { return c.HasRole(RoleAdmin) }

// RequireActor fails with ErrUnauthenticated when no actor is resolvable.
func (c Caller) RequireActor() error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin checks the roles the caller presented.
func (c Caller) RequireAdmin() error {
	if err := c.RequireActor(); err != nil {
		return err
	}
	if !c.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

type callerKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// FromContext returns the zero Caller when none is attached.
func FromContext(ctx context.Context) Caller {
	if c, ok := ctx.Value(callerKey{}).(Caller); ok {
		return c
	}
	return Caller{}
}
