package session

import (
	"context"
	"errors"

	"storefront/internal/storefront"
)

var ErrConflict = errors.New("session: concurrent update conflict")

// Store owns the storefront state of each shopper session.
type Store interface {
	// Get returns a copy of the session state, or a fresh state if none exists.
	Get(ctx context.Context, id string) (*storefront.State, error)
	// Update runs fn against the current state and persists the result only when fn
	// returns nil. Updates to the same session are serialized.
	Update(ctx context.Context, id string, fn func(*storefront.State) error) (*storefront.State, error)
	Delete(ctx context.Context, id string) error
}
