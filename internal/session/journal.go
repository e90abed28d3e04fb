package session

import (
	"context"

	"github.com/roach88/campusnav/internal/store"
)

// Journal receives every transition of a session, in order.
// *store.Store implements it.
type Journal interface {
	AppendTransition(ctx context.Context, rec store.TransitionRecord) error
}

var _ Journal = (*store.Store)(nil)
