package ports

import (
	"context"

	"github.com/orderflow/orderflow/internal/core/domain"
)

// SessionWriter is the part of the session store the gateway needs.
type SessionWriter interface {
	ClearCurrentUser(ctx context.Context) error
}

type AuthService interface {
	SignIn(ctx context.Context, username, password string) (*domain.User, error)
	SignOut(ctx context.Context, session SessionWriter) error
}
