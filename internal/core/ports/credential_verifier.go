package ports

import (
	"context"

	"github.com/orderflow/orderflow/internal/core/domain"
)

// CredentialVerifier wraps the remote login verification call. It returns
// every user record matching the credentials; callers decide what a count
// other than one means.
type CredentialVerifier interface {
	VerifyLogin(ctx context.Context, username, password string) ([]domain.User, error)
}
