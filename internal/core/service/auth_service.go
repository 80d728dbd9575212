package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orderflow/orderflow/internal/core/domain"
	"github.com/orderflow/orderflow/internal/core/ports"
)

// AuthService signs users in against the remote credential verifier.
type AuthService struct {
	verifier ports.CredentialVerifier
	log      zerolog.Logger
}

func NewAuthService(verifier ports.CredentialVerifier, log zerolog.Logger) *AuthService {
	return &AuthService{verifier: verifier, log: log}
}

// SignIn returns the single user matching the credentials. Every failure,
// including transport errors, is reported as domain.ErrInvalidCredentials.
// The caller is responsible for persisting the user in its session.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	users, err := s.verifier.VerifyLogin(ctx, username, password)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("credential verification failed")
		return nil, domain.ErrInvalidCredentials
	}
	if len(users) != 1 {
		if len(users) > 1 {
			s.log.Warn().Str("username", username).Int("matches", len(users)).Msg("ambiguous login rejected")
		}
		return nil, domain.ErrInvalidCredentials
	}

	user := users[0]
	if !user.Valid() {
		s.log.Warn().Str("username", username).Str("role", string(user.Role)).Msg("login returned an invalid user record")
		return nil, domain.ErrInvalidCredentials
	}

	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("user signed in")
	return &user, nil
}

// SignOut clears the caller's session. There is no server-side session to
// invalidate.
func (s *AuthService) SignOut(ctx context.Context, session ports.SessionWriter) error {
	if err := session.ClearCurrentUser(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}
