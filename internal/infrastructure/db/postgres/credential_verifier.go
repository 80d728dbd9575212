package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orderflow/orderflow/internal/core/domain"
)

// CredentialVerifier calls the verify_user_login SQL function.
type CredentialVerifier struct {
	db PgxIface
}

func NewCredentialVerifier(db PgxIface) *CredentialVerifier {
	return &CredentialVerifier{db: db}
}

func (v *CredentialVerifier) VerifyLogin(ctx context.Context, username, password string) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := v.db.Query(ctx,
		`SELECT id, username, role, created_at FROM verify_user_login($1, $2)`,
		username, password)
	if err != nil {
		return nil, fmt.Errorf("verify_user_login: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var (
			id        uuid.UUID
			u         domain.User
			role      string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &u.Username, &role, &createdAt); err != nil {
			return nil, fmt.Errorf("scan login row: %w", err)
		}
		u.ID = id.String()
		u.Role = domain.Role(role)
		u.CreatedAt = createdAt
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate login rows: %w", err)
	}
	return users, nil
}

// CreateUser inserts an account with a pgcrypto bcrypt hash. Existing
// usernames are left untouched and reported as created=false.
func CreateUser(ctx context.Context, db PgxIface, username, password string, role domain.Role) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := db.Exec(ctx,
		`INSERT INTO users (username, password_hash, role)
		 VALUES ($1, crypt($2, gen_salt('bf')), $3)
		 ON CONFLICT (username) DO NOTHING`,
		username, password, string(role))
	if err != nil {
		return false, fmt.Errorf("create user %s: %w", username, err)
	}
	return tag.RowsAffected() == 1, nil
}
