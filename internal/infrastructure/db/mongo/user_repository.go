package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/orderflow/orderflow/internal/core/domain"
)

const collectionUsers = "users"

// UserRepository stores accounts and verifies logins with bcrypt.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Role:      domain.Role(d.Role),
		CreatedAt: d.CreatedAt,
	}
}

// VerifyLogin returns the matching user, or no users when the username is
// unknown or the password does not match.
func (r *UserRepository) VerifyLogin(ctx context.Context, username, password string) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"username": username})
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	return matchingUsers(docs, password), nil
}

// matchingUsers keeps the accounts whose bcrypt hash accepts password.
func matchingUsers(docs []userDocument, password string) []domain.User {
	var users []domain.User
	for _, d := range docs {
		if bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(password)) == nil {
			users = append(users, d.toDomain())
		}
	}
	return users
}

// CreateUser inserts an account unless the username is taken, in which case
// created is false.
func (r *UserRepository) CreateUser(ctx context.Context, username, password string, role domain.Role) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = r.col.InsertOne(ctx, userDocument{
		Username:     username,
		PasswordHash: string(hash),
		Role:         string(role),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert user: %w", err)
	}
	return true, nil
}

// EnsureIndexes makes usernames unique.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	return nil
}
