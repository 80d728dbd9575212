package ports

import (
	"context"

	"github.com/orderflow/orderflow/internal/core/domain"
)

// OrderRepository is the narrow surface over the remote orders collection.
// Every method maps to exactly one remote call and never retries.
type OrderRepository interface {
	// ListAll returns every order, newest first.
	ListAll(ctx context.Context) ([]domain.Order, error)
	// ListByDepartment returns the orders of one department, nearest pickup first.
	ListByDepartment(ctx context.Context, department domain.Department) ([]domain.Order, error)
	// FindByID returns domain.ErrOrderNotFound when no order has the given id.
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	Create(ctx context.Context, fields domain.OrderFields, creatorID string) (*domain.Order, error)
	// Update applies a partial patch. It never creates a record.
	Update(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}
