package ports

import (
	"context"

	"github.com/orderflow/orderflow/internal/core/domain"
)

// ListOrdersInput selects a department list or, when Department is empty,
// the admin-only aggregate list.
type ListOrdersInput struct {
	Department domain.Department
	Filter     domain.OrderFilter
}

// OrderService defines use-case operations for orders on behalf of an
// explicit, already authenticated user.
type OrderService interface {
	ListOrders(ctx context.Context, user domain.User, input ListOrdersInput) ([]domain.Order, error)
	GetOrder(ctx context.Context, user domain.User, id string) (*domain.Order, error)
	CreateOrder(ctx context.Context, user domain.User, fields domain.OrderFields) (*domain.Order, error)
	UpdateOrder(ctx context.Context, user domain.User, id string, patch domain.OrderPatch) (*domain.Order, error)
	AdvanceOrder(ctx context.Context, user domain.User, id string) (*domain.Order, error)
	DeleteOrder(ctx context.Context, user domain.User, id string) error
}
