package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orderflow/orderflow/internal/core/domain"
	"github.com/orderflow/orderflow/internal/core/ports"
)

// OrderService applies the authorization rules to repository calls.
type OrderService struct {
	repo   ports.OrderRepository
	logger zerolog.Logger
}

func NewOrderService(repo ports.OrderRepository, logger zerolog.Logger) *OrderService {
	return &OrderService{repo: repo, logger: logger}
}

// ListOrders returns the filtered department list, or the aggregate list
// for admins when no department is given. Staff cannot filter across
// departments, so their department filter is ignored.
func (s *OrderService) ListOrders(ctx context.Context, user domain.User, input ports.ListOrdersInput) ([]domain.Order, error) {
	var (
		orders []domain.Order
		err    error
	)

	filter := input.Filter
	if input.Department == "" {
		if !user.IsAdmin() {
			return nil, domain.ErrForbidden
		}
		orders, err = s.repo.ListAll(ctx)
	} else {
		if !domain.CanAccessDepartment(user, input.Department) {
			return nil, domain.ErrForbidden
		}
		filter.Department = domain.FilterAll
		orders, err = s.repo.ListByDepartment(ctx, input.Department)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return domain.FilterOrders(orders, filter), nil
}

// GetOrder returns one order the user is allowed to see.
func (s *OrderService) GetOrder(ctx context.Context, user domain.User, id string) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !domain.CanAccessDepartment(user, order.Department) {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// CreateOrder validates the payload and stores it with the user as creator.
func (s *OrderService) CreateOrder(ctx context.Context, user domain.User, fields domain.OrderFields) (*domain.Order, error) {
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	if !domain.CanAccessDepartment(user, fields.Department) {
		return nil, domain.ErrForbidden
	}

	order, err := s.repo.Create(ctx, fields, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("department", string(fields.Department)).Msg("failed to create order")
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("department", string(order.Department)).
		Str("created_by", user.Username).
		Msg("order created")
	return order, nil
}

// UpdateOrder applies a partial edit. Moving an order to another department
// requires access to both departments.
func (s *OrderService) UpdateOrder(ctx context.Context, user domain.User, id string, patch domain.OrderPatch) (*domain.Order, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	current, err := s.GetOrder(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if patch.Department != nil && !domain.CanAccessDepartment(user, *patch.Department) {
		return nil, domain.ErrForbidden
	}
	if patch.IsEmpty() {
		return current, nil
	}

	order, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	s.logger.Info().Str("order_id", id).Str("updated_by", user.Username).Msg("order updated")
	return order, nil
}

// AdvanceOrder moves an order one step along its lifecycle with a single
// status update.
func (s *OrderService) AdvanceOrder(ctx context.Context, user domain.User, id string) (*domain.Order, error) {
	current, err := s.GetOrder(ctx, user, id)
	if err != nil {
		return nil, err
	}

	next, ok := current.Status.NextStatus()
	if !ok {
		return nil, fmt.Errorf("advance order: %w (%s is terminal)", domain.ErrInvalidTransition, current.Status)
	}

	order, err := s.repo.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, fmt.Errorf("advance order: %w", err)
	}

	s.logger.Info().
		Str("order_id", id).
		Str("from", string(current.Status)).
		Str("to", string(next)).
		Str("by", user.Username).
		Msg("order advanced")
	return order, nil
}

// DeleteOrder removes an order the user is allowed to manage.
func (s *OrderService) DeleteOrder(ctx context.Context, user domain.User, id string) error {
	if _, err := s.GetOrder(ctx, user, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	s.logger.Info().Str("order_id", id).Str("deleted_by", user.Username).Msg("order deleted")
	return nil
}
