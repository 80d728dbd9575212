package metrics

import (
	"errors"

	"github.com/orderflow/orderflow/internal/core/domain"
)

// Reason classifies an order error for OrderErrorsTotal.
func Reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrInvalidOrder), errors.Is(err, domain.ErrInvalidTransition):
		return "invalid"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	default:
		return "internal"
	}
}

// RecordOrderError increments OrderErrorsTotal for operation.
func RecordOrderError(operation string, err error) {
	OrderErrorsTotal.WithLabelValues(operation, Reason(err)).Inc()
}

// RecordTransition increments OrderTransitionsTotal.
func RecordTransition(from, to domain.OrderStatus) {
	OrderTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
}

// RecordSignIn increments SignInTotal.
func RecordSignIn(ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	SignInTotal.WithLabelValues(result).Inc()
}
