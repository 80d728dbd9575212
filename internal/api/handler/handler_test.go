package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/orderflow/orderflow/internal/api/middleware"
	"github.com/orderflow/orderflow/internal/core/domain"
	"github.com/orderflow/orderflow/internal/core/ports"
	"github.com/orderflow/orderflow/internal/core/session"
)

var (
	adminUser = domain.User{ID: "u-admin", Username: "admin", Role: domain.RoleAdmin}
	fishUser  = domain.User{ID: "u-fish", Username: "fish", Role: domain.RoleFish}
)

type stubAuthService struct {
	signInFn func(ctx context.Context, username, password string) (*domain.User, error)
}

func (s *stubAuthService) SignIn(ctx context.Context, username, password string) (*domain.User, error) {
	return s.signInFn(ctx, username, password)
}

func (s *stubAuthService) SignOut(ctx context.Context, w ports.SessionWriter) error {
	return w.ClearCurrentUser(ctx)
}

type stubOrderService struct {
	listFn    func(ctx context.Context, user domain.User, in ports.ListOrdersInput) ([]domain.Order, error)
	getFn     func(ctx context.Context, user domain.User, id string) (*domain.Order, error)
	createFn  func(ctx context.Context, user domain.User, f domain.OrderFields) (*domain.Order, error)
	updateFn  func(ctx context.Context, user domain.User, id string, p domain.OrderPatch) (*domain.Order, error)
	advanceFn func(ctx context.Context, user domain.User, id string) (*domain.Order, error)
	deleteFn  func(ctx context.Context, user domain.User, id string) error
}

func (s *stubOrderService) ListOrders(ctx context.Context, user domain.User, in ports.ListOrdersInput) ([]domain.Order, error) {
	return s.listFn(ctx, user, in)
}

func (s *stubOrderService) GetOrder(ctx context.Context, user domain.User, id string) (*domain.Order, error) {
	return s.getFn(ctx, user, id)
}

func (s *stubOrderService) CreateOrder(ctx context.Context, user domain.User, f domain.OrderFields) (*domain.Order, error) {
	return s.createFn(ctx, user, f)
}

func (s *stubOrderService) UpdateOrder(ctx context.Context, user domain.User, id string, p domain.OrderPatch) (*domain.Order, error) {
	return s.updateFn(ctx, user, id, p)
}

func (s *stubOrderService) AdvanceOrder(ctx context.Context, user domain.User, id string) (*domain.Order, error) {
	return s.advanceFn(ctx, user, id)
}

func (s *stubOrderService) DeleteOrder(ctx context.Context, user domain.User, id string) error {
	return s.deleteFn(ctx, user, id)
}

// call runs h behind the session middleware with user signed in (nil for an
// anonymous request) and returns the recorder and the handler error.
func call(t *testing.T, h echo.HandlerFunc, method, target string, body io.Reader, user *domain.User, params ...string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) > 0 {
		names, values := make([]string, 0, len(params)/2), make([]string, 0, len(params)/2)
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}

	withUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if user != nil {
				middleware.SetCurrentUser(c, user)
			}
			return next(c)
		}
	}
	chain := middleware.Session(middleware.SessionConfig{
		Secret:     []byte("test"),
		CookieName: "sid",
		TTL:        time.Hour,
		Storage:    session.NewMemoryStorage(),
	})(withUser(h))

	return rec, chain(c)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	t.Fatalf("expected *echo.HTTPError, got %v", err)
	return 0
}

func sampleOrder(id string, d domain.Department, s domain.OrderStatus) domain.Order {
	return domain.Order{
		ID:           id,
		CustomerName: "Ana Gomez",
		ItemNumber:   "SKU-1",
		Quantity:     2,
		PickupDate:   "2026-11-02",
		PickupTime:   "10:30",
		Department:   d,
		Status:       s,
		CreatedAt:    time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}
}
