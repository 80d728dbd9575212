package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/orderflow/orderflow/internal/core/domain"
)

var errRemote = errors.New("remote unavailable")

var (
	adminUser = domain.User{ID: "u-admin", Username: "admin", Role: domain.RoleAdmin}
	fishUser  = domain.User{ID: "u-fish", Username: "fish", Role: domain.RoleFish}
	porkUser  = domain.User{ID: "u-pork", Username: "pork", Role: domain.RolePork}
)

type stubVerifier struct {
	users []domain.User
	err   error
	calls int
}

func (v *stubVerifier) VerifyLogin(_ context.Context, _, _ string) ([]domain.User, error) {
	v.calls++
	return v.users, v.err
}

type stubSession struct {
	cleared bool
	err     error
}

func (s *stubSession) ClearCurrentUser(_ context.Context) error {
	if s.err != nil {
		return s.err
	}
	s.cleared = true
	return nil
}

// stubOrderRepo is an in-memory OrderRepository that counts remote calls.
type stubOrderRepo struct {
	orders       map[string]domain.Order
	seq          int
	failWrites   bool
	statusCalls  int
	updateCalls  int
	lastStatusTo domain.OrderStatus
}

func newStubOrderRepo(orders ...domain.Order) *stubOrderRepo {
	r := &stubOrderRepo{orders: make(map[string]domain.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *stubOrderRepo) ListAll(_ context.Context) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubOrderRepo) ListByDepartment(ctx context.Context, d domain.Department) ([]domain.Order, error) {
	all, _ := r.ListAll(ctx)
	out := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if o.Department == d {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (r *stubOrderRepo) Create(_ context.Context, f domain.OrderFields, creatorID string) (*domain.Order, error) {
	if r.failWrites {
		return nil, fmt.Errorf("%w: insert rejected", domain.ErrPersistence)
	}
	r.seq++
	now := time.Now()
	o := domain.Order{
		ID:           fmt.Sprintf("o-%d", r.seq),
		CustomerName: f.CustomerName,
		ItemNumber:   f.ItemNumber,
		Quantity:     f.Quantity,
		Details:      f.Details,
		PickupDate:   f.PickupDate,
		PickupTime:   f.PickupTime,
		Department:   f.Department,
		Status:       f.Status,
		CreatedBy:    creatorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.orders[o.ID] = o
	return &o, nil
}

func (r *stubOrderRepo) Update(_ context.Context, id string, p domain.OrderPatch) (*domain.Order, error) {
	r.updateCalls++
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if r.failWrites {
		return nil, fmt.Errorf("%w: update rejected", domain.ErrPersistence)
	}
	if p.CustomerName != nil {
		o.CustomerName = *p.CustomerName
	}
	if p.Quantity != nil {
		o.Quantity = *p.Quantity
	}
	if p.Department != nil {
		o.Department = *p.Department
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	r.orders[id] = o
	return &o, nil
}

func (r *stubOrderRepo) UpdateStatus(ctx context.Context, id string, s domain.OrderStatus) (*domain.Order, error) {
	r.statusCalls++
	r.lastStatusTo = s
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if r.failWrites {
		return nil, fmt.Errorf("%w: update rejected", domain.ErrPersistence)
	}
	o.Status = s
	r.orders[id] = o
	return &o, nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

func sampleOrder(id string, d domain.Department, s domain.OrderStatus) domain.Order {
	return domain.Order{
		ID:           id,
		CustomerName: "Ana Gomez",
		ItemNumber:   "SKU-" + id,
		Quantity:     2,
		PickupDate:   "2026-11-02",
		PickupTime:   "10:30",
		Department:   d,
		Status:       s,
		CreatedAt:    time.Now(),
	}
}
