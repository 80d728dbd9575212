package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/orderflow/orderflow/internal/core/domain"
)

const orderColumns = `id::text, customer_name, item_number, qty, COALESCE(details, ''),
	to_char(day_pickup, 'YYYY-MM-DD'), to_char(time_pickup, 'HH24:MI'),
	department, status, COALESCE(created_by::text, ''), created_at, updated_at`

type OrderRepository struct {
	db PgxIface
}

func NewOrderRepository(db PgxIface) *OrderRepository {
	return &OrderRepository{db: db}
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, persistenceError("list orders", err)
	}
	return collectOrders(rows)
}

// ListByDepartment returns one department's orders by pickup date and time.
func (r *OrderRepository) ListByDepartment(ctx context.Context, department domain.Department) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE department = $1 ORDER BY day_pickup ASC, time_pickup ASC`,
		string(department))
	if err != nil {
		return nil, persistenceError("list department orders", err)
	}
	return collectOrders(rows)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, oid)
	return scanSingle(row, "find order")
}

// Create inserts an order. An empty creatorID stores no creator; any other
// value must be a user UUID.
func (r *OrderRepository) Create(ctx context.Context, fields domain.OrderFields, creatorID string) (*domain.Order, error) {
	var createdBy *uuid.UUID
	if creatorID != "" {
		cid, err := uuid.Parse(creatorID)
		if err != nil {
			return nil, fmt.Errorf("create order: %w: invalid creator id %q", domain.ErrPersistence, creatorID)
		}
		createdBy = &cid
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	status := fields.Status
	if status == "" {
		status = domain.StatusNew
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO orders (customer_name, item_number, qty, details, day_pickup, time_pickup, department, status, created_by)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5::date, $6::time, $7, $8, $9)
		 RETURNING `+orderColumns,
		fields.CustomerName, fields.ItemNumber, fields.Quantity, fields.Details,
		fields.PickupDate, fields.PickupTime, string(fields.Department), string(status), createdBy)

	order, err := scanOrder(row)
	if err != nil {
		return nil, persistenceError("create order", err)
	}
	return order, nil
}

// Update applies the non-nil fields of patch. A missing row is reported as
// domain.ErrOrderNotFound; nothing is inserted.
func (r *OrderRepository) Update(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}

	sets, args := updateClauses(patch)
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}
	args = append(args, oid)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := fmt.Sprintf(`UPDATE orders SET %s, updated_at = now() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), orderColumns)
	return scanSingle(r.db.QueryRow(ctx, query, args...), "update order")
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	return r.Update(ctx, id, domain.StatusPatch(status))
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, oid)
	if err != nil {
		return persistenceError("delete order", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func updateClauses(p domain.OrderPatch) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column, cast string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d%s", column, len(args), cast))
	}

	if p.CustomerName != nil {
		add("customer_name", "", strings.TrimSpace(*p.CustomerName))
	}
	if p.ItemNumber != nil {
		add("item_number", "", strings.TrimSpace(*p.ItemNumber))
	}
	if p.Quantity != nil {
		add("qty", "", *p.Quantity)
	}
	if p.Details != nil {
		args = append(args, strings.TrimSpace(*p.Details))
		sets = append(sets, fmt.Sprintf("details = NULLIF($%d, '')", len(args)))
	}
	if p.PickupDate != nil {
		add("day_pickup", "::date", *p.PickupDate)
	}
	if p.PickupTime != nil {
		add("time_pickup", "::time", *p.PickupTime)
	}
	if p.Department != nil {
		add("department", "", string(*p.Department))
	}
	if p.Status != nil {
		add("status", "", string(*p.Status))
	}
	return sets, args
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, persistenceError("scan order", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("iterate orders", err)
	}
	return orders, nil
}

func scanSingle(row pgx.Row, op string) (*domain.Order, error) {
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, persistenceError(op, err)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                  domain.Order
		department, status string
	)
	err := row.Scan(
		&o.ID,
		&o.CustomerName,
		&o.ItemNumber,
		&o.Quantity,
		&o.Details,
		&o.PickupDate,
		&o.PickupTime,
		&department,
		&status,
		&o.CreatedBy,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Department = domain.Department(department)
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// persistenceError wraps a store failure. Constraint violations keep the
// server message so the form can show it.
func persistenceError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w: %s", op, domain.ErrPersistence, pgErr.Message)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrPersistence, err)
}
