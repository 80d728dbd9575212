package postgres

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/orderflow/orderflow/internal/core/domain"
)

const validID = "0b6c1a52-8f40-4d33-9d87-4a0f7f1c2b11"

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// valueRow scans canned column values into the destinations.
type valueRow []any

func (r valueRow) Scan(dest ...any) error { return scanValues([]any(r), dest) }

func scanValues(src, dest []any) error {
	if len(src) != len(dest) {
		return fmt.Errorf("scan: %d columns into %d destinations", len(src), len(dest))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		v := reflect.ValueOf(src[i])
		if !v.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan column %d: cannot assign %s to %s", i, v.Type(), target.Type())
		}
		target.Set(v)
	}
	return nil
}

// fakeRows iterates canned rows. Only the methods the repositories call do
// anything useful.
type fakeRows struct {
	data   [][]any
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.data[r.pos-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error { return scanValues(r.data[r.pos-1], dest) }

// fakeDB answers every call with canned results and records the last query.
type fakeDB struct {
	row       []any
	rowErr    error
	rows      *fakeRows
	queryErr  error
	execTag   pgconn.CommandTag
	execErr   error
	lastSQL   string
	lastArgs  []any
	callCount int
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.callCount++
	f.lastSQL, f.lastArgs = sql, args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.rows == nil {
		f.rows = &fakeRows{}
	}
	return f.rows, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.callCount++
	f.lastSQL, f.lastArgs = sql, args
	if f.row != nil {
		return valueRow(f.row)
	}
	return errRow{err: f.rowErr}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.callCount++
	f.lastSQL, f.lastArgs = sql, args
	return f.execTag, f.execErr
}

func (f *fakeDB) Ping(context.Context) error { return nil }
func (f *fakeDB) Close()                     {}

var rowTime = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

// orderRow lists the columns in orderColumns order.
func orderRow(id, customer string, department domain.Department, status domain.OrderStatus, date, clock string) []any {
	return []any{id, customer, "SKU-1", 2, "", date, clock, string(department), string(status), validID, rowTime, rowTime}
}

func sampleFields() domain.OrderFields {
	return domain.OrderFields{
		CustomerName: "Ana",
		ItemNumber:   "SKU-1",
		Quantity:     1,
		PickupDate:   "2026-11-02",
		PickupTime:   "10:00",
		Department:   domain.DepartmentFish,
	}
}

func TestOrderRepository_MalformedIDIsNotFound(t *testing.T) {
	db := &fakeDB{}
	repo := NewOrderRepository(db)
	ctx := context.Background()
	qty := 2

	if _, err := repo.FindByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("FindByID: expected ErrOrderNotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, "not-a-uuid", domain.OrderPatch{Quantity: &qty}); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("Update: expected ErrOrderNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("Delete: expected ErrOrderNotFound, got %v", err)
	}
	if db.callCount != 0 {
		t.Fatalf("expected no remote call, got %d", db.callCount)
	}
}

func TestOrderRepository_MissingRowIsNotFound(t *testing.T) {
	db := &fakeDB{rowErr: pgx.ErrNoRows, execTag: pgconn.NewCommandTag("DELETE 0")}
	repo := NewOrderRepository(db)
	ctx := context.Background()

	if _, err := repo.FindByID(ctx, validID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("FindByID: expected ErrOrderNotFound, got %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, validID, domain.StatusComplete); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("UpdateStatus: expected ErrOrderNotFound, got %v", err)
	}
	if !strings.HasPrefix(db.lastSQL, "UPDATE orders SET status = $1") {
		t.Fatalf("expected a status-only update, got %q", db.lastSQL)
	}
	if err := repo.Delete(ctx, validID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("Delete: expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_StoreRejectionIsPersistenceError(t *testing.T) {
	db := &fakeDB{rowErr: &pgconn.PgError{Code: "23514", Message: "violates check constraint"}}
	repo := NewOrderRepository(db)

	_, err := repo.Create(context.Background(), sampleFields(), validID)
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if !strings.Contains(err.Error(), "violates check constraint") {
		t.Fatalf("expected server message in error, got %v", err)
	}
	if got := db.lastArgs[7]; got != string(domain.StatusNew) {
		t.Fatalf("expected default status new, got %v", got)
	}
}

func TestOrderRepository_ListAllNewestFirst(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{data: [][]any{
		orderRow("o2", "Bob", domain.DepartmentPork, domain.StatusComplete, "2026-11-03", "10:00"),
		orderRow("o1", "Ana", domain.DepartmentFish, domain.StatusNew, "2026-11-02", "09:00"),
	}}}
	repo := NewOrderRepository(db)

	orders, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if !strings.HasSuffix(db.lastSQL, "FROM orders ORDER BY created_at DESC") {
		t.Fatalf("expected newest-first ordering, got %q", db.lastSQL)
	}
	if len(orders) != 2 || orders[0].ID != "o2" || orders[1].ID != "o1" {
		t.Fatalf("rows must keep the store order, got %+v", orders)
	}
	o := orders[0]
	if o.Department != domain.DepartmentPork || o.Status != domain.StatusComplete || o.Quantity != 2 ||
		o.PickupDate != "2026-11-03" || o.CreatedBy != validID || !o.CreatedAt.Equal(rowTime) {
		t.Fatalf("unexpected scanned order: %+v", o)
	}
	if !db.rows.closed {
		t.Fatalf("rows must be closed")
	}
}

func TestOrderRepository_ListByDepartmentByPickup(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{data: [][]any{
		orderRow("o1", "Ana", domain.DepartmentPork, domain.StatusNew, "2026-11-02", "09:00"),
	}}}
	repo := NewOrderRepository(db)

	orders, err := repo.ListByDepartment(context.Background(), domain.DepartmentPork)
	if err != nil {
		t.Fatalf("ListByDepartment: %v", err)
	}
	if !strings.HasSuffix(db.lastSQL, "WHERE department = $1 ORDER BY day_pickup ASC, time_pickup ASC") {
		t.Fatalf("expected pickup ordering, got %q", db.lastSQL)
	}
	if db.lastArgs[0] != "pork" {
		t.Fatalf("expected the canonical department argument, got %v", db.lastArgs)
	}
	if len(orders) != 1 || orders[0].CustomerName != "Ana" {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestOrderRepository_ListEmptyIsNotNil(t *testing.T) {
	repo := NewOrderRepository(&fakeDB{})

	orders, err := repo.ListAll(context.Background())
	if err != nil || orders == nil || len(orders) != 0 {
		t.Fatalf("expected an empty list, got %v (err %v)", orders, err)
	}
}

func TestOrderRepository_ListFailuresArePersistenceErrors(t *testing.T) {
	ctx := context.Background()
	cases := map[string]*fakeDB{
		"query":   {queryErr: errors.New("connection refused")},
		"scan":    {rows: &fakeRows{data: [][]any{{"o1", "Ana"}}}},
		"iterate": {rows: &fakeRows{err: errors.New("conn reset")}},
	}
	for name, db := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewOrderRepository(db).ListAll(ctx); !errors.Is(err, domain.ErrPersistence) {
				t.Fatalf("expected ErrPersistence, got %v", err)
			}
		})
	}
}

func TestOrderRepository_CreateReturnsStoredRow(t *testing.T) {
	db := &fakeDB{row: orderRow("o9", "Ana", domain.DepartmentFish, domain.StatusNew, "2026-11-02", "10:00")}
	repo := NewOrderRepository(db)

	order, err := repo.Create(context.Background(), sampleFields(), validID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if order.ID != "o9" || order.Department != domain.DepartmentFish || order.CreatedBy != validID {
		t.Fatalf("unexpected order: %+v", order)
	}
	if !strings.HasPrefix(db.lastSQL, "INSERT INTO orders") {
		t.Fatalf("expected an insert, got %q", db.lastSQL)
	}
	if by, ok := db.lastArgs[8].(*uuid.UUID); !ok || by == nil || by.String() != validID {
		t.Fatalf("expected creator uuid argument, got %#v", db.lastArgs[8])
	}
}

func TestOrderRepository_CreateWithoutCreator(t *testing.T) {
	db := &fakeDB{row: orderRow("o9", "Ana", domain.DepartmentFish, domain.StatusNew, "2026-11-02", "10:00")}

	if _, err := NewOrderRepository(db).Create(context.Background(), sampleFields(), ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if by, ok := db.lastArgs[8].(*uuid.UUID); !ok || by != nil {
		t.Fatalf("expected a NULL creator, got %#v", db.lastArgs[8])
	}
}

func TestOrderRepository_CreateRejectsMalformedCreator(t *testing.T) {
	db := &fakeDB{}

	_, err := NewOrderRepository(db).Create(context.Background(), sampleFields(), "not-a-uuid")
	if !errors.Is(err, domain.ErrPersistence) || !strings.Contains(err.Error(), `invalid creator id "not-a-uuid"`) {
		t.Fatalf("expected invalid creator error, got %v", err)
	}
	if db.callCount != 0 {
		t.Fatalf("nothing should reach the store, got %d calls", db.callCount)
	}
}

func TestUpdateClauses(t *testing.T) {
	name := "  Bob "
	date := "2026-12-01"
	details := ""
	sets, args := updateClauses(domain.OrderPatch{CustomerName: &name, PickupDate: &date, Details: &details})

	want := []string{"customer_name = $1", "details = NULLIF($2, '')", "day_pickup = $3::date"}
	if strings.Join(sets, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected clauses: %v", sets)
	}
	if args[0] != "Bob" || args[2] != date {
		t.Fatalf("unexpected args: %v", args)
	}

	if sets, _ := updateClauses(domain.OrderPatch{}); len(sets) != 0 {
		t.Fatalf("expected no clauses for empty patch, got %v", sets)
	}
}
