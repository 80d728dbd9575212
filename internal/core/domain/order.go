package domain

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus represents the lifecycle stage of an order.
type OrderStatus string

const (
	StatusNew       OrderStatus = "new"
	StatusInProcess OrderStatus = "in process"
	StatusComplete  OrderStatus = "complete"
)

// Statuses lists every status in lifecycle order.
var Statuses = []OrderStatus{StatusNew, StatusInProcess, StatusComplete}

type transition struct {
	next  OrderStatus
	label string
}

// transitions defines the forward-only state machine. StatusComplete has no
// entry: it is terminal.
var transitions = map[OrderStatus]transition{
	StatusNew:       {next: StatusInProcess, label: "Accept Order"},
	StatusInProcess: {next: StatusComplete, label: "Mark Complete"},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProcess, StatusComplete:
		return true
	}
	return false
}

// NextStatus returns the status an order moves to from s. The boolean is
// false for the terminal status and for unknown values.
func (s OrderStatus) NextStatus() (OrderStatus, bool) {
	t, ok := transitions[s]
	return t.next, ok
}

// PreviousStatus returns the status an order in s was advanced from.
func (s OrderStatus) PreviousStatus() (OrderStatus, bool) {
	for from, t := range transitions {
		if t.next == s {
			return from, true
		}
	}
	return "", false
}

// ActionLabel returns the button label for advancing an order out of s.
func (s OrderStatus) ActionLabel() (string, bool) {
	t, ok := transitions[s]
	return t.label, ok
}

// Title returns the human-facing status name.
func (s OrderStatus) Title() string {
	switch s {
	case StatusNew:
		return "New"
	case StatusInProcess:
		return "In Process"
	case StatusComplete:
		return "Complete"
	default:
		return string(s)
	}
}

const (
	PickupDateLayout = "2006-01-02"
	PickupTimeLayout = "15:04"
)

// Order is the core aggregate root.
type Order struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customer_name"`
	ItemNumber   string      `json:"item_number"`
	Quantity     int         `json:"qty"`
	Details      string      `json:"details,omitempty"`
	PickupDate   string      `json:"day_pickup"`
	PickupTime   string      `json:"time_pickup"`
	Department   Department  `json:"department"`
	Status       OrderStatus `json:"status"`
	CreatedBy    string      `json:"created_by,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// OrderFields is the payload of a new order. An empty Status defaults to
// StatusNew.
type OrderFields struct {
	CustomerName string
	ItemNumber   string
	Quantity     int
	Details      string
	PickupDate   string
	PickupTime   string
	Department   Department
	Status       OrderStatus
}

// Normalize trims text fields and applies the status default.
func (f OrderFields) Normalize() OrderFields {
	f.CustomerName = strings.TrimSpace(f.CustomerName)
	f.ItemNumber = strings.TrimSpace(f.ItemNumber)
	f.Details = strings.TrimSpace(f.Details)
	f.PickupDate = strings.TrimSpace(f.PickupDate)
	f.PickupTime = strings.TrimSpace(f.PickupTime)
	if f.Status == "" {
		f.Status = StatusNew
	}
	return f
}

// Validate checks the order invariants.
func (f OrderFields) Validate() error {
	switch {
	case f.CustomerName == "":
		return fmt.Errorf("%w: customer name is required", ErrInvalidOrder)
	case f.ItemNumber == "":
		return fmt.Errorf("%w: item number is required", ErrInvalidOrder)
	case f.Quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidOrder)
	case !f.Department.Valid():
		return fmt.Errorf("%w: unknown department %q", ErrInvalidOrder, f.Department)
	case !f.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidOrder, f.Status)
	}
	if err := validatePickup(f.PickupDate, f.PickupTime); err != nil {
		return err
	}
	return nil
}

// OrderPatch is a partial update; nil fields are left untouched.
type OrderPatch struct {
	CustomerName *string
	ItemNumber   *string
	Quantity     *int
	Details      *string
	PickupDate   *string
	PickupTime   *string
	Department   *Department
	Status       *OrderStatus
}

// IsEmpty reports whether the patch changes nothing.
func (p OrderPatch) IsEmpty() bool {
	return p.CustomerName == nil && p.ItemNumber == nil && p.Quantity == nil &&
		p.Details == nil && p.PickupDate == nil && p.PickupTime == nil &&
		p.Department == nil && p.Status == nil
}

// Validate checks every field the patch sets.
func (p OrderPatch) Validate() error {
	if p.CustomerName != nil && strings.TrimSpace(*p.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidOrder)
	}
	if p.ItemNumber != nil && strings.TrimSpace(*p.ItemNumber) == "" {
		return fmt.Errorf("%w: item number is required", ErrInvalidOrder)
	}
	if p.Quantity != nil && *p.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidOrder)
	}
	if p.Department != nil && !p.Department.Valid() {
		return fmt.Errorf("%w: unknown department %q", ErrInvalidOrder, *p.Department)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidOrder, *p.Status)
	}
	if p.PickupDate != nil {
		if _, err := time.Parse(PickupDateLayout, *p.PickupDate); err != nil {
			return fmt.Errorf("%w: pickup date must be YYYY-MM-DD", ErrInvalidOrder)
		}
	}
	if p.PickupTime != nil {
		if _, err := time.Parse(PickupTimeLayout, *p.PickupTime); err != nil {
			return fmt.Errorf("%w: pickup time must be HH:MM", ErrInvalidOrder)
		}
	}
	return nil
}

// StatusPatch builds a patch restricted to the status field.
func StatusPatch(s OrderStatus) OrderPatch {
	return OrderPatch{Status: &s}
}

func validatePickup(date, clock string) error {
	if date == "" {
		return fmt.Errorf("%w: pickup date is required", ErrInvalidOrder)
	}
	if clock == "" {
		return fmt.Errorf("%w: pickup time is required", ErrInvalidOrder)
	}
	if _, err := time.Parse(PickupDateLayout, date); err != nil {
		return fmt.Errorf("%w: pickup date must be YYYY-MM-DD", ErrInvalidOrder)
	}
	if _, err := time.Parse(PickupTimeLayout, clock); err != nil {
		return fmt.Errorf("%w: pickup time must be HH:MM", ErrInvalidOrder)
	}
	return nil
}
