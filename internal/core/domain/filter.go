package domain

import "strings"

// FilterAll disables a status or department filter.
const FilterAll = "all"

// OrderFilter combines free-text search with optional equality filters.
// Empty Status and Department behave like FilterAll.
type OrderFilter struct {
	SearchTerm string
	Status     string
	Department string
}

// Matches reports whether o passes every active filter.
func (f OrderFilter) Matches(o Order) bool {
	if term := strings.ToLower(f.SearchTerm); term != "" {
		if !containsFold(o.CustomerName, term) &&
			!containsFold(o.ItemNumber, term) &&
			!containsFold(o.Details, term) {
			return false
		}
	}
	if active(f.Status) && string(o.Status) != f.Status {
		return false
	}
	if active(f.Department) && string(o.Department) != f.Department {
		return false
	}
	return true
}

// IsZero reports whether f lets every order through.
func (f OrderFilter) IsZero() bool {
	return f.SearchTerm == "" && !active(f.Status) && !active(f.Department)
}

// DepartmentFilter maps a department spelling such as "Butchery" to its
// canonical value. Empty, FilterAll and unknown values pass through.
func DepartmentFilter(s string) string {
	if d, ok := ParseDepartment(s); ok {
		return string(d)
	}
	return s
}

// FilterOrders returns the orders matching f, preserving input order. The
// input slice is never modified.
func FilterOrders(orders []Order, f OrderFilter) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	return out
}

// OrderStats summarises a list of orders for the dashboard.
type OrderStats struct {
	Total     int
	New       int
	InProcess int
	Complete  int
	Fish      int
	Pork      int
}

// SummarizeOrders counts orders by status and department.
func SummarizeOrders(orders []Order) OrderStats {
	s := OrderStats{Total: len(orders)}
	for _, o := range orders {
		switch o.Status {
		case StatusNew:
			s.New++
		case StatusInProcess:
			s.InProcess++
		case StatusComplete:
			s.Complete++
		}
		switch o.Department {
		case DepartmentFish:
			s.Fish++
		case DepartmentPork:
			s.Pork++
		}
	}
	return s
}

func active(v string) bool {
	return v != "" && v != FilterAll
}

// containsFold expects term to be lower-cased already.
func containsFold(s, term string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), term)
}
