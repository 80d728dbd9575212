package domain

import "strings"

// Department is one of the fulfillment teams an order is routed to.
type Department string

const (
	DepartmentFish Department = "fish"
	DepartmentPork Department = "pork"
)

// Departments lists every department in display order.
var Departments = []Department{DepartmentFish, DepartmentPork}

// departmentAliases normalises the legacy "Fish"/"Butchery" spellings.
var departmentAliases = map[string]Department{
	"fish":     DepartmentFish,
	"pork":     DepartmentPork,
	"butchery": DepartmentPork,
}

// ParseDepartment converts user input into a canonical Department.
func ParseDepartment(s string) (Department, bool) {
	d, ok := departmentAliases[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// Valid reports whether d is a canonical department value.
func (d Department) Valid() bool {
	return d == DepartmentFish || d == DepartmentPork
}

// Title returns the human-facing department name.
func (d Department) Title() string {
	switch d {
	case DepartmentFish:
		return "Fish"
	case DepartmentPork:
		return "Pork"
	default:
		return string(d)
	}
}
