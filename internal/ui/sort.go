// Package ui holds the small pieces of view state the pages carry between
// requests: sort order, panel visibility, carousel position, toasts and the
// cake form draft.
package ui

import "net/url"

// Direction of a sort.
type Direction string

const (
	Desc Direction = "desc"
	Asc  Direction = "asc"
)

// Sortable enquiry columns.
const (
	ColumnCreatedAt = "created_at"
	ColumnName      = "name"
	ColumnEmail     = "email"
)

var sortable = map[string]bool{
	ColumnCreatedAt: true,
	ColumnName:      true,
	ColumnEmail:     true,
}

// Sort is the active column and direction of the enquiry table.
type Sort struct {
	Column    string
	Direction Direction
}

// DefaultSort is newest enquiries first.
var DefaultSort = Sort{Column: ColumnCreatedAt, Direction: Desc}

// ParseSort reads a sort from query values, falling back to DefaultSort for
// unknown columns and to Desc for unknown directions.
func ParseSort(column, direction string) Sort {
	if !sortable[column] {
		return DefaultSort
	}
	s := Sort{Column: column, Direction: Desc}
	if Direction(direction) == Asc {
		s.Direction = Asc
	}
	return s
}

// Toggle returns the sort after clicking column's header: the active column
// flips between desc and asc, any other column starts at desc.
func (s Sort) Toggle(column string) Sort {
	if s.Column == column && s.Direction == Desc {
		return Sort{Column: column, Direction: Asc}
	}
	return Sort{Column: column, Direction: Desc}
}

// Ascending reports whether rows are ordered smallest first.
func (s Sort) Ascending() bool { return s.Direction == Asc }

// Active reports whether column is the sorted column.
func (s Sort) Active(column string) bool { return s.Column == column }

// Query encodes the sort as URL query values.
func (s Sort) Query() url.Values {
	return url.Values{"sort": {s.Column}, "dir": {string(s.Direction)}}
}
