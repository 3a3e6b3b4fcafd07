package database

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder assembles a parameterised WHERE clause. Column names are
// written verbatim and must never come from user input; values always
// travel as positional arguments.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder returns an empty builder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends "column = $n". Empty strings are skipped so optional filters
// can be added unconditionally.
func (wb *WhereBuilder) Add(column, value string) *WhereBuilder {
	if value == "" {
		return wb
	}
	return wb.add(column+" = $%d", value)
}

// AddTimestampRange bounds column by [start, end]. A zero time leaves that
// side open.
func (wb *WhereBuilder) AddTimestampRange(column string, start, end time.Time) *WhereBuilder {
	if !start.IsZero() {
		wb.add(column+" >= $%d", start)
	}
	if !end.IsZero() {
		wb.add(column+" <= $%d", end)
	}
	return wb
}

func (wb *WhereBuilder) add(format string, value any) *WhereBuilder {
	wb.conditions = append(wb.conditions, fmt.Sprintf(format, wb.argIndex))
	wb.args = append(wb.args, value)
	wb.argIndex++
	return wb
}

// NextArgIndex returns the placeholder number for the next argument, for
// appending LIMIT/OFFSET after the clause.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// Build returns the clause with a leading " WHERE ", or "" when no
// condition was added, and the arguments in placeholder order.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}
