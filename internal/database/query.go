package database

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"travel-backoffice/internal/models"
)

// where accumulates AND-ed equality clauses with positional arguments.
type where struct {
	clauses []string
	args    []any
}

func (w *where) eq(column string, value any) {
	w.add(column+" = $%d", value)
}

// add appends a clause whose single placeholder is written as $%d.
func (w *where) add(format string, value any) {
	w.args = append(w.args, value)
	w.clauses = append(w.clauses, fmt.Sprintf(format, len(w.args)))
}

// eqString adds the clause only for a non-empty value.
func (w *where) eqString(column, value string) {
	if value != "" {
		w.eq(column, value)
	}
}

// oneOf matches any of the comma separated values, e.g. ?status=new,quoted.
func (w *where) oneOf(column, value string) {
	var values []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	switch len(values) {
	case 0:
		return
	case 1:
		w.eq(column, values[0])
	default:
		w.add(column+" = ANY($%d::text[])", pq.Array(values))
	}
}

// destination matches a free-text destination column by DestinationKey.
func (w *where) destination(column, value string) {
	if value == "" {
		return
	}
	expr := fmt.Sprintf("trim(both '-' from regexp_replace(lower(%s), '[^a-z0-9]+', '-', 'g'))", column)
	w.eq(expr, models.DestinationKey(value))
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}
