// Package postgres implements the core repositories on PostgreSQL via sqlx.
package postgres

import (
	"strings"

	"github.com/appredator/backend/core"
)

// orderBy renders the ORDER BY clause, falling back to a default when no
// usable ordering was given. Ordering fields reach here straight from the
// `?ordering=` query parameter and are interpolated, not bound: anything
// not in the table's sortable column set is dropped.
func orderBy(ordering []core.DBOrdering, sortable []string, fallback string) string {
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		for _, col := range sortable {
			if ord.Field == col {
				clauses = append(clauses, ord.String())
				break
			}
		}
	}
	if len(clauses) == 0 {
		return fallback
	}
	return strings.Join(clauses, ", ")
}
