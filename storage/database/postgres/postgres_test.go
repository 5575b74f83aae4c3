package postgres

import (
	"testing"

	"github.com/appredator/backend/core"
)

func Test_orderBy(t *testing.T) {
	tests := []struct {
		name     string
		ordering []core.DBOrdering
		want     string
	}{
		{"no ordering", nil, "created_at ASC"},
		{"single column", []core.DBOrdering{{Field: "username", Ascending: true}}, "username ASC"},
		{"descending", []core.DBOrdering{{Field: "last_login", Ascending: false}}, "last_login DESC"},
		{
			"multiple columns",
			[]core.DBOrdering{{Field: "name", Ascending: true}, {Field: "created_at", Ascending: false}},
			"name ASC, created_at DESC",
		},
		{"unknown column dropped", []core.DBOrdering{{Field: "favourite_colour", Ascending: true}}, "created_at ASC"},
		{"non-sortable column dropped", []core.DBOrdering{{Field: "password_hash", Ascending: true}}, "created_at ASC"},
		{
			"sql smuggled as a field dropped",
			[]core.DBOrdering{{Field: "(SELECT password_hash FROM users LIMIT 1)", Ascending: true}},
			"created_at ASC",
		},
		{
			"known columns kept, junk dropped",
			[]core.DBOrdering{{Field: "email; DROP TABLE users", Ascending: true}, {Field: "email", Ascending: true}},
			"email ASC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := orderBy(tt.ordering, userSortable, "created_at ASC"); got != tt.want {
				t.Errorf("orderBy() = %q, want %q", got, tt.want)
			}
		})
	}
}
