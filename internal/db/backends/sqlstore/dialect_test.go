package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
)

func TestRebind(t *testing.T) {
	q := "SELECT * FROM posts WHERE id = ? AND title = ?"
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t, "SELECT * FROM posts WHERE id = $1 AND title = $2", Postgres.rebind(q))
}

func TestLimit(t *testing.T) {
	tests := []struct {
		dialect Dialect
		page    interfaces.Page
		clause  string
		args    []any
	}{
		{Postgres, interfaces.Page{}, "", nil},
		{Postgres, interfaces.Page{Limit: 5}, " LIMIT ?", []any{5}},
		{Postgres, interfaces.Page{Limit: 5, Offset: 10}, " LIMIT ? OFFSET ?", []any{5, 10}},
		{Postgres, interfaces.Page{Offset: 10}, " OFFSET ?", []any{10}},
		{SQLite, interfaces.Page{Offset: 10}, " LIMIT -1 OFFSET ?", []any{10}},
	}

	for _, tt := range tests {
		clause, args := tt.dialect.limit(tt.page)
		assert.Equal(t, tt.clause, clause)
		assert.Equal(t, tt.args, args)
	}
}

func TestPrepareDSN(t *testing.T) {
	assert.Equal(t, "blog.db?_foreign_keys=on", SQLite.prepareDSN("blog.db"))
	assert.Equal(t, "file:blog.db?cache=shared&_foreign_keys=on", SQLite.prepareDSN("file:blog.db?cache=shared"))
	assert.Equal(t, "blog.db?_foreign_keys=off", SQLite.prepareDSN("blog.db?_foreign_keys=off"))
	assert.Equal(t, "postgres://localhost/blog", Postgres.prepareDSN("postgres://localhost/blog"))
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("sqlite")
	assert.NoError(t, err)
	assert.Equal(t, SQLite, d)

	_, err = ParseDialect("mysql")
	assert.Error(t, err)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "fold(p.title)", SQLite.fold("p.title"))
	assert.Equal(t, "lower(p.title)", Postgres.fold("p.title"))
	assert.Equal(t, sqliteDriver, SQLite.driverName())
}
