package sqlstore

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
	"github.com/vdblog/vdblog-backend/internal/db/migrations"
)

// Dialect selects the SQL driver and placeholder style.
type Dialect string

const (
	Postgres Dialect = migrations.Postgres
	SQLite   Dialect = migrations.SQLite
)

// ParseDialect validates a DB_TYPE value.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(s); d {
	case Postgres, SQLite:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported sql dialect: %s", s)
	}
}

// sqliteDriver is go-sqlite3 with a Unicode-aware fold() registered on every
// connection. SQLite's built-in lower() only folds ASCII.
const sqliteDriver = "sqlite3_blog"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", strings.ToLower, true)
		},
	})
}

func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return sqliteDriver
}

// fold renders a case-folded form of expr, matching query.ContainsFold.
func (d Dialect) fold(expr string) string {
	if d == SQLite {
		return "fold(" + expr + ")"
	}
	return "lower(" + expr + ")"
}

// prepareDSN applies settings the store relies on.
func (d Dialect) prepareDSN(dsn string) string {
	if d != SQLite || strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// rebind rewrites ? placeholders into the dialect's form.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// limit renders the LIMIT/OFFSET clause for page.
func (d Dialect) limit(page interfaces.Page) (string, []any) {
	switch {
	case page.Limit > 0 && page.Offset > 0:
		return " LIMIT ? OFFSET ?", []any{page.Limit, page.Offset}
	case page.Limit > 0:
		return " LIMIT ?", []any{page.Limit}
	case page.Offset > 0:
		if d == SQLite {
			return " LIMIT -1 OFFSET ?", []any{page.Offset}
		}
		return " OFFSET ?", []any{page.Offset}
	}
	return "", nil
}
