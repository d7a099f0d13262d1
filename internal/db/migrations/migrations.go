// Package migrations embeds the goose SQL migrations for every supported dialect.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedded embed.FS

// Dialect names match the DB_TYPE configuration values.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// FS returns the migration files for dialect.
func FS(dialect string) (fs.FS, error) {
	if _, err := gooseDialect(dialect); err != nil {
		return nil, err
	}
	return fs.Sub(embedded, dialect)
}

// NewProvider returns a goose provider running the embedded migrations for dialect against db.
func NewProvider(dialect string, db *sql.DB, opts ...goose.ProviderOption) (*goose.Provider, error) {
	d, err := gooseDialect(dialect)
	if err != nil {
		return nil, err
	}
	fsys, err := FS(dialect)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(d, db, fsys, opts...)
}

func gooseDialect(dialect string) (goose.Dialect, error) {
	switch dialect {
	case Postgres:
		return goose.DialectPostgres, nil
	case SQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("no migrations for dialect %q", dialect)
	}
}
