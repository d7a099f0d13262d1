// Package sqlstore implements the repositories on database/sql for PostgreSQL and SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
	"github.com/vdblog/vdblog-backend/internal/db/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Options configures the connection pool
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Database implements interfaces.Database on a *sql.DB
type Database struct {
	dialect Dialect
	dsn     string
	opts    Options
	db      *sql.DB
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewDatabase creates an unconnected SQL database
func NewDatabase(dialect Dialect, dsn string, opts Options, logger *zap.SugaredLogger) *Database {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Database{
		dialect: dialect,
		dsn:     dialect.prepareDSN(dsn),
		opts:    opts,
		logger:  logger,
		// Postgres keeps microseconds; truncate so returned rows match what was stored.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Connect opens the pool and verifies it with a ping
func (d *Database) Connect(ctx context.Context) error {
	db, err := sql.Open(d.dialect.driverName(), d.dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", d.dialect, err)
	}

	if d.dialect == SQLite {
		// A single connection serializes writers and keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
	} else {
		if d.opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(d.opts.MaxOpenConns)
		}
		if d.opts.MaxIdleConns > 0 {
			db.SetMaxIdleConns(d.opts.MaxIdleConns)
		}
		if d.opts.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(d.opts.ConnMaxLifetime)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping %s: %w", d.dialect, err)
	}

	d.db = db
	d.logger.Infow("Connected to database", "dialect", d.dialect)
	return nil
}

// Disconnect closes the pool
func (d *Database) Disconnect(ctx context.Context) error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// IsHealthy pings the database
func (d *Database) IsHealthy(ctx context.Context) bool {
	if d.db == nil {
		return false
	}
	return d.db.PingContext(ctx) == nil
}

// Migrate applies every pending embedded migration
func (d *Database) Migrate(ctx context.Context) error {
	if d.db == nil {
		return interfaces.ErrDatabaseNotConnected
	}

	provider, err := migrations.NewProvider(string(d.dialect), d.db)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		d.logger.Infow("Applied migration", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// DB exposes the underlying pool
func (d *Database) DB() *sql.DB {
	return d.db
}

func (d *Database) Categories() interfaces.CategoryRepository { return &categoryRepo{d} }
func (d *Database) Posts() interfaces.PostRepository          { return &postRepo{d} }
func (d *Database) Comments() interfaces.CommentRepository    { return &commentRepo{d} }
func (d *Database) Users() interfaces.UserRepository          { return &userRepo{d} }

func (d *Database) conn() (*sql.DB, error) {
	if d.db == nil {
		return nil, interfaces.ErrDatabaseNotConnected
	}
	return d.db, nil
}

func (d *Database) queryRow(ctx context.Context, query string, args ...any) (*sql.Row, error) {
	db, err := d.conn()
	if err != nil {
		return nil, err
	}
	return db.QueryRowContext(ctx, d.dialect.rebind(query), args...), nil
}

func (d *Database) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	db, err := d.conn()
	if err != nil {
		return nil, err
	}
	return db.QueryContext(ctx, d.dialect.rebind(query), args...)
}

// deleteByID deletes one row inside a transaction; ON DELETE CASCADE removes dependents.
func (d *Database) deleteByID(ctx context.Context, table string, id int64) error {
	db, err := d.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return translate("delete "+table, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, d.dialect.rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return translate("delete "+table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translate("delete "+table, err)
	}
	if n == 0 {
		return interfaces.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return translate("delete "+table, err)
	}
	return nil
}

// translate maps driver errors onto the interfaces sentinel errors.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return interfaces.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &interfaces.DatabaseError{Op: op, Err: fmt.Errorf("%w: %s", interfaces.ErrUniqueConstraint, pgErr.ConstraintName)}
		case "23503":
			return &interfaces.DatabaseError{Op: op, Err: fmt.Errorf("%w: %s", interfaces.ErrForeignKeyConstraint, pgErr.ConstraintName)}
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &interfaces.DatabaseError{Op: op, Err: fmt.Errorf("%w: %s", interfaces.ErrUniqueConstraint, liteErr.Error())}
		case sqlite3.ErrConstraintForeignKey:
			return &interfaces.DatabaseError{Op: op, Err: fmt.Errorf("%w: %s", interfaces.ErrForeignKeyConstraint, liteErr.Error())}
		}
	}

	return &interfaces.DatabaseError{Op: op, Err: err}
}
