package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
)

// table holds the rows of one schema keyed by primary key.
type table struct {
	schema *entities.Schema
	rows   map[int64]any
	seq    int64
}

func (t *table) nextID() int64 {
	t.seq++
	return t.seq
}

// Database implements the Database interface for in-memory storage.
// A single lock guards every table, so each repository call is one unit of work.
type Database struct {
	mu        sync.RWMutex
	tables    map[string]*table
	connected bool
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// NewDatabase creates a new in-memory database
func NewDatabase(logger *zap.SugaredLogger) *Database {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Database{
		tables: make(map[string]*table),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Connect establishes a connection to the database
func (db *Database) Connect(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.connected = true
	db.logger.Debug("Connected to in-memory database")
	return nil
}

// Disconnect closes the database connection and drops all data
func (db *Database) Disconnect(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.connected = false
	db.tables = make(map[string]*table)
	db.logger.Debug("Disconnected from in-memory database")
	return nil
}

// IsHealthy checks if the database connection is healthy
func (db *Database) IsHealthy(ctx context.Context) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.connected
}

// Migrate creates a table for every known schema
func (db *Database) Migrate(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !db.connected {
		return interfaces.ErrDatabaseNotConnected
	}

	for _, schema := range entities.All() {
		if _, exists := db.tables[schema.TableName]; !exists {
			db.tables[schema.TableName] = &table{schema: schema, rows: make(map[int64]any)}
			db.logger.Debugw("Created in-memory table", "table", schema.TableName)
		}
	}
	return nil
}

func (db *Database) Categories() interfaces.CategoryRepository { return &categoryRepo{db: db} }
func (db *Database) Posts() interfaces.PostRepository          { return &postRepo{db: db} }
func (db *Database) Comments() interfaces.CommentRepository    { return &commentRepo{db: db} }
func (db *Database) Users() interfaces.UserRepository          { return &userRepo{db: db} }

// Clear removes all data from all tables (for testing)
func (db *Database) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, t := range db.tables {
		t.rows = make(map[int64]any)
		t.seq = 0
	}
}

// table returns the named table. Callers must hold the lock.
func (db *Database) table(name string) (*table, error) {
	if !db.connected {
		return nil, interfaces.ErrDatabaseNotConnected
	}
	t, ok := db.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %s does not exist", name)
	}
	return t, nil
}

// reference returns the value of a foreign key column on a stored row.
func reference(row any, field string) (int64, bool) {
	switch r := row.(type) {
	case entities.Post:
		switch field {
		case "category_id":
			return r.CategoryID, true
		case "author_id":
			return r.AuthorID, true
		}
	case entities.Comment:
		if field == "post_id" {
			return r.PostID, true
		}
	}
	return 0, false
}

// checkReferences verifies every foreign key on row points to an existing parent.
// Callers must hold the lock.
func (db *Database) checkReferences(schema *entities.Schema, row any) error {
	for name, field := range schema.Fields {
		if field.ForeignKey == nil {
			continue
		}
		id, ok := reference(row, name)
		if !ok {
			continue
		}
		parent, err := db.table(field.ForeignKey.Table)
		if err != nil {
			return err
		}
		if _, exists := parent.rows[id]; !exists {
			return fmt.Errorf("%w: %s.%s=%d", interfaces.ErrForeignKeyConstraint, schema.TableName, name, id)
		}
	}
	return nil
}

// deleteCascade removes a row and, recursively, every row whose cascading
// foreign key points at it. Callers must hold the write lock.
func (db *Database) deleteCascade(tableName string, id int64) error {
	t, err := db.table(tableName)
	if err != nil {
		return err
	}
	if _, exists := t.rows[id]; !exists {
		return interfaces.ErrNotFound
	}

	for _, dep := range entities.Dependents(tableName, entities.All()) {
		child, err := db.table(dep.TableName)
		if err != nil {
			return err
		}
		for name, field := range dep.Fields {
			if field.ForeignKey == nil || field.ForeignKey.Table != tableName {
				continue
			}
			for childID, row := range child.rows {
				if ref, ok := reference(row, name); ok && ref == id {
					if err := db.deleteCascade(dep.TableName, childID); err != nil {
						return err
					}
				}
			}
		}
	}

	delete(t.rows, id)
	return nil
}
