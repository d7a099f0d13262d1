package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdblog/vdblog-backend/internal/db/dbtest"
	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
)

func newSQLite(t *testing.T) interfaces.Database {
	t.Helper()
	database, err := NewDatabase(Config{
		Type: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "blog.db"),
	}, nil)
	require.NoError(t, err)
	require.NoError(t, ConnectAndMigrate(context.Background(), database))
	return database
}

func newMemory(t *testing.T) interfaces.Database {
	t.Helper()
	database := NewInMemoryDatabase()
	require.NoError(t, ConnectAndMigrate(context.Background(), database))
	return database
}

func TestInMemoryDatabase(t *testing.T) {
	dbtest.RunConformanceTests(t, newMemory)
}

func TestSQLiteDatabase(t *testing.T) {
	dbtest.RunConformanceTests(t, newSQLite)
}

func TestNewDatabase(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default is memory", Config{}, false},
		{"memory", Config{Type: "memory"}, false},
		{"sqlite", Config{Type: "sqlite", DSN: "file::memory:"}, false},
		{"postgres without dsn", Config{Type: "postgres"}, true},
		{"unknown", Config{Type: "oracle", DSN: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database, err := NewDatabase(tt.config, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, database)
		})
	}
}

func TestMigrateRequiresConnection(t *testing.T) {
	database := NewInMemoryDatabase()
	assert.ErrorIs(t, database.Migrate(context.Background()), interfaces.ErrDatabaseNotConnected)
	assert.False(t, database.IsHealthy(context.Background()))
}

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	database := newSQLite(t)
	defer database.Disconnect(context.Background())

	assert.NoError(t, database.Migrate(context.Background()))
}

func TestSeedFixtures(t *testing.T) {
	for name, factory := range map[string]dbtest.DatabaseFactory{"memory": newMemory, "sqlite": newSQLite} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			database := factory(t)
			defer database.Disconnect(ctx)

			author := &entities.User{Username: "admin", PasswordHash: "x", IsActive: true, IsStaff: true}
			require.NoError(t, database.Users().Create(ctx, author))
			require.NoError(t, SeedFixtures(ctx, database, author.ID))

			categories, err := database.Categories().Count(ctx)
			require.NoError(t, err)
			assert.EqualValues(t, len(CategoryFixtures), categories)

			published, err := database.Posts().Count(ctx, interfaces.PostQuery{PublishedOnly: true})
			require.NoError(t, err)
			assert.EqualValues(t, 3, published)

			approved, err := database.Comments().Count(ctx, interfaces.CommentQuery{ApprovedOnly: true})
			require.NoError(t, err)
			assert.EqualValues(t, 2, approved)
		})
	}
}
