// Package pgtest connects tests to the database named by TEST_DATABASE_URL.
package pgtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/bpo-ops/ops-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// Tables in truncation order.
var Tables = []string{
	"workflow_tasks",
	"workflow_instances",
	"workflow_stages",
	"workflows",
	"processes",
	"department_users",
	"departments",
	"schedule_entries",
	"shifts",
	"employees",
	"refresh_tokens",
	"users",
}

var (
	once     sync.Once
	shared   *database.DB
	setupErr error
)

// Open returns a migrated, empty database or skips the test when TEST_DATABASE_URL is unset.
func Open(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	once.Do(func() {
		shared, setupErr = database.NewPostgreSQLDB(dsn)
		if setupErr != nil {
			return
		}
		setupErr = migrate(context.Background(), shared)
	})
	require.NoError(t, setupErr)

	Truncate(t, shared)
	return shared
}

// Truncate empties every table.
func Truncate(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()
	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	for _, table := range Tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "truncate %s", table)
	}
	require.NoError(t, tx.Commit(ctx))
}

func migrate(ctx context.Context, db *database.DB) error {
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations", "001_init.sql")
	schema, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.Exec(ctx, string(schema)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
