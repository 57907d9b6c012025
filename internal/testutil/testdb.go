package testutil

import (
	"database/sql"
	"testing"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/db"
)

// NewTestDB opens a fully migrated in-memory allocation database that is
// closed via t.Cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
	})
	return conn
}

// NewTestUoW wraps the test database in a UnitOfWork.
func NewTestUoW(conn *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(conn)
}
