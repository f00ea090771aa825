// Package dbtest provides an in-memory SQLite bun.DB with the application
// schema for package tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	"github.com/redmonkez12/recipe-api/internal/database"
)

// New opens a fresh in-memory database, creates every table and closes it
// when the test ends.
func New(t *testing.T) *bun.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	database.RegisterModels(db)

	ctx := context.Background()
	for _, model := range database.Models() {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}
