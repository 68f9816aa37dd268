package duckdb

import (
	"context"
	"testing"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/config"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/database"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/viewbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuckDBCatalogAndViews(t *testing.T) {
	ctx := context.Background()
	db, err := database.New(ctx, config.DatabaseConfig{Dialect: "duckdb"}, nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.ExecuteSQLStatements(ctx, []string{
		"CREATE TABLE orders (id INTEGER, total INTEGER)",
		"CREATE TABLE customers (id INTEGER, name VARCHAR)",
		"INSERT INTO orders VALUES (1, 10), (2, 20)",
		"INSERT INTO customers VALUES (1, 'ana'), (2, 'ben'), (3, 'cy')",
	}))

	tables, err := db.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)

	columns, err := db.ListColumns(ctx, "customers")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "id", columns[0].Name)
	assert.Equal(t, "name", columns[1].Name)

	stmts := db.CreateViewStatements("vista", "SELECT DISTINCT total, name FROM orders CROSS JOIN customers")
	require.NoError(t, db.ExecuteSQLStatements(ctx, stmts))

	exists, err := db.ObjectExists(ctx, "vista")
	require.NoError(t, err)
	assert.True(t, exists)

	rows, err := db.QueryRows(ctx, "SELECT * FROM vista")
	require.NoError(t, err)
	assert.Equal(t, []string{"total", "name"}, rows.Columns)
	assert.Len(t, rows.Rows, 6)
}

func TestDuckDBCloudSQLUnsupported(t *testing.T) {
	_, err := duckdbHandler{}.CreateCloudSQLPool(config.DatabaseConfig{})
	assert.Error(t, err)
}

func TestDuckDBObjectExistsIgnoresCase(t *testing.T) {
	ctx := context.Background()
	db, err := database.New(ctx, config.DatabaseConfig{Dialect: "duckdb"}, nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.ExecuteSQLStatements(ctx, []string{
		"CREATE TABLE customers (id INTEGER, name VARCHAR)",
		`CREATE VIEW "Vista" AS SELECT name FROM customers`,
	}))

	exists, err := db.ObjectExists(ctx, "vista")
	require.NoError(t, err)
	assert.True(t, exists)

	name, err := viewbuilder.ResolveViewName(ctx, db, "", viewbuilder.ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, "vista_2", name)
}
