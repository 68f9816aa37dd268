package duckdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/config"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/database"
	_ "github.com/duckdb/duckdb-go/v2"
)

type duckdbHandler struct{}

var _ database.DialectHandler = (*duckdbHandler)(nil)

func (h duckdbHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	return nil, fmt.Errorf("cloud SQL is not available for duckdb")
}

// CreateStandardPool opens the DuckDB file named by DBName, or an in-memory
// database when it is empty.
func (h duckdbHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	dbPool, err := sql.Open("duckdb", cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("sql.Open (duckdb): %w", err)
	}
	return dbPool, nil
}

func (h duckdbHandler) ListTables(ctx context.Context, db *database.DB) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_name`

	tables, err := database.QueryStrings(ctx, db, query)
	if err != nil {
		return nil, fmt.Errorf("error querying tables: %w", err)
	}
	return tables, nil
}

func (h duckdbHandler) ListColumns(ctx context.Context, db *database.DB, tableName string) ([]database.ColumnInfo, error) {
	query := `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		AND table_name = ?
		ORDER BY ordinal_position`

	columns, err := database.QueryColumns(ctx, db, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}
	return columns, nil
}

// ObjectExists for DuckDB, compared case-insensitively like its identifiers.
func (h duckdbHandler) ObjectExists(ctx context.Context, db *database.DB, name string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		AND lower(table_name) = lower(?)`

	exists, err := database.QueryExists(ctx, db, query, name)
	if err != nil {
		return false, fmt.Errorf("error checking existence of %s: %w", name, err)
	}
	return exists, nil
}

func (h duckdbHandler) CreateViewStatements(viewName string, selectSQL string) []string {
	return []string{database.StandardCreateViewStatement(viewName, selectSQL)}
}

func init() {
	database.RegisterDialectHandler("duckdb", duckdbHandler{})
}
