/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/config"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/database"
	_ "github.com/mattn/go-sqlite3"
)

// sqliteHandler implements database.DialectHandler for SQLite files.
type sqliteHandler struct{}

var _ database.DialectHandler = (*sqliteHandler)(nil)

func (h sqliteHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	return nil, fmt.Errorf("cloud SQL is not available for sqlite")
}

// CreateStandardPool opens the database file named by DBName; an empty name
// opens a private in-memory database.
func (h sqliteHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.DBName
	if dsn == "" {
		dsn = ":memory:"
	}
	dbPool, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open (sqlite): %w", err)
	}
	return dbPool, nil
}

func (h sqliteHandler) ListTables(ctx context.Context, db *database.DB) ([]string, error) {
	query := "SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name"

	tables, err := database.QueryStrings(ctx, db, query)
	if err != nil {
		return nil, fmt.Errorf("error querying tables: %w", err)
	}
	return tables, nil
}

func (h sqliteHandler) ListColumns(ctx context.Context, db *database.DB, tableName string) ([]database.ColumnInfo, error) {
	query := "SELECT name, type FROM pragma_table_info(?) ORDER BY cid"

	columns, err := database.QueryColumns(ctx, db, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}
	return columns, nil
}

// ObjectExists for SQLite. Identifiers are case-insensitive, so Vista
// occupies vista.
func (h sqliteHandler) ObjectExists(ctx context.Context, db *database.DB, name string) (bool, error) {
	query := "SELECT COUNT(*) FROM sqlite_master WHERE type IN ('table', 'view') AND name = ? COLLATE NOCASE"

	exists, err := database.QueryExists(ctx, db, query, name)
	if err != nil {
		return false, fmt.Errorf("error checking existence of %s: %w", name, err)
	}
	return exists, nil
}

// CreateViewStatements for SQLite. There is no CREATE OR REPLACE VIEW, so the
// old definition is dropped and recreated inside the same transaction.
func (h sqliteHandler) CreateViewStatements(viewName string, selectSQL string) []string {
	return []string{
		fmt.Sprintf("DROP VIEW IF EXISTS %s", viewName),
		fmt.Sprintf("CREATE VIEW %s AS %s", viewName, selectSQL),
	}
}

func init() {
	database.RegisterDialectHandler("sqlite", sqliteHandler{})
}
