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
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/config"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/database"
)

// postgresHandler struct implements database.DialectHandler for PostgreSQL.
type postgresHandler struct{}

var _ database.DialectHandler = (*postgresHandler)(nil)

// CreateCloudSQLPool opens a pgx pool whose connections are dialed through
// the Cloud SQL connector.
func (h postgresHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	d, err := database.NewCloudSQLDialer(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	pgCfg, err := pgx.ParseConfig("")
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("pgx.ParseConfig: %w", err)
	}
	pgCfg.User = cfg.User
	pgCfg.Password = cfg.Password
	pgCfg.Database = cfg.DBName
	pgCfg.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return d.Dial(ctx, cfg.CloudSQLInstanceConnectionName)
	}

	pool, err := sql.Open("pgx", stdlib.RegisterConnConfig(pgCfg))
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("sql.Open (cloudsql postgres): %w", err)
	}
	return pool, nil
}

// CreateStandardPool opens a lib/pq pool from a URL DSN.
func (h postgresHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.DBName,
	}
	if cfg.SSLMode != "" {
		dsn.RawQuery = url.Values{"sslmode": {cfg.SSLMode}}.Encode()
	}
	pool, err := sql.Open("postgres", dsn.String())
	if err != nil {
		return nil, fmt.Errorf("sql.Open (standard postgres): %w", err)
	}
	return pool, nil
}

// ListTables for PostgreSQL
func (h postgresHandler) ListTables(ctx context.Context, db *database.DB) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_name;`

	tables, err := database.QueryStrings(ctx, db, query)
	if err != nil {
		return nil, fmt.Errorf("error querying tables: %w", err)
	}
	return tables, nil
}

// ListColumns for PostgreSQL
func (h postgresHandler) ListColumns(ctx context.Context, db *database.DB, tableName string) ([]database.ColumnInfo, error) {
	query := `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		AND table_name = $1
		ORDER BY ordinal_position;`

	columns, err := database.QueryColumns(ctx, db, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}
	return columns, nil
}

// ObjectExists for PostgreSQL. Unquoted identifiers fold to lower case, so the
// probe compares against the folded name the view would actually get.
func (h postgresHandler) ObjectExists(ctx context.Context, db *database.DB, name string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		AND table_name = lower($1);`

	exists, err := database.QueryExists(ctx, db, query, name)
	if err != nil {
		return false, fmt.Errorf("error checking existence of %s: %w", name, err)
	}
	return exists, nil
}

func (h postgresHandler) CreateViewStatements(viewName string, selectSQL string) []string {
	return []string{database.StandardCreateViewStatement(viewName, selectSQL)}
}

func init() {
	database.RegisterDialectHandler("postgres", postgresHandler{})
	database.RegisterDialectHandler("cloudsqlpostgres", postgresHandler{})
}
