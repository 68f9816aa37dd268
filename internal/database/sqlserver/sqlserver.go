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
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/config"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/database"
	mssql "github.com/denisenkom/go-mssqldb"
)

// sqlServerHandler struct implements database.DialectHandler for SQL Server.
type sqlServerHandler struct{}

var _ database.DialectHandler = (*sqlServerHandler)(nil)

const defaultPort = 1433

// instanceDialer satisfies mssql.Dialer by dialing one Cloud SQL instance.
type instanceDialer struct {
	dialer   *cloudsqlconn.Dialer
	instance string
}

func (d *instanceDialer) DialContext(ctx context.Context, _, _ string) (net.Conn, error) {
	return d.dialer.Dial(ctx, d.instance)
}

func connectionURL(cfg config.DatabaseConfig, host string, port int) *url.URL {
	return &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		RawQuery: url.Values{"database": {cfg.DBName}}.Encode(),
	}
}

// CreateCloudSQLPool builds a connector whose dialer goes through the Cloud
// SQL connector; the host in the URL is never dialed.
func (h sqlServerHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	d, err := database.NewCloudSQLDialer(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	connector, err := mssql.NewConnector(connectionURL(cfg, "localhost", defaultPort).String())
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("mssql.NewConnector: %w", err)
	}
	connector.Dialer = &instanceDialer{dialer: d, instance: cfg.CloudSQLInstanceConnectionName}
	return sql.OpenDB(connector), nil
}

func (h sqlServerHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	pool, err := sql.Open("sqlserver", connectionURL(cfg, cfg.Host, port).String())
	if err != nil {
		return nil, fmt.Errorf("sql.Open (standard sqlserver): %w", err)
	}
	return pool, nil
}

// ListTables for SQL Server
func (h sqlServerHandler) ListTables(ctx context.Context, db *database.DB) ([]string, error) {
	query := "SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE IN ('BASE TABLE', 'VIEW') AND TABLE_CATALOG = DB_NAME() ORDER BY TABLE_NAME"

	tables, err := database.QueryStrings(ctx, db, query)
	if err != nil {
		return nil, fmt.Errorf("error querying tables: %w", err)
	}
	return tables, nil
}

// ListColumns for SQL Server
func (h sqlServerHandler) ListColumns(ctx context.Context, db *database.DB, tableName string) ([]database.ColumnInfo, error) {
	query := "SELECT COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = @p1 AND TABLE_CATALOG = DB_NAME() ORDER BY ORDINAL_POSITION"

	columns, err := database.QueryColumns(ctx, db, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}
	return columns, nil
}

// ObjectExists for SQL Server
func (h sqlServerHandler) ObjectExists(ctx context.Context, db *database.DB, name string) (bool, error) {
	query := "SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_NAME = @p1 AND TABLE_CATALOG = DB_NAME()"

	exists, err := database.QueryExists(ctx, db, query, name)
	if err != nil {
		return false, fmt.Errorf("error checking existence of %s: %w", name, err)
	}
	return exists, nil
}

// CreateViewStatements for SQL Server, which spells the replace form CREATE OR ALTER.
func (h sqlServerHandler) CreateViewStatements(viewName string, selectSQL string) []string {
	return []string{fmt.Sprintf("CREATE OR ALTER VIEW %s AS %s", viewName, selectSQL)}
}

func init() {
	database.RegisterDialectHandler("sqlserver", sqlServerHandler{})
	database.RegisterDialectHandler("cloudsqlsqlserver", sqlServerHandler{})
}
