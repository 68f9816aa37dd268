package database

import (
	"context"
	"fmt"
)

// StandardCreateViewStatement renders the CREATE OR REPLACE VIEW form shared
// by MySQL, PostgreSQL and DuckDB.
func StandardCreateViewStatement(viewName, selectSQL string) string {
	return fmt.Sprintf("CREATE OR REPLACE VIEW %s AS %s", viewName, selectSQL)
}

// QueryStrings runs a catalog query returning a single text column.
func QueryStrings(ctx context.Context, db *DB, query string, args ...any) ([]string, error) {
	rows, err := db.Pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("error scanning catalog row: %w", err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog rows: %w", err)
	}
	return values, nil
}

// QueryColumns runs a catalog query returning (column name, data type) rows.
func QueryColumns(ctx context.Context, db *DB, query string, args ...any) ([]ColumnInfo, error) {
	rows, err := db.Pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var colInfo ColumnInfo
		if err := rows.Scan(&colInfo.Name, &colInfo.DataType); err != nil {
			return nil, fmt.Errorf("error scanning column name and data type: %w", err)
		}
		columns = append(columns, colInfo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column rows: %w", err)
	}
	return columns, nil
}

// QueryExists runs a COUNT(*) catalog query and reports whether it is non-zero.
func QueryExists(ctx context.Context, db *DB, query string, args ...any) (bool, error) {
	var count int64
	if err := db.Pool.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
