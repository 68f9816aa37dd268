package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/config"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/logging"
	"go.uber.org/zap"
)

// DBAdapter defines the database operations needed by the view builder.
type DBAdapter interface {
	ListTables(ctx context.Context) ([]string, error)
	ListColumns(ctx context.Context, tableName string) ([]ColumnInfo, error)
	ObjectExists(ctx context.Context, name string) (bool, error)
	CreateViewStatements(viewName string, selectSQL string) []string
	ExecuteSQLStatements(ctx context.Context, sqlStatements []string) error
	QueryRows(ctx context.Context, query string, args ...any) (*RowSet, error)
	Ping(ctx context.Context) error
	Close() error
	GetConfig() config.DatabaseConfig
}

var _ DBAdapter = (*DB)(nil)

// ErrTableNotFound is returned by ListColumns when the backend reports no columns.
var ErrTableNotFound = errors.New("table does not exist")

// DB holds the session connection and dialect handler.
type DB struct {
	Pool    *sql.DB
	Handler DialectHandler
	Config  config.DatabaseConfig
	Logger  *zap.SugaredLogger
}

// ColumnInfo holds basic information about a database column.
type ColumnInfo struct {
	Name     string
	DataType string
}

// RowSet is a fully fetched query result.
type RowSet struct {
	Columns []string
	Rows    [][]any
}

// DialectHandler encapsulates everything that differs between backends:
// pool creation, catalog queries and the DDL form used to replace a view.
type DialectHandler interface {
	CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error)
	CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error)
	ListTables(ctx context.Context, db *DB) ([]string, error)
	ListColumns(ctx context.Context, db *DB, tableName string) ([]ColumnInfo, error)
	ObjectExists(ctx context.Context, db *DB, name string) (bool, error)
	CreateViewStatements(viewName string, selectSQL string) []string
}

var (
	dialectHandlers = make(map[string]DialectHandler)
	mu              sync.RWMutex
)

func RegisterDialectHandler(dialect string, handler DialectHandler) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := dialectHandlers[dialect]; exists {
		zap.S().Warnf("Dialect handler for '%s' is being overwritten.", dialect)
	}
	dialectHandlers[dialect] = handler
}

func GetDialectHandler(dialect string) (DialectHandler, error) {
	mu.RLock()
	defer mu.RUnlock()
	handler, ok := dialectHandlers[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported database dialect: %s", dialect)
	}
	return handler, nil
}

// New opens the session connection. The pool is capped at a single open
// connection: the session reuses one connection serially.
func New(ctx context.Context, cfg config.DatabaseConfig, logger *zap.SugaredLogger) (*DB, error) {
	logger = logging.OrNop(logger)
	handler, err := GetDialectHandler(cfg.Dialect)
	if err != nil {
		return nil, &ConnectionError{Dialect: cfg.Dialect, Msg: "no dialect handler", Err: err}
	}

	var pool *sql.DB
	if strings.HasPrefix(cfg.Dialect, "cloudsql") {
		pool, err = handler.CreateCloudSQLPool(cfg)
	} else {
		pool, err = handler.CreateStandardPool(cfg)
	}
	if err != nil {
		return nil, &ConnectionError{Dialect: cfg.Dialect, Msg: "failed to create database pool", Err: err}
	}
	pool.SetMaxOpenConns(1)

	db := &DB{
		Pool:    pool,
		Handler: handler,
		Config:  cfg,
		Logger:  logger,
	}
	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, &ConnectionError{Dialect: cfg.Dialect, Msg: "ping failed", Err: err}
	}
	logger.Debugf("Connected to %s database %q", cfg.Dialect, cfg.DBName)
	return db, nil
}

func (db *DB) GetConfig() config.DatabaseConfig {
	return db.Config
}

// withTimeout bounds a single backend call by the configured query timeout.
func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.Config.QueryTimeout > 0 {
		return context.WithTimeout(ctx, db.Config.QueryTimeout)
	}
	return context.WithCancel(ctx)
}

func (db *DB) log() *zap.SugaredLogger {
	return logging.OrNop(db.Logger)
}

func (db *DB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database connection pool is not initialized")
	}
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	return db.Pool.PingContext(ctx)
}

func (db *DB) Close() error {
	if db.Pool != nil {
		return db.Pool.Close()
	}
	db.log().Warn("Attempted to close a nil database connection pool.")
	return nil
}

func (db *DB) ListTables(ctx context.Context) ([]string, error) {
	if db.Handler == nil {
		return nil, fmt.Errorf("dialect handler not initialized")
	}
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	return db.Handler.ListTables(ctx, db)
}

// ListColumns returns the columns of tableName in physical order. A table the
// backend reports no columns for is treated as missing.
func (db *DB) ListColumns(ctx context.Context, tableName string) ([]ColumnInfo, error) {
	if db.Handler == nil {
		return nil, fmt.Errorf("dialect handler not initialized")
	}
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	columns, err := db.Handler.ListColumns(ctx, db, tableName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}
	return columns, nil
}

func (db *DB) ObjectExists(ctx context.Context, name string) (bool, error) {
	if db.Handler == nil {
		return false, fmt.Errorf("dialect handler not initialized")
	}
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	return db.Handler.ObjectExists(ctx, db, name)
}

func (db *DB) CreateViewStatements(viewName string, selectSQL string) []string {
	if db.Handler == nil {
		return []string{StandardCreateViewStatement(viewName, selectSQL)}
	}
	return db.Handler.CreateViewStatements(viewName, selectSQL)
}

// ExecuteSQLStatements runs the statements in one transaction and commits.
func (db *DB) ExecuteSQLStatements(ctx context.Context, sqlStatements []string) error {
	if db.Pool == nil {
		return fmt.Errorf("database connection pool is not initialized")
	}
	if len(sqlStatements) == 0 {
		db.log().Info("No SQL statements provided to ExecuteSQLStatements.")
		return nil
	}
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	tx, err := db.Pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range sqlStatements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue
		}
		db.log().Debugf("Executing statement #%d: %s", i+1, trimmedStmt)
		if _, err = tx.ExecContext(ctx, trimmedStmt); err != nil {
			db.log().Errorf("Failed executing statement #%d: %s: %v", i+1, trimmedStmt, err)
			return fmt.Errorf("failed executing statement #%d: %w", i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// QueryRows runs query and fetches every row.
func (db *DB) QueryRows(ctx context.Context, query string, args ...any) (*RowSet, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database connection pool is not initialized")
	}
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.Pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error reading result columns: %w", err)
	}

	result := &RowSet{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning result row: %w", err)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return result, nil
}
