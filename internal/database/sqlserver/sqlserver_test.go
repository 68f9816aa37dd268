package sqlserver

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/database"
)

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return &database.DB{Pool: mockDB}, mock
}

func TestSQLServerCatalogQueries(t *testing.T) {
	db, mock := newMockDB(t)
	h := sqlServerHandler{}
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE IN ('BASE TABLE', 'VIEW') AND TABLE_CATALOG = DB_NAME()")).
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("Orders"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = @p1")).
		WithArgs("Orders").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE"}).AddRow("Total", "money"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_NAME = @p1")).
		WithArgs("vista").
		WillReturnRows(sqlmock.NewRows([]string{""}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_NAME = @p1")).
		WithArgs("broken").
		WillReturnError(errors.New("login failed"))

	tables, err := h.ListTables(ctx, db)
	if err != nil || len(tables) != 1 || tables[0] != "Orders" {
		t.Errorf("ListTables() = %v, %v", tables, err)
	}
	columns, err := h.ListColumns(ctx, db, "Orders")
	if err != nil || len(columns) != 1 || columns[0] != (database.ColumnInfo{Name: "Total", DataType: "money"}) {
		t.Errorf("ListColumns() = %v, %v", columns, err)
	}
	exists, err := h.ObjectExists(ctx, db, "vista")
	if err != nil || exists {
		t.Errorf("ObjectExists() = %v, %v; want false, nil", exists, err)
	}
	if _, err := h.ObjectExists(ctx, db, "broken"); err == nil {
		t.Errorf("ObjectExists() expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled mock expectations: %v", err)
	}
}

func TestSQLServerCreateViewStatements(t *testing.T) {
	got := sqlServerHandler{}.CreateViewStatements("vista", "SELECT DISTINCT Total FROM Orders")
	want := "CREATE OR ALTER VIEW vista AS SELECT DISTINCT Total FROM Orders"
	if len(got) != 1 || got[0] != want {
		t.Errorf("CreateViewStatements() = %v, want [%s]", got, want)
	}
}

func TestSQLServerRegistered(t *testing.T) {
	for _, dialect := range []string{"sqlserver", "cloudsqlsqlserver"} {
		if _, err := database.GetDialectHandler(dialect); err != nil {
			t.Errorf("dialect %s not registered: %v", dialect, err)
		}
	}
}
