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
package viewbuilder

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/config"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/database"
)

// fakeAdapter is an in-memory database.DBAdapter with call tracking.
type fakeAdapter struct {
	mu sync.Mutex

	tables   []string
	columns  map[string][]string
	existing map[string]bool

	listTablesErr  error
	listColumnsErr map[string]error
	existsErr      error
	execErr        error
	queryErr       error
	queryColumns   []string // overrides the preview header when set
	queryRows      [][]any

	listTablesCalls  int
	listColumnsCalls int
	existsCalls      int
	probed           []string
	executed         [][]string
	queries          []string
}

var _ database.DBAdapter = (*fakeAdapter)(nil)

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		columns:        map[string][]string{},
		existing:       map[string]bool{},
		listColumnsErr: map[string]error{},
	}
}

func (f *fakeAdapter) backendCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listTablesCalls + f.listColumnsCalls + f.existsCalls + len(f.executed) + len(f.queries)
}

func (f *fakeAdapter) ListTables(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listTablesCalls++
	if f.listTablesErr != nil {
		return nil, f.listTablesErr
	}
	return f.tables, nil
}

func (f *fakeAdapter) ListColumns(ctx context.Context, tableName string) ([]database.ColumnInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listColumnsCalls++
	if err := f.listColumnsErr[tableName]; err != nil {
		return nil, err
	}
	names, ok := f.columns[tableName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", database.ErrTableNotFound, tableName)
	}
	infos := make([]database.ColumnInfo, len(names))
	for i, n := range names {
		infos[i] = database.ColumnInfo{Name: n, DataType: "text"}
	}
	return infos, nil
}

func (f *fakeAdapter) ObjectExists(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls++
	f.probed = append(f.probed, name)
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[name], nil
}

func (f *fakeAdapter) CreateViewStatements(viewName string, selectSQL string) []string {
	return []string{database.StandardCreateViewStatement(viewName, selectSQL)}
}

func (f *fakeAdapter) ExecuteSQLStatements(ctx context.Context, sqlStatements []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, sqlStatements)
	if f.execErr != nil {
		return f.execErr
	}
	for _, stmt := range sqlStatements {
		if fields := strings.Fields(stmt); len(fields) > 4 && strings.HasPrefix(stmt, "CREATE OR REPLACE VIEW") {
			f.existing[fields[4]] = true
		}
	}
	return nil
}

func (f *fakeAdapter) QueryRows(ctx context.Context, query string, args ...any) (*database.RowSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	header := f.queryColumns
	if header == nil {
		header = f.lastSelectedColumns()
	}
	return &database.RowSet{Columns: header, Rows: f.queryRows}, nil
}

// lastSelectedColumns recovers the projected columns from the last executed
// CREATE statement.
func (f *fakeAdapter) lastSelectedColumns() []string {
	if len(f.executed) == 0 {
		return nil
	}
	stmts := f.executed[len(f.executed)-1]
	stmt := stmts[len(stmts)-1]
	start := strings.Index(stmt, "SELECT DISTINCT ")
	end := strings.Index(stmt, " FROM ")
	if start < 0 || end < 0 {
		return nil
	}
	return strings.Split(stmt[start+len("SELECT DISTINCT "):end], ", ")
}

func (f *fakeAdapter) Ping(ctx context.Context) error { return nil }

func (f *fakeAdapter) Close() error { return nil }

func (f *fakeAdapter) GetConfig() config.DatabaseConfig {
	return config.DatabaseConfig{Dialect: "fake"}
}
