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

	"github.com/GoogleCloudPlatform/db-view-builder/internal/database"
)

// ViewStore is the slice of the database adapter that creates and reads views.
type ViewStore interface {
	CreateViewStatements(viewName string, selectSQL string) []string
	ExecuteSQLStatements(ctx context.Context, sqlStatements []string) error
	QueryRows(ctx context.Context, query string, args ...any) (*database.RowSet, error)
}

// PlanStatements returns the dialect DDL that creates spec.
func PlanStatements(store ViewStore, spec ViewSpec) []string {
	return store.CreateViewStatements(spec.ResolvedName, BuildSelectStatement(spec.Columns, spec.Tables))
}

// CreateAndPreview creates (or replaces) the view described by spec, commits,
// and reads every row back. A failed preview after a successful create is
// reported as *ViewReadError and the view is not dropped.
func CreateAndPreview(ctx context.Context, store ViewStore, spec ViewSpec) (*ViewResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	statements := PlanStatements(store, spec)
	if err := store.ExecuteSQLStatements(ctx, statements); err != nil {
		return nil, &ViewCreationError{Msg: fmt.Sprintf("failed to create view %s", spec.ResolvedName), Err: err}
	}

	rowSet, err := store.QueryRows(ctx, BuildPreviewStatement(spec.ResolvedName))
	if err != nil {
		return nil, &ViewReadError{View: spec.ResolvedName, Msg: "failed to read preview", Err: err}
	}
	if len(rowSet.Columns) != len(spec.Columns) {
		return nil, &ViewReadError{
			View: spec.ResolvedName,
			Msg:  fmt.Sprintf("preview returned %d columns, expected %d", len(rowSet.Columns), len(spec.Columns)),
		}
	}

	columns := make([]string, len(spec.Columns))
	copy(columns, spec.Columns)
	return &ViewResult{
		ViewName:   spec.ResolvedName,
		Statements: statements,
		Columns:    columns,
		Rows:       rowSet.Rows,
	}, nil
}
