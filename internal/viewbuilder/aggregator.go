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

// ColumnLister lists the columns of one table in physical order.
type ColumnLister interface {
	ListColumns(ctx context.Context, tableName string) ([]database.ColumnInfo, error)
}

// MergeColumns returns the columns of tables, in table order then column
// order, keeping only the first occurrence of each name.
func MergeColumns(ctx context.Context, lister ColumnLister, tables []string) ([]string, error) {
	merged, _, err := collectColumns(ctx, lister, tables)
	return merged, err
}

// ColumnOwners maps each column name to the selected tables that have it,
// in table order.
func ColumnOwners(ctx context.Context, lister ColumnLister, tables []string) (map[string][]string, error) {
	_, owners, err := collectColumns(ctx, lister, tables)
	return owners, err
}

func collectColumns(ctx context.Context, lister ColumnLister, tables []string) ([]string, map[string][]string, error) {
	merged := []string{}
	owners := make(map[string][]string)
	for _, table := range tables {
		columns, err := lister.ListColumns(ctx, table)
		if err != nil {
			return nil, nil, &SchemaQueryError{Msg: fmt.Sprintf("failed to list columns of %s", table), Err: err}
		}
		for _, col := range columns {
			if _, seen := owners[col.Name]; !seen {
				merged = append(merged, col.Name)
			}
			owners[col.Name] = append(owners[col.Name], table)
		}
	}
	return merged, owners, nil
}
