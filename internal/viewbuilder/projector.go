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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// NullDisplay is how SQL NULL is shown in a projected table.
const NullDisplay = "NULL"

// Table is the tabular model handed to presentation layers. Header order is
// the selected column order and every row is aligned with it.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Project pairs rows with columns.
func Project(columns []string, rows [][]any) (*Table, error) {
	table := &Table{
		Header: append([]string(nil), columns...),
		Rows:   make([][]string, 0, len(rows)),
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i+1, len(row), len(columns))
		}
		formatted := make([]string, len(row))
		for j, v := range row {
			formatted[j] = FormatValue(v)
		}
		table.Rows = append(table.Rows, formatted)
	}
	return table, nil
}

// ProjectResult projects a ViewResult.
func ProjectResult(result *ViewResult) (*Table, error) {
	return Project(result.Columns, result.Rows)
}

// FormatValue renders a scanned driver value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return NullDisplay
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

// WriteCSV writes the header and rows as CSV.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
