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

// SelectionState is the caller-owned state of one composing session.
type SelectionState struct {
	Tables   []string // selected tables, in selection order
	Columns  []string // selected columns, in selection order
	ViewName string   // requested view name; blank means the default base
}

// ToggleTable adds table to the selection, or removes it when already
// selected. Column choices are left to the caller, which re-merges.
func (s *SelectionState) ToggleTable(table string) {
	for i, t := range s.Tables {
		if t == table {
			s.Tables = append(s.Tables[:i:i], s.Tables[i+1:]...)
			return
		}
	}
	s.Tables = append(s.Tables, table)
}

// HasTable reports whether table is selected.
func (s *SelectionState) HasTable(table string) bool {
	for _, t := range s.Tables {
		if t == table {
			return true
		}
	}
	return false
}

// ViewSpec is the resolved snapshot a view is created from.
type ViewSpec struct {
	ResolvedName string
	Tables       []string
	Columns      []string
}

// Validate is the gate in front of statement construction.
func (v ViewSpec) Validate() error {
	if len(v.Tables) == 0 || len(v.Columns) == 0 {
		return &ValidationError{Msg: "select at least one table and one column"}
	}
	if err := ValidateIdentifier("view", v.ResolvedName); err != nil {
		return err
	}
	if err := ValidateIdentifiers("table", v.Tables); err != nil {
		return err
	}
	return ValidateIdentifiers("column", v.Columns)
}

// ViewResult is a created view together with its preview rows.
type ViewResult struct {
	ViewName   string
	Statements []string // DDL executed to create the view
	Columns    []string // equal to ViewSpec.Columns
	Rows       [][]any
}
