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
	"fmt"
	"strings"
)

// TableClause renders the FROM clause. A single table is emitted verbatim;
// several tables are combined in the given order with CROSS JOIN and no
// join predicate.
func TableClause(tables []string) string {
	if len(tables) == 1 {
		return tables[0]
	}
	return strings.Join(tables, " CROSS JOIN ")
}

// BuildSelectStatement renders the deduplicating SELECT that defines a view.
// DISTINCT removes identical output rows only; it does not limit the size of
// a cross join of unrelated tables.
func BuildSelectStatement(columns, tables []string) string {
	return fmt.Sprintf("SELECT DISTINCT %s FROM %s", strings.Join(columns, ", "), TableClause(tables))
}

// BuildCreateViewStatement renders the CREATE OR REPLACE VIEW statement.
// Inputs are not validated here; see ViewSpec.Validate.
func BuildCreateViewStatement(resolvedName string, columns, tables []string) string {
	return fmt.Sprintf("CREATE OR REPLACE VIEW %s AS %s", resolvedName, BuildSelectStatement(columns, tables))
}

// BuildPreviewStatement renders the full-row fetch against a view.
func BuildPreviewStatement(viewName string) string {
	return fmt.Sprintf("SELECT * FROM %s", viewName)
}
