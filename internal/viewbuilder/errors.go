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
)

// ValidationError reports an empty selection or a disallowed identifier.
// It is raised before any statement reaches the backend.
type ValidationError struct {
	Msg string
	Err error
}

// SchemaQueryError reports a failed catalog query. Selections are untouched
// and the caller may retry the same introspection.
type SchemaQueryError struct {
	Msg string
	Err error
}

// NameResolutionError aborts the current view creation attempt.
type NameResolutionError struct {
	Msg string
	Err error
}

// ViewCreationError means the create statement failed: no view was created
// and no preview was attempted.
type ViewCreationError struct {
	Msg string
	Err error
}

// ViewReadError means the view exists in the schema but its preview could
// not be read. The view is left in place.
type ViewReadError struct {
	View string
	Msg  string
	Err  error
}

func (e *ValidationError) Error() string {
	return formatError("validation error", e.Msg, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *SchemaQueryError) Error() string {
	return formatError("schema query error", e.Msg, e.Err)
}

func (e *SchemaQueryError) Unwrap() error {
	return e.Err
}

func (e *NameResolutionError) Error() string {
	return formatError("name resolution error", e.Msg, e.Err)
}

func (e *NameResolutionError) Unwrap() error {
	return e.Err
}

func (e *ViewCreationError) Error() string {
	return formatError("view creation error", e.Msg, e.Err)
}

func (e *ViewCreationError) Unwrap() error {
	return e.Err
}

func (e *ViewReadError) Error() string {
	return formatError(fmt.Sprintf("view read error (view %s was created)", e.View), e.Msg, e.Err)
}

func (e *ViewReadError) Unwrap() error {
	return e.Err
}

func formatError(kind, msg string, err error) string {
	if err == nil {
		return fmt.Sprintf("%s: %s", kind, msg)
	}
	return fmt.Sprintf("%s: %s: %v", kind, msg, err)
}
