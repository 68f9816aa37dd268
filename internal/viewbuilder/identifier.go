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
	"regexp"
)

// MaxIdentifierLength bounds table, column and view names.
const MaxIdentifierLength = 64

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier accepts letters, digits and underscores, not starting
// with a digit, up to MaxIdentifierLength characters. kind names the role of
// the identifier in the error message ("table", "column", "view").
func ValidateIdentifier(kind, name string) error {
	if name == "" {
		return &ValidationError{Msg: fmt.Sprintf("%s name is empty", kind)}
	}
	if len(name) > MaxIdentifierLength {
		return &ValidationError{Msg: fmt.Sprintf("%s name %q exceeds %d characters", kind, name, MaxIdentifierLength)}
	}
	if !identifierPattern.MatchString(name) {
		return &ValidationError{Msg: fmt.Sprintf("%s name %q may only contain letters, digits and underscores and must not start with a digit", kind, name)}
	}
	return nil
}

// ValidateIdentifiers checks every name and rejects duplicates.
func ValidateIdentifiers(kind string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if err := ValidateIdentifier(kind, name); err != nil {
			return err
		}
		if seen[name] {
			return &ValidationError{Msg: fmt.Sprintf("%s %q selected more than once", kind, name)}
		}
		seen[name] = true
	}
	return nil
}
