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
)

// DefaultViewName is the base used when no name is requested.
const DefaultViewName = "vista"

// DefaultMaxNameAttempts caps the candidate sequence.
const DefaultMaxNameAttempts = 1000

// ObjectChecker probes the schema for a table or view with an exact name.
type ObjectChecker interface {
	ObjectExists(ctx context.Context, name string) (bool, error)
}

// ResolveOptions configures ResolveViewName. Zero values select the defaults.
type ResolveOptions struct {
	DefaultName string
	MaxAttempts int
}

func (o ResolveOptions) withDefaults() ResolveOptions {
	if strings.TrimSpace(o.DefaultName) == "" {
		o.DefaultName = DefaultViewName
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxNameAttempts
	}
	return o
}

// BaseName trims requested and substitutes the default base when blank.
func BaseName(requested string, opts ResolveOptions) string {
	base := strings.TrimSpace(requested)
	if base == "" {
		return opts.withDefaults().DefaultName
	}
	return base
}

// NameCandidate returns the attempt-th candidate for base: base itself for
// attempt 1, then base_2, base_3, ...
func NameCandidate(base string, attempt int) string {
	if attempt <= 1 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, attempt)
}

// ResolveViewName returns the first candidate for requested that no existing
// table or view uses. A failed probe aborts resolution.
//
// The probe and the later CREATE OR REPLACE are not atomic: another session
// may claim the same name in between.
func ResolveViewName(ctx context.Context, checker ObjectChecker, requested string, opts ResolveOptions) (string, error) {
	opts = opts.withDefaults()
	base := BaseName(requested, opts)
	if err := ValidateIdentifier("view", base); err != nil {
		return "", err
	}

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		candidate := NameCandidate(base, attempt)
		if err := ValidateIdentifier("view", candidate); err != nil {
			return "", &NameResolutionError{Msg: fmt.Sprintf("candidate %s is not a valid name", candidate), Err: err}
		}
		exists, err := checker.ObjectExists(ctx, candidate)
		if err != nil {
			return "", &NameResolutionError{Msg: fmt.Sprintf("failed to check whether %s exists", candidate), Err: err}
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", &NameResolutionError{Msg: fmt.Sprintf("no free name for %s after %d attempts", base, opts.MaxAttempts)}
}
