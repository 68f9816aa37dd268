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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "orders", false},
		{"underscore prefix", "_tmp", false},
		{"digits after first", "vista_2", false},
		{"max length", strings.Repeat("a", MaxIdentifierLength), false},
		{"empty", "", true},
		{"leading digit", "2orders", true},
		{"space", "my view", true},
		{"quote", `a"b`, true},
		{"statement terminator", "v; DROP TABLE t", true},
		{"dot", "s.t", true},
		{"too long", strings.Repeat("a", MaxIdentifierLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier("view", tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestValidateIdentifiers_Duplicate(t *testing.T) {
	err := ValidateIdentifiers("table", []string{"orders", "customers", "orders"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, err.Error(), "more than once")
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("boom")
	errs := []error{
		&SchemaQueryError{Msg: "m", Err: cause},
		&NameResolutionError{Msg: "m", Err: cause},
		&ViewCreationError{Msg: "m", Err: cause},
		&ViewReadError{View: "vista", Msg: "m", Err: cause},
	}
	for _, err := range errs {
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "boom")
	}
	assert.Contains(t, (&ViewReadError{View: "vista_3", Msg: "m"}).Error(), "vista_3")
	assert.Equal(t, "validation error: bad", (&ValidationError{Msg: "bad"}).Error())
}

func TestMergeColumns(t *testing.T) {
	fake := newFakeAdapter()
	fake.columns["t1"] = []string{"a", "b"}
	fake.columns["t2"] = []string{"b", "c"}

	got, err := MergeColumns(context.Background(), fake, []string{"t1", "t2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)

	got, err = MergeColumns(context.Background(), fake, []string{"t2", "t1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, got)
}

func TestMergeColumns_Empty(t *testing.T) {
	fake := newFakeAdapter()
	got, err := MergeColumns(context.Background(), fake, nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, fake.listColumnsCalls)
}

func TestMergeColumns_Failure(t *testing.T) {
	fake := newFakeAdapter()
	fake.columns["t1"] = []string{"a"}
	fake.listColumnsErr["t2"] = errors.New("permission denied")

	_, err := MergeColumns(context.Background(), fake, []string{"t1", "t2"})

	var sErr *SchemaQueryError
	require.ErrorAs(t, err, &sErr)
	assert.Contains(t, err.Error(), "t2")
}

func TestColumnOwners(t *testing.T) {
	fake := newFakeAdapter()
	fake.columns["orders"] = []string{"id", "total"}
	fake.columns["customers"] = []string{"id", "name"}

	owners, err := ColumnOwners(context.Background(), fake, []string{"orders", "customers"})
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "customers"}, owners["id"])
	assert.Equal(t, []string{"orders"}, owners["total"])
	assert.Equal(t, []string{"customers"}, owners["name"])
}
