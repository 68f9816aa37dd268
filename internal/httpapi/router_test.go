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
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/viewbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	tables     []string
	columns    map[string][]string
	result     *viewbuilder.ViewResult
	err        error
	gotRequest ViewRequest
}

func (f *fakeService) RequestTables(ctx context.Context) ([]string, error) {
	return f.tables, f.err
}

func (f *fakeService) RequestColumnsFor(ctx context.Context, tables []string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for _, t := range tables {
		out = append(out, f.columns[t]...)
	}
	return out, nil
}

func (f *fakeService) SubmitViewRequest(ctx context.Context, name string, tables, columns []string) (*viewbuilder.ViewResult, error) {
	f.gotRequest = ViewRequest{Name: name, Tables: tables, Columns: columns}
	return f.result, f.err
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListTables(t *testing.T) {
	svc := &fakeService{tables: []string{"customers", "orders"}}
	rec := do(t, NewRouter(svc, nil), http.MethodGet, "/tables", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"tables":["customers","orders"]}`, rec.Body.String())
}

func TestListColumns(t *testing.T) {
	svc := &fakeService{columns: map[string][]string{"orders": {"id", "total"}, "customers": {"name"}}}
	rec := do(t, NewRouter(svc, nil), http.MethodGet, "/columns?tables=orders,customers", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"columns":["id","total","name"]}`, rec.Body.String())
}

func TestCreateView(t *testing.T) {
	svc := &fakeService{result: &viewbuilder.ViewResult{
		ViewName:   "vista",
		Statements: []string{"CREATE OR REPLACE VIEW vista AS SELECT DISTINCT total, name FROM orders CROSS JOIN customers"},
		Columns:    []string{"total", "name"},
		Rows:       [][]any{{int64(10), "ana"}, {int64(20), nil}},
	}}
	rec := do(t, NewRouter(svc, nil), http.MethodPost, "/views",
		`{"name":"","tables":["orders","customers"],"columns":["total","name"]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp ViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "vista", resp.View)
	assert.Equal(t, []string{"total", "name"}, resp.Header)
	assert.Equal(t, [][]string{{"10", "ana"}, {"20", "NULL"}}, resp.Rows)
	assert.Equal(t, []string{"orders", "customers"}, svc.gotRequest.Tables)
}

func TestCreateViewMalformedBody(t *testing.T) {
	svc := &fakeService{}
	for _, body := range []string{`{"tables": `, `{"tables":["t"],"extra":1}`} {
		rec := do(t, NewRouter(svc, nil), http.MethodPost, "/views", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), `"kind":"validation"`)
	}
}

func TestErrorMapping(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantView   string
	}{
		{"validation", &viewbuilder.ValidationError{Msg: "select at least one table and one column"}, http.StatusBadRequest, "validation", ""},
		{"name resolution", &viewbuilder.NameResolutionError{Msg: "exhausted", Err: cause}, http.StatusConflict, "name_resolution", ""},
		{"schema query", &viewbuilder.SchemaQueryError{Msg: "list", Err: cause}, http.StatusBadGateway, "schema_query", ""},
		{"view creation", &viewbuilder.ViewCreationError{Msg: "create", Err: cause}, http.StatusBadGateway, "view_creation", ""},
		{"view read", &viewbuilder.ViewReadError{View: "vista_4", Msg: "read", Err: cause}, http.StatusInternalServerError, "view_read", "vista_4"},
		{"name resolution wrapping validation", &viewbuilder.NameResolutionError{Msg: "candidate is not a valid name", Err: &viewbuilder.ValidationError{Msg: "too long"}}, http.StatusConflict, "name_resolution", ""},
		{"wrapped validation", fmt.Errorf("submit: %w", &viewbuilder.ValidationError{Msg: "bad name"}), http.StatusBadRequest, "validation", ""},
		{"other", cause, http.StatusInternalServerError, "internal", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err}
			rec := do(t, NewRouter(svc, nil), http.MethodPost, "/views", `{"tables":["t"],"columns":["c"]}`)

			require.Equal(t, tt.wantStatus, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantKind, resp.Kind)
			assert.Equal(t, tt.wantView, resp.View)
			assert.NotEmpty(t, resp.Error)
		})
	}
}
