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
	"net/http"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/logging"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/utils"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/viewbuilder"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ViewService is the presentation API served over HTTP.
type ViewService interface {
	RequestTables(ctx context.Context) ([]string, error)
	RequestColumnsFor(ctx context.Context, tables []string) ([]string, error)
	SubmitViewRequest(ctx context.Context, name string, tables, columns []string) (*viewbuilder.ViewResult, error)
}

var _ ViewService = (*viewbuilder.Service)(nil)

// ViewRequest is the body of POST /views.
type ViewRequest struct {
	Name    string   `json:"name"`
	Tables  []string `json:"tables"`
	Columns []string `json:"columns"`
}

// ViewResponse is returned for a created view.
type ViewResponse struct {
	View       string     `json:"view"`
	Statements []string   `json:"statements"`
	Header     []string   `json:"header"`
	Rows       [][]string `json:"rows"`
}

// ErrorResponse carries a failure. View is set when the view was created but
// could not be read.
type ErrorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
	View  string `json:"view,omitempty"`
}

type handler struct {
	svc ViewService
	log *zap.SugaredLogger
}

// NewRouter mounts the presentation API.
func NewRouter(svc ViewService, logger *zap.SugaredLogger) http.Handler {
	h := &handler{svc: svc, log: logging.OrNop(logger)}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/tables", h.listTables)
	r.Get("/columns", h.listColumns)
	r.Post("/views", h.createView)
	return r
}

func (h *handler) listTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.svc.RequestTables(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tables": tables})
}

func (h *handler) listColumns(w http.ResponseWriter, r *http.Request) {
	tables := utils.ParseListFlag(r.URL.Query().Get("tables"))
	columns, err := h.svc.RequestColumnsFor(r.Context(), tables)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"columns": columns})
}

func (h *handler) createView(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, r, &viewbuilder.ValidationError{Msg: "malformed request body", Err: err})
		return
	}

	result, err := h.svc.SubmitViewRequest(r.Context(), req.Name, req.Tables, req.Columns)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	table, err := viewbuilder.ProjectResult(result)
	if err != nil {
		h.writeError(w, r, &viewbuilder.ViewReadError{View: result.ViewName, Msg: "failed to project preview", Err: err})
		return
	}
	writeJSON(w, http.StatusCreated, ViewResponse{
		View:       result.ViewName,
		Statements: result.Statements,
		Header:     table.Header,
		Rows:       table.Rows,
	})
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
	} else {
		h.log.Warnf("%s %s rejected: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, resp)
}

// classify maps the error taxonomy onto HTTP status codes.
func classify(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Error: err.Error()}
	switch e := outermostKind(err).(type) {
	case *viewbuilder.ValidationError:
		resp.Kind = "validation"
		return http.StatusBadRequest, resp
	case *viewbuilder.NameResolutionError:
		resp.Kind = "name_resolution"
		return http.StatusConflict, resp
	case *viewbuilder.SchemaQueryError:
		resp.Kind = "schema_query"
		return http.StatusBadGateway, resp
	case *viewbuilder.ViewCreationError:
		resp.Kind = "view_creation"
		return http.StatusBadGateway, resp
	case *viewbuilder.ViewReadError:
		resp.Kind = "view_read"
		resp.View = e.View
		return http.StatusInternalServerError, resp
	default:
		resp.Kind = "internal"
		return http.StatusInternalServerError, resp
	}
}

// outermostKind returns the first error in err's chain that belongs to the
// viewbuilder taxonomy, or nil. A NameResolutionError wrapping a
// ValidationError is a name resolution failure.
func outermostKind(err error) error {
	for ; err != nil; err = errors.Unwrap(err) {
		switch err.(type) {
		case *viewbuilder.ValidationError, *viewbuilder.NameResolutionError,
			*viewbuilder.SchemaQueryError, *viewbuilder.ViewCreationError,
			*viewbuilder.ViewReadError:
			return err
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
