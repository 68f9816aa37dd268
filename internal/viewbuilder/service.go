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
	"sync"
	"time"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/database"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/logging"
	"go.uber.org/zap"
)

// Options configures a Service.
type Options struct {
	DefaultViewName string
	MaxNameAttempts int
	Logger          *zap.SugaredLogger
}

// Service is the entry surface for presentation layers. It holds the
// session's database adapter; it keeps no selection state of its own.
type Service struct {
	db   database.DBAdapter
	opts Options
	log  *zap.SugaredLogger

	// serializes resolve-then-create within this process
	mu sync.Mutex
}

func NewService(db database.DBAdapter, opts Options) *Service {
	return &Service{
		db:   db,
		opts: opts,
		log:  logging.OrNop(opts.Logger),
	}
}

func (s *Service) resolveOptions() ResolveOptions {
	return ResolveOptions{DefaultName: s.opts.DefaultViewName, MaxAttempts: s.opts.MaxNameAttempts}
}

// RequestTables lists the tables and views a view can be built from.
func (s *Service) RequestTables(ctx context.Context) ([]string, error) {
	tables, err := s.db.ListTables(ctx)
	if err != nil {
		return nil, &SchemaQueryError{Msg: "failed to list tables", Err: err}
	}
	if tables == nil {
		tables = []string{}
	}
	s.log.Debugf("Listed %d table(s)", len(tables))
	return tables, nil
}

// RequestColumnsFor merges the columns of tables. An empty selection offers
// no columns.
func (s *Service) RequestColumnsFor(ctx context.Context, tables []string) ([]string, error) {
	if len(tables) == 0 {
		return []string{}, nil
	}
	if err := ValidateIdentifiers("table", tables); err != nil {
		return nil, err
	}
	return MergeColumns(ctx, s.db, tables)
}

// PlanView validates a request and resolves the view name without creating
// anything. Empty selections fail before any backend call.
func (s *Service) PlanView(ctx context.Context, name string, tables, columns []string) (*ViewSpec, error) {
	if len(tables) == 0 || len(columns) == 0 {
		return nil, &ValidationError{Msg: "select at least one table and one column"}
	}
	if requested := strings.TrimSpace(name); requested != "" {
		if err := ValidateIdentifier("view", requested); err != nil {
			return nil, err
		}
	}
	if err := ValidateIdentifiers("table", tables); err != nil {
		return nil, err
	}
	if err := ValidateIdentifiers("column", columns); err != nil {
		return nil, err
	}

	owners, err := ColumnOwners(ctx, s.db, tables)
	if err != nil {
		return nil, err
	}
	for _, col := range columns {
		switch found := owners[col]; len(found) {
		case 0:
			return nil, &ValidationError{Msg: fmt.Sprintf("column %q is not in any selected table", col)}
		case 1:
		default:
			return nil, &ValidationError{Msg: fmt.Sprintf("column %q is ambiguous: present in %s", col, strings.Join(found, ", "))}
		}
	}

	resolved, err := ResolveViewName(ctx, s.db, name, s.resolveOptions())
	if err != nil {
		return nil, err
	}
	s.log.Infof("Resolved view name %q for requested name %q", resolved, strings.TrimSpace(name))

	return &ViewSpec{
		ResolvedName: resolved,
		Tables:       append([]string(nil), tables...),
		Columns:      append([]string(nil), columns...),
	}, nil
}

// PlanStatements returns the ViewSpec and DDL a request would execute.
func (s *Service) PlanStatements(ctx context.Context, name string, tables, columns []string) (*ViewSpec, []string, error) {
	spec, err := s.PlanView(ctx, name, tables, columns)
	if err != nil {
		return nil, nil, err
	}
	return spec, PlanStatements(s.db, *spec), nil
}

// SubmitViewRequest validates the request, resolves a free name, creates the
// view and returns its preview.
func (s *Service) SubmitViewRequest(ctx context.Context, name string, tables, columns []string) (*ViewResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	startTime := time.Now()
	spec, err := s.PlanView(ctx, name, tables, columns)
	if err != nil {
		return nil, err
	}

	s.log.Infof("Creating view %s over %d table(s) with %d column(s)", spec.ResolvedName, len(spec.Tables), len(spec.Columns))
	result, err := CreateAndPreview(ctx, s.db, *spec)
	if err != nil {
		return nil, err
	}
	s.log.Infof("View %s created in %s; preview has %d row(s)", result.ViewName, time.Since(startTime), len(result.Rows))
	return result, nil
}

// Submit submits the current selection.
func (s *Service) Submit(ctx context.Context, state SelectionState) (*ViewResult, error) {
	return s.SubmitViewRequest(ctx, state.ViewName, state.Tables, state.Columns)
}
