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
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/utils"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/viewbuilder"
	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Build views step by step from numbered table and column lists",
	Long: `Lists the tables of the database, lets you pick tables and columns by number or name,
asks for an optional view name and then creates and previews the view. The session keeps
one connection open until you quit.`,
	Example: `./db_view_builder interactive --config config.ini --section mysql_empresa`,
	RunE:    runInteractive,
}

// viewSession is the part of the view builder service the prompt loop drives.
type viewSession interface {
	RequestTables(ctx context.Context) ([]string, error)
	RequestColumnsFor(ctx context.Context, tables []string) ([]string, error)
	Submit(ctx context.Context, state viewbuilder.SelectionState) (*viewbuilder.ViewResult, error)
}

var _ viewSession = (*viewbuilder.Service)(nil)

func runInteractive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, svc, err := setupSession(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	return runPromptLoop(ctx, svc, bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
}

// runPromptLoop drives one selection per iteration until the user declines to
// continue or input ends. Failures are reported and the loop goes on.
func runPromptLoop(ctx context.Context, svc viewSession, in *bufio.Reader, out io.Writer) error {
	tables, err := svc.RequestTables(ctx)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		fmt.Fprintln(out, "No tables found.")
		return nil
	}

	for {
		result, err := promptOnce(ctx, svc, tables, in, out)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			fmt.Fprintf(out, "Error: %v\n", err)
		default:
			if err := presentResult(out, result, ""); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			} else if utils.ConfirmAction(in, out, "Save the preview as CSV?") {
				path := utils.GetDefaultOutputFilePath(result.ViewName)
				if err := presentResult(io.Discard, result, path); err != nil {
					fmt.Fprintf(out, "Error: %v\n", err)
				} else {
					fmt.Fprintf(out, "Preview written to: %s\n", path)
				}
			}
		}
		if !utils.ConfirmAction(in, out, "Build another view?") {
			return nil
		}
	}
}

func promptOnce(ctx context.Context, svc viewSession, tables []string, in *bufio.Reader, out io.Writer) (*viewbuilder.ViewResult, error) {
	var state viewbuilder.SelectionState

	fmt.Fprintln(out, "Tables:")
	if err := utils.RenderList(out, tables); err != nil {
		return nil, err
	}
	answer, err := utils.PromptLine(in, out, "Select tables (numbers or names, comma-separated): ")
	if err != nil {
		return nil, err
	}
	picked, err := utils.ParseSelection(answer, tables)
	if err != nil {
		return nil, &viewbuilder.ValidationError{Msg: "invalid table selection", Err: err}
	}
	for _, t := range picked {
		state.ToggleTable(t)
	}
	if len(state.Tables) == 0 {
		return nil, &viewbuilder.ValidationError{Msg: "select at least one table"}
	}

	available, err := svc.RequestColumnsFor(ctx, state.Tables)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(out, "Columns:")
	if err := utils.RenderList(out, available); err != nil {
		return nil, err
	}
	answer, err = utils.PromptLine(in, out, "Select columns (numbers or names, comma-separated): ")
	if err != nil {
		return nil, err
	}
	state.Columns, err = utils.ParseSelection(answer, available)
	if err != nil {
		return nil, &viewbuilder.ValidationError{Msg: "invalid column selection", Err: err}
	}

	state.ViewName, err = utils.PromptLine(in, out, "View name (blank for default): ")
	if err != nil {
		return nil, err
	}
	return svc.Submit(ctx, state)
}
