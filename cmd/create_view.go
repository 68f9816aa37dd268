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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/genai"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/utils"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/viewbuilder"
	"github.com/spf13/cobra"
)

// createViewCmd represents the create-view command
var createViewCmd = &cobra.Command{
	Use:   "create-view",
	Short: "Create a view over selected tables and columns and preview its rows",
	Long: `Creates (or replaces) a view selecting the DISTINCT values of the chosen columns over the
cross product of the chosen tables, then reads the view back and prints it as a table.`,
	Example: `./db_view_builder create-view --config config.ini --section mysql_empresa --tables orders,customers --columns total,name --name sales
./db_view_builder create-view --dialect sqlite --database shop.db --select "orders[total],customers[name]" --out_file sales.csv`,
	RunE: runCreateView,
}

func runCreateView(cmd *cobra.Command, args []string) error {
	tables, columns, err := selectionFromFlags(cmd)
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")
	suggest, _ := cmd.Flags().GetBool("suggest-name")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	outputFile, _ := cmd.Flags().GetString("out_file")

	ctx := cmd.Context()
	db, svc, err := setupSession(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if strings.TrimSpace(name) == "" && suggest {
		name = suggestViewName(ctx, tables, columns)
	}

	out := cmd.OutOrStdout()
	if dryRun {
		spec, statements, err := svc.PlanStatements(ctx, name, tables, columns)
		if err != nil {
			return err
		}
		logger.Infof("Dry run: view %s would be created with %d statement(s)", spec.ResolvedName, len(statements))
		for _, stmt := range statements {
			fmt.Fprintln(out, stmt+";")
		}
		return nil
	}

	result, err := svc.SubmitViewRequest(ctx, name, tables, columns)
	if err != nil {
		var readErr *viewbuilder.ViewReadError
		if errors.As(err, &readErr) {
			logger.Warnf("View %s was created but its preview could not be read", readErr.View)
		}
		return err
	}
	return presentResult(out, result, outputFile)
}

// selectionFromFlags reads either --select or the --tables/--columns pair.
func selectionFromFlags(cmd *cobra.Command) ([]string, []string, error) {
	selectFlag, _ := cmd.Flags().GetString("select")
	tablesFlag, _ := cmd.Flags().GetString("tables")
	columnsFlag, _ := cmd.Flags().GetString("columns")

	if selectFlag != "" {
		if tablesFlag != "" || columnsFlag != "" {
			return nil, nil, &viewbuilder.ValidationError{Msg: "--select cannot be combined with --tables or --columns"}
		}
		selections, err := utils.ParseSelectFlag(selectFlag)
		if err != nil {
			return nil, nil, &viewbuilder.ValidationError{Msg: "invalid --select value", Err: err}
		}
		tables, columns := utils.FlattenSelections(selections)
		if len(tables) == 0 || len(columns) == 0 {
			return nil, nil, &viewbuilder.ValidationError{Msg: "select at least one table and one column"}
		}
		return tables, columns, nil
	}
	tables, columns := utils.ParseListFlag(tablesFlag), utils.ParseListFlag(columnsFlag)
	if len(tables) == 0 || len(columns) == 0 {
		return nil, nil, &viewbuilder.ValidationError{Msg: "select at least one table and one column"}
	}
	return tables, columns, nil
}

// suggestViewName asks Gemini for a base name. Any failure falls back to the
// default name.
func suggestViewName(ctx context.Context, tables, columns []string) string {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("No Gemini API key provided. Using the default view name.")
		return ""
	}
	client, err := genai.NewClient(ctx, genai.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.Model, Logger: logger})
	if err != nil {
		logger.Warnf("Could not create Gemini client: %v. Using the default view name.", err)
		return ""
	}
	defer client.Close()

	if err := client.IsAPIKeyValid(ctx); err != nil {
		logger.Warnf("Gemini API key check failed: %v. Using the default view name.", err)
		return ""
	}
	name, err := client.SuggestViewName(ctx, tables, columns)
	if err != nil {
		logger.Warnf("View name suggestion failed: %v. Using the default view name.", err)
		return ""
	}
	if err := viewbuilder.ValidateIdentifier("view", name); err != nil {
		logger.Warnf("Suggested view name rejected: %v. Using the default view name.", err)
		return ""
	}
	logger.Infof("Using suggested view name %s", name)
	return name
}

// writeCSVFile writes table to path. A failed close is reported, since it can
// be the write that flushes the data.
func writeCSVFile(path string, table *viewbuilder.Table) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()
	if err := table.WriteCSV(file); err != nil {
		return fmt.Errorf("failed to write preview to file: %w", err)
	}
	return nil
}

// presentResult prints the created view as a table and, when outputFile is
// set, writes it as CSV.
func presentResult(out io.Writer, result *viewbuilder.ViewResult, outputFile string) error {
	table, err := viewbuilder.ProjectResult(result)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "View %s created.\n", result.ViewName)
	if err := utils.RenderTable(out, table.Header, table.Rows); err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	if outputFile == "" {
		return nil
	}

	if err := writeCSVFile(outputFile, table); err != nil {
		return err
	}
	logger.Infof("Preview of %s written to: %s", result.ViewName, outputFile)
	return nil
}

func init() {
	flags := createViewCmd.Flags()
	flags.String("tables", "", "Comma-separated list of source tables (e.g., 'orders,customers')")
	flags.String("columns", "", "Comma-separated list of columns to project (e.g., 'total,name')")
	flags.String("select", "", "Tables with their columns (e.g., 'orders[total],customers[name]'); replaces --tables and --columns")
	flags.String("name", "", "View name (defaults to \"vista\"; a numeric suffix is added when the name is taken)")
	flags.StringP("out_file", "o", "", "File path to save the preview rows as CSV (optional)")
	flags.Bool("suggest-name", false, "Ask Gemini for a view name when --name is empty")
	flags.Bool("dry-run", false, "Print the statements without creating the view")
}
