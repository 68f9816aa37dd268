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
	"fmt"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/utils"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/viewbuilder"
	"github.com/spf13/cobra"
)

var listTablesCmd = &cobra.Command{
	Use:     "list-tables",
	Short:   "List the tables and views of the connected database",
	Example: `./db_view_builder list-tables --config config.ini --section mysql_empresa`,
	RunE:    runListTables,
}

func runListTables(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, svc, err := setupSession(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tables, err := svc.RequestTables(ctx)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tables found.")
		return nil
	}
	return utils.RenderList(cmd.OutOrStdout(), tables)
}

var listColumnsCmd = &cobra.Command{
	Use:     "list-columns",
	Short:   "List the merged columns of the given tables",
	Long:    `Lists the distinct column names of the given tables, in table order and then physical column order.`,
	Example: `./db_view_builder list-columns --dialect sqlite --database shop.db --tables orders,customers`,
	RunE:    runListColumns,
}

func runListColumns(cmd *cobra.Command, args []string) error {
	tablesFlag, _ := cmd.Flags().GetString("tables")
	tables := utils.ParseListFlag(tablesFlag)
	if len(tables) == 0 {
		return &viewbuilder.ValidationError{Msg: "--tables is required"}
	}

	ctx := cmd.Context()
	db, svc, err := setupSession(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	columns, err := svc.RequestColumnsFor(ctx, tables)
	if err != nil {
		return err
	}
	return utils.RenderList(cmd.OutOrStdout(), columns)
}

func init() {
	listColumnsCmd.Flags().String("tables", "", "Comma-separated list of tables (e.g., 'orders,customers')")
}
