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
	"fmt"
	"os"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/config"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/database"
	_ "github.com/GoogleCloudPlatform/db-view-builder/internal/database/duckdb"
	_ "github.com/GoogleCloudPlatform/db-view-builder/internal/database/mysql"
	_ "github.com/GoogleCloudPlatform/db-view-builder/internal/database/postgres"
	_ "github.com/GoogleCloudPlatform/db-view-builder/internal/database/sqlite"
	_ "github.com/GoogleCloudPlatform/db-view-builder/internal/database/sqlserver"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/logging"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/viewbuilder"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	section string

	v      = viper.New()
	cfg    *config.Config
	logger = zap.NewNop().Sugar()
)

var rootCmd = &cobra.Command{
	Use:   "db_view_builder",
	Short: "A tool to compose, create and preview SQL views",
	Long: `db_view_builder connects to a database, lets you pick source tables and
columns, creates a view over them with CREATE OR REPLACE VIEW and previews its rows.`,
	SilenceUsage:      true,
	PersistentPreRunE: initFlagsAndConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// initFlagsAndConfig resolves configuration from the config file, environment
// and flags, then builds the logger.
func initFlagsAndConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(v, cfgFile, section)
	if err != nil {
		return err
	}
	if loaded.GeminiAPIKey == "" {
		loaded.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}

	l, err := logging.New(loaded.LogLevel)
	if err != nil {
		return err
	}
	cfg = loaded
	logger = l
	zap.ReplaceGlobals(l.Desugar())
	return nil
}

// setupSession opens the session connection and the view builder service on top of it.
func setupSession(ctx context.Context) (*database.DB, *viewbuilder.Service, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("configuration is not initialized")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	db, err := database.New(ctx, cfg.Database, logger)
	if err != nil {
		logger.Errorf("Failed to connect to database: %v", err)
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	svc := viewbuilder.NewService(db, viewbuilder.Options{
		DefaultViewName: cfg.View.DefaultName,
		MaxNameAttempts: cfg.View.MaxNameAttempts,
		Logger:          logger,
	})
	return db, svc, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for flagName, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(flagName)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flagName, err))
		}
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Configuration file (INI, YAML, TOML or JSON)")
	flags.StringVar(&section, "section", "", "Section of the configuration file holding the connection (e.g. mysql_empresa)")

	// Database connection flags
	flags.String("dialect", "", fmt.Sprintf("Database dialect (%s)", joinDialects()))
	flags.String("host", "", "Database host")
	flags.Int("port", 0, "Database port")
	flags.String("username", "", "Database username")
	flags.String("password", "", "Database password")
	flags.String("database", "", "Database name (file path for sqlite and duckdb)")
	flags.String("sslmode", "", "SSL mode (postgres)")
	flags.String("cloudsql-instance-connection-name", "", "Cloud SQL instance connection name (for Cloud SQL dialects)")
	flags.Bool("cloudsql-use-private-ip", false, "Use private IP for Cloud SQL connection (Cloud SQL)")
	flags.Duration("query-timeout", 0, "Timeout for each database call (e.g. 30s); 0 keeps the configured value")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	// View naming flags
	flags.String("default-view-name", "", "Base name used when no view name is given (default \"vista\")")
	flags.Int("max-name-attempts", 0, "Maximum number of candidate names tried when resolving a view name")

	// Gemini flags
	flags.String("gemini-api-key", "", "Gemini API key (can also be set via GEMINI_API_KEY environment variable)")
	flags.String("model", "", "Gemini model used by --suggest-name")

	bindFlags(flags, map[string]string{
		"dialect":                           config.KeyDialect,
		"host":                              config.KeyHost,
		"port":                              config.KeyPort,
		"username":                          config.KeyUser,
		"password":                          config.KeyPassword,
		"database":                          config.KeyDatabase,
		"sslmode":                           config.KeySSLMode,
		"cloudsql-instance-connection-name": config.KeyInstanceName,
		"cloudsql-use-private-ip":           config.KeyUsePrivateIP,
		"query-timeout":                     config.KeyQueryTimeout,
		"log-level":                         config.KeyLogLevel,
		"default-view-name":                 config.KeyDefaultViewName,
		"max-name-attempts":                 config.KeyMaxNameAttempts,
		"gemini-api-key":                    config.KeyGeminiAPIKey,
		"model":                             config.KeyModel,
	})

	// Add subcommands
	rootCmd.AddCommand(listTablesCmd)
	rootCmd.AddCommand(listColumnsCmd)
	rootCmd.AddCommand(createViewCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(serveCmd)
}

func joinDialects() string {
	out := ""
	for i, d := range config.SupportedDialects {
		if i > 0 {
			out += ", "
		}
		out += d
	}
	return out
}
