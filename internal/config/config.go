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
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Database     DatabaseConfig
	View         ViewConfig
	LogLevel     string
	GeminiAPIKey string
	Model        string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Dialect                        string
	Host                           string
	Port                           int
	User                           string
	Password                       string
	DBName                         string
	SSLMode                        string
	CloudSQLInstanceConnectionName string
	UsePrivateIP                   bool
	QueryTimeout                   time.Duration
}

// ViewConfig holds the naming policy for created views.
type ViewConfig struct {
	DefaultName     string
	MaxNameAttempts int
}

// Configuration keys shared by the config file, environment and flags.
const (
	KeyDialect          = "dialect"
	KeyHost             = "host"
	KeyPort             = "port"
	KeyUser             = "user"
	KeyPassword         = "password"
	KeyDatabase         = "database"
	KeySSLMode          = "sslmode"
	KeyInstanceName     = "cloudsql_instance_connection_name"
	KeyUsePrivateIP     = "cloudsql_use_private_ip"
	KeyQueryTimeout     = "query_timeout"
	KeyDefaultViewName  = "view.default_name"
	KeyMaxNameAttempts  = "view.max_name_attempts"
	KeyLogLevel         = "log_level"
	KeyGeminiAPIKey     = "gemini_api_key"
	KeyModel            = "model"
	EnvPrefix           = "DBVIEW"
	DefaultViewName     = "vista"
	DefaultNameAttempts = 1000
)

// SupportedDialects lists every dialect with a registered handler.
var SupportedDialects = []string{"postgres", "cloudsqlpostgres", "mysql", "cloudsqlmysql", "sqlserver", "cloudsqlsqlserver", "sqlite", "duckdb"}

// GetConfig returns a default configuration. Values are overridden by Load.
func GetConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dialect:      "postgres",
			Host:         "localhost",
			Port:         DefaultPort("postgres"),
			SSLMode:      "disable",
			QueryTimeout: 30 * time.Second,
		},
		View: ViewConfig{
			DefaultName:     DefaultViewName,
			MaxNameAttempts: DefaultNameAttempts,
		},
		LogLevel: "info",
		Model:    "gemini-1.5-flash-latest",
	}
}

// SetDefaults registers the GetConfig defaults on v.
func SetDefaults(v *viper.Viper) {
	d := GetConfig()
	v.SetDefault(KeyDialect, d.Database.Dialect)
	v.SetDefault(KeyHost, d.Database.Host)
	v.SetDefault(KeySSLMode, d.Database.SSLMode)
	v.SetDefault(KeyQueryTimeout, d.Database.QueryTimeout)
	v.SetDefault(KeyDefaultViewName, d.View.DefaultName)
	v.SetDefault(KeyMaxNameAttempts, d.View.MaxNameAttempts)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyModel, d.Model)
}

// Load resolves the configuration from v. When path is set the file is read
// (INI, YAML, TOML or JSON by extension); when section is set, the keys of
// that section are lifted to the top level so an INI file can hold several
// named connections. Environment variables use the DBVIEW_ prefix.
func Load(v *viper.Viper, path, section string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if section != "" {
		if path == "" {
			return nil, fmt.Errorf("section '%s' requested but no config file was given", section)
		}
		if !v.InConfig(section) {
			return nil, fmt.Errorf("section '%s' does not exist in %s", section, path)
		}
		if err := v.MergeConfigMap(v.GetStringMap(section)); err != nil {
			return nil, fmt.Errorf("failed to apply section '%s': %w", section, err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Dialect:                        strings.ToLower(strings.TrimSpace(v.GetString(KeyDialect))),
			Host:                           v.GetString(KeyHost),
			Port:                           v.GetInt(KeyPort),
			User:                           v.GetString(KeyUser),
			Password:                       v.GetString(KeyPassword),
			DBName:                         v.GetString(KeyDatabase),
			SSLMode:                        v.GetString(KeySSLMode),
			CloudSQLInstanceConnectionName: v.GetString(KeyInstanceName),
			UsePrivateIP:                   v.GetBool(KeyUsePrivateIP),
			QueryTimeout:                   v.GetDuration(KeyQueryTimeout),
		},
		View: ViewConfig{
			DefaultName:     v.GetString(KeyDefaultViewName),
			MaxNameAttempts: v.GetInt(KeyMaxNameAttempts),
		},
		LogLevel:     v.GetString(KeyLogLevel),
		GeminiAPIKey: v.GetString(KeyGeminiAPIKey),
		Model:        v.GetString(KeyModel),
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultPort(cfg.Database.Dialect)
	}
	return cfg, nil
}

// DefaultPort is the server port assumed when none is configured. File-backed
// and Cloud SQL dialects have none.
func DefaultPort(dialect string) int {
	switch dialect {
	case "postgres":
		return 5432
	case "mysql":
		return 3306
	case "sqlserver":
		return 1433
	}
	return 0
}

// Validate checks that the connection settings are usable for the dialect.
func (c *Config) Validate() error {
	db := c.Database
	if !isSupportedDialect(db.Dialect) {
		return fmt.Errorf("unsupported dialect: %s (only %s are supported)", db.Dialect, strings.Join(SupportedDialects, ", "))
	}
	if c.View.MaxNameAttempts <= 0 {
		return fmt.Errorf("view.max_name_attempts must be positive, got %d", c.View.MaxNameAttempts)
	}
	if db.QueryTimeout < 0 {
		return fmt.Errorf("query_timeout must not be negative, got %s", db.QueryTimeout)
	}

	switch {
	case db.Dialect == "sqlite" || db.Dialect == "duckdb":
		// file-backed; an empty database means in-memory
		return nil
	case strings.HasPrefix(db.Dialect, "cloudsql"):
		if db.User == "" || db.DBName == "" || db.CloudSQLInstanceConnectionName == "" {
			return fmt.Errorf("missing required CloudSQL connection parameter (user, database, cloudsql_instance_connection_name)")
		}
	default:
		if db.Host == "" || db.User == "" || db.DBName == "" {
			return fmt.Errorf("missing required connection parameter (host, user, database)")
		}
		if db.Port <= 0 || db.Port > 65535 {
			return fmt.Errorf("invalid port: %d", db.Port)
		}
	}
	return nil
}

func isSupportedDialect(dialect string) bool {
	for _, d := range SupportedDialects {
		if d == dialect {
			return true
		}
	}
	return false
}
