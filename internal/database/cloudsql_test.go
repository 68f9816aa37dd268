package database

import (
	"context"
	"testing"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/config"
)

func TestNewCloudSQLDialerRequiresInstanceSettings(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
	}{
		{"no user", config.DatabaseConfig{DBName: "shop", CloudSQLInstanceConnectionName: "p:r:i"}},
		{"no database", config.DatabaseConfig{User: "app", CloudSQLInstanceConnectionName: "p:r:i"}},
		{"no instance", config.DatabaseConfig{User: "app", DBName: "shop"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCloudSQLDialer(context.Background(), tt.cfg); err == nil {
				t.Errorf("NewCloudSQLDialer() expected error for %s", tt.name)
			}
		})
	}
}
