package database

import (
	"context"
	"fmt"

	"cloud.google.com/go/cloudsqlconn"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/config"
)

// NewCloudSQLDialer checks the Cloud SQL settings in cfg and returns a dialer
// for its instance. Private IP is applied as a default dial option, so callers
// dial with the instance connection name alone.
func NewCloudSQLDialer(ctx context.Context, cfg config.DatabaseConfig) (*cloudsqlconn.Dialer, error) {
	if cfg.User == "" || cfg.DBName == "" || cfg.CloudSQLInstanceConnectionName == "" {
		return nil, fmt.Errorf("missing required CloudSQL connection parameter (user, database, instance)")
	}
	opts := []cloudsqlconn.Option{cloudsqlconn.WithLazyRefresh()}
	if cfg.UsePrivateIP {
		opts = append(opts, cloudsqlconn.WithDefaultDialOptions(cloudsqlconn.WithPrivateIP()))
	}
	d, err := cloudsqlconn.NewDialer(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cloudsqlconn.NewDialer: %w", err)
	}
	return d, nil
}
