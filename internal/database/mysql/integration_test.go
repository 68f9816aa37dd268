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
package mysql_test

import (
	"context"
	"testing"
	"time"

	"github.com/GoogleCloudPlatform/db-view-builder/internal/config"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/database"
	_ "github.com/GoogleCloudPlatform/db-view-builder/internal/database/mysql"
	"github.com/GoogleCloudPlatform/db-view-builder/internal/viewbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMySQLViewBuilderIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping MySQL integration test in short mode")
	}

	ctx := context.Background()

	mysqlContainer, err := tcmysql.Run(ctx,
		"mysql:8.4",
		tcmysql.WithDatabase("empresa"),
		tcmysql.WithUsername("testuser"),
		tcmysql.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start container")
	defer func() {
		if err := mysqlContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	}()

	host, err := mysqlContainer.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlContainer.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	db, err := database.New(ctx, config.DatabaseConfig{
		Dialect:      "mysql",
		Host:         host,
		Port:         port.Int(),
		User:         "testuser",
		Password:     "testpass",
		DBName:       "empresa",
		QueryTimeout: 30 * time.Second,
	}, nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.ExecuteSQLStatements(ctx, []string{
		"CREATE TABLE clientes (id INT, nombre VARCHAR(50))",
		"CREATE TABLE pedidos (id INT, total DECIMAL(10,2))",
		"INSERT INTO clientes VALUES (1, 'Ana'), (2, 'Luis')",
		"INSERT INTO pedidos VALUES (1, 10.50), (2, 20.00), (3, 10.50)",
	}))

	svc := viewbuilder.NewService(db, viewbuilder.Options{})

	tables, err := svc.RequestTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"clientes", "pedidos"}, tables)

	cols, err := svc.RequestColumnsFor(ctx, []string{"pedidos", "clientes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "total", "nombre"}, cols)

	result, err := svc.SubmitViewRequest(ctx, "", []string{"pedidos", "clientes"}, []string{"total", "nombre"})
	require.NoError(t, err)
	assert.Equal(t, "vista", result.ViewName)
	assert.Len(t, result.Rows, 4, "two distinct totals times two names")

	second, err := svc.SubmitViewRequest(ctx, "", []string{"clientes"}, []string{"nombre"})
	require.NoError(t, err)
	assert.Equal(t, "vista_2", second.ViewName)

	table, err := viewbuilder.ProjectResult(second)
	require.NoError(t, err)
	assert.ElementsMatch(t, [][]string{{"Ana"}, {"Luis"}}, table.Rows)
}
