// Package dbtest starts a disposable PostGIS server for integration tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/estatehub/internal/config"
	"github.com/stwalsh4118/estatehub/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Image is the PostGIS image used for integration tests.
const Image = "postgis/postgis:16-3.4-alpine"

const (
	testUser     = "postgres"
	testPassword = "postgres"
	testDatabase = "estatehub_test"
)

// NewPostGIS starts a PostGIS container, connects a pool and applies the
// schema. It skips the test in short mode or when Docker is unavailable.
// The container and pool are released by t.Cleanup.
func NewPostGIS(t *testing.T) *database.Database {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        Image,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       testDatabase,
			},
			// Postgres restarts once after running init scripts
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start PostGIS container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate PostGIS container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := database.NewPostgresPool(ctx, config.DatabaseConfig{
		Host:     host,
		Port:     port.Port(),
		Name:     testDatabase,
		User:     testUser,
		Password: testPassword,
		PoolMin:  1,
		PoolMax:  5,
	})
	require.NoError(t, err, "Failed to connect to PostGIS container")
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx), "Failed to apply schema")
	return db
}

// Truncate empties every table and resets identities.
func Truncate(t *testing.T, db *database.Database) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(),
		`TRUNCATE reviews, leases, applications, listings, locations, tenants, managers RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "Failed to truncate tables")
}
