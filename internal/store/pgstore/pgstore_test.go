package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a throwaway PostgreSQL container and returns a migrated
// connection to it.
func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "social",
			"POSTGRES_PASSWORD": "social",
			"POSTGRES_DB":       "social",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://social:social@%s:%s/social?sslmode=disable", host, port.Port())
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, ApplyMigrations(db))
	return db
}

func TestOTPStoreLifecycle(t *testing.T) {
	db := setupPostgres(t)
	s := NewOTPStore(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	_, err := s.Get(ctx, "a@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Replace(ctx, models.OTP{Email: "a@x.com", CodeHash: "first", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, s.Replace(ctx, models.OTP{Email: "a@x.com", CodeHash: "second", ExpiresAt: now.Add(5 * time.Minute)}))

	got, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "second", got.CodeHash)
	require.True(t, got.ExpiresAt.Equal(now.Add(5*time.Minute)))

	require.NoError(t, s.Replace(ctx, models.OTP{Email: "old@x.com", CodeHash: "h", ExpiresAt: now.Add(-time.Minute)}))
	n, err := s.PurgeExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, s.Delete(ctx, "a@x.com"))
	_, err = s.Get(ctx, "a@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestApplyMigrationsIsRepeatable(t *testing.T) {
	db := setupPostgres(t)
	require.NoError(t, ApplyMigrations(db))
}
