package db_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/config"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/db"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/kv"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Runs against a real database only when DB_HOST_TEST is set.
func TestPostgres_MigrateAndStore(t *testing.T) {
	host := os.Getenv("DB_HOST_TEST")
	if host == "" {
		t.Skip("DB_HOST_TEST is not set")
	}

	cfg := config.PostgresConfig{
		Host:            host,
		Port:            envOr("DB_PORT_TEST", "5432"),
		User:            envOr("DB_USER_TEST", "postgres"),
		Password:        envOr("DB_PASSWORD_TEST", "postgres"),
		DBName:          envOr("DB_NAME_TEST", "vastrika_test"),
		SSLMode:         envOr("DB_SSLMODE_TEST", "disable"),
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: time.Minute,
	}

	require.NoError(t, db.Migrate(cfg))
	// A second run has nothing to apply.
	require.NoError(t, db.Migrate(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pg, err := db.New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pg.Close)

	key := "test:" + t.Name()
	t.Cleanup(func() {
		_, _ = pg.Pool.Exec(context.Background(), "DELETE FROM storefront_kv WHERE key = $1", key)
	})

	store := kv.NewPostgresStore(pg.Pool)

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, key, []byte(`[{"id":"1"}]`)))
	require.NoError(t, store.Set(ctx, key, []byte(`[]`)))

	value, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[]`), value)
}
