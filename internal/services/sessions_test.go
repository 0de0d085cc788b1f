package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
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
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestRedisSessions(t *testing.T) {
	rdb := setupRedis(t)
	s := NewRedisSessions(rdb)
	ctx := context.Background()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	require.NoError(t, s.Create(ctx, "a1", alice, time.Hour))
	require.NoError(t, s.Create(ctx, "a2", alice, time.Hour))
	require.NoError(t, s.Create(ctx, "b1", bob, time.Hour))

	user, ok, err := s.Lookup(ctx, "a1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, alice, user)

	_, ok, err = s.Lookup(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Revoke(ctx, "a1"))
	_, ok, _ = s.Lookup(ctx, "a1")
	require.False(t, ok)
	require.NoError(t, s.Revoke(ctx, "a1"), "revoking twice is a no-op")

	members, err := rdb.SMembers(ctx, UserSessionsKeyPrefix+alice.Hex()).Result()
	require.NoError(t, err)
	require.Equal(t, []string{"a2"}, members)

	require.NoError(t, s.RevokeAll(ctx, alice))
	_, ok, _ = s.Lookup(ctx, "a2")
	require.False(t, ok)
	_, ok, _ = s.Lookup(ctx, "b1")
	require.True(t, ok, "other users keep their sessions")

	ttl, err := rdb.TTL(ctx, SessionKeyPrefix+"b1").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, 59*time.Minute)
}

func TestRedisSessionsExpire(t *testing.T) {
	rdb := setupRedis(t)
	s := NewRedisSessions(rdb)
	ctx := context.Background()
	user := primitive.NewObjectID()

	require.NoError(t, s.Create(ctx, "short", user, 200*time.Millisecond))
	require.Eventually(t, func() bool {
		_, ok, err := s.Lookup(ctx, "short")
		return err == nil && !ok
	}, 5*time.Second, 50*time.Millisecond)
}
