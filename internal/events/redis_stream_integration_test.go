//go:build integration

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/spec-kit/account-security/internal/domain/security"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisStreamBusAppends(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	bus := NewRedisStreamBus(client, "test.events", 100)

	first := newPing("user.created")
	second := newPing("security.code_generated")
	require.NoError(t, bus.Publish(ctx, first))
	require.NoError(t, bus.Publish(ctx, second))

	entries, err := client.XRange(ctx, "test.events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	got := entries[0].Values
	assert.Equal(t, first.ID.String(), got["id"])
	assert.Equal(t, "user.created", got["name"])
	assert.Equal(t, first.Subject.String(), got["aggregate_id"])
	assert.Equal(t, first.At.Format(time.RFC3339Nano), got["occurred_at"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(got["payload"].(string)), &payload))
	assert.Equal(t, first.ID.String(), payload["id"])
	assert.Equal(t, "security.code_generated", entries[1].Values["name"])
}

func TestRedisStreamBusDefaultStream(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	require.NoError(t, NewRedisStreamBus(client, "", 0).Publish(ctx, newPing("user.signed_in")))

	n, err := client.XLen(ctx, DefaultStream).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisStreamBusReportsFailure(t *testing.T) {
	client := startRedis(t)
	require.NoError(t, client.Close())

	err := NewRedisStreamBus(client, "test.events", 0).Publish(context.Background(), newPing("user.created"))
	assert.Error(t, err)
}

func TestRedisStreamBusKeepsCodesOutOfTheStream(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	bus := NewRedisStreamBus(client, "test.events", 0)

	event := security.CodeGenerated{
		ID:          uuid.New(),
		ChallengeID: uuid.New(),
		UserID:      uuid.New(),
		Purpose:     security.PurposeTwoFactor,
		Codes:       []security.GeneratedCode{{ID: uuid.New(), Value: "K7Q2M9XA"}},
	}
	require.NoError(t, bus.Publish(ctx, event))

	entries, err := client.XRange(ctx, "test.events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, security.EventCodeGenerated, entries[0].Values["name"])
	assert.NotContains(t, entries[0].Values["payload"], "K7Q2M9XA")
}
