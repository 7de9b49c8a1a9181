package sink

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisSink(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sink := NewRedis(client, "")

	require.NoError(t, sink.Mint(ctx, "ST1ADA", 80))
	require.NoError(t, sink.Mint(ctx, "ST1ADA", 50))
	require.NoError(t, sink.Mint(ctx, "ST1BOB", 100))

	entries, err := client.XRange(ctx, DefaultStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	require.Equal(t, "ST1ADA", entries[0].Values["user"])
	require.Equal(t, "80", entries[0].Values["amount"])
	require.Equal(t, "ST1BOB", entries[2].Values["user"])
}
