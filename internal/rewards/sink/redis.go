package sink

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"agora/pkg/domain"
)

// DefaultStream is the Redis stream settlement entries land on.
const DefaultStream = "agora:settlements"

// Redis appends each payout to a Redis stream. A downstream settler
// consumes the stream and credits the user's account.
type Redis struct {
	client redis.Cmdable
	stream string
}

func NewRedis(client redis.Cmdable, stream string) *Redis {
	if stream == "" {
		stream = DefaultStream
	}
	return &Redis{client: client, stream: stream}
}

func (s *Redis) Mint(ctx context.Context, user domain.Principal, amount uint64) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"user":   user.String(),
			"amount": strconv.FormatUint(amount, 10),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("append settlement: %w", err)
	}
	return nil
}
