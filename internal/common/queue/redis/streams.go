package redis

import (
	"context"
	"fmt"

	"github.com/JulianoL13/proxy-list-refresher/internal/common/queue"
	"github.com/redis/go-redis/v9"
)

type StreamsClient struct {
	client *redis.Client
	maxLen int64
}

func NewStreamsClient(client *redis.Client) *StreamsClient {
	return &StreamsClient{client: client}
}

// WithMaxLen caps each stream at roughly n entries. Zero leaves streams
// unbounded.
func (s *StreamsClient) WithMaxLen(n int64) *StreamsClient {
	s.maxLen = n
	return s
}

func (s *StreamsClient) Publish(ctx context.Context, topic string, payload []byte) error {
	args := &redis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{
			"payload": payload,
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if _, err := s.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("xadd %s: %w", topic, err)
	}
	return nil
}

func (s *StreamsClient) Close() error {
	return nil
}

var _ queue.Publisher = (*StreamsClient)(nil)
