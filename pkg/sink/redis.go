package sink

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/sponsorwatch/pkg/catalog"
)

// DefaultStream is the Redis stream discoveries are appended to.
const DefaultStream = "sponsorwatch:discoveries"

// RedisStream appends every discovery to a Redis stream. It only writes;
// the seen set is never restored from the stream.
type RedisStream struct {
	redis  *redis.Client
	stream string
	maxLen int64
	now    func() time.Time
	logger zerolog.Logger
}

// NewRedisStream creates a stream sink. maxLen caps the stream length
// approximately; 0 leaves it unbounded.
func NewRedisStream(redisClient *redis.Client, stream string, maxLen int64) (*RedisStream, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if stream == "" {
		stream = DefaultStream
	}
	if maxLen < 0 {
		return nil, fmt.Errorf("max_len must be >= 0 (got %d)", maxLen)
	}

	return &RedisStream{
		redis:  redisClient,
		stream: stream,
		maxLen: maxLen,
		now:    time.Now,
		logger: log.With().Str("component", "redis-sink").Str("stream", stream).Logger(),
	}, nil
}

// Emit implements Sink.
func (s *RedisStream) Emit(ctx context.Context, place catalog.Place) error {
	d := NewDiscovery(place, s.now())

	id, err := s.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: s.maxLen > 0,
		Values: map[string]any{
			"place_id":      strconv.FormatUint(d.PlaceID, 10),
			"name":          d.Name,
			"url":           d.URL,
			"discovered_at": d.DiscoveredAt.Format(time.RFC3339Nano),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("redis xadd: %w", err)
	}

	s.logger.Debug().
		Uint64("place_id", d.PlaceID).
		Str("entry_id", id).
		Msg("Discovery published")

	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStream) Close() error {
	return s.redis.Close()
}
