package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStreamSink appends events to a Redis stream for downstream consumers.
// Each append is bounded by writeTimeout so an unreachable server cannot stall the
// request that published the event.
type RedisStreamSink struct {
	client       *redis.Client
	stream       string
	maxLen       int64
	writeTimeout time.Duration
}

// NewRedisStreamSink builds a sink writing to stream, trimmed to roughly maxLen entries.
// A zero writeTimeout leaves the caller's context untouched.
func NewRedisStreamSink(client *redis.Client, stream string, maxLen int64, writeTimeout time.Duration) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream, maxLen: maxLen, writeTimeout: writeTimeout}
}

// Handle implements EventHandler.
func (s *RedisStreamSink) Handle(ctx context.Context, event Event) error {
	if s == nil || s.client == nil {
		return nil
	}
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"id":        event.ID,
			"type":      string(event.Type),
			"ticket_id": strconv.FormatInt(event.TicketID, 10),
			"actor_id":  strconv.FormatInt(event.Actor.UserID, 10),
			"timestamp": event.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			"payload":   string(payload),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if s.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

// SubscribeAll registers the sink for every event type.
func (s *RedisStreamSink) SubscribeAll(d Dispatcher) {
	for _, eventType := range AllTypes {
		d.Subscribe(eventType, s.Handle)
	}
}
