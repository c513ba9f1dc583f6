// Package redisstream publishes committed console mutations to Redis Streams
// so other services can follow tip and package changes.
package redisstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Cheertaboi/tips-console/internal/sink"
)

const DefaultStream = "console.mutations"

// Publisher is a sink.Sink writing every mutation to one stream, plus a
// per-kind stream (e.g. console.mutations.tip_flag).
type Publisher struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

func NewPublisher(client redis.Cmdable, stream string, maxLen int64) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{client: client, stream: stream, maxLen: maxLen}
}

// Connect parses url, pings the server and returns the client.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (p *Publisher) KindStream(kind sink.Kind) string {
	return fmt.Sprintf("%s.%s", p.stream, kind)
}

func (p *Publisher) Persist(ctx context.Context, m sink.Mutation) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal mutation %s: %w", m.ID, err)
	}

	values := map[string]interface{}{
		"id":      m.ID,
		"kind":    string(m.Kind),
		"payload": string(payload),
	}

	pipe := p.client.TxPipeline()
	for _, stream := range []string{p.stream, p.KindStream(m.Kind)} {
		args := &redis.XAddArgs{Stream: stream, Values: values}
		if p.maxLen > 0 {
			args.MaxLen = p.maxLen
			args.Approx = true
		}
		pipe.XAdd(ctx, args)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish mutation %s to %s: %w", m.ID, p.stream, err)
	}
	return nil
}
