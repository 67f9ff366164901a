package kafka

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	kgo "github.com/segmentio/kafka-go"
)

type Writer interface {
	WriteJSON(ctx context.Context, v any) error
	Close() error
}

type writer struct {
	w *kgo.Writer
}

// NewWriter creates a Kafka writer for the posts topic.
// Env overrides (optional):
//   - KAFKA_REQUIRED_ACKS: "none" | "one" | "all" (default: "one")
//   - KAFKA_ASYNC: "true" | "false" (default: "false")
func NewWriter(bootstrapServers, topic string) Writer {
	var requiredAcks kgo.RequiredAcks
	switch strings.ToLower(strings.TrimSpace(os.Getenv("KAFKA_REQUIRED_ACKS"))) {
	case "none":
		requiredAcks = kgo.RequireNone
	case "all":
		requiredAcks = kgo.RequireAll
	default:
		requiredAcks = kgo.RequireOne
	}

	w := &kgo.Writer{
		Addr:                   kgo.TCP(strings.Split(bootstrapServers, ",")...),
		Topic:                  topic,
		Balancer:               &kgo.Hash{},
		RequiredAcks:           requiredAcks,
		Async:                  strings.EqualFold(os.Getenv("KAFKA_ASYNC"), "true"),
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &writer{w: w}
}

func (wr *writer) WriteJSON(ctx context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := kgo.Message{Key: partitionKey(v), Value: b, Time: time.Now()}
	return wr.w.WriteMessages(ctx, msg)
}

func (wr *writer) Close() error { return wr.w.Close() }

type keyed interface{ Key() []byte }

// partitionKey keeps events of one post on one partition.
func partitionKey(v any) []byte {
	if k, ok := v.(keyed); ok {
		return k.Key()
	}
	return nil
}
