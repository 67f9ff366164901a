package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"blog-service/internal/post"

	kf "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type PostHandler func(ctx context.Context, ev post.Event) error

// StartConsumer reads post events until ctx is cancelled. Bad payloads and
// handler errors are logged and skipped. A group without committed offsets
// starts at the newest message.
func StartConsumer(ctx context.Context, bootstrap, topic, groupID string, handle PostHandler, log *zap.Logger) error {
	r := kf.NewReader(kf.ReaderConfig{
		Brokers:     strings.Split(bootstrap, ","),
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     2 * time.Second,
		StartOffset: kf.LastOffset,
	})
	defer r.Close()

	log.Info("kafka consumer started", zap.String("group", groupID), zap.String("topic", topic))

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		var ev post.Event
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			log.Warn("kafka: bad payload", zap.Int64("offset", m.Offset), zap.Error(err))
			continue
		}
		if err := handle(ctx, ev); err != nil {
			log.Warn("handle post event", zap.String("type", ev.Type), zap.Uint64("post_id", ev.PostID), zap.Error(err))
		}
	}
}
