package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Notification is the message subscribers receive.
type Notification struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Publisher sends notifications over Redis pub/sub.
type Publisher struct {
	redis *redis.Client
}

func NewPublisher(redisClient *redis.Client) *Publisher {
	return &Publisher{redis: redisClient}
}

// ChannelFor is the pub/sub channel carrying changes to one event.
func ChannelFor(eventURI string) string {
	return "events:" + eventURI
}

// Publish wraps payload in a Notification and publishes it on channel. It
// returns how many subscribers received it.
func (p *Publisher) Publish(ctx context.Context, channel, notificationType string, payload interface{}) (int64, error) {
	msg, err := json.Marshal(Notification{
		ID:        uuid.New().String(),
		Type:      notificationType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal notification: %w", err)
	}

	return p.redis.Publish(ctx, channel, msg).Result()
}
