package job

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis starts an in-memory Redis and a client connected to it.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func subscribe(t *testing.T, client *redis.Client, channel string) <-chan *redis.Message {
	t.Helper()

	ctx := context.Background()
	sub := client.Subscribe(ctx, channel)
	t.Cleanup(func() { _ = sub.Close() })

	// Wait for the subscription to be confirmed before publishing.
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	return sub.Channel()
}

func receive(t *testing.T, messages <-chan *redis.Message) Notification {
	t.Helper()

	select {
	case msg := <-messages:
		var n Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &n))
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("no notification received")
		return Notification{}
	}
}

func TestChannelFor(t *testing.T) {
	assert.Equal(t, "events:507f1f77bcf86cd799439011", ChannelFor("507f1f77bcf86cd799439011"))
}

func TestPublisher_Publish(t *testing.T) {
	client := setupTestRedis(t)
	messages := subscribe(t, client, ChannelFor("abc"))

	receivers, err := NewPublisher(client).Publish(context.Background(), ChannelFor("abc"), NotificationEventCreated, map[string]string{"eventURI": "abc"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), receivers)

	n := receive(t, messages)
	assert.Equal(t, NotificationEventCreated, n.Type)
	_, err = uuid.Parse(n.ID)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now(), n.Timestamp, time.Minute)
	assert.Equal(t, map[string]interface{}{"eventURI": "abc"}, n.Payload)
}

func TestHandleEventChangedTask(t *testing.T) {
	client := setupTestRedis(t)
	logger := zerolog.Nop()
	j := &JobService{publisher: NewPublisher(client), logger: &logger}

	uri := "507f1f77bcf86cd799439011"
	messages := subscribe(t, client, ChannelFor(uri))

	task, err := NewEventChangedTask(EventChangedPayload{
		EventURI: uri,
		Type:     NotificationEventUpdated,
		Username: "user1",
	})
	require.NoError(t, err)
	assert.Equal(t, TaskEventChanged, task.Type())

	require.NoError(t, j.handleEventChangedTask(context.Background(), task))

	n := receive(t, messages)
	assert.Equal(t, NotificationEventUpdated, n.Type)
	assert.Equal(t, map[string]interface{}{
		"eventURI": uri,
		"type":     NotificationEventUpdated,
		"username": "user1",
	}, n.Payload)
}

func TestHandleEventChangedTask_BadPayloadSkipsRetry(t *testing.T) {
	logger := zerolog.Nop()
	j := &JobService{logger: &logger}

	err := j.handleEventChangedTask(context.Background(), asynq.NewTask(TaskEventChanged, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
