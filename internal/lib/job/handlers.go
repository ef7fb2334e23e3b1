package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// handleEventChangedTask publishes the change on the event's Redis channel.
// Returning an error makes Asynq retry the task.
func (j *JobService) handleEventChangedTask(ctx context.Context, t *asynq.Task) error {
	var p EventChangedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// A payload that does not decode will never succeed.
		return fmt.Errorf("failed to unmarshal event changed payload: %v: %w", err, asynq.SkipRetry)
	}

	receivers, err := j.publisher.Publish(ctx, ChannelFor(p.EventURI), p.Type, p)
	if err != nil {
		j.logger.Error().
			Err(err).
			Str("event_uri", p.EventURI).
			Str("type", p.Type).
			Msg("failed to publish event notification")
		return err
	}

	j.logger.Debug().
		Str("event_uri", p.EventURI).
		Str("type", p.Type).
		Int64("receivers", receivers).
		Msg("published event notification")

	return nil
}
