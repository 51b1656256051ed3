package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// Failed jobs land in a capped Redis list per source queue, dlq:<queue>,
// newest first. Nothing replays them; /health reports the depth and the admin
// API lists the entries.

const (
	DLQPrefix = "dlq:"

	// DLQMaxEntries caps each dead letter list. Older entries are trimmed.
	DLQMaxEntries = 500
)

// DLQEntry wraps a failed job with the reason it was given up on.
type DLQEntry struct {
	JobID         string          `json:"job_id,omitempty"`
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ dead-letters job. Push failures are logged, not returned.
func SendToDLQ(ctx context.Context, rdb queueClient, queue string, job Job, reason string) {
	payload := job.Payload
	if !json.Valid(payload) {
		quoted, _ := json.Marshal(string(payload))
		payload = quoted
	}
	data, err := json.Marshal(DLQEntry{
		JobID:         job.ID,
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      job.Attempts,
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	key := DLQPrefix + queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Str("job_id", job.ID).Msg("dlq: push failed; job lost")
		return
	}
	if err := rdb.LTrim(ctx, key, 0, DLQMaxEntries-1).Err(); err != nil {
		log.Warn().Err(err).Str("dlq_key", key).Msg("dlq: trim failed")
	}

	log.Warn().
		Str("queue", queue).
		Str("job_id", job.ID).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of dead letters kept for queue.
func DLQLength(ctx context.Context, rdb queueClient, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// PeekDLQ returns up to n of the newest dead letters of queue.
func PeekDLQ(ctx context.Context, rdb queueClient, queue string, n int64) ([]DLQEntry, error) {
	if n <= 0 {
		return []DLQEntry{}, nil
	}
	raw, err := rdb.LRange(ctx, DLQPrefix+queue, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DLQEntry, 0, len(raw))
	for _, r := range raw {
		var e DLQEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
