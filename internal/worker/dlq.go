package worker

// Dead letters: jobs whose handler gave up, one capped Redis list per source
// queue (dlq:{queue}, newest first). Entries can be inspected and pushed back
// onto their queue once the cause (bad SMTP credentials, a full mailbox) is fixed.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix = "dlq:"

	// dlqCap bounds each list; the oldest letters fall off first.
	dlqCap = 500
)

// DLQEntry is one dead letter.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// DeadLetters is the dead letter list of one queue.
type DeadLetters struct {
	rdb   *redis.Client
	queue string
	now   func() time.Time
}

func NewDeadLetters(rdb *redis.Client, queue string) *DeadLetters {
	return &DeadLetters{rdb: rdb, queue: queue, now: time.Now}
}

func (d *DeadLetters) key() string { return DLQPrefix + d.queue }

// Queue names the source queue.
func (d *DeadLetters) Queue() string { return d.queue }

// Park records a failed job. Failures to park are logged, never returned:
// the worker has nothing better to do with the job.
func (d *DeadLetters) Park(ctx context.Context, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: d.queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      d.now().UTC(),
		Attempts:      attempts,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", d.queue).Msg("dlq: failed to marshal entry")
		return
	}

	_, err = d.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, d.key(), data)
		p.LTrim(ctx, d.key(), 0, dlqCap-1)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("dlq_key", d.key()).Msg("dlq: failed to park job")
		return
	}

	log.Warn().
		Str("queue", d.queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job parked")
}

// Len is the number of parked jobs.
func (d *DeadLetters) Len(ctx context.Context) (int64, error) {
	return d.rdb.LLen(ctx, d.key()).Result()
}

// Peek returns up to n of the newest letters without removing them.
// Entries that no longer decode are skipped.
func (d *DeadLetters) Peek(ctx context.Context, n int64) ([]DLQEntry, error) {
	if n <= 0 {
		return []DLQEntry{}, nil
	}
	raw, err := d.rdb.LRange(ctx, d.key(), 0, n-1).Result()
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

// Requeue moves up to n of the oldest letters back onto the source queue as
// fresh jobs and reports how many were moved. Letters that cannot be rebuilt
// into a job are dropped.
func (d *DeadLetters) Requeue(ctx context.Context, n int) (int, error) {
	moved := 0
	for moved < n {
		raw, err := d.rdb.RPop(ctx, d.key()).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, err
		}

		var e DLQEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil || e.JobType == "" {
			log.Warn().Str("queue", d.queue).Msg("dlq: dropping undecodable letter")
			continue
		}
		job, err := json.Marshal(Job{Type: e.JobType, Payload: e.Payload})
		if err != nil {
			return moved, err
		}
		if err := d.rdb.LPush(ctx, d.queue, job).Err(); err != nil {
			// put it back where it was so nothing is lost
			_ = d.rdb.RPush(ctx, d.key(), raw).Err()
			return moved, err
		}
		moved++
	}
	if moved > 0 {
		log.Info().Str("queue", d.queue).Int("moved", moved).Msg("dlq: requeued jobs")
	}
	return moved, nil
}
