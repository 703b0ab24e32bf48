package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	JobTypeBriefEmail = "brief_email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JobHandler processes the payload of one job type.
// A returned error parks the job in the dead letter queue.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes a brief email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobTypeBriefEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP, idle workers use no CPU.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]JobHandler) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers map[string]JobHandler) {
	queues := []string{QueueEmail}
	dead := make(map[string]*DeadLetters, len(queues))
	for _, q := range queues {
		dead[q] = NewDeadLetters(rdb, q)
	}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, dead[result[0]], handlers, result[1])
		}
	}
}

func processJob(ctx context.Context, dead *DeadLetters, handlers map[string]JobHandler, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", dead.Queue()).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		dead.Park(ctx, "unknown", quoted, "malformed envelope: "+err.Error(), 0)
		return
	}

	h, ok := handlers[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", dead.Queue()).Msg("no handler registered for job type")
		dead.Park(ctx, job.Type, job.Payload, "no handler registered", 0)
		return
	}

	log.Debug().Str("type", job.Type).Str("queue", dead.Queue()).Msg("processing job")
	if err := h.Process(ctx, job.Payload); err != nil {
		dead.Park(ctx, job.Type, job.Payload, err.Error(), attemptsOf(h))
	}
}

// attemptsOf reports how many tries a handler makes before giving up.
func attemptsOf(h JobHandler) int {
	if a, ok := h.(interface{ Attempts() int }); ok {
		return a.Attempts()
	}
	return 1
}
