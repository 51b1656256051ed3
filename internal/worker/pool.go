package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"catercost/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueShoppingList = "jobs:shopping_list"

	JobTypeShoppingList = "shopping_list"

	popTimeout    = 5 * time.Second
	maxPopBackoff = 30 * time.Second
)

// queueFor maps a job type onto the Redis list that carries it.
var queueFor = map[string]string{
	JobTypeShoppingList: QueueShoppingList,
}

// Job is the generic envelope for all async tasks.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt string          `json:"enqueued_at"`
}

// Handler processes one job payload. A returned error schedules a retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// ErrPermanent marks a failure that retrying cannot fix; such jobs go straight
// to the dead letter queue.
var ErrPermanent = errors.New("permanent job failure")

// queueClient is the subset of *redis.Client used by the pool.
type queueClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb queueClient
}

func NewDispatcher(rdb queueClient) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueShoppingList pushes a shopping-list email job and returns its id.
func (d *Dispatcher) EnqueueShoppingList(ctx context.Context, payload ShoppingListPayload) (string, error) {
	return d.enqueue(ctx, JobTypeShoppingList, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, jobType string, payload interface{}) (string, error) {
	queue, ok := queueFor[jobType]
	if !ok {
		return "", fmt.Errorf("worker: unknown job type %q", jobType)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	job := Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    data,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
	}
	encoded, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return "", err
	}
	return job.ID, nil
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb         queueClient
	handlers    map[string]Handler
	maxAttempts int
	queues      []string

	// popBackoff is the first pause after a failed BRPOP; it doubles up to
	// maxPopBackoff while the failures continue.
	popBackoff time.Duration
}

// NewPool builds a pool dispatching to handlers by job type. A job is tried
// at most maxAttempts times before it is dead-lettered.
func NewPool(rdb queueClient, handlers map[string]Handler, maxAttempts int) *Pool {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	seen := make(map[string]bool)
	var queues []string
	for jobType := range handlers {
		if q, ok := queueFor[jobType]; ok && !seen[q] {
			seen[q] = true
			queues = append(queues, q)
		}
	}
	return &Pool{rdb: rdb, handlers: handlers, maxAttempts: maxAttempts, queues: queues, popBackoff: time.Second}
}

// StartWorkerPool launches numWorkers goroutines consuming every queue that
// has a handler. The returned WaitGroup is released once ctx is cancelled and
// all workers have returned.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers map[string]Handler, maxAttempts, numWorkers int) *sync.WaitGroup {
	return NewPool(rdb, handlers, maxAttempts).Start(ctx, numWorkers)
}

func (p *Pool) Start(ctx context.Context, numWorkers int) *sync.WaitGroup {
	var wg sync.WaitGroup
	if len(p.queues) == 0 {
		log.Warn().Msg("worker pool has no handlers; not starting")
		return &wg
	}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.run(ctx, id)
		}(i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", p.queues).Msg("worker pool started")
	return &wg
}

func (p *Pool) run(ctx context.Context, id int) {
	backoff := p.popBackoff
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to popTimeout, then loops to check ctx
			result, err := p.rdb.BRPop(ctx, popTimeout, p.queues...).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue
				}
				log.Warn().Err(err).Int("worker", id).Dur("retry_in", backoff).Msg("queue pop failed")
				select {
				case <-ctx.Done():
				case <-time.After(backoff):
				}
				backoff = min(backoff*2, maxPopBackoff)
				continue
			}
			backoff = p.popBackoff
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

// process runs one raw job and decides its fate: done, re-enqueued for another
// attempt, or dead-lettered.
func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, Job{Payload: json.RawMessage(raw)}, "malformed envelope: "+err.Error())
		metrics.JobOutcome("unknown", "invalid")
		return
	}

	handler, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, job, "no handler registered")
		metrics.JobOutcome(job.Type, "invalid")
		return
	}

	job.Attempts++
	logger := log.With().Str("job_id", job.ID).Str("type", job.Type).Int("attempt", job.Attempts).Logger()

	err := handler(ctx, job.Payload)
	if err == nil {
		logger.Info().Msg("job completed")
		metrics.JobOutcome(job.Type, "success")
		return
	}

	if errors.Is(err, ErrPermanent) || job.Attempts >= p.maxAttempts {
		logger.Error().Err(err).Msg("job failed; giving up")
		SendToDLQ(ctx, p.rdb, queue, job, err.Error())
		metrics.JobOutcome(job.Type, "dead_letter")
		return
	}

	logger.Warn().Err(err).Msg("job failed; re-enqueueing")
	encoded, mErr := json.Marshal(job)
	if mErr == nil {
		mErr = p.rdb.LPush(ctx, queue, encoded).Err()
	}
	if mErr != nil {
		logger.Error().Err(mErr).Msg("re-enqueue failed; dead-lettering")
		SendToDLQ(ctx, p.rdb, queue, job, err.Error())
		metrics.JobOutcome(job.Type, "dead_letter")
		return
	}
	metrics.JobOutcome(job.Type, "retry")
}
