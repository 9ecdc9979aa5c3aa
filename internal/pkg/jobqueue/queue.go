package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/AvaliaJa/AvaliaJa/internal/pkg/cache"
)

const (
	// Redis key prefixes
	JobKeyPrefix = "job:"
	JobQueueKey  = "job_queue"

	// Job settings
	DefaultMaxRetries = 3
	JobTTL            = 24 * time.Hour // Jobs expire after 24 hours
)

// Processor handles one job type.
type Processor func(ctx context.Context, job *Job) error

// Queue manages background jobs using Redis. Enqueue is cheap and never
// blocks the caller on job execution; workers pop jobs and dispatch them to
// the registered processors.
type Queue struct {
	client     *redis.Client
	workers    int
	processors map[JobType]Processor
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewQueue creates a new job queue
func NewQueue(workers int) *Queue {
	if workers <= 0 {
		workers = 3 // Default number of workers
	}

	return &Queue{
		client:     cache.GetClient(),
		workers:    workers,
		processors: make(map[JobType]Processor),
		stopCh:     make(chan struct{}),
	}
}

// RegisterProcessor attaches a processor for a job type. Must be called
// before Start.
func (q *Queue) RegisterProcessor(jobType JobType, p Processor) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.processors[jobType] = p
}

// Start starts the job queue workers
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}
	q.running = true
	log.Infof("[JobQueue] Starting %d workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop signals all workers and waits for them to drain
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.mu.Unlock()

	close(q.stopCh)
	q.wg.Wait()
	log.Info("[JobQueue] Stopped")
}

// Enqueue stores the job in Redis and pushes its id onto the work list.
func (q *Queue) Enqueue(jobType JobType, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	job := &Job{
		ID:         uuid.New().String(),
		Type:       jobType,
		Status:     JobStatusPending,
		Payload:    data,
		CreatedAt:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}

	ctx := context.Background()
	if err := q.saveJob(ctx, job); err != nil {
		return "", err
	}
	if err := q.client.LPush(ctx, JobQueueKey, job.ID).Err(); err != nil {
		return "", fmt.Errorf("push job: %w", err)
	}
	return job.ID, nil
}

// EnqueueConversion queues conversion estimation for a recorded click. It
// implements tracking.Enqueuer.
func (q *Queue) EnqueueConversion(clickID uint) error {
	_, err := q.Enqueue(JobTypeConversionEstimate, ConversionPayload{ClickID: clickID})
	return err
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()

	for {
		select {
		case <-q.stopCh:
			return
		default:
		}

		ctx := context.Background()
		res, err := q.client.BRPop(ctx, 2*time.Second, JobQueueKey).Result()
		if err != nil {
			if err != redis.Nil {
				log.Errorf("[JobQueue] worker %d: pop failed: %v", id, err)
				time.Sleep(time.Second)
			}
			continue
		}
		// BRPop returns [key, value]
		if len(res) < 2 {
			continue
		}
		q.process(ctx, res[1])
	}
}

func (q *Queue) process(ctx context.Context, jobID string) {
	job, err := q.loadJob(ctx, jobID)
	if err != nil {
		log.Errorf("[JobQueue] could not load job %s: %v", jobID, err)
		return
	}

	q.mu.Lock()
	processor, ok := q.processors[job.Type]
	q.mu.Unlock()
	if !ok {
		log.Errorf("[JobQueue] no processor registered for job type %s", job.Type)
		return
	}

	now := time.Now()
	job.Status = JobStatusProcessing
	job.StartedAt = &now
	_ = q.saveJob(ctx, job)

	if err := processor(ctx, job); err != nil {
		job.Retries++
		job.LastError = err.Error()
		if job.Retries < job.MaxRetries {
			job.Status = JobStatusPending
			_ = q.saveJob(ctx, job)
			_ = q.client.LPush(ctx, JobQueueKey, job.ID).Err()
			log.Warnf("[JobQueue] job %s failed (retry %d/%d): %v", job.ID, job.Retries, job.MaxRetries, err)
			return
		}
		job.Status = JobStatusFailed
		done := time.Now()
		job.CompletedAt = &done
		_ = q.saveJob(ctx, job)
		log.Errorf("[JobQueue] job %s failed permanently: %v", job.ID, err)
		return
	}

	job.Status = JobStatusCompleted
	done := time.Now()
	job.CompletedAt = &done
	_ = q.saveJob(ctx, job)
}

func (q *Queue) saveJob(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return q.client.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL).Err()
}

func (q *Queue) loadJob(ctx context.Context, jobID string) (*Job, error) {
	data, err := q.client.Get(ctx, JobKeyPrefix+jobID).Result()
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, err
	}
	return &job, nil
}
