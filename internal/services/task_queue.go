package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/formgate/formgate/backend/internal/config"
	"github.com/formgate/formgate/backend/pkg/logger"
)

const (
	JobTypeInstantiateTemplate = "templates:instantiate"
	JobTypeNotifySubmission    = "submissions:notify"
)

// QueueJob is the payload carried through the queue. Type selects which of
// the ID fields are meaningful.
type QueueJob struct {
	Type         string `json:"type"`
	TemplateID   uint   `json:"template_id,omitempty"`
	SubmissionID uint   `json:"submission_id,omitempty"`
	FormID       uint   `json:"form_id,omitempty"`
	ProjectID    uint   `json:"project_id,omitempty"`
}

// TaskQueue defines the interface for background job processing
type TaskQueue interface {
	// Enqueue adds a job to the queue
	Enqueue(job *QueueJob) error
	// IsAsync returns true if the queue processes jobs asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global task queue instance
var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue initializes the global task queue based on config
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalTaskQueue = NewSyncQueue()
			} else {
				logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalTaskQueue = queue
			}
		} else {
			logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
			globalTaskQueue = NewSyncQueue()
		}
	})
	return globalTaskQueue
}

// GetTaskQueue returns the global task queue instance
func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode.
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	_, err := inspector.Queues()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue adds a job to the async queue
func (q *AsyncQueue) Enqueue(job *QueueJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	t := asynq.NewTask(job.Type, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[AsyncQueue] Job enqueued: id=%s, type=%s, queue=%s", info.ID, job.Type, info.Queue)
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements TaskQueue with in-process processing (no Redis)
type SyncQueue struct {
	processor func(context.Context, *QueueJob) error
}

// NewSyncQueue creates a new synchronous queue
func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function to process jobs when Redis is absent
func (q *SyncQueue) SetProcessor(processor func(context.Context, *QueueJob) error) {
	q.processor = processor
}

// Enqueue processes the job immediately in a goroutine so the originating
// request is not held up.
func (q *SyncQueue) Enqueue(job *QueueJob) error {
	if q.processor == nil {
		logger.Infof("[SyncQueue] Warning: no processor set, job will be dropped")
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.processor(ctx, job); err != nil {
			logger.Infof("[SyncQueue] Job processing failed: %v", err)
		}
	}()

	return nil
}

// IsAsync returns false for sync queue
func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue
func (q *SyncQueue) Close() error {
	return nil
}
