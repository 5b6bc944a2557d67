package suggestions

import (
	"context"
	"errors"
	"time"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/infrastructure/workers"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

// ErrQueueFull is returned by Enqueue when the buffer is at capacity.
var ErrQueueFull = errors.New("suggestion queue is full")

// Job asks for suggestions for one task.
type Job struct {
	TaskID   string
	Enqueued time.Time
}

func (j Job) GetID() string {
	return j.TaskID
}

// Requester is the part of the task store a Job runs against. A task is
// reserved when its job is queued and run when a worker picks it up.
type Requester interface {
	Reserve(ctx context.Context, id string) error
	Release(id string)
	RunReserved(ctx context.Context, id string) (tasksrepo.Task, error)
}

// Queue buffers jobs for a workers.WorkerPool.
type Queue struct {
	log  *logger.Logger
	repo Requester
	jobs chan Job
}

var _ workers.Processor[Job] = (*Queue)(nil)

func NewQueue(log *logger.Logger, repo Requester, size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{
		log:  log,
		repo: repo,
		jobs: make(chan Job, size),
	}
}

// Enqueue reserves taskID and adds a job for it without blocking. The
// reservation is dropped again when the buffer is full.
func (q *Queue) Enqueue(ctx context.Context, taskID string) error {
	if err := q.repo.Reserve(ctx, taskID); err != nil {
		return err
	}
	select {
	case q.jobs <- Job{TaskID: taskID, Enqueued: time.Now()}:
		return nil
	default:
		q.repo.Release(taskID)
		return ErrQueueFull
	}
}

// Len is the number of jobs waiting.
func (q *Queue) Len() int {
	return len(q.jobs)
}

func (q *Queue) Checkout(ctx context.Context, workerID string) (Job, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	default:
		return Job{}, workers.ErrNoWorkAvailable
	}
}

func (q *Queue) Process(ctx context.Context, job Job) (Job, error) {
	_, err := q.repo.RunReserved(ctx, job.TaskID)
	return job, err
}

func (q *Queue) Complete(ctx context.Context, job Job, processingTimeMS int) error {
	q.log.InfoContext(ctx, "suggestion job done",
		"task_id", job.TaskID,
		"waited", time.Since(job.Enqueued).Round(time.Millisecond).String(),
		"processing_ms", processingTimeMS,
	)
	return nil
}

func (q *Queue) Fail(ctx context.Context, job Job, err error) error {
	q.log.WarnContext(ctx, "suggestion job failed", "task_id", job.TaskID, "error", err)
	return nil
}
