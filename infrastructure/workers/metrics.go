package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// WorkerPoolMetrics collects pool orchestration metrics.
type WorkerPoolMetrics interface {
	RecordWorkerStarted()
	RecordWorkerStopped()
	RecordWorkerPanic()

	RecordTaskCheckedOut()
	RecordTaskCompleted(duration time.Duration)
	RecordTaskFailed(duration time.Duration)
	RecordCheckoutError()

	RecordRetryAttempt()
	RecordRetrySuccess()
	RecordRetryExhausted()

	GetSnapshot() MetricsSnapshot

	Start(ctx context.Context, poolName string)
	Stop(ctx context.Context)
}

// MetricsSnapshot is a point-in-time view of pool metrics.
type MetricsSnapshot struct {
	Pool string `json:"pool"`

	WorkersActive int64 `json:"workers_active"`
	WorkerPanics  int64 `json:"worker_panics"`

	TasksCheckedOut int64 `json:"tasks_checked_out"`
	TasksCompleted  int64 `json:"tasks_completed"`
	TasksFailed     int64 `json:"tasks_failed"`
	TasksInProgress int64 `json:"tasks_in_progress"`
	CheckoutErrors  int64 `json:"checkout_errors"`

	RetryAttempts    int64 `json:"retry_attempts"`
	RetrySuccesses   int64 `json:"retry_successes"`
	RetriesExhausted int64 `json:"retries_exhausted"`

	AverageDurationMS int64   `json:"average_duration_ms"`
	MaxDurationMS     int64   `json:"max_duration_ms"`
	ErrorRate         float64 `json:"error_rate"`

	CollectedAt   time.Time `json:"collected_at"`
	UptimeSeconds float64   `json:"uptime_seconds"`
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

func NewNoOpMetrics() WorkerPoolMetrics {
	return NoOpMetrics{}
}

func (NoOpMetrics) RecordWorkerStarted()              {}
func (NoOpMetrics) RecordWorkerStopped()              {}
func (NoOpMetrics) RecordWorkerPanic()                {}
func (NoOpMetrics) RecordTaskCheckedOut()             {}
func (NoOpMetrics) RecordTaskCompleted(time.Duration) {}
func (NoOpMetrics) RecordTaskFailed(time.Duration)    {}
func (NoOpMetrics) RecordCheckoutError()              {}
func (NoOpMetrics) RecordRetryAttempt()               {}
func (NoOpMetrics) RecordRetrySuccess()               {}
func (NoOpMetrics) RecordRetryExhausted()             {}
func (NoOpMetrics) GetSnapshot() MetricsSnapshot      { return MetricsSnapshot{} }
func (NoOpMetrics) Start(context.Context, string)     {}
func (NoOpMetrics) Stop(context.Context)              {}

// InMemoryMetrics keeps counters in memory for the debug endpoint.
type InMemoryMetrics struct {
	mu        sync.RWMutex
	poolName  string
	startTime time.Time
	maxDur    time.Duration

	workersStarted atomic.Int64
	workersStopped atomic.Int64
	workerPanics   atomic.Int64

	tasksCheckedOut atomic.Int64
	tasksCompleted  atomic.Int64
	tasksFailed     atomic.Int64
	checkoutErrors  atomic.Int64

	retryAttempts    atomic.Int64
	retrySuccesses   atomic.Int64
	retriesExhausted atomic.Int64

	totalDurationNs atomic.Int64
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{}
}

func (m *InMemoryMetrics) Start(ctx context.Context, poolName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poolName = poolName
	m.startTime = time.Now()
}

func (m *InMemoryMetrics) Stop(ctx context.Context) {}

func (m *InMemoryMetrics) RecordWorkerStarted()  { m.workersStarted.Add(1) }
func (m *InMemoryMetrics) RecordWorkerStopped()  { m.workersStopped.Add(1) }
func (m *InMemoryMetrics) RecordWorkerPanic()    { m.workerPanics.Add(1) }
func (m *InMemoryMetrics) RecordTaskCheckedOut() { m.tasksCheckedOut.Add(1) }
func (m *InMemoryMetrics) RecordCheckoutError()  { m.checkoutErrors.Add(1) }
func (m *InMemoryMetrics) RecordRetryAttempt()   { m.retryAttempts.Add(1) }
func (m *InMemoryMetrics) RecordRetrySuccess()   { m.retrySuccesses.Add(1) }
func (m *InMemoryMetrics) RecordRetryExhausted() { m.retriesExhausted.Add(1) }

func (m *InMemoryMetrics) RecordTaskCompleted(duration time.Duration) {
	m.tasksCompleted.Add(1)
	m.recordDuration(duration)
}

func (m *InMemoryMetrics) RecordTaskFailed(duration time.Duration) {
	m.tasksFailed.Add(1)
	m.recordDuration(duration)
}

func (m *InMemoryMetrics) recordDuration(d time.Duration) {
	m.totalDurationNs.Add(int64(d))
	m.mu.Lock()
	m.maxDur = max(m.maxDur, d)
	m.mu.Unlock()
}

func (m *InMemoryMetrics) GetSnapshot() MetricsSnapshot {
	now := time.Now()

	m.mu.RLock()
	pool, started, maxDur := m.poolName, m.startTime, m.maxDur
	m.mu.RUnlock()

	completed := m.tasksCompleted.Load()
	failed := m.tasksFailed.Load()
	finished := completed + failed

	s := MetricsSnapshot{
		Pool:             pool,
		WorkersActive:    m.workersStarted.Load() - m.workersStopped.Load(),
		WorkerPanics:     m.workerPanics.Load(),
		TasksCheckedOut:  m.tasksCheckedOut.Load(),
		TasksCompleted:   completed,
		TasksFailed:      failed,
		TasksInProgress:  m.tasksCheckedOut.Load() - finished,
		CheckoutErrors:   m.checkoutErrors.Load(),
		RetryAttempts:    m.retryAttempts.Load(),
		RetrySuccesses:   m.retrySuccesses.Load(),
		RetriesExhausted: m.retriesExhausted.Load(),
		MaxDurationMS:    maxDur.Milliseconds(),
		CollectedAt:      now,
	}
	if finished > 0 {
		s.AverageDurationMS = time.Duration(m.totalDurationNs.Load() / finished).Milliseconds()
		s.ErrorRate = float64(failed) / float64(finished) * 100
	}
	if !started.IsZero() {
		s.UptimeSeconds = now.Sub(started).Seconds()
	}
	return s
}
