package workers

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jrazmi/smarttasks/sdk/environment"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

var (
	ErrWorkerShutdown  = errors.New("worker should shutdown")
	ErrPoolShutdown    = errors.New("pool should shutdown")
	ErrNoWorkAvailable = errors.New("no work available")
)

// Options represents the exportable worker configuration
type Options struct {
	Name         string        `env:"WORKER_NAME" default:"suggestions"`
	WorkerCount  int           `env:"WORKER_COUNT" default:"2"`
	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL" default:"100ms"`
	IdleInterval time.Duration `env:"WORKER_IDLE_INTERVAL" default:"500ms"`
	MaxRetries   int           `env:"WORKER_MAX_RETRIES" default:"1"`
	RetryDelay   time.Duration `env:"WORKER_RETRY_DELAY" default:"1s"`
}

type options struct {
	Options
	middlewares []Middleware
	metrics     WorkerPoolMetrics
	log         *logger.Logger
}

// Option configures a worker pool.
type Option func(*options)

func WithName(name string) Option {
	return func(o *options) {
		o.Name = name
	}
}

func WithWorkerCount(count int) Option {
	return func(o *options) {
		o.WorkerCount = count
	}
}

// WithPollInterval sets the delay between cycles while work keeps coming.
func WithPollInterval(interval time.Duration) Option {
	return func(o *options) {
		o.PollInterval = interval
	}
}

// WithIdleInterval sets the delay between cycles after an empty checkout.
func WithIdleInterval(interval time.Duration) Option {
	return func(o *options) {
		o.IdleInterval = interval
	}
}

// WithMaxRetries sets how many times Process is attempted per task.
func WithMaxRetries(maxRetries int) Option {
	return func(o *options) {
		o.MaxRetries = maxRetries
	}
}

// WithRetryDelay sets the backoff before the second attempt. It doubles for
// each attempt after that.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) {
		o.RetryDelay = d
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func WithMiddleware(middlewares ...Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}

func WithMetrics(metrics WorkerPoolMetrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WorkerPool runs processor with a fixed number of polling workers.
type WorkerPool[T Task] struct {
	processor Processor[T]
	cfg       Options
	log       *logger.Logger

	workFunc         WorkFunc
	middlewares      []Middleware
	preProcessHooks  []PreProcessHook[T]
	postProcessHooks []PostProcessHook[T]
	metrics          WorkerPoolMetrics

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	workers sync.WaitGroup
	errors  chan error
}

// NewFromEnv creates a pool configured from PREFIX_WORKER_* variables.
func NewFromEnv[T Task](prefix string, processor Processor[T], opts ...Option) (*WorkerPool[T], error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing worker config: %w", err)
	}
	return New(processor, cfg, opts...), nil
}

// New creates a pool from cfg, then applies opts on top.
func New[T Task](processor Processor[T], cfg Options, opts ...Option) *WorkerPool[T] {
	o := &options{Options: cfg}
	for _, opt := range opts {
		opt(o)
	}

	if o.log == nil {
		o.log = logger.NewDefault()
	}
	if o.metrics == nil {
		o.metrics = NewNoOpMetrics()
	}
	if o.Name == "" {
		o.Name = "worker"
	}
	if o.WorkerCount <= 0 {
		o.WorkerCount = 1
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 100 * time.Millisecond
	}
	if o.IdleInterval <= 0 {
		o.IdleInterval = time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 1
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = time.Second
	}

	wp := &WorkerPool[T]{
		processor:   processor,
		cfg:         o.Options,
		log:         o.log,
		middlewares: o.middlewares,
		metrics:     o.metrics,
		errors:      make(chan error, o.WorkerCount),
	}
	wp.buildMiddlewareChain()
	return wp
}

// Name is the pool's configured name.
func (wp *WorkerPool[T]) Name() string {
	return wp.cfg.Name
}

// Start runs the workers and blocks until ctx is done, Stop is called, or a
// worker asks for the pool to shut down. The last case returns that error.
func (wp *WorkerPool[T]) Start(ctx context.Context) error {
	wp.mu.Lock()
	if wp.running {
		wp.mu.Unlock()
		return errors.New("worker pool already running")
	}
	ctx, wp.cancel = context.WithCancel(ctx)
	wp.running = true
	wp.mu.Unlock()

	start := time.Now()
	wp.log.InfoContext(ctx, "starting worker pool",
		"name", wp.cfg.Name,
		"worker_count", wp.cfg.WorkerCount,
		"poll_interval", wp.cfg.PollInterval.String(),
	)
	wp.metrics.Start(ctx, wp.cfg.Name)

	for i := range wp.cfg.WorkerCount {
		workerID := fmt.Sprintf("%s-worker-%d", wp.cfg.Name, i+1)
		wp.workers.Add(1)
		go wp.worker(ctx, workerID)
	}

	done := make(chan struct{})
	go func() {
		wp.workers.Wait()
		close(done)
	}()

	var poolErr error
	select {
	case poolErr = <-wp.errors:
		wp.Stop()
		<-done
	case <-done:
		select {
		case poolErr = <-wp.errors:
		default:
		}
	}
	wp.Stop()
	wp.metrics.Stop(ctx)

	wp.log.InfoContext(context.Background(), "worker pool stopped",
		"name", wp.cfg.Name,
		"total_runtime", time.Since(start).String(),
	)

	wp.mu.Lock()
	wp.running = false
	wp.mu.Unlock()
	return poolErr
}

// Stop cancels every worker. It is safe to call more than once.
func (wp *WorkerPool[T]) Stop() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.cancel != nil {
		wp.cancel()
	}
}

// GetMetrics returns the pool's current metrics.
func (wp *WorkerPool[T]) GetMetrics() MetricsSnapshot {
	return wp.metrics.GetSnapshot()
}

// worker polls fast while work keeps coming and backs off to the idle
// interval after an empty checkout.
func (wp *WorkerPool[T]) worker(ctx context.Context, workerID string) {
	defer wp.workers.Done()
	defer wp.metrics.RecordWorkerStopped()
	wp.metrics.RecordWorkerStarted()

	wp.log.DebugContext(ctx, "worker started", "worker_id", workerID)
	defer wp.log.DebugContext(context.Background(), "worker stopped", "worker_id", workerID)

	interval := time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			err := wp.workWithPanicRecovery(ctx, workerID)

			next := wp.cfg.PollInterval
			switch {
			case err == nil:
			case errors.Is(err, ErrWorkerShutdown):
				wp.log.InfoContext(ctx, "worker shutting down as requested", "worker_id", workerID)
				return
			case errors.Is(err, ErrPoolShutdown):
				wp.log.ErrorContext(ctx, "worker requesting pool shutdown", "worker_id", workerID, "error", err)
				select {
				case wp.errors <- fmt.Errorf("worker %s: %w", workerID, err):
				default:
				}
				return
			case errors.Is(err, ErrNoWorkAvailable):
				next = wp.cfg.IdleInterval
			default:
				wp.log.ErrorContext(ctx, "task processing error", "worker_id", workerID, "error", err)
			}

			if next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

// workWithPanicRecovery keeps a panicking cycle from killing the worker.
func (wp *WorkerPool[T]) workWithPanicRecovery(ctx context.Context, workerID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			wp.log.ErrorContext(ctx, "panic recovered in worker",
				"worker_id", workerID,
				"panic", r,
				"stack_trace", string(debug.Stack()),
			)
			wp.metrics.RecordWorkerPanic()
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	return wp.workFunc(ctx, workerID)
}

// work runs Checkout, Process and then Complete or Fail for one task.
func (wp *WorkerPool[T]) work(ctx context.Context, workerID string) (err error) {
	task, err := wp.processor.Checkout(ctx, workerID)
	if err != nil {
		wp.metrics.RecordCheckoutError()
		if errors.Is(err, ErrNoWorkAvailable) {
			return err
		}
		return fmt.Errorf("checkout failed: %w", err)
	}
	wp.metrics.RecordTaskCheckedOut()

	var (
		processed  T
		processErr error
		start      = time.Now()
	)

	defer func() {
		duration := time.Since(start)

		if r := recover(); r != nil {
			wp.log.ErrorContext(ctx, "panic recovered in task",
				"worker_id", workerID,
				"task_id", task.GetID(),
				"panic", r,
				"stack_trace", string(debug.Stack()),
			)
			wp.metrics.RecordWorkerPanic()
			processErr = fmt.Errorf("panic: %v", r)
			err = processErr
		}

		hookTask := processed
		if processErr != nil {
			hookTask = task
		}
		for _, hook := range wp.postProcessHooks {
			if hookErr := hook(ctx, hookTask, processErr); hookErr != nil {
				wp.log.ErrorContext(ctx, "post-process hook failed", "task_id", task.GetID(), "error", hookErr)
			}
		}

		if processErr != nil {
			wp.metrics.RecordTaskFailed(duration)
			if failErr := wp.processor.Fail(ctx, task, processErr); failErr != nil {
				wp.log.ErrorContext(ctx, "failed to mark task as failed", "task_id", task.GetID(), "error", failErr)
			}
			return
		}

		wp.metrics.RecordTaskCompleted(duration)
		if completeErr := wp.processor.Complete(ctx, processed, int(duration.Milliseconds())); completeErr != nil {
			wp.log.ErrorContext(ctx, "failed to mark task as complete", "task_id", task.GetID(), "error", completeErr)
		}
	}()

	for _, hook := range wp.preProcessHooks {
		if hookErr := hook(ctx, task); hookErr != nil {
			wp.log.ErrorContext(ctx, "pre-process hook failed", "task_id", task.GetID(), "error", hookErr)
		}
	}

	wp.log.DebugContext(ctx, "processing task", "worker_id", workerID, "task_id", task.GetID())

	processed, processErr = wp.processWithRetry(ctx, task)
	if processErr != nil {
		return fmt.Errorf("task processing error: %w", processErr)
	}
	return nil
}

// processWithRetry attempts Process up to MaxRetries times with exponential
// backoff between attempts.
func (wp *WorkerPool[T]) processWithRetry(ctx context.Context, task T) (T, error) {
	var (
		processed T
		lastErr   error
	)

	for attempt := 1; attempt <= wp.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			wp.metrics.RecordRetryAttempt()
			delay := wp.cfg.RetryDelay * time.Duration(1<<(attempt-2))
			select {
			case <-ctx.Done():
				return processed, ctx.Err()
			case <-time.After(delay):
			}
		}

		processed, lastErr = wp.processor.Process(ctx, task)
		if lastErr == nil {
			if attempt > 1 {
				wp.metrics.RecordRetrySuccess()
			}
			return processed, nil
		}
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}

		wp.log.WarnContext(ctx, "task processing attempt failed",
			"task_id", task.GetID(),
			"attempt", attempt,
			"error", lastErr,
		)
	}

	if wp.cfg.MaxRetries > 1 {
		wp.metrics.RecordRetryExhausted()
		return processed, fmt.Errorf("failed after %d attempts: %w", wp.cfg.MaxRetries, lastErr)
	}
	return processed, lastErr
}
