// Package workers runs a Processor's Checkout, Process, Complete/Fail cycle
// on a pool of polling goroutines.
package workers

import "context"

// Task is a unit of work with an identity for logging.
type Task interface {
	GetID() string
}

// Processor owns the work a pool runs.
type Processor[T Task] interface {
	// Checkout returns the next task, or ErrNoWorkAvailable. It must be safe
	// for concurrent workers.
	Checkout(ctx context.Context, workerID string) (T, error)

	Process(ctx context.Context, task T) (T, error)

	// Complete is called after Process succeeds.
	Complete(ctx context.Context, task T, processingTimeMS int) error

	// Fail is called once after Process gives up.
	Fail(ctx context.Context, task T, err error) error
}

// WorkFunc is one checkout-to-completion cycle of a worker.
type WorkFunc func(ctx context.Context, workerID string) error

// Middleware wraps a WorkFunc.
type Middleware func(WorkFunc) WorkFunc

// PreProcessHook runs after Checkout and before Process.
type PreProcessHook[T Task] func(ctx context.Context, task T) error

// PostProcessHook runs after Process and before Complete or Fail.
type PostProcessHook[T Task] func(ctx context.Context, task T, err error) error
