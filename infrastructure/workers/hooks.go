package workers

import (
	"context"
	"sync"
	"time"

	"github.com/jrazmi/smarttasks/sdk/logger"
)

// AddPreProcessHooks registers hooks run between Checkout and Process.
func (wp *WorkerPool[T]) AddPreProcessHooks(hooks ...PreProcessHook[T]) {
	wp.preProcessHooks = append(wp.preProcessHooks, hooks...)
}

// AddPostProcessHooks registers hooks run between Process and Complete/Fail.
func (wp *WorkerPool[T]) AddPostProcessHooks(hooks ...PostProcessHook[T]) {
	wp.postProcessHooks = append(wp.postProcessHooks, hooks...)
}

type hookStartKey struct{}

// TimingHooks log how long each task spent in Process. Both hooks must be
// registered on the same pool.
func TimingHooks[T Task](log *logger.Logger) (PreProcessHook[T], PostProcessHook[T]) {
	var starts syncMap[string, time.Time]

	pre := func(ctx context.Context, task T) error {
		starts.Store(task.GetID(), time.Now())
		return nil
	}
	post := func(ctx context.Context, task T, err error) error {
		start, ok := starts.LoadAndDelete(task.GetID())
		if !ok {
			return nil
		}
		log.DebugContext(ctx, "task timing",
			"task_id", task.GetID(),
			"took", time.Since(start).String(),
			"failed", err != nil,
		)
		return nil
	}
	return pre, post
}

// syncMap is a typed sync.Map.
type syncMap[K comparable, V any] struct {
	m sync.Map
}

func (s *syncMap[K, V]) Store(k K, v V) {
	s.m.Store(k, v)
}

func (s *syncMap[K, V]) LoadAndDelete(k K) (V, bool) {
	v, ok := s.m.LoadAndDelete(k)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}
