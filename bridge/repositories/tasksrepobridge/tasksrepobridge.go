// Package tasksrepobridge exposes the task store over HTTP.
package tasksrepobridge

import (
	"context"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

// Enqueuer schedules a suggestion request to run in the background. The task
// must read as in flight from the moment Enqueue returns nil.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskID string) error
}

type bridge struct {
	log             *logger.Logger
	tasksRepository *tasksrepo.Repository
	queue           Enqueuer
}

func newBridge(log *logger.Logger, tasksRepository *tasksrepo.Repository, queue Enqueuer) *bridge {
	return &bridge{
		log:             log,
		tasksRepository: tasksRepository,
		queue:           queue,
	}
}
