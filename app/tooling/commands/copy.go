package commands

import (
	"context"
	"fmt"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

// CopyTasks reads the whole collection from src and writes it to dst,
// replacing whatever dst held. It returns the number of tasks copied.
func CopyTasks(ctx context.Context, log *logger.Logger, src, dst tasksrepo.Storer) (int, error) {
	tasks, err := src.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading source: %w", err)
	}
	if tasks == nil {
		tasks = tasksrepo.Collection{}
	}

	if err := dst.Save(ctx, tasks); err != nil {
		return 0, fmt.Errorf("writing destination: %w", err)
	}

	log.InfoContext(ctx, "tasks copied", "count", len(tasks))
	return len(tasks), nil
}
