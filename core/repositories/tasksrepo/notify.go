package tasksrepo

import (
	"context"

	"github.com/jrazmi/smarttasks/sdk/logger"
)

// User-facing notification messages.
const (
	MsgTaskAdded          = "Task added!"
	MsgTaskUpdated        = "Task updated!"
	MsgTaskDeleted        = "Task deleted!"
	MsgSubtasksGenerated  = "Subtasks generated!"
	MsgSubtasksFailed     = "Failed to generate subtasks."
	MsgGeneratingSubtasks = "Generating subtasks..."
)

// Notifier surfaces the outcome of store operations to the user.
type Notifier interface {
	Info(ctx context.Context, msg string)
	Success(ctx context.Context, msg string)
	Failure(ctx context.Context, msg string)
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) LogNotifier {
	return LogNotifier{log: log}
}

func (n LogNotifier) Info(ctx context.Context, msg string) {
	n.log.InfoContext(ctx, "notify", "kind", "info", "message", msg)
}

func (n LogNotifier) Success(ctx context.Context, msg string) {
	n.log.InfoContext(ctx, "notify", "kind", "success", "message", msg)
}

func (n LogNotifier) Failure(ctx context.Context, msg string) {
	n.log.WarnContext(ctx, "notify", "kind", "failure", "message", msg)
}
