package tasksrepobridge

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/jrazmi/smarttasks/bridge/scaffolding/errs"
	"github.com/jrazmi/smarttasks/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/core/suggestions"
	"github.com/jrazmi/smarttasks/infrastructure/web"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

// Config holds configuration for the Task bridge
type Config struct {
	Log        *logger.Logger
	Repository *tasksrepo.Repository
	// Queue is optional. Without it ?async=true requests are rejected.
	Queue      Enqueuer
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for Task
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Log, cfg.Repository, cfg.Queue)
	mw := cfg.Middleware

	group.GET("/tasks", b.httpList, mw...)
	group.GET("/tasks/suggestions/inflight", b.httpInFlight, mw...)
	group.GET("/tasks/{task_id}", b.httpGetByID, mw...)
	group.POST("/tasks", b.httpCreate, mw...)
	group.PUT("/tasks/{task_id}", b.httpUpdate, mw...)
	group.PATCH("/tasks/{task_id}", b.httpUpdate, mw...)
	group.DELETE("/tasks/{task_id}", b.httpDelete, mw...)
	group.POST("/tasks/{task_id}/suggestions", b.httpSuggest, mw...)
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	qp := parseQueryParams(r)

	filter, err := parseFilter(qp)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}
	orderBy, err := parseOrderBy(qp.Order)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}
	page, err := fopbridge.ParsePage(qp.Limit, qp.Cursor)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tasks, total, err := b.tasksRepository.List(ctx, filter, orderBy, page)
	if err != nil {
		return toAppError(err)
	}

	return fopbridge.NewPaginatedResponse(b.marshalList(tasks), page, total)
}

func (b *bridge) httpInFlight(ctx context.Context, r *http.Request) web.Encoder {
	return fopbridge.NewNonPaginatedRecords(b.tasksRepository.InFlightIDs())
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	path := parsePath(r)

	task, err := b.tasksRepository.Get(ctx, path.TaskID)
	if err != nil {
		return toAppError(err)
	}
	return fopbridge.NewRecordResponse(b.marshal(task))
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input CreateTaskInput
	if err := web.Decode(r, &input); err != nil {
		return errs.Newf(errs.InvalidArgument, "decode: %s", err)
	}

	task, err := b.tasksRepository.Create(ctx, MarshalCreateToRepository(input))
	if err != nil {
		return toAppError(err)
	}
	return fopbridge.NewCreatedRecordResponse(b.marshal(task))
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	path := parsePath(r)

	var input UpdateTaskInput
	if err := web.Decode(r, &input); err != nil {
		return errs.Newf(errs.InvalidArgument, "decode: %s", err)
	}

	task, err := b.tasksRepository.Update(ctx, path.TaskID, MarshalUpdateToRepository(input))
	if err != nil {
		return toAppError(err)
	}
	return fopbridge.NewRecordResponse(b.marshal(task))
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	path := parsePath(r)

	if err := b.tasksRepository.Delete(ctx, path.TaskID); err != nil {
		return toAppError(err)
	}
	return nil
}

// httpSuggest replaces the task's subtasks with generated ones. With
// ?async=true the request is queued and answered with 202.
func (b *bridge) httpSuggest(ctx context.Context, r *http.Request) web.Encoder {
	path := parsePath(r)

	async, _ := strconv.ParseBool(web.QueryParam(r, "async"))
	if !async {
		// a started request runs to completion even if the client goes away;
		// the suggestion client's own timeout still bounds it
		task, err := b.tasksRepository.RequestSuggestions(context.WithoutCancel(ctx), path.TaskID)
		if err != nil {
			return toAppError(err)
		}
		return fopbridge.NewRecordResponse(b.marshal(task))
	}

	if b.queue == nil {
		return errs.Newf(errs.Unimplemented, "background suggestions are not enabled")
	}
	if err := b.queue.Enqueue(ctx, path.TaskID); err != nil {
		if errors.Is(err, suggestions.ErrQueueFull) {
			return errs.New(errs.Unavailable, err)
		}
		return toAppError(err)
	}

	b.log.InfoContext(ctx, "suggestion queued", "task_id", path.TaskID)
	return fopbridge.NewAccepted(tasksrepo.MsgGeneratingSubtasks)
}

// toAppError maps store errors onto web error codes.
func toAppError(err error) *errs.Error {
	var fe tasksrepo.FieldErrors
	switch {
	case errors.As(err, &fe):
		return errs.NewWithFields(errs.InvalidArgument, err, fe.Fields())
	case errors.Is(err, tasksrepo.ErrNotFound):
		return errs.Newf(errs.NotFound, "task not found")
	case errors.Is(err, tasksrepo.ErrSuggestionInFlight):
		return errs.New(errs.Conflict, tasksrepo.ErrSuggestionInFlight)
	case errors.Is(err, tasksrepo.ErrSuggestionFailed):
		// the cause is logged by the store and stays server side
		return errs.Newf(errs.Internal, "Failed to generate subtasks")
	case errors.Is(err, context.DeadlineExceeded):
		return errs.New(errs.DeadlineExceeded, err)
	default:
		return errs.New(errs.InternalOnlyLog, err)
	}
}
