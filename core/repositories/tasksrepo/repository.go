// Package tasksrepo is the task store: the single authoritative in-memory
// task collection, mirrored to its Storer after every mutation.
package tasksrepo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jrazmi/smarttasks/core/repositories"
	"github.com/jrazmi/smarttasks/core/scaffolding/fop"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

var (
	ErrNotFound = repositories.ErrNotFound
	ErrPersist  = repositories.ErrPersist
	// ErrSuggestionFailed is the single generic failure of a suggestion request.
	ErrSuggestionFailed = errors.New("failed to generate subtasks")
	// ErrSuggestionInFlight rejects a second request for a task that is
	// already waiting on suggestions.
	ErrSuggestionInFlight = errors.New("suggestion already in flight for task")
	// ErrNotReserved means RunReserved was called without a Reserve.
	ErrNotReserved = errors.New("no suggestion reserved for task")
)

// Storer persists the whole task collection.
type Storer = repositories.EntryStorer[Collection]

// Suggester decomposes a task into short subtask strings.
type Suggester interface {
	Suggest(ctx context.Context, title, description string) ([]string, error)
}

// Repository owns the task collection.
type Repository struct {
	log       *logger.Logger
	storer    Storer
	suggester Suggester
	notifier  Notifier
	now       func() time.Time
	newID     func() string

	mu       sync.Mutex
	tasks    Collection
	inFlight map[string]struct{}
}

// Option configures a Repository.
type Option func(*Repository)

func WithSuggester(s Suggester) Option {
	return func(r *Repository) {
		r.suggester = s
	}
}

func WithNotifier(n Notifier) Option {
	return func(r *Repository) {
		r.notifier = n
	}
}

// WithClock overrides the clock used for due date checks.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// WithIDGenerator overrides uuid generation.
func WithIDGenerator(fn func() string) Option {
	return func(r *Repository) {
		r.newID = fn
	}
}

// NewRepository creates a task repository. Call Load before use.
func NewRepository(log *logger.Logger, storer Storer, opts ...Option) *Repository {
	r := &Repository{
		log:      log,
		storer:   storer,
		notifier: NewLogNotifier(log),
		now:      time.Now,
		newID:    uuid.NewString,
		tasks:    Collection{},
		inFlight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the in-memory collection with the persisted one. Missing or
// unreadable data yields an empty collection; the problem is only logged.
// It returns the number of tasks loaded.
func (r *Repository) Load(ctx context.Context) int {
	loaded, err := r.storer.Load(ctx)
	if err != nil {
		r.log.WarnContext(ctx, "loading tasks, starting empty", "error", err)
		loaded = nil
	}

	tasks := make(Collection, 0, len(loaded))
	seen := make(map[string]bool, len(loaded))
	for _, t := range loaded {
		if t.ID == "" || seen[t.ID] {
			r.log.WarnContext(ctx, "skipping task with missing or duplicate id", "task_id", t.ID)
			continue
		}
		seen[t.ID] = true
		tasks = append(tasks, t.clone())
	}

	r.mu.Lock()
	r.tasks = tasks
	r.mu.Unlock()

	r.log.InfoContext(ctx, "tasks loaded", "count", len(tasks))
	return len(tasks)
}

// persistLocked saves next and only then makes it the current collection, so
// a failed write leaves memory as it was.
func (r *Repository) persistLocked(ctx context.Context, next Collection) error {
	if err := r.storer.Save(ctx, next.Clone()); err != nil {
		r.log.ErrorContext(ctx, "saving tasks", "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	r.tasks = next
	return nil
}

// Create validates the draft and appends a new pending task with no subtasks.
func (r *Repository) Create(ctx context.Context, input CreateTask) (Task, error) {
	input, err := input.Validate(r.now())
	if err != nil {
		return Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for r.tasks.indexOf(id) >= 0 {
		id = r.newID()
	}

	task := Task{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Status:      input.Status,
		Subtasks:    []string{},
	}

	next := append(r.tasks.Clone(), task)
	if err := r.persistLocked(ctx, next); err != nil {
		return Task{}, err
	}

	r.log.InfoContext(ctx, "task created", "task_id", task.ID)
	r.notifier.Success(ctx, MsgTaskAdded)
	return task.clone(), nil
}

// Update applies the present fields of input to the task with id. An unknown
// id changes nothing and reports ErrNotFound.
func (r *Repository) Update(ctx context.Context, id string, input UpdateTask) (Task, error) {
	input, err := input.Validate(r.now())
	if err != nil {
		return Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.tasks.indexOf(id)
	if idx < 0 {
		return Task{}, ErrNotFound
	}

	next := r.tasks.Clone()
	next[idx] = input.applyTo(next[idx])
	if err := r.persistLocked(ctx, next); err != nil {
		return Task{}, err
	}

	r.log.InfoContext(ctx, "task updated", "task_id", id)
	r.notifier.Success(ctx, MsgTaskUpdated)
	return next[idx].clone(), nil
}

// Delete removes the task with id. Deleting an unknown id is a no-op.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.tasks.indexOf(id)
	if idx < 0 {
		return nil
	}

	next := slices.Delete(r.tasks.Clone(), idx, idx+1)
	if err := r.persistLocked(ctx, next); err != nil {
		return err
	}

	r.log.InfoContext(ctx, "task deleted", "task_id", id)
	r.notifier.Success(ctx, MsgTaskDeleted)
	return nil
}

// Get returns a copy of the task with id.
func (r *Repository) Get(ctx context.Context, id string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.tasks.indexOf(id)
	if idx < 0 {
		return Task{}, ErrNotFound
	}
	return r.tasks[idx].clone(), nil
}

// List filters, orders and pages the collection. It also returns the number
// of tasks matching the filter before paging.
func (r *Repository) List(ctx context.Context, filter QueryFilter, orderBy fop.By, page fop.PageIntCursor) ([]Task, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.Lock()
	matched := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if filter.matches(t) {
			matched = append(matched, t.clone())
		}
	}
	r.mu.Unlock()

	sortTasks(matched, orderBy)
	return fop.Paginate(matched, page), len(matched), nil
}

// Count returns the number of tasks matching filter.
func (r *Repository) Count(ctx context.Context, filter QueryFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tasks {
		if filter.matches(t) {
			n++
		}
	}
	return n, nil
}

// All returns a copy of the whole collection in insertion order.
func (r *Repository) All() Collection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks.Clone()
}

// InFlight reports whether a suggestion request for id is running.
func (r *Repository) InFlight(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inFlight[id]
	return ok
}

// InFlightIDs lists the tasks currently waiting on suggestions.
func (r *Repository) InFlightIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.inFlight))
	for id := range r.inFlight {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// RequestSuggestions asks the Suggester to break the task into subtasks and,
// on success, replaces the task's subtasks with the result. Any failure
// leaves the task untouched and is reported once as ErrSuggestionFailed.
// The store lock is not held while the Suggester runs.
func (r *Repository) RequestSuggestions(ctx context.Context, id string) (Task, error) {
	if err := r.Reserve(ctx, id); err != nil {
		return Task{}, err
	}
	return r.RunReserved(ctx, id)
}

// Reserve marks id as in flight before its suggestions are requested, so a
// queued request already blocks a second one. Every successful Reserve must
// be followed by RunReserved or Release.
func (r *Repository) Reserve(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tasks.indexOf(id) < 0 {
		return ErrNotFound
	}
	if _, busy := r.inFlight[id]; busy {
		return ErrSuggestionInFlight
	}
	r.inFlight[id] = struct{}{}
	return nil
}

// Release drops a reservation that will not be run.
func (r *Repository) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, id)
}

// RunReserved requests suggestions for a task reserved with Reserve and
// clears the reservation when done.
func (r *Repository) RunReserved(ctx context.Context, id string) (Task, error) {
	r.mu.Lock()
	if _, ok := r.inFlight[id]; !ok {
		r.mu.Unlock()
		return Task{}, ErrNotReserved
	}
	idx := r.tasks.indexOf(id)
	if idx < 0 {
		delete(r.inFlight, id)
		r.mu.Unlock()
		return Task{}, ErrNotFound
	}
	title, description := r.tasks[idx].Title, r.tasks[idx].Description
	r.mu.Unlock()

	r.notifier.Info(ctx, MsgGeneratingSubtasks)
	subtasks, err := r.suggest(ctx, title, description)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, id)

	if err != nil {
		r.log.ErrorContext(ctx, "generating subtasks", "task_id", id, "error", err)
		r.notifier.Failure(ctx, MsgSubtasksFailed)
		return Task{}, suggestionFailed(err)
	}

	idx = r.tasks.indexOf(id)
	if idx < 0 {
		r.log.WarnContext(ctx, "task removed while suggestions were generated, dropping result", "task_id", id)
		return Task{}, ErrNotFound
	}

	next := r.tasks.Clone()
	next[idx].Subtasks = slices.Clone(subtasks)
	if err := r.persistLocked(ctx, next); err != nil {
		r.notifier.Failure(ctx, MsgSubtasksFailed)
		return Task{}, suggestionFailed(err)
	}

	r.log.InfoContext(ctx, "subtasks generated", "task_id", id, "count", len(subtasks))
	r.notifier.Success(ctx, MsgSubtasksGenerated)
	return next[idx].clone(), nil
}

// suggestionFailed wraps err in ErrSuggestionFailed unless it already is one.
func suggestionFailed(err error) error {
	if errors.Is(err, ErrSuggestionFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrSuggestionFailed, err)
}

func (r *Repository) suggest(ctx context.Context, title, description string) ([]string, error) {
	if r.suggester == nil {
		return nil, errors.New("no suggester configured")
	}
	subtasks, err := r.suggester.Suggest(ctx, title, description)
	if err != nil {
		return nil, err
	}
	if len(subtasks) == 0 {
		return nil, errors.New("no subtasks returned")
	}
	return subtasks, nil
}
