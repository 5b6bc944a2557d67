package tasksrepo

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jrazmi/smarttasks/sdk/validation"
)

// Status is the completion state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ParseStatus maps user input to a Status. Empty input is pending.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusPending:
		return StatusPending, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Task is one user-defined unit of work. The JSON shape is the persisted
// layout.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate"`
	Status      Status   `json:"status"`
	Subtasks    []string `json:"subtasks"`
}

// GetID satisfies workers.Task.
func (t Task) GetID() string {
	return t.ID
}

func (t Task) clone() Task {
	t.Subtasks = slices.Clone(t.Subtasks)
	if t.Subtasks == nil {
		t.Subtasks = []string{}
	}
	return t
}

// Collection is the full set of tasks as persisted.
type Collection []Task

// Clone deep-copies the collection.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, t := range c {
		out[i] = t.clone()
	}
	return out
}

func (c Collection) indexOf(id string) int {
	return slices.IndexFunc(c, func(t Task) bool { return t.ID == id })
}

// =============================================================================
// Inputs

// CreateTask is a validated draft for a new task.
type CreateTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Status      Status `json:"status"`
}

// Validate checks the draft against now and returns the normalised draft.
func (c CreateTask) Validate(now time.Time) (CreateTask, error) {
	var fe FieldErrors

	if validation.Blank(c.Title) {
		fe.Add("title", "must not be blank")
	}
	if validation.Blank(c.Description) {
		fe.Add("description", "must not be blank")
	}

	due, err := validateDueDate(c.DueDate, now)
	if err != nil {
		fe.Add("dueDate", err.Error())
	}
	c.DueDate = due

	status, err := ParseStatus(string(c.Status))
	if err != nil {
		fe.Add("status", err.Error())
	}
	c.Status = status

	if len(fe) > 0 {
		return CreateTask{}, fe
	}
	return c, nil
}

// UpdateTask carries the fields to change. Nil fields are left untouched.
type UpdateTask struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Subtasks    *[]string `json:"subtasks,omitempty"`
}

// Validate checks the present fields and returns the normalised update.
func (u UpdateTask) Validate(now time.Time) (UpdateTask, error) {
	var fe FieldErrors

	if u.Title != nil && validation.Blank(*u.Title) {
		fe.Add("title", "must not be blank")
	}
	if u.Description != nil && validation.Blank(*u.Description) {
		fe.Add("description", "must not be blank")
	}
	if u.DueDate != nil {
		due, err := validateDueDate(*u.DueDate, now)
		if err != nil {
			fe.Add("dueDate", err.Error())
		}
		u.DueDate = &due
	}
	if u.Status != nil {
		status, err := ParseStatus(string(*u.Status))
		if err != nil || *u.Status == "" {
			fe.Add("status", fmt.Sprintf("unknown status %q", *u.Status))
		}
		u.Status = &status
	}
	if u.Subtasks != nil {
		for _, s := range *u.Subtasks {
			if validation.Blank(s) {
				fe.Add("subtasks", "must not contain blank items")
				break
			}
		}
	}

	if len(fe) > 0 {
		return UpdateTask{}, fe
	}
	return u, nil
}

func (u UpdateTask) applyTo(t Task) Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.DueDate != nil {
		t.DueDate = *u.DueDate
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Subtasks != nil {
		t.Subtasks = slices.Clone(*u.Subtasks)
	}
	return t
}

func validateDueDate(raw string, now time.Time) (string, error) {
	if validation.Blank(raw) {
		return "", errors.New("is required")
	}
	d, err := validation.ParseFlexibleDate(strings.TrimSpace(raw))
	if err != nil {
		return "", errors.New("must be a date (YYYY-MM-DD)")
	}
	if !validation.OnOrAfter(d, now) {
		return "", errors.New("must be today or later")
	}
	return d.Format(validation.DateLayout), nil
}

// =============================================================================
// Validation errors

// ErrValidation matches any FieldErrors via errors.Is.
var ErrValidation = errors.New("validation failed")

// FieldError is a problem with one input field.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors collects every invalid field of an input.
type FieldErrors []FieldError

func (fe *FieldErrors) Add(field, msg string) {
	*fe = append(*fe, FieldError{Field: field, Err: msg})
}

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = f.Field + ": " + f.Err
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns the errors keyed by field name.
func (fe FieldErrors) Fields() map[string]string {
	m := make(map[string]string, len(fe))
	for _, f := range fe {
		m[f.Field] = f.Err
	}
	return m
}
