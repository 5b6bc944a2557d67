package tasksrepobridge

import "github.com/jrazmi/smarttasks/core/repositories/tasksrepo"

// Task is the task as served to clients. Suggesting is true while subtask
// suggestions for the task are being generated.
type Task struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	DueDate     string           `json:"dueDate"`
	Status      tasksrepo.Status `json:"status"`
	Subtasks    []string         `json:"subtasks"`
	Suggesting  bool             `json:"suggesting"`
}

// CreateTaskInput is the body of POST /tasks.
type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Status      string `json:"status"`
}

// UpdateTaskInput is the body of PUT /tasks/{task_id}. Omitted fields keep
// their current value.
type UpdateTaskInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	DueDate     *string   `json:"dueDate"`
	Status      *string   `json:"status"`
	Subtasks    *[]string `json:"subtasks"`
}
