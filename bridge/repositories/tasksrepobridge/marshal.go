package tasksrepobridge

import (
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
)

// MarshalToBridge converts a store task to its client shape.
func MarshalToBridge(task tasksrepo.Task, suggesting bool) Task {
	subtasks := task.Subtasks
	if subtasks == nil {
		subtasks = []string{}
	}
	return Task{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Status:      task.Status,
		Subtasks:    subtasks,
		Suggesting:  suggesting,
	}
}

func (b *bridge) marshal(task tasksrepo.Task) Task {
	return MarshalToBridge(task, b.tasksRepository.InFlight(task.ID))
}

func (b *bridge) marshalList(tasks []tasksrepo.Task) []Task {
	inFlight := make(map[string]bool)
	for _, id := range b.tasksRepository.InFlightIDs() {
		inFlight[id] = true
	}

	out := make([]Task, len(tasks))
	for i, task := range tasks {
		out[i] = MarshalToBridge(task, inFlight[task.ID])
	}
	return out
}

// MarshalCreateToRepository converts bridge create input to repository input
func MarshalCreateToRepository(input CreateTaskInput) tasksrepo.CreateTask {
	return tasksrepo.CreateTask{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Status:      tasksrepo.Status(input.Status),
	}
}

// MarshalUpdateToRepository converts bridge update input to repository input
func MarshalUpdateToRepository(input UpdateTaskInput) tasksrepo.UpdateTask {
	update := tasksrepo.UpdateTask{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Subtasks:    input.Subtasks,
	}
	if input.Status != nil {
		status := tasksrepo.Status(*input.Status)
		update.Status = &status
	}
	return update
}
