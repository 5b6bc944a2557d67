package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
)

func newAddCmd(c *cli) *cobra.Command {
	var (
		input  tasksrepo.CreateTask
		status string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a pending task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Status = tasksrepo.Status(status)
			task, err := c.repo.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			return c.printTask(cmd.OutOrStdout(), task)
		},
	}

	cmd.Flags().StringVarP(&input.Title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&input.Description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&input.DueDate, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringVar(&status, "status", string(tasksrepo.StatusPending), "pending or completed")
	return cmd
}

func newEditCmd(c *cli) *cobra.Command {
	var (
		title, description, due, status string
		subtasks                        []string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input tasksrepo.UpdateTask
			flags := cmd.Flags()
			if flags.Changed("title") {
				input.Title = &title
			}
			if flags.Changed("description") {
				input.Description = &description
			}
			if flags.Changed("due") {
				input.DueDate = &due
			}
			if flags.Changed("status") {
				s := tasksrepo.Status(status)
				input.Status = &s
			}
			if flags.Changed("subtasks") {
				input.Subtasks = &subtasks
			}
			if input == (tasksrepo.UpdateTask{}) {
				return errors.New("nothing to change, pass at least one field flag")
			}

			task, err := c.repo.Update(cmd.Context(), args[0], input)
			if err != nil {
				return taskError(args[0], err)
			}
			return c.printTask(cmd.OutOrStdout(), task)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&due, "due", "", "new due date, YYYY-MM-DD")
	cmd.Flags().StringVar(&status, "status", "", "pending or completed")
	cmd.Flags().StringSliceVar(&subtasks, "subtasks", nil, "replace the subtasks, comma separated")
	return cmd
}

func newRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.repo.Delete(cmd.Context(), args[0])
		},
	}
}

func newShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task with its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := c.repo.Get(cmd.Context(), args[0])
			if err != nil {
				return taskError(args[0], err)
			}
			return c.printTask(cmd.OutOrStdout(), task)
		},
	}
}

func newSuggestCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <id>",
		Short: "Replace a task's subtasks with generated suggestions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := c.repo.RequestSuggestions(cmd.Context(), args[0])
			if err != nil {
				return taskError(args[0], err)
			}
			return c.printTask(cmd.OutOrStdout(), task)
		},
	}
}

func taskError(id string, err error) error {
	if errors.Is(err, tasksrepo.ErrNotFound) {
		return fmt.Errorf("task %s: %w", id, err)
	}
	return err
}
