package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/core/scaffolding/fop"
	"github.com/jrazmi/smarttasks/sdk/validation"
)

// taskView is the printed shape of a task.
type taskView struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	DueDate     string   `json:"dueDate" yaml:"dueDate"`
	Status      string   `json:"status" yaml:"status"`
	Subtasks    []string `json:"subtasks" yaml:"subtasks"`
}

type pageView struct {
	Page    int  `json:"page" yaml:"page"`
	Limit   int  `json:"limit" yaml:"limit"`
	Total   int  `json:"total" yaml:"total"`
	HasPrev bool `json:"hasPrev" yaml:"hasPrev"`
	HasNext bool `json:"hasNext" yaml:"hasNext"`
}

type listView struct {
	Records  []taskView `json:"records" yaml:"records"`
	PageInfo pageView   `json:"pageInfo" yaml:"pageInfo"`
}

func toView(t tasksrepo.Task) taskView {
	subtasks := t.Subtasks
	if subtasks == nil {
		subtasks = []string{}
	}
	return taskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      string(t.Status),
		Subtasks:    subtasks,
	}
}

func toViews(tasks []tasksrepo.Task) []taskView {
	views := make([]taskView, len(tasks))
	for i, t := range tasks {
		views[i] = toView(t)
	}
	return views
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	}
}

func statusColored(s tasksrepo.Status) string {
	switch s {
	case tasksrepo.StatusCompleted:
		return color.New(color.FgHiGreen).Sprint(s)
	case tasksrepo.StatusPending:
		return color.New(color.FgHiYellow).Sprint(s)
	default:
		return string(s)
	}
}

func (c *cli) printTask(w io.Writer, t tasksrepo.Task) error {
	if c.output != outputTable {
		return encode(w, c.output, toView(t))
	}

	titleStyle := color.New(color.FgCyan, color.Bold).SprintFunc()
	fieldStyle := color.New(color.FgHiGreen).SprintFunc()

	fmt.Fprintf(w, "[%v] %v\n", titleStyle(t.ID), titleStyle(t.Title))
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "%s: %v\n", validation.Heading("description"), fieldStyle(t.Description))
	fmt.Fprintf(w, "%s: %v\n", validation.Heading("dueDate"), fieldStyle(t.DueDate))
	fmt.Fprintf(w, "%s: %v\n", validation.Heading("status"), statusColored(t.Status))
	fmt.Fprintf(w, "%s:\n", validation.Heading("subtasks"))
	if len(t.Subtasks) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, s := range t.Subtasks {
		fmt.Fprintf(w, "  - %s\n", s)
	}
	return nil
}

func (c *cli) printTasks(w io.Writer, tasks []tasksrepo.Task, pageNum int, info fop.PageInfoIntCursor) error {
	if c.output != outputTable {
		return encode(w, c.output, listView{
			Records: toViews(tasks),
			PageInfo: pageView{
				Page:    pageNum,
				Limit:   info.Limit,
				Total:   info.Total,
				HasPrev: info.HasPrev,
				HasNext: info.HasNext,
			},
		})
	}

	if info.Total == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return nil
	}
	if len(tasks) == 0 {
		fmt.Fprintf(w, "No tasks on page %d.\n", pageNum)
		return nil
	}

	fields := []string{"id", "title", "description", "dueDate", "status", "subtasks"}
	header := make(table.Row, len(fields))
	for i, f := range fields {
		header[i] = text.FgGreen.Sprintf("%s", validation.Heading(f))
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleDouble)
	t.Style().Options.SeparateRows = false
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 40},
		{Number: 6, WidthMax: 40},
	})

	t.AppendHeader(header)
	for _, task := range tasks {
		t.AppendRow(table.Row{
			task.ID,
			task.Title,
			task.Description,
			task.DueDate,
			statusColored(task.Status),
			strings.Join(task.Subtasks, ", "),
		})
	}

	pages := (info.Total + info.Limit - 1) / info.Limit
	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("page %d/%d", pageNum, pages), fmt.Sprintf("%d tasks", info.Total)})
	t.Render()
	return nil
}
