package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/core/scaffolding/fop"
	"github.com/jrazmi/smarttasks/sdk/validation"
)

type listFlags struct {
	search    string
	status    string
	dueBefore string
	dueAfter  string
	order     string
	page      int
	limit     int
}

func newLsCmd(c *cli) *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks a page at a time",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := f.filter()
			if err != nil {
				return err
			}
			orderBy, err := fop.ParseOrder(tasksrepo.OrderByFields, f.order, tasksrepo.DefaultOrderBy)
			if err != nil {
				return err
			}
			page, err := f.pageRequest()
			if err != nil {
				return err
			}

			tasks, total, err := c.repo.List(cmd.Context(), filter, orderBy, page)
			if err != nil {
				return err
			}
			return c.printTasks(cmd.OutOrStdout(), tasks, f.page, fop.NewPageInfo(page, len(tasks), total))
		},
	}

	cmd.Flags().StringVarP(&f.search, "search", "s", "", "case-insensitive title search")
	cmd.Flags().StringVar(&f.status, "status", "all", "all, pending or completed")
	cmd.Flags().StringVar(&f.dueBefore, "due-before", "", "only tasks due on or before this date")
	cmd.Flags().StringVar(&f.dueAfter, "due-after", "", "only tasks due on or after this date")
	cmd.Flags().StringVar(&f.order, "order", "", `sort as "field[,ASC|DESC]": title, description, dueDate or status`)
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "page number, starting at 1")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", fop.DefaultPageLimit, "tasks per page")
	return cmd
}

func (f listFlags) filter() (tasksrepo.QueryFilter, error) {
	filter := tasksrepo.QueryFilter{
		SearchTerm: validation.StringPtrIfNotEmpty(f.search),
	}
	if s := strings.ToLower(strings.TrimSpace(f.status)); s != "" && s != "all" {
		status, err := tasksrepo.ParseStatus(s)
		if err != nil {
			return tasksrepo.QueryFilter{}, err
		}
		filter.Status = &status
	}
	if f.dueBefore != "" {
		d, err := validation.NormalizeDate(f.dueBefore)
		if err != nil {
			return tasksrepo.QueryFilter{}, fmt.Errorf("due-before: %w", err)
		}
		filter.DueBefore = &d
	}
	if f.dueAfter != "" {
		d, err := validation.NormalizeDate(f.dueAfter)
		if err != nil {
			return tasksrepo.QueryFilter{}, fmt.Errorf("due-after: %w", err)
		}
		filter.DueAfter = &d
	}
	return filter, nil
}

// pageRequest turns the 1-based page number into an offset cursor.
func (f listFlags) pageRequest() (fop.PageIntCursor, error) {
	if f.page < 1 {
		return fop.PageIntCursor{}, errors.New("page must be 1 or more")
	}
	return fop.ParsePageIntCursor(strconv.Itoa(f.limit), strconv.Itoa((f.page-1)*f.limit))
}
