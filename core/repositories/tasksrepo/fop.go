package tasksrepo

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jrazmi/smarttasks/core/scaffolding/fop"
)

// QueryFilter holds the available fields a task listing can be filtered on.
type QueryFilter struct {
	SearchTerm *string // case-insensitive substring of the title
	Status     *Status
	DueBefore  *string // YYYY-MM-DD, inclusive
	DueAfter   *string // YYYY-MM-DD, inclusive
}

func (f QueryFilter) matches(t Task) bool {
	if f.SearchTerm != nil && *f.SearchTerm != "" {
		if !strings.Contains(strings.ToLower(t.Title), strings.ToLower(*f.SearchTerm)) {
			return false
		}
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	// YYYY-MM-DD strings order the same way as the dates they spell
	if f.DueBefore != nil && t.DueDate > *f.DueBefore {
		return false
	}
	if f.DueAfter != nil && t.DueDate < *f.DueAfter {
		return false
	}
	return true
}

const (
	OrderByTitle       = "title"
	OrderByDescription = "description"
	OrderByDueDate     = "dueDate"
	OrderByStatus      = "status"
)

// OrderByFields maps accepted order keys to the field they sort on.
var OrderByFields = map[string]string{
	"title":       OrderByTitle,
	"description": OrderByDescription,
	"dueDate":     OrderByDueDate,
	"due_date":    OrderByDueDate,
	"status":      OrderByStatus,
}

// DefaultOrderBy lists the soonest due tasks first.
var DefaultOrderBy = fop.NewBy(OrderByDueDate, fop.ASC)

func sortTasks(tasks []Task, by fop.By) {
	key := func(t Task) string {
		switch by.Field {
		case OrderByTitle:
			return strings.ToLower(t.Title)
		case OrderByDescription:
			return strings.ToLower(t.Description)
		case OrderByStatus:
			return string(t.Status)
		default:
			return t.DueDate
		}
	}

	slices.SortStableFunc(tasks, func(a, b Task) int {
		c := cmp.Compare(key(a), key(b))
		if by.Descending() {
			return -c
		}
		return c
	})
}
