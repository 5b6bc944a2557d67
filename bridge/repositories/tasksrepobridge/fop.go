package tasksrepobridge

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/core/scaffolding/fop"
	"github.com/jrazmi/smarttasks/infrastructure/web"
	"github.com/jrazmi/smarttasks/sdk/validation"
)

// PARAMS
type QueryParams struct {
	Limit  string
	Cursor string
	Order  string
	// Filter fields
	SearchTerm string
	Status     string
	DueBefore  string
	DueAfter   string
}

func parseQueryParams(r *http.Request) QueryParams {
	q := r.URL.Query()
	return QueryParams{
		Limit:      q.Get("limit"),
		Cursor:     q.Get("cursor"),
		Order:      q.Get("order"),
		SearchTerm: q.Get("searchTerm"),
		Status:     q.Get("status"),
		DueBefore:  q.Get("dueBefore"),
		DueAfter:   q.Get("dueAfter"),
	}
}

// FILTER
func parseFilter(qp QueryParams) (tasksrepo.QueryFilter, error) {
	filter := tasksrepo.QueryFilter{}

	if term := strings.TrimSpace(qp.SearchTerm); term != "" {
		filter.SearchTerm = &term
	}

	// "all" is what the status dropdown sends for no filter
	if qp.Status != "" && !strings.EqualFold(qp.Status, "all") {
		status, err := tasksrepo.ParseStatus(qp.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	if qp.DueBefore != "" {
		d, err := validation.NormalizeDate(qp.DueBefore)
		if err != nil {
			return filter, fmt.Errorf("invalid dueBefore format: %s", qp.DueBefore)
		}
		filter.DueBefore = &d
	}
	if qp.DueAfter != "" {
		d, err := validation.NormalizeDate(qp.DueAfter)
		if err != nil {
			return filter, fmt.Errorf("invalid dueAfter format: %s", qp.DueAfter)
		}
		filter.DueAfter = &d
	}

	return filter, nil
}

// PATH
type queryPath struct {
	TaskID string
}

func parsePath(r *http.Request) queryPath {
	return queryPath{
		TaskID: web.Param(r, "task_id"),
	}
}

// ORDER
func parseOrderBy(order string) (fop.By, error) {
	return fop.ParseOrder(tasksrepo.OrderByFields, order, tasksrepo.DefaultOrderBy)
}
