// Package fopbridge provides support for query paging with unified response types.
package fopbridge

import (
	"encoding/json"
	"fmt"

	"github.com/jrazmi/smarttasks/core/scaffolding/fop"
)

// PaginatedResponse is the body of every paged listing.
type PaginatedResponse[T any] struct {
	Records  []T                   `json:"records"`
	PageInfo fop.PageInfoIntCursor `json:"pageInfo"`
}

// Encode implements the encoder interface for the paginated response
func (p PaginatedResponse[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(p)
	return data, "application/json", err
}

// NewPaginatedResponse builds the response for one window of records out of
// total matching rows.
func NewPaginatedResponse[T any](records []T, page fop.PageIntCursor, total int) PaginatedResponse[T] {
	if records == nil {
		records = []T{}
	}
	return PaginatedResponse[T]{
		Records:  records,
		PageInfo: fop.NewPageInfo(page, len(records), total),
	}
}

// ParsePage reads the limit and cursor query values. Errors are worded for
// clients.
func ParsePage(limit, cursor string) (fop.PageIntCursor, error) {
	page, err := fop.ParsePageIntCursor(limit, cursor)
	if err != nil {
		return fop.PageIntCursor{}, fmt.Errorf("invalid page: %w", err)
	}
	return page, nil
}

// NonPaginatedRecords wraps a list that is always returned whole.
type NonPaginatedRecords[T any] struct {
	Records []T `json:"records"`
}

func NewNonPaginatedRecords[T any](records []T) NonPaginatedRecords[T] {
	if records == nil {
		records = []T{}
	}
	return NonPaginatedRecords[T]{Records: records}
}

func (n NonPaginatedRecords[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(n)
	return data, "application/json", err
}
