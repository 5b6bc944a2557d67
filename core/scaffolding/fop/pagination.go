package fop

import (
	"fmt"
	"strconv"
)

const (
	// DefaultPageLimit matches the five rows per page the task table shows.
	DefaultPageLimit = 5
	MaxPageLimit     = 100
)

// PageIntCursor is an offset page request: Cursor rows are skipped and at
// most Limit rows are returned.
type PageIntCursor struct {
	Limit  int
	Cursor int
}

// PageInfoIntCursor describes the page that was returned.
type PageInfoIntCursor struct {
	HasPrev        bool `json:"hasPrev"`
	HasNext        bool `json:"hasNext"`
	Limit          int  `json:"limit"`
	PreviousCursor *int `json:"previousCursor,omitempty"`
	NextCursor     *int `json:"nextCursor,omitempty"`
	PageTotal      int  `json:"pageTotal"`
	Total          int  `json:"total"`
}

// ParsePageIntCursor parses the limit and offset cursor query values.
func ParsePageIntCursor(pageLimit string, cursor string) (PageIntCursor, error) {
	limit := DefaultPageLimit

	if pageLimit != "" {
		var err error
		limit, err = strconv.Atoi(pageLimit)
		if err != nil {
			return PageIntCursor{}, fmt.Errorf("page limit conversion: %w", err)
		}
	}
	if limit <= 0 {
		return PageIntCursor{}, fmt.Errorf("rows value too small, must be larger than 0")
	}
	if limit > MaxPageLimit {
		return PageIntCursor{}, fmt.Errorf("rows value too large, must be at most %d", MaxPageLimit)
	}

	offset := 0
	if cursor != "" {
		var err error
		offset, err = strconv.Atoi(cursor)
		if err != nil {
			return PageIntCursor{}, fmt.Errorf("cursor conversion: %w", err)
		}
		if offset < 0 {
			return PageIntCursor{}, fmt.Errorf("cursor must not be negative")
		}
	}

	return PageIntCursor{
		Limit:  limit,
		Cursor: offset,
	}, nil
}

// Paginate returns the window of items selected by page.
func Paginate[T any](items []T, page PageIntCursor) []T {
	if page.Limit <= 0 {
		page.Limit = DefaultPageLimit
	}
	if page.Cursor >= len(items) {
		return []T{}
	}
	end := min(page.Cursor+page.Limit, len(items))
	return items[page.Cursor:end]
}

// NewPageInfo computes page info for a window of pageLen rows out of total.
func NewPageInfo(page PageIntCursor, pageLen int, total int) PageInfoIntCursor {
	info := PageInfoIntCursor{
		Limit:     page.Limit,
		PageTotal: pageLen,
		Total:     total,
	}
	if page.Cursor > 0 {
		prev := max(page.Cursor-page.Limit, 0)
		info.HasPrev = true
		info.PreviousCursor = &prev
	}
	if next := page.Cursor + pageLen; next < total {
		info.HasNext = true
		info.NextCursor = &next
	}
	return info
}
