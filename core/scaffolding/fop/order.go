// Package fop provides filter, order and pagination primitives shared by
// repositories and the bridges that parse them from requests.
package fop

import (
	"errors"
	"fmt"
	"strings"
)

// Set of directions for data ordering.
const (
	ASC  = "ASC"
	DESC = "DESC"
)

var directions = map[string]string{
	"ASC":  ASC,
	"DESC": DESC,
}

// By represents a field used to order by and direction.
type By struct {
	Field     string
	Direction string
}

// NewBy constructs a new By value with no checks.
func NewBy(field string, direction string) By {
	return By{Field: field, Direction: direction}
}

// Descending reports whether the order runs high to low.
func (b By) Descending() bool {
	return b.Direction == DESC
}

// ParseOrder parses "field" or "field,direction" against the allowed field
// mapping. An empty string yields defaultOrder.
func ParseOrder(fieldMappings map[string]string, orderBy string, defaultOrder By) (By, error) {
	if orderBy == "" {
		return defaultOrder, nil
	}

	orderParts := strings.Split(orderBy, ",")

	orgFieldName := strings.TrimSpace(orderParts[0])
	fieldName, exists := fieldMappings[orgFieldName]
	if !exists {
		return By{}, fmt.Errorf("unknown order field %q", orgFieldName)
	}

	switch len(orderParts) {
	case 1:
		return NewBy(fieldName, ASC), nil

	case 2:
		direction := strings.ToUpper(strings.TrimSpace(orderParts[1]))
		dir, exists := directions[direction]
		if !exists {
			return By{}, fmt.Errorf("unknown direction %q", orderParts[1])
		}
		return NewBy(fieldName, dir), nil

	default:
		return By{}, errors.New("unknown order field")
	}
}
