package validation

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONField stores a value as a JSON document in a database/sql column.
type JSONField[T any] struct {
	Data  T
	Valid bool
}

// Scan implements sql.Scanner. NULL leaves Valid false.
func (j *JSONField[T]) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		j.Valid = false
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}
	if err := json.Unmarshal(raw, &j.Data); err != nil {
		return err
	}
	j.Valid = true
	return nil
}

// Value implements driver.Valuer; the document is stored as text.
func (j JSONField[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Data)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
