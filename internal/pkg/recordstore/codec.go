package recordstore

import (
	"encoding/json"
	"fmt"
)

// Decode converts a row into out, matching row keys against the json tags of out.
func Decode(row Row, out any) error {
	raw, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode row: %w", err)
	}
	return nil
}

// DecodeAll converts every row into a T.
func DecodeAll[T any](rows []Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var item T
		if err := Decode(row, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// String reads a string column, returning "" when absent or not a string.
func (r Row) String(column string) string {
	s, _ := r[column].(string)
	return s
}
