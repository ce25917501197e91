package handler

import (
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD query value. Empty input yields nil.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseEndDate parses a YYYY-MM-DD query value and moves it to the last
// instant of that day so the range stays inclusive.
func parseEndDate(value string) (*time.Time, error) {
	t, err := parseDate(value)
	if err != nil || t == nil {
		return t, err
	}
	end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return &end, nil
}

// parseOptionalID parses an optional UUID query value. Empty input yields nil.
func parseOptionalID(value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// normalizePage applies pagination defaults
func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
