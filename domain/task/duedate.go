package task

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDueDate is returned by ParseDueDate for text that is not a
// recognised timestamp.
var ErrInvalidDueDate = errors.New(MsgInvalidDueDate)

// dueDateLayouts are tried in order. Layouts without a zone are read as UTC.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDueDate parses a due date sent by a client: RFC 3339 timestamps,
// datetime-local values and plain calendar dates.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidDueDate
	}
	for _, layout := range dueDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, ErrInvalidDueDate
}
