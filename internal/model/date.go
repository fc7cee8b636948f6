package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is used to display dates and is one of the accepted input layouts.
const DateLayout = "2006-01-02 15:04"

var dateLayouts = []string{
	DateLayout,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses user or snapshot input. Layouts without a zone are read in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD HH:MM", s)
}

// ParseOptionalDate returns nil for empty input.
func ParseOptionalDate(s string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDate(s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
