package model

import (
	"fmt"
	"strings"
	"time"
)

type TaskID int64

type Task struct {
	ID                   TaskID
	Text                 string
	DueDate              *time.Time
	CompletionTargetDate *time.Time
}

// DueWithin reports whether the task is due after now but no later than now+window.
func (t Task) DueWithin(now time.Time, window time.Duration) bool {
	if t.DueDate == nil {
		return false
	}
	left := t.DueDate.Sub(now)
	return left > 0 && left <= window
}

// Draft is a task as submitted by a user, before it gets an id.
type Draft struct {
	Text                 string
	DueDate              *time.Time
	CompletionTargetDate *time.Time
}

func NewDraft(text string) Draft {
	return Draft{Text: text}
}

type FilterMode string

const (
	FilterAll       FilterMode = "all"
	FilterCompleted FilterMode = "completed"
	FilterPending   FilterMode = "pending"
)

var FilterModes = []FilterMode{FilterAll, FilterCompleted, FilterPending}

func ParseFilterMode(s string) (FilterMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	for _, m := range FilterModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Match reports whether a task with the given completion state belongs to the view.
func (m FilterMode) Match(completed bool) bool {
	switch m {
	case FilterCompleted:
		return completed
	case FilterPending:
		return !completed
	default:
		return true
	}
}
