package todo_test

import (
	"strconv"
	"time"
)

func ptr(t time.Time) *time.Time {
	return &t
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
