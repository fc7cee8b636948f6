// Package render formats a task list for chat messages and terminals.
package render

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agalitsyn/telegram-todo-bot/internal/model"
)

// Source is the read side of a task list.
type Source interface {
	View(mode model.FilterMode) iter.Seq2[int, model.Task]
	IsCompleted(id model.TaskID) bool
	Len() int
	CompletedCount() int
	PendingCount() int
}

// Styler decorates parts of a rendered list.
type Styler interface {
	Header(s string) string
	Done(s string) string
	Soon(s string) string
}

type Options struct {
	Mode   model.FilterMode
	Now    time.Time
	Window time.Duration
	// Location dates are shown in; nil keeps each date's own zone.
	Location *time.Location
	Styler   Styler
}

// FilterLabel returns the display name of a filter, e.g. "Completed".
func FilterLabel(mode model.FilterMode) string {
	return cases.Title(language.English).String(string(mode))
}

func Counters(w io.Writer, src Source, st Styler) {
	fmt.Fprintf(w, "%s %d  %s %d  %s %d\n",
		st.Header("Total:"), src.Len(),
		st.Header("Pending:"), src.PendingCount(),
		st.Header("Completed:"), src.CompletedCount(),
	)
}

// List writes the filtered view. Tasks are numbered by their position in the full list.
func List(w io.Writer, src Source, opts Options) {
	fmt.Fprintln(w, opts.Styler.Header(FilterLabel(opts.Mode)))

	empty := true
	for i, t := range src.View(opts.Mode) {
		empty = false
		done := src.IsCompleted(t.ID)
		line := Task(t, done, opts.Location)
		switch {
		case done:
			line = opts.Styler.Done(line)
		case t.DueWithin(opts.Now, opts.Window):
			line = opts.Styler.Soon(line)
		}
		fmt.Fprintf(w, "%3d. %s\n", i+1, line)
	}
	if empty {
		fmt.Fprintln(w, "     (no tasks)")
	}
}

// Task formats one task without numbering or styling.
func Task(t model.Task, done bool, loc *time.Location) string {
	mark := "[ ]"
	if done {
		mark = "[x]"
	}

	var dates []string
	if t.DueDate != nil {
		dates = append(dates, "due "+formatDate(*t.DueDate, loc))
	}
	if t.CompletionTargetDate != nil {
		dates = append(dates, "target "+formatDate(*t.CompletionTargetDate, loc))
	}

	text := strings.ReplaceAll(t.Text, "\n", " ")
	if len(dates) == 0 {
		return fmt.Sprintf("%s %s", mark, text)
	}
	return fmt.Sprintf("%s %s (%s)", mark, text, strings.Join(dates, ", "))
}

func formatDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(model.DateLayout)
}

// Plain marks near-deadline tasks with an alarm clock and leaves the rest as is.
type Plain struct{}

func (Plain) Header(s string) string { return s }
func (Plain) Done(s string) string   { return s }
func (Plain) Soon(s string) string   { return s + " ⏰" }

// Terminal colors output with ANSI sequences unless color.NoColor is set.
// Near-deadline tasks keep the alarm clock marker so they stand out without colors.
type Terminal struct {
	header *color.Color
	done   *color.Color
	soon   *color.Color
}

func NewTerminal() *Terminal {
	return &Terminal{
		header: color.New(color.Bold),
		done:   color.New(color.Faint, color.CrossedOut),
		soon:   color.New(color.FgYellow),
	}
}

func (t *Terminal) Header(s string) string { return t.header.Sprint(s) }
func (t *Terminal) Done(s string) string   { return t.done.Sprint(s) }
func (t *Terminal) Soon(s string) string   { return t.soon.Sprint(s + " ⏰") }
