package todo

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agalitsyn/telegram-todo-bot/internal/model"
)

type taskRecord struct {
	ID                   model.TaskID `json:"id"`
	Text                 string       `json:"text"`
	DueDate              string       `json:"dueDate,omitempty"`
	CompletionTargetDate string       `json:"completionTargetDate,omitempty"`
	// finDate is the key older snapshots used for the completion target.
	FinDate string `json:"finDate,omitempty"`
}

func EncodeTasks(tasks []model.Task) ([]byte, error) {
	records := make([]taskRecord, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, taskRecord{
			ID:                   t.ID,
			Text:                 t.Text,
			DueDate:              formatDate(t.DueDate),
			CompletionTargetDate: formatDate(t.CompletionTargetDate),
		})
	}
	return json.Marshal(records)
}

// DecodeTasks parses a snapshot. Records breaking list invariants (empty text,
// repeated id) are dropped, unparsable dates are treated as absent.
func DecodeTasks(data []byte, loc *time.Location) ([]model.Task, error) {
	var records []taskRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("could not decode tasks: %w", err)
	}

	seen := make(map[model.TaskID]bool, len(records))
	tasks := make([]model.Task, 0, len(records))
	for _, r := range records {
		text := strings.TrimSpace(r.Text)
		if text == "" || seen[r.ID] {
			continue
		}
		seen[r.ID] = true

		target := r.CompletionTargetDate
		if target == "" {
			target = r.FinDate
		}
		tasks = append(tasks, model.Task{
			ID:                   r.ID,
			Text:                 text,
			DueDate:              parseDate(r.DueDate, loc),
			CompletionTargetDate: parseDate(target, loc),
		})
	}
	return tasks, nil
}

func EncodeCompleted(c CompletionSet) ([]byte, error) {
	return json.Marshal(c.IDs())
}

func DecodeCompleted(data []byte) (CompletionSet, error) {
	var ids []model.TaskID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("could not decode completed ids: %w", err)
	}
	c := make(CompletionSet, len(ids))
	for _, id := range ids {
		c[id] = struct{}{}
	}
	return c, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseDate(s string, loc *time.Location) *time.Time {
	t, err := model.ParseOptionalDate(s, loc)
	if err != nil {
		return nil
	}
	return t
}
