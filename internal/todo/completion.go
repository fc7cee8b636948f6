package todo

import (
	"slices"

	"github.com/agalitsyn/telegram-todo-bot/internal/model"
)

// CompletionSet holds ids of completed tasks. Completion is never stored on the task itself.
type CompletionSet map[model.TaskID]struct{}

func (c CompletionSet) Has(id model.TaskID) bool {
	_, ok := c[id]
	return ok
}

// Toggle flips membership and reports whether id is completed afterwards.
func (c CompletionSet) Toggle(id model.TaskID) bool {
	if c.Has(id) {
		delete(c, id)
		return false
	}
	c[id] = struct{}{}
	return true
}

// IDs returns members in ascending order.
func (c CompletionSet) IDs() []model.TaskID {
	ids := make([]model.TaskID, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
