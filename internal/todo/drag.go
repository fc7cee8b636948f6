package todo

import "context"

// DragSession follows one dragged task while it crosses other items. Each hover
// over a new index moves the task there immediately, so the list always shows
// the live order.
type DragSession struct {
	store   *Store
	index   int
	dropped bool
}

// BeginDrag starts dragging the task at index. It returns false for an invalid index.
func (s *Store) BeginDrag(index int) (*DragSession, bool) {
	if index < 0 || index >= len(s.tasks) {
		return nil, false
	}
	return &DragSession{store: s, index: index}, true
}

// Hover reports the index currently under the dragged task.
func (d *DragSession) Hover(ctx context.Context, index int) {
	if d.dropped || index == d.index {
		return
	}
	if d.store.Reorder(ctx, d.index, index) {
		d.index = index
	}
}

// Index is the current position of the dragged task.
func (d *DragSession) Index() int {
	return d.index
}

// Drop finishes the gesture and returns the final position.
func (d *DragSession) Drop() int {
	d.dropped = true
	return d.index
}
