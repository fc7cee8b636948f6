// Package todo holds the to-do list state and the operations that mutate it.
package todo

import (
	"context"
	"errors"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/agalitsyn/telegram-todo-bot/internal/model"
)

const DefaultDeadlineWindow = 24 * time.Hour

// completedSuffix is appended to the list key to store the completion set.
const completedSuffix = ":completed"

type Option func(*Store)

func WithLogger(l lgr.L) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithDeadlineWindow(d time.Duration) Option {
	return func(s *Store) { s.window = d }
}

// WithDeadlineWarning sets a callback fired from Add for tasks due within the window.
func WithDeadlineWarning(fn func(model.Task)) Option {
	return func(s *Store) { s.onDeadline = fn }
}

// WithCompletionPersistence controls whether the completion set is saved next to the list.
func WithCompletionPersistence(enabled bool) Option {
	return func(s *Store) { s.saveCompleted = enabled }
}

// Store owns a task list and its completion set. It is not safe for concurrent use:
// callers serialize operations the way a UI event loop does.
type Store struct {
	storage model.SnapshotStorage
	key     string

	tasks     []model.Task
	completed CompletionSet
	lastID    model.TaskID

	log           lgr.L
	now           func() time.Time
	window        time.Duration
	onDeadline    func(model.Task)
	saveCompleted bool
}

// Open creates a store and restores the snapshot saved under key.
// Missing or corrupt snapshots give an empty list. A nil storage disables persistence.
func Open(ctx context.Context, storage model.SnapshotStorage, key string, opts ...Option) *Store {
	s := &Store{
		storage:       storage,
		key:           key,
		completed:     make(CompletionSet),
		log:           lgr.NoOp,
		now:           time.Now,
		window:        DefaultDeadlineWindow,
		saveCompleted: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	if s.storage == nil {
		return
	}

	data, err := s.storage.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, model.ErrSnapshotNotFound) {
			s.log.Logf("[WARN] could not load list %s, starting empty: %v", s.key, err)
		}
		return
	}
	tasks, err := DecodeTasks(data, s.now().Location())
	if err != nil {
		s.log.Logf("[WARN] corrupt list %s, starting empty: %v", s.key, err)
		return
	}
	s.tasks = tasks
	for _, t := range tasks {
		s.lastID = max(s.lastID, t.ID)
	}

	if s.saveCompleted {
		s.loadCompleted(ctx)
	}
	s.log.Logf("[DEBUG] loaded list %s: %d tasks, %d completed", s.key, len(s.tasks), len(s.completed))
}

func (s *Store) loadCompleted(ctx context.Context) {
	data, err := s.storage.Load(ctx, s.key+completedSuffix)
	if err != nil {
		if !errors.Is(err, model.ErrSnapshotNotFound) {
			s.log.Logf("[WARN] could not load completed ids for %s: %v", s.key, err)
		}
		return
	}
	completed, err := DecodeCompleted(data)
	if err != nil {
		s.log.Logf("[WARN] corrupt completed ids for %s: %v", s.key, err)
		return
	}
	for id := range completed {
		if s.indexOf(id) >= 0 {
			s.completed[id] = struct{}{}
		}
	}
}

// persist writes the snapshot. Failures are logged and otherwise ignored.
func (s *Store) persist(ctx context.Context) {
	if s.storage == nil {
		return
	}

	data, err := EncodeTasks(s.tasks)
	if err != nil {
		s.log.Logf("[WARN] could not encode list %s: %v", s.key, err)
		return
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		s.log.Logf("[WARN] could not save list %s: %v", s.key, err)
		return
	}

	if !s.saveCompleted {
		return
	}
	data, err = EncodeCompleted(s.completed)
	if err != nil {
		s.log.Logf("[WARN] could not encode completed ids for %s: %v", s.key, err)
		return
	}
	if err := s.storage.Save(ctx, s.key+completedSuffix, data); err != nil {
		s.log.Logf("[WARN] could not save completed ids for %s: %v", s.key, err)
	}
}

func (s *Store) nextID() model.TaskID {
	id := model.TaskID(s.now().UnixMilli())
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) indexOf(id model.TaskID) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

// Add appends a task built from the draft. Drafts with blank text are ignored.
func (s *Store) Add(ctx context.Context, d model.Draft) (model.Task, bool) {
	text := strings.TrimSpace(d.Text)
	if text == "" {
		return model.Task{}, false
	}

	t := model.Task{
		ID:                   s.nextID(),
		Text:                 text,
		DueDate:              copyTime(d.DueDate),
		CompletionTargetDate: copyTime(d.CompletionTargetDate),
	}
	s.tasks = append(s.tasks, t)
	s.log.Logf("[DEBUG] list %s: added task id=%d", s.key, t.ID)

	if s.onDeadline != nil && t.DueWithin(s.now(), s.window) {
		s.onDeadline(t)
	}

	s.persist(ctx)
	return t, true
}

// Edit replaces the text of a task. Blank text means the edit was cancelled.
func (s *Store) Edit(ctx context.Context, id model.TaskID, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	i := s.indexOf(id)
	if i < 0 {
		return false
	}

	s.tasks[i].Text = text
	s.log.Logf("[DEBUG] list %s: edited task id=%d", s.key, id)
	s.persist(ctx)
	return true
}

func (s *Store) Delete(ctx context.Context, id model.TaskID) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}

	s.tasks = slices.Delete(s.tasks, i, i+1)
	delete(s.completed, id)
	s.log.Logf("[DEBUG] list %s: deleted task id=%d", s.key, id)
	s.persist(ctx)
	return true
}

func (s *Store) ToggleComplete(ctx context.Context, id model.TaskID) bool {
	if s.indexOf(id) < 0 {
		return false
	}

	done := s.completed.Toggle(id)
	s.log.Logf("[DEBUG] list %s: task id=%d completed=%t", s.key, id, done)
	s.persist(ctx)
	return true
}

// Reorder moves the task at from to position to, shifting the tasks in between.
func (s *Store) Reorder(ctx context.Context, from, to int) bool {
	if from < 0 || from >= len(s.tasks) || to < 0 || to >= len(s.tasks) || from == to {
		return false
	}

	t := s.tasks[from]
	s.tasks = slices.Delete(s.tasks, from, from+1)
	s.tasks = slices.Insert(s.tasks, to, t)
	s.log.Logf("[DEBUG] list %s: moved task id=%d from %d to %d", s.key, t.ID, from, to)
	s.persist(ctx)
	return true
}

// View yields tasks matching mode together with their position in the full list.
func (s *Store) View(mode model.FilterMode) iter.Seq2[int, model.Task] {
	return func(yield func(int, model.Task) bool) {
		for i, t := range s.tasks {
			if !mode.Match(s.completed.Has(t.ID)) {
				continue
			}
			if !yield(i, detach(t)) {
				return
			}
		}
	}
}

func (s *Store) FilteredView(mode model.FilterMode) []model.Task {
	tasks := []model.Task{}
	for _, t := range s.View(mode) {
		tasks = append(tasks, t)
	}
	return tasks
}

func (s *Store) Tasks() []model.Task {
	tasks := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		tasks[i] = detach(t)
	}
	return tasks
}

func (s *Store) At(index int) (model.Task, bool) {
	if index < 0 || index >= len(s.tasks) {
		return model.Task{}, false
	}
	return detach(s.tasks[index]), true
}

func (s *Store) IsCompleted(id model.TaskID) bool {
	return s.completed.Has(id)
}

func (s *Store) Len() int {
	return len(s.tasks)
}

func (s *Store) CompletedCount() int {
	return len(s.completed)
}

func (s *Store) PendingCount() int {
	return len(s.tasks) - len(s.completed)
}

// detach returns a copy of t that shares no memory with the store.
func detach(t model.Task) model.Task {
	t.DueDate = copyTime(t.DueDate)
	t.CompletionTargetDate = copyTime(t.CompletionTargetDate)
	return t
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func (s *Store) DeadlineWindow() time.Duration {
	return s.window
}

func (s *Store) Now() time.Time {
	return s.now()
}
