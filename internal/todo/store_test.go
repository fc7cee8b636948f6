package todo_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agalitsyn/telegram-todo-bot/internal/model"
	"github.com/agalitsyn/telegram-todo-bot/internal/todo"
)

// fakeStorage is an in-memory model.SnapshotStorage.
type fakeStorage struct {
	data    map[string][]byte
	saves   int
	LoadErr error
	SaveErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: make(map[string][]byte)}
}

func (f *fakeStorage) Load(_ context.Context, key string) ([]byte, error) {
	if f.LoadErr != nil {
		return nil, f.LoadErr
	}
	data, ok := f.data[key]
	if !ok {
		return nil, model.ErrSnapshotNotFound
	}
	return data, nil
}

func (f *fakeStorage) Save(_ context.Context, key string, data []byte) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.saves++
	f.data[key] = append([]byte(nil), data...)
	return nil
}

var baseTime = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

// fixedClock returns a clock frozen at baseTime.
func fixedClock() func() time.Time {
	return func() time.Time { return baseTime }
}

func newStore(t *testing.T, storage model.SnapshotStorage, opts ...todo.Option) *todo.Store {
	t.Helper()
	opts = append([]todo.Option{todo.WithClock(fixedClock())}, opts...)
	return todo.Open(context.Background(), storage, "todos", opts...)
}

func addAll(t *testing.T, s *todo.Store, texts ...string) []model.Task {
	t.Helper()
	var tasks []model.Task
	for _, text := range texts {
		task, ok := s.Add(context.Background(), model.NewDraft(text))
		if !ok {
			t.Fatalf("add %q rejected", text)
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func texts(tasks []model.Task) string {
	parts := make([]string, len(tasks))
	for i, t := range tasks {
		parts[i] = t.Text
	}
	return strings.Join(parts, ",")
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   string
	}{
		{"plain", "Buy milk", true, "Buy milk"},
		{"trimmed", "  Buy milk \n", true, "Buy milk"},
		{"empty", "", false, ""},
		{"whitespace", " \t\n ", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, nil)
			task, ok := s.Add(context.Background(), model.NewDraft(tt.input))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				if s.Len() != 0 {
					t.Errorf("rejected add changed list length to %d", s.Len())
				}
				return
			}
			if s.Len() != 1 {
				t.Errorf("expected 1 task, got %d", s.Len())
			}
			if task.Text != tt.want {
				t.Errorf("text = %q, want %q", task.Text, tt.want)
			}
		})
	}
}

func TestAddAssignsUniqueMonotonicIDs(t *testing.T) {
	s := newStore(t, nil)
	tasks := addAll(t, s, "a", "b", "c")

	if tasks[0].ID != model.TaskID(baseTime.UnixMilli()) {
		t.Errorf("first id = %d, want time based %d", tasks[0].ID, baseTime.UnixMilli())
	}
	for i := 1; i < len(tasks); i++ {
		if tasks[i].ID <= tasks[i-1].ID {
			t.Errorf("id %d not greater than previous %d", tasks[i].ID, tasks[i-1].ID)
		}
	}
	if got := texts(s.Tasks()); got != "a,b,c" {
		t.Errorf("order = %s, want a,b,c", got)
	}
}

func TestAddDeadlineWarning(t *testing.T) {
	tests := []struct {
		name string
		due  *time.Time
		want bool
	}{
		{"in two hours", ptr(baseTime.Add(2 * time.Hour)), true},
		{"exactly at window", ptr(baseTime.Add(24 * time.Hour)), true},
		{"in two days", ptr(baseTime.Add(48 * time.Hour)), false},
		{"already passed", ptr(baseTime.Add(-time.Hour)), false},
		{"now", ptr(baseTime), false},
		{"no due date", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warned []model.Task
			s := newStore(t, nil, todo.WithDeadlineWarning(func(task model.Task) {
				warned = append(warned, task)
			}))

			d := model.NewDraft("Buy milk")
			d.DueDate = tt.due
			s.Add(context.Background(), d)

			if got := len(warned) == 1; got != tt.want {
				t.Errorf("warning fired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddDeadlineWindowOption(t *testing.T) {
	fired := false
	s := newStore(t, nil,
		todo.WithDeadlineWindow(time.Hour),
		todo.WithDeadlineWarning(func(model.Task) { fired = true }),
	)

	d := model.NewDraft("Clean desk")
	d.DueDate = ptr(baseTime.Add(2 * time.Hour))
	s.Add(context.Background(), d)

	if fired {
		t.Error("warning should not fire outside a one hour window")
	}
	if got := s.DeadlineWindow(); got != time.Hour {
		t.Errorf("window = %v, want 1h", got)
	}
	if got := newStore(t, nil).DeadlineWindow(); got != todo.DefaultDeadlineWindow {
		t.Errorf("default window = %v, want %v", got, todo.DefaultDeadlineWindow)
	}
}

func TestEdit(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)
	tasks := addAll(t, s, "A", "B", "C")

	if s.Edit(ctx, tasks[1].ID, "") {
		t.Error("edit with empty text should be a no-op")
	}
	if s.Edit(ctx, tasks[1].ID, "   ") {
		t.Error("edit with blank text should be a no-op")
	}
	if got := texts(s.Tasks()); got != "A,B,C" {
		t.Errorf("after cancelled edit = %s, want A,B,C", got)
	}

	if s.Edit(ctx, 42, "X") {
		t.Error("edit of unknown id should be a no-op")
	}

	if !s.Edit(ctx, tasks[1].ID, " B2 ") {
		t.Fatal("edit rejected")
	}
	got := s.Tasks()
	if texts(got) != "A,B2,C" {
		t.Errorf("after edit = %s, want A,B2,C", texts(got))
	}
	if got[1].ID != tasks[1].ID {
		t.Errorf("edit changed id from %d to %d", tasks[1].ID, got[1].ID)
	}
}

func TestDeleteRemovesFromCompletionSet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)
	tasks := addAll(t, s, "A", "B", "C")

	s.ToggleComplete(ctx, tasks[1].ID)
	if !s.Delete(ctx, tasks[1].ID) {
		t.Fatal("delete rejected")
	}

	if s.IsCompleted(tasks[1].ID) {
		t.Error("deleted id still in completion set")
	}
	if s.CompletedCount() != 0 {
		t.Errorf("completed count = %d, want 0", s.CompletedCount())
	}
	if got := texts(s.Tasks()); got != "A,C" {
		t.Errorf("after delete = %s, want A,C", got)
	}
	if s.Delete(ctx, tasks[1].ID) {
		t.Error("second delete should be a no-op")
	}
}

func TestToggleCompleteIsInvolution(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)
	tasks := addAll(t, s, "A", "B")

	s.ToggleComplete(ctx, tasks[0].ID)
	if !s.IsCompleted(tasks[0].ID) {
		t.Fatal("task should be completed after first toggle")
	}
	s.ToggleComplete(ctx, tasks[0].ID)
	if s.IsCompleted(tasks[0].ID) {
		t.Error("task should be pending after second toggle")
	}
	if s.CompletedCount() != 0 {
		t.Errorf("completed count = %d, want 0", s.CompletedCount())
	}

	if s.ToggleComplete(ctx, 99) {
		t.Error("toggle of unknown id should be a no-op")
	}
	if s.CompletedCount() != 0 {
		t.Error("unknown id must not enter the completion set")
	}
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     string
		wantOK   bool
	}{
		{"first to last", 0, 2, "B,C,A", true},
		{"last to first", 2, 0, "C,A,B", true},
		{"adjacent", 0, 1, "B,A,C", true},
		{"same index", 1, 1, "A,B,C", false},
		{"from out of range", 3, 0, "A,B,C", false},
		{"to out of range", 0, 3, "A,B,C", false},
		{"negative", -1, 0, "A,B,C", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, nil)
			addAll(t, s, "A", "B", "C")

			ok := s.Reorder(context.Background(), tt.from, tt.to)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got := texts(s.Tasks()); got != tt.want {
				t.Errorf("order = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestReorderIsPermutation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)
	addAll(t, s, "A", "B", "C", "D", "E")

	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			s.Reorder(ctx, i, j)
			if s.Len() != 5 {
				t.Fatalf("reorder(%d, %d) changed length to %d", i, j, s.Len())
			}
			seen := map[string]bool{}
			for _, task := range s.Tasks() {
				seen[task.Text] = true
			}
			if len(seen) != 5 {
				t.Fatalf("reorder(%d, %d) lost a task: %s", i, j, texts(s.Tasks()))
			}
		}
	}
}

func TestFilteredView(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)
	tasks := addAll(t, s, "A", "B", "C", "D")
	s.ToggleComplete(ctx, tasks[0].ID)
	s.ToggleComplete(ctx, tasks[2].ID)

	tests := []struct {
		mode model.FilterMode
		want string
	}{
		{model.FilterAll, "A,B,C,D"},
		{model.FilterCompleted, "A,C"},
		{model.FilterPending, "B,D"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			if got := texts(s.FilteredView(tt.mode)); got != tt.want {
				t.Errorf("view = %s, want %s", got, tt.want)
			}
		})
	}

	all := len(s.FilteredView(model.FilterAll))
	split := len(s.FilteredView(model.FilterCompleted)) + len(s.FilteredView(model.FilterPending))
	if all != split {
		t.Errorf("all = %d, completed+pending = %d", all, split)
	}
	if s.PendingCount() != 2 || s.CompletedCount() != 2 {
		t.Errorf("counters = %d pending, %d completed", s.PendingCount(), s.CompletedCount())
	}
}

func TestViewYieldsListPositions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)
	tasks := addAll(t, s, "A", "B", "C")
	s.ToggleComplete(ctx, tasks[1].ID)

	var positions []int
	for i := range s.View(model.FilterPending) {
		positions = append(positions, i)
	}
	if len(positions) != 2 || positions[0] != 0 || positions[1] != 2 {
		t.Errorf("positions = %v, want [0 2]", positions)
	}
}

func TestPersistsAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	s := newStore(t, storage)
	tasks := addAll(t, s, "A", "B")

	s.Edit(ctx, tasks[0].ID, "A2")
	s.ToggleComplete(ctx, tasks[0].ID)
	s.Reorder(ctx, 0, 1)
	s.Delete(ctx, tasks[1].ID)

	// two keys per mutation: the list and the completion set
	if storage.saves != 6*2 {
		t.Errorf("saves = %d, want %d", storage.saves, 12)
	}

	restored := newStore(t, storage)
	if got := texts(restored.Tasks()); got != "A2" {
		t.Errorf("restored = %s, want A2", got)
	}
	if !restored.IsCompleted(tasks[0].ID) {
		t.Error("completion state not restored")
	}
}

func TestRejectedOperationsDoNotPersist(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	s := newStore(t, storage)

	s.Add(ctx, model.NewDraft(" "))
	s.Edit(ctx, 1, "x")
	s.Delete(ctx, 1)
	s.ToggleComplete(ctx, 1)
	s.Reorder(ctx, 0, 1)

	if storage.saves != 0 {
		t.Errorf("saves = %d, want 0", storage.saves)
	}
}

func TestWithoutCompletionPersistence(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	s := newStore(t, storage, todo.WithCompletionPersistence(false))
	tasks := addAll(t, s, "A")
	s.ToggleComplete(ctx, tasks[0].ID)

	if _, ok := storage.data["todos:completed"]; ok {
		t.Error("completion set should not be saved")
	}

	restored := newStore(t, storage, todo.WithCompletionPersistence(false))
	if restored.IsCompleted(tasks[0].ID) {
		t.Error("completion state should reset on reload")
	}
}

func TestOpenFallsBackToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		storage *fakeStorage
	}{
		{"corrupt json", &fakeStorage{data: map[string][]byte{"todos": []byte("{not json")}}},
		{"wrong shape", &fakeStorage{data: map[string][]byte{"todos": []byte(`{"id":1}`)}}},
		{"storage error", &fakeStorage{data: map[string][]byte{}, LoadErr: errors.New("disk gone")}},
		{"absent", newFakeStorage()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, tt.storage)
			if s.Len() != 0 {
				t.Errorf("expected empty store, got %d tasks", s.Len())
			}
		})
	}
}

func TestOpenDropsOrphanCompletedIDs(t *testing.T) {
	storage := newFakeStorage()
	storage.data["todos"] = []byte(`[{"id":1,"text":"A"},{"id":2,"text":"B"}]`)
	storage.data["todos:completed"] = []byte(`[2,3]`)

	s := newStore(t, storage)
	if !s.IsCompleted(2) {
		t.Error("id 2 should be completed")
	}
	if s.IsCompleted(3) || s.CompletedCount() != 1 {
		t.Errorf("orphan id kept, completed count = %d", s.CompletedCount())
	}
}

func TestNextIDAfterRestore(t *testing.T) {
	storage := newFakeStorage()
	future := baseTime.Add(time.Hour).UnixMilli()
	storage.data["todos"] = []byte(`[{"id":` + itoa(future) + `,"text":"A"}]`)

	s := newStore(t, storage)
	task, _ := s.Add(context.Background(), model.NewDraft("B"))
	if int64(task.ID) <= future {
		t.Errorf("new id %d must be greater than restored %d", task.ID, future)
	}
}

func TestSaveErrorKeepsState(t *testing.T) {
	storage := newFakeStorage()
	storage.SaveErr = errors.New("quota exceeded")
	s := newStore(t, storage)

	addAll(t, s, "A")
	if s.Len() != 1 {
		t.Errorf("in-memory state lost on save failure, len = %d", s.Len())
	}
}

func TestReopenKeepsExactDates(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	s := todo.Open(ctx, storage, "todos")

	due := time.Now().Add(2 * time.Hour)
	d := model.NewDraft("Buy milk")
	d.DueDate = &due
	d.CompletionTargetDate = &due
	s.Add(ctx, d)

	restored := todo.Open(ctx, storage, "todos").Tasks()
	if len(restored) != 1 {
		t.Fatalf("restored %d tasks, want 1", len(restored))
	}
	if !restored[0].DueDate.Equal(due) {
		t.Errorf("due = %v, want %v", restored[0].DueDate, due)
	}
	if !restored[0].CompletionTargetDate.Equal(due) {
		t.Errorf("target = %v, want %v", restored[0].CompletionTargetDate, due)
	}
}

func TestStoreOwnsItsDates(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	due := baseTime.Add(time.Hour)
	d := model.NewDraft("A")
	d.DueDate = &due
	task, _ := s.Add(ctx, d)

	due = due.Add(100 * time.Hour)
	*task.DueDate = baseTime.Add(200 * time.Hour)
	*s.Tasks()[0].DueDate = baseTime.Add(300 * time.Hour)
	got, _ := s.At(0)
	*got.DueDate = baseTime.Add(400 * time.Hour)
	for _, v := range s.View(model.FilterAll) {
		*v.DueDate = baseTime.Add(500 * time.Hour)
	}

	got, _ = s.At(0)
	if !got.DueDate.Equal(baseTime.Add(time.Hour)) {
		t.Errorf("stored due date changed to %v", got.DueDate)
	}
}
