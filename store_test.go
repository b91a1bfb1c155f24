package todo_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/nicolagi/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Persister that loads canned data and remembers every snapshot it is asked to save.
type recorder struct {
	initial []todo.Task
	err     error
	saves   [][]todo.Task
}

func (r *recorder) LoadAll(context.Context) ([]todo.Task, error) {
	return r.initial, r.err
}

func (r *recorder) Save(tasks []todo.Task) {
	r.saves = append(r.saves, tasks)
}

func ids(tasks []todo.Task) []int64 {
	var ids []int64
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestAddToEmpty(t *testing.T) {
	s := todo.New()
	got := s.Add("Buy milk")
	assert.Equal(t, []todo.Task{{ID: 1, Title: "Buy milk", Completed: false}}, got)
}

func TestAddUsesMaxIDAndPrepends(t *testing.T) {
	s := todo.New()
	s.Load([]todo.Task{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}})
	got := s.Add("Call mom")
	assert.Equal(t, []int64{3, 2, 1}, ids(got))
	assert.Equal(t, todo.Task{ID: 3, Title: "Call mom"}, got[0])
}

func TestAddAfterDelete(t *testing.T) {
	s := todo.New()
	s.Load([]todo.Task{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}, {ID: 3, Title: "c"}})
	got := s.Delete(2)
	assert.Equal(t, []int64{3, 1}, ids(got))
	got = s.Add("X")
	assert.Equal(t, []int64{4, 3, 1}, ids(got))

	// Deleting the newest task frees its number for reuse, but never an id still present.
	s.Delete(4)
	got = s.Add("Y")
	assert.Equal(t, []int64{4, 3, 1}, ids(got))
}

func TestAddSequenceIDsIncrease(t *testing.T) {
	s := todo.New()
	var issued []int64
	for i := 0; i < 20; i++ {
		got := s.Add(fmt.Sprintf("task %d", i))
		issued = append(issued, got[0].ID)
		for j := 1; j < len(got); j++ {
			assert.Greater(t, got[j-1].ID, got[j].ID)
		}
	}
	for i := 1; i < len(issued); i++ {
		assert.Greater(t, issued[i], issued[i-1])
	}
}

func TestAddWhenIDsExhausted(t *testing.T) {
	initial := []todo.Task{{ID: math.MaxInt64, Title: "last"}, {ID: 1, Title: "a"}}
	p := &recorder{initial: initial}
	s := todo.Open(context.Background(), p)
	got := s.Add("next")
	assert.Equal(t, initial, got)
	assert.Empty(t, p.saves)

	// Freeing the largest id makes room again.
	s.Delete(math.MaxInt64)
	got = s.Add("next")
	assert.Equal(t, []todo.Task{{ID: 2, Title: "next"}, {ID: 1, Title: "a"}}, got)
}

func TestAddRejectsInvalidTitles(t *testing.T) {
	testCases := []struct {
		name  string
		title string
	}{
		{name: "empty", title: ""},
		{name: "blank", title: "   "},
		{name: "whitespace", title: "\t\n "},
		{name: "too long", title: "0123456789012345678901234567890"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := &recorder{initial: []todo.Task{{ID: 1, Title: "keep"}}}
			s := todo.Open(context.Background(), p)
			got := s.Add(tc.title)
			assert.Equal(t, []todo.Task{{ID: 1, Title: "keep"}}, got)
			assert.Empty(t, p.saves)
		})
	}
}

func TestAddTrimsTitle(t *testing.T) {
	s := todo.New()
	got := s.Add("  Buy milk \n")
	assert.Equal(t, "Buy milk", got[0].Title)
}

func TestMaxTitleLength(t *testing.T) {
	s := todo.New(todo.WithMaxTitleLength(3))
	assert.Empty(t, s.Add("four"))
	assert.Len(t, s.Add("thr"), 1)
	// Runes, not bytes.
	assert.Len(t, s.Add("äöü"), 2)

	s = todo.New(todo.WithMaxTitleLength(0))
	long := "a title that is much longer than thirty characters, and still fine"
	assert.Equal(t, long, s.Add(long)[0].Title)
}

func TestToggle(t *testing.T) {
	s := todo.New()
	s.Load([]todo.Task{{ID: 3, Title: "c"}})
	got := s.Toggle(3)
	assert.Equal(t, []todo.Task{{ID: 3, Title: "c", Completed: true}}, got)
	got = s.Toggle(3)
	assert.Equal(t, []todo.Task{{ID: 3, Title: "c", Completed: false}}, got)
}

func TestToggleFlipsOnlyTarget(t *testing.T) {
	initial := []todo.Task{
		{ID: 4, Title: "d", Completed: true},
		{ID: 3, Title: "c"},
		{ID: 1, Title: "a"},
	}
	s := todo.New()
	s.Load(initial)
	got := s.Toggle(3)
	assert.Equal(t, []todo.Task{
		{ID: 4, Title: "d", Completed: true},
		{ID: 3, Title: "c", Completed: true},
		{ID: 1, Title: "a"},
	}, got)
}

func TestMissingIDIsNoOp(t *testing.T) {
	initial := []todo.Task{{ID: 2, Title: "b", Completed: true}, {ID: 1, Title: "a"}}
	p := &recorder{initial: initial}
	s := todo.Open(context.Background(), p)
	assert.Equal(t, initial, s.Toggle(7))
	assert.Equal(t, initial, s.EditTitle(7, "new"))
	assert.Equal(t, initial, s.Delete(7))
	assert.Empty(t, p.saves)
}

func TestEditTitle(t *testing.T) {
	s := todo.New()
	s.Load([]todo.Task{{ID: 1, Title: "a"}, {ID: 2, Title: "b", Completed: true}})
	got := s.EditTitle(1, "  renamed ")
	assert.Equal(t, []todo.Task{
		{ID: 2, Title: "b", Completed: true},
		{ID: 1, Title: "renamed"},
	}, got)
}

func TestEditTitleRejectsBlank(t *testing.T) {
	p := &recorder{initial: []todo.Task{{ID: 1, Title: "original"}}}
	s := todo.Open(context.Background(), p)
	got := s.EditTitle(1, "   ")
	assert.Equal(t, []todo.Task{{ID: 1, Title: "original"}}, got)
	got = s.EditTitle(1, "0123456789012345678901234567890")
	assert.Equal(t, []todo.Task{{ID: 1, Title: "original"}}, got)
	assert.Empty(t, p.saves)
}

func TestDeletePreservesOrder(t *testing.T) {
	s := todo.New()
	s.Load([]todo.Task{{ID: 5, Title: "e"}, {ID: 4, Title: "d"}, {ID: 3, Title: "c"}, {ID: 2, Title: "b"}, {ID: 1, Title: "a"}})
	s.Toggle(4)
	got := s.Delete(3)
	assert.Equal(t, []int64{5, 4, 2, 1}, ids(got))
	assert.True(t, got[1].Completed)
	got = s.Delete(5)
	assert.Equal(t, []int64{4, 2, 1}, ids(got))
	got = s.Delete(1)
	assert.Equal(t, []int64{4, 2}, ids(got))
}

func TestLoadSortsAndDeduplicates(t *testing.T) {
	s := todo.New()
	s.Load([]todo.Task{{ID: 1, Title: "a"}, {ID: 3, Title: "c"}, {ID: 2, Title: "b"}, {ID: 3, Title: "dup"}})
	got := s.Tasks()
	assert.Equal(t, []int64{3, 2, 1}, ids(got))
	assert.Equal(t, "c", got[0].Title)

	s.Load(nil)
	assert.Empty(t, s.Tasks())
}

func TestLoadDropsInvalidTitles(t *testing.T) {
	p := &recorder{initial: []todo.Task{
		{ID: 4, Title: "0123456789012345678901234567890"},
		{ID: 3, Title: "   "},
		{ID: 2, Title: ""},
		{ID: 1, Title: "fine"},
	}}
	s := todo.Open(context.Background(), p)
	assert.Equal(t, []todo.Task{{ID: 1, Title: "fine"}}, s.Tasks())
	assert.Empty(t, p.saves)

	// The limit is the store's own.
	s = todo.New(todo.WithMaxTitleLength(0))
	s.Load([]todo.Task{{ID: 1, Title: "0123456789012345678901234567890"}})
	assert.Len(t, s.Tasks(), 1)
}

func TestTasksReturnsCopy(t *testing.T) {
	s := todo.New()
	got := s.Add("a")
	got[0].Title = "mutated"
	tasks := s.Tasks()
	tasks[0].Completed = true
	task, ok := s.TaskByID(1)
	require.True(t, ok)
	assert.Equal(t, todo.Task{ID: 1, Title: "a"}, task)
}

func TestTaskByID(t *testing.T) {
	s := todo.New()
	s.Load([]todo.Task{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}})
	task, ok := s.TaskByID(2)
	assert.True(t, ok)
	assert.Equal(t, "b", task.Title)
	_, ok = s.TaskByID(3)
	assert.False(t, ok)
}

func TestEveryChangeIsSaved(t *testing.T) {
	p := &recorder{}
	s := todo.Open(context.Background(), p)
	s.Add("a")
	s.Add("b")
	s.Toggle(1)
	s.EditTitle(2, "B")
	s.EditTitle(2, "B") // Unchanged.
	s.Delete(1)
	require.Len(t, p.saves, 5)
	assert.Equal(t, []todo.Task{{ID: 1, Title: "a"}}, p.saves[0])
	assert.Equal(t, []todo.Task{{ID: 2, Title: "b"}, {ID: 1, Title: "a"}}, p.saves[1])
	assert.Equal(t, []todo.Task{{ID: 2, Title: "b"}, {ID: 1, Title: "a", Completed: true}}, p.saves[2])
	assert.Equal(t, []todo.Task{{ID: 2, Title: "B"}, {ID: 1, Title: "a", Completed: true}}, p.saves[3])
	assert.Equal(t, []todo.Task{{ID: 2, Title: "B"}}, p.saves[4])

	// Snapshots are not aliased to the store's state.
	s.Toggle(2)
	assert.False(t, p.saves[4][0].Completed)
}

func TestOpenDegradesToEmpty(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{name: "absent"},
		{name: "malformed", err: fmt.Errorf("load: %w", todo.ErrDeserialization)},
		{name: "unreadable", err: fmt.Errorf("load: %w", todo.ErrStorageRead)},
		{name: "other", err: errors.New("disk on fire")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := &recorder{err: tc.err}
			s := todo.Open(context.Background(), p)
			assert.Empty(t, s.Tasks())
			assert.Empty(t, p.saves)
			assert.Equal(t, []int64{1}, ids(s.Add("first")))
		})
	}
}

func TestOpenSortsLoadedTasks(t *testing.T) {
	p := &recorder{initial: []todo.Task{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}}
	s := todo.Open(context.Background(), p)
	assert.Equal(t, []int64{2, 1}, ids(s.Tasks()))
	assert.Empty(t, p.saves)
}
