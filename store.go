package todo

import (
	"context"
	"errors"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"
)

// Persister loads the collection once and accepts snapshots to write after every change. Adapter is the
// implementation used outside of tests.
type Persister interface {
	LoadAll(ctx context.Context) ([]Task, error)
	Save(tasks []Task)
}

type storeOption func(*Store)

// WithMaxTitleLength sets the longest title, in runes, accepted by Add and EditTitle. Zero or a negative value
// disables the check.
func WithMaxTitleLength(n int) storeOption {
	return func(s *Store) {
		s.maxTitleLength = n
	}
}

// Store holds the task collection in memory, ordered by descending id. Methods that change the collection hand a
// snapshot of it to the persister, if any. Commands that fail validation or reference unknown ids are no-ops.
type Store struct {
	tasks          []Task
	maxTitleLength int

	// Nil for stores created with New.
	persister Persister
}

// New creates an empty store that does not persist anything.
func New(opts ...storeOption) *Store {
	s := &Store{
		maxTitleLength: DefaultMaxTitleLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a store populated with whatever the persister loads. Absent or unreadable data results in an empty
// collection; the two cases are logged differently. Changes are handed to the persister from then on.
func Open(ctx context.Context, p Persister, opts ...storeOption) *Store {
	s := New(opts...)
	tasks, err := p.LoadAll(ctx)
	switch {
	case errors.Is(err, ErrDeserialization):
		log.WithField("cause", err).Warning("Stored tasks are malformed, starting with an empty list")
	case err != nil:
		log.WithField("cause", err).Warning("Could not read stored tasks, starting with an empty list")
	case tasks == nil:
		log.Info("No stored tasks, starting with an empty list")
	}
	s.Load(tasks)
	s.persister = p
	return s
}

// Load replaces the collection with the given tasks, sorted by descending id. If an id occurs more than once, only
// the first occurrence is kept. Tasks whose title Add would reject are dropped. Loading does not trigger a save.
func (s *Store) Load(initial []Task) {
	tasks := make([]Task, 0, len(initial))
	seen := make(map[int64]bool, len(initial))
	for _, t := range initial {
		if seen[t.ID] {
			log.WithField("id", t.ID).Warning("Dropping task with duplicate id")
			continue
		}
		if _, err := ValidateTitle(t.Title, s.maxTitleLength); err != nil {
			log.WithFields(log.Fields{
				"id":    t.ID,
				"cause": err,
			}).Warning("Dropping task with invalid title")
			continue
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].ID > tasks[j].ID
	})
	s.tasks = tasks
}

// Tasks returns a copy of the collection.
func (s *Store) Tasks() []Task {
	tasks := make([]Task, len(s.tasks))
	copy(tasks, s.tasks)
	return tasks
}

// TaskByID looks up a task by id.
func (s *Store) TaskByID(id int64) (Task, bool) {
	if i := s.index(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// Add creates an uncompleted task with the given title and an id one greater than any other in the collection, and
// puts it first. Once a task holds the largest representable id, nothing more can be added.
func (s *Store) Add(title string) []Task {
	title, err := ValidateTitle(title, s.maxTitleLength)
	if err != nil {
		ignore("add", 0, err)
		return s.Tasks()
	}
	if s.maxID() == math.MaxInt64 {
		log.WithField("op", "add").Warning("Ignoring command, task ids exhausted")
		return s.Tasks()
	}
	t := Task{ID: s.maxID() + 1, Title: title}
	s.tasks = append([]Task{t}, s.tasks...)
	s.changed()
	return s.Tasks()
}

// Toggle flips the completion flag of the task with the given id.
func (s *Store) Toggle(id int64) []Task {
	i := s.index(id)
	if i < 0 {
		ignore("toggle", id, ErrNotFound)
		return s.Tasks()
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.changed()
	return s.Tasks()
}

// EditTitle replaces the title of the task with the given id. Titles are validated as in Add; an invalid title
// leaves the original in place.
func (s *Store) EditTitle(id int64, title string) []Task {
	title, err := ValidateTitle(title, s.maxTitleLength)
	if err != nil {
		ignore("edit", id, err)
		return s.Tasks()
	}
	i := s.index(id)
	if i < 0 {
		ignore("edit", id, ErrNotFound)
		return s.Tasks()
	}
	if s.tasks[i].Title == title {
		return s.Tasks()
	}
	s.tasks[i].Title = title
	s.changed()
	return s.Tasks()
}

// Delete removes the task with the given id, preserving the order of the others.
func (s *Store) Delete(id int64) []Task {
	i := s.index(id)
	if i < 0 {
		ignore("delete", id, ErrNotFound)
		return s.Tasks()
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.changed()
	return s.Tasks()
}

func (s *Store) index(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) maxID() int64 {
	var max int64
	for _, t := range s.tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}

func (s *Store) changed() {
	if s.persister != nil {
		s.persister.Save(s.Tasks())
	}
}

func ignore(op string, id int64, cause error) {
	log.WithFields(log.Fields{
		"op":    op,
		"id":    id,
		"cause": cause,
	}).Debug("Ignoring command")
}
