package todo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nicolagi/todo/kv"
	uuid "github.com/nu7hatch/gouuid"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrStorageRead is returned (wrapped) by LoadAll when the key-value store could not be read.
	ErrStorageRead = errors.New("could not read task collection")

	// ErrStorageWrite is returned (wrapped) by SaveAll when the key-value store could not be written.
	ErrStorageWrite = errors.New("could not write task collection")
)

// DefaultKey is the key under which the task collection is stored unless configured otherwise.
const DefaultKey = "TodoApp"

// write is a snapshot of the collection queued for writing. The id only serves to correlate log lines.
type write struct {
	id    string
	tasks []Task
}

// Adapter reads and writes the whole task collection under a single key. Besides the synchronous LoadAll and
// SaveAll, it runs a writer goroutine fed by Save: at most one write is in flight at any time, and of the snapshots
// queued while a write is in flight only the most recent survives. Close must be called to stop the writer.
type Adapter struct {
	store kv.Store
	key   string

	mu      sync.Mutex
	next    *write        // Most recent snapshot not yet picked up by the writer.
	busy    bool          // Whether the writer has work queued or in progress.
	idle    chan struct{} // Closed when the writer runs out of work, if someone is waiting (see Flush).
	closing bool

	wake      chan struct{}
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewAdapter creates an adapter storing the collection under key in store, and starts its writer.
func NewAdapter(store kv.Store, key string) *Adapter {
	a := &Adapter{
		store:   store,
		key:     key,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go a.run()
	return a
}

// Key returns the key the collection is stored under.
func (a *Adapter) Key() string {
	return a.key
}

// LoadAll reads the collection. If nothing is stored under the key, it returns a nil slice and a nil error. Errors
// wrap ErrDeserialization if the stored value is not a valid collection, ErrStorageRead otherwise.
func (a *Adapter) LoadAll(ctx context.Context) ([]Task, error) {
	b, err := a.store.Get(ctx, a.key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return nil, nil
	case errors.Is(err, kv.ErrCorrupted):
		return nil, fmt.Errorf("load %q: %w: %w", a.key, ErrDeserialization, err)
	case err != nil:
		return nil, fmt.Errorf("load %q: %w: %w", a.key, ErrStorageRead, err)
	}
	tasks, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", a.key, err)
	}
	return tasks, nil
}

// SaveAll serializes the collection and overwrites the stored value. It does not go through the writer goroutine,
// so callers mixing SaveAll and Save should Flush first.
func (a *Adapter) SaveAll(ctx context.Context, tasks []Task) error {
	b, err := Encode(tasks)
	if err != nil {
		return fmt.Errorf("save %q: %w: %w", a.key, ErrStorageWrite, err)
	}
	if err := a.store.Set(ctx, a.key, b); err != nil {
		return fmt.Errorf("save %q: %w: %w", a.key, ErrStorageWrite, err)
	}
	return nil
}

// Save queues a snapshot of the collection for writing and returns immediately. The adapter takes ownership of the
// slice. Write failures are logged; the next successful write will include the lost changes, since every snapshot
// is the whole collection.
func (a *Adapter) Save(tasks []Task) {
	u, _ := uuid.NewV4()
	w := &write{id: u.String(), tasks: tasks}
	a.mu.Lock()
	if a.closing {
		a.mu.Unlock()
		log.WithField("write", w.id).Warning("Adapter closed, dropping write")
		return
	}
	if a.next != nil {
		log.WithFields(log.Fields{
			"write": a.next.id,
			"by":    w.id,
		}).Debug("Write superseded before it started")
	}
	a.next = w
	a.busy = true
	a.mu.Unlock()
	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// Flush waits until all snapshots queued so far have been written, or have failed to be written.
func (a *Adapter) Flush(ctx context.Context) error {
	a.mu.Lock()
	if !a.busy {
		a.mu.Unlock()
		return nil
	}
	if a.idle == nil {
		a.idle = make(chan struct{})
	}
	idle := a.idle
	a.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes any pending snapshot and stops the writer. Further calls to Save are dropped. It does not close the
// underlying key-value store, which the caller owns.
func (a *Adapter) Close() error {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closing = true
		a.mu.Unlock()
		close(a.quit)
	})
	<-a.stopped
	return nil
}

func (a *Adapter) run() {
	defer close(a.stopped)
	for {
		select {
		case <-a.wake:
			a.drain()
		case <-a.quit:
			a.drain()
			return
		}
	}
}

func (a *Adapter) drain() {
	for {
		a.mu.Lock()
		w := a.next
		a.next = nil
		if w == nil {
			a.busy = false
			if a.idle != nil {
				close(a.idle)
				a.idle = nil
			}
			a.mu.Unlock()
			return
		}
		a.mu.Unlock()
		logEntry := log.WithFields(log.Fields{
			"write": w.id,
			"key":   a.key,
			"tasks": len(w.tasks),
		})
		if err := a.SaveAll(context.Background(), w.tasks); err != nil {
			logEntry.WithField("cause", err).Warning("Could not persist tasks, keeping them in memory only")
		} else {
			logEntry.Debug("Persisted tasks")
		}
	}
}
