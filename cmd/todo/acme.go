package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"9fans.net/go/acme"
	"github.com/nicolagi/todo"
	"github.com/nicolagi/todo/kv"
	log "github.com/sirupsen/logrus"
)

type windowMode int

const (
	modeList windowMode = iota // /todo/tasks
	modeTask                   // /todo/tasks/$id
)

func (mode windowMode) String() string {
	switch mode {
	case modeList:
		return "list"
	case modeTask:
		return "task"
	default:
		log.WithField("mode", int(mode)).Error("Missing mode string, returning as number")
		return fmt.Sprintf("%d", int(mode))
	}
}

// app owns the task store. Every window runs its event loop on its own goroutine, so all access to the store and
// to the set of windows goes through the mutex.
type app struct {
	sync.Mutex

	store   *todo.Store
	adapter *todo.Adapter
	kv      kv.Store
	key     string
	scheme  todo.ColorScheme

	windows map[*acme.Win]*window
}

type window struct {
	*acme.Win
	app *app

	mode   windowMode
	taskID int64 // For modeTask
}

func (w *window) resetTag() {
	var tag string
	switch w.mode {
	case modeList:
		tag = " Get Add Toggle Zap Scheme "
	case modeTask:
		tag = " Tasks Get Put PutDel Toggle Zap "
	}
	_ = w.Ctl("cleartag")
	_ = w.Fprintf("tag", tag)
}

// exit is called after the window's event loop is over, i.e., the window has been closed in acme.  If it's the
// last window, we wait for pending writes before terminating the process.
func (w *window) exit() {
	a := w.app
	a.Lock()
	defer a.Unlock()
	if a.windows[w.Win] == w {
		delete(a.windows, w.Win)
	}
	if len(a.windows) == 0 {
		if err := a.adapter.Close(); err != nil {
			log.WithField("cause", err).Warning("Could not flush tasks")
		}
		if err := a.kv.Close(); err != nil {
			log.WithField("cause", err).Warning("Could not close storage")
		}
		os.Exit(0)
	}
}

// newWindow creates a window in acme without a specific purpose, and registers it. Must be called with the app
// locked.
func (a *app) newWindow(pathname string) *window {
	if a.windows == nil {
		a.windows = make(map[*acme.Win]*window)
	}

	logEntry := log.WithField("path", pathname)
	aw, err := acme.New()
	if err != nil {
		logEntry.WithField("cause", err).Warning("Could not create acme window")
		time.Sleep(10 * time.Millisecond)
		aw, err = acme.New()
		if err != nil {
			logEntry.WithField("cause", err).Fatal("Could not create acme window again")
		}
	}
	aw.SetErrorPrefix(pathname)
	_ = aw.Name(pathname)

	w := &window{Win: aw, app: a}
	a.windows[w.Win] = w
	return w
}

func (a *app) newListWindow() {
	title := "/todo/tasks"
	if acme.Show(title) != nil {
		return
	}
	a.Lock()
	w := a.newWindow(title)
	a.Unlock()
	w.mode = modeList
	w.resetTag()
	go w.load()
	go w.loop()
}

func (a *app) newTaskWindow(id int64) {
	title := fmt.Sprintf("/todo/tasks/%d", id)
	if acme.Show(title) != nil {
		return
	}
	a.Lock()
	w := a.newWindow(title)
	a.Unlock()
	w.mode = modeTask
	w.taskID = id
	w.resetTag()
	go w.load()
	go w.loop()
}

// Look is invoked via button-3 click in acme. In the list window, a task id opens the task's window.
func (w *window) Look(text string) bool {
	if w.mode != modeList {
		return false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return false
	}
	w.app.Lock()
	_, ok := w.app.store.TaskByID(id)
	w.app.Unlock()
	if !ok {
		return false
	}
	w.app.newTaskWindow(id)
	return true
}

func (w *window) load() {
	w.app.Lock()
	defer w.app.Unlock()
	w.render()
}

// render rewrites the window body from the store. Must be called with the app locked.
func (w *window) render() {
	var buf bytes.Buffer
	switch w.mode {
	case modeList:
		w.Clear()
		_ = w.Fprintf("body", "Scheme: %s\n\n", w.app.scheme)
		printTaskList(&buf, w.app.store.Tasks())
		w.PrintTabbed(buf.String())
	case modeTask:
		t, ok := w.app.store.TaskByID(w.taskID)
		if !ok {
			_ = w.Del(true)
			return
		}
		printTask(&buf, t)
		w.Clear()
		_, _ = w.Write("body", buf.Bytes())
	}
	_ = w.Ctl("clean")
	if w.mode == modeTask {
		_ = w.Addr("#7") // Past "Title: "
	} else {
		_ = w.Addr("0")
	}
	_ = w.Ctl("dot=addr")
	_ = w.Ctl("show")
}

// refresh re-renders every window after a change. Windows of deleted tasks are closed. Must be called with the
// app locked.
func (a *app) refresh() {
	for _, w := range a.windows {
		w.render()
	}
}

// idArg parses the argument of commands like Toggle and Zap. In a task window the argument defaults to the task.
func (w *window) idArg(cmd, name string) (int64, bool) {
	arg := strings.TrimSpace(strings.TrimPrefix(cmd, name))
	if arg == "" && w.mode == modeTask {
		return w.taskID, true
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		w.Errf("%s needs a task id, got %q", name, arg)
		return 0, false
	}
	return id, true
}

// Execute is triggered by button-2 click in acme.
func (w *window) Execute(cmd string) bool {
	a := w.app
	name := cmd
	if i := strings.IndexAny(cmd, " \t"); i >= 0 {
		name = cmd[:i]
	}
	switch name {
	case "Tasks":
		a.newListWindow()
		return true
	case "Get":
		w.load()
		return true
	case "Add":
		title := strings.TrimSpace(strings.TrimPrefix(cmd, "Add"))
		if title == "" {
			w.Errf("Add needs a title, e.g., Add Buy milk")
			return true
		}
		a.Lock()
		defer a.Unlock()
		before := len(a.store.Tasks())
		if tasks := a.store.Add(title); len(tasks) == before {
			w.Errf("Task not added, title empty or too long: %q", title)
			return true
		}
		a.refresh()
		return true
	case "Toggle":
		id, ok := w.idArg(cmd, name)
		if !ok {
			return true
		}
		a.Lock()
		defer a.Unlock()
		if _, ok := a.store.TaskByID(id); !ok {
			w.Errf("Task not found: %d", id)
			return true
		}
		a.store.Toggle(id)
		a.refresh()
		return true
	case "Zap":
		id, ok := w.idArg(cmd, name)
		if !ok {
			return true
		}
		a.Lock()
		defer a.Unlock()
		if _, ok := a.store.TaskByID(id); !ok {
			w.Errf("Task not found: %d", id)
			return true
		}
		a.store.Delete(id)
		a.refresh()
		return true
	case "Put", "PutDel":
		if w.mode != modeTask {
			w.Errf("Put forbidden for this window mode: %v", w.mode)
			return true
		}
		w.put(name == "PutDel")
		return true
	case "Scheme":
		a.Lock()
		defer a.Unlock()
		a.scheme = a.scheme.Toggle()
		if err := todo.SaveColorScheme(context.Background(), a.kv, a.key, a.scheme); err != nil {
			log.WithField("cause", err).Warning("Could not save color scheme")
		}
		a.refresh()
		return true
	case "Del":
		_ = w.Del(false)
		return true
	default:
		return false
	}
}

func (w *window) put(del bool) {
	a := w.app
	body, err := w.ReadAll("body")
	if err != nil {
		w.Errf("Could not read window: %v", err)
		return
	}
	edit, err := parseTask(bytes.NewReader(body))
	if err != nil {
		w.Errf("Failed parsing edited window: %v", err)
		return
	}
	a.Lock()
	defer a.Unlock()
	t, ok := a.store.TaskByID(w.taskID)
	if !ok {
		w.Errf("Task not found: %d", w.taskID)
		return
	}
	if edit.title != t.Title {
		a.store.EditTitle(w.taskID, edit.title)
		if t, _ = a.store.TaskByID(w.taskID); t.Title != edit.title {
			w.Errf("Title rejected, empty or too long: %q", edit.title)
			return
		}
	}
	if edit.completed != nil && *edit.completed != t.Completed {
		a.store.Toggle(w.taskID)
	}
	if del {
		delete(a.windows, w.Win)
		a.refresh()
		_ = w.Del(true)
		return
	}
	a.refresh()
}

func (w *window) loop() {
	defer w.exit()
	w.EventLoop(w)
}
