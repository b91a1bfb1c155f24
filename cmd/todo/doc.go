// The todo program is an acme user interface to a to-do list kept on local storage.
//
// Settings are read from todo.toml in $XDG_CONFIG_HOME/todo (or ~/.config/todo), or from the file given with
// -config or $TODO_CONFIG; see package github.com/nicolagi/todo/config. By default tasks are kept in files under
// lib/todo within the user's home directory.
//
// When launched, it creates a window, /todo/tasks, listing all tasks, newest first. To add a task, 2-button-swipe
// "Add Buy milk". "Toggle 3" marks task 3 as done (or not done anymore), "Zap 3" deletes it. Right-clicking a task
// id opens a window for that task, where the title and completion can be edited and saved with Put. In a task
// window, Toggle and Zap apply to the window's task. Scheme switches the preferred color scheme between light and
// dark; acme has no colors to switch, but the preference is stored for other front ends sharing the same storage.
//
// Every change is written to storage right away, in the background. The program terminates, after writing any
// pending change, when the last of its windows is deleted.
package main // import "github.com/nicolagi/todo/cmd/todo"
