package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nicolagi/todo"
)

var errNoTitle = errors.New("no Title: line")

func printTaskList(w io.Writer, tasks []todo.Task) {
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		_, _ = fmt.Fprintf(w, "%d\t[%s]\t%s\n", t.ID, mark, t.Title)
	}
}

func printTask(w io.Writer, t todo.Task) {
	_, _ = fmt.Fprintf(w, "Title: %s\n", t.Title)
	_, _ = fmt.Fprintf(w, "Completed: %s\n", yesNo(t.Completed))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// taskEdit is what parseTask extracts from an edited task window.
type taskEdit struct {
	title     string
	completed *bool // Nil if the line is missing or not yes/no.
}

// parseTask reads the body of a task window, as written by printTask and possibly edited by the user.
func parseTask(r io.Reader) (taskEdit, error) {
	var edit taskEdit
	found := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Title:") {
			edit.title = strings.TrimSpace(line[len("Title:"):])
			found = true
		} else if strings.HasPrefix(line, "Completed:") {
			switch strings.ToLower(strings.TrimSpace(line[len("Completed:"):])) {
			case "yes", "y", "x", "true":
				b := true
				edit.completed = &b
			case "no", "n", "", "false":
				b := false
				edit.completed = &b
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return edit, err
	}
	if !found {
		return edit, errNoTitle
	}
	return edit, nil
}
