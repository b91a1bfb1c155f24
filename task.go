package todo

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxTitleLength is the longest title, in runes, accepted by a Store unless configured otherwise.
const DefaultMaxTitleLength = 30

var (
	// ErrEmptyTitle is returned by ValidateTitle for titles that are empty after trimming white space.
	ErrEmptyTitle = errors.New("empty title")

	// ErrTitleTooLong is returned by ValidateTitle for titles exceeding the configured maximum length.
	ErrTitleTooLong = errors.New("title too long")

	// ErrNotFound is logged when a command references a task id that is not in the collection.
	ErrNotFound = errors.New("task not found")
)

// Task is a single to-do item. The JSON representation is the one persisted by the Adapter.
type Task struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func (t Task) String() string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	return fmt.Sprintf("%d [%s] %s", t.ID, mark, t.Title)
}

// ValidateTitle trims the title and checks it against the given maximum length in runes. A non-positive maximum
// disables the length check. The trimmed title is returned along with the error, if any.
func ValidateTitle(title string, max int) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	if n := utf8.RuneCountInString(title); max > 0 && n > max {
		return title, fmt.Errorf("%d runes, at most %d allowed: %w", n, max, ErrTitleTooLong)
	}
	return title, nil
}
