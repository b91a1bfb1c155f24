package todo

import (
	"context"
	"errors"
	"fmt"

	"github.com/nicolagi/todo/kv"
	log "github.com/sirupsen/logrus"
)

// ColorScheme is the user's light/dark preference. It is stored next to the task collection, under the collection
// key with a ".scheme" suffix.
type ColorScheme string

const (
	// Light is the default scheme.
	Light ColorScheme = "light"
	// Dark is the alternative to Light.
	Dark ColorScheme = "dark"
)

// ErrColorScheme is returned by ParseColorScheme for unknown values.
var ErrColorScheme = errors.New("unknown color scheme")

// ParseColorScheme converts a stored or configured value to a ColorScheme.
func ParseColorScheme(s string) (ColorScheme, error) {
	switch cs := ColorScheme(s); cs {
	case Light, Dark:
		return cs, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrColorScheme)
	}
}

// Toggle returns the other scheme.
func (cs ColorScheme) Toggle() ColorScheme {
	if cs == Dark {
		return Light
	}
	return Dark
}

func schemeKey(key string) string {
	return key + ".scheme"
}

// LoadColorScheme reads the stored preference. Like the task collection, a missing or unreadable value is not an
// error: the light scheme is returned instead.
func LoadColorScheme(ctx context.Context, store kv.Store, key string) ColorScheme {
	logEntry := log.WithField("key", schemeKey(key))
	b, err := store.Get(ctx, schemeKey(key))
	if errors.Is(err, kv.ErrNotFound) {
		return Light
	}
	if err != nil {
		logEntry.WithField("cause", err).Warning("Could not read color scheme")
		return Light
	}
	cs, err := ParseColorScheme(string(b))
	if err != nil {
		logEntry.WithField("cause", err).Warning("Ignoring stored color scheme")
		return Light
	}
	return cs
}

// SaveColorScheme stores the preference.
func SaveColorScheme(ctx context.Context, store kv.Store, key string, cs ColorScheme) error {
	if _, err := ParseColorScheme(string(cs)); err != nil {
		return err
	}
	if err := store.Set(ctx, schemeKey(key), []byte(cs)); err != nil {
		return fmt.Errorf("save color scheme: %w", err)
	}
	return nil
}
