// Package config loads the todo program's settings: defaults, overridden by a TOML file, overridden by
// environment variables.
//
// Example todo.toml:
//
//	[storage]
//	backend = "sqlite"
//	location = "/home/glenda/lib/todo/todo.db"
//	key = "TodoApp"
//
//	[tasks]
//	max_title_length = 30
//
//	[log]
//	level = "info"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicolagi/todo"
	"github.com/nicolagi/todo/kv"
	log "github.com/sirupsen/logrus"
)

// FileName is the name of the configuration file looked up in the configuration directory.
const FileName = "todo.toml"

// Environment variables overriding file settings.
const (
	EnvConfig   = "TODO_CONFIG"
	EnvBackend  = "TODO_BACKEND"
	EnvLocation = "TODO_LOCATION"
	EnvKey      = "TODO_KEY"
	EnvMaxTitle = "TODO_MAX_TITLE"
	EnvLogLevel = "TODO_LOG_LEVEL"
)

// ErrInvalid is wrapped by all errors returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Storage Storage `toml:"storage"`
	Tasks   Tasks   `toml:"tasks"`
	Log     Log     `toml:"log"`
}

type Storage struct {
	// One of the kv backend names: memory, file, sqlite, mysql.
	Backend string `toml:"backend"`

	// Directory, database file or DSN, depending on the backend.
	Location string `toml:"location"`

	// The key the task collection is stored under.
	Key string `toml:"key"`
}

type Tasks struct {
	// In runes; zero disables the limit.
	MaxTitleLength int `toml:"max_title_length"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when neither file nor environment say otherwise: tasks in files under
// lib/todo in the user's home directory.
func Default() *Config {
	return &Config{
		Storage: Storage{
			Backend:  kv.BackendFile,
			Location: filepath.Join(homeDir(), "lib/todo"),
			Key:      todo.DefaultKey,
		},
		Tasks: Tasks{
			MaxTitleLength: todo.DefaultMaxTitleLength,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load builds the configuration. If pathname is empty, the file is looked up at $TODO_CONFIG, then in DefaultDir.
// A missing file is not an error unless pathname was given explicitly. Unknown keys in the file are.
func Load(pathname string) (*Config, error) {
	cfg := Default()
	explicit := pathname != ""
	if !explicit {
		if pathname = os.Getenv(EnvConfig); pathname != "" {
			explicit = true
		} else {
			pathname = filepath.Join(DefaultDir(), FileName)
		}
	}
	if err := loadFile(cfg, pathname); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.WithField("path", pathname).Debug("No configuration file, using defaults")
	}
	if err := loadEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultDir returns $XDG_CONFIG_HOME/todo, or .config/todo in the user's home directory.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "todo")
	}
	return filepath.Join(homeDir(), ".config", "todo")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.WithField("cause", err).Warning("Could not get home directory, using the current directory")
		return "."
	}
	return home
}

func loadFile(cfg *Config, pathname string) error {
	md, err := toml.DecodeFile(pathname, cfg)
	if err != nil {
		return fmt.Errorf("config file %s: %w", pathname, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config file %s: unknown keys %s: %w", pathname, strings.Join(keys, ", "), ErrInvalid)
	}
	return nil
}

func loadEnv(cfg *Config) error {
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv(EnvLocation); v != "" {
		cfg.Storage.Location = v
	}
	if v := os.Getenv(EnvKey); v != "" {
		cfg.Storage.Key = v
	}
	if v := os.Getenv(EnvMaxTitle); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %v: %w", EnvMaxTitle, err, ErrInvalid)
		}
		cfg.Tasks.MaxTitleLength = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// Validate checks the settings are usable. It does not try to open the storage.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case kv.BackendMemory:
	case kv.BackendFile, kv.BackendSQLite:
		if c.Storage.Location == "" {
			return fmt.Errorf("storage.location required for backend %q: %w", c.Storage.Backend, ErrInvalid)
		}
	case kv.BackendMySQL:
		if _, err := kv.MySQLConfig(c.Storage.Location); err != nil {
			return fmt.Errorf("storage.location: %v: %w", err, ErrInvalid)
		}
	default:
		return fmt.Errorf("storage.backend %q: %w", c.Storage.Backend, ErrInvalid)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("storage.key is empty: %w", ErrInvalid)
	}
	if err := kv.CheckKey(c.Storage.Key); err != nil {
		return fmt.Errorf("storage.key: %v: %w", err, ErrInvalid)
	}
	if c.Tasks.MaxTitleLength < 0 {
		return fmt.Errorf("tasks.max_title_length is negative: %w", ErrInvalid)
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("log.level: %v: %w", err, ErrInvalid)
	}
	return nil
}

// LogLevel parses the configured level.
func (c *Config) LogLevel() (log.Level, error) {
	return log.ParseLevel(c.Log.Level)
}
