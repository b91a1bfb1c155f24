package main

import (
	"context"
	"flag"

	"github.com/nicolagi/todo"
	"github.com/nicolagi/todo/config"
	"github.com/nicolagi/todo/kv"
	log "github.com/sirupsen/logrus"
)

func main() {
	configFile := flag.String("config", "", "path to the `TOML` configuration file")
	flag.Parse()

	cfg := mustLoadConfig(*configFile)
	store := mustOpenStore(cfg)
	adapter := todo.NewAdapter(store, cfg.Storage.Key)

	ctx := context.Background()
	a := &app{
		store:   todo.Open(ctx, adapter, todo.WithMaxTitleLength(cfg.Tasks.MaxTitleLength)),
		adapter: adapter,
		kv:      store,
		key:     cfg.Storage.Key,
		scheme:  todo.LoadColorScheme(ctx, store, cfg.Storage.Key),
	}

	// Create initial window listing all tasks.
	a.newListWindow()

	// The program will be terminated when the last acme window owned by this process is deleted.
	select {}
}

func mustLoadConfig(pathname string) *config.Config {
	cfg, err := config.Load(pathname)
	if err != nil {
		log.WithField("cause", err).Fatal("Could not load configuration")
	}
	level, _ := cfg.LogLevel()
	log.SetLevel(level)
	return cfg
}

func mustOpenStore(cfg *config.Config) kv.Store {
	// The location is not logged: for mysql it is a DSN, which may hold a password.
	logEntry := log.WithField("backend", cfg.Storage.Backend)
	store, err := kv.Open(cfg.Storage.Backend, cfg.Storage.Location)
	if err != nil {
		logEntry.WithField("cause", err).Warning("Could not open storage, tasks will not survive this session")
		return kv.NewMemory()
	}
	return store
}
