package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/daqo/pomodoro/internal/config"
	"github.com/daqo/pomodoro/internal/database"
	"github.com/daqo/pomodoro/internal/effects"
	"github.com/daqo/pomodoro/internal/engine"
	"github.com/daqo/pomodoro/internal/router"
	"github.com/daqo/pomodoro/internal/store"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	if err := ensureDir(cfg.Backup.Dir); err != nil {
		log.Fatalf("create backup dir: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	st := store.New(db)

	var notifier effects.Notifier = effects.Noop{}
	var player effects.Player = effects.Noop{}
	if cfg.Sinks.WebhookURL != "" {
		webhook := effects.NewWebhook(cfg.Sinks.WebhookURL)
		notifier, player = webhook, webhook
	}

	clock := engine.NewBackgroundClock(time.Second)
	defer clock.Stop()

	eng := engine.New(st, clock, notifier, player, engine.Config{
		RestMinutes: cfg.Timer.RestMinutes,
		RestLabel:   cfg.Timer.RestLabel,
	})

	// pick the countdown back up if one was running when we last exited
	if err := eng.ResumeFromPersisted(); err != nil {
		log.Printf("warning: resume persisted interval: %v", err)
	}
	go eng.Run(clock.Completions())

	// setup router
	r := router.SetupRouter(cfg, db, st, eng)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
