package main

import (
	"context"
	"fmt"
	"log"

	"github.com/introscan/introscan/internal/api"
	"github.com/introscan/introscan/internal/audiotool"
	"github.com/introscan/introscan/internal/config"
	"github.com/introscan/introscan/internal/db"
	"github.com/introscan/introscan/internal/edl"
	"github.com/introscan/introscan/internal/intro"
	"github.com/introscan/introscan/internal/jobs"
	"github.com/introscan/introscan/internal/notifyws"
	"github.com/introscan/introscan/internal/season"
	"github.com/introscan/introscan/internal/store"
	"github.com/introscan/introscan/internal/version"
	"github.com/introscan/introscan/internal/watcher"
)

const bannerArt = `
  _____       _               _____
 |_   _|_ __ | |_ _ __ ___  __ / ___|  ___ __ _ _ __
   | | | '_ \| __| '__/ _ \/ /  \___ \ / __/ _' | '_ \
   | | | | | | |_| | | (_) \ \   ___) | (_| (_| | | | |
   |_| |_| |_|\__|_|  \___/\_\ |____/ \___\__,_|_| |_|
`

func main() {
	v := version.Load()
	fmt.Println(bannerArt)
	fmt.Printf("  Intro Scanner\n")
	fmt.Printf("  Version %s\n\n", v.Version)

	cfg := config.Load()

	database, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	cfg.MergeFromDB(database)

	introStore := store.New(database)
	if err := introStore.EnsureSchema(); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	globalStore := intro.NewStore()
	seeded, err := introStore.GetAll()
	if err != nil {
		log.Printf("Warning: failed to seed intro store from database: %v", err)
	} else {
		globalStore.Merge(seeded, nil)
		log.Printf("Seeded intro store with %d stored episodes", len(seeded))
	}

	notifier := notifyws.NewHub()
	edlManager := &edl.Manager{Action: cfg.EdlAction, RegenerateAll: cfg.RegenerateEdlFiles}

	analyzer := &season.Analyzer{
		Tool:    audiotool.NewFFmpegTool(cfg.FFmpegPath),
		Store:   globalStore,
		Persist: introStore.SaveAll,
		Config: season.Config{
			Params:                      cfg.Params,
			SilenceDetectionMinDuration: cfg.SilenceDetectionMinDuration,
			AnalyzeSeasonZero:           cfg.AnalyzeSeasonZero,
		},
	}

	jobQueue := jobs.NewQueue(cfg.RedisAddr, cfg.MaxParallelism)
	jobQueue.RegisterHandler(jobs.TaskAnalyzeSeason, jobs.NewAnalyzeSeasonHandler(analyzer, edlManager, notifier))

	go func() {
		if err := jobQueue.Start(context.Background()); err != nil {
			log.Printf("Job queue worker error: %v", err)
		}
	}()
	defer jobQueue.Stop()

	fsWatcher, err := watcher.New(cfg.DataDir, func(path string) {
		if err := edlManager.Regenerate(path, globalStore); err != nil {
			log.Printf("[watcher] edl regeneration failed for %s: %v", path, err)
		}
	})
	if err != nil {
		log.Printf("EDL directory watcher failed to start: %v", err)
	} else {
		fsWatcher.Start()
		defer fsWatcher.Stop()
	}

	server := api.NewServer(cfg, jobQueue, globalStore, notifier, edlManager)

	log.Printf("Server starting on :%d\n", cfg.Port)
	log.Printf("WebSocket available at ws://localhost:%d/ws\n", cfg.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
