// DungeonMaster is a narrative role-playing engine for solo adventures.
// Usage: dungeonmaster [--version] [--plain] [--script <file>]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/nathoo/dungeonmaster/cli"
	"github.com/nathoo/dungeonmaster/config"
	"github.com/nathoo/dungeonmaster/content"
	"github.com/nathoo/dungeonmaster/engine"
	"github.com/nathoo/dungeonmaster/narrative"
	"github.com/nathoo/dungeonmaster/storage"
	"github.com/nathoo/dungeonmaster/storage/memory"
	"github.com/nathoo/dungeonmaster/storage/sqlite"
	"github.com/nathoo/dungeonmaster/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("dungeonmaster %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		default:
			fmt.Fprintf(os.Stderr, "Usage: dungeonmaster [--version] [--plain] [--script <file>]\n")
			os.Exit(1)
		}
	}

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	if err := run(plain, scriptFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(plain bool, scriptFile string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(log)

	tables, err := content.Load(cfg.ContentDir)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	var store storage.Store
	if cfg.DatabasePath == ":memory:" {
		store = memory.New()
	} else {
		store, err = sqlite.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
	}
	defer store.Close()

	eng, err := engine.New(cfg, tables, store)
	if err != nil {
		return err
	}
	eng.SetLogger(log)

	var primary narrative.Provider
	if cfg.GeminiAPIKey != "" {
		gem, err := narrative.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warn("gemini unavailable, static narration only", "err", err)
		} else {
			defer gem.Close()
			primary = gem
		}
	}
	narrator := narrative.WithFallback(primary, log)

	// Script mode: feed commands from a file through the plain CLI.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()

		c := cli.New(eng, narrator)
		c.In = f
		c.EchoInput = true
		return c.Run(context.Background())
	}

	if plain {
		return cli.New(eng, narrator).Run(context.Background())
	}
	return tui.Run(eng, narrator, "local")
}
