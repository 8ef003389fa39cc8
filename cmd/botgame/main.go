// Package main is the entry point for the bot game.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lcnr/shitty-bot-game/internal/bot"
	"github.com/lcnr/shitty-bot-game/internal/game"
	"github.com/lcnr/shitty-bot-game/internal/gamedata"
	"github.com/lcnr/shitty-bot-game/internal/journal"
	"github.com/lcnr/shitty-bot-game/internal/observer"
	"github.com/lcnr/shitty-bot-game/internal/progress"
	"github.com/lcnr/shitty-bot-game/internal/telemetry"
	"github.com/lcnr/shitty-bot-game/internal/ui"
)

// programSeparator splits one program source per robot in a program file.
const programSeparator = "\n---\n"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run wires everything up from flags and config and plays until done.
func run() error {
	configPath := flag.String("config", "", "YAML config file")
	levelID := flag.String("level", "", "level id to start on (default: first level)")
	programPath := flag.String("program", "", "program source file, one program per robot separated by ---")
	headless := flag.Bool("headless", false, "run the level without a terminal UI and log every event")
	asmPath := flag.String("asm", "", "assemble a program file, print its listing and exit")
	showProgress := flag.Bool("progress", false, "list beaten levels and exit")
	flag.Parse()

	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if *asmPath != "" {
		if err := printListing(*asmPath); err != nil {
			return fmt.Errorf("assembly failed: %w", err)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var store *progress.Store
	if cfg.ProgressPath != "" {
		store, err = progress.Open(cfg.ProgressPath)
		if err != nil {
			return fmt.Errorf("failed to open progress: %w", err)
		}
		defer store.Close()
	}

	if *showProgress {
		if err := printProgress(ctx, store); err != nil {
			return fmt.Errorf("failed to read progress: %w", err)
		}
		return nil
	}

	// Initialize telemetry
	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
		log.Printf("Game will run without observability")
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	levels, err := gamedata.LoadLevelRegistry(cfg.LevelsPath)
	if err != nil {
		return fmt.Errorf("failed to load levels: %w", err)
	}
	index := 0
	if *levelID != "" {
		if index = levels.IndexOf(*levelID); index < 0 {
			return fmt.Errorf("unknown level %q", *levelID)
		}
	}

	var programs []bot.Program
	if *programPath != "" {
		if programs, err = readPrograms(*programPath); err != nil {
			return fmt.Errorf("failed to load program: %w", err)
		}
	}

	var recorders []game.Recorder
	if cfg.JournalPath != "" {
		w, err := journal.Create(cfg.JournalPath)
		if err != nil {
			return fmt.Errorf("failed to create journal: %w", err)
		}
		defer func() {
			if err := w.Close(); err != nil {
				log.Printf("Error closing journal: %v", err)
			}
		}()
		recorders = append(recorders, w)
	}

	if cfg.ObserverAddr != "" {
		// The terminal UI owns stderr, so only headless runs log connections.
		logger := log.New(io.Discard, "", 0)
		if *headless {
			logger = log.New(os.Stderr, "", log.LstdFlags)
		}
		obs := observer.NewServer(logger)
		srv := &http.Server{Addr: cfg.ObserverAddr, Handler: obs.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Observer stopped: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		recorders = append(recorders, obs)
	}

	if *headless {
		return runHeadless(ctx, cfg, levels.At(index), programs, recorders, store)
	}

	g, err := game.New(cfg, levels, gamedata.MustLoadPalette())
	if err != nil {
		return fmt.Errorf("failed to initialize game: %w", err)
	}
	defer g.Close()
	for _, r := range recorders {
		g.AddRecorder(r)
	}
	if store != nil {
		g.SetProgress(store)
	}
	if err := g.LoadLevel(index, programs); err != nil {
		return fmt.Errorf("failed to load level: %w", err)
	}
	return g.Run(ctx)
}

// loadConfig reads the config file, if any, then applies BOTGAME_* overrides.
func loadConfig(path string) (game.Config, error) {
	cfg := game.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = game.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.ApplyEnv(os.LookupEnv)
}

// runHeadless plays one level to the end, logging every event.
func runHeadless(ctx context.Context, cfg game.Config, def *gamedata.LevelDef, programs []bot.Program, recorders []game.Recorder, store *progress.Store) error {
	var (
		level *game.Level
		err   error
	)
	if programs == nil {
		level, err = game.SolutionLevel(def)
	} else {
		level, err = game.NewLevel(def, programs)
	}
	if err != nil {
		return err
	}

	sim := game.NewSimulation(level)
	for _, r := range recorders {
		sim.AddRecorder(r)
	}

	logger := log.New(os.Stdout, "", 0)
	logger.Printf("level %s: %s", level.ID, level.Name)
	status, err := sim.Run(ctx, ui.NewLogPresenter(logger), cfg.MaxTicks)
	if err != nil {
		return err
	}

	switch {
	case status.State == game.StateComplete:
		logger.Printf("level complete in %d ticks", sim.Ticks())
		if store != nil {
			return store.MarkBeaten(ctx, level.ID, sim.Ticks())
		}
	case status.Over():
		logger.Printf("%s (after %d ticks)", status.Reason, sim.Ticks())
	default:
		logger.Printf("still running after %d ticks", sim.Ticks())
	}
	return nil
}

// readPrograms assembles a program file.
func readPrograms(path string) ([]bot.Program, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	return game.AssemblePrograms(strings.Split(text, programSeparator))
}

// printListing assembles every program of a file and prints the cells.
func printListing(path string) error {
	programs, err := readPrograms(path)
	if err != nil {
		return err
	}
	for i, p := range programs {
		if len(programs) > 1 {
			fmt.Printf("# robot %d\n", i)
		}
		fmt.Print(p.String())
	}
	return nil
}

// printProgress lists the beaten levels.
func printProgress(ctx context.Context, store *progress.Store) error {
	if store == nil {
		return errors.New("progress tracking is disabled")
	}
	records, err := store.All(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no levels beaten yet")
	}
	for _, r := range records {
		fmt.Printf("%-16s %4d ticks  %s\n", r.LevelID, r.Ticks, r.BeatenAt.Local().Format(time.DateTime))
	}
	return nil
}
