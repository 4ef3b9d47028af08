package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/marble-race/internal/core"
	"github.com/vovakirdan/marble-race/internal/games/marble"
	"github.com/vovakirdan/marble-race/internal/platform/spectate"
	"github.com/vovakirdan/marble-race/internal/platform/tui"
	"github.com/vovakirdan/marble-race/internal/registry"
	"github.com/vovakirdan/marble-race/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagBlocks     int
	flagSpectate   string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Race a course",
	Long: `Start a race right away.

Controls:
  Up/W, Down/S     - Roll forward / back
  Left/A, Right/D  - Roll left / right
  Space            - Jump
  R                - New course (while racing or after the finish)
  Ctrl+S           - Save a text screenshot
  Q/Ctrl+C         - Quit

Difficulty options:
  easy     - 3 blocks, lazy spinners
  normal   - 5 blocks
  hard     - 10 blocks, fast spinners
  marathon - 20 blocks

--blocks overrides the block count of the preset.

With --spectate the race is streamed as JSON frames over a WebSocket at
ws://<addr>/ws for external viewers.

Examples:
  marble play
  marble play --difficulty hard
  marble play --blocks 8 --seed 42
  marble play --config ./my-marble.yaml
  marble play --spectate :8090`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	addRaceFlags(playCmd)
	playCmd.Flags().IntVar(&flagBlocks, "blocks", 0, "Obstacle blocks in the course (0 = config or preset)")
	playCmd.Flags().StringVar(&flagSpectate, "spectate", "", "Stream frames to WebSocket viewers on this address")
}

// addRaceFlags registers the flags shared by play and menu.
func addRaceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom marble config YAML")
	cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, marathon")
}

// terminalConfig returns the runtime config for the current terminal.
func terminalConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW, cfg.ScreenH = w, h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}

// openStore opens the runs database. The race works without one.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		logger.Warn("could not open runs database", "path", flagDBPath, "err", err)
		return nil
	}
	return store
}

func runPlay(_ *cobra.Command, _ []string) {
	marble.SetConfigPath(flagConfig)

	logger, closeLog, err := openLogFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		logger = log.New(io.Discard)
	}
	defer closeLog()

	cfg := terminalConfig()
	cfg.Blocks = flagBlocks
	cfg.Difficulty = flagDifficulty

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store := openStore(logger)
	opts := tui.Options{
		Player: playerName(),
		Logger: logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if flagSpectate != "" {
		hub := spectate.NewHub(spectate.DefaultInterval, logger.WithPrefix("spectate"))
		go func() {
			if err := spectate.ListenAndServe(ctx, flagSpectate, hub); err != nil {
				logger.Error("spectator stream stopped", "err", err)
			}
		}()
		opts.OnFrame = func(g registry.Game) {
			if mg, ok := g.(*marble.Game); ok {
				hub.Publish(mg.Snapshot())
			}
		}
	}

	logger.Info("race starting", "blocks", cfg.Blocks, "difficulty", cfg.Difficulty, "seed", cfg.Seed)
	runErr := tui.Run(game, store, cfg, opts)

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
