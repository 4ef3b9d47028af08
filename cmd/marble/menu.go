package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/marble-race/internal/games/marble"
	"github.com/vovakirdan/marble-race/internal/platform/tui"
	"github.com/vovakirdan/marble-race/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a course length, race, repeat",
	Long: `Start Marble Race with the course picker.

Use arrow keys or j/k to navigate, Enter to race, Tab for the leaderboard.
Quitting a race returns you to the picker.

Examples:
  marble menu
  marble menu --fps 30
  marble menu --db ./runs.db`,
	Args: cobra.NoArgs,
	Run:  runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom marble config YAML")
}

func runMenu(_ *cobra.Command, _ []string) {
	marble.SetConfigPath(flagConfig)

	logger, closeLog, err := openLogFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		logger = log.New(io.Discard)
	}
	defer closeLog()

	store := openStore(logger)
	cfg := terminalConfig()

	for {
		menuResult, err := tui.RunMenu(gameID, store, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}

		// Update config with any size changes
		cfg = menuResult.Config

		if menuResult.Quit {
			break
		}

		if menuResult.WantsScoreboard {
			goBack, sbErr := tui.RunScoreboard(gameID, store, cfg.ScreenW, cfg.ScreenH)
			if sbErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", sbErr)
			}
			if goBack {
				continue
			}
			break
		}

		game, err := registry.Create(gameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
			break
		}

		if err := tui.Run(game, store, cfg, tui.Options{Player: playerName(), Logger: logger}); err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		}
		// A fixed --seed applies to the first race only
		cfg.Seed = 0
	}

	if store != nil {
		store.Close()
	}
}
