package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/marble-race/internal/config"
	"github.com/vovakirdan/marble-race/internal/registry"
	"github.com/vovakirdan/marble-race/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the course presets",
	Long: `Shows every difficulty preset with its course length and the best
recorded time on that length.`,
	Args: cobra.NoArgs,
	Run:  runList,
}

func runList(_ *cobra.Command, _ []string) {
	title := gameID
	if info, ok := registry.Info(gameID); ok {
		title = info.Title
	}

	// The list is still useful without a database.
	store, err := storage.Open(flagDBPath)
	if err == nil {
		defer store.Close()
	}

	rows := make([][]string, 0, len(config.Presets))
	for _, p := range config.Presets {
		blocks := config.BlocksForPreset(p)
		best := "--"
		if store != nil {
			if d, ok, err := store.BestTime(gameID, blocks); err == nil && ok {
				best = seconds(d)
			}
		}
		rows = append(rows, []string{string(p), strconv.Itoa(blocks), p.Description(), best})
	}

	fmt.Printf("%s courses\n", title)
	fmt.Println(renderTable([]string{"Preset", "Blocks", "Description", "Best"}, rows))
	fmt.Println("Race one with 'marble play --difficulty <preset>'.")
}
