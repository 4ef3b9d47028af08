package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/marble-race/internal/config"
	"github.com/vovakirdan/marble-race/internal/games/marble"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Print a generated course",
	Long: `Print the obstacle layout that a block count and seed produce.

The same --blocks and --seed always give the same course, so a layout can be
shared and raced again with 'marble play --blocks N --seed S'.

Examples:
  marble levels --seed 42
  marble levels --blocks 10 --seed 7
  marble levels --difficulty marathon`,
	Args: cobra.NoArgs,
	Run:  runLevels,
}

func init() {
	addRaceFlags(levelsCmd)
	levelsCmd.Flags().IntVar(&flagBlocks, "blocks", 0, "Obstacle blocks in the course (0 = config or preset)")
}

func runLevels(_ *cobra.Command, _ []string) {
	cfg, err := config.LoadMarble(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagDifficulty != "" {
		preset, ok := config.ParseDifficulty(flagDifficulty)
		if !ok {
			fmt.Fprintf(os.Stderr, "Warning: unknown difficulty %q, using normal\n", flagDifficulty)
		}
		config.ApplyMarblePreset(&cfg, preset)
	}

	blocks := cfg.Level.Blocks
	if flagBlocks > 0 {
		blocks = flagBlocks
	}
	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	kinds, err := marble.ParseObstacleKinds(cfg.Level.Kinds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	course := marble.NewCourse(blocks, seed, cfg.Level.Spacing, kinds)

	rows := [][]string{{"start", "", fmt.Sprintf("%.1f", 0.0)}}
	for _, seg := range course.Segments {
		rows = append(rows, []string{strconv.Itoa(seg.Index + 1), seg.Kind.String(), fmt.Sprintf("%.1f", seg.Z)})
	}
	rows = append(rows, []string{"end", "trophy", fmt.Sprintf("%.1f", course.FinishZ())})

	fmt.Printf("Course: %d blocks, seed %d\n", course.Count, course.Seed)
	fmt.Println(renderTable([]string{"Block", "Obstacle", "Z"}, rows))
	fmt.Printf("Finish line at z = %.1f\n", course.FinishLine())
}
