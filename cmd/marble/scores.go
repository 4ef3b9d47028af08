package main

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/marble-race/internal/storage"
)

var (
	flagScoreBlocks int
	flagScoreLimit  int
	flagClear       bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the fastest runs",
	Long: `Display the fastest finished runs, per course length or overall,
followed by statistics for every course length raced.

Examples:
  marble scores
  marble scores --blocks 5
  marble scores --limit 3
  marble scores --clear`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoreBlocks, "blocks", 0, "Only courses with this many blocks (0 = all)")
	scoresCmd.Flags().IntVar(&flagScoreLimit, "limit", 10, "Number of runs to show")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every recorded run")
}

func runScores(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening runs database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearRuns(gameID); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing runs: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("All runs deleted.")
		return
	}

	runs, err := store.BestRuns(gameID, flagScoreBlocks, flagScoreLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		os.Exit(1)
	}

	title := "all courses"
	if flagScoreBlocks > 0 {
		title = fmt.Sprintf("%d blocks", flagScoreBlocks)
	}
	fmt.Printf("Fastest runs - %s\n", title)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'marble play' and reach the finish line to set the first time!")
		return
	}

	rows := make([][]string, 0, len(runs))
	for i, r := range runs {
		player := r.Player
		if player == "" {
			player = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			seconds(r.Duration),
			strconv.Itoa(r.Blocks),
			strconv.Itoa(r.Bumps),
			player,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	fmt.Println(renderTable([]string{"Rank", "Time", "Blocks", "Bumps", "Player", "Date"}, rows))

	stats, err := store.Stats(gameID)
	if err != nil || len(stats) == 0 {
		return
	}

	blocks := slices.Sorted(maps.Keys(stats))
	rows = rows[:0]
	for _, b := range blocks {
		st := stats[b]
		rows = append(rows, []string{
			strconv.Itoa(b),
			strconv.Itoa(st.Runs),
			seconds(st.BestTime),
			seconds(st.AvgTime),
			strconv.Itoa(st.TotalBumps),
		})
	}
	fmt.Println()
	fmt.Println(renderTable([]string{"Blocks", "Runs", "Best", "Average", "Bumps"}, rows))
}
