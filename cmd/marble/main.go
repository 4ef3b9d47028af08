// marble is a terminal marble race: roll a ball down a course of moving
// obstacles to the finish line as fast as you can.
//
// Usage:
//
//	marble play              - Race a course directly
//	marble menu              - Pick a course length interactively
//	marble levels            - Print a generated course
//	marble scores            - Show the fastest runs
//	marble serve             - Start SSH server for remote play
//	marble list              - List the course presets
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set the course seed (default: random)
//	--db <path>         - Set database path (default: ~/.marble/runs.db)
//	--log <path>        - Log file for local play (default: ~/.marble/marble.log)
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/marble-race/internal/games/marble"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogPath  string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "marble",
	SilenceUsage:  true,
	SilenceErrors: true, // main prints them
	Short:         "Marble Race - roll to the finish line in your terminal",
	Long: `Marble Race is a physics racing game for the terminal.

Roll the marble down a walled course of spinning bars, limbo bars and
swinging axes. The timer starts with your first move and stops at the
finish line. Fall off and you get a brand new course.

Available commands:
  play     - Race a course directly
  menu     - Pick a course length interactively
  levels   - Print a generated course
  scores   - View the fastest runs
  serve    - Start SSH server for remote play
  list     - Show the course presets and best times

Examples:
  marble play
  marble play --difficulty hard
  marble play --blocks 8 --seed 42 --spectate :8090
  marble menu
  marble serve --ssh :2222
  marble scores --blocks 5`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Course seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.marble/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagLogPath, "log", "~/.marble/marble.log", "Log file for local play")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}

// gameID is the game every command works with.
const gameID = marble.GameID

// expandHome replaces a leading ~ with the home directory.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// openLogFile builds the file logger used while Bubble Tea owns the
// terminal. The returned close function is never nil.
func openLogFile() (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, func() {}, fmt.Errorf("invalid --log-level: %w", err)
	}

	path := expandHome(flagLogPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, func() {}, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, func() {}, fmt.Errorf("cannot open log file: %w", err)
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "marble",
		Level:           level,
	})
	return logger, func() { f.Close() }, nil
}

// playerName is recorded with local runs.
func playerName() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}
