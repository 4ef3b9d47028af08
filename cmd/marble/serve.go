package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/marble-race/internal/games/marble"
	"github.com/vovakirdan/marble-race/internal/platform/tui"
)

var serveFlags struct {
	addr        string
	hostKey     string
	idleTimeout time.Duration
	config      string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host races over SSH",
	Long: `Listen for SSH connections and give every player their own race.

A session opens on the course picker; Esc during a race goes back to it.
All sessions share the server's runs database and so one leaderboard.
Without --host-key a key is generated once at ~/.marble/host_key.

Examples:
  marble serve
  marble serve --ssh :2222 --idle-timeout 10m
  marble serve --host-key ./host_key --db ./runs.db

Connect with:
  ssh -p 23234 localhost`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.addr, "ssh", ":23234", "SSH listen address (host:port)")
	f.StringVar(&serveFlags.hostKey, "host-key", "", "Host key file (generated when empty)")
	f.DurationVar(&serveFlags.idleTimeout, "idle-timeout", 30*time.Minute, "Disconnect idle sessions after this long")
	f.StringVar(&serveFlags.config, "config", "", "Path to custom marble config YAML")
}

func runServe(cmd *cobra.Command, _ []string) error {
	marble.SetConfigPath(serveFlags.config)

	// No TUI owns the terminal here, so the server logs to stderr.
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "marble-ssh",
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logger.SetLevel(level)

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = serveFlags.addr
	cfg.HostKeyPath = serveFlags.hostKey
	cfg.DBPath = flagDBPath
	cfg.TickRate = flagFPS
	cfg.IdleTimeout = serveFlags.idleTimeout
	cfg.Logger = logger

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger.Info("press Ctrl+C to stop")
	return server.ListenAndServe(ctx)
}
