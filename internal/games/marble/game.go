// Package marble implements the marble race: roll a ball down a walled
// course of moving obstacles to the finish as fast as possible.
//
// The race runs on a small rigid-body world. Each frame the simulation reads
// the held input, pushes the marble, moves the obstacles, steps the world
// once and copies every pose onto a scene that the terminal renderer draws.
package marble

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/marble-race/internal/config"
	"github.com/vovakirdan/marble-race/internal/core"
	"github.com/vovakirdan/marble-race/internal/registry"
	"github.com/vovakirdan/marble-race/internal/scene"
)

// GameID is the registry and storage identifier.
const GameID = "marble"

// Package-level config path, set by the CLI before games are created.
var (
	configMu   sync.RWMutex
	configPath string
)

// SetConfigPath sets the YAML config file used by games created afterwards.
func SetConfigPath(path string) {
	configMu.Lock()
	defer configMu.Unlock()
	configPath = path
}

func loadConfig(logger *log.Logger) config.MarbleConfig {
	configMu.RLock()
	path := configPath
	configMu.RUnlock()

	cfg, err := config.LoadMarble(path)
	if err != nil {
		logger.Warn("using default config", "path", path, "err", err)
		return config.DefaultMarbleConfig()
	}
	return cfg
}

func init() {
	registry.Register(GameID, func() registry.Game {
		return New()
	})
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

// Game adapts a Simulation to the registry.Game interface.
type Game struct {
	base    *config.MarbleConfig
	cfg     config.MarbleConfig
	runtime core.RuntimeConfig
	logger  *log.Logger
	now     func() time.Time

	sim *Simulation
	err error
}

// New creates a game that loads its config on Reset.
func New() *Game {
	return &Game{logger: discardLogger()}
}

// NewWithConfig creates a game with a fixed config instead of loading one.
func NewWithConfig(cfg config.MarbleConfig) *Game {
	g := New()
	g.base = &cfg
	return g
}

// SetLogger sets the logger for this game and its simulation.
func (g *Game) SetLogger(l *log.Logger) {
	if l == nil {
		l = discardLogger()
	}
	g.logger = l
}

// SetClock replaces time.Now for run timestamps.
func (g *Game) SetClock(now func() time.Time) { g.now = now }

// ID returns the unique identifier for this game.
func (g *Game) ID() string { return GameID }

// Title returns the display name for this game.
func (g *Game) Title() string { return "Marble Race" }

// Reset builds a fresh world for the runtime config: course length from
// Blocks or the difficulty preset, course seed from Seed.
func (g *Game) Reset(rc core.RuntimeConfig) {
	g.runtime = rc

	var cfg config.MarbleConfig
	if g.base != nil {
		cfg = *g.base
	} else {
		cfg = loadConfig(g.logger)
	}
	if rc.Difficulty != "" {
		preset, ok := config.ParseDifficulty(rc.Difficulty)
		if !ok {
			g.logger.Warn("unknown difficulty, using normal", "difficulty", rc.Difficulty)
		}
		config.ApplyMarblePreset(&cfg, preset)
	}
	g.cfg = cfg

	g.sim, g.err = NewSimulation(cfg, Options{
		Blocks: rc.Blocks,
		Seed:   rc.Seed,
		Now:    g.now,
		Logger: g.logger,
	})
	if g.err != nil {
		g.logger.Error("cannot start race", "err", g.err)
	}
}

// Step advances the race by one frame. dt is the real time since the
// previous frame.
func (g *Game) Step(in core.InputFrame, dt time.Duration) core.StepResult {
	if g.sim == nil {
		return core.StepResult{State: g.State()}
	}
	g.sim.Tick(in, dt.Seconds())
	return core.StepResult{State: g.sim.State()}
}

// State returns the current run state.
func (g *Game) State() core.GameState {
	if g.sim == nil {
		return core.GameState{Phase: core.PhaseReady, Seed: g.runtime.Seed}
	}
	return g.sim.State()
}

// Restart draws a new course if a run is in progress or finished.
func (g *Game) Restart() bool {
	if g.sim == nil {
		return false
	}
	return g.sim.Restart()
}

// Simulation exposes the running simulation (nil before Reset or after a
// failed Reset).
func (g *Game) Simulation() *Simulation { return g.sim }

// HoldDuration is how long a key press counts as held.
func (g *Game) HoldDuration() time.Duration {
	return time.Duration(g.cfg.Input.HoldMS) * time.Millisecond
}

// Config returns the config of the current race.
func (g *Game) Config() config.MarbleConfig { return g.cfg }

// Frame is what spectators receive each broadcast.
type Frame struct {
	Phase   string         `json:"phase"`
	Elapsed float64        `json:"elapsed"`
	Blocks  int            `json:"blocks"`
	Seed    int64          `json:"seed"`
	Bumps   int            `json:"bumps"`
	Scene   scene.Snapshot `json:"scene"`
}

// Snapshot returns the current frame for spectators.
func (g *Game) Snapshot() Frame {
	st := g.State()
	f := Frame{
		Phase:   st.Phase.String(),
		Elapsed: st.Elapsed.Seconds(),
		Blocks:  st.Blocks,
		Seed:    st.Seed,
		Bumps:   st.Bumps,
	}
	if g.sim != nil {
		f.Scene = g.sim.Scene().Snapshot()
	}
	return f
}
