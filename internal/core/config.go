package core

import "time"

// RuntimeConfig is what the platform tells a game when it (re)starts a race.
type RuntimeConfig struct {
	ScreenW    int    // Terminal columns
	ScreenH    int    // Terminal rows
	TickRate   int    // Frames per second requested from the platform
	Seed       int64  // Course seed; 0 lets the platform pick one
	Blocks     int    // Obstacle blocks; 0 keeps the game default
	Difficulty string // Preset name; "" keeps the config as loaded
}

// DefaultConfig is an 80x24 terminal at 60 frames per second with a seed
// chosen by the platform.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60}
}

// GameState is the read-only view of a run shared with the platform.
type GameState struct {
	Phase   Phase
	Elapsed time.Duration // Zero until the first input, frozen once Ended
	Blocks  int           // Obstacle blocks in the current course
	Seed    int64         // Seed of the current course
	Bumps   int           // Obstacle contacts during this run
}

// Finished reports whether the run crossed the finish line.
func (s GameState) Finished() bool { return s.Phase == PhaseEnded }

// StepResult is what Game.Step reports for one frame.
type StepResult struct {
	State GameState
}
