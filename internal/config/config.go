// Package config provides YAML-based game configuration loading and
// difficulty presets for the marble race.
package config

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// MarbleConfig contains all tunable parameters of the marble race.
// The defaults are calibrated by feel; none of them has a derived meaning.
type MarbleConfig struct {
	Physics   PhysicsConfig   `yaml:"physics"`
	Player    PlayerConfig    `yaml:"player"`
	Camera    CameraConfig    `yaml:"camera"`
	Level     LevelConfig     `yaml:"level"`
	Obstacles ObstaclesConfig `yaml:"obstacles"`
	Input     InputConfig     `yaml:"input"`
}

// PhysicsConfig defines the rigid-body world parameters.
type PhysicsConfig struct {
	Gravity    mgl64.Vec3 `yaml:"gravity"`
	Timestep   float64    `yaml:"timestep"`   // Fixed world step in seconds
	Iterations int        `yaml:"iterations"` // Contact solver passes per step
	MaxDelta   float64    `yaml:"max_delta"`  // Upper bound on a frame delta in seconds
}

// PlayerConfig defines the marble body and its controls.
type PlayerConfig struct {
	Radius          float64    `yaml:"radius"`
	Spawn           mgl64.Vec3 `yaml:"spawn"`
	Restitution     float64    `yaml:"restitution"`
	Friction        float64    `yaml:"friction"`
	LinearDamping   float64    `yaml:"linear_damping"`
	AngularDamping  float64    `yaml:"angular_damping"`
	ImpulseStrength float64    `yaml:"impulse_strength"` // Per second of input
	TorqueStrength  float64    `yaml:"torque_strength"`  // Per second of input
	JumpImpulse     float64    `yaml:"jump_impulse"`
	JumpRayOffset   float64    `yaml:"jump_ray_offset"` // Ray origin below the marble center
	JumpRayLength   float64    `yaml:"jump_ray_length"`
	JumpThreshold   float64    `yaml:"jump_threshold"`  // Max hit distance that counts as grounded
}

// CameraConfig defines the chase camera.
type CameraConfig struct {
	Offset       mgl64.Vec3 `yaml:"offset"`        // Desired position relative to the marble
	TargetOffset mgl64.Vec3 `yaml:"target_offset"` // Desired look-at point relative to the marble
	Smoothing    float64    `yaml:"smoothing"`     // Lerp rate per second
	Start        mgl64.Vec3 `yaml:"start"`         // Camera position before the first frame
	FOV          float64    `yaml:"fov"`           // Vertical field of view in degrees
}

// LevelConfig defines the course layout.
type LevelConfig struct {
	Blocks        int      `yaml:"blocks"`
	Spacing       float64  `yaml:"spacing"`
	FallThreshold float64  `yaml:"fall_threshold"`
	Kinds         []string `yaml:"kinds"` // Obstacle kinds to draw from; empty = all
	WallHeight    float64  `yaml:"wall_height"`
	WallThickness float64  `yaml:"wall_thickness"`
}

// ObstaclesConfig defines the motion profile of every obstacle kind.
type ObstaclesConfig struct {
	Spinner SpinnerConfig    `yaml:"spinner"`
	Limbo   OscillatorConfig `yaml:"limbo"`
	Axe     OscillatorConfig `yaml:"axe"`
}

// SpinnerConfig defines the rotating bar.
type SpinnerConfig struct {
	MinSpeed    float64    `yaml:"min_speed"` // rad/s
	MaxSpeed    float64    `yaml:"max_speed"` // rad/s
	HalfExtents mgl64.Vec3 `yaml:"half_extents"`
	Height      float64    `yaml:"height"`
}

// OscillatorConfig defines a sine-driven obstacle.
type OscillatorConfig struct {
	BaseHeight  float64    `yaml:"base_height"`
	Amplitude   float64    `yaml:"amplitude"`
	HalfExtents mgl64.Vec3 `yaml:"half_extents"`
}

// InputConfig defines terminal input handling.
type InputConfig struct {
	// HoldMS is how long a key counts as held after its last press event.
	// Terminals do not report key releases.
	HoldMS int `yaml:"hold_ms"`
}

// Validate checks the configuration for values the simulation cannot run with.
func (c MarbleConfig) Validate() error {
	var errs []error
	if c.Physics.Timestep <= 0 {
		errs = append(errs, fmt.Errorf("physics.timestep must be positive, got %v", c.Physics.Timestep))
	}
	if c.Player.Radius <= 0 {
		errs = append(errs, fmt.Errorf("player.radius must be positive, got %v", c.Player.Radius))
	}
	if c.Player.JumpRayOffset <= c.Player.Radius {
		errs = append(errs, fmt.Errorf("player.jump_ray_offset must exceed player.radius, got %v", c.Player.JumpRayOffset))
	}
	if c.Level.Spacing <= 0 {
		errs = append(errs, fmt.Errorf("level.spacing must be positive, got %v", c.Level.Spacing))
	}
	if c.Level.Blocks < 0 {
		errs = append(errs, fmt.Errorf("level.blocks must not be negative, got %d", c.Level.Blocks))
	}
	if c.Obstacles.Spinner.MaxSpeed < c.Obstacles.Spinner.MinSpeed {
		errs = append(errs, errors.New("obstacles.spinner.max_speed is below min_speed"))
	}
	for _, k := range c.Level.Kinds {
		switch k {
		case "spinner", "limbo", "axe":
		default:
			errs = append(errs, fmt.Errorf("level.kinds: unknown obstacle kind %q", k))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid marble config: %w", errors.Join(errs...))
	}
	return nil
}
