package config

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl64"
)

//go:embed defaults/marble.yaml
var defaultMarbleYAML []byte

// DefaultMarbleConfig returns the default marble race configuration.
func DefaultMarbleConfig() MarbleConfig {
	return MarbleConfig{
		Physics: PhysicsConfig{
			Gravity:    mgl64.Vec3{0, -9.81, 0},
			Timestep:   1.0 / 60.0,
			Iterations: 4,
			MaxDelta:   0.1,
		},
		Player: PlayerConfig{
			Radius:          0.3,
			Spawn:           mgl64.Vec3{0, 1, 0},
			Restitution:     0.2,
			Friction:        1,
			LinearDamping:   0.5,
			AngularDamping:  0.5,
			ImpulseStrength: 0.6,
			TorqueStrength:  0.2,
			JumpImpulse:     0.5,
			JumpRayOffset:   0.31,
			JumpRayLength:   10,
			JumpThreshold:   0.15,
		},
		Camera: CameraConfig{
			Offset:       mgl64.Vec3{0, 0.65, 2.25},
			TargetOffset: mgl64.Vec3{0, 0.25, 0},
			Smoothing:    5,
			Start:        mgl64.Vec3{10, 10, 10},
			FOV:          65,
		},
		Level: LevelConfig{
			Blocks:        3,
			Spacing:       4,
			FallThreshold: -4,
			WallHeight:    1.5,
			WallThickness: 0.3,
		},
		Obstacles: ObstaclesConfig{
			Spinner: SpinnerConfig{
				MinSpeed:    0.2,
				MaxSpeed:    1.2,
				HalfExtents: mgl64.Vec3{1.75, 0.15, 0.15},
				Height:      0.3,
			},
			Limbo: OscillatorConfig{
				BaseHeight:  1.15,
				Amplitude:   1,
				HalfExtents: mgl64.Vec3{1.75, 0.15, 0.15},
			},
			Axe: OscillatorConfig{
				BaseHeight:  0.75,
				Amplitude:   1.25,
				HalfExtents: mgl64.Vec3{0.75, 0.75, 0.15},
			},
		},
		Input: InputConfig{
			HoldMS: 180,
		},
	}
}

// GetDefaultYAML returns the embedded default YAML.
func GetDefaultYAML() []byte {
	return defaultMarbleYAML
}
