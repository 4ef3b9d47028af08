package marble

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/marble-race/internal/config"
	"github.com/vovakirdan/marble-race/internal/physics"
)

var up = mgl64.Vec3{0, 1, 0}

// Obstacle is one moving obstacle. Speed and PhaseOffset are drawn once when
// the course is built and never change afterwards.
type Obstacle struct {
	Kind        ObstacleKind
	Segment     Segment
	Speed       float64 // Spinner angular rate in rad/s, either sign
	PhaseOffset float64 // Oscillator phase in [0, 2π)
	Body        physics.Handle
	Proxy       int
}

func newObstacle(seg Segment, rng *rand.Rand, cfg config.ObstaclesConfig) Obstacle {
	// Both values are drawn for every kind so the stream stays aligned with
	// the segment index whatever the kind sequence is.
	speed := cfg.Spinner.MinSpeed + rng.Float64()*(cfg.Spinner.MaxSpeed-cfg.Spinner.MinSpeed)
	if rng.Intn(2) == 0 {
		speed = -speed
	}
	return Obstacle{
		Kind:        seg.Kind,
		Segment:     seg,
		Speed:       speed,
		PhaseOffset: rng.Float64() * 2 * math.Pi,
	}
}

// HalfExtents returns the collider size of the obstacle.
func (o Obstacle) HalfExtents(cfg config.ObstaclesConfig) mgl64.Vec3 {
	switch o.Kind {
	case Limbo:
		return cfg.Limbo.HalfExtents
	case Axe:
		return cfg.Axe.HalfExtents
	default:
		return cfg.Spinner.HalfExtents
	}
}

// TargetPose returns where the obstacle is at simulated time t. It is a pure
// function of t and the obstacle's fixed parameters.
func (o Obstacle) TargetPose(t float64, cfg config.ObstaclesConfig) physics.Pose {
	z := o.Segment.Z
	switch o.Kind {
	case Limbo:
		y := cfg.Limbo.BaseHeight + cfg.Limbo.Amplitude*math.Sin(t+o.PhaseOffset)
		return physics.NewPose(mgl64.Vec3{0, y, z})
	case Axe:
		x := cfg.Axe.Amplitude * math.Sin(t+o.PhaseOffset)
		return physics.NewPose(mgl64.Vec3{x, cfg.Axe.BaseHeight, z})
	default:
		return physics.Pose{
			Position: mgl64.Vec3{0, cfg.Spinner.Height, z},
			Rotation: mgl64.QuatRotate(t*o.Speed, up),
		}
	}
}

// Arena holds the obstacles of the current course. It is rebuilt wholesale
// with the course.
type Arena struct {
	obstacles []Obstacle
}

// Obstacles returns the live obstacles in segment order.
func (a *Arena) Obstacles() []Obstacle { return a.obstacles }

// Len returns the number of obstacles.
func (a *Arena) Len() int { return len(a.obstacles) }

// Update submits the kinematic target of every obstacle for time t.
func (a *Arena) Update(w *physics.World, t float64, cfg config.ObstaclesConfig) {
	for _, o := range a.obstacles {
		w.SetKinematicTarget(o.Body, o.TargetPose(t, cfg))
	}
}
