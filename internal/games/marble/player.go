package marble

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/marble-race/internal/config"
	"github.com/vovakirdan/marble-race/internal/physics"
)

// Directions is the held directional input for one step.
type Directions struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
}

// Any reports whether any direction is held.
func (d Directions) Any() bool {
	return d.Forward || d.Backward || d.Left || d.Right
}

// MoveImpulse sums the impulse and torque for the held directions over dt
// seconds. Forward is -Z; each direction pairs a push along its axis with a
// roll about the other horizontal axis.
func MoveImpulse(d Directions, dt, impulseStrength, torqueStrength float64) (impulse, torque mgl64.Vec3) {
	i := impulseStrength * dt
	t := torqueStrength * dt
	if d.Forward {
		impulse[2] -= i
		torque[0] -= t
	}
	if d.Backward {
		impulse[2] += i
		torque[0] += t
	}
	if d.Left {
		impulse[0] -= i
		torque[2] += t
	}
	if d.Right {
		impulse[0] += i
		torque[2] -= t
	}
	return impulse, torque
}

// SmoothToward moves current toward desired by min(rate*dt, 1) of the gap.
// The factor is capped so a long frame lands on desired instead of past it.
func SmoothToward(current, desired mgl64.Vec3, rate, dt float64) mgl64.Vec3 {
	f := math.Min(rate*dt, 1)
	if f <= 0 {
		return current
	}
	return current.Add(desired.Sub(current).Mul(f))
}

// Controller drives the marble body and the chase camera that follows it.
type Controller struct {
	world *physics.World
	body  physics.Handle
	cfg   config.PlayerConfig
	cam   config.CameraConfig

	camPos    mgl64.Vec3
	camTarget mgl64.Vec3
}

// NewController creates the marble at its spawn point.
func NewController(world *physics.World, pcfg config.PlayerConfig, ccfg config.CameraConfig) (*Controller, error) {
	h, err := world.CreateBody(physics.BodyDesc{
		Kind:           physics.Dynamic,
		Pose:           physics.NewPose(pcfg.Spawn),
		Shape:          physics.Ball{Radius: pcfg.Radius},
		Restitution:    pcfg.Restitution,
		Friction:       pcfg.Friction,
		LinearDamping:  pcfg.LinearDamping,
		AngularDamping: pcfg.AngularDamping,
	})
	if err != nil {
		return nil, err
	}
	return &Controller{
		world:  world,
		body:   h,
		cfg:    pcfg,
		cam:    ccfg,
		camPos: ccfg.Start,
	}, nil
}

// Body returns the marble's handle.
func (c *Controller) Body() physics.Handle { return c.body }

// Position returns the marble center.
func (c *Controller) Position() mgl64.Vec3 { return c.world.Pose(c.body).Position }

// Move applies one impulse and one torque impulse for the held directions.
func (c *Controller) Move(d Directions, dt float64) {
	impulse, torque := MoveImpulse(d, dt, c.cfg.ImpulseStrength, c.cfg.TorqueStrength)
	c.world.ApplyImpulse(c.body, impulse)
	c.world.ApplyTorqueImpulse(c.body, torque)
}

// Grounded reports whether a surface lies within the jump threshold below
// the marble.
func (c *Controller) Grounded() bool {
	origin := c.Position().Sub(mgl64.Vec3{0, c.cfg.JumpRayOffset, 0})
	hit, ok := c.world.CastRay(origin, mgl64.Vec3{0, -1, 0}, c.cfg.JumpRayLength, true)
	return ok && hit.Distance < c.cfg.JumpThreshold
}

// TryJump applies the jump impulse if the marble is grounded. Otherwise the
// request is dropped. It reports whether the marble jumped.
func (c *Controller) TryJump() bool {
	if !c.Grounded() {
		return false
	}
	c.world.ApplyImpulse(c.body, mgl64.Vec3{0, c.cfg.JumpImpulse, 0})
	return true
}

// UpdateCamera eases the camera toward its chase position behind the marble.
func (c *Controller) UpdateCamera(dt float64) {
	p := c.Position()
	c.camPos = SmoothToward(c.camPos, p.Add(c.cam.Offset), c.cam.Smoothing, dt)
	c.camTarget = SmoothToward(c.camTarget, p.Add(c.cam.TargetOffset), c.cam.Smoothing, dt)
}

// Camera returns the smoothed camera position and look-at target.
func (c *Controller) Camera() (pos, target mgl64.Vec3) { return c.camPos, c.camTarget }

// Respawn puts the marble back on the spawn point at rest. The camera keeps
// its smoothed state and glides back.
func (c *Controller) Respawn() {
	c.world.SetPose(c.body, physics.NewPose(c.cfg.Spawn))
	c.world.SetLinearVelocity(c.body, mgl64.Vec3{})
	c.world.SetAngularVelocity(c.body, mgl64.Vec3{})
}
