package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyKind selects how a body participates in the simulation.
type BodyKind int

const (
	// Dynamic bodies are moved by gravity, impulses and contacts.
	Dynamic BodyKind = iota
	// Fixed bodies never move.
	Fixed
	// KinematicPosition bodies move only to the targets submitted with
	// SetKinematicTarget and push dynamic bodies without being pushed back.
	KinematicPosition
)

// String returns the kind name.
func (k BodyKind) String() string {
	switch k {
	case Dynamic:
		return "dynamic"
	case Fixed:
		return "fixed"
	case KinematicPosition:
		return "kinematic"
	default:
		return fmt.Sprintf("BodyKind(%d)", int(k))
	}
}

// Handle is an opaque reference to a body. The zero Handle refers to no body.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string { return fmt.Sprintf("body(%d:%d)", h.index, h.gen) }

// Pose is a rigid transform.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewPose returns a pose at p with identity rotation.
func NewPose(p mgl64.Vec3) Pose {
	return Pose{Position: p, Rotation: mgl64.QuatIdent()}
}

// Transform maps a local-space point into world space.
func (p Pose) Transform(local mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Rotate(local).Add(p.Position)
}

// InverseTransform maps a world-space point into local space.
func (p Pose) InverseTransform(world mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Conjugate().Rotate(world.Sub(p.Position))
}

func (p Pose) normalized() Pose {
	if p.Rotation.Len() < 1e-12 {
		p.Rotation = mgl64.QuatIdent()
	} else {
		p.Rotation = p.Rotation.Normalize()
	}
	return p
}

// BodyDesc describes a body to create.
type BodyDesc struct {
	Kind           BodyKind
	Pose           Pose
	Shape          Shape
	Restitution    float64
	Friction       float64
	LinearDamping  float64
	AngularDamping float64
	Density        float64 // Defaults to 1 when zero
	UserData       any
}

type body struct {
	kind        BodyKind
	pose        Pose
	linVel      mgl64.Vec3
	angVel      mgl64.Vec3
	shape       Shape
	restitution float64
	friction    float64
	linDamping  float64
	angDamping  float64
	invMass     float64
	invInertia  float64
	userData    any

	target    Pose
	hasTarget bool
}

func newBody(desc BodyDesc) (*body, error) {
	if desc.Shape == nil {
		return nil, fmt.Errorf("%w: nil shape", ErrInvalidShape)
	}
	if err := desc.Shape.validate(); err != nil {
		return nil, err
	}
	b := &body{
		kind:        desc.Kind,
		pose:        desc.Pose.normalized(),
		shape:       desc.Shape,
		restitution: desc.Restitution,
		friction:    desc.Friction,
		linDamping:  desc.LinearDamping,
		angDamping:  desc.AngularDamping,
		userData:    desc.UserData,
	}
	if desc.Kind != Dynamic {
		return b, nil
	}

	ball, ok := desc.Shape.(Ball)
	if !ok {
		return nil, ErrUnsupportedShape
	}
	density := desc.Density
	if density <= 0 {
		density = 1
	}
	mass := density * ball.Volume()
	b.invMass = 1 / mass
	// Solid sphere: I = 2/5 m r^2
	b.invInertia = 1 / (0.4 * mass * ball.Radius * ball.Radius)
	return b, nil
}

// radius returns the ball radius of a dynamic body.
func (b *body) radius() float64 {
	return b.shape.(Ball).Radius
}

// pointVelocity returns the velocity of the body material at world point p.
func (b *body) pointVelocity(p mgl64.Vec3) mgl64.Vec3 {
	return b.linVel.Add(b.angVel.Cross(p.Sub(b.pose.Position)))
}

// applyTarget moves a kinematic body onto its pending target and derives the
// velocities implied by that move.
func (b *body) applyTarget(dt float64) {
	if !b.hasTarget {
		b.linVel = mgl64.Vec3{}
		b.angVel = mgl64.Vec3{}
		return
	}
	target := b.target.normalized()
	b.linVel = target.Position.Sub(b.pose.Position).Mul(1 / dt)
	b.angVel = angularVelocity(b.pose.Rotation, target.Rotation, dt)
	b.pose = target
	b.hasTarget = false
}

// angularVelocity returns the constant angular velocity that rotates from to
// to in dt seconds along the shortest arc.
func angularVelocity(from, to mgl64.Quat, dt float64) mgl64.Vec3 {
	delta := to.Mul(from.Conjugate()).Normalize()
	if delta.W < 0 {
		delta = delta.Scale(-1)
	}
	w := mgl64.Clamp(delta.W, -1, 1)
	s := math.Sqrt(1 - w*w)
	if s < 1e-9 {
		return mgl64.Vec3{}
	}
	angle := 2 * math.Acos(w)
	return delta.V.Mul(angle / (s * dt))
}

// integrate advances a dynamic body's pose by its velocities.
func (b *body) integrate(dt float64) {
	b.pose.Position = b.pose.Position.Add(b.linVel.Mul(dt))
	if b.angVel.Len() == 0 {
		return
	}
	spin := mgl64.Quat{W: 0, V: b.angVel}.Mul(b.pose.Rotation).Scale(0.5 * dt)
	b.pose.Rotation = b.pose.Rotation.Add(spin).Normalize()
}
