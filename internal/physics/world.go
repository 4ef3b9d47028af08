// Package physics is a small rigid-body world for ball-shaped dynamic bodies
// rolling over fixed and kinematic boxes.
//
// Bodies are addressed by generation-checked handles. Using a handle after its
// body was destroyed is a programming error and panics.
package physics

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultIterations is the number of contact passes per step.
const DefaultIterations = 4

// CollisionEvent reports that two bodies started touching.
type CollisionEvent struct {
	Self  Handle
	Other Handle
	// Normal points from Other toward Self.
	Normal mgl64.Vec3
	Point  mgl64.Vec3
}

type slot struct {
	gen  uint32
	body *body
}

type listener struct {
	id int
	fn func(CollisionEvent)
}

// World holds bodies and advances them in fixed steps.
type World struct {
	gravity    mgl64.Vec3
	iterations int

	slots []slot
	free  []uint32
	count int

	listeners  map[Handle][]listener
	nextListen int
	touching   map[pairKey]contact
}

// NewWorld creates an empty world with the given gravity.
func NewWorld(gravity mgl64.Vec3) *World {
	return &World{
		gravity:    gravity,
		iterations: DefaultIterations,
		listeners:  make(map[Handle][]listener),
		touching:   make(map[pairKey]contact),
	}
}

// SetIterations sets the number of contact passes per step (minimum 1).
func (w *World) SetIterations(n int) {
	if n < 1 {
		n = 1
	}
	w.iterations = n
}

// Gravity returns the world gravity.
func (w *World) Gravity() mgl64.Vec3 { return w.gravity }

// CreateBody adds a body and returns its handle.
func (w *World) CreateBody(desc BodyDesc) (Handle, error) {
	b, err := newBody(desc)
	if err != nil {
		return Handle{}, err
	}
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		idx = uint32(len(w.slots))
		w.slots = append(w.slots, slot{})
	}
	s := &w.slots[idx]
	s.gen++
	s.body = b
	w.count++
	return Handle{index: idx, gen: s.gen}, nil
}

// DestroyBody removes a body. Its handle and collision listeners become invalid.
func (w *World) DestroyBody(h Handle) {
	w.get(h)
	w.slots[h.index].body = nil
	w.free = append(w.free, h.index)
	w.count--
	delete(w.listeners, h)
	for k := range w.touching {
		if k.a == h || k.b == h {
			delete(w.touching, k)
		}
	}
}

// Alive reports whether h refers to a live body.
func (w *World) Alive(h Handle) bool {
	if h.IsZero() || int(h.index) >= len(w.slots) {
		return false
	}
	s := w.slots[h.index]
	return s.gen == h.gen && s.body != nil
}

// BodyCount returns the number of live bodies.
func (w *World) BodyCount() int { return w.count }

func (w *World) get(h Handle) *body {
	if !w.Alive(h) {
		panic(fmt.Sprintf("physics: stale or unknown handle %v", h))
	}
	return w.slots[h.index].body
}

// Kind returns the body kind.
func (w *World) Kind(h Handle) BodyKind { return w.get(h).kind }

// Shape returns the body collider.
func (w *World) Shape(h Handle) Shape { return w.get(h).shape }

// UserData returns the value supplied at creation.
func (w *World) UserData(h Handle) any { return w.get(h).userData }

// Pose returns the current body pose.
func (w *World) Pose(h Handle) Pose { return w.get(h).pose }

// SetPose teleports a body.
func (w *World) SetPose(h Handle, p Pose) {
	b := w.get(h)
	b.pose = p.normalized()
	b.hasTarget = false
}

// LinearVelocity returns the body velocity in m/s.
func (w *World) LinearVelocity(h Handle) mgl64.Vec3 { return w.get(h).linVel }

// AngularVelocity returns the body angular velocity in rad/s.
func (w *World) AngularVelocity(h Handle) mgl64.Vec3 { return w.get(h).angVel }

// SetLinearVelocity overrides a dynamic body's velocity.
func (w *World) SetLinearVelocity(h Handle, v mgl64.Vec3) {
	if b := w.get(h); b.kind == Dynamic {
		b.linVel = v
	}
}

// SetAngularVelocity overrides a dynamic body's angular velocity.
func (w *World) SetAngularVelocity(h Handle, v mgl64.Vec3) {
	if b := w.get(h); b.kind == Dynamic {
		b.angVel = v
	}
}

// ApplyImpulse changes a dynamic body's momentum by v. Other kinds ignore it.
func (w *World) ApplyImpulse(h Handle, v mgl64.Vec3) {
	if b := w.get(h); b.kind == Dynamic {
		b.linVel = b.linVel.Add(v.Mul(b.invMass))
	}
}

// ApplyTorqueImpulse changes a dynamic body's angular momentum by v.
// Other kinds ignore it.
func (w *World) ApplyTorqueImpulse(h Handle, v mgl64.Vec3) {
	if b := w.get(h); b.kind == Dynamic {
		b.angVel = b.angVel.Add(v.Mul(b.invInertia))
	}
}

// SetKinematicTarget schedules a kinematic body to reach p at the start of
// the next Step. Only the latest target before a step counts. Other kinds
// ignore it.
func (w *World) SetKinematicTarget(h Handle, p Pose) {
	if b := w.get(h); b.kind == KinematicPosition {
		b.target = p
		b.hasTarget = true
	}
}

// OnCollision registers fn for contacts involving h. fn runs after the step
// in which the pair started touching. The returned func unregisters it.
func (w *World) OnCollision(h Handle, fn func(CollisionEvent)) (cancel func()) {
	w.get(h)
	w.nextListen++
	id := w.nextListen
	w.listeners[h] = append(w.listeners[h], listener{id: id, fn: fn})
	return func() {
		ls := w.listeners[h]
		for i, l := range ls {
			if l.id == id {
				w.listeners[h] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Step advances the world by dt seconds.
//
// Kinematic bodies jump to their pending targets first, then dynamic bodies
// receive gravity and damping, move, and are pushed out of everything they
// overlap.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	for i := range w.slots {
		b := w.slots[i].body
		if b == nil {
			continue
		}
		switch b.kind {
		case KinematicPosition:
			b.applyTarget(dt)
		case Dynamic:
			b.linVel = b.linVel.Add(w.gravity.Mul(dt)).Mul(1 / (1 + dt*b.linDamping))
			b.angVel = b.angVel.Mul(1 / (1 + dt*b.angDamping))
			b.integrate(dt)
		}
	}

	touching := w.solveContacts()
	w.dispatch(touching)
}

func (w *World) dispatch(touching map[pairKey]contact) {
	var events []CollisionEvent
	for k, c := range touching {
		if _, ok := w.touching[k]; ok {
			continue
		}
		// c.normal points from b toward a.
		events = append(events,
			CollisionEvent{Self: k.a, Other: k.b, Normal: c.normal, Point: c.point},
			CollisionEvent{Self: k.b, Other: k.a, Normal: c.normal.Mul(-1), Point: c.point},
		)
	}
	w.touching = touching
	slices.SortFunc(events, func(x, y CollisionEvent) int {
		if c := cmp.Compare(x.Self.index, y.Self.index); c != 0 {
			return c
		}
		return cmp.Compare(x.Other.index, y.Other.index)
	})
	for _, ev := range events {
		for _, l := range w.listeners[ev.Self] {
			l.fn(ev)
		}
	}
}
