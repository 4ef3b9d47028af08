package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Approach speeds below this bounce with zero restitution, so resting
	// bodies settle instead of jittering.
	restitutionThreshold = 1.0
	// Separation within which a pair still counts as touching for events.
	contactMargin = 1e-3
)

// pairKey identifies a contact pair. a is always a dynamic ball; when both
// bodies are dynamic a has the lower index.
type pairKey struct {
	a, b Handle
}

type contact struct {
	normal mgl64.Vec3 // From b toward a
	point  mgl64.Vec3
	depth  float64 // Negative when separated but within contactMargin
}

func (w *World) handleAt(i int) Handle {
	return Handle{index: uint32(i), gen: w.slots[i].gen}
}

// solveContacts pushes dynamic balls out of overlapping bodies and resolves
// their relative velocity. It returns every pair touching after the first pass.
func (w *World) solveContacts() map[pairKey]contact {
	touching := make(map[pairKey]contact)
	for pass := 0; pass < w.iterations; pass++ {
		for i := range w.slots {
			a := w.slots[i].body
			if a == nil || a.kind != Dynamic {
				continue
			}
			for j := range w.slots {
				b := w.slots[j].body
				if b == nil || i == j || (b.kind == Dynamic && j < i) {
					continue
				}
				c, ok := collide(a, b)
				if !ok {
					continue
				}
				if pass == 0 {
					touching[pairKey{a: w.handleAt(i), b: w.handleAt(j)}] = c
				}
				if c.depth > 0 {
					resolve(a, b, c)
				}
			}
		}
	}
	return touching
}

// collide tests a dynamic ball against any body.
func collide(a, b *body) (contact, bool) {
	r := a.radius()
	center := a.pose.Position
	reach := r + b.shape.BoundingRadius() + contactMargin
	if center.Sub(b.pose.Position).Len() > reach {
		return contact{}, false
	}
	switch s := b.shape.(type) {
	case Ball:
		return ballBall(center, r, b.pose.Position, s.Radius)
	case Cuboid:
		return ballBox(center, r, b.pose, s.HalfExtents)
	}
	return contact{}, false
}

func ballBall(ca mgl64.Vec3, ra float64, cb mgl64.Vec3, rb float64) (contact, bool) {
	d := ca.Sub(cb)
	dist := d.Len()
	if dist > ra+rb+contactMargin {
		return contact{}, false
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > 1e-9 {
		n = d.Mul(1 / dist)
	}
	return contact{
		normal: n,
		point:  cb.Add(n.Mul(rb)),
		depth:  ra + rb - dist,
	}, true
}

func ballBox(center mgl64.Vec3, r float64, pose Pose, h mgl64.Vec3) (contact, bool) {
	local := pose.InverseTransform(center)
	closest := mgl64.Vec3{
		mgl64.Clamp(local.X(), -h.X(), h.X()),
		mgl64.Clamp(local.Y(), -h.Y(), h.Y()),
		mgl64.Clamp(local.Z(), -h.Z(), h.Z()),
	}

	d := local.Sub(closest)
	dist := d.Len()
	if dist > 1e-9 {
		if dist > r+contactMargin {
			return contact{}, false
		}
		n := d.Mul(1 / dist)
		return contact{
			normal: pose.Rotation.Rotate(n),
			point:  pose.Transform(closest),
			depth:  r - dist,
		}, true
	}

	// Center inside the box: leave through the nearest face.
	axis, best := 0, math.Inf(1)
	for i := 0; i < 3; i++ {
		if gap := h[i] - math.Abs(local[i]); gap < best {
			axis, best = i, gap
		}
	}
	var n mgl64.Vec3
	n[axis] = 1
	if local[axis] < 0 {
		n[axis] = -1
	}
	face := local
	face[axis] = h[axis] * n[axis]
	return contact{
		normal: pose.Rotation.Rotate(n),
		point:  pose.Transform(face),
		depth:  r + best,
	}, true
}

// resolve separates a dynamic ball a from b and applies the normal and
// friction impulses at the contact point.
func resolve(a, b *body, c contact) {
	n := c.normal
	invMassSum := a.invMass + b.invMass

	// Positional projection, split by inverse mass.
	a.pose.Position = a.pose.Position.Add(n.Mul(c.depth * a.invMass / invMassSum))
	if b.kind == Dynamic {
		b.pose.Position = b.pose.Position.Sub(n.Mul(c.depth * b.invMass / invMassSum))
	}

	ra := n.Mul(-a.radius())
	pa := a.pose.Position.Add(ra)
	rel := a.pointVelocity(pa).Sub(b.pointVelocity(pa))
	vn := rel.Dot(n)
	if vn >= 0 {
		return
	}

	e := 0.0
	if -vn > restitutionThreshold {
		e = (a.restitution + b.restitution) / 2
	}
	jn := -(1 + e) * vn / invMassSum
	applyImpulse(a, b, n.Mul(jn), ra, pa)

	// Friction, clamped by the normal impulse of this pass.
	rel = a.pointVelocity(pa).Sub(b.pointVelocity(pa))
	vt := rel.Sub(n.Mul(rel.Dot(n)))
	speed := vt.Len()
	if speed < 1e-9 {
		return
	}
	t := vt.Mul(1 / speed)
	k := a.invMass + a.invInertia*lenSqr(ra.Cross(t))
	if b.kind == Dynamic {
		rb := pa.Sub(b.pose.Position)
		k += b.invMass + b.invInertia*lenSqr(rb.Cross(t))
	}
	mu := (a.friction + b.friction) / 2
	jt := math.Min(speed/k, mu*jn)
	applyImpulse(a, b, t.Mul(-jt), ra, pa)
}

// applyImpulse applies j to a at offset ra and the opposite impulse to a
// dynamic b at the same world point.
func applyImpulse(a, b *body, j, ra, point mgl64.Vec3) {
	a.linVel = a.linVel.Add(j.Mul(a.invMass))
	a.angVel = a.angVel.Add(ra.Cross(j).Mul(a.invInertia))
	if b.kind != Dynamic {
		return
	}
	rb := point.Sub(b.pose.Position)
	b.linVel = b.linVel.Sub(j.Mul(b.invMass))
	b.angVel = b.angVel.Sub(rb.Cross(j).Mul(b.invInertia))
}

func lenSqr(v mgl64.Vec3) float64 { return v.Dot(v) }
