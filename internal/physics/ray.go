package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RayHit is the nearest intersection found by CastRay.
type RayHit struct {
	Handle   Handle
	Distance float64 // Along the normalized direction
	Point    mgl64.Vec3
}

// CastRay finds the nearest body hit by the ray within maxDist.
//
// With solid set, an origin inside a shape hits it at distance 0. Without it,
// the ray reports where it leaves that shape.
func (w *World) CastRay(origin, dir mgl64.Vec3, maxDist float64, solid bool) (RayHit, bool) {
	l := dir.Len()
	if l < 1e-12 || maxDist < 0 {
		return RayHit{}, false
	}
	dir = dir.Mul(1 / l)

	best := RayHit{Distance: math.Inf(1)}
	found := false
	for i := range w.slots {
		b := w.slots[i].body
		if b == nil {
			continue
		}
		var t float64
		var ok bool
		switch s := b.shape.(type) {
		case Ball:
			t, ok = raySphere(origin, dir, b.pose.Position, s.Radius, solid)
		case Cuboid:
			t, ok = rayBox(origin, dir, b.pose, s.HalfExtents, solid)
		}
		if ok && t <= maxDist && t < best.Distance {
			best = RayHit{Handle: w.handleAt(i), Distance: t}
			found = true
		}
	}
	if !found {
		return RayHit{}, false
	}
	best.Point = origin.Add(dir.Mul(best.Distance))
	return best, true
}

func raySphere(o, d, c mgl64.Vec3, r float64, solid bool) (float64, bool) {
	m := o.Sub(c)
	b := m.Dot(d)
	cc := m.Dot(m) - r*r
	if cc <= 0 {
		if solid {
			return 0, true
		}
		return -b + math.Sqrt(b*b-cc), true
	}
	if b > 0 {
		return 0, false
	}
	disc := b*b - cc
	if disc < 0 {
		return 0, false
	}
	return -b - math.Sqrt(disc), true
}

func rayBox(o, d mgl64.Vec3, pose Pose, h mgl64.Vec3, solid bool) (float64, bool) {
	inv := pose.Rotation.Conjugate()
	lo := inv.Rotate(o.Sub(pose.Position))
	ld := inv.Rotate(d)

	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		if math.Abs(ld[i]) < 1e-12 {
			if lo[i] < -h[i] || lo[i] > h[i] {
				return 0, false
			}
			continue
		}
		t1 := (-h[i] - lo[i]) / ld[i]
		t2 := (h[i] - lo[i]) / ld[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		if solid {
			return 0, true
		}
		return tmax, true
	}
	return tmin, true
}
