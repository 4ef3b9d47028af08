package scene

import "github.com/go-gl/mathgl/mgl64"

// Snapshot is a JSON-friendly copy of a scene.
type Snapshot struct {
	Camera  CameraSnapshot  `json:"camera"`
	Proxies []ProxySnapshot `json:"proxies"`
}

// CameraSnapshot is the camera part of a Snapshot.
type CameraSnapshot struct {
	Position mgl64.Vec3 `json:"position"`
	Target   mgl64.Vec3 `json:"target"`
}

// ProxySnapshot is one proxy in a Snapshot. Rotation is [w, x, y, z].
type ProxySnapshot struct {
	ID          int         `json:"id"`
	Kind        Kind        `json:"kind"`
	Geometry    Geometry    `json:"shape"`
	HalfExtents *mgl64.Vec3 `json:"half_extents,omitempty"`
	Radius      float64     `json:"radius,omitempty"`
	Position    mgl64.Vec3  `json:"position"`
	Rotation    [4]float64  `json:"rotation"`
}

// Snapshot copies the scene into a value safe to hand to other goroutines.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		Camera:  CameraSnapshot{Position: s.camera.Position, Target: s.camera.Target},
		Proxies: make([]ProxySnapshot, 0, len(s.order)),
	}
	for _, id := range s.order {
		p := s.proxies[id]
		ps := ProxySnapshot{
			ID:       p.ID,
			Kind:     p.Kind,
			Geometry: p.Geometry,
			Position: p.Position,
			Rotation: [4]float64{p.Rotation.W, p.Rotation.V[0], p.Rotation.V[1], p.Rotation.V[2]},
		}
		if p.Geometry == Box {
			h := p.HalfExtents
			ps.HalfExtents = &h
		} else {
			ps.Radius = p.Radius
		}
		snap.Proxies = append(snap.Proxies, ps)
	}
	return snap
}
