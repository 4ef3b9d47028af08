// Package scene holds the renderable view of a game world: one proxy per
// visible object plus a camera. The simulation writes into it once per tick;
// renderers only read.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind classifies a proxy for styling.
type Kind int

const (
	KindFloor Kind = iota
	KindWall
	KindObstacle
	KindPlayer
	KindFinish
	KindStart
)

var kindNames = [...]string{"floor", "wall", "obstacle", "player", "finish", "start"}

// String returns the kind name.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Geometry is the drawable shape of a proxy.
type Geometry int

const (
	Box Geometry = iota
	Sphere
)

// String returns the geometry name.
func (g Geometry) String() string {
	switch g {
	case Box:
		return "box"
	case Sphere:
		return "sphere"
	default:
		return fmt.Sprintf("Geometry(%d)", int(g))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (g Geometry) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// Proxy is the renderable stand-in for one object.
type Proxy struct {
	ID          int
	Kind        Kind
	Geometry    Geometry
	HalfExtents mgl64.Vec3 // Box only
	Radius      float64    // Sphere only
	Position    mgl64.Vec3
	Rotation    mgl64.Quat
}

// Camera is a look-at camera.
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
}

// Scene owns proxies keyed by ID and the camera.
type Scene struct {
	proxies map[int]*Proxy
	order   []int
	nextID  int
	camera  Camera
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{proxies: make(map[int]*Proxy)}
}

// Add inserts a proxy and returns its assigned ID. A zero rotation is
// replaced by the identity.
func (s *Scene) Add(p Proxy) int {
	s.nextID++
	p.ID = s.nextID
	if p.Rotation.Len() == 0 {
		p.Rotation = mgl64.QuatIdent()
	}
	s.proxies[p.ID] = &p
	s.order = append(s.order, p.ID)
	return p.ID
}

// Remove deletes a proxy. Unknown IDs are ignored.
func (s *Scene) Remove(id int) {
	if _, ok := s.proxies[id]; !ok {
		return
	}
	delete(s.proxies, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear removes every proxy. The camera is kept.
func (s *Scene) Clear() {
	clear(s.proxies)
	s.order = s.order[:0]
}

// Len returns the number of proxies.
func (s *Scene) Len() int { return len(s.order) }

// SetPose moves a proxy. It reports false for unknown IDs.
func (s *Scene) SetPose(id int, pos mgl64.Vec3, rot mgl64.Quat) bool {
	p, ok := s.proxies[id]
	if !ok {
		return false
	}
	p.Position = pos
	p.Rotation = rot
	return true
}

// Proxy returns a copy of one proxy.
func (s *Scene) Proxy(id int) (Proxy, bool) {
	p, ok := s.proxies[id]
	if !ok {
		return Proxy{}, false
	}
	return *p, true
}

// Proxies returns copies of all proxies in insertion order.
func (s *Scene) Proxies() []Proxy {
	out := make([]Proxy, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.proxies[id])
	}
	return out
}

// SetCamera places the camera.
func (s *Scene) SetCamera(pos, target mgl64.Vec3) {
	s.camera = Camera{Position: pos, Target: target}
}

// Camera returns the current camera.
func (s *Scene) Camera() Camera { return s.camera }
