package physics

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrInvalidShape is returned for missing shapes or non-positive dimensions.
	ErrInvalidShape = errors.New("physics: invalid shape")
	// ErrUnsupportedShape is returned when a dynamic body is not a ball.
	ErrUnsupportedShape = errors.New("physics: dynamic bodies must be balls")
)

// Shape is a collider geometry. Implemented by Ball and Cuboid.
type Shape interface {
	// Volume returns the shape volume in cubic meters.
	Volume() float64
	// BoundingRadius returns the radius of a sphere around the shape center
	// that encloses the whole shape.
	BoundingRadius() float64
	validate() error
}

// Ball is a sphere centered on the body position.
type Ball struct {
	Radius float64
}

func (b Ball) Volume() float64         { return 4.0 / 3.0 * math.Pi * b.Radius * b.Radius * b.Radius }
func (b Ball) BoundingRadius() float64 { return b.Radius }

func (b Ball) validate() error {
	if b.Radius <= 0 {
		return ErrInvalidShape
	}
	return nil
}

// Cuboid is a box centered on the body position, oriented by the body rotation.
type Cuboid struct {
	HalfExtents mgl64.Vec3
}

func (c Cuboid) Volume() float64 {
	return 8 * c.HalfExtents.X() * c.HalfExtents.Y() * c.HalfExtents.Z()
}

func (c Cuboid) BoundingRadius() float64 { return c.HalfExtents.Len() }

func (c Cuboid) validate() error {
	for i := 0; i < 3; i++ {
		if c.HalfExtents[i] <= 0 {
			return ErrInvalidShape
		}
	}
	return nil
}

// Corners returns the eight box corners in local space.
func (c Cuboid) Corners() [8]mgl64.Vec3 {
	h := c.HalfExtents
	var out [8]mgl64.Vec3
	for i := 0; i < 8; i++ {
		x, y, z := h.X(), h.Y(), h.Z()
		if i&1 != 0 {
			x = -x
		}
		if i&2 != 0 {
			y = -y
		}
		if i&4 != 0 {
			z = -z
		}
		out[i] = mgl64.Vec3{x, y, z}
	}
	return out
}
