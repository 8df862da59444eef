package body

import "github.com/go-gl/mathgl/mgl64"

// ShapeKind selects the collision shape of a body.
type ShapeKind string

const (
	ShapeSphere ShapeKind = "sphere"
	ShapeBox    ShapeKind = "box"
)

// DefaultExtent is the half-extent (and sphere radius) used when a body
// carries no shape information.
const DefaultExtent = 0.1

// Shape is the canonical tagged collision shape. Exactly one of Radius or
// Size is meaningful depending on Kind; the zero Shape behaves as a
// DefaultExtent box.
type Shape struct {
	Kind   ShapeKind  `json:"kind" yaml:"kind"`
	Radius float64    `json:"radius,omitempty" yaml:"radius,omitempty"` // sphere
	Size   mgl64.Vec3 `json:"size,omitempty" yaml:"size,omitempty"`     // box, full extents
}

// Sphere returns a sphere shape with the given radius.
func Sphere(radius float64) Shape {
	if radius <= 0 {
		radius = DefaultExtent
	}
	return Shape{Kind: ShapeSphere, Radius: radius}
}

// Box returns a box shape with the given full extents.
func Box(size mgl64.Vec3) Shape {
	return Shape{Kind: ShapeBox, Size: size}
}

// HalfExtents returns the axis-aligned half extents of the shape. Spheres
// report a cube of their radius; an unset shape reports the default box.
func (s Shape) HalfExtents() mgl64.Vec3 {
	switch s.Kind {
	case ShapeSphere:
		r := s.Radius
		if r <= 0 {
			r = DefaultExtent
		}
		return mgl64.Vec3{r, r, r}
	case ShapeBox:
		half := s.Size.Mul(0.5)
		for i := 0; i < 3; i++ {
			if half[i] <= 0 {
				half[i] = DefaultExtent
			}
		}
		return half
	default:
		return mgl64.Vec3{DefaultExtent, DefaultExtent, DefaultExtent}
	}
}

// BoundingRadius returns the radius of the shape's bounding sphere.
func (s Shape) BoundingRadius() float64 {
	if s.Kind == ShapeSphere {
		if s.Radius > 0 {
			return s.Radius
		}
		return DefaultExtent
	}
	return s.HalfExtents().Len()
}
