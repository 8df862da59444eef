package physics

import "github.com/go-gl/mathgl/mgl64"

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// AABBFromCenter creates an AABB from a center point and half extents.
func AABBFromCenter(center, half mgl64.Vec3) AABB {
	return AABB{
		Min: center.Sub(half),
		Max: center.Add(half),
	}
}

// Intersects is the separating-axis test for AABBs: overlap on all three
// axes simultaneously.
func (a AABB) Intersects(b AABB) bool {
	return a.Min.X() < b.Max.X() && a.Max.X() > b.Min.X() &&
		a.Min.Y() < b.Max.Y() && a.Max.Y() > b.Min.Y() &&
		a.Min.Z() < b.Max.Z() && a.Max.Z() > b.Min.Z()
}

// Resolve returns the minimum translation vector to push 'a' out of 'b',
// or the zero vector if they do not overlap.
func (a AABB) Resolve(b AABB) mgl64.Vec3 {
	if !a.Intersects(b) {
		return mgl64.Vec3{}
	}

	// Penetration depth in each direction
	dx1 := b.Max.X() - a.Min.X() // push a in +X
	dx2 := a.Max.X() - b.Min.X() // push a in -X
	dy1 := b.Max.Y() - a.Min.Y() // push a in +Y
	dy2 := a.Max.Y() - b.Min.Y() // push a in -Y
	dz1 := b.Max.Z() - a.Min.Z() // push a in +Z
	dz2 := a.Max.Z() - b.Min.Z() // push a in -Z

	// The axis with minimum penetration is the push-out direction
	min := dx1
	result := mgl64.Vec3{dx1, 0, 0}

	if dx2 < min {
		min = dx2
		result = mgl64.Vec3{-dx2, 0, 0}
	}
	if dy1 < min {
		min = dy1
		result = mgl64.Vec3{0, dy1, 0}
	}
	if dy2 < min {
		min = dy2
		result = mgl64.Vec3{0, -dy2, 0}
	}
	if dz1 < min {
		min = dz1
		result = mgl64.Vec3{0, 0, dz1}
	}
	if dz2 < min {
		result = mgl64.Vec3{0, 0, -dz2}
	}

	return result
}

// ClosestPoint returns the point on (or in) the box closest to p.
func (a AABB) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := 0; i < 3; i++ {
		out[i] = clamp(p[i], a.Min[i], a.Max[i])
	}
	return out
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
