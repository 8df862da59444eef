package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humanoidsim/internal/body"
)

func sphere(id string, pos mgl64.Vec3, radius, mass, restitution float64) *body.Body {
	return &body.Body{
		ID:       id,
		Position: pos,
		Props:    &body.Props{Mass: mass, Restitution: restitution, Shape: body.Sphere(radius)},
	}
}

func box(id string, pos, size mgl64.Vec3, mass float64) *body.Body {
	return &body.Body{
		ID:       id,
		Position: pos,
		Props:    &body.Props{Mass: mass, Restitution: 0.5, Shape: body.Box(size)},
	}
}

func TestPairIDSymmetry(t *testing.T) {
	a := sphere("alpha", mgl64.Vec3{}, 1, 1, 0.5)
	b := sphere("beta", mgl64.Vec3{1, 0, 0}, 1, 1, 0.5)
	assert.Equal(t, PairID(a, b), PairID(b, a))
	assert.Equal(t, "alpha|beta", PairID(b, a))
}

func TestPairIDFallsBackToPosition(t *testing.T) {
	a := &body.Body{Position: mgl64.Vec3{1, 2, 3}}
	b := &body.Body{Position: mgl64.Vec3{4, 5, 6}}
	assert.Equal(t, PairID(a, b), PairID(b, a))
	assert.NotEqual(t, PairID(a, a), PairID(a, b))
}

func TestAABBIntersects(t *testing.T) {
	a := AABBFromCenter(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := AABBFromCenter(mgl64.Vec3{1.5, 0, 0}, mgl64.Vec3{1, 1, 1})
	c := AABBFromCenter(mgl64.Vec3{3, 0, 0}, mgl64.Vec3{1, 1, 1})

	assert.True(t, a.Intersects(b))
	assert.True(t, b.Intersects(a))
	assert.False(t, a.Intersects(c))

	// Touching faces do not count as overlap
	d := AABBFromCenter(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{1, 1, 1})
	assert.False(t, a.Intersects(d))
}

func TestAABBResolvePicksMinimumAxis(t *testing.T) {
	a := AABBFromCenter(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := AABBFromCenter(mgl64.Vec3{1.8, 0.5, 0}, mgl64.Vec3{1, 1, 1})

	mtv := a.Resolve(b)
	// X overlap (0.2) is smaller than Y overlap (1.5): push out along -X
	assert.InDelta(t, -0.2, mtv.X(), 1e-12)
	assert.Zero(t, mtv.Y())
	assert.Zero(t, mtv.Z())
}

func TestDetectSphereSphere(t *testing.T) {
	c := NewCollisionEngine(0)
	a := sphere("a", mgl64.Vec3{0, 0, 0}, 0.5, 1, 0.5)
	b := sphere("b", mgl64.Vec3{0.9, 0, 0}, 0.5, 2, 0.5)

	ct, hit := c.Detect(a, b)
	require.True(t, hit)
	assert.InDelta(t, 0.1, ct.Depth, 1e-12)
	// Normal points from b toward a
	assert.InDelta(t, -1.0, ct.Normal.X(), 1e-12)
}

func TestDetectSphereBox(t *testing.T) {
	c := NewCollisionEngine(0)
	s := sphere("s", mgl64.Vec3{0, 1.3, 0}, 0.5, 1, 0.5)
	ground := box("ground", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 2, 10}, 0)

	_, hit := c.Detect(s, ground)
	require.True(t, hit)

	s.Position = mgl64.Vec3{0, 1.6, 0}
	_, hit = c.Detect(s, ground)
	assert.False(t, hit)
}

func TestActivePairTracking(t *testing.T) {
	c := NewCollisionEngine(0)
	a := sphere("a", mgl64.Vec3{0, 0, 0}, 0.5, 1, 0.5)
	b := sphere("b", mgl64.Vec3{0.9, 0, 0}, 0.5, 1, 0.5)

	_, hit := c.Detect(a, b)
	require.True(t, hit)
	assert.Equal(t, 1, c.ActiveCount())
	assert.Len(t, c.History(), 1)

	// Still overlapping: no second history entry
	c.Detect(a, b)
	assert.Len(t, c.History(), 1)

	// Separate, then collide again: a fresh entry is recorded
	b.Position = mgl64.Vec3{3, 0, 0}
	_, hit = c.Detect(a, b)
	assert.False(t, hit)
	assert.Zero(t, c.ActiveCount())

	b.Position = mgl64.Vec3{0.9, 0, 0}
	c.Detect(a, b)
	assert.Len(t, c.History(), 2)
}

func TestHistoryBounded(t *testing.T) {
	c := NewCollisionEngine(5)
	a := sphere("a", mgl64.Vec3{0, 0, 0}, 0.5, 1, 0.5)
	b := sphere("b", mgl64.Vec3{0.9, 0, 0}, 0.5, 1, 0.5)

	for i := 0; i < 20; i++ {
		b.Position = mgl64.Vec3{0.9, 0, 0}
		c.Detect(a, b)
		b.Position = mgl64.Vec3{3, 0, 0}
		c.Detect(a, b)
	}
	assert.Len(t, c.History(), 5)
}

func TestResolveImpulseRestitutionLaw(t *testing.T) {
	c := NewCollisionEngine(0)
	// Head-on approach at relative speed 2 along X, masses 1 and 2,
	// restitution 0.5 on both
	a := sphere("a", mgl64.Vec3{0, 0, 0}, 0.5, 1, 0.5)
	b := sphere("b", mgl64.Vec3{0.9, 0, 0}, 0.5, 2, 0.5)
	a.Velocity = mgl64.Vec3{1, 0, 0}
	b.Velocity = mgl64.Vec3{-1, 0, 0}

	ct, hit := c.Detect(a, b)
	require.True(t, hit)

	pre := a.Velocity.Sub(b.Velocity).Dot(ct.Normal)
	c.ResolveImpulse(ct)
	post := a.Velocity.Sub(b.Velocity).Dot(ct.Normal)

	// Post-collision relative speed along the normal is -e times the
	// pre-collision one
	assert.InDelta(t, -0.5*pre, post, 1e-9)
	assert.InDelta(t, 1.0, post, 1e-9)

	// Momentum along X is conserved
	px := 1*a.Velocity.X() + 2*b.Velocity.X()
	assert.InDelta(t, -1.0, px, 1e-9)
}

func TestResolveImpulseSkipsSeparating(t *testing.T) {
	c := NewCollisionEngine(0)
	a := sphere("a", mgl64.Vec3{0, 0, 0}, 0.5, 1, 0.5)
	b := sphere("b", mgl64.Vec3{0.9, 0, 0}, 0.5, 1, 0.5)
	a.Velocity = mgl64.Vec3{-1, 0, 0}
	b.Velocity = mgl64.Vec3{1, 0, 0}

	ct, hit := c.Detect(a, b)
	require.True(t, hit)
	c.ResolveImpulse(ct)

	assert.Equal(t, mgl64.Vec3{-1, 0, 0}, a.Velocity)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, b.Velocity)
}

func TestResolveImpulseMasslessBodyStaysPut(t *testing.T) {
	c := NewCollisionEngine(0)
	ball := sphere("ball", mgl64.Vec3{0, 1.4, 0}, 0.5, 1, 1.0)
	ball.Velocity = mgl64.Vec3{0, -2, 0}
	ground := box("ground", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 2, 10}, 0)

	ct, hit := c.Detect(ball, ground)
	require.True(t, hit)
	c.ResolveImpulse(ct)

	assert.Equal(t, mgl64.Vec3{}, ground.Velocity)
	// Restitution is the min of the pair (the ground's 0.5, not the ball's 1.0)
	assert.InDelta(t, 1.0, ball.Velocity.Y(), 1e-9)
}

func TestDetectAllIsPairwise(t *testing.T) {
	c := NewCollisionEngine(0)
	bodies := []*body.Body{
		sphere("a", mgl64.Vec3{0, 0, 0}, 0.5, 1, 0.5),
		sphere("b", mgl64.Vec3{0.8, 0, 0}, 0.5, 1, 0.5),
		sphere("c", mgl64.Vec3{10, 0, 0}, 0.5, 1, 0.5),
	}
	contacts := c.DetectAll(bodies)
	require.Len(t, contacts, 1)
	assert.Equal(t, "a|b", PairID(contacts[0].A, contacts[0].B))
}

func TestClearHistory(t *testing.T) {
	c := NewCollisionEngine(0)
	a := sphere("a", mgl64.Vec3{0, 0, 0}, 0.5, 1, 0.5)
	b := sphere("b", mgl64.Vec3{0.9, 0, 0}, 0.5, 1, 0.5)
	c.Detect(a, b)
	require.NotEmpty(t, c.History())

	c.ClearHistory()
	assert.Empty(t, c.History())
	assert.Zero(t, c.ActiveCount())
}
