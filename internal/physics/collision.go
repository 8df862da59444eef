package physics

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"humanoidsim/internal/body"
)

// DefaultHistoryCap bounds the collision history ring.
const DefaultHistoryCap = 1000

// Contact describes one detected overlap. Normal points from B toward A;
// resolving pushes A along it and B against it.
type Contact struct {
	A, B   *body.Body
	Normal mgl64.Vec3
	Depth  float64
}

// Event is one recorded collision, appended to history exactly once per
// transition from non-overlapping to overlapping.
type Event struct {
	Pair      string    `json:"pair"`
	AID       string    `json:"aId"`
	BID       string    `json:"bId"`
	Timestamp time.Time `json:"timestamp"`
}

// CollisionEngine performs pairwise shape-dispatched detection across all
// simulated bodies, tracks active pairs, and applies impulse-based
// velocity responses.
type CollisionEngine struct {
	historyCap int
	active     map[string]bool
	history    []Event
}

// NewCollisionEngine returns an engine with the given history cap
// (DefaultHistoryCap when non-positive).
func NewCollisionEngine(historyCap int) *CollisionEngine {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &CollisionEngine{
		historyCap: historyCap,
		active:     make(map[string]bool),
	}
}

// PairID builds the canonical order-independent key for a body pair: the
// lexicographically smaller id first, so (A,B) and (B,A) collapse to one
// record. Bodies without an id fall back to a position-derived key.
func PairID(a, b *body.Body) string {
	ka, kb := bodyKey(a), bodyKey(b)
	if kb < ka {
		ka, kb = kb, ka
	}
	return ka + "|" + kb
}

func bodyKey(b *body.Body) string {
	if b.ID != "" {
		return b.ID
	}
	return fmt.Sprintf("@%.3f,%.3f,%.3f", b.Position.X(), b.Position.Y(), b.Position.Z())
}

// overlap dispatches on the canonical shape kinds and reports the contact
// normal (from b toward a) and penetration depth.
func overlap(a, b *body.Body) (mgl64.Vec3, float64, bool) {
	sa, sb := a.ShapeOrDefault(), b.ShapeOrDefault()

	if sa.Kind == body.ShapeSphere && sb.Kind == body.ShapeSphere {
		return sphereSphere(a.Position, sa.BoundingRadius(), b.Position, sb.BoundingRadius())
	}
	if sa.Kind == body.ShapeSphere {
		return sphereBox(a.Position, sa.BoundingRadius(), AABBFromCenter(b.Position, sb.HalfExtents()))
	}
	if sb.Kind == body.ShapeSphere {
		n, depth, hit := sphereBox(b.Position, sb.BoundingRadius(), AABBFromCenter(a.Position, sa.HalfExtents()))
		return n.Mul(-1), depth, hit
	}
	return boxBox(AABBFromCenter(a.Position, sa.HalfExtents()), AABBFromCenter(b.Position, sb.HalfExtents()))
}

func sphereSphere(ca mgl64.Vec3, ra float64, cb mgl64.Vec3, rb float64) (mgl64.Vec3, float64, bool) {
	diff := ca.Sub(cb)
	dist := diff.Len()
	minDist := ra + rb
	if dist >= minDist {
		return mgl64.Vec3{}, 0, false
	}
	if dist < 1e-9 {
		// Coincident centers: pick an arbitrary separation axis
		return mgl64.Vec3{0, 1, 0}, minDist, true
	}
	return diff.Mul(1 / dist), minDist - dist, true
}

func sphereBox(center mgl64.Vec3, radius float64, box AABB) (mgl64.Vec3, float64, bool) {
	closest := box.ClosestPoint(center)
	diff := center.Sub(closest)
	dist := diff.Len()
	if dist >= radius {
		return mgl64.Vec3{}, 0, false
	}
	if dist < 1e-9 {
		// Center inside the box: push out along the box's own MTV
		mtv := AABBFromCenter(center, mgl64.Vec3{radius, radius, radius}).Resolve(box)
		depth := mtv.Len()
		if depth < 1e-9 {
			return mgl64.Vec3{0, 1, 0}, radius, true
		}
		return mtv.Mul(1 / depth), depth, true
	}
	return diff.Mul(1 / dist), radius - dist, true
}

func boxBox(a, b AABB) (mgl64.Vec3, float64, bool) {
	mtv := a.Resolve(b)
	depth := mtv.Len()
	if depth < 1e-12 {
		return mgl64.Vec3{}, 0, false
	}
	return mtv.Mul(1 / depth), depth, true
}

// Detect checks one pair, maintaining the active-pair set and the bounded
// history: a pair is recorded on the first overlapping call and dropped
// from the active set when the overlap ends. Returns the contact when
// overlapping.
func (c *CollisionEngine) Detect(a, b *body.Body) (Contact, bool) {
	pair := PairID(a, b)
	normal, depth, hit := overlap(a, b)
	if !hit {
		delete(c.active, pair)
		return Contact{}, false
	}
	if !c.active[pair] {
		c.active[pair] = true
		c.record(Event{Pair: pair, AID: a.ID, BID: b.ID, Timestamp: time.Now()})
	}
	return Contact{A: a, B: b, Normal: normal, Depth: depth}, true
}

func (c *CollisionEngine) record(ev Event) {
	c.history = append(c.history, ev)
	if len(c.history) > c.historyCap {
		c.history = c.history[len(c.history)-c.historyCap:]
	}
}

// DetectAll runs the O(n²) all-pairs scan and returns this tick's
// contacts.
func (c *CollisionEngine) DetectAll(bodies []*body.Body) []Contact {
	var contacts []Contact
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if ct, hit := c.Detect(bodies[i], bodies[j]); hit {
				contacts = append(contacts, ct)
			}
		}
	}
	return contacts
}

// ResolveImpulse applies the momentum-conserving impulse along the
// contact normal. Bodies already separating are left alone; bodies
// without positive mass do not move.
func (c *CollisionEngine) ResolveImpulse(ct Contact) {
	a, b := ct.A, ct.B
	massA, massB := massOf(a), massOf(b)
	if massA <= 0 && massB <= 0 {
		return
	}

	relVel := a.Velocity.Sub(b.Velocity)
	velAlongNormal := relVel.Dot(ct.Normal)
	if velAlongNormal > 0 {
		return // already separating
	}

	// Combined restitution is the less bouncy of the two
	e := a.Restitution()
	if rb := b.Restitution(); rb < e {
		e = rb
	}

	var invA, invB float64
	if massA > 0 {
		invA = 1 / massA
	}
	if massB > 0 {
		invB = 1 / massB
	}

	j := -(1 + e) * velAlongNormal / (invA + invB)
	impulse := ct.Normal.Mul(j)
	if massA > 0 {
		a.Velocity = a.Velocity.Add(impulse.Mul(invA))
	}
	if massB > 0 {
		b.Velocity = b.Velocity.Sub(impulse.Mul(invB))
	}
}

func massOf(b *body.Body) float64 {
	if b.Props == nil {
		return 0
	}
	return b.Props.Mass
}

// History returns a copy of the bounded collision history.
func (c *CollisionEngine) History() []Event {
	out := make([]Event, len(c.history))
	copy(out, c.history)
	return out
}

// ActiveCount returns the number of currently overlapping pairs.
func (c *CollisionEngine) ActiveCount() int {
	return len(c.active)
}

// ActivePairs returns the keys of currently overlapping pairs.
func (c *CollisionEngine) ActivePairs() []string {
	out := make([]string, 0, len(c.active))
	for pair := range c.active {
		out = append(out, pair)
	}
	return out
}

// ClearHistory empties the history and the active-pair set.
func (c *CollisionEngine) ClearHistory() {
	c.history = nil
	c.active = make(map[string]bool)
}
