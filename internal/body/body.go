// Package body defines the simulated entities: free bodies, their
// physical properties and collision shapes, and robots with their joint
// descriptions.
package body

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"humanoidsim/internal/errs"
)

// DefaultRestitution applies when a body has no physical properties.
const DefaultRestitution = 0.5

// Props are the physical properties needed for gravity and collision
// response. Bodies without Props are tracked but not integrated.
type Props struct {
	Mass        float64 `json:"mass" yaml:"mass"`
	Restitution float64 `json:"restitution" yaml:"restitution"` // 0 inelastic .. 1 elastic
	Shape       Shape   `json:"shape" yaml:"shape"`
}

// NewProps returns properties with the given mass, default restitution,
// and a default sphere shape.
func NewProps(mass float64) *Props {
	return &Props{Mass: mass, Restitution: DefaultRestitution, Shape: Sphere(DefaultExtent)}
}

// Body is a simulated entity: a robot base or an environment object.
// Position and velocity are mutated in place every tick.
type Body struct {
	ID       string     `json:"id"`
	Name     string     `json:"name,omitempty"`
	Position mgl64.Vec3 `json:"position"`
	Velocity mgl64.Vec3 `json:"velocity"`
	Props    *Props     `json:"physicalProperties,omitempty"`
}

// Restitution returns the body's restitution, or the default when the
// body carries no properties.
func (b *Body) Restitution() float64 {
	if b.Props == nil {
		return DefaultRestitution
	}
	return b.Props.Restitution
}

// ShapeOrDefault returns the body's collision shape; bodies without
// properties collide as default-extent boxes.
func (b *Body) ShapeOrDefault() Shape {
	if b.Props == nil {
		return Shape{}
	}
	return b.Props.Shape
}

// Validate checks the registration contract for environment objects:
// an id is required and must not contain '|', which is reserved as the
// collision pair-key separator. Position always has x/y/z components in
// this representation, so only identity can be missing.
func (b *Body) Validate(op string) error {
	if b == nil {
		return errs.Validation(op, "body", "nil")
	}
	if b.ID == "" {
		return errs.Validation(op, "id", "required")
	}
	if strings.ContainsRune(b.ID, '|') {
		return errs.Validation(op, "id", "must not contain '|'")
	}
	return nil
}
