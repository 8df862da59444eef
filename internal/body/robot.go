package body

import "humanoidsim/internal/errs"

// JointType is the kinematic class of a joint.
type JointType string

const (
	JointRevolute  JointType = "revolute"
	JointPrismatic JointType = "prismatic"
	JointFixed     JointType = "fixed"
)

// Range is a closed position interval.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Limits bound a joint's motion. Position is optional; Velocity and
// Effort are symmetric magnitude caps, 0 meaning unlimited.
type Limits struct {
	Position *Range  `json:"position,omitempty" yaml:"position,omitempty"`
	Velocity float64 `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	Effort   float64 `json:"effort,omitempty" yaml:"effort,omitempty"`
}

// JointSpec is the static per-joint configuration. Immutable after
// registration; re-registering a robot replaces it wholesale.
type JointSpec struct {
	Type            JointType `json:"type,omitempty" yaml:"type,omitempty"`
	InitialPosition float64   `json:"initialPosition,omitempty" yaml:"initial_position,omitempty"`
	Limits          Limits    `json:"limits,omitempty" yaml:"limits,omitempty"`
	// MassEquivalent relates applied effort to acceleration in the
	// single-DOF model (accel = effort / massEquivalent). 0 means 1.0.
	MassEquivalent float64 `json:"massEquivalent,omitempty" yaml:"mass_equivalent,omitempty"`
	Parent         string  `json:"parent,omitempty" yaml:"parent,omitempty"`
	Child          string  `json:"child,omitempty" yaml:"child,omitempty"`
}

// Robot is a simulated robot: a base body plus its joint configuration.
type Robot struct {
	Body
	URDFPath string               `json:"urdfPath,omitempty"`
	Joints   map[string]JointSpec `json:"jointConfiguration"`
}

// Validate checks the robot registration contract: id and a non-empty
// joint configuration.
func (r *Robot) Validate(op string) error {
	if r == nil {
		return errs.Validation(op, "robot", "nil")
	}
	if err := r.Body.Validate(op); err != nil {
		return err
	}
	if len(r.Joints) == 0 {
		return errs.Validation(op, "jointConfiguration", "required")
	}
	return nil
}
