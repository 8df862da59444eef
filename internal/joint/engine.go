// Package joint maintains per-robot joint kinematics: forward-Euler
// integration of applied efforts, PD control, and limit enforcement.
package joint

import (
	"log"
	"sort"
	"time"

	"humanoidsim/internal/body"
	"humanoidsim/internal/errs"
)

// Default PD gains for CalculateForces.
const (
	DefaultKp = 100.0
	DefaultKd = 10.0
)

// State is the kinematic state of one joint. Position is radians for
// revolute joints and meters for prismatic ones; no unit system is
// enforced beyond consistent SI usage by the caller.
type State struct {
	Position     float64   `json:"position"`
	Velocity     float64   `json:"velocity"`
	Acceleration float64   `json:"acceleration"`
	Effort       float64   `json:"effort"`
	Timestamp    time.Time `json:"timestamp"`
}

type record struct {
	state State
	spec  body.JointSpec
}

// Engine owns joint state and constraints, keyed by (robot id, joint
// name). Joint names are scoped per robot, so two robots may both have a
// "shoulder" without colliding.
type Engine struct {
	robots map[string]map[string]*record
	warned map[string]bool // robotID+"/"+joint pairs already warned about
}

// NewEngine returns an empty joint engine.
func NewEngine() *Engine {
	return &Engine{
		robots: make(map[string]map[string]*record),
		warned: make(map[string]bool),
	}
}

// InitializeJoints registers every joint of the robot with its configured
// initial position and zero velocity/acceleration/effort. Re-registering
// replaces any previous state for that robot.
func (e *Engine) InitializeJoints(r *body.Robot) error {
	if r == nil || len(r.Joints) == 0 {
		return errs.Validation("InitializeJoints", "jointConfiguration", "required")
	}
	table := make(map[string]*record, len(r.Joints))
	now := time.Now()
	for name, spec := range r.Joints {
		switch spec.Type {
		case "":
			spec.Type = body.JointRevolute
		case body.JointRevolute, body.JointPrismatic, body.JointFixed:
		default:
			return errs.Unsupported("joint type", string(spec.Type))
		}
		table[name] = &record{
			spec: spec,
			state: State{
				Position:  spec.InitialPosition,
				Timestamp: now,
			},
		}
	}
	e.robots[r.ID] = table
	return nil
}

// ResetJoints re-initializes the robot's joints to their configured
// defaults.
func (e *Engine) ResetJoints(r *body.Robot) error {
	return e.InitializeJoints(r)
}

// RemoveRobot drops all joint state for the robot.
func (e *Engine) RemoveRobot(robotID string) {
	delete(e.robots, robotID)
}

func (e *Engine) lookup(robotID, name string) (*record, error) {
	table, ok := e.robots[robotID]
	if !ok {
		return nil, errs.NotFound("robot", robotID)
	}
	rec, ok := table[name]
	if !ok {
		return nil, errs.NotFound("joint", robotID+"/"+name)
	}
	return rec, nil
}

// UpdateJointState applies an effort for dt seconds: acceleration from
// the single-DOF model, forward-Euler velocity and position, then limit
// enforcement.
func (e *Engine) UpdateJointState(robotID, name string, effort, dt float64) error {
	rec, err := e.lookup(robotID, name)
	if err != nil {
		return err
	}
	massEq := rec.spec.MassEquivalent
	if massEq <= 0 {
		massEq = 1.0
	}
	st := &rec.state
	st.Effort = effort
	st.Acceleration = effort / massEq
	st.Velocity += st.Acceleration * dt
	st.Position += st.Velocity * dt
	st.Timestamp = time.Now()
	clampState(st, rec.spec.Limits)
	return nil
}

// ApplyJointLimits clamps the joint back inside its configured limits.
// Idempotent on already-clamped state.
func (e *Engine) ApplyJointLimits(robotID, name string) error {
	rec, err := e.lookup(robotID, name)
	if err != nil {
		return err
	}
	clampState(&rec.state, rec.spec.Limits)
	return nil
}

// clampState enforces limits in a fixed order: position (a hard stop that
// zeroes velocity), then velocity, then effort. The ordering decides
// which constraint wins when several are violated in one step.
func clampState(st *State, lim body.Limits) {
	if p := lim.Position; p != nil {
		if st.Position < p.Min {
			st.Position = p.Min
			st.Velocity = 0
		} else if st.Position > p.Max {
			st.Position = p.Max
			st.Velocity = 0
		}
	}
	if lim.Velocity > 0 {
		st.Velocity = clamp(st.Velocity, -lim.Velocity, lim.Velocity)
	}
	if lim.Effort > 0 {
		st.Effort = clamp(st.Effort, -lim.Effort, lim.Effort)
	}
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

// CalculateForces computes the PD control effort toward a desired
// position and velocity. Non-positive gains fall back to the defaults.
func (e *Engine) CalculateForces(robotID, name string, desiredPos, desiredVel, kp, kd float64) (float64, error) {
	rec, err := e.lookup(robotID, name)
	if err != nil {
		return 0, err
	}
	if kp <= 0 {
		kp = DefaultKp
	}
	if kd <= 0 {
		kd = DefaultKd
	}
	st := rec.state
	return kp*(desiredPos-st.Position) + kd*(desiredVel-st.Velocity), nil
}

// UpdateAllJoints applies a control-input map of joint name to effort.
// Unknown joint names are skipped with a one-time warning per joint;
// failing the whole update for a stray key would contradict per-entity
// isolation, and dropping it silently hides wiring bugs.
func (e *Engine) UpdateAllJoints(robotID string, inputs map[string]float64, dt float64) error {
	table, ok := e.robots[robotID]
	if !ok {
		return errs.NotFound("robot", robotID)
	}
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic update order
	for _, name := range names {
		if _, known := table[name]; !known {
			key := robotID + "/" + name
			if !e.warned[key] {
				e.warned[key] = true
				log.Printf("joint: ignoring control input for unknown joint %s", key)
			}
			continue
		}
		if err := e.UpdateJointState(robotID, name, inputs[name], dt); err != nil {
			return err
		}
	}
	return nil
}

// JointState returns a copy of one joint's state.
func (e *Engine) JointState(robotID, name string) (State, error) {
	rec, err := e.lookup(robotID, name)
	if err != nil {
		return State{}, err
	}
	return rec.state, nil
}

// JointSpec returns a copy of one joint's static configuration.
func (e *Engine) JointSpec(robotID, name string) (body.JointSpec, error) {
	rec, err := e.lookup(robotID, name)
	if err != nil {
		return body.JointSpec{}, err
	}
	return rec.spec, nil
}

// RobotStates returns copies of all joint states for a robot. Mutating
// the returned map never touches engine state.
func (e *Engine) RobotStates(robotID string) map[string]State {
	table := e.robots[robotID]
	out := make(map[string]State, len(table))
	for name, rec := range table {
		out[name] = rec.state
	}
	return out
}

// JointNames returns the sorted joint names registered for a robot.
func (e *Engine) JointNames(robotID string) []string {
	table := e.robots[robotID]
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
