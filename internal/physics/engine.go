// Package physics hosts the whole-body engines: gravity integration for
// free bodies and shape-dispatched collision detection with impulse
// response.
package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"humanoidsim/internal/body"
	"humanoidsim/internal/config"
	"humanoidsim/internal/errs"
	"humanoidsim/internal/joint"
)

// Engine applies gravity to free bodies and runs the robot-local
// joint-limit pass. It keeps its own simulation clock, advanced once per
// tick by the runner.
type Engine struct {
	params  *config.Params
	joints  *joint.Engine
	running bool
	elapsed float64 // simulated seconds since StartSimulation
}

// NewEngine returns a physics engine reading parameters from params and
// delegating joint-limit enforcement to joints.
func NewEngine(params *config.Params, joints *joint.Engine) *Engine {
	return &Engine{params: params, joints: joints}
}

// Status is a read-only projection of the engine's clock and parameters.
type Status struct {
	Running  bool       `json:"running"`
	Elapsed  float64    `json:"elapsed"`
	Gravity  mgl64.Vec3 `json:"gravity"`
	TimeStep float64    `json:"timeStep"`
}

// ApplyGravity integrates gravitational acceleration into the body's
// velocity and position by forward Euler. The force is mass times
// gravity, so dividing back by the same mass leaves the acceleration
// equal to gravity for every body.
func (e *Engine) ApplyGravity(b *body.Body, dt float64) error {
	if b == nil || b.Props == nil || b.Props.Mass <= 0 {
		return errs.Validation("ApplyGravity", "physicalProperties.mass", "positive mass required")
	}
	g := e.params.GravityVec()
	b.Velocity = b.Velocity.Add(g.Mul(dt))
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	return nil
}

// ApplyToRobot applies gravity to the robot base and then re-clamps every
// joint against its limits. This robot-local clamp pass is distinct from
// the joint engine's own update-time clamping.
func (e *Engine) ApplyToRobot(r *body.Robot, dt float64) error {
	if r == nil || r.ID == "" {
		return errs.Validation("ApplyToRobot", "id", "required")
	}
	if r.Props != nil && r.Props.Mass > 0 {
		if err := e.ApplyGravity(&r.Body, dt); err != nil {
			return err
		}
	}
	for _, name := range e.joints.JointNames(r.ID) {
		if err := e.joints.ApplyJointLimits(r.ID, name); err != nil {
			return err
		}
	}
	return nil
}

// Advance moves the simulation clock forward when running.
func (e *Engine) Advance(dt float64) {
	if e.running {
		e.elapsed += dt
	}
}

// StartSimulation resets the clock and marks the engine running.
func (e *Engine) StartSimulation() {
	e.running = true
	e.elapsed = 0
}

// StopSimulation halts the clock, preserving elapsed time.
func (e *Engine) StopSimulation() {
	e.running = false
}

// Status returns the current clock and parameter snapshot.
func (e *Engine) Status() Status {
	return Status{
		Running:  e.running,
		Elapsed:  e.elapsed,
		Gravity:  e.params.GravityVec(),
		TimeStep: e.params.TimeStep,
	}
}
