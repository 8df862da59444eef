// Package sim owns the simulation lifecycle: robot and object
// registration, the fixed-period tick loop, and state snapshots.
package sim

import (
	"log"
	"sync"
	"time"

	"humanoidsim/internal/body"
	"humanoidsim/internal/config"
	"humanoidsim/internal/errs"
	"humanoidsim/internal/joint"
	"humanoidsim/internal/physics"
)

// Runner composes the joint, physics, and collision engines and sequences
// them once per tick. All mutable state is guarded by one mutex; the
// scheduler goroutine started by Start is the only writer during a run.
type Runner struct {
	mu     sync.Mutex
	params config.Params

	// Sub-engines, exported for direct queries. Like Robot, they hand
	// out live simulation state: the scheduler goroutine mutates it
	// under mu, so query them only while the runner is not running.
	Joints     *joint.Engine
	Physics    *physics.Engine
	Collisions *physics.CollisionEngine

	robots   []*body.Robot
	objects  []*body.Body
	byID     map[string]*body.Robot
	controls map[string]map[string]float64

	step    int
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewRunner builds a runner and its sub-engines from the given
// parameters.
func NewRunner(params config.Params) *Runner {
	r := &Runner{
		params:   params,
		Joints:   joint.NewEngine(),
		byID:     make(map[string]*body.Robot),
		controls: make(map[string]map[string]float64),
	}
	r.Physics = physics.NewEngine(&r.params, r.Joints)
	r.Collisions = physics.NewCollisionEngine(params.Collision.HistoryCap)
	return r
}

// Params returns a copy of the current simulation parameters.
func (r *Runner) Params() config.Params {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.params
}

// SetTimeStep updates the fixed time step, rejecting non-positive values.
func (r *Runner) SetTimeStep(v float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.params.SetTimeStep(v)
}

// SetRealTimeFactor updates the playback factor, rejecting non-positive
// values.
func (r *Runner) SetRealTimeFactor(v float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.params.SetRealTimeFactor(v)
}

// AddRobot validates and registers a robot, creating its joint states.
// On failure nothing is mutated.
func (r *Runner) AddRobot(rb *body.Robot) error {
	if err := rb.Validate("AddRobot"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[rb.ID]; exists {
		return errs.Validation("AddRobot", "id", "already registered")
	}
	if err := r.Joints.InitializeJoints(rb); err != nil {
		return err
	}
	r.robots = append(r.robots, rb)
	r.byID[rb.ID] = rb
	return nil
}

// AddObject validates and registers an environment object.
func (r *Runner) AddObject(b *body.Body) error {
	if err := b.Validate("AddObject"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects = append(r.objects, b)
	return nil
}

// Robot returns the registered robot with the given id. The pointer is
// live simulation state; mutate it only while the runner is not running.
func (r *Runner) Robot(id string) (*body.Robot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rb, ok := r.byID[id]
	return rb, ok
}

// SetControlInputs stores the control-input map for a robot, applied on
// every subsequent tick until replaced.
func (r *Runner) SetControlInputs(robotID string, inputs map[string]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[robotID]; !ok {
		return errs.NotFound("robot", robotID)
	}
	cp := make(map[string]float64, len(inputs))
	for k, v := range inputs {
		cp[k] = v
	}
	r.controls[robotID] = cp
	return nil
}

// Start resets the step counter, marks the runner running, and launches
// the wall-clock scheduler. Returns false (with a warning) when already
// running.
func (r *Runner) Start() bool {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		log.Printf("sim: Start ignored, already running")
		return false
	}
	r.step = 0
	r.running = true
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	r.Physics.StartSimulation()
	stop, done := r.stop, r.done
	interval := r.params.TickInterval()
	rtf := r.params.RealTimeFactor
	r.mu.Unlock()

	go r.loop(stop, done, interval, rtf)
	return true
}

// loop is the cooperative scheduler: each tick is deferred by a fixed
// delay after the previous tick's synchronous work completes, and the
// measured wall-clock elapsed time (scaled by the real-time factor) is
// what advances the simulation.
func (r *Runner) loop(stop, done chan struct{}, interval time.Duration, rtf float64) {
	defer close(done)
	last := time.Now()
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-timer.C:
			dt := now.Sub(last).Seconds() * rtf
			last = now
			if !r.Step(dt) {
				return
			}
			timer.Reset(interval)
		}
	}
}

// Stop marks the runner not-running and prevents scheduling of the next
// tick. A tick already in progress completes. Idempotent.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stop)
	done := r.done
	r.Physics.StopSimulation()
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Step deterministically advances the simulation by dt seconds. Callers
// may drive it directly for reproducible runs; the scheduler feeds it
// measured wall time. Returns false once the step ceiling is reached.
func (r *Runner) Step(dt float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.step >= r.params.MaxSteps {
		if r.running {
			log.Printf("sim: step ceiling %d reached, stopping", r.params.MaxSteps)
			r.running = false
			r.Physics.StopSimulation()
		}
		return false
	}
	r.tick(dt)
	r.step++
	if r.step >= r.params.MaxSteps && r.running {
		log.Printf("sim: step ceiling %d reached, stopping", r.params.MaxSteps)
		r.running = false
		r.Physics.StopSimulation()
		return false
	}
	return true
}

// tick runs one simulation update. Robots are processed in registration
// order; a failing robot is logged and skipped so one malformed entity
// cannot abort the tick. Collision detection runs after all bodies have
// been integrated, so responses see post-integration state.
func (r *Runner) tick(dt float64) {
	for _, rb := range r.robots {
		if inputs := r.controls[rb.ID]; len(inputs) > 0 {
			if err := r.Joints.UpdateAllJoints(rb.ID, inputs, dt); err != nil {
				log.Printf("sim: joint update failed for robot %s: %v", rb.ID, err)
				continue
			}
		}
		if err := r.Physics.ApplyToRobot(rb, dt); err != nil {
			log.Printf("sim: physics failed for robot %s: %v", rb.ID, err)
		}
	}

	// Free objects with mass fall too; massless scenery stays put
	for _, o := range r.objects {
		if o.Props != nil && o.Props.Mass > 0 {
			if err := r.Physics.ApplyGravity(o, dt); err != nil {
				log.Printf("sim: physics failed for object %s: %v", o.ID, err)
			}
		}
	}

	if r.params.Collision.Enabled {
		bodies := make([]*body.Body, 0, len(r.robots)+len(r.objects))
		for _, rb := range r.robots {
			bodies = append(bodies, &rb.Body)
		}
		bodies = append(bodies, r.objects...)
		for _, ct := range r.Collisions.DetectAll(bodies) {
			r.Collisions.ResolveImpulse(ct)
		}
	}

	r.Physics.Advance(dt)
}

// Reset stops the loop, clears collision history, re-initializes every
// robot's joints to configured defaults, and zeroes the step counter.
func (r *Runner) Reset() {
	r.Stop()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Collisions.ClearHistory()
	for _, rb := range r.robots {
		if err := r.Joints.ResetJoints(rb); err != nil {
			log.Printf("sim: reset failed for robot %s: %v", rb.ID, err)
		}
	}
	r.step = 0
}
