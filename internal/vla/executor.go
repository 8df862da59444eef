package vla

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"humanoidsim/internal/errs"
	"humanoidsim/internal/sim"
)

// Executor defaults.
const (
	DefaultStepSize  = 0.01 // simulated seconds per step
	DefaultWalkSpeed = 0.5  // m/s
	graspTolerance   = 0.2  // rad
	graspSteps       = 200
	approachDistance = 0.5 // m kept between robot and navigation target
)

// Executor runs action plans against the simulation runner by stepping it
// deterministically. The runner must not be running its own wall-clock
// loop while a plan executes.
type Executor struct {
	runner  *sim.Runner
	robotID string

	StepSize     float64
	WalkSpeed    float64
	GraspJoint   string // joint driven by manipulation actions; first joint when empty
	EnableSafety bool   // abort remaining actions while the robot is in collision
}

// NewExecutor returns an executor for one robot with safety protocols
// enabled.
func NewExecutor(r *sim.Runner, robotID string) *Executor {
	return &Executor{
		runner:       r,
		robotID:      robotID,
		StepSize:     DefaultStepSize,
		WalkSpeed:    DefaultWalkSpeed,
		EnableSafety: true,
	}
}

// Execute runs every action of the plan in order, isolating per-action
// failures and honoring declared dependencies. Returns the aggregated
// result; the only error case is an unregistered robot.
func (ex *Executor) Execute(plan *Plan) (*Result, error) {
	if _, ok := ex.runner.Robot(ex.robotID); !ok {
		return nil, errs.NotFound("robot", ex.robotID)
	}
	plan.Status = StatusProcessing
	log.Printf("vla: executing plan %s (%d actions)", plan.ID, len(plan.Actions))

	results := make([]ActionResult, 0, len(plan.Actions))
	outcome := make(map[string]string)
	var total float64

	for _, action := range plan.Actions {
		if dep, failed := ex.failedDependency(action, outcome); failed {
			res := ActionResult{ActionID: action.ID, Status: "skipped", Details: "dependency " + dep + " did not succeed"}
			results = append(results, res)
			outcome[action.ID] = res.Status
			continue
		}

		res := ex.executeAction(action)
		results = append(results, res)
		outcome[action.ID] = res.Status
		total += res.Duration

		if ex.EnableSafety && ex.robotInCollision() {
			log.Printf("vla: safety stop, robot %s is in collision", ex.robotID)
			for _, remaining := range plan.Actions[len(results):] {
				results = append(results, ActionResult{ActionID: remaining.ID, Status: "skipped", Details: "safety stop"})
				outcome[remaining.ID] = "skipped"
			}
			break
		}
	}

	success := 0
	for _, res := range results {
		if res.Status == "success" {
			success++
		}
	}
	overall := "failure"
	switch {
	case success == len(results):
		overall = "success"
	case success > 0:
		overall = "partial"
	}
	if overall == "success" {
		plan.Status = StatusCompleted
	} else {
		plan.Status = StatusFailed
	}

	return &Result{
		ID:        newID("er"),
		PlanID:    plan.ID,
		Actions:   results,
		Overall:   overall,
		Duration:  total,
		Timestamp: time.Now(),
	}, nil
}

func (ex *Executor) failedDependency(action Action, outcome map[string]string) (string, bool) {
	for _, dep := range action.DependsOn {
		if outcome[dep] != "success" {
			return dep, true
		}
	}
	return "", false
}

func (ex *Executor) robotInCollision() bool {
	for _, pair := range ex.runner.Collisions.ActivePairs() {
		for _, id := range strings.SplitN(pair, "|", 2) {
			if id == ex.robotID {
				return true
			}
		}
	}
	return false
}

func (ex *Executor) executeAction(action Action) ActionResult {
	switch action.Type {
	case ActionNavigation:
		return ex.navigate(action)
	case ActionManipulation:
		return ex.manipulate(action)
	case ActionDetection:
		return ex.detect(action)
	default:
		return ActionResult{ActionID: action.ID, Status: "failed", Details: fmt.Sprintf("unknown action type: %s", action.Type)}
	}
}

var directionVectors = map[string]mgl64.Vec3{
	"forward":  {1, 0, 0},
	"backward": {-1, 0, 0},
	"left":     {0, 0, -1},
	"right":    {0, 0, 1},
	"up":       {0, 1, 0},
	"down":     {0, -1, 0},
}

func (ex *Executor) navigate(action Action) ActionResult {
	robot, _ := ex.runner.Robot(ex.robotID)
	dt := ex.stepSize()

	switch action.Op {
	case "stop":
		robot.Velocity = mgl64.Vec3{}
		return ActionResult{ActionID: action.ID, Status: "success", Details: "stopped"}
	case "wait":
		duration := ex.walk(mgl64.Vec3{}, 10*dt)
		return ActionResult{ActionID: action.ID, Status: "success", Details: "waiting: " + action.Target, Duration: duration}
	}

	dir, ok := directionVectors[action.Direction]
	if !ok {
		dir = directionVectors["forward"]
	}
	distance := action.Distance
	if distance <= 0 {
		distance = 1.0
	}
	if action.Op == "navigate_to" {
		// Stop short of the target instead of walking into it
		distance -= approachDistance
		if distance < 0 {
			distance = 0
		}
	}

	duration := ex.walk(dir.Mul(ex.walkSpeed()), distance/ex.walkSpeed())
	robot.Velocity = mgl64.Vec3{}

	details := fmt.Sprintf("moved %s for %.2fm", action.Direction, distance)
	if action.Op == "navigate_to" {
		details = "navigated to " + action.Target
	}
	return ActionResult{ActionID: action.ID, Status: "success", Details: details, Duration: duration}
}

// walk overwrites the base velocity every step so gravity cannot
// accumulate over the walk, then advances the simulation.
func (ex *Executor) walk(velocity mgl64.Vec3, seconds float64) float64 {
	robot, _ := ex.runner.Robot(ex.robotID)
	dt := ex.stepSize()
	steps := int(math.Ceil(seconds / dt))
	for i := 0; i < steps; i++ {
		robot.Velocity = velocity
		if !ex.runner.Step(dt) {
			return float64(i) * dt
		}
	}
	return float64(steps) * dt
}

func (ex *Executor) manipulate(action Action) ActionResult {
	if action.Op == "idle" {
		return ActionResult{ActionID: action.ID, Status: "success", Details: "idle: " + action.Target}
	}

	name := ex.GraspJoint
	if name == "" {
		names := ex.runner.Joints.JointNames(ex.robotID)
		if len(names) == 0 {
			return ActionResult{ActionID: action.ID, Status: "failed", Details: "robot has no joints"}
		}
		name = names[0]
	}

	target := graspTarget(ex.runner, ex.robotID, name)
	dt := ex.stepSize()
	for i := 0; i < graspSteps; i++ {
		effort, err := ex.runner.Joints.CalculateForces(ex.robotID, name, target, 0, 0, 0)
		if err != nil {
			return ActionResult{ActionID: action.ID, Status: "failed", Details: err.Error()}
		}
		if err := ex.runner.SetControlInputs(ex.robotID, map[string]float64{name: effort}); err != nil {
			return ActionResult{ActionID: action.ID, Status: "failed", Details: err.Error()}
		}
		if !ex.runner.Step(dt) {
			break
		}
	}

	// Stop driving the joint once the grasp attempt is over
	if err := ex.runner.SetControlInputs(ex.robotID, nil); err != nil {
		return ActionResult{ActionID: action.ID, Status: "failed", Details: err.Error()}
	}

	st, err := ex.runner.Joints.JointState(ex.robotID, name)
	if err != nil {
		return ActionResult{ActionID: action.ID, Status: "failed", Details: err.Error()}
	}
	duration := float64(graspSteps) * dt
	if math.Abs(st.Position-target) > graspTolerance {
		return ActionResult{
			ActionID: action.ID, Status: "failed", Duration: duration,
			Details: fmt.Sprintf("joint %s stalled at %.3f, wanted %.3f", name, st.Position, target),
		}
	}
	return ActionResult{
		ActionID: action.ID, Status: "success", Duration: duration,
		Details: fmt.Sprintf("%s %s with joint %s", action.Op, action.Target, name),
	}
}

// graspTarget picks a pose inside the joint's limits, preferring the
// middle of the upper half of the range.
func graspTarget(r *sim.Runner, robotID, name string) float64 {
	spec, err := r.Joints.JointSpec(robotID, name)
	if err != nil || spec.Limits.Position == nil {
		return 0.5
	}
	lim := spec.Limits.Position
	return lim.Min + 0.75*(lim.Max-lim.Min)
}

func (ex *Executor) detect(action Action) ActionResult {
	state := ex.runner.State()
	switch action.Op {
	case "report_status":
		return ActionResult{
			ActionID: action.ID, Status: "success",
			Details: fmt.Sprintf("step %d, %d robots, %d objects, %d active collisions",
				state.SimulationStep, len(state.Robots), len(state.EnvironmentObjects), state.CollisionInfo.ActiveCollisions),
		}
	case "detect_objects", "search_for_object":
		matches := 0
		for _, obj := range state.EnvironmentObjects {
			if strings.Contains(strings.ToLower(obj.ID), strings.ToLower(action.Target)) {
				matches++
			}
		}
		if action.Op == "search_for_object" && matches == 0 {
			return ActionResult{ActionID: action.ID, Status: "failed", Details: "object not found: " + action.Target}
		}
		return ActionResult{
			ActionID: action.ID, Status: "success",
			Details: fmt.Sprintf("found %d objects matching %q", matches, action.Target),
		}
	default: // scan_environment
		return ActionResult{
			ActionID: action.ID, Status: "success",
			Details: fmt.Sprintf("scanned environment: %d objects visible", len(state.EnvironmentObjects)),
		}
	}
}

func (ex *Executor) stepSize() float64 {
	if ex.StepSize > 0 {
		return ex.StepSize
	}
	return DefaultStepSize
}

func (ex *Executor) walkSpeed() float64 {
	if ex.WalkSpeed > 0 {
		return ex.WalkSpeed
	}
	return DefaultWalkSpeed
}
