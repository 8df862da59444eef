package vla

import (
	"log"
	"strings"
	"time"
)

// Duration model: base seconds per action plus surcharges.
const (
	baseActionSeconds     = 5.0
	manipulationSurcharge = 3.0
	secondsPerMeter       = 0.5
)

// Planner decomposes intents into ordered, executable action plans.
type Planner struct{}

// NewPlanner returns a Planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Decompose splits a compound command into simpler subtasks on "and" and
// "then" connectives. A simple command comes back as a single subtask.
func (pl *Planner) Decompose(text string) []string {
	lower := strings.ToLower(text)
	var sep string
	switch {
	case strings.Contains(lower, " and "):
		sep = " and "
	case strings.Contains(lower, " then "):
		sep = " then "
	default:
		return []string{text}
	}
	var out []string
	for _, part := range strings.Split(lower, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// BuildPlan generates an action plan for one command and its interpreted
// intent against the given environmental context.
func (pl *Planner) BuildPlan(cmd *Command, intent Intent, env EnvContext) *Plan {
	var actions []Action
	switch intent.Primary {
	case "navigation":
		actions = pl.navigationActions(intent)
	case "manipulation":
		actions = pl.manipulationActions(intent, env)
	case "detection":
		actions = pl.detectionActions(intent)
	case "status":
		actions = []Action{{ID: newID("act"), Type: ActionDetection, Op: "report_status", Priority: 1}}
	case "stop":
		actions = []Action{{ID: newID("act"), Type: ActionNavigation, Op: "stop", Priority: 1}}
	default:
		actions = []Action{{ID: newID("act"), Type: ActionNavigation, Op: "wait", Target: "unrecognized_intent", Priority: 1}}
	}

	plan := &Plan{
		ID:                newID("ap"),
		CommandID:         cmd.ID,
		Actions:           actions,
		Status:            StatusPending,
		CreatedAt:         time.Now(),
		EstimatedDuration: estimateDuration(actions),
	}
	log.Printf("vla: plan %s generated with %d actions", plan.ID, len(actions))
	return plan
}

func (pl *Planner) navigationActions(intent Intent) []Action {
	switch {
	case intent.Location != "":
		return []Action{{
			ID: newID("act"), Type: ActionNavigation, Op: "navigate_to",
			Target: intent.Location, Priority: 1,
		}}
	case intent.Direction != "" && intent.Distance > 0:
		return []Action{{
			ID: newID("act"), Type: ActionNavigation, Op: "move_direction",
			Direction: intent.Direction, Distance: intent.Distance, Priority: 1,
		}}
	case intent.Direction != "":
		return []Action{{
			ID: newID("act"), Type: ActionNavigation, Op: "move_toward",
			Direction: intent.Direction, Priority: 1,
		}}
	default:
		// Default 1 meter forward
		return []Action{{
			ID: newID("act"), Type: ActionNavigation, Op: "move_direction",
			Direction: "forward", Distance: 1.0, Priority: 1,
		}}
	}
}

func (pl *Planner) manipulationActions(intent Intent, env EnvContext) []Action {
	if intent.Object == "" {
		return []Action{{ID: newID("act"), Type: ActionManipulation, Op: "idle", Target: "insufficient_parameters", Priority: 1}}
	}

	var target *EnvObject
	for i := range env.Objects {
		if strings.Contains(strings.ToLower(env.Objects[i].Type), strings.ToLower(intent.Object)) ||
			strings.Contains(strings.ToLower(intent.Object), strings.ToLower(env.Objects[i].Type)) {
			target = &env.Objects[i]
			break
		}
	}
	if target == nil {
		// Unknown object: search before acting
		return []Action{{
			ID: newID("act"), Type: ActionDetection, Op: "search_for_object",
			Target: intent.Object, Priority: 1,
		}}
	}

	nav := Action{
		ID: newID("act"), Type: ActionNavigation, Op: "navigate_to",
		Target:   target.ID,
		Distance: env.RobotPosition.Sub(target.Position).Len(),
		Priority: 1,
	}
	manip := Action{
		ID: newID("act"), Type: ActionManipulation, Op: "grasp",
		Target: target.ID, Priority: 2,
		DependsOn: []string{nav.ID},
	}
	return []Action{nav, manip}
}

func (pl *Planner) detectionActions(intent Intent) []Action {
	if intent.Object != "" {
		return []Action{{
			ID: newID("act"), Type: ActionDetection, Op: "detect_objects",
			Target: intent.Object, Priority: 1,
		}}
	}
	return []Action{{ID: newID("act"), Type: ActionDetection, Op: "scan_environment", Priority: 1}}
}

func estimateDuration(actions []Action) float64 {
	total := float64(len(actions)) * baseActionSeconds
	for _, a := range actions {
		switch a.Type {
		case ActionManipulation:
			total += manipulationSurcharge
		case ActionNavigation:
			d := a.Distance
			if d <= 0 {
				d = 1.0
			}
			total += d * secondsPerMeter
		}
	}
	return total
}
