// Package vla implements the voice-to-action pipeline: validated text
// commands are interpreted into intents, decomposed into action plans,
// and executed against the simulation runner.
package vla

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Status tracks a command or plan through the pipeline.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Command is a validated text command, normally the transcript of a
// voice utterance.
type Command struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Status     Status    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// Intent is the interpreted meaning of a command.
type Intent struct {
	Primary    string  `json:"primary"` // navigation | manipulation | detection | status | stop | unknown
	Confidence float64 `json:"confidence"`

	Direction string  `json:"direction,omitempty"`
	Distance  float64 `json:"distance,omitempty"` // meters, 0 when unspecified
	Object    string  `json:"object,omitempty"`
	Location  string  `json:"location,omitempty"`
}

// ActionType classifies an executable action.
type ActionType string

const (
	ActionNavigation   ActionType = "navigation"
	ActionManipulation ActionType = "manipulation"
	ActionDetection    ActionType = "detection"
)

// Action is one executable step of a plan.
type Action struct {
	ID        string     `json:"id"`
	Type      ActionType `json:"type"`
	Op        string     `json:"op"` // navigate_to, move_direction, grasp, scan_environment, ...
	Target    string     `json:"target,omitempty"`
	Direction string     `json:"direction,omitempty"`
	Distance  float64    `json:"distance,omitempty"`
	Priority  int        `json:"priority"`
	DependsOn []string   `json:"dependsOn,omitempty"`
}

// Plan is an ordered action sequence generated from one command.
type Plan struct {
	ID                string    `json:"id"`
	CommandID         string    `json:"commandId"`
	Actions           []Action  `json:"actions"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	EstimatedDuration float64   `json:"estimatedDuration"` // seconds
}

// ActionResult is the outcome of executing one action.
type ActionResult struct {
	ActionID string  `json:"actionId"`
	Status   string  `json:"status"` // success | failed | skipped
	Details  string  `json:"details"`
	Duration float64 `json:"duration"` // simulated seconds
}

// Result aggregates a plan execution.
type Result struct {
	ID        string         `json:"id"`
	PlanID    string         `json:"planId"`
	Actions   []ActionResult `json:"results"`
	Overall   string         `json:"overallStatus"` // success | partial | failure
	Duration  float64        `json:"executionTime"`
	Timestamp time.Time      `json:"timestamp"`
}

// EnvObject is a known object in the planning context.
type EnvObject struct {
	ID       string
	Type     string
	Position mgl64.Vec3
}

// EnvContext is the environmental context plans are generated against.
type EnvContext struct {
	Objects       []EnvObject
	RobotPosition mgl64.Vec3
}

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
