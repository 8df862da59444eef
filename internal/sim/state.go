package sim

import (
	"encoding/json"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"humanoidsim/internal/body"
	"humanoidsim/internal/config"
	"humanoidsim/internal/joint"
	"humanoidsim/internal/physics"
)

// --- Snapshot types ---

// RobotState is the externally-queryable view of one robot.
type RobotState struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name,omitempty"`
	Position    mgl64.Vec3             `json:"position"`
	JointStates map[string]joint.State `json:"jointStates"`
}

// ObjectState is the externally-queryable view of one environment object.
type ObjectState struct {
	ID       string     `json:"id"`
	Position mgl64.Vec3 `json:"position"`
	Velocity mgl64.Vec3 `json:"velocity"`
}

// CollisionInfo aggregates the collision engine's queryable state.
type CollisionInfo struct {
	ActiveCollisions int             `json:"activeCollisions"`
	History          []physics.Event `json:"history"`
}

// State is the aggregated read-only projection of the whole simulation.
type State struct {
	IsRunning          bool           `json:"isRunning"`
	SimulationStep     int            `json:"simulationStep"`
	Robots             []RobotState   `json:"robots"`
	EnvironmentObjects []ObjectState  `json:"environmentObjects"`
	PhysicsStatus      physics.Status `json:"physicsStatus"`
	CollisionInfo      CollisionInfo  `json:"collisionInfo"`
	Timestamp          time.Time      `json:"timestamp"`
}

// Stats is the compact statistics projection.
type Stats struct {
	SimulationStep     int  `json:"simulationStep"`
	RobotCount         int  `json:"robotCount"`
	ObjectCount        int  `json:"objectCount"`
	ActiveCollisions   int  `json:"activeCollisions"`
	CollisionsRecorded int  `json:"collisionsRecorded"`
	Running            bool `json:"running"`
}

// State returns a snapshot of the simulation. Pure read, no side effects.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	robots := make([]RobotState, 0, len(r.robots))
	for _, rb := range r.robots {
		robots = append(robots, RobotState{
			ID:          rb.ID,
			Name:        rb.Name,
			Position:    rb.Position,
			JointStates: r.Joints.RobotStates(rb.ID),
		})
	}
	objects := make([]ObjectState, 0, len(r.objects))
	for _, o := range r.objects {
		objects = append(objects, ObjectState{ID: o.ID, Position: o.Position, Velocity: o.Velocity})
	}

	return State{
		IsRunning:          r.running,
		SimulationStep:     r.step,
		Robots:             robots,
		EnvironmentObjects: objects,
		PhysicsStatus:      r.Physics.Status(),
		CollisionInfo: CollisionInfo{
			ActiveCollisions: r.Collisions.ActiveCount(),
			History:          r.Collisions.History(),
		},
		Timestamp: time.Now(),
	}
}

// Stats returns the statistics projection.
func (r *Runner) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		SimulationStep:     r.step,
		RobotCount:         len(r.robots),
		ObjectCount:        len(r.objects),
		ActiveCollisions:   r.Collisions.ActiveCount(),
		CollisionsRecorded: len(r.Collisions.History()),
		Running:            r.running,
	}
}

// --- Persisted state ---

// snapshotFile is the serialized form: a plain snapshot with no
// versioning field, validated only by the registration checks on load.
type snapshotFile struct {
	Robots             []*body.Robot `json:"robots"`
	EnvironmentObjects []*body.Body  `json:"environmentObjects"`
	SimulationStep     int           `json:"simulationStep"`
	Timestamp          time.Time     `json:"timestamp"`
	PhysicsParameters  config.Params `json:"physicsParameters"`
}

// SaveState serializes the robot list, object list, step counter, and
// physics parameters.
func (r *Runner) SaveState() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := snapshotFile{
		Robots:             r.robots,
		EnvironmentObjects: r.objects,
		SimulationStep:     r.step,
		Timestamp:          time.Now(),
		PhysicsParameters:  r.params,
	}
	return json.MarshalIndent(snap, "", "\t")
}

// LoadState replaces the runner's robots, objects, step counter, and
// parameters from a saved snapshot, re-registering every robot's joints.
// A rejected snapshot leaves the runner unchanged. Joint kinematics are
// not restored: joints come back at their configured defaults, a known
// limitation of the snapshot format.
func (r *Runner) LoadState(data []byte) error {
	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	if err := snap.PhysicsParameters.Validate(); err != nil {
		return err
	}
	for _, rb := range snap.Robots {
		if err := rb.Validate("LoadState"); err != nil {
			return err
		}
	}
	for _, o := range snap.EnvironmentObjects {
		if err := o.Validate("LoadState"); err != nil {
			return err
		}
	}

	// Stage the whole snapshot off to the side first: joint registration
	// can still reject a robot, and a failed load must leave the runner
	// exactly as it was
	joints := joint.NewEngine()
	byID := make(map[string]*body.Robot, len(snap.Robots))
	var robots []*body.Robot
	for _, rb := range snap.Robots {
		if err := joints.InitializeJoints(rb); err != nil {
			return err
		}
		robots = append(robots, rb)
		byID[rb.ID] = rb
	}

	r.Stop()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.params = snap.PhysicsParameters
	r.robots = robots
	r.objects = snap.EnvironmentObjects
	r.byID = byID
	r.controls = make(map[string]map[string]float64)
	r.Joints = joints
	r.Physics = physics.NewEngine(&r.params, r.Joints)
	r.Collisions = physics.NewCollisionEngine(r.params.Collision.HistoryCap)
	r.step = snap.SimulationStep
	return nil
}
