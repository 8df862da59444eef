package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humanoidsim/internal/body"
	"humanoidsim/internal/config"
	"humanoidsim/internal/errs"
	"humanoidsim/internal/joint"
)

func newEngine() (*Engine, *joint.Engine) {
	params := config.Default()
	joints := joint.NewEngine()
	return NewEngine(&params, joints), joints
}

func TestApplyGravityEuler(t *testing.T) {
	e, _ := newEngine()
	b := sphere("ball", mgl64.Vec3{0, 10, 0}, 0.5, 1, 0.5)

	require.NoError(t, e.ApplyGravity(b, 0.1))
	assert.InDelta(t, -0.981, b.Velocity.Y(), 1e-9)
	assert.InDelta(t, 10-0.0981, b.Position.Y(), 1e-9)

	require.NoError(t, e.ApplyGravity(b, 0.1))
	assert.InDelta(t, -1.962, b.Velocity.Y(), 1e-9)
}

func TestApplyGravityIsMassIndependent(t *testing.T) {
	e, _ := newEngine()
	light := sphere("light", mgl64.Vec3{0, 10, 0}, 0.5, 1, 0.5)
	heavy := sphere("heavy", mgl64.Vec3{0, 10, 0}, 0.5, 100, 0.5)

	require.NoError(t, e.ApplyGravity(light, 0.1))
	require.NoError(t, e.ApplyGravity(heavy, 0.1))
	assert.Equal(t, light.Velocity, heavy.Velocity)
	assert.Equal(t, light.Position, heavy.Position)
}

func TestApplyGravityRequiresMass(t *testing.T) {
	e, _ := newEngine()

	err := e.ApplyGravity(&body.Body{ID: "ghost"}, 0.1)
	assert.True(t, errs.IsValidation(err))

	massless := &body.Body{ID: "ground", Props: &body.Props{Mass: 0}}
	err = e.ApplyGravity(massless, 0.1)
	assert.True(t, errs.IsValidation(err))
}

func TestApplyToRobotClampsJoints(t *testing.T) {
	e, joints := newEngine()
	r := &body.Robot{
		Body: body.Body{ID: "r1"},
		Joints: map[string]body.JointSpec{
			"elbow": {
				InitialPosition: 2.0,
				Limits:          body.Limits{Position: &body.Range{Min: -1, Max: 1}},
			},
		},
	}
	require.NoError(t, joints.InitializeJoints(r))

	require.NoError(t, e.ApplyToRobot(r, 0.01))
	st, err := joints.JointState("r1", "elbow")
	require.NoError(t, err)
	assert.Equal(t, 1.0, st.Position)
}

func TestApplyToRobotRequiresID(t *testing.T) {
	e, _ := newEngine()
	err := e.ApplyToRobot(&body.Robot{}, 0.01)
	assert.True(t, errs.IsValidation(err))
}

func TestApplyToRobotSkipsGravityForMasslessBase(t *testing.T) {
	e, joints := newEngine()
	r := &body.Robot{
		Body:   body.Body{ID: "r1", Position: mgl64.Vec3{0, 1, 0}},
		Joints: map[string]body.JointSpec{"elbow": {}},
	}
	require.NoError(t, joints.InitializeJoints(r))

	require.NoError(t, e.ApplyToRobot(r, 0.01))
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, r.Position)
}

func TestSimulationClock(t *testing.T) {
	e, _ := newEngine()

	// Advance before start is a no-op
	e.Advance(0.5)
	assert.Zero(t, e.Status().Elapsed)

	e.StartSimulation()
	e.Advance(0.5)
	e.Advance(0.25)
	st := e.Status()
	assert.True(t, st.Running)
	assert.InDelta(t, 0.75, st.Elapsed, 1e-12)

	e.StopSimulation()
	e.Advance(0.5)
	st = e.Status()
	assert.False(t, st.Running)
	assert.InDelta(t, 0.75, st.Elapsed, 1e-12)

	// Restarting resets the clock
	e.StartSimulation()
	assert.Zero(t, e.Status().Elapsed)
}

func TestStatusReportsParameters(t *testing.T) {
	params := config.Default()
	e := NewEngine(&params, joint.NewEngine())

	st := e.Status()
	assert.Equal(t, mgl64.Vec3{0, -9.81, 0}, st.Gravity)
	assert.Equal(t, params.TimeStep, st.TimeStep)
}
