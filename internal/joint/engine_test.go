package joint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humanoidsim/internal/body"
	"humanoidsim/internal/errs"
)

func testRobot(id string) *body.Robot {
	return &body.Robot{
		Body: body.Body{ID: id},
		Joints: map[string]body.JointSpec{
			"shoulder": {
				Type:            body.JointRevolute,
				InitialPosition: 0.5,
				Limits:          body.Limits{Position: &body.Range{Min: -1, Max: 1}},
			},
			"slider": {
				Type:   body.JointPrismatic,
				Limits: body.Limits{Velocity: 2, Effort: 50},
			},
		},
	}
}

func TestInitializeJoints(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.InitializeJoints(testRobot("r1")))

	st, err := e.JointState("r1", "shoulder")
	require.NoError(t, err)
	assert.Equal(t, 0.5, st.Position)
	assert.Zero(t, st.Velocity)
	assert.Zero(t, st.Effort)
}

func TestInitializeJointsRequiresConfiguration(t *testing.T) {
	e := NewEngine()
	err := e.InitializeJoints(&body.Robot{Body: body.Body{ID: "r1"}})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestInitializeJointsRejectsUnknownType(t *testing.T) {
	e := NewEngine()
	r := &body.Robot{
		Body: body.Body{ID: "r1"},
		Joints: map[string]body.JointSpec{
			"rotor": {Type: "spherical"},
		},
	}
	err := e.InitializeJoints(r)
	require.Error(t, err)
	assert.Empty(t, e.JointNames("r1"))
}

func TestJointNamesScopedPerRobot(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.InitializeJoints(testRobot("r1")))
	require.NoError(t, e.InitializeJoints(testRobot("r2")))

	// Same joint name on two robots stays independent
	require.NoError(t, e.UpdateJointState("r1", "shoulder", 10, 0.01))
	st1, _ := e.JointState("r1", "shoulder")
	st2, _ := e.JointState("r2", "shoulder")
	assert.NotEqual(t, st1.Velocity, st2.Velocity)
	assert.Equal(t, 0.5, st2.Position)
}

func TestUpdateJointStateEuler(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.InitializeJoints(testRobot("r1")))

	// massEquivalent defaults to 1: a = 2, v = 0.2, p = 0.5 + 0.02
	require.NoError(t, e.UpdateJointState("r1", "shoulder", 2, 0.1))
	st, err := e.JointState("r1", "shoulder")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, st.Acceleration, 1e-12)
	assert.InDelta(t, 0.2, st.Velocity, 1e-12)
	assert.InDelta(t, 0.52, st.Position, 1e-12)
}

func TestUpdateJointStateUnknownJoint(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.InitializeJoints(testRobot("r1")))

	err := e.UpdateJointState("r1", "nope", 1, 0.01)
	assert.True(t, errs.IsNotFound(err))
	err = e.UpdateJointState("ghost", "shoulder", 1, 0.01)
	assert.True(t, errs.IsNotFound(err))
}

func TestPositionLimitZeroesVelocity(t *testing.T) {
	e := NewEngine()
	robot := &body.Robot{
		Body: body.Body{ID: "r1"},
		Joints: map[string]body.JointSpec{
			"j": {Limits: body.Limits{Position: &body.Range{Min: -1, Max: 1}}},
		},
	}
	require.NoError(t, e.InitializeJoints(robot))

	// Effort 1000 at dt=0.01 for 10 steps: position clamps at 1 with
	// velocity reset once the limit is hit
	for i := 0; i < 10; i++ {
		require.NoError(t, e.UpdateJointState("r1", "j", 1000, 0.01))
	}
	st, _ := e.JointState("r1", "j")
	assert.Equal(t, 1.0, st.Position)
	assert.Zero(t, st.Velocity)
}

func TestApplyJointLimitsIdempotent(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.InitializeJoints(testRobot("r1")))
	require.NoError(t, e.UpdateJointState("r1", "shoulder", 500, 0.1))

	require.NoError(t, e.ApplyJointLimits("r1", "shoulder"))
	first, _ := e.JointState("r1", "shoulder")
	assert.LessOrEqual(t, first.Position, 1.0)
	assert.GreaterOrEqual(t, first.Position, -1.0)

	// Clamping an already-clamped state changes nothing
	require.NoError(t, e.ApplyJointLimits("r1", "shoulder"))
	second, _ := e.JointState("r1", "shoulder")
	assert.Equal(t, first.Position, second.Position)
	assert.Equal(t, first.Velocity, second.Velocity)
}

func TestVelocityAndEffortLimits(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.InitializeJoints(testRobot("r1")))

	require.NoError(t, e.UpdateJointState("r1", "slider", 1000, 0.1))
	st, _ := e.JointState("r1", "slider")
	assert.Equal(t, 2.0, st.Velocity)
	assert.Equal(t, 50.0, st.Effort)
}

func TestCalculateForcesPD(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.InitializeJoints(testRobot("r1")))

	// position 0.5, velocity 0: effort = kp*(1-0.5) + kd*(0-0)
	effort, err := e.CalculateForces("r1", "shoulder", 1.0, 0, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, DefaultKp*0.5, effort, 1e-12)

	effort, err = e.CalculateForces("r1", "shoulder", 0.5, 2.0, 50, 5)
	require.NoError(t, err)
	assert.InDelta(t, 5*2.0, effort, 1e-12)

	_, err = e.CalculateForces("r1", "missing", 0, 0, 0, 0)
	assert.True(t, errs.IsNotFound(err))
}

func TestUpdateAllJointsSkipsUnknownInputs(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.InitializeJoints(testRobot("r1")))

	inputs := map[string]float64{"shoulder": 1, "made_up_joint": 99}
	require.NoError(t, e.UpdateAllJoints("r1", inputs, 0.01))

	st, _ := e.JointState("r1", "shoulder")
	assert.NotZero(t, st.Velocity)
	_, err := e.JointState("r1", "made_up_joint")
	assert.True(t, errs.IsNotFound(err))
}

func TestResetJoints(t *testing.T) {
	e := NewEngine()
	robot := testRobot("r1")
	require.NoError(t, e.InitializeJoints(robot))
	require.NoError(t, e.UpdateJointState("r1", "shoulder", 10, 0.1))

	require.NoError(t, e.ResetJoints(robot))
	st, _ := e.JointState("r1", "shoulder")
	assert.Equal(t, 0.5, st.Position)
	assert.Zero(t, st.Velocity)
}

func TestRobotStatesAreCopies(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.InitializeJoints(testRobot("r1")))

	states := e.RobotStates("r1")
	mutated := states["shoulder"]
	mutated.Position = 42
	states["shoulder"] = mutated

	st, _ := e.JointState("r1", "shoulder")
	assert.Equal(t, 0.5, st.Position)
}
