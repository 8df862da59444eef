// Demo entrypoint: build a runner from the parameter file, register a
// small humanoid and a few environment objects, run the simulation, and
// report statistics.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"humanoidsim/internal/body"
	"humanoidsim/internal/config"
	"humanoidsim/internal/sim"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "simulation parameter file (YAML)")
	steps := flag.Int("steps", 500, "deterministic steps to run (ignored with -realtime)")
	realtime := flag.Bool("realtime", false, "run the wall-clock loop until the step ceiling")
	flag.Parse()

	params, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	runner := sim.NewRunner(params)
	if err := runner.AddRobot(buildHumanoid("walker-1")); err != nil {
		fmt.Fprintf(os.Stderr, "add robot: %v\n", err)
		os.Exit(1)
	}
	for _, obj := range buildEnvironment() {
		if err := runner.AddObject(obj); err != nil {
			fmt.Fprintf(os.Stderr, "add object: %v\n", err)
			os.Exit(1)
		}
	}

	start := time.Now()
	if *realtime {
		runner.Start()
		for runner.Stats().Running {
			time.Sleep(100 * time.Millisecond)
		}
	} else {
		for i := 0; i < *steps; i++ {
			if !runner.Step(params.TimeStep) {
				break
			}
		}
	}
	elapsed := time.Since(start)

	stats := runner.Stats()
	state := runner.State()
	fmt.Printf("ran %d steps in %v\n", stats.SimulationStep, elapsed.Round(time.Millisecond))
	fmt.Printf("robots: %d | objects: %d | active collisions: %d | recorded: %d\n",
		stats.RobotCount, stats.ObjectCount, stats.ActiveCollisions, stats.CollisionsRecorded)
	for _, rb := range state.Robots {
		fmt.Printf("robot %s at (%.2f, %.2f, %.2f)\n", rb.ID, rb.Position.X(), rb.Position.Y(), rb.Position.Z())
		for name, st := range rb.JointStates {
			fmt.Printf("  joint %-10s pos %7.3f vel %7.3f\n", name, st.Position, st.Velocity)
		}
	}
}

// buildHumanoid assembles a minimal humanoid: a box torso with a handful
// of limited revolute joints.
func buildHumanoid(id string) *body.Robot {
	return &body.Robot{
		Body: body.Body{
			ID:       id,
			Name:     "demo humanoid",
			Position: mgl64.Vec3{0, 1.0, 0},
			Props: &body.Props{
				Mass:        45,
				Restitution: 0.2,
				Shape:       body.Box(mgl64.Vec3{0.4, 1.6, 0.3}),
			},
		},
		Joints: map[string]body.JointSpec{
			"shoulder_pitch": {
				Type:   body.JointRevolute,
				Limits: body.Limits{Position: &body.Range{Min: -3.14, Max: 3.14}, Velocity: 5, Effort: 150},
			},
			"elbow": {
				Type:   body.JointRevolute,
				Limits: body.Limits{Position: &body.Range{Min: 0, Max: 2.6}, Velocity: 6, Effort: 80},
			},
			"hip_pitch": {
				Type:   body.JointRevolute,
				Limits: body.Limits{Position: &body.Range{Min: -1.8, Max: 1.8}, Velocity: 4, Effort: 200},
				// Legs carry more reflected inertia than arms
				MassEquivalent: 2.5,
			},
			"knee": {
				Type:            body.JointRevolute,
				InitialPosition: 0.1,
				Limits:          body.Limits{Position: &body.Range{Min: 0, Max: 2.4}, Velocity: 5, Effort: 180},
				MassEquivalent:  2.0,
			},
		},
	}
}

func buildEnvironment() []*body.Body {
	return []*body.Body{
		{
			ID:       "ground",
			Position: mgl64.Vec3{0, -0.5, 0},
			// Massless: collides but never moves
			Props: &body.Props{Shape: body.Box(mgl64.Vec3{20, 1, 20})},
		},
		{
			ID:       "ball-1",
			Position: mgl64.Vec3{1.5, 3, 0},
			Props:    &body.Props{Mass: 1, Restitution: 0.8, Shape: body.Sphere(0.25)},
		},
		{
			ID:       "ball-2",
			Position: mgl64.Vec3{1.6, 5, 0.1},
			Props:    &body.Props{Mass: 2, Restitution: 0.6, Shape: body.Sphere(0.3)},
		},
	}
}
