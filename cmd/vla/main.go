// Voice-to-action demo: interpret a command sentence, plan it, and
// execute the plan against a fresh simulation.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"humanoidsim/internal/body"
	"humanoidsim/internal/config"
	"humanoidsim/internal/sim"
	"humanoidsim/internal/vla"
)

func main() {
	confidence := flag.Float64("confidence", 0.85, "transcript confidence score")
	flag.Parse()

	text := strings.Join(flag.Args(), " ")
	if text == "" {
		text = "move forward 2 meters"
	}

	processor := vla.NewProcessor()
	cmd, err := processor.Command(text, *confidence)
	if err != nil {
		fmt.Fprintf(os.Stderr, "command rejected: %v\n", err)
		os.Exit(1)
	}
	intent := processor.Interpret(cmd)
	fmt.Printf("command: %q\nintent: %s", cmd.Text, intent.Primary)
	if intent.Direction != "" {
		fmt.Printf(" direction=%s", intent.Direction)
	}
	if intent.Distance > 0 {
		fmt.Printf(" distance=%.1fm", intent.Distance)
	}
	if intent.Object != "" {
		fmt.Printf(" object=%q", intent.Object)
	}
	if intent.Location != "" {
		fmt.Printf(" location=%q", intent.Location)
	}
	fmt.Println()

	runner := sim.NewRunner(config.Default())
	robot := demoRobot("vla-robot")
	if err := runner.AddRobot(robot); err != nil {
		fmt.Fprintf(os.Stderr, "add robot: %v\n", err)
		os.Exit(1)
	}
	cube := &body.Body{
		ID:       "red-cube",
		Position: mgl64.Vec3{2, 0.25, 0},
		Props:    &body.Props{Mass: 0.5, Restitution: 0.3, Shape: body.Box(mgl64.Vec3{0.1, 0.1, 0.1})},
	}
	if err := runner.AddObject(cube); err != nil {
		fmt.Fprintf(os.Stderr, "add object: %v\n", err)
		os.Exit(1)
	}

	planner := vla.NewPlanner()
	env := vla.EnvContext{
		Objects:       []vla.EnvObject{{ID: cube.ID, Type: "red cube", Position: cube.Position}},
		RobotPosition: robot.Position,
	}
	plan := planner.BuildPlan(cmd, intent, env)
	fmt.Printf("plan %s: %d actions, est %.1fs\n", plan.ID, len(plan.Actions), plan.EstimatedDuration)
	for i, action := range plan.Actions {
		fmt.Printf("  %d. %s %s %s\n", i+1, action.Type, action.Op, action.Target)
	}

	executor := vla.NewExecutor(runner, robot.ID)
	result, err := executor.Execute(plan)
	if err != nil {
		fmt.Fprintf(os.Stderr, "execute: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("execution %s: %s in %.2fs simulated\n", result.ID, result.Overall, result.Duration)
	for _, res := range result.Actions {
		fmt.Printf("  [%s] %s\n", res.Status, res.Details)
	}
}

func demoRobot(id string) *body.Robot {
	return &body.Robot{
		Body: body.Body{
			ID:       id,
			Name:     "vla demo robot",
			Position: mgl64.Vec3{0, 0.9, 0},
			Props:    &body.Props{Mass: 30, Restitution: 0.2, Shape: body.Box(mgl64.Vec3{0.4, 1.6, 0.3})},
		},
		Joints: map[string]body.JointSpec{
			"gripper": {
				Type:   body.JointRevolute,
				Limits: body.Limits{Position: &body.Range{Min: 0, Max: 1.2}, Velocity: 4, Effort: 60},
			},
			"shoulder_pitch": {
				Type:   body.JointRevolute,
				Limits: body.Limits{Position: &body.Range{Min: -3.14, Max: 3.14}, Velocity: 5, Effort: 150},
			},
		},
	}
}
