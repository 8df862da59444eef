// Package config holds the process-wide simulation parameters, loadable
// from a YAML file with defaults when the file is missing.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"humanoidsim/internal/errs"
)

// DefaultPath is the parameter file location relative to the working
// directory.
const DefaultPath = "config/sim.yaml"

// Collision holds collision-detection settings passed through to the
// collision engine.
type Collision struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	HistoryCap int  `yaml:"history_cap" json:"historyCap"`
}

// Solver holds solver settings. The toy engines read none of these; they
// are carried as opaque tunables for callers.
type Solver struct {
	Iterations int     `yaml:"iterations" json:"iterations"`
	Tolerance  float64 `yaml:"tolerance" json:"tolerance"`
}

// Params are the tunables read by the engines every tick. TimeStep and
// RealTimeFactor must stay strictly positive; use the setters to mutate
// them after construction.
type Params struct {
	Gravity        [3]float64 `yaml:"gravity" json:"gravity"`
	TimeStep       float64    `yaml:"time_step" json:"timeStep"`
	RealTimeFactor float64    `yaml:"real_time_factor" json:"realTimeFactor"`
	MaxSteps       int        `yaml:"max_steps" json:"maxSteps"`
	TickMillis     int        `yaml:"tick_millis" json:"tickMillis"`
	Collision      Collision  `yaml:"collision" json:"collisionDetection"`
	Solver         Solver     `yaml:"solver" json:"solverSettings"`
}

// Default returns Earth gravity, a 1 ms time step, real-time playback, a
// 10k step ceiling, and a ~100 Hz tick target.
func Default() Params {
	return Params{
		Gravity:        [3]float64{0, -9.81, 0},
		TimeStep:       0.001,
		RealTimeFactor: 1.0,
		MaxSteps:       10000,
		TickMillis:     10,
		Collision:      Collision{Enabled: true, HistoryCap: 1000},
		Solver:         Solver{Iterations: 10, Tolerance: 1e-6},
	}
}

// Load reads parameters from path. A missing or unreadable file returns
// Default() without error; a file that exists but fails validation
// returns the error.
func Load(path string) (Params, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), nil
	}
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Default(), err
	}
	if err := p.Validate(); err != nil {
		return Default(), err
	}
	return p, nil
}

// Save writes parameters to path, creating the directory if needed.
func Save(path string, p Params) error {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects non-positive time step, real-time factor, and step
// ceiling.
func (p *Params) Validate() error {
	if p.TimeStep <= 0 {
		return errs.Validation("Params", "time_step", "must be positive")
	}
	if p.RealTimeFactor <= 0 {
		return errs.Validation("Params", "real_time_factor", "must be positive")
	}
	if p.MaxSteps <= 0 {
		return errs.Validation("Params", "max_steps", "must be positive")
	}
	return nil
}

// SetTimeStep updates the fixed time step, rejecting non-positive values.
func (p *Params) SetTimeStep(v float64) error {
	if v <= 0 {
		return errs.Validation("SetTimeStep", "time_step", "must be positive")
	}
	p.TimeStep = v
	return nil
}

// SetRealTimeFactor updates the playback factor, rejecting non-positive
// values.
func (p *Params) SetRealTimeFactor(v float64) error {
	if v <= 0 {
		return errs.Validation("SetRealTimeFactor", "real_time_factor", "must be positive")
	}
	p.RealTimeFactor = v
	return nil
}

// GravityVec returns gravity as a vector.
func (p *Params) GravityVec() mgl64.Vec3 {
	return mgl64.Vec3{p.Gravity[0], p.Gravity[1], p.Gravity[2]}
}

// TickInterval returns the wall-clock scheduling period.
func (p *Params) TickInterval() time.Duration {
	ms := p.TickMillis
	if ms <= 0 {
		ms = 10
	}
	return time.Duration(ms) * time.Millisecond
}
