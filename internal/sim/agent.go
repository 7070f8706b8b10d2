package sim

import (
	"math"
	"time"

	"github.com/talgya/outbreak/internal/entropy"
)

// State is an agent's SIR compartment.
type State uint8

const (
	Susceptible State = iota
	Infected
	Removed
)

// NumStates is the number of SIR compartments.
const NumStates = 3

func (s State) String() string {
	switch s {
	case Susceptible:
		return "susceptible"
	case Infected:
		return "infected"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// headingJitter bounds the uniform per-tick heading perturbation.
const headingJitter = 0.2

// Transition records a state change. Agents return transitions instead of
// mutating the population's count table; Population.apply is the only place
// counts change, which keeps the sum invariant in one spot.
type Transition struct {
	From State
	To   State
}

// Agent is one wandering individual. Transitions are monotonic:
// Susceptible → Infected → Removed, never backwards.
type Agent struct {
	X, Y    float64
	Heading float64 // Radians; accumulates jitter, never normalized
	Speed   float64

	state         State
	infectedSince time.Time
}

// State returns the agent's current compartment.
func (a *Agent) State() State {
	return a.state
}

// Tick advances the agent one step: roam, transmit, recover.
//
// Transmission happens in place, mid-pass: a victim infected here is already
// Infected when its own Tick runs later in the same population pass, so an
// infection can cascade within a single tick. That single-live-pass behavior
// is part of the simulation's contract — do not buffer state flips to the
// end of the pass.
func (a *Agent) Tick(everyone []*Agent, half float64, cfg Config, rng *entropy.Source, now time.Time) []Transition {
	var events []Transition

	// Just roam around.
	a.Heading += rng.Range(-headingJitter, headingJitter)
	a.move(math.Sin(a.Heading)*a.Speed, math.Cos(a.Heading)*a.Speed, half)

	// ...and infect the neighbors. One chance draw per susceptible agent,
	// then the distance check.
	if a.state == Infected {
		for _, victim := range everyone {
			if victim == a || victim.state != Susceptible {
				continue
			}
			if rng.Float64() >= cfg.InfectionChance {
				continue
			}
			if !a.inRadius(victim, cfg.InfectionRadius) {
				continue
			}
			if tr, ok := victim.Infect(now); ok {
				events = append(events, tr)
			}
		}
	}

	// Recover.
	if a.state == Infected && now.Sub(a.infectedSince) > cfg.InfectionDuration {
		a.state = Removed
		events = append(events, Transition{From: Infected, To: Removed})
	}

	return events
}

// Infect forces the agent into the Infected state. The state change is a
// no-op unless the agent is Susceptible, but the infection timer resets
// unconditionally — re-infecting an already-infected agent extends its
// infectious window.
func (a *Agent) Infect(now time.Time) (Transition, bool) {
	a.infectedSince = now
	if a.state != Susceptible {
		return Transition{From: a.state, To: a.state}, false
	}
	a.state = Infected
	return Transition{From: Susceptible, To: Infected}, true
}

// move applies a displacement and clamps each axis to [-half, half].
func (a *Agent) move(dx, dy, half float64) {
	a.X = clamp(a.X+dx, -half, half)
	a.Y = clamp(a.Y+dy, -half, half)
}

// inRadius reports whether the other agent is strictly within radius.
func (a *Agent) inRadius(other *Agent, radius float64) bool {
	return math.Hypot(other.X-a.X, other.Y-a.Y) < radius
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
