package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/talgya/outbreak/internal/entropy"
)

// Counts is the aggregate state table. It always sums to the agent count;
// it is updated incrementally on every transition, never recomputed.
type Counts struct {
	Susceptible int `json:"susceptible"`
	Infected    int `json:"infected"`
	Removed     int `json:"removed"`
}

// Total returns the sum over all compartments.
func (c Counts) Total() int {
	return c.Susceptible + c.Infected + c.Removed
}

func (c *Counts) add(s State, delta int) {
	switch s {
	case Susceptible:
		c.Susceptible += delta
	case Infected:
		c.Infected += delta
	case Removed:
		c.Removed += delta
	}
}

// AgentView is a read-only snapshot of one agent for rendering layers.
type AgentView struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	State State   `json:"state"`
}

// Population owns a fixed set of agents, the shared count table, and the
// sampled history of that table. Agents are never created or destroyed
// after construction; only their states change.
//
// The simulation itself is single-threaded: Tick runs one full pass over
// the agents in order, O(n²) per tick. The mutex only fences the observation
// API and websocket feed, which read from other goroutines.
type Population struct {
	mu      sync.RWMutex
	agents  []*Agent
	counts  Counts
	history []Counts
	size    float64
	cfg     Config
	rng     *entropy.Source
	now     func() time.Time
}

// New creates count agents uniformly placed over [-size/2, size/2]², then
// force-infects agent 0 and moves it to the origin as the deterministic
// outbreak seed. A nil clock means time.Now.
func New(count int, size float64, cfg Config, rng *entropy.Source, clock func() time.Time) (*Population, error) {
	if count < 1 {
		return nil, fmt.Errorf("agent count must be at least 1, got %d", count)
	}
	if size <= 0 {
		return nil, fmt.Errorf("region size must be positive, got %v", size)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if clock == nil {
		clock = time.Now
	}

	p := &Population{
		size: size,
		cfg:  cfg,
		rng:  rng,
		now:  clock,
	}

	half := size / 2
	for i := 0; i < count; i++ {
		p.agents = append(p.agents, &Agent{
			X:       rng.Range(-half, half),
			Y:       rng.Range(-half, half),
			Heading: rng.Range(-1000, 1000),
			Speed:   cfg.Speed,
		})
	}
	p.counts.Susceptible = count

	p.Infect(0)
	p.agents[0].X, p.agents[0].Y = 0, 0

	return p, nil
}

// Tick advances every agent by one step, in index order. Earlier-processed
// infected agents can flip later agents mid-pass, and those victims then
// take their own infectious turn within the same tick (see Agent.Tick).
func (p *Population) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	half := p.size / 2
	for _, a := range p.agents {
		for _, tr := range a.Tick(p.agents, half, p.cfg, p.rng, now) {
			p.apply(tr)
		}
	}
}

// Infect force-infects the agent at index i, routing the count update
// through the same single site as every other transition.
func (p *Population) Infect(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tr, ok := p.agents[i].Infect(p.now())
	if ok {
		p.apply(tr)
	}
}

// apply is the only place the count table changes.
func (p *Population) apply(tr Transition) {
	if tr.From == tr.To {
		return
	}
	p.counts.add(tr.From, -1)
	p.counts.add(tr.To, 1)
}

// RecordStats appends an independent copy of the current counts to the
// history. Meant to run on a coarse wall-clock cadence, not every tick.
func (p *Population) RecordStats() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = append(p.history, p.counts)
}

// Counts returns a copy of the current aggregate state table.
func (p *Population) Counts() Counts {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.counts
}

// History returns a copy of the sampled counts time series.
func (p *Population) History() []Counts {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Counts, len(p.history))
	copy(out, p.history)
	return out
}

// AgentViews returns a position/state snapshot of every agent, in index order.
func (p *Population) AgentViews() []AgentView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]AgentView, len(p.agents))
	for i, a := range p.agents {
		out[i] = AgentView{X: a.X, Y: a.Y, State: a.state}
	}
	return out
}

// Count returns the fixed number of agents.
func (p *Population) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.agents)
}

// Size returns the region side length.
func (p *Population) Size() float64 {
	return p.size
}

// Config returns the epidemiological tuning the population was built with.
func (p *Population) Config() Config {
	return p.cfg
}

// Eradicated reports whether the outbreak has ended (no infected agents
// remain). The simulation does not stop itself; callers decide what to do.
func (p *Population) Eradicated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.counts.Infected == 0
}
