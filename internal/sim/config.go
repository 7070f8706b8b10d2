// Package sim implements the SIR (Susceptible-Infected-Removed) agent
// simulation core. Agents wander a bounded square, infected agents transmit
// to nearby susceptible ones probabilistically, and recover after a fixed
// duration. The package is headless: rendering layers observe it through
// read-only queries and never drive anything but Tick and RecordStats.
package sim

import (
	"fmt"
	"time"
)

// Config holds the epidemiological tuning knobs. They are fixed for the
// lifetime of a Population — there is no runtime reconfiguration.
type Config struct {
	Speed             float64       // Step length per tick
	InfectionRadius   float64       // Max transmission distance
	InfectionChance   float64       // Per-tick, per-pair transmission probability
	InfectionDuration time.Duration // Time an agent stays infected before removal
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		Speed:             4.0,
		InfectionRadius:   80.0,
		InfectionChance:   0.01,
		InfectionDuration: 5 * time.Second,
	}
}

// Validate rejects degenerate tunings up front rather than letting them
// produce undefined simulation behavior.
func (c Config) Validate() error {
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %v", c.Speed)
	}
	if c.InfectionRadius < 0 {
		return fmt.Errorf("infection radius must be non-negative, got %v", c.InfectionRadius)
	}
	if c.InfectionChance < 0 || c.InfectionChance > 1 {
		return fmt.Errorf("infection chance must be in [0, 1], got %v", c.InfectionChance)
	}
	if c.InfectionDuration <= 0 {
		return fmt.Errorf("infection duration must be positive, got %v", c.InfectionDuration)
	}
	return nil
}
