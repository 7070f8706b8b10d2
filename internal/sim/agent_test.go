package sim

import (
	"testing"
	"time"
)

func TestInfectTransitionsOnlyFromSusceptible(t *testing.T) {
	now := time.Unix(100, 0)

	a := &Agent{}
	tr, ok := a.Infect(now)
	if !ok || tr.From != Susceptible || tr.To != Infected {
		t.Fatalf("first Infect: got (%v, %v), want (S→I, true)", tr, ok)
	}
	if a.State() != Infected {
		t.Fatalf("state after Infect = %v, want Infected", a.State())
	}

	// Already infected: no state change reported.
	tr, ok = a.Infect(now)
	if ok || tr.From != tr.To {
		t.Fatalf("re-Infect: got (%v, %v), want no-op", tr, ok)
	}

	// Removed agents never return to Infected.
	a.state = Removed
	_, ok = a.Infect(now)
	if ok || a.State() != Removed {
		t.Fatalf("Infect on Removed changed state to %v", a.State())
	}
}

func TestInfectAlwaysResetsTimer(t *testing.T) {
	t0 := time.Unix(100, 0)
	a := &Agent{}
	a.Infect(t0)

	// Re-infection is a state no-op but extends the infectious window.
	t1 := t0.Add(3 * time.Second)
	if _, ok := a.Infect(t1); ok {
		t.Fatal("re-Infect reported a state change")
	}
	if !a.infectedSince.Equal(t1) {
		t.Fatalf("infectedSince = %v, want %v", a.infectedSince, t1)
	}
}

func TestMoveClampsEachAxis(t *testing.T) {
	cases := []struct {
		name         string
		x, y, dx, dy float64
		wantX, wantY float64
	}{
		{"inside", 0, 0, 3, -2, 3, -2},
		{"clamp high x", 9, 0, 5, 0, 10, 0},
		{"clamp low y", 0, -9, 0, -5, 0, -10},
		{"clamp both", 9, 9, 100, 100, 10, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &Agent{X: tc.x, Y: tc.y}
			a.move(tc.dx, tc.dy, 10)
			if a.X != tc.wantX || a.Y != tc.wantY {
				t.Fatalf("got (%v, %v), want (%v, %v)", a.X, a.Y, tc.wantX, tc.wantY)
			}
		})
	}
}

func TestInRadiusIsStrict(t *testing.T) {
	a := &Agent{X: 0, Y: 0}
	b := &Agent{X: 80, Y: 0}
	if a.inRadius(b, 80) {
		t.Fatal("distance equal to radius should not count as in radius")
	}
	if !a.inRadius(b, 80.001) {
		t.Fatal("distance just under radius should count")
	}
}
