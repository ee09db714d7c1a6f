package prng

import (
	"math"
	"testing"
)

func TestLCGFirstValues(t *testing.T) {
	g := New(0)

	// state1 = 49297, state2 = (49297*9301 + 49297) % 233280
	want1 := 49297.0 / 233280
	s2 := (49297*9301 + 49297) % 233280
	want2 := float64(s2) / 233280

	if got := g.Next(); got != want1 {
		t.Errorf("first Next() = %v, want %v", got, want1)
	}
	if got := g.Next(); got != want2 {
		t.Errorf("second Next() = %v, want %v", got, want2)
	}
}

func TestLCGDeterministic(t *testing.T) {
	a := New(1700000000000)
	b := New(1700000000000)

	for i := 0; i < 1000; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("step %d: %v != %v", i, x, y)
		}
	}
}

func TestLCGRange(t *testing.T) {
	g := New(12345)
	for i := 0; i < 10000; i++ {
		v := g.Next()
		if v < 0 || v >= 1 || math.IsNaN(v) {
			t.Fatalf("Next() = %v out of [0,1)", v)
		}
	}
}

func TestReseedReplays(t *testing.T) {
	g := New(99)
	first := []float64{g.Next(), g.Next(), g.Next()}

	g.Reseed(99)
	for i, want := range first {
		if got := g.Next(); got != want {
			t.Errorf("replay %d = %v, want %v", i, got, want)
		}
	}
	if g.Seed() != 99 {
		t.Errorf("Seed() = %d, want 99", g.Seed())
	}
}

func TestSeedReductionMatchesBigIntegers(t *testing.T) {
	// A timestamp-sized seed must behave like the unreduced recurrence.
	seed := uint64(1_734_000_000_123)
	g := New(seed)

	state := seed
	for i := 0; i < 5; i++ {
		state = (state*multiplier + increment) % modulus
		want := float64(state) / modulus
		if got := g.Next(); got != want {
			t.Fatalf("step %d = %v, want %v", i, got, want)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a, b := New(1), New(2)
	if a.Next() == b.Next() {
		t.Error("seeds 1 and 2 should not produce the same first value")
	}
}

func TestIntn(t *testing.T) {
	g := New(7)
	for i := 0; i < 1000; i++ {
		if v := Intn(g, 5); v < 0 || v >= 5 {
			t.Fatalf("Intn(5) = %d", v)
		}
	}
	if Intn(g, 0) != 0 {
		t.Error("Intn(0) should be 0")
	}
}

func TestCentered(t *testing.T) {
	g := New(3)
	for i := 0; i < 1000; i++ {
		if v := Centered(g, 0.3); v < -0.15 || v >= 0.15 {
			t.Fatalf("Centered(0.3) = %v", v)
		}
	}
}
