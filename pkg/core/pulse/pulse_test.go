package pulse

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestRingRadii(t *testing.T) {
	got := RingRadii([]float64{0, 160, 280, 380}, 5)
	want := []float64{100, 200, 300, 400, 500}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RingRadii mismatch (-want +got):\n%s", diff)
	}
	if RingRadii(nil, 0) != nil {
		t.Error("RingRadii with no rings should be nil")
	}
	if got := RingRadii(nil, 2); got[1] != 120 {
		t.Errorf("RingRadii without distances = %v", got)
	}
}

func TestBuild(t *testing.T) {
	cfg := Config{Rings: []float64{300, 100, 200}}
	p := cfg.Build(3, time.Unix(0, 0))

	wantRings := []Ring{
		{Index: 0, Radius: 100, Delay: 0},
		{Index: 1, Radius: 200, Delay: 100 * time.Millisecond},
		{Index: 2, Radius: 300, Delay: 200 * time.Millisecond},
	}
	if diff := cmp.Diff(wantRings, p.Rings); diff != "" {
		t.Errorf("rings mismatch (-want +got):\n%s", diff)
	}
	wantLevels := []Level{
		{Level: 1, Delay: 0},
		{Level: 2, Delay: 100 * time.Millisecond},
		{Level: 3, Delay: 200 * time.Millisecond},
	}
	if diff := cmp.Diff(wantLevels, p.Levels); diff != "" {
		t.Errorf("levels mismatch (-want +got):\n%s", diff)
	}
	if p.Seq != 3 {
		t.Errorf("seq = %d", p.Seq)
	}
	if cfg.Rings[0] != 300 {
		t.Error("Build sorted the caller's slice")
	}
}

func TestSchedulerFiresAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	var seqs []int
	fired := make(chan struct{}, 16)
	s := New(Config{FirstDelay: 5 * time.Millisecond, Interval: 20 * time.Millisecond}, func(p Pulse) {
		mu.Lock()
		seqs = append(seqs, p.Seq)
		mu.Unlock()
		fired <- struct{}{}
	})
	s.Start()
	s.Start()

	for range 2 {
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatal("pulse did not fire")
		}
	}
	s.Stop()
	s.Stop()

	if s.Running() {
		t.Error("scheduler still running after Stop")
	}
	mu.Lock()
	defer mu.Unlock()
	if seqs[0] != 0 || seqs[1] != 1 {
		t.Errorf("seqs = %v, want 0, 1, ...", seqs)
	}
}

func TestStopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)
	New(Config{}, nil).Stop()
}
