// Package pulse schedules the cosmetic highlight that sweeps across an
// interest map's orbital rings and node levels.
//
// The scheduler owns its own goroutine and cancellation. A pulse fires once
// after FirstDelay and then every Interval until Stop. Each [Pulse] lists
// per-ring and per-level delays so a renderer can stagger the highlight
// outward; the scheduler does no drawing itself.
package pulse

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Defaults for a map's pulse.
const (
	DefaultFirstDelay = time.Second
	DefaultInterval   = 5 * time.Second
	DefaultStagger    = 100 * time.Millisecond
	DefaultRingCount  = 5

	// ringMargin is added beyond the outermost level distance.
	ringMargin = 120
)

// Levels lists the node levels that pulse, innermost first.
var Levels = []int{1, 2, 3}

// RingRadii returns count evenly spaced ring radii reaching ringMargin
// beyond the largest level distance, smallest first.
func RingRadii(levelDistances []float64, count int) []float64 {
	if count <= 0 {
		return nil
	}
	maxDist := 0.0
	if len(levelDistances) > 0 {
		maxDist = slices.Max(levelDistances)
	}
	spacing := (maxDist + ringMargin) / float64(count)
	out := make([]float64, count)
	for i := range out {
		out[i] = spacing * float64(i+1)
	}
	return out
}

// Ring is one ring's part of a pulse.
type Ring struct {
	Index  int           `json:"index" bson:"index"`
	Radius float64       `json:"radius" bson:"radius"`
	Delay  time.Duration `json:"delay" bson:"delay"`
}

// Level is one node level's part of a pulse.
type Level struct {
	Level int           `json:"level" bson:"level"`
	Delay time.Duration `json:"delay" bson:"delay"`
}

// Pulse describes one sweep.
type Pulse struct {
	Seq    int       `json:"seq" bson:"seq"`
	At     time.Time `json:"at" bson:"at"`
	Rings  []Ring    `json:"rings" bson:"rings"`
	Levels []Level   `json:"levels" bson:"levels"`
}

// Config configures a Scheduler. Zero fields take defaults.
type Config struct {
	FirstDelay time.Duration
	Interval   time.Duration
	Stagger    time.Duration
	Rings      []float64
}

func (c *Config) setDefaults() {
	if c.FirstDelay <= 0 {
		c.FirstDelay = DefaultFirstDelay
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Stagger <= 0 {
		c.Stagger = DefaultStagger
	}
}

// Build returns the pulse with sequence number seq at time at.
func (c Config) Build(seq int, at time.Time) Pulse {
	c.setDefaults()
	rings := slices.Clone(c.Rings)
	slices.Sort(rings)
	p := Pulse{Seq: seq, At: at}
	for i, r := range rings {
		p.Rings = append(p.Rings, Ring{Index: i, Radius: r, Delay: time.Duration(i) * c.Stagger})
	}
	for i, l := range Levels {
		p.Levels = append(p.Levels, Level{Level: l, Delay: time.Duration(i) * c.Stagger})
	}
	return p
}

// Scheduler fires pulses on its own goroutine.
type Scheduler struct {
	cfg Config
	fn  func(Pulse)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a scheduler that calls fn for every pulse. It does not start.
func New(cfg Config, fn func(Pulse)) *Scheduler {
	cfg.setDefaults()
	return &Scheduler{cfg: cfg, fn: fn}
}

// Start begins firing pulses. Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	// The interval runs from Start, not from the first pulse.
	first := time.NewTimer(s.cfg.FirstDelay)
	defer first.Stop()
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	firstC := first.C
	seq := 0
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-firstC:
			firstC = nil
			s.fire(seq, now)
			seq++
		case now := <-ticker.C:
			s.fire(seq, now)
			seq++
		}
	}
}

func (s *Scheduler) fire(seq int, at time.Time) {
	if s.fn != nil {
		s.fn(s.cfg.Build(seq, at))
	}
}

// Stop cancels future pulses and waits for the goroutine to exit. It is
// safe to call more than once, and on a scheduler that never started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the scheduler has been started and not stopped.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}
