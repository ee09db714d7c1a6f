// Package sim is the iterative integrator that drives an interest map.
//
// It follows d3-force's schedule: every tick moves alpha a fraction of the
// way toward alphaTarget, advances the animation clock, runs the composed
// forces, then damps velocities and integrates them into positions. Pinned
// nodes are held at their pin. The simulation stops only once alpha falls
// below alphaMin, which with the default target equal to the floor never
// happens: a settled map keeps drifting slowly.
//
// Three phases are tracked:
//
//	settling   alpha decays toward its floor
//	dragging   one node is pinned to a pointer, alpha is raised
//	redrawing  positions were re-randomised and alpha reset to 1
//
// A Simulation is not safe for concurrent use. The map facade serialises
// access behind one mutex.
package sim

import (
	"math"

	"github.com/matzehuels/interestmap/pkg/core/force"
	"github.com/matzehuels/interestmap/pkg/core/layout"
	"github.com/matzehuels/interestmap/pkg/core/prng"
	"github.com/matzehuels/interestmap/pkg/errors"
)

// Phase is the current interaction phase.
type Phase string

// Phases of a simulation.
const (
	PhaseSettling  Phase = "settling"
	PhaseDragging  Phase = "dragging"
	PhaseRedrawing Phase = "redrawing"
)

// Params controls the alpha schedule and damping.
type Params struct {
	Alpha         float64 // initial alpha
	AlphaMin      float64 // stop threshold
	AlphaTarget   float64 // resting target
	AlphaDecay    float64 // fraction of the gap to the target closed per tick
	VelocityDecay float64 // fraction of velocity removed per tick

	DragAlphaTarget    float64 // target while a node is held
	ReleaseAlphaTarget float64 // target after a drag ends
	RedrawAlpha        float64 // alpha after a redraw
}

// DefaultParams returns the schedule an interest map runs with.
func DefaultParams() Params {
	return Params{
		Alpha:              0.3,
		AlphaMin:           0.008,
		AlphaTarget:        0.008,
		AlphaDecay:         0.005,
		VelocityDecay:      0.7,
		DragAlphaTarget:    0.3,
		ReleaseAlphaTarget: 0.02,
		RedrawAlpha:        1,
	}
}

// SetDefaults fills zero fields from DefaultParams.
func (p *Params) SetDefaults() {
	d := DefaultParams()
	fill := func(v *float64, def float64) {
		if *v == 0 || math.IsNaN(*v) || math.IsInf(*v, 0) {
			*v = def
		}
	}
	fill(&p.Alpha, d.Alpha)
	fill(&p.AlphaMin, d.AlphaMin)
	fill(&p.AlphaTarget, d.AlphaTarget)
	fill(&p.AlphaDecay, d.AlphaDecay)
	fill(&p.VelocityDecay, d.VelocityDecay)
	fill(&p.DragAlphaTarget, d.DragAlphaTarget)
	fill(&p.ReleaseAlphaTarget, d.ReleaseAlphaTarget)
	fill(&p.RedrawAlpha, d.RedrawAlpha)
}

// Redraw variation spans.
const (
	redrawAngleSpan    = 0.3
	redrawRadiusSpan   = 30
	redrawVelocitySpan = 2
)

// Simulation owns a node set and advances it tick by tick.
type Simulation struct {
	params Params
	ctx    *force.Context
	forces *force.Composer

	alpha       float64
	alphaTarget float64
	running     bool
	ticks       int
	phase       Phase
	grabbed     int
}

// New returns a running simulation over a copy of nodes. Root nodes are
// pinned at the origin.
func New(nodes []layout.Node, forces *force.Composer, p Params, jiggle prng.Source) *Simulation {
	p.SetDefaults()
	own := make([]layout.Node, len(nodes))
	copy(own, nodes)
	for i := range own {
		if own[i].Level == layout.LevelRoot {
			own[i].Pin(0, 0)
			own[i].X, own[i].Y = 0, 0
		}
	}
	if forces == nil {
		forces = force.NewComposer()
	}
	return &Simulation{
		params:      p,
		ctx:         force.NewContext(own, jiggle),
		forces:      forces,
		alpha:       p.Alpha,
		alphaTarget: p.AlphaTarget,
		running:     true,
		phase:       PhaseSettling,
		grabbed:     -1,
	}
}

// Tick advances one step if the simulation is running and reports whether
// it did.
func (s *Simulation) Tick() bool {
	if !s.running {
		return false
	}
	s.step()
	if s.alpha < s.params.AlphaMin {
		s.running = false
	}
	return true
}

// TickN advances up to n steps and returns how many ran.
func (s *Simulation) TickN(n int) int {
	done := 0
	for done < n && s.Tick() {
		done++
	}
	return done
}

func (s *Simulation) step() {
	s.alpha += (s.alphaTarget - s.alpha) * s.params.AlphaDecay
	s.ctx.Time += force.ClockStep
	s.forces.Apply(s.ctx, s.alpha)

	keep := 1 - s.params.VelocityDecay
	for i := range s.ctx.Nodes {
		n := &s.ctx.Nodes[i]
		if n.Fixed {
			n.X, n.VX = n.FX, 0
			n.Y, n.VY = n.FY, 0
			continue
		}
		n.VX *= keep
		n.VY *= keep
		n.X += n.VX
		n.Y += n.VY
	}
	s.ticks++

	if s.phase == PhaseRedrawing && s.alpha <= s.params.Alpha {
		s.phase = PhaseSettling
	}
}

// Restart resumes ticking.
func (s *Simulation) Restart() { s.running = true }

// Stop halts ticking until Restart.
func (s *Simulation) Stop() { s.running = false }

// Running reports whether Tick will advance.
func (s *Simulation) Running() bool { return s.running }

// Alpha returns the current alpha.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha sets alpha directly.
func (s *Simulation) SetAlpha(a float64) { s.alpha = a }

// AlphaTarget returns the value alpha decays toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// SetAlphaTarget changes the value alpha decays toward.
func (s *Simulation) SetAlphaTarget(a float64) { s.alphaTarget = a }

// Ticks returns the number of steps taken.
func (s *Simulation) Ticks() int { return s.ticks }

// Time returns the animation clock.
func (s *Simulation) Time() float64 { return s.ctx.Time }

// Phase returns the current phase.
func (s *Simulation) Phase() Phase { return s.phase }

// Params returns the schedule in use.
func (s *Simulation) Params() Params { return s.params }

// Nodes returns a copy of the node set.
func (s *Simulation) Nodes() []layout.Node {
	out := make([]layout.Node, len(s.ctx.Nodes))
	copy(out, s.ctx.Nodes)
	return out
}

// Node returns a copy of the node with the given id.
func (s *Simulation) Node(id string) (layout.Node, bool) {
	i, ok := s.ctx.Index.Lookup(id)
	if !ok {
		return layout.Node{}, false
	}
	return s.ctx.Nodes[i], true
}

// Index returns the lookup index over the node set.
func (s *Simulation) Index() *layout.Index { return s.ctx.Index }

// Grabbed returns the id of the node being dragged, if any.
func (s *Simulation) Grabbed() (string, bool) {
	if s.grabbed < 0 {
		return "", false
	}
	return s.ctx.Nodes[s.grabbed].ID, true
}

// Grab pins the node at its current position and raises the alpha target
// so the rest of the map responds. A node already held is released first.
func (s *Simulation) Grab(id string) error {
	i, ok := s.ctx.Index.Lookup(id)
	if !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	n := &s.ctx.Nodes[i]
	if n.Level == layout.LevelRoot {
		return errors.New(errors.ErrCodeNodePinned, "node %q is pinned at the centre", id)
	}
	if s.grabbed >= 0 && s.grabbed != i {
		s.release()
	}
	s.grabbed = i
	n.Pin(n.X, n.Y)
	s.alphaTarget = s.params.DragAlphaTarget
	s.phase = PhaseDragging
	s.Restart()
	return nil
}

// Move updates the pin of the held node.
func (s *Simulation) Move(id string, x, y float64) error {
	if s.grabbed < 0 || s.ctx.Nodes[s.grabbed].ID != id {
		return errors.New(errors.ErrCodeNodeNotFound, "node %q is not being dragged", id)
	}
	s.ctx.Nodes[s.grabbed].Pin(x, y)
	return nil
}

// Release unpins the held node and lowers the alpha target. Releasing a
// node that is not held is a no-op.
func (s *Simulation) Release(id string) {
	if s.grabbed < 0 || s.ctx.Nodes[s.grabbed].ID != id {
		return
	}
	s.release()
}

// ReleaseAll releases whichever node is held.
func (s *Simulation) ReleaseAll() {
	if s.grabbed >= 0 {
		s.release()
	}
}

func (s *Simulation) release() {
	s.ctx.Nodes[s.grabbed].Unpin()
	s.grabbed = -1
	s.alphaTarget = s.params.ReleaseAlphaTarget
	s.phase = PhaseSettling
}

// Redraw scatters every non-root node around its assigned angle and target
// radius with fresh velocities drawn from rng, then reheats the simulation.
// Per node it draws angle, radius, vx and vy, in that order.
func (s *Simulation) Redraw(rng prng.Source) {
	s.ReleaseAll()
	for i := range s.ctx.Nodes {
		n := &s.ctx.Nodes[i]
		if n.Level == layout.LevelRoot {
			continue
		}
		angle := n.Angle + prng.Centered(rng, redrawAngleSpan)
		radius := n.TargetRadius + prng.Centered(rng, redrawRadiusSpan)
		n.X = math.Cos(angle) * radius
		n.Y = math.Sin(angle) * radius
		n.VX = prng.Centered(rng, redrawVelocitySpan)
		n.VY = prng.Centered(rng, redrawVelocitySpan)
	}
	s.alpha = s.params.RedrawAlpha
	s.phase = PhaseRedrawing
	s.Restart()
}
