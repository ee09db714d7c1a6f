// Package force implements the velocity contributions that shape an
// interest map.
//
// Each [Force] reads the current node positions and adds to node velocities;
// none of them move nodes directly. The simulation driver folds over a
// [Composer] once per tick, in registration order, and integrates velocity
// into position afterwards.
//
// Forces are independent and additive. Their relative influence is set by
// tuned strength constants rather than a shared energy function, so one rule
// can be adjusted or removed without touching the others:
//
//   - [Link] pulls parent and child toward a rest length (d3 semantics)
//   - [Collide] keeps nodes from overlapping (d3 semantics)
//   - [Radial] pulls nodes toward their target radius
//   - [Angular] nudges nodes back toward their assigned bearing
//   - [Sector] confines nodes to their branch's angular sector
//   - [Sibling] clusters nodes sharing a parent
//   - [Floating] adds slow pseudo-periodic drift
//   - [Repulsion] pushes crowded level-1 nodes apart
//
// Per-level strengths live in [Levels] tables. A level missing from a table
// is left alone by that force.
package force

import (
	"github.com/matzehuels/interestmap/pkg/core/layout"
	"github.com/matzehuels/interestmap/pkg/core/prng"
)

// Force contributes to node velocities for one tick.
type Force interface {
	Apply(ctx *Context, alpha float64)
}

// Func adapts a function to the Force interface.
type Func func(ctx *Context, alpha float64)

// Apply calls f.
func (f Func) Apply(ctx *Context, alpha float64) { f(ctx, alpha) }

// Context is the per-map state every force sees. It replaces captured
// closures: node slice, prebuilt index and the animation clock travel
// together and belong to exactly one simulation.
type Context struct {
	Nodes []layout.Node
	Index *layout.Index

	// Time is the animation clock read by Floating. The driver advances it
	// by ClockStep once per tick.
	Time float64

	// Jiggle breaks exact coincidences in Link and Collide. It is separate
	// from the layout stream so those draws never shift planning or redraw.
	Jiggle prng.Source
}

// ClockStep is how far the animation clock advances per tick.
const ClockStep = 0.008

// NewContext indexes nodes and returns a context over them.
func NewContext(nodes []layout.Node, jiggle prng.Source) *Context {
	if jiggle == nil {
		jiggle = prng.New(1)
	}
	return &Context{Nodes: nodes, Index: layout.NewIndex(nodes), Jiggle: jiggle}
}

// Reindex rebuilds the index after the node set changed.
func (c *Context) Reindex() { c.Index = layout.NewIndex(c.Nodes) }

func (c *Context) jiggle() float64 {
	return (c.Jiggle.Next() - 0.5) * 1e-6
}

// Levels maps a hierarchy level to a strength.
type Levels map[int]float64

func (l Levels) at(level int) (float64, bool) {
	s, ok := l[level]
	return s, ok
}
