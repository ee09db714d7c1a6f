package force

import (
	"math"

	"github.com/matzehuels/interestmap/pkg/core/layout"
)

// Sibling pulls nodes sharing a parent toward their common centroid. For
// parents below the root the centroid is blended halfway toward a point
// beyond the parent, along its bearing, so the cluster stays outside it.
type Sibling struct {
	Strength float64
	Reach    float64 // blend point radius as a multiple of the parent's radius
}

// NewSibling returns the sibling force with strength 0.12.
func NewSibling() *Sibling { return &Sibling{Strength: 0.12, Reach: 1.8} }

// Apply implements Force.
func (f *Sibling) Apply(ctx *Context, alpha float64) {
	idx := ctx.Index
	for p := range ctx.Nodes {
		group := idx.Children(p)
		if len(group) < 2 {
			continue
		}
		var cx, cy float64
		for _, i := range group {
			cx += ctx.Nodes[i].X
			cy += ctx.Nodes[i].Y
		}
		cx /= float64(len(group))
		cy /= float64(len(group))

		if parent := &ctx.Nodes[p]; parent.Level > layout.LevelRoot {
			b, r := parent.Bearing(), parent.Radius()*f.Reach
			cx = cx*0.5 + math.Cos(b)*r*0.5
			cy = cy*0.5 + math.Sin(b)*r*0.5
		}

		s := f.Strength * alpha
		for _, i := range group {
			n := &ctx.Nodes[i]
			n.VX += (cx - n.X) * s
			n.VY += (cy - n.Y) * s
		}
	}
}

// Floating adds a slow pseudo-periodic drift to every non-root node. The
// phase depends on the node's position in the slice, the time on the
// context clock.
type Floating struct {
	Strength float64 // multiplied by alpha
	Phase    float64 // phase offset per node index
}

// NewFloating returns the floating force at strength 2.
func NewFloating() *Floating { return &Floating{Strength: 2, Phase: 0.7} }

// Apply implements Force.
func (f *Floating) Apply(ctx *Context, alpha float64) {
	t := ctx.Time
	s := f.Strength * alpha
	for i := range ctx.Nodes {
		n := &ctx.Nodes[i]
		if n.Level == layout.LevelRoot {
			continue
		}
		p := float64(i) * f.Phase
		nx := math.Sin(t+p) * math.Cos(t*0.5+p*1.3)
		ny := math.Cos(t*0.6+p) * math.Sin(t*0.4+p*0.9)
		n.VX += nx * s
		n.VY += ny * s
	}
}

// Repulsion pushes apart level-1 nodes closer than MinDistance. Each pair
// receives equal and opposite adjustments.
type Repulsion struct {
	MinDistance float64
	Strength    float64
}

// NewRepulsion returns the level-1 repulsion with a 120 unit separation.
func NewRepulsion() *Repulsion { return &Repulsion{MinDistance: 120, Strength: 0.8} }

// Apply implements Force.
func (f *Repulsion) Apply(ctx *Context, alpha float64) {
	primary := ctx.Index.Primary()
	for x := 0; x < len(primary); x++ {
		a := &ctx.Nodes[primary[x]]
		for y := x + 1; y < len(primary); y++ {
			b := &ctx.Nodes[primary[y]]
			dx, dy := b.X-a.X, b.Y-a.Y
			d := math.Hypot(dx, dy)
			if d <= 0 || d >= f.MinDistance {
				continue
			}
			k := (f.MinDistance - d) / d * alpha * f.Strength
			fx, fy := dx*k, dy*k
			a.VX -= fx
			a.VY -= fy
			b.VX += fx
			b.VY += fy
		}
	}
}
