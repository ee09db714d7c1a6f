package force

import "math"

// Collide keeps nodes at least 2*Radius apart, following d3's collision
// force: positions are anticipated one velocity step ahead and overlapping
// pairs are pushed apart in proportion to the overlap. Maps hold tens of
// nodes, so pairs are checked directly instead of through a quadtree.
type Collide struct {
	Radius     float64
	Strength   float64
	Iterations int
}

// NewCollide returns the collision force at strength 0.5 with two passes.
func NewCollide(radius float64) *Collide {
	return &Collide{Radius: radius, Strength: 0.5, Iterations: 2}
}

// Apply implements Force.
func (f *Collide) Apply(ctx *Context, _ float64) {
	nodes := ctx.Nodes
	ri, rj := f.Radius, f.Radius
	r := ri + rj
	share := rj * rj / (ri*ri + rj*rj)

	for range max(f.Iterations, 1) {
		for i := range nodes {
			a := &nodes[i]
			xi, yi := a.X+a.VX, a.Y+a.VY
			for j := i + 1; j < len(nodes); j++ {
				b := &nodes[j]
				x := xi - (b.X + b.VX)
				y := yi - (b.Y + b.VY)
				l := x*x + y*y
				if l >= r*r {
					continue
				}
				if x == 0 {
					x = ctx.jiggle()
					l += x * x
				}
				if y == 0 {
					y = ctx.jiggle()
					l += y * y
				}
				d := math.Sqrt(l)
				k := (r - d) / d * f.Strength
				x *= k
				y *= k
				a.VX += x * share
				a.VY += y * share
				b.VX -= x * (1 - share)
				b.VY -= y * (1 - share)
			}
		}
	}
}
