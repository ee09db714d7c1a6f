package force

import "math"

// Link is a spring between each parent and child, following d3's link
// force: the rest length is 0.6 of the gap between the two target radii and
// the correction is split by node degree, so hubs move less than leaves.
type Link struct {
	Strength   float64
	Distance   float64 // rest length as a fraction of the target radius gap
	Iterations int
}

// NewLink returns the link force at strength 0.5.
func NewLink() *Link { return &Link{Strength: 0.5, Distance: 0.6, Iterations: 1} }

// Apply implements Force.
func (f *Link) Apply(ctx *Context, alpha float64) {
	idx := ctx.Index
	for range max(f.Iterations, 1) {
		for t := range ctx.Nodes {
			s := idx.Parent(t)
			if s < 0 {
				continue
			}
			src, dst := &ctx.Nodes[s], &ctx.Nodes[t]
			ds, dt := float64(idx.Degree(s)), float64(idx.Degree(t))
			bias := ds / (ds + dt)
			rest := math.Abs(dst.TargetRadius-src.TargetRadius) * f.Distance

			x := dst.X + dst.VX - src.X - src.VX
			if x == 0 {
				x = ctx.jiggle()
			}
			y := dst.Y + dst.VY - src.Y - src.VY
			if y == 0 {
				y = ctx.jiggle()
			}
			l := math.Hypot(x, y)
			l = (l - rest) / l * alpha * f.Strength
			x *= l
			y *= l
			dst.VX -= x * bias
			dst.VY -= y * bias
			src.VX += x * (1 - bias)
			src.VY += y * (1 - bias)
		}
	}
}
