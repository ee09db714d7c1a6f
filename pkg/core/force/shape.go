package force

import (
	"math"

	"github.com/matzehuels/interestmap/pkg/core/layout"
)

// originEscape is the radius a node sitting on the origin is moved out to.
const originEscape = 10

// Radial pulls each node's distance from the origin toward its target
// radius, never below MinRadius.
type Radial struct {
	Strength  float64
	MinRadius float64
	Levels    Levels // per-level multiplier
}

// NewRadial returns the radial force with the standard level multipliers.
func NewRadial(strength, minRadius float64) *Radial {
	return &Radial{
		Strength:  strength,
		MinRadius: minRadius,
		Levels:    Levels{layout.LevelPrimary: 1.5, layout.LevelSecondary: 1},
	}
}

// Apply implements Force.
func (f *Radial) Apply(ctx *Context, alpha float64) {
	for i := range ctx.Nodes {
		n := &ctx.Nodes[i]
		mult, ok := f.Levels.at(n.Level)
		if !ok {
			continue
		}
		r := n.Radius()
		if r < 1 {
			n.X = math.Cos(n.Angle) * originEscape
			n.Y = math.Sin(n.Angle) * originEscape
			continue
		}
		target := math.Max(n.TargetRadius, f.MinRadius)
		k := (target - r) / r * f.Strength * alpha * mult
		n.VX += n.X * k
		n.VY += n.Y * k
	}
}

// Angular applies a tangential correction toward each node's assigned angle,
// proportional to the angular error and the node's radius.
type Angular struct {
	Levels Levels
}

// NewAngular returns the angular force with strengths 0.15 and 0.05.
func NewAngular() *Angular {
	return &Angular{Levels: Levels{layout.LevelPrimary: 0.15, layout.LevelSecondary: 0.05}}
}

// Apply implements Force.
func (f *Angular) Apply(ctx *Context, alpha float64) {
	for i := range ctx.Nodes {
		n := &ctx.Nodes[i]
		s, ok := f.Levels.at(n.Level)
		if !ok {
			continue
		}
		bearing := n.Bearing()
		diff := layout.NormalizeAngle(n.Angle - bearing)
		k := diff * n.Radius() * s * alpha
		n.VX += -math.Sin(bearing) * k
		n.VY += math.Cos(bearing) * k
	}
}

// Sector pushes nodes that left their branch's sector back toward the
// nearest boundary.
type Sector struct {
	Levels Levels
}

// NewSector returns the sector force with strengths 0.4 and 0.15.
func NewSector() *Sector {
	return &Sector{Levels: Levels{layout.LevelPrimary: 0.4, layout.LevelSecondary: 0.15}}
}

// Apply implements Force.
func (f *Sector) Apply(ctx *Context, alpha float64) {
	for i := range ctx.Nodes {
		n := &ctx.Nodes[i]
		s, ok := f.Levels.at(n.Level)
		if !ok {
			continue
		}
		r := n.Radius()
		if r < 1 {
			continue
		}
		bearing := n.Bearing()
		diff := layout.NormalizeAngle(bearing - n.Sector.Center)
		half := layout.NormalizeAngle(n.Sector.Max - n.Sector.Center)
		if math.Abs(diff) <= math.Abs(half) {
			continue
		}
		bound := n.Sector.Min
		if diff > 0 {
			bound = n.Sector.Max
		}
		push := layout.NormalizeAngle(bound - bearing)
		k := push * r * s * alpha
		n.VX += -math.Sin(bearing) * k
		n.VY += math.Cos(bearing) * k
	}
}
