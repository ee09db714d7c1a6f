// Package layout turns an entity tree into the flat node and link set that
// the force simulation animates.
//
// Planning is a single seeded pass. Level-1 branches are ranked by how many
// descendants they carry and handed preferred slot angles by rank (densest at
// 0, next at π, and so on) so heavy branches end up apart. A global rotation,
// per-slot jitter and shuffles within rank bands keep repeated layouts from
// looking identical while preserving that coarse separation. Each branch
// owns a sector of ±0.45 slot steps around its angle; level-2 children fan
// out inside it and inherit the whole sector.
//
// Every random decision comes from one [prng.Source] consumed in a fixed
// order, so the same seed always yields the same plan.
package layout

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/interestmap/pkg/core/prng"
	"github.com/matzehuels/interestmap/pkg/core/tree"
)

// RootColor is the colour of the centre node.
const RootColor = "#3B82F6"

// DefaultLevelDistances are the target radii per level; index 0 is unused.
var DefaultLevelDistances = []float64{0, 160, 280, 380}

// DefaultColors is the fallback palette for level-1 branches.
var DefaultColors = []string{
	"#8B5CF6", // purple
	"#3B82F6", // blue
	"#10B981", // green
	"#F59E0B", // orange
	"#EC4899", // pink
	"#EF4444", // red
	"#06B6D4", // cyan
	"#84CC16", // lime
	"#F97316", // orange-red
	"#6366F1", // indigo
}

const (
	sectorFraction    = 0.45
	initialRadiusSpan = 50
	initialAngleSpan  = 0.3
	childAngleSpan    = 0.2
	childRadiusSpan   = 45
	childSpreadFactor = 1.8
)

// Options configures planning.
type Options struct {
	// LevelDistances holds the target radius per level. Index 1 and 2 are used.
	LevelDistances []float64

	// Colors is the fallback palette for branches without their own colour.
	Colors []string
}

func (o Options) distance(level int) float64 {
	d := o.LevelDistances
	if len(d) == 0 {
		d = DefaultLevelDistances
	}
	if level < len(d) {
		return d[level]
	}
	return d[len(d)-1]
}

func (o Options) color(i int) string {
	c := o.Colors
	if len(c) == 0 {
		c = DefaultColors
	}
	return c[i%len(c)]
}

// Plan assigns angles, sectors, target radii and starting positions to root
// and its descendants down to level 2.
func Plan(root tree.Entity, opts Options, rng prng.Source) Layout {
	children := root.Children
	n := len(children)

	type ranked struct {
		index       int
		descendants int
	}
	ranks := make([]ranked, n)
	for i, c := range children {
		ranks[i] = ranked{index: i, descendants: c.DescendantCount()}
	}
	slices.SortStableFunc(ranks, func(a, b ranked) int {
		return cmp.Compare(b.descendants, a.descendants)
	})

	slots, rotation := assignSlots(n, rng)
	angles := make([]float64, n)
	ranking := make([]string, n)
	for rank, r := range ranks {
		angles[r.index] = slots[rank]
		ranking[rank] = primaryID(r.index)
	}

	l := Layout{
		Nodes:    make([]Node, 0, root.Size()),
		Ranking:  ranking,
		Rotation: rotation,
	}
	l.Nodes = append(l.Nodes, Node{
		ID:    RootID,
		Name:  root.Name,
		Level: LevelRoot,
		Color: RootColor,
		Fixed: true,
	})

	halfWidth := 0.0
	if n > 0 {
		halfWidth = 2 * math.Pi / float64(n) * sectorFraction
	}

	for i, child := range children {
		color := child.Color
		if color == "" {
			color = opts.color(i)
		}
		base := angles[i]
		sector := Sector{Min: base - halfWidth, Max: base + halfWidth, Center: base}
		target := opts.distance(LevelPrimary)

		id := primaryID(i)
		r0 := target + prng.Centered(rng, initialRadiusSpan)
		a0 := base + prng.Centered(rng, initialAngleSpan)
		l.Nodes = append(l.Nodes, Node{
			ID:           id,
			Name:         child.Name,
			Level:        LevelPrimary,
			Color:        color,
			Parent:       RootID,
			Root:         id,
			X:            math.Cos(a0) * r0,
			Y:            math.Sin(a0) * r0,
			TargetRadius: target,
			Angle:        base,
			Sector:       sector,
		})
		l.Links = append(l.Links, Link{Source: RootID, Target: id, Color: color})

		l.planSecondary(i, child, sector, halfWidth, color, opts, rng)
	}
	return l
}

// planSecondary fans the children of branch i out around the branch angle.
func (l *Layout) planSecondary(i int, branch tree.Entity, sector Sector, halfWidth float64, color string, opts Options, rng prng.Source) {
	count := len(branch.Children)
	if count == 0 {
		return
	}
	spread := math.Min(halfWidth*childSpreadFactor, math.Pi/3*math.Max(1, float64(count)/2))
	step := 0.0
	if count > 1 {
		step = spread / float64(count-1)
	}
	start := sector.Center - spread/2
	order := permutation(count, rng)

	parentID := primaryID(i)
	for j, child := range branch.Children {
		l.Dropped += child.DescendantCount()

		base := sector.Center
		if count > 1 {
			base = start + step*float64(order[j])
		}
		angle := base + prng.Centered(rng, childAngleSpan)
		dist := opts.distance(LevelSecondary) + prng.Centered(rng, childRadiusSpan)

		c := child.Color
		if c == "" {
			c = color
		}
		id := secondaryID(i, j)
		l.Nodes = append(l.Nodes, Node{
			ID:           id,
			Name:         child.Name,
			Level:        LevelSecondary,
			Color:        c,
			Parent:       parentID,
			Root:         parentID,
			X:            math.Cos(angle) * dist,
			Y:            math.Sin(angle) * dist,
			TargetRadius: dist,
			Angle:        angle,
			Sector:       sector,
		})
		l.Links = append(l.Links, Link{Source: parentID, Target: id, Color: color})
	}
}

func primaryID(i int) string      { return fmt.Sprintf("l1_%d", i) }
func secondaryID(i, j int) string { return fmt.Sprintf("l2_%d_%d", i, j) }
