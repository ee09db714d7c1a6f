package layout

import "math"

// Levels of the hierarchy.
const (
	LevelRoot      = 0
	LevelPrimary   = 1
	LevelSecondary = 2
)

// RootID is the identifier of the centre node.
const RootID = "center"

// Sector is the angular range a branch may occupy. Min <= Center <= Max;
// bounds are not normalised, so Max may exceed π.
type Sector struct {
	Min    float64 `json:"min" bson:"min"`
	Max    float64 `json:"max" bson:"max"`
	Center float64 `json:"center" bson:"center"`
}

// HalfWidth returns the angular distance from the centre to either bound.
func (s Sector) HalfWidth() float64 { return s.Max - s.Center }

// Contains reports whether bearing lies within the sector, widened by eps.
func (s Sector) Contains(bearing, eps float64) bool {
	return math.Abs(NormalizeAngle(bearing-s.Center)) <= s.HalfWidth()+eps
}

// Node is the simulation-visible record of one placed entity.
//
// Position and velocity change every tick. Fixed, when set, overrides the
// simulated position; the root is fixed at the origin for its lifetime.
type Node struct {
	ID     string
	Name   string
	Level  int
	Color  string
	Parent string // empty for the root
	Root   string // level-1 ancestor; empty for the root

	X, Y   float64
	VX, VY float64

	Fixed  bool
	FX, FY float64

	TargetRadius float64
	Angle        float64
	Sector       Sector
}

// Radius returns the node's distance from the origin.
func (n *Node) Radius() float64 { return math.Hypot(n.X, n.Y) }

// Bearing returns the node's current angle from the origin in (-π, π].
func (n *Node) Bearing() float64 { return math.Atan2(n.Y, n.X) }

// Pin fixes the node at (x, y).
func (n *Node) Pin(x, y float64) {
	n.Fixed = true
	n.FX, n.FY = x, y
}

// Unpin releases a fixed node back to the simulation.
func (n *Node) Unpin() {
	n.Fixed = false
	n.FX, n.FY = 0, 0
}

// Link connects a parent to a child.
type Link struct {
	Source string
	Target string
	Color  string
}

// Layout is the flat node/link set produced by [Plan].
type Layout struct {
	Nodes []Node
	Links []Link

	// Ranking lists level-1 node ids ordered by descendant count, densest first.
	Ranking []string

	// Rotation is the global rotation offset applied to every slot.
	Rotation float64

	// Dropped counts entities below level 2 that were not placed.
	Dropped int
}

// NormalizeAngle maps a to the interval (-π, π].
func NormalizeAngle(a float64) float64 {
	if math.IsInf(a, 0) || math.IsNaN(a) {
		return math.NaN()
	}
	if math.Abs(a) > 4*math.Pi {
		a = math.Remainder(a, 2*math.Pi)
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
