package graph

import (
	"time"

	"github.com/matzehuels/interestmap/pkg/core/layout"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Input formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Export formats.
const (
	ExportJSON = "json"
	ExportDOT  = "dot"
	ExportSVG  = "svg"
)

// ExportFormats lists every supported export format.
var ExportFormats = []string{ExportJSON, ExportDOT, ExportSVG}

// Label anchors.
const (
	AnchorStart  = "start"
	AnchorMiddle = "middle"
	AnchorEnd    = "end"
)

// DefaultNodeRadius is the dot radius per level.
var DefaultNodeRadius = map[int]float64{1: 2.5, 2: 2, 3: 1.5}

// =============================================================================
// Snapshot - Frozen Map Frame
// =============================================================================

// Header carries the map-wide fields of a snapshot.
type Header struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	MapID     string    `json:"map_id,omitempty" bson:"map_id,omitempty"`
	Title     string    `json:"title" bson:"title"`
	Avatar    string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero" bson:"created_at,omitempty"`

	Seed  uint64  `json:"seed" bson:"seed"`
	Tick  int     `json:"tick" bson:"tick"`
	Alpha float64 `json:"alpha" bson:"alpha"`
	Phase string  `json:"phase,omitempty" bson:"phase,omitempty"`

	Width      float64 `json:"width" bson:"width"`
	Height     float64 `json:"height" bson:"height"`
	CenterX    float64 `json:"center_x" bson:"center_x"`
	CenterY    float64 `json:"center_y" bson:"center_y"`
	AvatarSize float64 `json:"avatar_size" bson:"avatar_size"`

	Rotation float64   `json:"rotation" bson:"rotation"`
	Dropped  int       `json:"dropped,omitempty" bson:"dropped,omitempty"`
	Rings    []float64 `json:"rings,omitempty" bson:"rings,omitempty"`
}

// Snapshot is the canonical serialization of one map frame.
type Snapshot struct {
	Header `bson:",inline"`

	Nodes []Node `json:"nodes" bson:"nodes"`
	Links []Link `json:"links" bson:"links"`
}

// Node is a positioned node.
type Node struct {
	ID     string  `json:"id" bson:"id"`
	Name   string  `json:"name" bson:"name"`
	Level  int     `json:"level" bson:"level"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Color  string  `json:"color" bson:"color"`
	Parent string  `json:"parent,omitempty" bson:"parent,omitempty"`
	Root   string  `json:"root,omitempty" bson:"root,omitempty"`
	Fixed  bool    `json:"fixed,omitempty" bson:"fixed,omitempty"`
	Radius float64 `json:"radius,omitempty" bson:"radius,omitempty"` // dot radius

	TargetRadius float64        `json:"target_radius" bson:"target_radius"`
	Angle        float64        `json:"angle" bson:"angle"`
	Sector       *layout.Sector `json:"sector,omitempty" bson:"sector,omitempty"`
	Label        *Label         `json:"label,omitempty" bson:"label,omitempty"`
}

// Link is a parent-child edge with resolved endpoints.
type Link struct {
	Source  string  `json:"source" bson:"source"`
	Target  string  `json:"target" bson:"target"`
	Color   string  `json:"color" bson:"color"`
	Opacity float64 `json:"opacity" bson:"opacity"`
	X1      float64 `json:"x1" bson:"x1"`
	Y1      float64 `json:"y1" bson:"y1"`
	X2      float64 `json:"x2" bson:"x2"`
	Y2      float64 `json:"y2" bson:"y2"`
}

// Label is where a node's name goes relative to its dot.
type Label struct {
	Anchor string   `json:"anchor" bson:"anchor"`
	X      float64  `json:"x" bson:"x"`
	Y      float64  `json:"y" bson:"y"`
	Lines  []string `json:"lines,omitempty" bson:"lines,omitempty"`
	Scale  float64  `json:"scale,omitempty" bson:"scale,omitempty"`
}

// Node returns the node with the given id.
func (s *Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Bounds returns the smallest box holding every node.
func (s *Snapshot) Bounds() (minX, minY, maxX, maxY float64) {
	for i, n := range s.Nodes {
		if i == 0 {
			minX, maxX, minY, maxY = n.X, n.X, n.Y, n.Y
			continue
		}
		minX, maxX = min(minX, n.X), max(maxX, n.X)
		minY, maxY = min(minY, n.Y), max(maxY, n.Y)
	}
	return minX, minY, maxX, maxY
}

// =============================================================================
// Build - Simulation State to Snapshot
// =============================================================================

// Style controls presentational fields computed at build time.
type Style struct {
	NodeRadius map[int]float64
	LabelScale float64
}

// Build freezes nodes and links into a snapshot with header h.
func Build(h Header, style Style, nodes []layout.Node, links []layout.Link) Snapshot {
	radius := style.NodeRadius
	if len(radius) == 0 {
		radius = DefaultNodeRadius
	}
	h.CenterX, h.CenterY = h.Width/2, h.Height/2

	snap := Snapshot{
		Header: h,
		Nodes:  make([]Node, 0, len(nodes)),
		Links:  make([]Link, 0, len(links)),
	}
	pos := make(map[string]int, len(nodes))
	for i, n := range nodes {
		pos[n.ID] = i
		out := Node{
			ID:           n.ID,
			Name:         n.Name,
			Level:        n.Level,
			X:            n.X,
			Y:            n.Y,
			Color:        n.Color,
			Parent:       n.Parent,
			Root:         n.Root,
			Fixed:        n.Fixed,
			Radius:       radius[n.Level],
			TargetRadius: n.TargetRadius,
			Angle:        n.Angle,
		}
		if n.Level > layout.LevelRoot {
			sector := n.Sector
			label := PlaceLabel(n.X, n.Y, n.Name, style.LabelScale)
			out.Sector = &sector
			out.Label = &label
		}
		snap.Nodes = append(snap.Nodes, out)
	}
	for _, l := range links {
		si, sok := pos[l.Source]
		ti, tok := pos[l.Target]
		if !sok || !tok {
			continue
		}
		s, t := nodes[si], nodes[ti]
		snap.Links = append(snap.Links, Link{
			Source:  l.Source,
			Target:  l.Target,
			Color:   l.Color,
			Opacity: linkOpacity(t.Level),
			X1:      s.X,
			Y1:      s.Y,
			X2:      t.X,
			Y2:      t.Y,
		})
	}
	return snap
}

func linkOpacity(targetLevel int) float64 {
	switch targetLevel {
	case layout.LevelPrimary:
		return 0.7
	case layout.LevelSecondary:
		return 0.5
	default:
		return 0.4
	}
}
