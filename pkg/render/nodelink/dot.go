package nodelink

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/interestmap/pkg/core/layout"
	"github.com/matzehuels/interestmap/pkg/graph"
)

// Options configures diagram generation.
type Options struct {
	// Rings draws the snapshot's orbital rings.
	Rings bool

	// Labels shows entity names beside level 1 and 2 nodes.
	Labels bool
}

// pointsPerInch converts map units to Graphviz inches for sizes.
const pointsPerInch = 72.0

// rootRadius is the drawn radius of the centre node when the snapshot does
// not carry an avatar size.
const rootRadius = 28.0

// ToDOT converts a snapshot to Graphviz DOT with every node pinned at its
// simulated position.
func ToDOT(s graph.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, label=\"\", penwidth=0, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [penwidth=1];\n")
	buf.WriteString("\n")

	if opts.Rings {
		for i, r := range s.Rings {
			fmt.Fprintf(&buf, "  %q [pos=\"0,0!\", width=%s, style=dashed, penwidth=0.5, color=\"#94A3B855\", fillcolor=none];\n",
				fmt.Sprintf("ring_%d", i), inches(2*r))
		}
		if len(s.Rings) > 0 {
			buf.WriteString("\n")
		}
	}

	for _, n := range s.Nodes {
		attrs := fmtAttrs(n, s.AvatarSize, opts.Labels)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range s.Links {
		fmt.Fprintf(&buf, "  %q -- %q [color=%q];\n", l.Source, l.Target, withAlpha(l.Color, l.Opacity))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n graph.Node, avatarSize float64, labels bool) []string {
	attrs := []string{
		fmt.Sprintf("pos=\"%s,%s!\"", coord(n.X), coord(-n.Y)),
		fmt.Sprintf("fillcolor=%q", n.Color),
		fmt.Sprintf("tooltip=%q", n.Name),
	}
	radius := n.Radius
	if n.Level == layout.LevelRoot {
		radius = rootRadius
		if avatarSize > 0 {
			radius = avatarSize / 2
		}
		attrs = append(attrs, fmt.Sprintf("label=%q", n.Name), "fontcolor=white")
	} else if labels && n.Label != nil {
		attrs = append(attrs, fmt.Sprintf("xlabel=%q", strings.Join(labelLines(n), "\n")))
	}
	if radius <= 0 {
		radius = graph.DefaultNodeRadius[layout.LevelSecondary]
	}
	attrs = append(attrs, "width="+inches(2*radius))
	return attrs
}

func labelLines(n graph.Node) []string {
	if len(n.Label.Lines) > 0 {
		return n.Label.Lines
	}
	return []string{n.Name}
}

func coord(v float64) string { return fmt.Sprintf("%.2f", v) }

func inches(v float64) string { return fmt.Sprintf("%.4f", v/pointsPerInch) }

// withAlpha appends opacity to a #rrggbb colour. Other colours pass through.
func withAlpha(color string, opacity float64) string {
	if len(color) != 7 || color[0] != '#' || opacity <= 0 || opacity >= 1 {
		return color
	}
	return fmt.Sprintf("%s%02x", color, int(math.Round(opacity*255)))
}
