// Package nodelink exports interest map snapshots as Graphviz diagrams.
//
// # Overview
//
// The simulation decides every position, so the exported DOT pins each node
// with pos="x,y!" and renders with the neato engine, which keeps pinned
// nodes where they are instead of laying the graph out again. Screen y grows
// downward while Graphviz y grows upward; [ToDOT] flips the axis.
//
// # Usage
//
//	dot := nodelink.ToDOT(snap, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Rings: draw the orbital rings listed in the snapshot as dashed circles
//   - Labels: show entity names next to their dots
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
