// Package graph provides the serialization types for interest maps.
//
// This package defines the canonical wire format for interestmap data, used
// for JSON files, API responses, caching, the snapshot store and exports.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Snapshot], [Node], [Link]: Serialization types (this package)
//   - pkg/core/tree.Entity: Input hierarchy
//   - pkg/core/layout.Node: Internal simulation state
//
// Use [ReadTree] to decode input and [Build] to freeze simulation state into
// a [Snapshot].
//
// # Input Trees
//
// Trees are accepted as JSON, YAML or TOML, chosen by file extension:
//
//	{
//	  "name": "Me",
//	  "children": [
//	    {"name": "Music", "children": [{"name": "Jazz"}]},
//	    {"name": "Climbing", "color": "#10B981"}
//	  ]
//	}
//
// A "children" value that is not a list reads as no children. Colours that
// are not hex codes or CSS keywords are dropped so the branch falls back to
// the palette.
//
// # Snapshots
//
// A snapshot is a frozen frame of a map: header (seed, tick, alpha, phase,
// canvas), every node with its position, sector and label placement, every
// link with resolved endpoint coordinates, and the orbital ring radii.
//
//	snap, _ := graph.ReadSnapshotFile("map.json")
//	n, _ := snap.Node("l1_0")
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
