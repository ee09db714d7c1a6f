// Package pkg provides the core libraries for interestmap.
//
// # Overview
//
// Interestmap turns a tree of personal interests into a radial map: an
// avatar in the centre, interest groups on the first ring and their topics
// further out, kept apart by a small force simulation. The pkg directory is
// organized into these areas:
//
//  1. [core] - Domain logic (tree model, planning, forces, simulation, pulses)
//  2. [interestmap] - The live map: tick loop, drags, redraws and snapshots
//  3. [pipeline] - Headless orchestration (settle → render) with caching
//  4. [graph] - Tree readers and the snapshot wire format
//  5. [cache], [store] - Infrastructure for cached layouts and saved snapshots
//  6. [server] - The HTTP API over live maps and the pipeline
//
// # Architecture
//
// The typical data flow:
//
//	tree.json / tree.yaml / tree.toml
//	         ↓
//	    [graph] package (read and sanitise the tree)
//	         ↓
//	    [core/layout] package (angles, radii, colours)
//	         ↓
//	    [core/sim] package (ticks with [core/force] forces)
//	         ↓
//	    [graph.Snapshot] (frozen frame)
//	         ↓
//	    JSON / DOT / SVG output
//
// # Quick Start
//
// Settle a tree headlessly:
//
//	root, _ := graph.ReadTreeFile("me.yaml")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, root, pipeline.Options{Formats: []string{"svg"}})
//
// Drive a live map:
//
//	m, _ := interestmap.New(root, interestmap.Options{})
//	defer m.Destroy()
//	unsubscribe := m.Subscribe(func(s graph.Snapshot) { draw(s) })
//	defer unsubscribe()
//
// [core]: https://pkg.go.dev/github.com/matzehuels/interestmap/pkg/core
// [interestmap]: https://pkg.go.dev/github.com/matzehuels/interestmap/pkg/interestmap
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/interestmap/pkg/pipeline
// [graph]: https://pkg.go.dev/github.com/matzehuels/interestmap/pkg/graph
// [cache]: https://pkg.go.dev/github.com/matzehuels/interestmap/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/interestmap/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/interestmap/pkg/server
// [core/layout]: https://pkg.go.dev/github.com/matzehuels/interestmap/pkg/core/layout
// [core/sim]: https://pkg.go.dev/github.com/matzehuels/interestmap/pkg/core/sim
// [core/force]: https://pkg.go.dev/github.com/matzehuels/interestmap/pkg/core/force
// [graph.Snapshot]: https://pkg.go.dev/github.com/matzehuels/interestmap/pkg/graph#Snapshot
package pkg
