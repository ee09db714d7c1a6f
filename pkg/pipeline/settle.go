package pipeline

import (
	"github.com/matzehuels/interestmap/pkg/core/tree"
	"github.com/matzehuels/interestmap/pkg/graph"
	"github.com/matzehuels/interestmap/pkg/interestmap"
)

// headlessID names maps settled by the pipeline. It never appears in
// output; the snapshot's map id is cleared.
const headlessID = "headless"

// Settle plans root and runs opts.Ticks simulation ticks without a clock.
// opts must have defaults applied.
func Settle(root tree.Entity, opts Options) (graph.Snapshot, error) {
	m, err := interestmap.New(root, opts.Map,
		interestmap.WithManualTicks(),
		interestmap.WithID(headlessID),
		interestmap.WithLogger(opts.Logger),
	)
	if err != nil {
		return graph.Snapshot{}, err
	}
	defer m.Destroy()

	if _, err := m.Step(opts.Ticks); err != nil {
		return graph.Snapshot{}, err
	}
	snap, err := m.Snapshot()
	if err != nil {
		return graph.Snapshot{}, err
	}
	snap.MapID = ""
	return snap, nil
}
