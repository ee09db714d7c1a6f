// Package store keeps saved map snapshots.
//
// Implementations:
//   - [MemoryStore]: in-process, for tests and ephemeral servers
//   - [FileStore]: one JSON file per snapshot, for the CLI
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// Save assigns an id and creation time when the snapshot has none. Lookups
// of unknown ids fail with SNAPSHOT_NOT_FOUND.
package store

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/interestmap/pkg/errors"
	"github.com/matzehuels/interestmap/pkg/graph"
)

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save stores snap, replacing any snapshot with the same id, and
	// returns it with id and creation time filled in.
	Save(ctx context.Context, snap graph.Snapshot) (graph.Snapshot, error)

	// Get retrieves a snapshot by id.
	Get(ctx context.Context, id string) (graph.Snapshot, error)

	// List returns summaries of all snapshots, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a snapshot.
	Delete(ctx context.Context, id string) error

	Close() error
}

// Summary describes a stored snapshot without its nodes.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	MapID     string    `json:"map_id,omitempty" bson:"map_id,omitempty"`
	Title     string    `json:"title" bson:"title"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Seed      uint64    `json:"seed" bson:"seed"`
	Tick      int       `json:"tick" bson:"tick"`
	Nodes     int       `json:"nodes" bson:"-"`
}

// Summarize returns the summary of snap.
func Summarize(snap graph.Snapshot) Summary {
	return Summary{
		ID:        snap.ID,
		MapID:     snap.MapID,
		Title:     snap.Title,
		CreatedAt: snap.CreatedAt,
		Seed:      snap.Seed,
		Tick:      snap.Tick,
		Nodes:     len(snap.Nodes),
	}
}

// prepare fills the id and creation time and validates the id.
func prepare(snap graph.Snapshot, now func() time.Time) (graph.Snapshot, error) {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if err := errors.ValidateID(snap.ID); err != nil {
		return graph.Snapshot{}, err
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = now().UTC()
	}
	return snap, nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", id)
}

// sortNewestFirst orders summaries by creation time, newest first, then id.
func sortNewestFirst(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
