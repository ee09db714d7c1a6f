// Package cache stores settled snapshots and rendered artifacts.
//
// Settling a map is deterministic for a given tree, option set, seed and
// tick count, so the headless pipeline keys its results by those inputs and
// skips the simulation entirely on a hit.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for the API server
//   - [NullCache]: caching disabled
//
// Wrap any backend with [Instrument] to report hits and misses to the
// observability hooks.
//
// # Keys
//
// A [Keyer] derives keys; [DefaultKeyer] hashes every input so keys stay
// short and safe for any backend. [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// Get reports a miss with ok=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Time-to-live for cached entries. Zero means no expiry.
const (
	TTLSnapshot = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Key prefixes. The part before the first colon of a key is its type.
const (
	PrefixSnapshot = "snapshot"
	PrefixArtifact = "artifact"
)

// SnapshotKeyOpts holds the inputs that determine a settled snapshot
// besides the tree itself.
type SnapshotKeyOpts struct {
	OptionsHash string `json:"options_hash"`
	Seed        uint64 `json:"seed"`
	Ticks       int    `json:"ticks"`
}

// ArtifactKeyOpts holds the inputs that determine one exported artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Rings  bool   `json:"rings,omitempty"`
	Labels bool   `json:"labels,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// SnapshotKey keys a settled snapshot by tree hash and settle inputs.
	SnapshotKey(treeHash string, opts SnapshotKeyOpts) string

	// ArtifactKey keys an export of the snapshot with the given hash.
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes all key inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SnapshotKey implements Keyer.
func (DefaultKeyer) SnapshotKey(treeHash string, opts SnapshotKeyOpts) string {
	return hashKey(PrefixSnapshot, treeHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey(PrefixArtifact, snapshotHash, opts)
}
