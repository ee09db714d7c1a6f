package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/interestmap/pkg/cache"
	"github.com/matzehuels/interestmap/pkg/core/tree"
	"github.com/matzehuels/interestmap/pkg/graph"
	"github.com/matzehuels/interestmap/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  cache.Instrument(c),
		Keyer:  keyer,
		Logger: logger,
	}
}

// ExecuteFile reads a tree file and runs the pipeline on it.
func (r *Runner) ExecuteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	root, err := graph.ReadTreeFile(path)
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx, root, opts)
}

// Execute runs the complete settle → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, root tree.Entity, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	settleStart := time.Now()
	snap, treeHash, hit, err := r.SettleWithCacheInfo(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("settle: %w", err)
	}
	result.Snapshot = snap
	result.TreeHash = treeHash
	result.Stats.NodeCount = len(snap.Nodes)
	result.Stats.LinkCount = len(snap.Links)
	result.Stats.Ticks = snap.Tick
	result.Stats.SettleTime = time.Since(settleStart)
	result.CacheInfo.SnapshotHit = hit

	r.Logger.Info("settled map",
		"nodes", result.Stats.NodeCount,
		"ticks", snap.Tick,
		"dropped", snap.Dropped,
		"cached", hit,
		"duration", result.Stats.SettleTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SettleWithCacheInfo settles root with caching. It returns the snapshot,
// the tree hash and whether the snapshot came from cache.
func (r *Runner) SettleWithCacheInfo(ctx context.Context, root tree.Entity, opts Options) (graph.Snapshot, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Snapshot{}, "", false, err
	}

	treeHash, err := cache.HashJSON(root)
	if err != nil {
		return graph.Snapshot{}, "", false, err
	}
	keyOpts, err := opts.SnapshotKeyOpts()
	if err != nil {
		return graph.Snapshot{}, "", false, err
	}
	cacheKey := r.Keyer.SnapshotKey(treeHash, keyOpts)

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil {
			r.Logger.Warn("cache read failed", "error", err)
		}
		if hit {
			if snap, err := graph.UnmarshalSnapshot(data); err == nil {
				return snap, treeHash, true, nil
			}
			// Undecodable entries fall through to recompute.
		}
	}

	observability.Pipeline().OnSettleStart(ctx, root.Size(), opts.Ticks)
	start := time.Now()
	snap, err := Settle(root, opts)
	observability.Pipeline().OnSettleComplete(ctx, opts.Ticks, time.Since(start), err)
	if err != nil {
		return graph.Snapshot{}, "", false, err
	}

	if data, err := graph.MarshalSnapshot(snap); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLSnapshot); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		}
	}
	return snap, treeHash, false, nil
}

// Settle is a convenience wrapper that discards the cache details.
func (r *Runner) Settle(ctx context.Context, root tree.Entity, opts Options) (graph.Snapshot, error) {
	snap, _, _, err := r.SettleWithCacheInfo(ctx, root, opts)
	return snap, err
}

// RenderWithCacheInfo exports snap with caching and reports whether every
// artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, snap graph.Snapshot, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	snapData, err := graph.MarshalSnapshot(snap)
	if err != nil {
		return nil, false, fmt.Errorf("serialize snapshot for cache key: %w", err)
	}
	snapHash := cache.Hash(snapData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(snapHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(snap, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(snapHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, snap graph.Snapshot, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, snap, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
