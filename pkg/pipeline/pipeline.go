// Package pipeline settles interest maps headlessly and exports them.
//
// This package implements the plan → settle → export pipeline shared by the
// CLI layout command and the API's stateless layout endpoint. A map is
// planned, stepped a fixed number of ticks without a clock, frozen into a
// snapshot and exported. Every stage is deterministic for a given tree,
// option set, seed and tick count, so results are cached by those inputs.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, root, pipeline.Options{
//	    Seed:    42,
//	    Formats: []string{"json", "svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/interestmap/pkg/cache"
	"github.com/matzehuels/interestmap/pkg/errors"
	"github.com/matzehuels/interestmap/pkg/graph"
	"github.com/matzehuels/interestmap/pkg/interestmap"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTicks is how long a headless map settles. With the default
	// alpha decay the map is visually at rest well before this.
	DefaultTicks = 300

	// MaxTicks bounds a single settle request.
	MaxTicks = 20000

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. It supports JSON for API requests.
type Options struct {
	// Map holds the map options. Map.Seed is ignored in favour of Seed.
	Map interestmap.Options `json:"map,omitzero"`

	Seed  uint64 `json:"seed,omitempty"`
	Ticks int    `json:"ticks,omitempty"`

	Formats []string `json:"formats,omitempty"`
	Rings   bool     `json:"rings,omitempty"`  // draw orbital rings in DOT/SVG
	Labels  bool     `json:"labels,omitempty"` // draw names in DOT/SVG
	Refresh bool     `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the settled map.
	Snapshot graph.Snapshot

	// TreeHash is the content hash of the input tree.
	TreeHash string

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	Ticks      int
	SettleTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	SnapshotHit bool
	RenderHit   bool // all artifacts came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is an export format.
func ValidateFormat(format string) error {
	if !slices.Contains(graph.ExportFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// SetDefaults applies defaults. It is idempotent.
func (o *Options) SetDefaults() {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Ticks <= 0 {
		o.Ticks = DefaultTicks
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{graph.ExportJSON}
	}
	o.Map.Seed = o.Seed
	o.Map.SetDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateAndSetDefaults applies defaults and checks the result.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	if o.Ticks > MaxTicks {
		return errors.New(errors.ErrCodeInvalidInput, "ticks %d exceeds the maximum of %d", o.Ticks, MaxTicks)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return o.Map.Validate()
}

// SnapshotKeyOpts returns cache key options for the settle stage.
func (o *Options) SnapshotKeyOpts() (cache.SnapshotKeyOpts, error) {
	m := o.Map
	m.Seed = 0
	m.TickInterval, m.DragIdleTimeout = 0, 0
	h, err := cache.HashJSON(m)
	if err != nil {
		return cache.SnapshotKeyOpts{}, err
	}
	return cache.SnapshotKeyOpts{OptionsHash: h, Seed: o.Seed, Ticks: o.Ticks}, nil
}

// ArtifactKeyOpts returns cache key options for one export.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if format != graph.ExportJSON {
		k.Rings, k.Labels = o.Rings, o.Labels
	}
	return k
}
