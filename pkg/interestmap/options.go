package interestmap

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/interestmap/pkg/core/force"
	"github.com/matzehuels/interestmap/pkg/core/layout"
	"github.com/matzehuels/interestmap/pkg/core/pulse"
	"github.com/matzehuels/interestmap/pkg/core/sim"
	"github.com/matzehuels/interestmap/pkg/errors"
	"github.com/matzehuels/interestmap/pkg/graph"
)

// Defaults for Options.
const (
	DefaultWidth           = 1200
	DefaultHeight          = 800
	DefaultAvatarSize      = 56
	DefaultAvatar          = "images/about.png"
	DefaultForceStrength   = 0.03
	DefaultRadialStrength  = 0.6
	DefaultCollisionRadius = 45
	DefaultLabelScale      = 1.0
	DefaultAlphaDecay      = 0.005
	DefaultTickInterval    = 16 * time.Millisecond
	DefaultDragIdleTimeout = 5 * time.Second
)

// DefaultNodeRadius is the dot radius for levels 1, 2 and 3.
var DefaultNodeRadius = []float64{2.5, 2, 1.5}

// Options configures a map. Zero values take the defaults above; the
// level-distance and colour defaults come from the layout package.
type Options struct {
	Width       float64 `json:"width,omitempty" toml:"width"`
	Height      float64 `json:"height,omitempty" toml:"height"`
	CenterLabel string  `json:"center_label,omitempty" toml:"center_label"`
	Avatar      string  `json:"avatar,omitempty" toml:"avatar"`
	AvatarSize  float64 `json:"avatar_size,omitempty" toml:"avatar_size"`

	LevelDistances []float64 `json:"level_distances,omitempty" toml:"level_distances"`
	NodeRadius     []float64 `json:"node_radius,omitempty" toml:"node_radius"` // levels 1, 2, 3
	Colors         []string  `json:"colors,omitempty" toml:"colors"`

	// ForceStrength is accepted for compatibility with existing map
	// configurations. No force reads it.
	ForceStrength   float64 `json:"force_strength,omitempty" toml:"force_strength"`
	RadialStrength  float64 `json:"radial_strength,omitempty" toml:"radial_strength"`
	CollisionRadius float64 `json:"collision_radius,omitempty" toml:"collision_radius"`
	LabelScale      float64 `json:"label_scale,omitempty" toml:"label_scale"`
	AlphaDecay      float64 `json:"alpha_decay,omitempty" toml:"alpha_decay"`

	OrbitalRings *bool `json:"orbital_rings,omitempty" toml:"orbital_rings"`
	RingCount    int   `json:"ring_count,omitempty" toml:"ring_count"`

	// Seed drives planning and the first redraw. Zero picks one from the clock.
	Seed uint64 `json:"seed,omitempty" toml:"seed"`

	TickInterval    time.Duration `json:"tick_interval,omitempty" toml:"tick_interval"`
	DragIdleTimeout time.Duration `json:"drag_idle_timeout,omitempty" toml:"drag_idle_timeout"`
}

// SetDefaults fills zero fields. CenterLabel stays empty; the map falls
// back to the root entity's name.
func (o *Options) SetDefaults() {
	setFloat(&o.Width, DefaultWidth)
	setFloat(&o.Height, DefaultHeight)
	setFloat(&o.AvatarSize, DefaultAvatarSize)
	setFloat(&o.ForceStrength, DefaultForceStrength)
	setFloat(&o.RadialStrength, DefaultRadialStrength)
	setFloat(&o.CollisionRadius, DefaultCollisionRadius)
	setFloat(&o.LabelScale, DefaultLabelScale)
	setFloat(&o.AlphaDecay, DefaultAlphaDecay)
	if o.Avatar == "" {
		o.Avatar = DefaultAvatar
	}
	if len(o.LevelDistances) == 0 {
		o.LevelDistances = slices.Clone(layout.DefaultLevelDistances)
	}
	if len(o.NodeRadius) == 0 {
		o.NodeRadius = slices.Clone(DefaultNodeRadius)
	}
	o.Colors = slices.DeleteFunc(o.Colors, func(c string) bool { return strings.TrimSpace(c) == "" })
	if len(o.Colors) == 0 {
		o.Colors = slices.Clone(layout.DefaultColors)
	}
	if o.OrbitalRings == nil {
		on := true
		o.OrbitalRings = &on
	}
	if o.RingCount <= 0 {
		o.RingCount = pulse.DefaultRingCount
	}
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.DragIdleTimeout <= 0 {
		o.DragIdleTimeout = DefaultDragIdleTimeout
	}
}

func setFloat(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

// Validate rejects non-finite numbers. Ranges and colour strings are not
// checked; colours pass through to the renderer as given.
func (o Options) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"width", o.Width},
		{"height", o.Height},
		{"avatar_size", o.AvatarSize},
		{"force_strength", o.ForceStrength},
		{"radial_strength", o.RadialStrength},
		{"collision_radius", o.CollisionRadius},
		{"label_scale", o.LabelScale},
		{"alpha_decay", o.AlphaDecay},
	}
	for _, f := range fields {
		if err := errors.ValidateFinite(f.name, f.v); err != nil {
			return err
		}
	}
	for _, d := range o.LevelDistances {
		if err := errors.ValidateFinite("level_distances", d); err != nil {
			return err
		}
	}
	for _, r := range o.NodeRadius {
		if err := errors.ValidateFinite("node_radius", r); err != nil {
			return err
		}
	}
	return nil
}

// RingsEnabled reports whether orbital rings are drawn.
func (o Options) RingsEnabled() bool { return o.OrbitalRings == nil || *o.OrbitalRings }

// Rings returns the orbital ring radii, or nil when rings are off.
func (o Options) Rings() []float64 {
	if !o.RingsEnabled() {
		return nil
	}
	count := o.RingCount
	if count <= 0 {
		count = pulse.DefaultRingCount
	}
	dists := o.LevelDistances
	if len(dists) == 0 {
		dists = layout.DefaultLevelDistances
	}
	return pulse.RingRadii(dists, count)
}

// LayoutOptions returns the planner options.
func (o Options) LayoutOptions() layout.Options {
	return layout.Options{LevelDistances: o.LevelDistances, Colors: o.Colors}
}

// ForceConfig returns the inputs of the standard force set.
func (o Options) ForceConfig() force.Config {
	return force.Config{
		RadialStrength:  o.RadialStrength,
		CollisionRadius: o.CollisionRadius,
		AvatarSize:      o.AvatarSize,
	}
}

// SimParams returns the simulation schedule.
func (o Options) SimParams() sim.Params {
	p := sim.DefaultParams()
	if o.AlphaDecay > 0 {
		p.AlphaDecay = o.AlphaDecay
	}
	return p
}

// Style returns the snapshot styling.
func (o Options) Style() graph.Style {
	radius := make(map[int]float64, len(o.NodeRadius))
	for i, r := range o.NodeRadius {
		radius[i+1] = r
	}
	return graph.Style{NodeRadius: radius, LabelScale: o.LabelScale}
}

// EffectiveSeed returns Seed, or a clock-derived seed when it is zero.
func (o Options) EffectiveSeed(now time.Time) uint64 {
	if o.Seed != 0 {
		return o.Seed
	}
	return TimeSeed(now)
}

// TimeSeed derives a seed from a timestamp. It is never zero.
func TimeSeed(now time.Time) uint64 {
	s := uint64(now.UnixMilli())
	if s == 0 {
		s = 1
	}
	return s
}

// =============================================================================
// Functional Options
// =============================================================================

// Option customises a Map beyond its Options.
type Option func(*settings)

type settings struct {
	logger  *log.Logger
	manual  bool
	onPulse func(pulse.Pulse)
	clock   func() time.Time
	id      string
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithManualTicks disables the tick goroutine. The caller advances the
// map with Step.
func WithManualTicks() Option {
	return func(s *settings) { s.manual = true }
}

// WithPulse starts the ring pulse scheduler and calls fn for every pulse.
// It has no effect when orbital rings are off.
func WithPulse(fn func(pulse.Pulse)) Option {
	return func(s *settings) { s.onPulse = fn }
}

// WithClock replaces time.Now, which drives seeds and drag idle timeouts.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithID fixes the map id instead of generating one.
func WithID(id string) Option {
	return func(s *settings) { s.id = id }
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
