// Package interestmap hosts live interest maps.
//
// A [Map] is the embeddable host of one visualization: [New] plans the tree,
// builds the force simulation and starts a tick goroutine; the methods map
// one-to-one onto the host commands (resize, redraw, drag, destroy). All
// simulation state sits behind a single mutex, so host calls and ticks
// never interleave inside a step.
//
// # Usage
//
//	m, err := interestmap.New(root, interestmap.Options{Seed: 42})
//	if err != nil {
//	    return err
//	}
//	defer m.Destroy()
//
//	d, _ := m.Grab("l1_0")
//	d.Move(200, -40)
//	d.Release()
//	snap, _ := m.Snapshot()
//
// Use [WithManualTicks] to drive the simulation synchronously with
// [Map.Step], which is how the headless pipeline and tests settle maps.
package interestmap

import (
	"context"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/interestmap/pkg/core/force"
	"github.com/matzehuels/interestmap/pkg/core/layout"
	"github.com/matzehuels/interestmap/pkg/core/prng"
	"github.com/matzehuels/interestmap/pkg/core/pulse"
	"github.com/matzehuels/interestmap/pkg/core/sim"
	"github.com/matzehuels/interestmap/pkg/core/tree"
	"github.com/matzehuels/interestmap/pkg/errors"
	"github.com/matzehuels/interestmap/pkg/graph"
	"github.com/matzehuels/interestmap/pkg/observability"
)

// Drag end reasons reported to observability hooks.
const (
	EndRelease  = "release"
	EndIdle     = "idle"
	EndReplaced = "replaced"
	EndRedraw   = "redraw"
	EndReload   = "reload"
	EndDestroy  = "destroy"
)

// Map is one live interest map.
type Map struct {
	id     string
	logger *log.Logger
	clock  func() time.Time

	mu        sync.Mutex
	opts      Options
	root      tree.Entity
	seed      uint64
	plan      layout.Layout
	sim       *sim.Simulation
	rings     []float64
	drag      *Drag
	dragSeen  time.Time
	subs      map[int]func(graph.Snapshot)
	nextSub   int
	destroyed bool

	pulses *pulse.Scheduler
	cancel context.CancelFunc
	done   chan struct{}
}

// Status summarises a map without its node list.
type Status struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Nodes   int       `json:"nodes"`
	Seed    uint64    `json:"seed"`
	Tick    int       `json:"tick"`
	Alpha   float64   `json:"alpha"`
	Phase   sim.Phase `json:"phase"`
	Dragged string    `json:"dragged,omitempty"`
}

// New initializes a map for root and starts it.
func New(root tree.Entity, opts Options, options ...Option) (*Map, error) {
	st := settings{
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		clock:  time.Now,
	}
	for _, o := range options {
		o(&st)
	}

	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := errors.ValidateEntityName(root.Name); err != nil {
		return nil, err
	}
	id := st.id
	if id == "" {
		id = uuid.NewString()
	} else if err := errors.ValidateID(id); err != nil {
		return nil, err
	}

	m := &Map{
		id:     id,
		logger: st.logger,
		clock:  st.clock,
		opts:   opts,
		root:   root,
		seed:   opts.EffectiveSeed(st.clock()),
		rings:  opts.Rings(),
		subs:   make(map[int]func(graph.Snapshot)),
	}
	m.build()

	m.logger.Debug("map created", "id", id, "nodes", len(m.plan.Nodes), "seed", m.seed, "dropped", m.plan.Dropped)
	observability.Map().OnMapCreated(context.Background(), id, len(m.plan.Nodes))

	if !st.manual {
		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		m.done = make(chan struct{})
		go m.run(ctx, opts.TickInterval)
	}
	if st.onPulse != nil && len(m.rings) > 0 {
		m.pulses = pulse.New(pulse.Config{Rings: m.rings}, st.onPulse)
		m.pulses.Start()
	}
	return m, nil
}

func (m *Map) build() {
	m.plan = layout.Plan(m.root, m.opts.LayoutOptions(), prng.New(m.seed))
	m.sim = sim.New(m.plan.Nodes, force.Standard(m.opts.ForceConfig()), m.opts.SimParams(), prng.New(m.seed))
	if m.plan.Dropped > 0 {
		m.logger.Warn("tree is deeper than the map shows", "id", m.id, "depth", m.root.Depth(), "hidden", m.plan.Dropped)
	}
}

// ID returns the map id.
func (m *Map) ID() string { return m.id }

// Options returns the effective options.
func (m *Map) Options() Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts
}

// Seed returns the seed of the current layout or last redraw.
func (m *Map) Seed() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seed
}

// Destroyed reports whether Destroy has been called.
func (m *Map) Destroyed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyed
}

// =============================================================================
// Tick Loop
// =============================================================================

func (m *Map) run(ctx context.Context, interval time.Duration) {
	defer close(m.done)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.advance(1)
		}
	}
}

// Step advances the map by up to n ticks and returns how many ran. A
// stopped simulation runs none.
func (m *Map) Step(n int) (int, error) {
	if m.Destroyed() {
		return 0, m.destroyedErr()
	}
	return m.advance(n), nil
}

func (m *Map) advance(n int) int {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return 0
	}
	if m.drag != nil && m.clock().Sub(m.dragSeen) > m.opts.DragIdleTimeout {
		m.logger.Debug("releasing idle drag", "map", m.id, "node", m.drag.id)
		m.endDragLocked(EndIdle)
	}
	ran := m.sim.TickN(n)

	var (
		subs []func(graph.Snapshot)
		snap graph.Snapshot
	)
	if ran > 0 && len(m.subs) > 0 {
		snap = m.snapshotLocked()
		keys := slices.Sorted(maps.Keys(m.subs))
		for _, k := range keys {
			subs = append(subs, m.subs[k])
		}
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return ran
}

// Subscribe registers fn to receive a snapshot after every tick that moved
// the simulation. fn runs on the ticking goroutine outside the map lock.
// The returned function unsubscribes.
func (m *Map) Subscribe(fn func(graph.Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return func() {}
	}
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// =============================================================================
// Host Commands
// =============================================================================

// Snapshot freezes the current frame.
func (m *Map) Snapshot() (graph.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return graph.Snapshot{}, m.destroyedErr()
	}
	return m.snapshotLocked(), nil
}

func (m *Map) snapshotLocked() graph.Snapshot {
	title := m.opts.CenterLabel
	if title == "" {
		title = m.root.Name
	}
	avatar := m.root.Avatar
	if avatar == "" {
		avatar = m.opts.Avatar
	}
	h := graph.Header{
		MapID:      m.id,
		Title:      title,
		Avatar:     avatar,
		Seed:       m.seed,
		Tick:       m.sim.Ticks(),
		Alpha:      m.sim.Alpha(),
		Phase:      string(m.sim.Phase()),
		Width:      m.opts.Width,
		Height:     m.opts.Height,
		AvatarSize: m.opts.AvatarSize,
		Rotation:   m.plan.Rotation,
		Dropped:    m.plan.Dropped,
		Rings:      slices.Clone(m.rings),
	}
	return graph.Build(h, m.opts.Style(), m.sim.Nodes(), m.plan.Links)
}

// Status returns a summary of the map.
func (m *Map) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	title := m.opts.CenterLabel
	if title == "" {
		title = m.root.Name
	}
	dragged, _ := m.sim.Grabbed()
	return Status{
		ID:      m.id,
		Title:   title,
		Nodes:   len(m.plan.Nodes),
		Seed:    m.seed,
		Tick:    m.sim.Ticks(),
		Alpha:   m.sim.Alpha(),
		Phase:   m.sim.Phase(),
		Dragged: dragged,
	}
}

// Resize changes the viewport. The map stays centred in it.
func (m *Map) Resize(width, height float64) error {
	if !finite(width) || !finite(height) || width <= 0 || height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid size %vx%v", width, height)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return m.destroyedErr()
	}
	m.opts.Width, m.opts.Height = width, height
	return nil
}

// Redraw re-randomises node positions with a clock-derived seed and returns
// the seed used.
func (m *Map) Redraw() (uint64, error) {
	seed := TimeSeed(m.clock())
	return seed, m.RedrawSeeded(seed)
}

// RedrawSeeded re-randomises node positions around their assigned angles
// and radii using seed, then reheats the simulation. Any drag ends.
func (m *Map) RedrawSeeded(seed uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return m.destroyedErr()
	}
	if m.drag != nil {
		m.endDragLocked(EndRedraw)
	}
	m.seed = seed
	m.sim.Redraw(prng.New(seed))
	m.logger.Debug("map redrawn", "id", m.id, "seed", seed)
	observability.Map().OnRedraw(context.Background(), m.id, seed)
	return nil
}

// Reload replaces the tree and plans it afresh with the current seed.
func (m *Map) Reload(root tree.Entity) error {
	if err := errors.ValidateEntityName(root.Name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return m.destroyedErr()
	}
	if m.drag != nil {
		m.endDragLocked(EndReload)
	}
	m.root = root
	m.build()
	m.logger.Debug("map reloaded", "id", m.id, "nodes", len(m.plan.Nodes))
	return nil
}

// Destroy stops the tick loop and pulse timer and ends any drag. Further
// commands return MAP_DESTROYED. Destroying twice is a no-op.
func (m *Map) Destroy() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.destroyed = true
	if m.drag != nil {
		m.endDragLocked(EndDestroy)
	}
	m.sim.Stop()
	clear(m.subs)
	ticks := m.sim.Ticks()
	cancel, done, pulses := m.cancel, m.done, m.pulses
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if pulses != nil {
		pulses.Stop()
	}
	m.logger.Debug("map destroyed", "id", m.id, "ticks", ticks)
	observability.Map().OnMapDestroyed(context.Background(), m.id, ticks)
}

func (m *Map) destroyedErr() error {
	return errors.New(errors.ErrCodeMapDestroyed, "map %s has been destroyed", m.id)
}

// =============================================================================
// Drag
// =============================================================================

// Drag is a handle on a node held by the pointer.
type Drag struct {
	m        *Map
	id       string
	released bool
}

// Grab starts dragging node id. A drag already in progress ends.
//
// A drag that sees neither Move nor Hold for Options.DragIdleTimeout is
// released by the tick loop, which covers a lost pointer-up. A host keeping
// a node still under a pressed pointer calls Hold to keep it pinned.
func (m *Map) Grab(id string) (*Drag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return nil, m.destroyedErr()
	}
	prev := m.drag
	if err := m.sim.Grab(id); err != nil {
		return nil, err
	}
	if prev != nil {
		prev.released = true
		observability.Map().OnDragEnd(context.Background(), m.id, prev.id, EndReplaced)
	}
	d := &Drag{m: m, id: id}
	m.drag = d
	m.dragSeen = m.clock()
	observability.Map().OnDragStart(context.Background(), m.id, id)
	return d, nil
}

// Subtree returns the ids of every node below id, depth first. Hosts use it
// to highlight a branch.
func (m *Map) Subtree(id string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return nil, m.destroyedErr()
	}
	idx := m.sim.Index()
	i, ok := idx.Lookup(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	nodes := m.sim.Nodes()
	below := idx.Descendants(i)
	ids := make([]string, len(below))
	for k, j := range below {
		ids[k] = nodes[j].ID
	}
	return ids, nil
}

// Dragging returns the active drag, if any.
func (m *Map) Dragging() (*Drag, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drag, m.drag != nil
}

func (m *Map) endDragLocked(reason string) {
	d := m.drag
	m.sim.Release(d.id)
	d.released = true
	m.drag = nil
	observability.Map().OnDragEnd(context.Background(), m.id, d.id, reason)
}

// NodeID returns the dragged node's id.
func (d *Drag) NodeID() string { return d.id }

// Move pins the node at (x, y) in map coordinates.
func (d *Drag) Move(x, y float64) error {
	if !finite(x) || !finite(y) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid position (%v, %v)", x, y)
	}
	m := d.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return m.destroyedErr()
	}
	if d.released {
		return errors.New(errors.ErrCodeInvalidInput, "drag of %q has ended", d.id)
	}
	m.dragSeen = m.clock()
	return m.sim.Move(d.id, x, y)
}

// Hold reports that the pointer is still down without moving the node.
func (d *Drag) Hold() error {
	m := d.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return m.destroyedErr()
	}
	if d.released {
		return errors.New(errors.ErrCodeInvalidInput, "drag of %q has ended", d.id)
	}
	m.dragSeen = m.clock()
	return nil
}

// Release drops the node. Releasing twice is a no-op.
func (d *Drag) Release() {
	m := d.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.released || m.drag != d {
		return
	}
	m.endDragLocked(EndRelease)
}

// Released reports whether the drag has ended for any reason.
func (d *Drag) Released() bool {
	d.m.mu.Lock()
	defer d.m.mu.Unlock()
	return d.released
}
