package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/interestmap/pkg/core/layout"
	"github.com/matzehuels/interestmap/pkg/core/pulse"
	"github.com/matzehuels/interestmap/pkg/core/tree"
	"github.com/matzehuels/interestmap/pkg/errors"
	"github.com/matzehuels/interestmap/pkg/graph"
	"github.com/matzehuels/interestmap/pkg/interestmap"
)

// dragStep is how far one arrow key moves a dragged node, in map units.
const dragStep = 12.0

var (
	styleHelp   = lipgloss.NewStyle().Foreground(colorDim)
	styleStatus = lipgloss.NewStyle().Foreground(colorGray)
	styleError  = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Messages
// =============================================================================

type frameMsg graph.Snapshot

type pulseMsg pulse.Pulse

// ringMsg highlights ring index of pulse seq; index -1 clears it.
type ringMsg struct {
	seq   int
	index int
}

// reloadMsg carries a re-read tree file.
type reloadMsg struct {
	root tree.Entity
	err  error
}

// =============================================================================
// WatchModel - Live Map View
// =============================================================================

// WatchModel is the bubbletea model of the watch command.
type WatchModel struct {
	m      *interestmap.Map
	frames <-chan graph.Snapshot
	pulses <-chan pulse.Pulse
	save   func(graph.Snapshot) (string, error)

	snap     graph.Snapshot
	order    []string
	cursor   int
	drag     *interestmap.Drag
	dragX    float64
	dragY    float64
	cols     int
	rows     int
	labels   bool
	hotRing  int
	pulseSeq int
	status   string
	failed   bool
}

// NewWatchModel creates the view for m. frames and pulses feed it from the
// map's subscriber and pulse callbacks; save stores a snapshot and returns
// its id.
func NewWatchModel(m *interestmap.Map, frames <-chan graph.Snapshot, pulses <-chan pulse.Pulse, save func(graph.Snapshot) (string, error)) WatchModel {
	w := WatchModel{
		m:       m,
		frames:  frames,
		pulses:  pulses,
		save:    save,
		cols:    80,
		rows:    24,
		hotRing: -1,
	}
	if snap, err := m.Snapshot(); err == nil {
		w.setFrame(snap)
	}
	return w
}

func (w WatchModel) Init() tea.Cmd {
	return tea.Batch(waitFrame(w.frames), waitPulse(w.pulses))
}

func waitFrame(ch <-chan graph.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return frameMsg(snap)
	}
}

func waitPulse(ch <-chan pulse.Pulse) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return pulseMsg(p)
	}
}

func (w WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.cols, w.rows = msg.Width, msg.Height

	case frameMsg:
		if w.drag != nil && !w.drag.Released() {
			// Keyboard drags last until space or tab.
			_ = w.drag.Hold()
		}
		w.setFrame(graph.Snapshot(msg))
		return w, waitFrame(w.frames)

	case pulseMsg:
		return w, tea.Batch(w.startPulse(pulse.Pulse(msg)), waitPulse(w.pulses))

	case ringMsg:
		if msg.seq == w.pulseSeq {
			w.hotRing = msg.index
		}

	case reloadMsg:
		w.reload(msg)

	case tea.KeyMsg:
		return w.handleKey(msg)
	}
	return w, nil
}

func (w *WatchModel) setFrame(snap graph.Snapshot) {
	selected := w.selected()
	w.snap = snap
	w.order = make([]string, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if n.Level > layout.LevelRoot {
			w.order = append(w.order, n.ID)
		}
	}
	w.cursor = 0
	for i, id := range w.order {
		if id == selected {
			w.cursor = i
		}
	}
	if w.drag != nil && w.drag.Released() {
		w.drag = nil
		w.setStatus("drag released")
	}
}

func (w *WatchModel) startPulse(p pulse.Pulse) tea.Cmd {
	w.pulseSeq = p.Seq
	cmds := make([]tea.Cmd, 0, len(p.Rings)+1)
	var last time.Duration
	for _, ring := range p.Rings {
		seq, index := p.Seq, ring.Index
		cmds = append(cmds, tea.Tick(ring.Delay, func(time.Time) tea.Msg { return ringMsg{seq: seq, index: index} }))
		last = max(last, ring.Delay)
	}
	seq := p.Seq
	cmds = append(cmds, tea.Tick(last+pulse.DefaultStagger, func(time.Time) tea.Msg { return ringMsg{seq: seq, index: -1} }))
	return tea.Batch(cmds...)
}

func (w *WatchModel) reload(msg reloadMsg) {
	if msg.err != nil {
		w.setError(fmt.Errorf("reload: %w", msg.err))
		return
	}
	if err := w.m.Reload(msg.root); err != nil {
		w.setError(err)
		return
	}
	w.drag = nil
	if snap, err := w.m.Snapshot(); err == nil {
		w.setFrame(snap)
	}
	w.setStatus("reloaded %s", msg.root.Name)
}

func (w WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return w, tea.Quit

	case "r":
		seed, err := w.m.Redraw()
		if err != nil {
			w.setError(err)
			break
		}
		w.drag = nil
		w.setStatus("redrawn with seed %d", seed)

	case "tab", "shift+tab":
		if len(w.order) == 0 {
			break
		}
		w.releaseDrag()
		step := 1
		if msg.String() == "shift+tab" {
			step = len(w.order) - 1
		}
		w.cursor = (w.cursor + step) % len(w.order)
		w.setStatus("")

	case "up", "k":
		w.nudge(0, -dragStep)
	case "down", "j":
		w.nudge(0, dragStep)
	case "left", "h":
		w.nudge(-dragStep, 0)
	case "right", "l":
		w.nudge(dragStep, 0)

	case " ":
		if w.drag != nil {
			w.releaseDrag()
			w.setStatus("released")
		}

	case "n":
		w.labels = !w.labels

	case "s":
		if w.save == nil {
			break
		}
		id, err := w.save(w.snap)
		if err != nil {
			w.setError(err)
			break
		}
		w.setStatus("saved snapshot %s", id)
	}
	return w, nil
}

// nudge grabs the selected node if needed and moves it by (dx, dy).
func (w *WatchModel) nudge(dx, dy float64) {
	id := w.selected()
	if id == "" {
		return
	}
	if w.drag == nil || w.drag.Released() || w.drag.NodeID() != id {
		d, err := w.m.Grab(id)
		if err != nil {
			w.setError(err)
			return
		}
		w.drag = d
		n, _ := w.snap.Node(id)
		w.dragX, w.dragY = n.X, n.Y
	}
	w.dragX += dx
	w.dragY += dy
	if err := w.drag.Move(w.dragX, w.dragY); err != nil {
		w.setError(err)
		return
	}
	w.setStatus("dragging to (%.0f, %.0f)", w.dragX, w.dragY)
}

func (w *WatchModel) releaseDrag() {
	if w.drag != nil {
		w.drag.Release()
		w.drag = nil
	}
}

func (w WatchModel) selected() string {
	if w.cursor < 0 || w.cursor >= len(w.order) {
		return ""
	}
	return w.order[w.cursor]
}

func (w *WatchModel) setStatus(format string, args ...any) {
	w.status, w.failed = fmt.Sprintf(format, args...), false
}

func (w *WatchModel) setError(err error) {
	w.status, w.failed = errors.UserMessage(err), true
}

// subtree returns the set of nodes below id, or nil when nothing is selected.
func (w WatchModel) subtree(id string) map[string]bool {
	if id == "" {
		return nil
	}
	ids, err := w.m.Subtree(id)
	if err != nil {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, d := range ids {
		set[d] = true
	}
	return set
}

func (w WatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(w.snap.Title))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  seed %d · tick %d · alpha %.3f · %s",
		w.snap.Seed, w.snap.Tick, w.snap.Alpha, w.snap.Phase)))
	b.WriteString("\n")

	b.WriteString(renderCanvas(w.snap, canvasOptions{
		Cols:     w.cols,
		Rows:     max(w.rows-4, 1),
		Selected: w.selected(),
		Subtree:  w.subtree(w.selected()),
		HotRing:  w.hotRing,
		Labels:   w.labels,
	}))
	b.WriteString("\n")

	if id := w.selected(); id != "" {
		n, _ := w.snap.Node(id)
		b.WriteString(StyleHighlight.Render(n.Name))
		b.WriteString(StyleDim.Render(fmt.Sprintf("  level %d · (%.0f, %.0f)", n.Level, n.X, n.Y)))
	}
	if w.status != "" {
		style := styleStatus
		if w.failed {
			style = styleError
		}
		b.WriteString("  " + style.Render(w.status))
	}
	b.WriteString("\n")
	b.WriteString(styleHelp.Render("r redraw · tab select · arrows drag · space release · n names · s save · q quit"))
	return b.String()
}
