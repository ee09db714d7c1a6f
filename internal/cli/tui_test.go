package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/interestmap/pkg/core/pulse"
	"github.com/matzehuels/interestmap/pkg/core/tree"
	"github.com/matzehuels/interestmap/pkg/graph"
	"github.com/matzehuels/interestmap/pkg/interestmap"
)

func newTestWatch(t *testing.T) (WatchModel, *interestmap.Map, *[]graph.Snapshot) {
	t.Helper()
	root := tree.Entity{
		Name: "Ada",
		Children: []tree.Entity{
			{Name: "Music", Children: []tree.Entity{{Name: "Jazz"}}},
			{Name: "Code"},
		},
	}
	m, err := interestmap.New(root, interestmap.Options{Seed: 5}, interestmap.WithManualTicks())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(m.Destroy)

	var saved []graph.Snapshot
	save := func(s graph.Snapshot) (string, error) {
		saved = append(saved, s)
		return "snap-1", nil
	}
	return NewWatchModel(m, nil, nil, save), m, &saved
}

func press(t *testing.T, w WatchModel, msg tea.Msg) (WatchModel, tea.Cmd) {
	t.Helper()
	next, cmd := w.Update(msg)
	nw, ok := next.(WatchModel)
	if !ok {
		t.Fatalf("Update() returned %T, want WatchModel", next)
	}
	return nw, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWatchModelSelection(t *testing.T) {
	w, _, _ := newTestWatch(t)

	if len(w.order) != 3 {
		t.Fatalf("order = %v, want 3 non-root nodes", w.order)
	}
	first := w.selected()

	w, _ = press(t, w, tea.KeyMsg{Type: tea.KeyTab})
	if w.selected() != w.order[1] {
		t.Errorf("tab selected %q, want %q", w.selected(), w.order[1])
	}
	w, _ = press(t, w, tea.KeyMsg{Type: tea.KeyShiftTab})
	if w.selected() != first {
		t.Errorf("shift+tab selected %q, want %q", w.selected(), first)
	}
	w, _ = press(t, w, tea.KeyMsg{Type: tea.KeyShiftTab})
	if w.selected() != w.order[2] {
		t.Errorf("shift+tab should wrap to %q, got %q", w.order[2], w.selected())
	}
}

func TestWatchModelSubtree(t *testing.T) {
	w, m, _ := newTestWatch(t)

	if diff := cmp.Diff(map[string]bool{"l2_0_0": true}, w.subtree("l1_0")); diff != "" {
		t.Errorf("subtree(l1_0) mismatch (-want +got):\n%s", diff)
	}
	if got := w.subtree(""); got != nil {
		t.Errorf("subtree(\"\") = %v, want nil", got)
	}
	m.Destroy()
	if got := w.subtree("l1_0"); got != nil {
		t.Errorf("subtree on a destroyed map = %v, want nil", got)
	}
}

func TestWatchModelDrag(t *testing.T) {
	w, m, _ := newTestWatch(t)
	id := w.selected()
	start, _ := w.snap.Node(id)

	w, _ = press(t, w, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.Status().Dragged; got != id {
		t.Fatalf("Dragged = %q, want %q", got, id)
	}
	w, _ = press(t, w, runes("j"))
	if w.dragX != start.X+dragStep || w.dragY != start.Y+dragStep {
		t.Errorf("drag target = (%v, %v), want (%v, %v)", w.dragX, w.dragY, start.X+dragStep, start.Y+dragStep)
	}
	if !strings.HasPrefix(w.status, "dragging") || w.failed {
		t.Errorf("status = %q (failed %v), want dragging", w.status, w.failed)
	}

	if _, err := m.Step(1); err != nil {
		t.Fatalf("Step() error: %v", err)
	}
	snap, _ := m.Snapshot()
	n, _ := snap.Node(id)
	if n.X != w.dragX || n.Y != w.dragY {
		t.Errorf("dragged node at (%v, %v), want (%v, %v)", n.X, n.Y, w.dragX, w.dragY)
	}

	w, _ = press(t, w, tea.KeyMsg{Type: tea.KeySpace})
	if w.drag != nil || m.Status().Dragged != "" {
		t.Error("space should release the drag")
	}
	if w.status != "released" {
		t.Errorf("status = %q, want released", w.status)
	}
}

func TestWatchModelFramesHoldDrag(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	root := tree.Entity{Name: "Ada", Children: []tree.Entity{{Name: "Music"}, {Name: "Code"}}}
	m, err := interestmap.New(root, interestmap.Options{Seed: 5, DragIdleTimeout: time.Second},
		interestmap.WithManualTicks(), interestmap.WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}
	defer m.Destroy()

	w := NewWatchModel(m, nil, nil, nil)
	w, _ = press(t, w, tea.KeyMsg{Type: tea.KeyRight})
	if w.drag == nil {
		t.Fatal("arrow key should start a drag")
	}
	for range 4 {
		now = now.Add(800 * time.Millisecond)
		snap, _ := m.Snapshot()
		w, _ = press(t, w, frameMsg(snap))
		m.Step(1)
	}
	if w.drag.Released() {
		t.Error("a keyboard drag should survive while frames arrive")
	}
}

func TestWatchModelTabReleasesDrag(t *testing.T) {
	w, m, _ := newTestWatch(t)
	w, _ = press(t, w, tea.KeyMsg{Type: tea.KeyUp})
	w, _ = press(t, w, tea.KeyMsg{Type: tea.KeyTab})
	if w.drag != nil || m.Status().Dragged != "" {
		t.Error("changing selection should release the drag")
	}
}

func TestWatchModelFrameClearsEndedDrag(t *testing.T) {
	w, m, _ := newTestWatch(t)
	w, _ = press(t, w, tea.KeyMsg{Type: tea.KeyLeft})
	w.drag.Release()

	snap, _ := m.Snapshot()
	w, cmd := press(t, w, frameMsg(snap))
	if cmd != nil {
		t.Error("frame without a channel should not wait for more")
	}
	if w.drag != nil {
		t.Error("frame should drop a released drag")
	}
	if w.status != "drag released" {
		t.Errorf("status = %q, want %q", w.status, "drag released")
	}
}

func TestWatchModelCommands(t *testing.T) {
	w, m, saved := newTestWatch(t)

	w, _ = press(t, w, runes("r"))
	if !strings.HasPrefix(w.status, "redrawn with seed") {
		t.Errorf("status after redraw = %q", w.status)
	}
	if m.Seed() == 5 {
		t.Error("redraw should pick a new seed")
	}

	w, _ = press(t, w, runes("s"))
	if len(*saved) != 1 {
		t.Fatalf("saved %d snapshots, want 1", len(*saved))
	}
	if w.status != "saved snapshot snap-1" {
		t.Errorf("status after save = %q", w.status)
	}

	w, _ = press(t, w, runes("n"))
	if !w.labels {
		t.Error("n should toggle labels on")
	}

	_, cmd := press(t, w, runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestWatchModelSaveError(t *testing.T) {
	w, _, _ := newTestWatch(t)
	w.save = func(graph.Snapshot) (string, error) { return "", errors.New("disk full") }
	w, _ = press(t, w, runes("s"))
	if !w.failed {
		t.Error("failed save should be reported as an error")
	}
}

func TestWatchModelDestroyedMap(t *testing.T) {
	w, m, _ := newTestWatch(t)
	m.Destroy()
	w, _ = press(t, w, runes("r"))
	if !w.failed {
		t.Errorf("redraw of a destroyed map should fail, status %q", w.status)
	}
}

func TestWatchModelReload(t *testing.T) {
	w, m, _ := newTestWatch(t)
	w, _ = press(t, w, tea.KeyMsg{Type: tea.KeyDown})

	w, _ = press(t, w, reloadMsg{root: tree.Entity{Name: "Ada", Children: []tree.Entity{{Name: "Books"}}}})
	if w.failed {
		t.Fatalf("reload failed: %s", w.status)
	}
	if len(w.order) != 1 {
		t.Errorf("order after reload = %v, want 1 node", w.order)
	}
	if w.drag != nil || m.Status().Dragged != "" {
		t.Error("reload should end the drag")
	}
	if m.Status().Nodes != 2 {
		t.Errorf("map nodes = %d, want 2", m.Status().Nodes)
	}

	w, _ = press(t, w, reloadMsg{err: errors.New("bad yaml")})
	if !w.failed || !strings.Contains(w.status, "bad yaml") {
		t.Errorf("status = %q (failed %v), want reload error", w.status, w.failed)
	}
}

func TestWatchModelPulse(t *testing.T) {
	w, _, _ := newTestWatch(t)

	p := pulse.Pulse{Seq: 3, Rings: []pulse.Ring{{Index: 0}, {Index: 1, Delay: time.Millisecond}}}
	w, cmd := press(t, w, pulseMsg(p))
	if cmd == nil {
		t.Fatal("pulse should schedule ring highlights")
	}
	if w.pulseSeq != 3 {
		t.Errorf("pulseSeq = %d, want 3", w.pulseSeq)
	}

	w, _ = press(t, w, ringMsg{seq: 2, index: 1})
	if w.hotRing != -1 {
		t.Errorf("stale ring message set hotRing = %d", w.hotRing)
	}
	w, _ = press(t, w, ringMsg{seq: 3, index: 1})
	if w.hotRing != 1 {
		t.Errorf("hotRing = %d, want 1", w.hotRing)
	}
	w, _ = press(t, w, ringMsg{seq: 3, index: -1})
	if w.hotRing != -1 {
		t.Errorf("hotRing = %d, want -1 after the pulse", w.hotRing)
	}
}

func TestWatchModelView(t *testing.T) {
	w, _, _ := newTestWatch(t)
	w, _ = press(t, w, tea.WindowSizeMsg{Width: 60, Height: 20})

	view := w.View()
	for _, want := range []string{"Ada", "seed 5", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
