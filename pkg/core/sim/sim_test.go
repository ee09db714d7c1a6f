package sim

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matzehuels/interestmap/pkg/core/force"
	"github.com/matzehuels/interestmap/pkg/core/layout"
	"github.com/matzehuels/interestmap/pkg/core/prng"
	"github.com/matzehuels/interestmap/pkg/core/tree"
	"github.com/matzehuels/interestmap/pkg/errors"
)

func scenario() tree.Entity {
	return tree.Entity{
		Name: "Root",
		Children: []tree.Entity{
			{Name: "A", Children: []tree.Entity{{Name: "A1"}, {Name: "A2"}}},
			{Name: "B"},
		},
	}
}

func threeBranches() tree.Entity {
	return tree.Entity{
		Name: "Me",
		Children: []tree.Entity{
			{Name: "Music", Children: []tree.Entity{{Name: "Jazz"}, {Name: "Piano"}}},
			{Name: "Code", Children: []tree.Entity{{Name: "Go"}}},
			{Name: "Climbing"},
		},
	}
}

func newSim(root tree.Entity, seed uint64) *Simulation {
	l := layout.Plan(root, layout.Options{}, prng.New(seed))
	forces := force.Standard(force.Config{RadialStrength: 0.6, CollisionRadius: 45, AvatarSize: 56})
	return New(l.Nodes, forces, DefaultParams(), prng.New(1))
}

func TestRootPinned(t *testing.T) {
	s := newSim(threeBranches(), 11)
	for i := 0; i < 200; i++ {
		s.Tick()
		root, _ := s.Node(layout.RootID)
		if root.X != 0 || root.Y != 0 {
			t.Fatalf("tick %d: root at (%v, %v)", i, root.X, root.Y)
		}
	}
	s.Redraw(prng.New(5))
	s.TickN(10)
	if root, _ := s.Node(layout.RootID); root.X != 0 || root.Y != 0 || !root.Fixed {
		t.Errorf("root after redraw = %+v", root)
	}
}

// fan builds a root with n branches; branch i has kids(i) leaf children.
func fan(n int, kids func(i int) int) tree.Entity {
	root := tree.Entity{Name: "Me"}
	for i := range n {
		b := tree.Entity{Name: fmt.Sprintf("b%d", i)}
		for j := range kids(i) {
			b.Children = append(b.Children, tree.Entity{Name: fmt.Sprintf("b%d.%d", i, j)})
		}
		root.Children = append(root.Children, b)
	}
	return root
}

func TestSectorContainment(t *testing.T) {
	pairs := func(int) int { return 2 }
	mixed := func(i int) int { return i % 3 }

	// Sectors narrow as 2π/n while collision spacing stays fixed, and from
	// rank 9 on the evenly spaced slots land on preferred ones, so crowded
	// maps get a wider margin.
	tests := []struct {
		name string
		root tree.Entity
		eps  float64
	}{
		{"scenario", scenario(), 0.1},
		{"three branches", threeBranches(), 0.1},
		{"1 pairs", fan(1, pairs), 0.1},
		{"2 pairs", fan(2, pairs), 0.1},
		{"3 pairs", fan(3, pairs), 0.1},
		{"3 mixed", fan(3, mixed), 0.1},
		{"5 pairs", fan(5, pairs), 0.3},
		{"5 mixed", fan(5, mixed), 0.3},
		{"8 pairs", fan(8, pairs), 0.4},
		{"8 mixed", fan(8, mixed), 0.4},
		{"12 pairs", fan(12, pairs), 0.9},
		{"12 mixed", fan(12, mixed), 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, seed := range []uint64{1, 7, 42, 2024, 31337} {
				s := newSim(tt.root, seed)
				for i := 0; i < 600; i++ {
					s.Tick()
					if i < 50 {
						continue
					}
					for _, n := range s.Nodes() {
						if n.Level == layout.LevelRoot {
							continue
						}
						if !n.Sector.Contains(n.Bearing(), tt.eps) {
							t.Fatalf("seed %d tick %d: %s bearing %.3f outside sector %+v by more than %.2f",
								seed, i, n.ID, n.Bearing(), n.Sector, tt.eps)
						}
					}
				}
			}
		})
	}
}

func TestRadiusOrdering(t *testing.T) {
	s := newSim(threeBranches(), 7)
	s.TickN(500)
	idx := s.Index()
	nodes := s.Nodes()
	for i, n := range nodes {
		if n.Level != layout.LevelSecondary {
			continue
		}
		p := nodes[idx.Parent(i)]
		if n.Radius() <= p.Radius() {
			t.Errorf("%s radius %.1f not beyond parent %s radius %.1f", n.ID, n.Radius(), p.ID, p.Radius())
		}
	}
}

func TestDeterministic(t *testing.T) {
	run := func() []layout.Node {
		s := newSim(threeBranches(), 99)
		s.TickN(30)
		s.Redraw(prng.New(1234))
		s.TickN(30)
		return s.Nodes()
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("runs differ (-a +b):\n%s", diff)
	}
}

func TestRedrawDrawOrder(t *testing.T) {
	s := newSim(scenario(), 3)
	s.Redraw(prng.New(77))

	r := prng.New(77)
	for _, n := range s.Nodes() {
		if n.Level == layout.LevelRoot {
			continue
		}
		angle := n.Angle + prng.Centered(r, 0.3)
		radius := n.TargetRadius + prng.Centered(r, 30)
		vx, vy := prng.Centered(r, 2), prng.Centered(r, 2)
		if n.X != math.Cos(angle)*radius || n.Y != math.Sin(angle)*radius {
			t.Errorf("%s position = (%v, %v)", n.ID, n.X, n.Y)
		}
		if n.VX != vx || n.VY != vy {
			t.Errorf("%s velocity = (%v, %v), want (%v, %v)", n.ID, n.VX, n.VY, vx, vy)
		}
	}
	if s.Alpha() != 1 || s.Phase() != PhaseRedrawing || !s.Running() {
		t.Errorf("alpha=%v phase=%v running=%v", s.Alpha(), s.Phase(), s.Running())
	}
}

func TestRedrawPhaseEnds(t *testing.T) {
	s := newSim(scenario(), 3)
	s.Redraw(prng.New(1))
	ticks := 0
	for s.Phase() == PhaseRedrawing && ticks < 1000 {
		s.Tick()
		ticks++
	}
	if s.Phase() != PhaseSettling {
		t.Fatalf("still %s after %d ticks", s.Phase(), ticks)
	}
	if s.Alpha() > 0.3 {
		t.Errorf("alpha = %v, want <= 0.3", s.Alpha())
	}
}

func TestAlphaSchedule(t *testing.T) {
	s := newSim(scenario(), 1)
	s.Tick()
	want := 0.3 + (0.008-0.3)*0.005
	if math.Abs(s.Alpha()-want) > 1e-15 {
		t.Errorf("alpha = %v, want %v", s.Alpha(), want)
	}
	if math.Abs(s.Time()-force.ClockStep) > 1e-15 {
		t.Errorf("time = %v, want %v", s.Time(), force.ClockStep)
	}

	// The default floor equals the target, so the map never stops.
	s.TickN(3000)
	if !s.Running() || s.Alpha() < 0.008 {
		t.Errorf("running=%v alpha=%v", s.Running(), s.Alpha())
	}
}

func TestStopsBelowAlphaMin(t *testing.T) {
	l := layout.Plan(scenario(), layout.Options{}, prng.New(1))
	p := DefaultParams()
	p.AlphaMin = 0.1
	p.AlphaDecay = 0.5
	p.AlphaTarget = 0.001
	s := New(l.Nodes, force.NewComposer(), p, nil)

	if n := s.TickN(100); n != 2 {
		t.Errorf("ran %d ticks, want 2", n)
	}
	if s.Running() || s.Tick() {
		t.Error("simulation still running")
	}
	s.Restart()
	if !s.Tick() {
		t.Error("restart did not resume")
	}
}

func TestDrag(t *testing.T) {
	s := newSim(scenario(), 8)

	if err := s.Grab(layout.RootID); !errors.Is(err, errors.ErrCodeNodePinned) {
		t.Errorf("grab root: %v", err)
	}
	if err := s.Grab("nope"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("grab unknown: %v", err)
	}

	if err := s.Grab("l1_0"); err != nil {
		t.Fatalf("grab: %v", err)
	}
	if s.Phase() != PhaseDragging || s.AlphaTarget() != 0.3 {
		t.Errorf("phase=%v target=%v", s.Phase(), s.AlphaTarget())
	}
	if err := s.Move("l1_0", 50, -20); err != nil {
		t.Fatalf("move: %v", err)
	}
	s.TickN(5)
	if n, _ := s.Node("l1_0"); n.X != 50 || n.Y != -20 {
		t.Errorf("dragged node at (%v, %v), want (50, -20)", n.X, n.Y)
	}
	if err := s.Move("l1_1", 1, 1); err == nil {
		t.Error("moving a node that is not held should fail")
	}

	// A second grab releases the first.
	if err := s.Grab("l1_1"); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Node("l1_0"); n.Fixed {
		t.Error("previous drag still pinned")
	}
	if id, ok := s.Grabbed(); !ok || id != "l1_1" {
		t.Errorf("grabbed = %q, %v", id, ok)
	}

	s.Release("l1_0") // not held
	if _, ok := s.Grabbed(); !ok {
		t.Error("releasing another node dropped the drag")
	}
	s.Release("l1_1")
	s.Release("l1_1")
	if n, _ := s.Node("l1_1"); n.Fixed {
		t.Error("released node still pinned")
	}
	if s.Phase() != PhaseSettling || s.AlphaTarget() != 0.02 {
		t.Errorf("phase=%v target=%v", s.Phase(), s.AlphaTarget())
	}
}

func TestNodesReturnsCopy(t *testing.T) {
	s := newSim(scenario(), 1)
	nodes := s.Nodes()
	nodes[1].X = 1e6
	if n, _ := s.Node(nodes[1].ID); n.X == 1e6 {
		t.Error("Nodes exposed internal state")
	}
}
