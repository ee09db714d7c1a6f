package force

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matzehuels/interestmap/pkg/core/layout"
	"github.com/matzehuels/interestmap/pkg/core/prng"
)

func ctxOf(nodes ...layout.Node) *Context {
	return NewContext(nodes, prng.New(5))
}

func root() layout.Node {
	return layout.Node{ID: layout.RootID, Level: layout.LevelRoot, Fixed: true}
}

func primary(id string, x, y float64) layout.Node {
	return layout.Node{
		ID: id, Level: layout.LevelPrimary, Parent: layout.RootID, Root: id,
		X: x, Y: y, TargetRadius: 160, Angle: math.Atan2(y, x),
		Sector: layout.Sector{Min: -0.5, Max: 0.5, Center: 0},
	}
}

func TestStandardOrder(t *testing.T) {
	c := Standard(Config{RadialStrength: 0.6, CollisionRadius: 45, AvatarSize: 56})
	want := []string{"link", "collision", "radial", "angular", "sector", "sibling", "floating", "level1Repulsion"}
	if diff := cmp.Diff(want, c.Names()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	r, ok := c.Get(NameRadial)
	if !ok || r.(*Radial).MinRadius != 78 {
		t.Errorf("radial = %+v", r)
	}
}

func TestComposerRegisterRemove(t *testing.T) {
	var calls []string
	rec := func(name string) Force {
		return Func(func(*Context, float64) { calls = append(calls, name) })
	}
	c := NewComposer().Register("a", rec("a")).Register("b", rec("b")).Register("c", rec("c"))
	c.Register("a", rec("a2"))
	c.Remove("b")
	c.Remove("missing")
	c.Apply(ctxOf(), 1)
	if diff := cmp.Diff([]string{"a2", "c"}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRepulsionSymmetry(t *testing.T) {
	ctx := ctxOf(root(), primary("a", 100, 0), primary("b", 130, 40))
	NewRepulsion().Apply(ctx, 0.3)

	a, b := ctx.Nodes[1], ctx.Nodes[2]
	if a.VX == 0 && a.VY == 0 {
		t.Fatal("no repulsion applied")
	}
	if a.VX != -b.VX || a.VY != -b.VY {
		t.Errorf("asymmetric: a=(%v,%v) b=(%v,%v)", a.VX, a.VY, b.VX, b.VY)
	}
	if b.VX <= 0 {
		t.Errorf("b should move away from a, vx=%v", b.VX)
	}
}

func TestRepulsionIgnoresDistantAndSecondary(t *testing.T) {
	far := ctxOf(root(), primary("a", 100, 0), primary("b", 300, 0))
	NewRepulsion().Apply(far, 1)
	if far.Nodes[1].VX != 0 || far.Nodes[2].VX != 0 {
		t.Error("distant pair repelled")
	}

	c := primary("c", 110, 0)
	c.Level = layout.LevelSecondary
	c.Parent = "a"
	mixed := ctxOf(root(), primary("a", 100, 0), c)
	NewRepulsion().Apply(mixed, 1)
	if mixed.Nodes[2].VX != 0 {
		t.Error("level-2 node repelled")
	}
}

func TestRadial(t *testing.T) {
	t.Run("pulls outward", func(t *testing.T) {
		ctx := ctxOf(root(), primary("a", 100, 0))
		NewRadial(0.6, 78).Apply(ctx, 0.3)
		// (160-100)/100 * 0.6 * 0.3 * 1.5 * 100
		if got, want := ctx.Nodes[1].VX, 16.2; math.Abs(got-want) > 1e-9 {
			t.Errorf("vx = %v, want %v", got, want)
		}
	})
	t.Run("escapes origin", func(t *testing.T) {
		n := primary("a", 0.2, 0.2)
		n.Angle = math.Pi / 2
		ctx := ctxOf(root(), n)
		NewRadial(0.6, 78).Apply(ctx, 0.3)
		got := ctx.Nodes[1]
		if math.Abs(got.X) > 1e-9 || math.Abs(got.Y-10) > 1e-9 {
			t.Errorf("position = (%v, %v), want (0, 10)", got.X, got.Y)
		}
		if got.VX != 0 || got.VY != 0 {
			t.Error("velocity changed on escape")
		}
	})
	t.Run("root untouched", func(t *testing.T) {
		ctx := ctxOf(root())
		NewRadial(0.6, 78).Apply(ctx, 1)
		if ctx.Nodes[0].X != 0 || ctx.Nodes[0].Y != 0 {
			t.Error("root moved")
		}
	})
}

func TestAngularTangential(t *testing.T) {
	n := primary("a", 100, 0)
	n.Angle = 0.2
	ctx := ctxOf(root(), n)
	NewAngular().Apply(ctx, 1)
	got := ctx.Nodes[1]
	if math.Abs(got.VX) > 1e-12 {
		t.Errorf("radial component %v, want 0", got.VX)
	}
	if want := 0.2 * 100 * 0.15; math.Abs(got.VY-want) > 1e-9 {
		t.Errorf("vy = %v, want %v", got.VY, want)
	}
}

func TestSector(t *testing.T) {
	inside := ctxOf(root(), primary("a", 100, 10))
	NewSector().Apply(inside, 1)
	if inside.Nodes[1].VX != 0 || inside.Nodes[1].VY != 0 {
		t.Error("node inside sector was pushed")
	}

	// Bearing 1.0 is beyond Max 0.5: expect a clockwise push.
	out := primary("a", 100*math.Cos(1), 100*math.Sin(1))
	ctx := ctxOf(root(), out)
	NewSector().Apply(ctx, 1)
	n := ctx.Nodes[1]
	tangential := -math.Sin(1)*n.VX + math.Cos(1)*n.VY
	if want := -0.5 * 100 * 0.4; math.Abs(tangential-want) > 1e-9 {
		t.Errorf("tangential push = %v, want %v", tangential, want)
	}
}

func TestLevelTablesSkipUnknownLevels(t *testing.T) {
	n := primary("deep", 100, 0)
	n.Level = 3
	n.Angle = 1
	ctx := ctxOf(root(), n)
	NewAngular().Apply(ctx, 1)
	NewSector().Apply(ctx, 1)
	NewRadial(0.6, 78).Apply(ctx, 1)
	if ctx.Nodes[1].VX != 0 || ctx.Nodes[1].VY != 0 {
		t.Errorf("level 3 node moved: %+v", ctx.Nodes[1])
	}
}

func TestSibling(t *testing.T) {
	a := primary("a", 160, 0)
	c1 := layout.Node{ID: "c1", Level: layout.LevelSecondary, Parent: "a", X: 280, Y: -40}
	c2 := layout.Node{ID: "c2", Level: layout.LevelSecondary, Parent: "a", X: 280, Y: 40}
	ctx := ctxOf(root(), a, c1, c2)
	NewSibling().Apply(ctx, 1)

	// centroid (280,0) blended with (288,0)
	cx := 280*0.5 + 288*0.5
	want := (cx - 280) * 0.12
	for _, n := range ctx.Nodes[2:] {
		if math.Abs(n.VX-want) > 1e-9 {
			t.Errorf("%s vx = %v, want %v", n.ID, n.VX, want)
		}
	}
	if ctx.Nodes[2].VY != -ctx.Nodes[3].VY {
		t.Error("siblings not pulled symmetrically toward centroid")
	}
	if ctx.Nodes[1].VX != 0 {
		t.Error("lone level-1 child pulled")
	}
}

func TestFloatingUsesClock(t *testing.T) {
	f := NewFloating()
	ctx := ctxOf(root(), primary("a", 100, 0))
	ctx.Time = ClockStep
	f.Apply(ctx, 1)
	p := 0.7
	tm := ClockStep
	wantX := math.Sin(tm+p) * math.Cos(tm*0.5+p*1.3) * 2
	if math.Abs(ctx.Nodes[1].VX-wantX) > 1e-12 {
		t.Errorf("vx = %v, want %v", ctx.Nodes[1].VX, wantX)
	}
	if ctx.Nodes[0].VX != 0 {
		t.Error("root drifted")
	}
}

func TestLinkConservesMomentumAtEqualDegree(t *testing.T) {
	a := primary("a", 100, 0)
	b := layout.Node{ID: "b", Level: layout.LevelSecondary, Parent: "a", X: 400, Y: 0, TargetRadius: 280}
	ctx := ctxOf(a, b)
	ctx.Nodes[0].Parent = ""
	ctx.Reindex()
	NewLink().Apply(ctx, 1)

	// Both have degree 1, so the correction is split evenly. Rest length is
	// 0.6*120 = 72; the spring is stretched to 300.
	want := (300.0 - 72) / 300 * 0.5 * 300 * 0.5
	if math.Abs(ctx.Nodes[1].VX+want) > 1e-9 || math.Abs(ctx.Nodes[0].VX-want) > 1e-9 {
		t.Errorf("vx = (%v, %v), want (%v, %v)", ctx.Nodes[0].VX, ctx.Nodes[1].VX, want, -want)
	}
}

func TestCollideSeparates(t *testing.T) {
	ctx := ctxOf(primary("a", 100, 0), primary("b", 130, 0))
	NewCollide(45).Apply(ctx, 1)
	a, b := ctx.Nodes[0], ctx.Nodes[1]
	if a.VX >= 0 || b.VX <= 0 {
		t.Errorf("not separated: a.vx=%v b.vx=%v", a.VX, b.VX)
	}
	if math.Abs(a.VX+b.VX) > 1e-9 {
		t.Errorf("asymmetric: %v vs %v", a.VX, b.VX)
	}
}
