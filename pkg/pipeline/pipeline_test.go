package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/interestmap/pkg/cache"
	"github.com/matzehuels/interestmap/pkg/core/tree"
	"github.com/matzehuels/interestmap/pkg/errors"
	"github.com/matzehuels/interestmap/pkg/graph"
)

var sampleTree = tree.Entity{
	Name: "Me",
	Children: []tree.Entity{
		{Name: "Music", Children: []tree.Entity{{Name: "Jazz"}, {Name: "Piano"}}},
		{Name: "Climbing", Children: []tree.Entity{{Name: "Bouldering", Children: []tree.Entity{{Name: "Fontainebleau"}}}}},
		{Name: "Go"},
	},
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}

	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Seed != DefaultSeed || opts.Ticks != DefaultTicks || opts.Map.Seed != DefaultSeed {
		t.Errorf("seed/ticks = %v/%v/%v", opts.Seed, opts.Ticks, opts.Map.Seed)
	}
	if diff := cmp.Diff([]string{"json"}, opts.Formats); diff != "" {
		t.Errorf("formats (-want +got):\n%s", diff)
	}
	if opts.Logger == nil {
		t.Error("logger not defaulted")
	}

	bad := Options{Ticks: MaxTicks + 1}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("expected tick limit error")
	}
	bad = Options{Formats: []string{"pdf"}}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("expected format error")
	}
}

func TestSnapshotKeyOptsIgnoresRuntimeFields(t *testing.T) {
	a := Options{Seed: 1}
	b := Options{Seed: 1}
	b.Map.TickInterval = 1
	a.SetDefaults()
	b.SetDefaults()
	ka, _ := a.SnapshotKeyOpts()
	kb, _ := b.SnapshotKeyOpts()
	if ka != kb {
		t.Errorf("keys differ: %+v vs %+v", ka, kb)
	}

	c := Options{Seed: 1, Map: b.Map}
	c.Map.RadialStrength = 0.9
	c.SetDefaults()
	kc, _ := c.SnapshotKeyOpts()
	if kc.OptionsHash == ka.OptionsHash {
		t.Error("changed map options should change the key")
	}
}

func TestSettle(t *testing.T) {
	opts := Options{Ticks: 50}
	opts.SetDefaults()
	snap, err := Settle(sampleTree, opts)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Tick != 50 || snap.MapID != "" || snap.Seed != DefaultSeed {
		t.Errorf("tick=%d map_id=%q seed=%d", snap.Tick, snap.MapID, snap.Seed)
	}
	// Me, three primaries, three secondaries; Fontainebleau is too deep.
	if len(snap.Nodes) != 7 || snap.Dropped != 1 {
		t.Errorf("nodes=%d dropped=%d", len(snap.Nodes), snap.Dropped)
	}

	again, _ := Settle(sampleTree, opts)
	if diff := cmp.Diff(snap, again); diff != "" {
		t.Errorf("settle not deterministic (-first +second):\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	opts := Options{Ticks: 10, Formats: []string{"json", "dot"}, Rings: true}
	opts.SetDefaults()
	snap, _ := Settle(sampleTree, opts)

	artifacts, err := Render(snap, opts)
	if err != nil {
		t.Fatal(err)
	}
	got, err := graph.UnmarshalSnapshot(artifacts["json"])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("json artifact mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(artifacts["dot"]), `"ring_0"`) {
		t.Errorf("dot artifact missing rings:\n%s", artifacts["dot"])
	}

	if _, err := Render(snap, Options{Formats: []string{"gif"}}); err == nil {
		t.Error("expected unsupported format error")
	}
}

func TestRunnerCaches(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	opts := Options{Seed: 7, Ticks: 40, Formats: []string{"json", "dot"}}
	first, err := r.Execute(ctx, sampleTree, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.SnapshotHit || first.CacheInfo.RenderHit {
		t.Errorf("cold run hit the cache: %+v", first.CacheInfo)
	}
	if first.Stats.NodeCount != 7 || first.Stats.Ticks != 40 || first.TreeHash == "" {
		t.Errorf("stats = %+v", first.Stats)
	}

	second, err := r.Execute(ctx, sampleTree, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.SnapshotHit || !second.CacheInfo.RenderHit {
		t.Errorf("warm run missed the cache: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts["dot"], second.Artifacts["dot"]) {
		t.Error("cached artifact differs")
	}

	opts.Refresh = true
	third, _ := r.Execute(ctx, sampleTree, opts)
	if third.CacheInfo.SnapshotHit {
		t.Error("refresh should bypass the snapshot cache")
	}

	opts.Refresh = false
	opts.Seed = 8
	fourth, _ := r.Execute(ctx, sampleTree, opts)
	if fourth.CacheInfo.SnapshotHit {
		t.Error("different seed hit the cache")
	}
}

func TestRunnerExecuteFile(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	path := filepath.Join(t.TempDir(), "me.yaml")
	os.WriteFile(path, []byte("name: Me\nchildren:\n  - name: Go\n"), 0o644)

	res, err := r.ExecuteFile(context.Background(), path, Options{Ticks: 5})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.NodeCount != 2 {
		t.Errorf("nodes = %d", res.Stats.NodeCount)
	}

	_, err = r.ExecuteFile(context.Background(), filepath.Join(t.TempDir(), "none.json"), Options{})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v", err)
	}
}
