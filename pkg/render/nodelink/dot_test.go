package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/interestmap/pkg/core/layout"
	"github.com/matzehuels/interestmap/pkg/graph"
)

func sampleSnapshot() graph.Snapshot {
	return graph.Snapshot{
		Header: graph.Header{Title: "Me", AvatarSize: 56, Rings: []float64{100, 200}},
		Nodes: []graph.Node{
			{ID: layout.RootID, Name: "Me", Level: 0, Color: "#3B82F6"},
			{ID: "l1_0", Name: "Music", Level: 1, X: 160, Y: 20, Color: "#8B5CF6", Radius: 2.5,
				Label: &graph.Label{Anchor: graph.AnchorStart}},
			{ID: "l2_0_0", Name: "Modern jazz piano", Level: 2, X: 0, Y: 280, Color: "#8B5CF6", Radius: 2,
				Label: &graph.Label{Anchor: graph.AnchorMiddle, Lines: []string{"Modern", "jazz", "piano"}}},
		},
		Links: []graph.Link{
			{Source: layout.RootID, Target: "l1_0", Color: "#8B5CF6", Opacity: 0.7},
			{Source: "l1_0", Target: "l2_0_0", Color: "teal", Opacity: 0.5},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleSnapshot(), Options{})

	for _, want := range []string{
		"graph G {",
		`"center" [pos="0.00,0.00!", fillcolor="#3B82F6", tooltip="Me", label="Me", fontcolor=white, width=0.7778]`,
		`"l1_0" [pos="160.00,-20.00!"`,
		`"center" -- "l1_0" [color="#8B5CF6b3"]`,
		`"l1_0" -- "l2_0_0" [color="teal"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "ring_") || strings.Contains(dot, "xlabel") {
		t.Errorf("rings or labels emitted without being requested:\n%s", dot)
	}
}

func TestToDOTOptions(t *testing.T) {
	dot := ToDOT(sampleSnapshot(), Options{Rings: true, Labels: true})

	for _, want := range []string{
		`"ring_0" [pos="0,0!", width=2.7778`,
		`"ring_1" [pos="0,0!", width=5.5556`,
		`xlabel="Music"`,
		`xlabel="Modern\njazz\npiano"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestWithAlpha(t *testing.T) {
	tests := []struct {
		color   string
		opacity float64
		want    string
	}{
		{"#8B5CF6", 0.5, "#8B5CF680"},
		{"#8B5CF6", 1, "#8B5CF6"},
		{"#abc", 0.5, "#abc"},
		{"teal", 0.4, "teal"},
	}
	for _, tt := range tests {
		if got := withAlpha(tt.color, tt.opacity); got != tt.want {
			t.Errorf("withAlpha(%q, %v) = %q, want %q", tt.color, tt.opacity, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(sampleSnapshot(), Options{Rings: true, Labels: true}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(`not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
