package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/interestmap/pkg/core/layout"
	"github.com/matzehuels/interestmap/pkg/graph"
)

// Node glyphs per level.
const (
	glyphRoot     = '@'
	glyphPrimary  = '●'
	glyphSecond   = '•'
	glyphTertiary = '∙'
	glyphSelected = '◉'
	glyphRing     = '·'
	glyphLink     = '.'
)

// canvasOptions controls how a snapshot is drawn into terminal cells.
type canvasOptions struct {
	Cols, Rows int
	Selected   string
	Subtree    map[string]bool // nodes below Selected, drawn highlighted
	HotRing    int             // highlighted ring index, -1 for none
	Labels     bool
}

type cell struct {
	ch    rune
	color lipgloss.Color
	bold  bool
}

// plot rasterises snap. Terminal cells are about twice as tall as wide, so
// one map unit spans half as many rows as columns.
func plot(snap graph.Snapshot, o canvasOptions) [][]cell {
	if o.Cols <= 0 || o.Rows <= 0 {
		return nil
	}
	grid := make([][]cell, o.Rows)
	for r := range grid {
		grid[r] = make([]cell, o.Cols)
		for c := range grid[r] {
			grid[r][c].ch = ' '
		}
	}

	extent := 1.0
	for _, ring := range snap.Rings {
		extent = max(extent, ring)
	}
	for _, n := range snap.Nodes {
		extent = max(extent, math.Abs(n.X), math.Abs(n.Y))
	}
	extent *= 1.05

	cx, cy := float64(o.Cols-1)/2, float64(o.Rows-1)/2
	unit := min(cx/extent, 2*cy/extent)
	toCell := func(x, y float64) (int, int) {
		return int(math.Round(cx + x*unit)), int(math.Round(cy + y*unit/2))
	}
	set := func(c, r int, v cell) {
		if r >= 0 && r < o.Rows && c >= 0 && c < o.Cols {
			grid[r][c] = v
		}
	}

	for i, radius := range snap.Rings {
		color := colorDim
		if i == o.HotRing {
			color = colorCyan
		}
		steps := max(16, int(radius*unit*2*math.Pi))
		for s := range steps {
			a := 2 * math.Pi * float64(s) / float64(steps)
			c, r := toCell(radius*math.Cos(a), radius*math.Sin(a))
			set(c, r, cell{ch: glyphRing, color: color})
		}
	}

	for _, l := range snap.Links {
		c0, r0 := toCell(l.X1, l.Y1)
		c1, r1 := toCell(l.X2, l.Y2)
		color := colorGray
		if o.Subtree[l.Target] {
			color = lipgloss.Color(l.Color)
		}
		line(c0, r0, c1, r1, func(c, r int) {
			set(c, r, cell{ch: glyphLink, color: color})
		})
	}

	for _, n := range snap.Nodes {
		c, r := toCell(n.X, n.Y)
		v := cell{ch: nodeGlyph(n.Level), color: lipgloss.Color(n.Color)}
		if n.Level == layout.LevelRoot {
			v.color, v.bold = colorWhite, true
		}
		if o.Subtree[n.ID] {
			v.bold = true
		}
		if n.ID == o.Selected {
			v.ch, v.bold = glyphSelected, true
		}
		set(c, r, v)

		if (o.Labels && n.Level == layout.LevelPrimary) || n.ID == o.Selected {
			label := []rune(" " + n.Name)
			for i, ch := range label {
				set(c+1+i, r, cell{ch: ch, color: colorWhite, bold: n.ID == o.Selected})
			}
		}
	}
	return grid
}

func nodeGlyph(level int) rune {
	switch level {
	case layout.LevelRoot:
		return glyphRoot
	case layout.LevelPrimary:
		return glyphPrimary
	case layout.LevelSecondary:
		return glyphSecond
	default:
		return glyphTertiary
	}
}

// line walks the cells between two points, endpoints excluded.
func line(c0, r0, c1, r1 int, fn func(c, r int)) {
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := sign(c1-c0), sign(r1-r0)
	e := dc + dr
	c, r := c0, r0
	for c != c1 || r != r1 {
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c += sc
		}
		if e2 <= dc {
			e += dc
			r += sr
		}
		if c == c1 && r == r1 {
			return
		}
		fn(c, r)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// renderCanvas draws snap as styled terminal text.
func renderCanvas(snap graph.Snapshot, o canvasOptions) string {
	grid := plot(snap, o)
	var b strings.Builder
	for r, row := range grid {
		if r > 0 {
			b.WriteByte('\n')
		}
		for _, v := range row {
			if v.ch == ' ' {
				b.WriteByte(' ')
				continue
			}
			style := lipgloss.NewStyle().Foreground(v.color).Bold(v.bold)
			b.WriteString(style.Render(string(v.ch)))
		}
	}
	return b.String()
}
