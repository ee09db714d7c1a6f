package graph

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	labelGap     = 10
	labelBase    = 4  // baseline nudge for side labels
	labelAbove   = 14 // extra clearance for labels below the dot
	lineSpacing  = 6  // upward shift per extra line for labels above the dot
	wrapMinChars = 13
)

// PlaceLabel chooses where a node's label goes so it points away from the
// centre: to the right of nodes on the east side, below nodes in the south,
// to the left in the west and above in the north. Multi-word names longer
// than twelve characters are split one word per line.
func PlaceLabel(x, y float64, name string, scale float64) Label {
	a := math.Atan2(y, x)
	if a < 0 {
		a += 2 * math.Pi
	}

	var l Label
	switch {
	case a < math.Pi/4 || a > 7*math.Pi/4:
		l = Label{Anchor: AnchorStart, X: labelGap, Y: labelBase}
	case a < 3*math.Pi/4:
		l = Label{Anchor: AnchorMiddle, X: 0, Y: labelGap + labelAbove}
	case a < 5*math.Pi/4:
		l = Label{Anchor: AnchorEnd, X: -labelGap, Y: labelBase}
	default:
		l = Label{Anchor: AnchorMiddle, X: 0, Y: -labelGap - labelBase}
	}

	words := strings.Split(name, " ")
	if len(words) > 1 && utf8.RuneCountInString(name) >= wrapMinChars {
		l.Lines = words
		if l.Anchor == AnchorMiddle && l.Y < 0 {
			l.Y -= float64(len(words)-1) * lineSpacing
		}
	}
	if scale != 0 && scale != 1 {
		l.Scale = scale
	}
	return l
}
