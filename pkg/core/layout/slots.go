package layout

import (
	"math"

	"github.com/matzehuels/interestmap/pkg/core/prng"
)

// preferredSlots are the first angles handed out by rank. Dense branches are
// spread to opposite sides before the gaps between them are filled.
var preferredSlots = [...]float64{
	0,
	math.Pi,
	-math.Pi / 6,
	math.Pi + math.Pi/6,
	math.Pi / 6,
	math.Pi - math.Pi/6,
	-math.Pi / 3,
	math.Pi + math.Pi/3,
	math.Pi / 3,
}

// rankBands are the [start, end) rank ranges shuffled independently, and the
// child count from which each band takes part.
var rankBands = [...]struct{ start, end, minCount int }{
	{0, 2, 2},
	{2, 6, 6},
	{6, -1, 9},
}

// SlotAngles returns the base angle for each of n ranked slots, before any
// rotation, jitter or shuffling. Rank 0 is at 0 and rank 1 at π.
func SlotAngles(n int) []float64 {
	if n <= 0 {
		return nil
	}
	step := 2 * math.Pi / float64(n)
	out := make([]float64, n)
	for i := range out {
		if i < len(preferredSlots) {
			out[i] = preferredSlots[i]
		} else {
			out[i] = -math.Pi/2 + step*float64(i)
		}
	}
	return out
}

// assignSlots draws the global rotation and per-slot jitter, then shuffles
// within rank bands. It consumes rng in a fixed order: rotation, one jitter
// per slot, then the band shuffles.
func assignSlots(n int, rng prng.Source) (slots []float64, rotation float64) {
	rotation = prng.Centered(rng, math.Pi*0.5)
	slots = SlotAngles(n)
	for i := range slots {
		slots[i] += rotation + prng.Centered(rng, 0.3)
	}
	for _, b := range rankBands {
		if n < b.minCount {
			continue
		}
		end := b.end
		if end < 0 || end > n {
			end = n
		}
		shuffleRange(slots, b.start, end, rng)
	}
	return slots, rotation
}

// shuffleRange performs a Fisher-Yates shuffle of s[start:end], walking down
// from the top of the range.
func shuffleRange(s []float64, start, end int, rng prng.Source) {
	for i := end - 1; i > start; i-- {
		j := start + prng.Intn(rng, i-start+1)
		s[i], s[j] = s[j], s[i]
	}
}

// permutation returns a Fisher-Yates permutation of [0, n).
func permutation(n int, rng prng.Source) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for k := n - 1; k > 0; k-- {
		j := prng.Intn(rng, k+1)
		order[k], order[j] = order[j], order[k]
	}
	return order
}
