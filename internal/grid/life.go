package grid

import "github.com/bethropolis/cellundo/internal/types"

var neighbours = [8]types.Cell{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// nextGeneration computes one step of rule over the live cells.
// Births outside the editing limits are dropped.
func nextGeneration(live map[types.Cell]struct{}, rule Rule) map[types.Cell]struct{} {
	counts := make(map[types.Cell]int, len(live)*4)
	for c := range live {
		for _, d := range neighbours {
			counts[types.Cell{X: c.X + d.X, Y: c.Y + d.Y}]++
		}
	}

	next := make(map[types.Cell]struct{}, len(live))
	for c, n := range counts {
		_, alive := live[c]
		if (alive && rule.Survive[n]) || (!alive && rule.Birth[n]) {
			if inLimits(c.X, c.Y) {
				next[c] = struct{}{}
			}
		}
	}
	// isolated cells never show up in counts
	if rule.Survive[0] {
		for c := range live {
			if _, counted := counts[c]; !counted {
				next[c] = struct{}{}
			}
		}
	}
	return next
}

func inLimits(x, y int) bool {
	return x >= -Limit && x <= Limit && y >= -Limit && y <= Limit
}
