package contour

import "sort"

// Rank returns a copy of cs sorted by descending area. Contours of equal area
// keep their input order. Parent indices are rewritten to the new positions.
func Rank(cs []Contour) []Contour {
	order := make([]int, len(cs))
	areas := make([]float64, len(cs))
	for i, c := range cs {
		order[i] = i
		areas[i] = c.Area()
	}
	sort.SliceStable(order, func(a, b int) bool {
		return areas[order[a]] > areas[order[b]]
	})
	return reorder(cs, order)
}

// Filter returns the contours whose area lies strictly between min and max.
// Filtering applies only when both bounds are set; otherwise cs is returned
// unchanged. Parents that do not survive the filter become -1.
func Filter(cs []Contour, min, max *float64) []Contour {
	if min == nil || max == nil {
		return cs
	}

	keep := make([]int, 0, len(cs))
	for i, c := range cs {
		if a := c.Area(); a > *min && a < *max {
			keep = append(keep, i)
		}
	}
	return reorder(cs, keep)
}

// Top returns the first k contours of cs. A k of zero or less, or one larger
// than the slice, returns cs unchanged.
func Top(cs []Contour, k int) []Contour {
	if k <= 0 || k >= len(cs) {
		return cs
	}
	return reorder(cs, firstN(k))
}

func firstN(k int) []int {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// reorder builds a new slice holding cs[order[0]], cs[order[1]], ... and
// remaps parent indices into it.
func reorder(cs []Contour, order []int) []Contour {
	position := make(map[int]int, len(order))
	for newIdx, oldIdx := range order {
		position[oldIdx] = newIdx
	}

	out := make([]Contour, len(order))
	for newIdx, oldIdx := range order {
		c := cs[oldIdx]
		if p, ok := position[c.Parent]; ok && c.Parent >= 0 {
			c.Parent = p
		} else {
			c.Parent = -1
		}
		out[newIdx] = c
	}
	return out
}
