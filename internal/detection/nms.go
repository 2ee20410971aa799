package detection

import "sort"

// DefaultOverlapThreshold is the overlap ratio above which a box is suppressed.
const DefaultOverlapThreshold = 0.5

// OverlapRatio returns area(kept ∩ b) / area(b).
//
// The ratio is relative to the candidate b, not the union, so it is not
// symmetric. A degenerate candidate with no area counts as fully covered.
func OverlapRatio(kept, b BoundingBox) float64 {
	area := b.Area()
	if area <= 0 {
		return 1
	}

	ix1 := max(kept.X1, b.X1)
	iy1 := max(kept.Y1, b.Y1)
	ix2 := min(kept.X2, b.X2)
	iy2 := min(kept.Y2, b.Y2)

	inter := max(ix2-ix1, 0) * max(iy2-iy1, 0)
	return float64(inter) / float64(area)
}

// Suppress performs greedy non-maximum suppression.
//
// Parameters:
//   - boxes: Candidate boxes. The slice is not modified.
//   - overlapThresh: Maximum tolerated OverlapRatio, in [0, 1].
//
// Returns the surviving boxes in the order they were kept.
//
// # Algorithm
//
//  1. Stable-sort a copy by Y2 descending.
//  2. Take the last box (smallest Y2) and keep it.
//  3. Drop every remaining box whose overlap ratio against the kept box
//     exceeds overlapThresh.
//  4. Repeat until no boxes remain.
//
// Boxes sharing a Y2 stay in input order after the sort, so among them the
// one supplied last is kept first. No two surviving boxes b, c with c kept
// after b have OverlapRatio(b, c) > overlapThresh.
func Suppress(boxes []BoundingBox, overlapThresh float64) []BoundingBox {
	remaining := make([]BoundingBox, len(boxes))
	copy(remaining, boxes)
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Y2 > remaining[j].Y2
	})

	kept := make([]BoundingBox, 0)
	for len(remaining) > 0 {
		current := remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
		kept = append(kept, current)

		n := 0
		for _, b := range remaining {
			if OverlapRatio(current, b) <= overlapThresh {
				remaining[n] = b
				n++
			}
		}
		remaining = remaining[:n]
	}
	return kept
}
