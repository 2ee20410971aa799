package layout

import (
	"sort"

	"github.com/ironsheep/solitaire-vision/internal/detection"
)

// DefaultRowStep is the vertical pitch between stacked tableau cards, in pixels.
const DefaultRowStep = 40

// GroupRows splits the boxes of one zone into horizontal rows.
//
// Boxes are stable-sorted by vertical centre first. Scanning top to bottom,
// the current row covers the bucket [start, start+step), beginning with
// [0, step). A box whose centre falls in the bucket joins the row; any other
// box closes the row and opens a new one whose bucket starts at
// floor(centre/step)*step. Each row is then ordered by X1, left to right.
//
// Rows are never empty. The input slice is not modified. A non-positive step
// falls back to DefaultRowStep.
func GroupRows(boxes []detection.BoundingBox, step int) [][]detection.BoundingBox {
	if step <= 0 {
		step = DefaultRowStep
	}

	sorted := make([]detection.BoundingBox, len(boxes))
	copy(sorted, boxes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CenterY() < sorted[j].CenterY()
	})

	rows := make([][]detection.BoundingBox, 0)
	var current []detection.BoundingBox
	start := 0
	for _, b := range sorted {
		c := b.CenterY()
		if c >= start && c < start+step {
			current = append(current, b)
			continue
		}
		if len(current) > 0 {
			rows = append(rows, current)
		}
		start = floorDiv(c, step) * step
		current = []detection.BoundingBox{b}
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].X1 < row[j].X1
		})
	}
	return rows
}

// Flatten concatenates rows back into one slice, row by row.
func Flatten(rows [][]detection.BoundingBox) []detection.BoundingBox {
	out := make([]detection.BoundingBox, 0)
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
