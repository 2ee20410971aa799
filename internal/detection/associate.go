package detection

import "math"

// Associate pairs each rank box with its nearest suit box.
//
// A suit is a candidate when it overlaps the rank vertically
// (suit.Y1 <= card.Y2 && suit.Y2 >= card.Y1). Among candidates the one with
// the smallest |suit.X1 - card.X2| wins; on equal distance the suit appearing
// first in suits wins. The rank's label becomes "<rank> <suit>", or stays bare
// when no suit qualifies.
//
// A suit box may be claimed by several ranks. Cards stacked in a tableau
// column can share a suit glyph's vertical band, and no exclusivity is
// enforced.
//
// The input slices are not modified; the returned slice has one entry per
// card, in input order.
func Associate(cards, suits []BoundingBox) []BoundingBox {
	associated := make([]BoundingBox, 0, len(cards))

	for _, card := range cards {
		closest := -1
		minDistance := math.MaxInt

		for i, suit := range suits {
			overlaps := suit.Y1 <= card.Y2 && suit.Y2 >= card.Y1
			if !overlaps {
				continue
			}
			distance := abs(suit.X1 - card.X2)
			if distance < minDistance {
				minDistance = distance
				closest = i
			}
		}

		if closest >= 0 {
			card.Label = card.Label + " " + suits[closest].Label
		}
		associated = append(associated, card)
	}
	return associated
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
