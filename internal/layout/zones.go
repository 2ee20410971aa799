package layout

import (
	"fmt"

	"github.com/ironsheep/solitaire-vision/internal/detection"
)

// ZoneCount is the number of equal-width vertical zones across the board.
const ZoneCount = 9

// Zone is a column index in [0, ZoneCount).
type Zone int

// Fixed zones at the board edges. Zones in between are tableau piles.
const (
	DrawZone    Zone = 0
	DiscardZone Zone = ZoneCount - 1
)

// Role is what a zone contributes to the game state.
type Role int

const (
	RoleDraw Role = iota
	RoleTableau
	RoleDiscard
)

func (r Role) String() string {
	switch r {
	case RoleDraw:
		return "draw"
	case RoleDiscard:
		return "discard"
	default:
		return "tableau"
	}
}

// Role returns the zone's role.
func (z Zone) Role() Role {
	switch z {
	case DrawZone:
		return RoleDraw
	case DiscardZone:
		return RoleDiscard
	default:
		return RoleTableau
	}
}

// Pile returns the tableau pile index (0..6) for a tableau zone, or -1.
func (z Zone) Pile() int {
	if z.Role() != RoleTableau {
		return -1
	}
	return int(z) - 1
}

// Percent returns the zone's left edge as a whole percentage of the board
// width: 0, 11, 22, 33, 44, 56, 67, 78, 89.
func (z Zone) Percent() int {
	return (int(z)*200 + ZoneCount) / (2 * ZoneCount)
}

func (z Zone) String() string {
	return fmt.Sprintf("%d%% %s", z.Percent(), z.Role())
}

// ZoneOf returns the zone holding the horizontal centre of b on a board of
// the given width.
//
// The zone is floor(centerX / width * ZoneCount), evaluated in integers so
// boxes centred exactly on a boundary land in the right-hand zone. Results
// are clamped to [0, ZoneCount-1]; a non-positive width maps everything to
// the draw zone.
func ZoneOf(b detection.BoundingBox, width int) Zone {
	if width <= 0 {
		return DrawZone
	}
	// centerX * 9 / width with centerX = (X1+X2)/2
	z := (b.X1 + b.X2) * ZoneCount / (2 * width)
	switch {
	case z < 0:
		return DrawZone
	case z >= ZoneCount:
		return DiscardZone
	}
	return Zone(z)
}

// Partition splits boxes into zones. Every box lands in exactly one zone and
// keeps its relative input order there.
func Partition(boxes []detection.BoundingBox, width int) [ZoneCount][]detection.BoundingBox {
	var zones [ZoneCount][]detection.BoundingBox
	for _, b := range boxes {
		z := ZoneOf(b, width)
		zones[z] = append(zones[z], b)
	}
	return zones
}
