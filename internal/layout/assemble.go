package layout

import (
	"strings"

	"github.com/ironsheep/solitaire-vision/internal/detection"
)

// DefaultStartingOffset is the Y coordinate of the first face-up card in a
// tableau pile that has no face-down cards.
const DefaultStartingOffset = 75

// Options tunes the assembler to the board geometry.
type Options struct {
	// RowStep is the vertical pitch between stacked cards.
	RowStep int `json:"row_step"`

	// StartingOffset is subtracted from a pile's topmost Y1 before counting
	// face-down cards.
	StartingOffset int `json:"starting_offset"`

	// IgnoredDiscardRanks are substrings that turn a discard slot unknown.
	// "J" is a recurring false match in the discard column.
	IgnoredDiscardRanks []string `json:"ignored_discard_ranks"`
}

// DefaultOptions returns the geometry of the reference board.
func DefaultOptions() Options {
	return Options{
		RowStep:             DefaultRowStep,
		StartingOffset:      DefaultStartingOffset,
		IgnoredDiscardRanks: []string{"J"},
	}
}

// Grouping is the zone and row structure of a set of detections.
type Grouping [ZoneCount][][]detection.BoundingBox

// Group partitions cards into zones and each zone into rows.
func Group(cards []detection.BoundingBox, width, step int) Grouping {
	var g Grouping
	for z, boxes := range Partition(cards, width) {
		g[z] = GroupRows(boxes, step)
	}
	return g
}

// Assemble builds the game state from associated card boxes.
//
// Parameters:
//   - cards: Rank boxes after suppression and suit association.
//   - width: Screenshot width in pixels, used for zoning.
//   - opts: Board geometry; see DefaultOptions.
//
// Zone 0 becomes the draw pile, every row in order. Zones 1 to 7 become the
// tableau piles: the pile's topmost box gives
// max(0, topmost.Y1-StartingOffset)/RowStep face-down cards, followed by the
// labels of every row. Zone 8 fills the discard slots from its first four rows,
// one card per row taken from the row's leftmost box; a label containing any
// IgnoredDiscardRanks entry becomes unknown, and slots without a row stay
// unknown.
//
// The result always has seven tableau piles and four discard slots, and no
// pile is nil.
func Assemble(cards []detection.BoundingBox, width int, opts Options) GameState {
	if opts.RowStep <= 0 {
		opts.RowStep = DefaultRowStep
	}

	state := NewGameState()
	grouping := Group(cards, width, opts.RowStep)

	for z, rows := range grouping {
		zone := Zone(z)
		switch zone.Role() {
		case RoleDraw:
			state.DrawPile = appendLabels(state.DrawPile, rows)
		case RoleDiscard:
			fillDiscard(&state.DiscardPile, rows, opts.IgnoredDiscardRanks)
		case RoleTableau:
			state.GamePiles[zone.Pile()] = buildPile(rows, opts)
		}
	}
	return state
}

// HiddenCards returns the number of face-down cards above a pile whose
// topmost face-up card starts at topY.
func HiddenCards(topY int, opts Options) int {
	if opts.RowStep <= 0 {
		opts.RowStep = DefaultRowStep
	}
	return max(0, topY-opts.StartingOffset) / opts.RowStep
}

func buildPile(rows [][]detection.BoundingBox, opts Options) []Card {
	pile := make([]Card, 0)
	if len(rows) == 0 {
		return pile
	}

	topY := rows[0][0].Y1
	for _, row := range rows {
		for _, b := range row {
			topY = min(topY, b.Y1)
		}
	}
	for i := HiddenCards(topY, opts); i > 0; i-- {
		pile = append(pile, Unknown())
	}
	return appendLabels(pile, rows)
}

func fillDiscard(slots *[DiscardSlots]Card, rows [][]detection.BoundingBox, ignored []string) {
	for i := 0; i < len(slots) && i < len(rows); i++ {
		label := rows[i][0].Label
		if containsAny(label, ignored) {
			slots[i] = Unknown()
			continue
		}
		slots[i] = Known(label)
	}
}

func appendLabels(pile []Card, rows [][]detection.BoundingBox) []Card {
	for _, row := range rows {
		for _, b := range row {
			pile = append(pile, Known(b.Label))
		}
	}
	return pile
}

func containsAny(label string, subs []string) bool {
	for _, s := range subs {
		if s != "" && strings.Contains(label, s) {
			return true
		}
	}
	return false
}
