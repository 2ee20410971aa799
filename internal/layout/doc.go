// Package layout turns associated card detections into a solitaire game state.
//
// The board is split into nine vertical zones of equal width. Zone 0 holds the
// draw pile, zones 1 to 7 hold the tableau piles and zone 8 holds the four
// discard (foundation) slots. Within a zone, boxes are grouped into rows of a
// fixed pixel height; a tableau card's rank glyph sits one row below the card
// above it, so rows map directly onto the cards of a pile.
//
// Cards the screenshot cannot identify, such as face-down tableau cards or
// empty discard slots, are represented by an unknown Card, which serializes
// as the string "null".
package layout
