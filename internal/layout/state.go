package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Pile sizes of a Klondike board.
const (
	TableauPiles = 7
	DiscardSlots = 4
)

// UnknownLabel is how an unknown card is written in game-state JSON.
const UnknownLabel = "null"

// Card is either a recognised card label such as "10 hearts" or unknown.
//
// The zero value is unknown.
type Card struct {
	label string
	known bool
}

// Known returns a card with the given label.
func Known(label string) Card { return Card{label: label, known: true} }

// Unknown returns the unknown card.
func Unknown() Card { return Card{} }

// IsKnown reports whether the card was identified.
func (c Card) IsKnown() bool { return c.known }

// Label returns the card label and whether the card is known.
func (c Card) Label() (string, bool) { return c.label, c.known }

// String returns the label, or UnknownLabel for an unknown card.
func (c Card) String() string {
	if !c.known {
		return UnknownLabel
	}
	return c.label
}

// MarshalJSON writes the card as a JSON string. Unknown cards become the
// string "null", not a JSON null.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts a label string. Both the string "null" and a JSON
// null decode to an unknown card.
func (c *Card) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = Unknown()
		return nil
	}
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("failed to decode card: %w", err)
	}
	if label == UnknownLabel {
		*c = Unknown()
		return nil
	}
	*c = Known(label)
	return nil
}

// GameState is the recognised board.
type GameState struct {
	// DrawPile holds the visible draw-pile cards in row order.
	DrawPile []Card

	// GamePiles holds the tableau piles left to right. Each pile lists its
	// face-down cards as unknown first, then the visible cards top to bottom.
	GamePiles [TableauPiles][]Card

	// DiscardPile holds the four foundation slots top to bottom.
	DiscardPile [DiscardSlots]Card
}

// NewGameState returns an empty board: no draw or tableau cards and four
// unknown discard slots.
func NewGameState() GameState {
	var s GameState
	s.DrawPile = make([]Card, 0)
	for i := range s.GamePiles {
		s.GamePiles[i] = make([]Card, 0)
	}
	return s
}

type gameStateJSON struct {
	DrawPile    []Card               `json:"draw_pile"`
	GamePiles   [TableauPiles][]Card `json:"game_piles"`
	DiscardPile [DiscardSlots]Card   `json:"discard_pile"`
}

// MarshalJSON writes the state with fields in the order draw_pile,
// game_piles, discard_pile. Nil piles are written as empty arrays.
func (s GameState) MarshalJSON() ([]byte, error) {
	out := gameStateJSON{
		DrawPile:    nonNil(s.DrawPile),
		DiscardPile: s.DiscardPile,
	}
	for i, pile := range s.GamePiles {
		out.GamePiles[i] = nonNil(pile)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a state written by MarshalJSON. Extra tableau piles or
// discard slots are an error.
func (s *GameState) UnmarshalJSON(data []byte) error {
	var in struct {
		DrawPile    []Card   `json:"draw_pile"`
		GamePiles   [][]Card `json:"game_piles"`
		DiscardPile []Card   `json:"discard_pile"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if len(in.GamePiles) > TableauPiles {
		return fmt.Errorf("game_piles has %d piles, want at most %d", len(in.GamePiles), TableauPiles)
	}
	if len(in.DiscardPile) > DiscardSlots {
		return fmt.Errorf("discard_pile has %d slots, want at most %d", len(in.DiscardPile), DiscardSlots)
	}

	state := NewGameState()
	state.DrawPile = nonNil(in.DrawPile)
	for i, pile := range in.GamePiles {
		state.GamePiles[i] = nonNil(pile)
	}
	copy(state.DiscardPile[:], in.DiscardPile)
	*s = state
	return nil
}

// Encode renders the state as pretty-printed JSON with a two-space indent.
func (s GameState) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode game state: %w", err)
	}
	return data, nil
}

func nonNil(cards []Card) []Card {
	if cards == nil {
		return make([]Card, 0)
	}
	return cards
}
