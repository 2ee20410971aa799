package layout

import (
	"testing"

	"github.com/ironsheep/solitaire-vision/internal/detection"
)

// Board geometry used by the tests: 900px wide, so zone z spans
// [100z, 100z+100).
const boardWidth = 900

func zoneX(z int) int { return z*100 + 50 }

func cardStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAssemble_NoDetections(t *testing.T) {
	s := Assemble(nil, boardWidth, DefaultOptions())

	if s.DrawPile == nil || len(s.DrawPile) != 0 {
		t.Errorf("draw pile: got %v, want empty", s.DrawPile)
	}
	for i, pile := range s.GamePiles {
		if pile == nil || len(pile) != 0 {
			t.Errorf("pile %d: got %v, want empty", i, pile)
		}
	}
	for i, c := range s.DiscardPile {
		if c.IsKnown() {
			t.Errorf("discard %d: got %v, want unknown", i, c)
		}
	}
}

func TestAssemble_DrawPile(t *testing.T) {
	cards := []detection.BoundingBox{
		box(zoneX(0), 120, "3 clubs"),
		box(zoneX(0)-20, 10, "7 hearts"),
		box(zoneX(0)+20, 12, "8 hearts"),
	}

	s := Assemble(cards, boardWidth, DefaultOptions())

	want := []string{"7 hearts", "8 hearts", "3 clubs"}
	if got := cardStrings(s.DrawPile); !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAssemble_TableauHiddenCards(t *testing.T) {
	tests := []struct {
		name string
		topY int
		want []string
	}{
		{"above offset", 40, []string{"K spades"}},
		{"at offset", 75, []string{"K spades"}},
		{"one hidden", 115, []string{"null", "K spades"}},
		{"just short of two", 154, []string{"null", "K spades"}},
		{"three hidden", 195, []string{"null", "null", "null", "K spades"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards := []detection.BoundingBox{box(zoneX(3), tt.topY, "K spades")}
			s := Assemble(cards, boardWidth, DefaultOptions())

			if got := cardStrings(s.GamePiles[2]); !equalStrings(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssemble_TableauStack(t *testing.T) {
	// Two hidden cards, then a run of three face-up cards, supplied out of order.
	cards := []detection.BoundingBox{
		box(zoneX(7), 235, "J diamonds"),
		box(zoneX(7), 155, "K clubs"),
		box(zoneX(7), 195, "Q hearts"),
	}

	s := Assemble(cards, boardWidth, DefaultOptions())

	want := []string{"null", "null", "K clubs", "Q hearts", "J diamonds"}
	if got := cardStrings(s.GamePiles[6]); !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	for i := 0; i < 6; i++ {
		if len(s.GamePiles[i]) != 0 {
			t.Errorf("pile %d: got %v, want empty", i, cardStrings(s.GamePiles[i]))
		}
	}
}

func TestAssemble_Discard(t *testing.T) {
	x := zoneX(8)
	cards := []detection.BoundingBox{
		box(x, 10, "A hearts"),
		box(x+30, 12, "2 hearts"), // same row, not leftmost
		box(x, 50, "J hearts"),
		box(x, 130, "3 spades"),
		box(x, 170, "A clubs"),
		box(x, 210, "5 clubs"), // fifth row, dropped
	}

	s := Assemble(cards, boardWidth, DefaultOptions())

	want := []string{"A hearts", "null", "3 spades", "A clubs"}
	if got := cardStrings(s.DiscardPile[:]); !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAssemble_DiscardMissingSlots(t *testing.T) {
	cards := []detection.BoundingBox{box(zoneX(8), 10, "A hearts")}

	s := Assemble(cards, boardWidth, DefaultOptions())

	want := []string{"A hearts", "null", "null", "null"}
	if got := cardStrings(s.DiscardPile[:]); !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAssemble_IgnoredRanksConfigurable(t *testing.T) {
	cards := []detection.BoundingBox{
		box(zoneX(8), 10, "J hearts"),
		box(zoneX(8), 50, "Q spades"),
	}
	opts := DefaultOptions()
	opts.IgnoredDiscardRanks = []string{"Q", ""}

	s := Assemble(cards, boardWidth, opts)

	want := []string{"J hearts", "null", "null", "null"}
	if got := cardStrings(s.DiscardPile[:]); !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAssemble_EveryCardPlacedOnce(t *testing.T) {
	var cards []detection.BoundingBox
	for z := 0; z < 8; z++ {
		for row := 0; row < 3; row++ {
			cards = append(cards, box(zoneX(z), 75+row*40, "x"))
		}
	}

	s := Assemble(cards, boardWidth, DefaultOptions())

	known := len(s.DrawPile)
	for _, pile := range s.GamePiles {
		for _, c := range pile {
			if c.IsKnown() {
				known++
			}
		}
	}
	if known != len(cards) {
		t.Errorf("got %d known cards, want %d", known, len(cards))
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	cards := []detection.BoundingBox{
		box(zoneX(1), 80, "5 hearts"),
		box(zoneX(1), 120, "4 clubs"),
		box(zoneX(4), 300, "9 diamonds"),
		box(zoneX(0), 10, "2 spades"),
		box(zoneX(8), 10, "A diamonds"),
	}

	a, err := Assemble(cards, boardWidth, DefaultOptions()).Encode()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		b, err := Assemble(cards, boardWidth, DefaultOptions()).Encode()
		if err != nil {
			t.Fatal(err)
		}
		if string(a) != string(b) {
			t.Fatalf("run %d differs:\n%s\n%s", i, a, b)
		}
	}
}

func TestHiddenCards(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		topY int
		want int
	}{
		{0, 0},
		{75, 0},
		{114, 0},
		{115, 1},
		{400, 8},
	}
	for _, tt := range tests {
		if got := HiddenCards(tt.topY, opts); got != tt.want {
			t.Errorf("HiddenCards(%d): got %d, want %d", tt.topY, got, tt.want)
		}
	}
}

func TestGroup(t *testing.T) {
	cards := []detection.BoundingBox{
		box(zoneX(2), 10, "a"),
		box(zoneX(2), 90, "b"),
		box(zoneX(6), 10, "c"),
	}

	g := Group(cards, boardWidth, 40)

	if len(g[2]) != 2 || len(g[6]) != 1 {
		t.Errorf("got %d rows in zone 2 and %d in zone 6, want 2 and 1", len(g[2]), len(g[6]))
	}
	for z, rows := range g {
		if z != 2 && z != 6 && len(rows) != 0 {
			t.Errorf("zone %d: got %d rows, want 0", z, len(rows))
		}
	}
}
