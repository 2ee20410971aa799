package pipeline

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ironsheep/solitaire-vision/internal/detection"
	"github.com/ironsheep/solitaire-vision/internal/imaging"
	"github.com/ironsheep/solitaire-vision/internal/layout"
)

// glyph returns a w x h gray noise image. Different seeds give uncorrelated
// glyphs, so each template only matches its own copy on the board.
func glyph(seed uint32, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	state := seed*2654435761 + 1
	for i := range img.Pix {
		state = state*1664525 + 1013904223
		img.Pix[i] = uint8(state >> 24)
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

// placement puts a template glyph on the board.
type placement struct {
	label string
	x, y  int
}

// fixture is a template directory plus a 900x400 screenshot, so each of the
// nine zones is 100px wide.
type fixture struct {
	templateDir string
	screenshot  string
}

var glyphs = map[string]*image.Gray{
	"10":     glyph(1, 12, 16),
	"K":      glyph(2, 12, 16),
	"J":      glyph(3, 12, 16),
	"hearts": glyph(4, 10, 10),
	"spades": glyph(5, 10, 10),
}

func newFixture(t *testing.T, placements []placement) fixture {
	t.Helper()
	root := t.TempDir()

	dir := filepath.Join(root, "templates")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatalf("failed to create template dir: %v", err)
	}
	for label, g := range glyphs {
		writePNG(t, filepath.Join(dir, label+".png"), g)
	}

	board := image.NewRGBA(image.Rect(0, 0, 900, 400))
	draw.Draw(board, board.Bounds(), image.NewUniform(color.Gray{Y: 128}), image.Point{}, draw.Src)
	for _, p := range placements {
		g := glyphs[p.label]
		draw.Draw(board, g.Bounds().Add(image.Pt(p.x, p.y)), g, image.Point{}, draw.Src)
	}

	screenshot := filepath.Join(root, "screenshot.png")
	writePNG(t, screenshot, board)
	return fixture{templateDir: dir, screenshot: screenshot}
}

// boardPlacements puts one card in the draw pile, one in tableau pile 2 below
// two face-down cards, and one in the first discard slot.
var boardPlacements = []placement{
	{"K", 40, 20},
	{"spades", 54, 22},
	{"10", 340, 160},
	{"hearts", 354, 163},
	{"K", 840, 10},
	{"hearts", 854, 12},
}

func newRecognizer(dir string, workers int) *Recognizer {
	opts := DefaultOptions(dir)
	opts.Workers = workers
	return New(imaging.NewImageCache(), detection.NCCMatcher{}, opts, zerolog.Nop())
}

func TestRecognizer_Recognize(t *testing.T) {
	fx := newFixture(t, boardPlacements)
	r := newRecognizer(fx.templateDir, 4)

	img, err := r.Load(fx.screenshot)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	res, err := r.Recognize(img)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	if res.Detections.Width != 900 || res.Detections.Height != 400 {
		t.Errorf("size: got %dx%d", res.Detections.Width, res.Detections.Height)
	}
	if len(res.Detections.Ranks) != 3 || len(res.Detections.Suits) != 3 {
		t.Errorf("got %d ranks and %d suits, want 3 and 3",
			len(res.Detections.Ranks), len(res.Detections.Suits))
	}

	want := layout.NewGameState()
	want.DrawPile = []layout.Card{layout.Known("K spades")}
	want.GamePiles[2] = []layout.Card{layout.Unknown(), layout.Unknown(), layout.Known("10 hearts")}
	want.DiscardPile[0] = layout.Known("K hearts")

	if !reflect.DeepEqual(res.State, want) {
		got, _ := res.State.Encode()
		exp, _ := want.Encode()
		t.Errorf("state:\ngot  %s\nwant %s", got, exp)
	}
}

func TestRecognizer_DetectBoxes(t *testing.T) {
	fx := newFixture(t, boardPlacements)
	r := newRecognizer(fx.templateDir, 2)

	img, err := r.Load(fx.screenshot)
	if err != nil {
		t.Fatal(err)
	}
	d, err := r.Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	found := false
	for _, c := range d.Cards {
		if c == (detection.BoundingBox{X1: 340, Y1: 160, X2: 352, Y2: 176, Label: "10 hearts"}) {
			found = true
		}
	}
	if !found {
		t.Errorf("10 hearts box not found in %+v", d.Cards)
	}
}

func TestRecognizer_DiscardJackIsUnknown(t *testing.T) {
	fx := newFixture(t, []placement{
		{"J", 840, 10},
		{"hearts", 854, 12},
	})
	r := newRecognizer(fx.templateDir, 1)

	img, err := r.Load(fx.screenshot)
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Recognize(img)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	if res.State.DiscardPile[0].IsKnown() {
		t.Errorf("discard slot 0: got %v, want unknown", res.State.DiscardPile[0])
	}
	if len(res.Detections.Cards) != 1 || res.Detections.Cards[0].Label != "J hearts" {
		t.Errorf("cards: got %+v", res.Detections.Cards)
	}
}

func TestRecognizer_EmptyBoard(t *testing.T) {
	fx := newFixture(t, nil)
	r := newRecognizer(fx.templateDir, 3)

	img, err := r.Load(fx.screenshot)
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Recognize(img)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	got, err := res.State.Encode()
	if err != nil {
		t.Fatal(err)
	}
	want, _ := layout.NewGameState().Encode()
	if string(got) != string(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRecognizer_WorkerCountDoesNotChangeOutput(t *testing.T) {
	fx := newFixture(t, boardPlacements)

	var first *Detections
	for _, workers := range []int{1, 2, 5, 16} {
		r := newRecognizer(fx.templateDir, workers)
		img, err := r.Load(fx.screenshot)
		if err != nil {
			t.Fatal(err)
		}
		d, err := r.Detect(img)
		if err != nil {
			t.Fatalf("Detect with %d workers failed: %v", workers, err)
		}
		if first == nil {
			first = d
			continue
		}
		if !reflect.DeepEqual(d, first) {
			t.Errorf("%d workers: got %+v, want %+v", workers, d, first)
		}
	}
}

func TestRecognizer_Run(t *testing.T) {
	fx := newFixture(t, boardPlacements)
	r := newRecognizer(fx.templateDir, 2)

	out := t.TempDir()
	annotated := filepath.Join(out, "output_with_boxes.png")
	statePath := filepath.Join(out, "output.json")

	res, err := r.Run(fx.screenshot, annotated, statePath)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(statePath)
	if err != nil {
		t.Fatalf("state not written: %v", err)
	}
	var state layout.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("state is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(state, res.State) {
		t.Errorf("written state differs from result:\n%s", data)
	}

	f, err := os.Open(annotated)
	if err != nil {
		t.Fatalf("annotated image not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("annotated image invalid: %v", err)
	}
	if img.Bounds().Dx() != 900 || img.Bounds().Dy() != 400 {
		t.Errorf("annotated size: got %v", img.Bounds())
	}
	// Top-left corner of the draw-pile rank box is outlined in the rank colour.
	r0, g0, b0, _ := img.At(40, 20).RGBA()
	if r0 != 0 || g0 != 0xffff || b0 != 0 {
		t.Errorf("outline pixel: got (%d,%d,%d), want green", r0>>8, g0>>8, b0>>8)
	}
}

func TestRecognizer_RunStillWritesStateWhenAnnotationFails(t *testing.T) {
	fx := newFixture(t, boardPlacements)
	r := newRecognizer(fx.templateDir, 1)

	out := t.TempDir()
	annotated := filepath.Join(out, "missing", "boxes.png")
	statePath := filepath.Join(out, "output.json")

	res, err := r.Run(fx.screenshot, annotated, statePath)
	if err == nil {
		t.Fatal("expected annotated save error")
	}
	if res == nil {
		t.Fatal("result should be returned alongside save errors")
	}
	if _, err := os.Stat(statePath); err != nil {
		t.Errorf("state file not written: %v", err)
	}
}

func TestRecognizer_RunJoinsBothSaveErrors(t *testing.T) {
	fx := newFixture(t, nil)
	r := newRecognizer(fx.templateDir, 1)

	missing := filepath.Join(t.TempDir(), "missing")
	_, err := r.Run(fx.screenshot, filepath.Join(missing, "a.png"), filepath.Join(missing, "b.json"))
	if err == nil {
		t.Fatal("expected error")
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 2 {
		t.Errorf("got %v, want two joined errors", err)
	}
}

func TestRecognizer_Errors(t *testing.T) {
	t.Run("missing screenshot", func(t *testing.T) {
		fx := newFixture(t, nil)
		r := newRecognizer(fx.templateDir, 1)
		out := filepath.Join(t.TempDir(), "output.json")

		if _, err := r.Run(filepath.Join(t.TempDir(), "nope.png"), "", out); err == nil {
			t.Error("expected error")
		}
		if _, err := os.Stat(out); !os.IsNotExist(err) {
			t.Error("state written despite load failure")
		}
	})

	t.Run("empty template dir", func(t *testing.T) {
		fx := newFixture(t, nil)
		r := newRecognizer(t.TempDir(), 1)

		_, err := r.Run(fx.screenshot, "", "")
		if !errors.Is(err, imaging.ErrNoTemplates) {
			t.Errorf("got %v, want ErrNoTemplates", err)
		}
	})

	t.Run("template larger than screenshot", func(t *testing.T) {
		dir := t.TempDir()
		writePNG(t, filepath.Join(dir, "K.png"), glyph(9, 30, 30))
		shot := filepath.Join(t.TempDir(), "tiny.png")
		writePNG(t, shot, glyph(10, 20, 20))

		_, err := newRecognizer(dir, 1).Run(shot, "", "")
		if !errors.Is(err, detection.ErrTemplateTooLarge) {
			t.Errorf("got %v, want ErrTemplateTooLarge", err)
		}
	})
}

func TestWriteState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := WriteState(path, layout.NewGameState()); err != nil {
		t.Fatalf("WriteState failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 || data[0] != '{' {
		t.Errorf("unexpected content: %s", data)
	}
}
