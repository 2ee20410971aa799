package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/anthonynsimon/bild/clone"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultStroke is the outline width used for detection boxes.
const DefaultStroke = 2

// Mark is one rectangle to draw on an annotated copy.
type Mark struct {
	Rect  image.Rectangle
	Label string // Optional text drawn next to the box; empty for none
	Color color.Color
}

// ParseColor parses a "#RRGGBB" (or "RRGGBB") hex string.
func ParseColor(hex string) (color.Color, error) {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Annotate returns an RGBA copy of src with every mark outlined.
//
// The source image is never modified. Outlines are stroke pixels wide and grow
// inward from the mark's rectangle; parts falling outside the image are
// clipped. Labels are rendered with the 7x13 basic font just above the box, or
// just below it when there is no room above.
func Annotate(src image.Image, marks []Mark, stroke int) *image.RGBA {
	dst := clone.AsRGBA(src)
	if stroke <= 0 {
		stroke = DefaultStroke
	}

	for _, m := range marks {
		drawRect(dst, m.Rect, stroke, m.Color)
		if m.Label != "" {
			drawLabel(dst, m.Rect, m.Label, m.Color)
		}
	}
	return dst
}

// drawRect outlines r on dst with the given stroke width.
func drawRect(dst *image.RGBA, r image.Rectangle, stroke int, c color.Color) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	for s := 0; s < stroke; s++ {
		top, bottom := r.Min.Y+s, r.Max.Y-1-s
		left, right := r.Min.X+s, r.Max.X-1-s
		if top > bottom || left > right {
			break
		}
		for x := left; x <= right; x++ {
			dst.Set(x, top, c)
			dst.Set(x, bottom, c)
		}
		for y := top; y <= bottom; y++ {
			dst.Set(left, y, c)
			dst.Set(right, y, c)
		}
	}
}

// drawLabel renders text next to r using basicfont.
func drawLabel(dst *image.RGBA, r image.Rectangle, text string, c color.Color) {
	face := basicfont.Face7x13
	baseline := r.Min.Y - 2
	if baseline-face.Ascent < dst.Bounds().Min.Y {
		baseline = r.Max.Y + face.Ascent + 1
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(r.Min.X), Y: fixed.I(baseline)},
	}
	d.DrawString(text)
}

// SaveImage encodes img to path, choosing the format from the file extension.
func SaveImage(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}
