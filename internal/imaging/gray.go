package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Gray is a single-channel intensity image.
//
// Pix holds Width*Height samples in row-major order, each in [0, 255]. A Gray
// is treated as read-only once built; the matcher shares one screenshot Gray
// between all template workers.
type Gray struct {
	Width  int
	Height int
	Pix    []float64
}

// NewGray allocates a black Gray of the given size.
func NewGray(width, height int) *Gray {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Gray{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// ToGray converts any image to a Gray using BT.601 luminance weights.
//
// The conversion is delegated to disintegration/imaging, whose Grayscale
// filter produces an NRGBA with equal R, G and B channels; the R channel is
// taken as the intensity. The result is re-based so that (0,0) is the top-left
// pixel regardless of the source bounds.
func ToGray(img image.Image) *Gray {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	g := NewGray(bounds.Dx(), bounds.Dy())

	for y := 0; y < g.Height; y++ {
		src := gray.Pix[y*gray.Stride : y*gray.Stride+g.Width*4]
		dst := g.Pix[y*g.Width : (y+1)*g.Width]
		for x := range dst {
			dst[x] = float64(src[x*4])
		}
	}
	return g
}

// At returns the intensity at (x, y). No bounds checking is performed.
func (g *Gray) At(x, y int) float64 {
	return g.Pix[y*g.Width+x]
}

// Set writes the intensity at (x, y). Only used while building fixtures and
// synthetic boards; a Gray handed to the matcher is not modified.
func (g *Gray) Set(x, y int, v float64) {
	g.Pix[y*g.Width+x] = v
}

// Row returns the samples of row y as a sub-slice of Pix.
func (g *Gray) Row(y int) []float64 {
	return g.Pix[y*g.Width : (y+1)*g.Width]
}

// Bounds returns the image rectangle anchored at the origin.
func (g *Gray) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// Paste copies src into g with its top-left corner at (x, y).
//
// Returns an error if src does not fit entirely inside g.
func (g *Gray) Paste(src *Gray, x, y int) error {
	if x < 0 || y < 0 || x+src.Width > g.Width || y+src.Height > g.Height {
		return fmt.Errorf("paste region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			x, y, x+src.Width, y+src.Height, g.Width, g.Height)
	}
	for row := 0; row < src.Height; row++ {
		copy(g.Pix[(y+row)*g.Width+x:], src.Row(row))
	}
	return nil
}

// Image converts g back to a standard *image.Gray, rounding each sample.
func (g *Gray) Image() *image.Gray {
	out := image.NewGray(g.Bounds())
	for i, v := range g.Pix {
		switch {
		case v <= 0:
			out.Pix[i] = 0
		case v >= 255:
			out.Pix[i] = 255
		default:
			out.Pix[i] = uint8(v + 0.5)
		}
	}
	return out
}
