package detection

import "image"

// BoundingBox is one detected glyph instance.
//
// Coordinates follow the image convention: (X1, Y1) inclusive, (X2, Y2)
// exclusive, with X1 < X2 and Y1 < Y2. Boxes are values; suppression and
// grouping work on copies and never resize a box.
type BoundingBox struct {
	X1    int    `json:"x1"`
	Y1    int    `json:"y1"`
	X2    int    `json:"x2"`
	Y2    int    `json:"y2"`
	Label string `json:"label"`
}

// Width returns X2 - X1.
func (b BoundingBox) Width() int { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b BoundingBox) Height() int { return b.Y2 - b.Y1 }

// Area returns the box area in square pixels.
func (b BoundingBox) Area() int { return b.Width() * b.Height() }

// CenterX returns the exact horizontal centre.
func (b BoundingBox) CenterX() float64 { return float64(b.X1+b.X2) / 2 }

// CenterY returns the vertical centre rounded down to a whole pixel.
func (b BoundingBox) CenterY() int { return (b.Y1 + b.Y2) / 2 }

// Rect converts the box to an image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle { return image.Rect(b.X1, b.Y1, b.X2, b.Y2) }

// BuildBoxes turns match positions into boxes of the template's size.
//
// One box is produced per position, in the order given; nothing is filtered.
func BuildBoxes(matches []image.Point, width, height int, label string) []BoundingBox {
	boxes := make([]BoundingBox, 0, len(matches))
	for _, p := range matches {
		boxes = append(boxes, BoundingBox{
			X1:    p.X,
			Y1:    p.Y,
			X2:    p.X + width,
			Y2:    p.Y + height,
			Label: label,
		})
	}
	return boxes
}
