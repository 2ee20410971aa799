package ocr

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/solitaire-vision/internal/detection"
)

// ErrUnavailable is returned when the binary was built without Tesseract.
var ErrUnavailable = errors.New("ocr unavailable: built without cgo")

// RankWhitelist is every character that can appear in a rank.
const RankWhitelist = "A2345678910JQK"

// DefaultScale is the upscale factor applied to rank crops. Rank glyphs are
// around 20px tall; Tesseract reads best at 30px or more per character.
const DefaultScale = 3

// DefaultLanguage is the Tesseract language used for rank reading.
const DefaultLanguage = "eng"

// Reading is one OCR result.
type Reading struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0.0 to 1.0
}

// RankReader reads the rank printed in a small card crop.
type RankReader interface {
	ReadRank(img image.Image) (Reading, error)
}

// Verification is the outcome for one card.
type Verification struct {
	Card       detection.BoundingBox `json:"card"`
	Expected   string                `json:"expected"`
	Read       string                `json:"read"`
	Confidence float64               `json:"confidence"`
	Agrees     bool                  `json:"agrees"`
	Error      string                `json:"error,omitempty"`
}

// Report summarises a verification run.
type Report struct {
	Checked   int            `json:"checked"`
	Agreed    int            `json:"agreed"`
	Disagreed int            `json:"disagreed"`
	Failed    int            `json:"failed"`
	Results   []Verification `json:"results"`
}

// Verify reads the rank of every card box and compares it with the rank part
// of the box label.
//
// Parameters:
//   - reader: OCR backend, usually a *Reader.
//   - img: The colour screenshot the boxes were detected in.
//   - cards: Associated rank boxes, e.g. "10 hearts".
//   - scale: Upscale factor for each crop; values below 1 use DefaultScale.
//
// A read error for one card is recorded in its Verification and counted in
// Failed; it does not stop the run.
func Verify(reader RankReader, img image.Image, cards []detection.BoundingBox, scale int) *Report {
	report := &Report{Results: make([]Verification, 0, len(cards))}

	for _, card := range cards {
		v := Verification{
			Card:     card,
			Expected: ExpectedRank(card.Label),
		}
		report.Checked++

		reading, err := reader.ReadRank(PrepareCrop(img, card.Rect(), scale))
		if err != nil {
			v.Error = err.Error()
			report.Failed++
			report.Results = append(report.Results, v)
			continue
		}

		v.Read = NormalizeRank(reading.Text)
		v.Confidence = reading.Confidence
		v.Agrees = v.Read != "" && v.Read == v.Expected
		if v.Agrees {
			report.Agreed++
		} else {
			report.Disagreed++
		}
		report.Results = append(report.Results, v)
	}
	return report
}

// PrepareCrop cuts rect out of img and upscales it for OCR.
//
// The crop is clipped to the image bounds, converted to grayscale and resized
// by scale with a Lanczos filter.
func PrepareCrop(img image.Image, rect image.Rectangle, scale int) image.Image {
	if scale < 1 {
		scale = DefaultScale
	}
	cropped := imaging.Crop(img, rect.Intersect(img.Bounds()))
	b := cropped.Bounds()
	if b.Empty() {
		return cropped
	}
	gray := imaging.Grayscale(cropped)
	return imaging.Resize(gray, b.Dx()*scale, b.Dy()*scale, imaging.Lanczos)
}

// ExpectedRank returns the rank part of a card label: "10 hearts" gives "10".
func ExpectedRank(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// NormalizeRank cleans up raw OCR text: whitespace and characters that cannot
// appear in a rank are removed and letters are upper-cased.
func NormalizeRank(text string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(text) {
		if strings.ContainsRune(RankWhitelist, r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// String renders a one-line summary.
func (r *Report) String() string {
	return fmt.Sprintf("%d checked, %d agree, %d disagree, %d failed",
		r.Checked, r.Agreed, r.Disagreed, r.Failed)
}
