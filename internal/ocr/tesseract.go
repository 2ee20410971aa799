//go:build cgo

package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// Reader reads ranks with a single Tesseract client.
//
// A Reader is not safe for concurrent use; Close it when done.
type Reader struct {
	client *gosseract.Client
}

// NewReader creates a Tesseract client restricted to rank characters and
// configured to treat each image as one word.
func NewReader(language string) (*Reader, error) {
	if language == "" {
		language = DefaultLanguage
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetWhitelist(RankWhitelist); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_WORD); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return &Reader{client: client}, nil
}

// ReadRank OCRs one rank crop.
func (r *Reader) ReadRank(img image.Image) (Reading, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Reading{}, fmt.Errorf("failed to encode crop: %w", err)
	}
	if err := r.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return Reading{}, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := r.client.Text()
	if err != nil {
		return Reading{}, fmt.Errorf("OCR failed: %w", err)
	}

	reading := Reading{Text: text}
	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err == nil {
		for _, box := range boxes {
			reading.Confidence = max(reading.Confidence, box.Confidence/100.0)
		}
	}
	return reading, nil
}

// Version returns the linked Tesseract version.
func (r *Reader) Version() string {
	return r.client.Version()
}

// Close releases the Tesseract client.
func (r *Reader) Close() error {
	return r.client.Close()
}
