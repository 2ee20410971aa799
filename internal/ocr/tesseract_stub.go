//go:build !cgo

package ocr

import "image"

// Reader is a placeholder in binaries built without cgo.
type Reader struct{}

// NewReader always returns ErrUnavailable.
func NewReader(language string) (*Reader, error) {
	return nil, ErrUnavailable
}

// ReadRank always returns ErrUnavailable.
func (r *Reader) ReadRank(img image.Image) (Reading, error) {
	return Reading{}, ErrUnavailable
}

// Version returns an empty string.
func (r *Reader) Version() string { return "" }

// Close is a no-op.
func (r *Reader) Close() error { return nil }
