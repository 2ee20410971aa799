// Package ocr cross-checks template-matched ranks with Tesseract.
//
// Template matching occasionally confuses similar glyphs (a "J" in the
// discard column is the usual offender). Verify crops each associated card's
// rank box, upscales it, reads it with Tesseract restricted to rank
// characters, and reports whether the reading agrees with the template label.
// The report is diagnostic only and never changes the recognised game state.
//
// # Prerequisites
//
// Tesseract and its English language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// The Tesseract bindings need cgo. In binaries built with CGO_ENABLED=0,
// NewReader returns ErrUnavailable and the rest of the program is unaffected.
package ocr
