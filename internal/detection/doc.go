// Package detection locates rank and suit glyphs in a solitaire screenshot.
//
// The package covers the first half of the recognition pipeline:
//
//  1. Template matching: every template is scored against every valid
//     position of the screenshot with mean-subtracted normalized
//     cross-correlation, and positions scoring at or above the template's
//     threshold are kept.
//  2. Box building: each kept position becomes a BoundingBox the size of the
//     template, labelled with the template's label.
//  3. Suppression: overlapping boxes are collapsed by a greedy,
//     bottom-edge-ordered non-maximum suppression.
//  4. Association: every rank box is paired with the vertically overlapping
//     suit box whose left edge lies closest to the rank's right edge,
//     producing labels like "10 hearts".
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Overlap Ratio
//
// Suppression does not use intersection-over-union. The overlap between a kept
// box K and a candidate B is area(K ∩ B) / area(B): a candidate is dropped
// when a large share of itself lies inside a box already kept, regardless of
// how large K is.
//
// # Matcher Backends
//
// NCCMatcher is a pure-Go implementation and the default. Building with
// -tags gocv registers an OpenCV backed matcher under the name "opencv" that
// produces the same scores through gocv.MatchTemplate.
package detection
