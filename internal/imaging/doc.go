// Package imaging provides the image plumbing for the solitaire recognizer.
//
// It loads screenshots and glyph templates from disk, converts them to the
// single-channel intensity grids the matcher works on, and renders annotated
// debug copies of a screenshot with detection boxes drawn over it.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Grayscale Conversion
//
// Colour images are reduced to luminance using ITU-R BT.601 weights
// (0.299*R + 0.587*G + 0.114*B), the same weighting OpenCV applies for
// BGR-to-gray conversion. Intensities are stored as float64 in [0, 255].
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. A Gray is never mutated after
// construction and may be shared freely between goroutines matching different
// templates against the same screenshot.
//
// # Error Handling
//
// Functions return errors for:
//   - Missing or unreadable files
//   - Files that are not a decodable PNG, JPEG, GIF, BMP or WebP image
//   - Template directories that cannot be listed or hold no images
//   - Encoding or write failures when saving annotated output
package imaging
