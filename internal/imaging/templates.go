package imaging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoTemplates is returned when a template directory holds no image files.
var ErrNoTemplates = errors.New("no template images found")

// Template is a labelled glyph image matched against the screenshot.
type Template struct {
	// Label is the file base name without extension, e.g. "10" or "hearts".
	Label string

	// Path is the file the template was decoded from.
	Path string

	// Gray is the template converted to intensities.
	Gray *Gray
}

// Width returns the template width in pixels.
func (t Template) Width() int { return t.Gray.Width }

// Height returns the template height in pixels.
func (t Template) Height() int { return t.Gray.Height }

var templateExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// LoadTemplates decodes every image file in dir into a Template.
//
// Parameters:
//   - loader: Source of decoded images, typically an *ImageCache.
//   - dir: Directory containing one image per glyph.
//
// Returns:
//   - []Template: Templates in file-name order. The order is stable across
//     runs, which keeps downstream suppression tie-breaks deterministic.
//   - error: Non-nil if the directory cannot be read, holds no image files
//     (ErrNoTemplates), or any image file fails to decode.
//
// Sub-directories and files without a recognised image extension are skipped.
// Labels are case-sensitive and taken verbatim from the base name.
func LoadTemplates(loader Loader, dir string) ([]Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	templates := make([]Template, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if !templateExtensions[strings.ToLower(ext)] {
			continue
		}

		path := filepath.Join(dir, name)
		img, err := loader.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load template %s: %w", name, err)
		}

		templates = append(templates, Template{
			Label: strings.TrimSuffix(name, ext),
			Path:  path,
			Gray:  ToGray(img),
		})
	}

	if len(templates) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoTemplates)
	}
	return templates, nil
}
