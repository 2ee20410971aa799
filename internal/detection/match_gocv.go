//go:build gocv

package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/solitaire-vision/internal/imaging"
)

func init() {
	registerMatcher("opencv", func() Matcher { return OpenCVMatcher{} })
}

// OpenCVMatcher delegates scoring to OpenCV's matchTemplate with
// TM_CCOEFF_NORMED. It exists to cross-check the pure-Go matcher against the
// reference implementation and to speed up large screenshots.
type OpenCVMatcher struct{}

// Match returns every position whose score is >= threshold, in row-major order.
func (OpenCVMatcher) Match(img, tmpl *imaging.Gray, threshold float64) ([]image.Point, error) {
	if tmpl.Width > img.Width || tmpl.Height > img.Height {
		return nil, fmt.Errorf("%w: template %dx%d, image %dx%d",
			ErrTemplateTooLarge, tmpl.Width, tmpl.Height, img.Width, img.Height)
	}

	src, err := gocv.ImageGrayToMatGray(img.Image())
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to Mat: %w", err)
	}
	defer src.Close()

	tpl, err := gocv.ImageGrayToMatGray(tmpl.Image())
	if err != nil {
		return nil, fmt.Errorf("failed to convert template to Mat: %w", err)
	}
	defer tpl.Close()

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(src, tpl, &result, gocv.TmCcoeffNormed, mask)

	var points []image.Point
	for y := 0; y < result.Rows(); y++ {
		for x := 0; x < result.Cols(); x++ {
			if float64(result.GetFloatAt(y, x)) >= threshold {
				points = append(points, image.Point{X: x, Y: y})
			}
		}
	}
	return points, nil
}
