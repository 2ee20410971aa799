package detection

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/solitaire-vision/internal/imaging"
)

// Default acceptance thresholds. Suit glyphs are small and produce more false
// positives, so they need a closer match than rank glyphs.
const (
	DefaultRankThreshold = 0.79
	DefaultSuitThreshold = 0.85
)

// flatVariance is the per-pixel variance below which a window or template is
// treated as flat and scores 0.
const flatVariance = 1e-6

var (
	// ErrTemplateTooLarge is returned when a template does not fit inside the image.
	ErrTemplateTooLarge = errors.New("template larger than image")

	// ErrUnknownMatcher is returned by NewMatcher for an unregistered backend.
	ErrUnknownMatcher = errors.New("unknown matcher backend")
)

// Kind separates the two detection sets.
type Kind int

const (
	KindRank Kind = iota
	KindSuit
)

func (k Kind) String() string {
	if k == KindSuit {
		return "suit"
	}
	return "rank"
}

var suitLabels = map[string]bool{
	"hearts":   true,
	"diamonds": true,
	"clubs":    true,
	"spades":   true,
}

// KindOf classifies a template label. Only the four exact suit names are
// suits; every other label is a rank.
func KindOf(label string) Kind {
	if suitLabels[label] {
		return KindSuit
	}
	return KindRank
}

// Thresholds holds the per-kind acceptance scores.
type Thresholds struct {
	Rank float64 `json:"rank"`
	Suit float64 `json:"suit"`
}

// DefaultThresholds returns the calibrated rank and suit thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Rank: DefaultRankThreshold, Suit: DefaultSuitThreshold}
}

// For returns the threshold to apply to a template with the given label.
func (t Thresholds) For(label string) float64 {
	if KindOf(label) == KindSuit {
		return t.Suit
	}
	return t.Rank
}

// Matcher finds every position where a template matches an image.
//
// Implementations must be safe for concurrent use with different templates
// against the same image, and must return positions in row-major order.
type Matcher interface {
	Match(img, tmpl *imaging.Gray, threshold float64) ([]image.Point, error)
}

var (
	matchersMu sync.RWMutex
	matchers   = map[string]func() Matcher{
		"ncc": func() Matcher { return NCCMatcher{} },
	}
)

// registerMatcher makes a backend available to NewMatcher.
func registerMatcher(name string, factory func() Matcher) {
	matchersMu.Lock()
	matchers[name] = factory
	matchersMu.Unlock()
}

// NewMatcher returns the backend registered under name.
//
// "ncc" is always available. "opencv" is available only in binaries built
// with -tags gocv.
func NewMatcher(name string) (Matcher, error) {
	matchersMu.RLock()
	factory, ok := matchers[name]
	matchersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownMatcher, name, MatcherNames())
	}
	return factory(), nil
}

// MatcherNames lists the registered backends in sorted order.
func MatcherNames() []string {
	matchersMu.RLock()
	defer matchersMu.RUnlock()
	names := make([]string, 0, len(matchers))
	for name := range matchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScoreMap holds one correlation score per valid template position.
//
// Width = image width - template width + 1, and likewise for Height.
type ScoreMap struct {
	Width  int
	Height int
	Scores []float64
}

// At returns the score for the template placed with its top-left at (x, y).
func (m *ScoreMap) At(x, y int) float64 {
	return m.Scores[y*m.Width+x]
}

// NCCMatcher scores positions with mean-subtracted normalized
// cross-correlation, the measure OpenCV calls TM_CCOEFF_NORMED.
type NCCMatcher struct{}

// Match returns every position whose score is >= threshold, in row-major order.
func (m NCCMatcher) Match(img, tmpl *imaging.Gray, threshold float64) ([]image.Point, error) {
	scores, err := m.Scores(img, tmpl)
	if err != nil {
		return nil, err
	}

	var points []image.Point
	for y := 0; y < scores.Height; y++ {
		row := scores.Scores[y*scores.Width : (y+1)*scores.Width]
		for x, s := range row {
			if s >= threshold {
				points = append(points, image.Point{X: x, Y: y})
			}
		}
	}
	return points, nil
}

// Scores computes the full correlation map of tmpl over img.
//
// For a template t (mean-centred to t') and the image window S under it:
//
//	score = Σ t'·S / sqrt(Σ t'² · (Σ S² − (Σ S)²/n))
//
// Since Σ t' = 0 the window mean drops out of the numerator. Window sums come
// from integral images, so each position costs one pass over the template.
// Flat templates or flat windows score 0, and scores are clamped to [-1, 1].
//
// # Errors
//
//   - ErrTemplateTooLarge if the template is wider or taller than the image
//   - An error for an empty template
func (NCCMatcher) Scores(img, tmpl *imaging.Gray) (*ScoreMap, error) {
	tw, th := tmpl.Width, tmpl.Height
	if tw == 0 || th == 0 {
		return nil, fmt.Errorf("empty template (%dx%d)", tw, th)
	}
	if tw > img.Width || th > img.Height {
		return nil, fmt.Errorf("%w: template %dx%d, image %dx%d",
			ErrTemplateTooLarge, tw, th, img.Width, img.Height)
	}

	n := float64(tw * th)

	centred := make([]float64, len(tmpl.Pix))
	copy(centred, tmpl.Pix)
	floats.AddConst(-floats.Sum(centred)/n, centred)
	tNorm2 := floats.Dot(centred, centred)

	out := &ScoreMap{
		Width:  img.Width - tw + 1,
		Height: img.Height - th + 1,
	}
	out.Scores = make([]float64, out.Width*out.Height)
	if tNorm2 <= flatVariance*n {
		return out, nil
	}

	sum, sq := integrals(img)
	stride := img.Width + 1

	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			s := windowSum(sum, stride, x, y, tw, th)
			s2 := windowSum(sq, stride, x, y, tw, th)
			varS := s2 - s*s/n
			if varS <= flatVariance*n {
				continue
			}

			var num float64
			for j := 0; j < th; j++ {
				num += floats.Dot(centred[j*tw : (j+1)*tw], img.Row(y+j)[x : x+tw])
			}

			score := num / math.Sqrt(varS*tNorm2)
			out.Scores[y*out.Width+x] = math.Max(-1, math.Min(1, score))
		}
	}
	return out, nil
}

// integrals builds (W+1)x(H+1) summed-area tables of intensities and squared
// intensities.
func integrals(img *imaging.Gray) (sum, sq []float64) {
	stride := img.Width + 1
	sum = make([]float64, stride*(img.Height+1))
	sq = make([]float64, stride*(img.Height+1))

	for y := 0; y < img.Height; y++ {
		var rowSum, rowSq float64
		row := img.Row(y)
		for x, v := range row {
			rowSum += v
			rowSq += v * v
			i := (y+1)*stride + x + 1
			sum[i] = sum[i-stride] + rowSum
			sq[i] = sq[i-stride] + rowSq
		}
	}
	return sum, sq
}

func windowSum(table []float64, stride, x, y, w, h int) float64 {
	a := table[y*stride+x]
	b := table[y*stride+x+w]
	c := table[(y+h)*stride+x]
	d := table[(y+h)*stride+x+w]
	return d - b - c + a
}
