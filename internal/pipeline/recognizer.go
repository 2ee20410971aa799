package pipeline

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ironsheep/solitaire-vision/internal/config"
	"github.com/ironsheep/solitaire-vision/internal/detection"
	"github.com/ironsheep/solitaire-vision/internal/imaging"
	"github.com/ironsheep/solitaire-vision/internal/layout"
)

// Options configures a Recognizer.
type Options struct {
	TemplateDir      string
	Thresholds       detection.Thresholds
	OverlapThreshold float64
	Layout           layout.Options
	Workers          int
	RankColor        color.Color
	SuitColor        color.Color
}

// DefaultOptions returns the reference-board settings reading templates from dir.
func DefaultOptions(dir string) Options {
	return Options{
		TemplateDir:      dir,
		Thresholds:       detection.DefaultThresholds(),
		OverlapThreshold: detection.DefaultOverlapThreshold,
		Layout:           layout.DefaultOptions(),
		Workers:          1,
		RankColor:        color.RGBA{G: 255, A: 255},
		SuitColor:        color.RGBA{R: 255, B: 255, A: 255},
	}
}

// OptionsFromConfig converts a validated configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	rank, err := imaging.ParseColor(cfg.RankColor)
	if err != nil {
		return Options{}, err
	}
	suit, err := imaging.ParseColor(cfg.SuitColor)
	if err != nil {
		return Options{}, err
	}
	return Options{
		TemplateDir:      cfg.TemplateDir,
		Thresholds:       cfg.Thresholds,
		OverlapThreshold: cfg.OverlapThreshold,
		Layout:           cfg.Layout,
		Workers:          cfg.Workers,
		RankColor:        rank,
		SuitColor:        suit,
	}, nil
}

// Detections are the boxes found in one screenshot.
type Detections struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Ranks and Suits survived suppression, in keep order.
	Ranks []detection.BoundingBox `json:"ranks"`
	Suits []detection.BoundingBox `json:"suits"`

	// Cards are Ranks with their associated suit appended to the label.
	Cards []detection.BoundingBox `json:"cards"`
}

// Result is the outcome of a full recognition.
type Result struct {
	Detections *Detections      `json:"detections"`
	State      layout.GameState `json:"state"`
}

// Recognizer reconstructs game states from screenshots.
type Recognizer struct {
	loader  imaging.Loader
	matcher detection.Matcher
	opts    Options
	log     zerolog.Logger
}

// New creates a Recognizer. Workers below 1 are treated as 1.
func New(loader imaging.Loader, matcher detection.Matcher, opts Options, logger zerolog.Logger) *Recognizer {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Recognizer{
		loader:  loader,
		matcher: matcher,
		opts:    opts,
		log:     logger,
	}
}

// Templates loads the configured template directory.
func (r *Recognizer) Templates() ([]imaging.Template, error) {
	return imaging.LoadTemplates(r.loader, r.opts.TemplateDir)
}

// Detect matches every template against img and returns the suppressed and
// associated boxes.
//
// Returns an error if the templates cannot be loaded or any template fails to
// match, e.g. detection.ErrTemplateTooLarge. Finding nothing is not an error.
func (r *Recognizer) Detect(img image.Image) (*Detections, error) {
	templates, err := r.Templates()
	if err != nil {
		return nil, err
	}

	gray := imaging.ToGray(img)
	perTemplate, err := r.matchAll(gray, templates)
	if err != nil {
		return nil, err
	}

	var ranks, suits []detection.BoundingBox
	for i, boxes := range perTemplate {
		if detection.KindOf(templates[i].Label) == detection.KindSuit {
			suits = append(suits, boxes...)
		} else {
			ranks = append(ranks, boxes...)
		}
	}

	d := &Detections{
		Width:  gray.Width,
		Height: gray.Height,
		Ranks:  detection.Suppress(ranks, r.opts.OverlapThreshold),
		Suits:  detection.Suppress(suits, r.opts.OverlapThreshold),
	}
	d.Cards = detection.Associate(d.Ranks, d.Suits)

	r.log.Info().
		Int("ranks_raw", len(ranks)).
		Int("ranks", len(d.Ranks)).
		Int("suits_raw", len(suits)).
		Int("suits", len(d.Suits)).
		Msg("suppressed overlapping detections")
	return d, nil
}

// Recognize detects cards in img and assembles the game state.
func (r *Recognizer) Recognize(img image.Image) (*Result, error) {
	d, err := r.Detect(img)
	if err != nil {
		return nil, err
	}
	return &Result{
		Detections: d,
		State:      layout.Assemble(d.Cards, d.Width, r.opts.Layout),
	}, nil
}

// Load decodes the screenshot at path.
func (r *Recognizer) Load(path string) (image.Image, error) {
	img, err := r.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load screenshot: %w", err)
	}
	return img, nil
}

// Run recognizes the screenshot at screenshotPath and writes the outputs.
//
// Parameters:
//   - screenshotPath: Image to analyse.
//   - annotatedPath: Where to save the annotated copy; empty to skip.
//   - statePath: Where to write the game-state JSON; empty to skip.
//
// A failure to load or recognize the screenshot returns no result and writes
// nothing. Once a result exists both outputs are attempted even if the first
// fails; the returned error joins whichever saves failed, and the result is
// returned alongside it.
func (r *Recognizer) Run(screenshotPath, annotatedPath, statePath string) (*Result, error) {
	img, err := r.Load(screenshotPath)
	if err != nil {
		return nil, err
	}
	res, err := r.Recognize(img)
	if err != nil {
		return nil, err
	}

	var errs []error
	if annotatedPath != "" {
		if err := imaging.SaveImage(r.Annotate(img, res.Detections), annotatedPath); err != nil {
			errs = append(errs, err)
		} else {
			r.log.Info().Str("path", annotatedPath).Msg("saved annotated screenshot")
		}
	}
	if statePath != "" {
		if err := WriteState(statePath, res.State); err != nil {
			errs = append(errs, err)
		} else {
			r.log.Info().Str("path", statePath).Msg("saved game state")
		}
	}
	return res, errors.Join(errs...)
}

// Annotate draws every surviving rank and suit box on a copy of img. Rank
// boxes carry their associated card label.
func (r *Recognizer) Annotate(img image.Image, d *Detections) *image.RGBA {
	marks := make([]imaging.Mark, 0, len(d.Cards)+len(d.Suits))
	for _, b := range d.Cards {
		marks = append(marks, imaging.Mark{Rect: b.Rect(), Label: b.Label, Color: r.opts.RankColor})
	}
	for _, b := range d.Suits {
		marks = append(marks, imaging.Mark{Rect: b.Rect(), Color: r.opts.SuitColor})
	}
	return imaging.Annotate(img, marks, imaging.DefaultStroke)
}

// WriteState writes the pretty-printed game state to path.
func WriteState(path string, state layout.GameState) error {
	data, err := state.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write game state: %w", err)
	}
	return nil
}

// matchAll runs the matcher for every template on a pool of workers. Results
// are indexed by template so the merge order matches the load order no matter
// which worker finishes first.
func (r *Recognizer) matchAll(gray *imaging.Gray, templates []imaging.Template) ([][]detection.BoundingBox, error) {
	results := make([][]detection.BoundingBox, len(templates))
	errs := make([]error, len(templates))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(r.opts.Workers, len(templates)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				t := templates[i]
				points, err := r.matcher.Match(gray, t.Gray, r.opts.Thresholds.For(t.Label))
				if err != nil {
					errs[i] = fmt.Errorf("failed to match template %s: %w", t.Label, err)
					continue
				}
				results[i] = detection.BuildBoxes(points, t.Width(), t.Height(), t.Label)
				r.log.Debug().
					Str("template", t.Label).
					Str("kind", detection.KindOf(t.Label).String()).
					Int("matches", len(points)).
					Msg("template matched")
			}
		}()
	}

	for i := range templates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}
