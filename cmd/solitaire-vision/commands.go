package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/ironsheep/solitaire-vision/internal/detection"
	"github.com/ironsheep/solitaire-vision/internal/imaging"
	"github.com/ironsheep/solitaire-vision/internal/ocr"
	"github.com/ironsheep/solitaire-vision/internal/pipeline"
	"github.com/ironsheep/solitaire-vision/internal/server"
)

var errNoScreenshot = errors.New("no screenshot given: pass a path or set SOLITAIRE_VISION_SCREENSHOT")

type command func(inv *invocation, stdout io.Writer, logger zerolog.Logger) error

var commands = map[string]command{
	"read":      runRead,
	"detect":    runDetect,
	"templates": runTemplates,
	"verify":    runVerify,
	"serve":     runServe,
}

func newRecognizer(inv *invocation, logger zerolog.Logger) (*pipeline.Recognizer, error) {
	opts, err := pipeline.OptionsFromConfig(inv.cfg)
	if err != nil {
		return nil, err
	}
	matcher, err := detection.NewMatcher(inv.cfg.Matcher)
	if err != nil {
		return nil, err
	}
	return pipeline.New(imaging.NewImageCache(), matcher, opts, logger), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// runRead recognizes the screenshot, writes both outputs and prints the state.
func runRead(inv *invocation, stdout io.Writer, logger zerolog.Logger) error {
	if inv.screenshot == "" {
		return errNoScreenshot
	}
	r, err := newRecognizer(inv, logger)
	if err != nil {
		return err
	}

	res, err := r.Run(inv.screenshot, inv.cfg.AnnotatedPath, inv.cfg.StatePath)
	if res != nil {
		if werr := writeJSON(stdout, res.State); werr != nil {
			err = errors.Join(err, werr)
		}
	}
	return err
}

// runDetect prints the detections without assembling a state.
func runDetect(inv *invocation, stdout io.Writer, logger zerolog.Logger) error {
	if inv.screenshot == "" {
		return errNoScreenshot
	}
	r, err := newRecognizer(inv, logger)
	if err != nil {
		return err
	}
	img, err := r.Load(inv.screenshot)
	if err != nil {
		return err
	}
	d, err := r.Detect(img)
	if err != nil {
		return err
	}
	return writeJSON(stdout, d)
}

// runTemplates prints one line per template.
func runTemplates(inv *invocation, stdout io.Writer, logger zerolog.Logger) error {
	r, err := newRecognizer(inv, logger)
	if err != nil {
		return err
	}
	templates, err := r.Templates()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tKIND\tSIZE\tTHRESHOLD\tPATH")
	for _, t := range templates {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%.2f\t%s\n",
			t.Label, detection.KindOf(t.Label), t.Width(), t.Height(),
			inv.cfg.Thresholds.For(t.Label), t.Path)
	}
	return tw.Flush()
}

// runVerify prints the OCR cross-check report.
func runVerify(inv *invocation, stdout io.Writer, logger zerolog.Logger) error {
	if inv.screenshot == "" {
		return errNoScreenshot
	}
	r, err := newRecognizer(inv, logger)
	if err != nil {
		return err
	}
	img, err := r.Load(inv.screenshot)
	if err != nil {
		return err
	}
	d, err := r.Detect(img)
	if err != nil {
		return err
	}

	reader, err := ocr.NewReader(inv.cfg.OCRLanguage)
	if err != nil {
		return err
	}
	defer reader.Close()

	report := ocr.Verify(reader, img, d.Cards, inv.cfg.OCRScale)
	logger.Info().Str("summary", report.String()).Msg("rank verification finished")
	return writeJSON(stdout, report)
}

// runServe runs the MCP server until stdin closes.
func runServe(inv *invocation, stdout io.Writer, logger zerolog.Logger) error {
	logger.Debug().
		Str("version", Version).
		Str("built", BuildTime).
		Str("commit", GitCommit).
		Msg("starting MCP server")
	return server.New(inv.cfg, logger).Run()
}
