package main

import (
	"flag"
	"io"
	"os"
	"strings"

	"github.com/ironsheep/solitaire-vision/internal/config"
)

// invocation is a parsed command line.
type invocation struct {
	cfg        *config.Config
	screenshot string
}

// cliFlags mirrors the overridable settings. Only flags present on the command
// line are applied, so unset flags never mask file or environment values.
type cliFlags struct {
	configPath      string
	templates       string
	annotatedOutput string
	stateOutput     string
	rankThreshold   float64
	suitThreshold   float64
	overlap         float64
	rowStep         int
	startingOffset  int
	ignoredRanks    string
	workers         int
	matcher         string
	ocrLanguage     string
	logLevel        string
}

func (f *cliFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "JSON configuration file (default $"+config.EnvConfigFile+")")
	fs.StringVar(&f.templates, "templates", "", "template image directory (default \""+config.DefaultTemplateDir+"\")")
	fs.StringVar(&f.annotatedOutput, "annotated-output", "", "annotated screenshot path, \"\" to skip (default \""+config.DefaultAnnotatedPath+"\")")
	fs.StringVar(&f.stateOutput, "state-output", "", "game-state JSON path, \"\" to skip (default \""+config.DefaultStatePath+"\")")
	fs.Float64Var(&f.rankThreshold, "rank-threshold", 0, "rank match threshold (default 0.79)")
	fs.Float64Var(&f.suitThreshold, "suit-threshold", 0, "suit match threshold (default 0.85)")
	fs.Float64Var(&f.overlap, "overlap", 0, "suppression overlap threshold (default 0.5)")
	fs.IntVar(&f.rowStep, "row-step", 0, "row height in pixels (default 40)")
	fs.IntVar(&f.startingOffset, "starting-offset", 0, "tableau face-down offset in pixels (default 75)")
	fs.StringVar(&f.ignoredRanks, "ignored-ranks", "", "comma-separated discard labels treated as unknown (default \"J\")")
	fs.IntVar(&f.workers, "workers", 0, "template matching workers (default number of CPUs)")
	fs.StringVar(&f.matcher, "matcher", "", "matcher backend: ncc or opencv (default \"ncc\")")
	fs.StringVar(&f.ocrLanguage, "ocr-language", "", "Tesseract language (default \"eng\")")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error (default \"info\")")
}

// apply copies the flags that were set on fs into cfg.
func (f *cliFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "templates":
			cfg.TemplateDir = f.templates
		case "annotated-output":
			cfg.AnnotatedPath = f.annotatedOutput
		case "state-output":
			cfg.StatePath = f.stateOutput
		case "rank-threshold":
			cfg.Thresholds.Rank = f.rankThreshold
		case "suit-threshold":
			cfg.Thresholds.Suit = f.suitThreshold
		case "overlap":
			cfg.OverlapThreshold = f.overlap
		case "row-step":
			cfg.Layout.RowStep = f.rowStep
		case "starting-offset":
			cfg.Layout.StartingOffset = f.startingOffset
		case "ignored-ranks":
			cfg.Layout.IgnoredDiscardRanks = splitRanks(f.ignoredRanks)
		case "workers":
			cfg.Workers = f.workers
		case "matcher":
			cfg.Matcher = f.matcher
		case "ocr-language":
			cfg.OCRLanguage = f.ocrLanguage
		case "log-level":
			cfg.LogLevel = f.logLevel
		}
	})
}

// parseInvocation parses a subcommand's arguments and resolves the layered
// configuration: defaults, file, environment, flags.
func parseInvocation(name string, args []string, stderr io.Writer) (*invocation, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var f cliFlags
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	path := f.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigFile)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, reportErr(fs, err)
	}
	f.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, reportErr(fs, err)
	}

	inv := &invocation{cfg: cfg, screenshot: cfg.Screenshot}
	if fs.NArg() > 0 {
		inv.screenshot = fs.Arg(0)
	}
	return inv, nil
}

func reportErr(fs *flag.FlagSet, err error) error {
	_, _ = io.WriteString(fs.Output(), err.Error()+"\n")
	return err
}

func splitRanks(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
