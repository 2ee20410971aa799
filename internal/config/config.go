// Package config holds the recognizer settings and their layered loading:
// built-in defaults, an optional JSON file, then SOLITAIRE_VISION_* environment
// variables. Command-line flags are applied on top by the caller.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/ironsheep/solitaire-vision/internal/detection"
	"github.com/ironsheep/solitaire-vision/internal/imaging"
	"github.com/ironsheep/solitaire-vision/internal/layout"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SOLITAIRE_VISION_"

// EnvConfigFile names the JSON config file when --config is not given.
const EnvConfigFile = EnvPrefix + "CONFIG"

// Default output locations.
const (
	DefaultTemplateDir   = "templates"
	DefaultAnnotatedPath = "output_with_boxes.png"
	DefaultStatePath     = "output.json"
)

// Config is the complete recognizer configuration.
type Config struct {
	Screenshot    string `json:"screenshot"`
	TemplateDir   string `json:"template_dir"`
	AnnotatedPath string `json:"annotated_output"`
	StatePath     string `json:"state_output"`

	Thresholds       detection.Thresholds `json:"thresholds"`
	OverlapThreshold float64              `json:"overlap_threshold"`
	Layout           layout.Options       `json:"layout"`

	// Matcher selects the template matching backend: "ncc" or "opencv".
	Matcher string `json:"matcher"`
	Workers int    `json:"workers"`

	RankColor string `json:"rank_color"`
	SuitColor string `json:"suit_color"`

	OCRLanguage string `json:"ocr_language"`
	OCRScale    int    `json:"ocr_scale"`

	LogLevel string `json:"log_level"`
}

// Default returns the configuration calibrated for the reference board.
func Default() *Config {
	return &Config{
		TemplateDir:      DefaultTemplateDir,
		AnnotatedPath:    DefaultAnnotatedPath,
		StatePath:        DefaultStatePath,
		Thresholds:       detection.DefaultThresholds(),
		OverlapThreshold: detection.DefaultOverlapThreshold,
		Layout:           layout.DefaultOptions(),
		Matcher:          "ncc",
		Workers:          runtime.NumCPU(),
		RankColor:        "#00FF00",
		SuitColor:        "#FF00FF",
		OCRLanguage:      "eng",
		OCRScale:         3,
		LogLevel:         "info",
	}
}

// Load builds a configuration from defaults, the JSON file at path (skipped
// when path is empty) and the environment. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the JSON file at path onto c. Keys missing from the file
// keep their current values; unknown keys are an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays SOLITAIRE_VISION_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	c.Screenshot = getEnv("SCREENSHOT", c.Screenshot)
	c.TemplateDir = getEnv("TEMPLATES", c.TemplateDir)
	c.AnnotatedPath = getEnv("ANNOTATED_OUTPUT", c.AnnotatedPath)
	c.StatePath = getEnv("STATE_OUTPUT", c.StatePath)
	c.Matcher = getEnv("MATCHER", c.Matcher)
	c.RankColor = getEnv("RANK_COLOR", c.RankColor)
	c.SuitColor = getEnv("SUIT_COLOR", c.SuitColor)
	c.OCRLanguage = getEnv("OCR_LANGUAGE", c.OCRLanguage)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	if v := getEnv("IGNORED_RANKS", ""); v != "" {
		c.Layout.IgnoredDiscardRanks = splitList(v)
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	collect(getEnvFloat("RANK_THRESHOLD", &c.Thresholds.Rank))
	collect(getEnvFloat("SUIT_THRESHOLD", &c.Thresholds.Suit))
	collect(getEnvFloat("OVERLAP", &c.OverlapThreshold))
	collect(getEnvInt("ROW_STEP", &c.Layout.RowStep))
	collect(getEnvInt("STARTING_OFFSET", &c.Layout.StartingOffset))
	collect(getEnvInt("WORKERS", &c.Workers))
	collect(getEnvInt("OCR_SCALE", &c.OCRScale))
	return errors.Join(errs...)
}

// Validate reports every setting that is out of range.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.TemplateDir != "", "template_dir is required")
	check(inRange(c.Thresholds.Rank, -1, 1), "thresholds.rank %v outside [-1, 1]", c.Thresholds.Rank)
	check(inRange(c.Thresholds.Suit, -1, 1), "thresholds.suit %v outside [-1, 1]", c.Thresholds.Suit)
	check(inRange(c.OverlapThreshold, 0, 1), "overlap_threshold %v outside [0, 1]", c.OverlapThreshold)
	check(c.Layout.RowStep > 0, "layout.row_step must be positive, got %d", c.Layout.RowStep)
	check(c.Layout.StartingOffset >= 0, "layout.starting_offset must not be negative, got %d", c.Layout.StartingOffset)
	check(c.Workers > 0, "workers must be positive, got %d", c.Workers)
	check(c.OCRScale > 0, "ocr_scale must be positive, got %d", c.OCRScale)

	if _, err := detection.NewMatcher(c.Matcher); err != nil {
		errs = append(errs, err)
	}
	if _, err := imaging.ParseColor(c.RankColor); err != nil {
		errs = append(errs, fmt.Errorf("rank_color: %w", err))
	}
	if _, err := imaging.ParseColor(c.SuitColor); err != nil {
		errs = append(errs, fmt.Errorf("suit_color: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, dst *float64) error {
	val := getEnv(key, "")
	if val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = f
	return nil
}

func getEnvInt(key string, dst *int) error {
	val := getEnv(key, "")
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = n
	return nil
}
