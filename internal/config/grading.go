package config

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/scorecard/internal/grading"
)

const (
	EnvGradingMarkingMode   = "SCORECARD_GRADING_MARKING_MODE"
	EnvGradingFeedbackStyle = "SCORECARD_GRADING_FEEDBACK_STYLE"
	EnvGradingPacing        = "SCORECARD_GRADING_PACING"
)

// GradingConfig holds default grading behavior.
type GradingConfig struct {
	MarkingMode   string `toml:"marking_mode"`
	FeedbackStyle string `toml:"feedback_style"`
	Pacing        string `toml:"pacing"`
}

// PacingDuration returns Pacing as a time.Duration.
func (c *GradingConfig) PacingDuration() time.Duration {
	d, _ := time.ParseDuration(c.Pacing)
	return d
}

// Options converts the configuration into orchestrator options.
func (c *GradingConfig) Options() grading.Options {
	return grading.Options{
		MarkingMode:   c.MarkingMode,
		FeedbackStyle: c.FeedbackStyle,
		Pacing:        c.PacingDuration(),
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *GradingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *GradingConfig) Merge(overlay *GradingConfig) {
	if overlay.MarkingMode != "" {
		c.MarkingMode = overlay.MarkingMode
	}
	if overlay.FeedbackStyle != "" {
		c.FeedbackStyle = overlay.FeedbackStyle
	}
	if overlay.Pacing != "" {
		c.Pacing = overlay.Pacing
	}
}

func (c *GradingConfig) loadDefaults() {
	if c.MarkingMode == "" {
		c.MarkingMode = grading.MarkAuto
	}
	if c.FeedbackStyle == "" {
		c.FeedbackStyle = grading.FeedbackDetailed
	}
	if c.Pacing == "" {
		c.Pacing = "500ms"
	}
}

func (c *GradingConfig) loadEnv() {
	if v := os.Getenv(EnvGradingMarkingMode); v != "" {
		c.MarkingMode = v
	}
	if v := os.Getenv(EnvGradingFeedbackStyle); v != "" {
		c.FeedbackStyle = v
	}
	if v := os.Getenv(EnvGradingPacing); v != "" {
		c.Pacing = v
	}
}

func (c *GradingConfig) validate() error {
	switch c.MarkingMode {
	case grading.MarkAuto, grading.MarkSuggestions:
	default:
		return fmt.Errorf("invalid marking_mode: %q", c.MarkingMode)
	}
	switch c.FeedbackStyle {
	case grading.FeedbackBrief, grading.FeedbackDetailed:
	default:
		return fmt.Errorf("invalid feedback_style: %q", c.FeedbackStyle)
	}
	if _, err := time.ParseDuration(c.Pacing); err != nil {
		return fmt.Errorf("invalid pacing: %w", err)
	}
	return nil
}
