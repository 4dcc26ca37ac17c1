package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/swdee/go-sportscam/category"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateTracking(); err != nil {
		return err
	}
	if err := c.EventsConfig().Validate(); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if err := c.validateHighlights(); err != nil {
		return err
	}
	if c.Pipeline.EventLogSize < 1 {
		return errors.New("pipeline.event_log_size must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return errors.New("video.width and video.height must be positive")
	}
	if c.Video.FPS <= 0 {
		return errors.New("video.fps must be positive")
	}
	return nil
}

func (c *Config) validateTracking() error {
	params, err := c.TrackerParams()
	if err != nil {
		return err
	}
	for _, cat := range category.All {
		if err := params[cat].Validate(); err != nil {
			return fmt.Errorf("tracking %s: %w", cat, err)
		}
	}

	table, err := c.ClassTable()
	if err != nil {
		return err
	}
	if _, err := category.NewRouter(table); err != nil {
		return fmt.Errorf("tracking.class_table: %w", err)
	}
	return nil
}

func (c *Config) validateHighlights() error {
	hl, err := c.HighlightConfig()
	if err != nil {
		return err
	}
	if err := hl.Validate(); err != nil {
		return fmt.Errorf("highlights: %w", err)
	}
	return nil
}
