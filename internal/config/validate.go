package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateSequence(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateClassifier() error {
	if len(c.Classifier.ImageFormats) == 0 {
		return errors.New("classifier.image_formats must include at least one format")
	}
	for _, format := range c.Classifier.ImageFormats {
		if strings.ContainsAny(format, `./\ `) {
			return fmt.Errorf("classifier.image_formats: invalid extension %q", format)
		}
	}
	if c.Classifier.InspectWorkers <= 0 {
		return errors.New("classifier.inspect_workers must be positive")
	}
	return nil
}

func (c *Config) validateSequence() error {
	if c.Sequence.Padding < 0 {
		return errors.New("sequence.padding must be >= 0 (0 derives it from the frames)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Watch.DebounceMillis < 0 {
		return errors.New("watch.debounce_millis must be >= 0")
	}
	return nil
}
