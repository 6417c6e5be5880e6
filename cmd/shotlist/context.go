package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"shotlist/internal/config"
	"shotlist/internal/imageinfo"
	"shotlist/internal/logging"
	"shotlist/internal/probecache"
	"shotlist/internal/sequence"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// newClassifier wires the inspector stack from config. The returned cleanup
// closes the probe cache.
func (c *commandContext) newClassifier(ctx context.Context) (*sequence.Classifier, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	var cache *probecache.Cache
	if cfg.Cache.Enabled {
		cache, err = probecache.Open(ctx, cfg.Cache.Path, logger)
		if err != nil {
			logging.WarnWithContext(logger, "probe cache unavailable", "probe_cache_open_failed",
				logging.String(logging.FieldPath, cfg.Cache.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run `shotlist cache clear` or delete the cache file"),
				logging.String(logging.FieldImpact, "image dimensions are read without caching"))
			cache = nil
		}
	}

	var probe imageinfo.ProbeFunc
	if cfg.Classifier.ProbeDimensions {
		probe = imageinfo.FFprobeFunc(cfg.FFprobeBinary())
	}
	inspector := imageinfo.NewInspector(imageinfo.Options{
		Probe:  probe,
		Cache:  cache,
		Logger: logger,
	})
	classifier := sequence.NewClassifier(sequence.Options{
		Formats:   cfg.Classifier.ImageFormats,
		Inspector: inspector,
		Workers:   cfg.Classifier.InspectWorkers,
		Logger:    logger,
	})

	cleanup := func() {
		if cache == nil {
			return
		}
		if err := cache.Close(); err != nil {
			logger.Warn("failed to close probe cache", logging.Error(err))
		}
	}
	return classifier, cleanup, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
