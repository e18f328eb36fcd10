package config

import "adaptive/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`  // debug, info, warn, error
	Format     string          `yaml:"format"` // json, console
	File       string          `yaml:"file"`
	Categories map[string]bool `yaml:"categories"` // Per-category toggles
}

// Options converts the section into logging.Options.
func (c LoggingConfig) Options() logging.Options {
	return logging.Options{
		Level:      c.Level,
		Format:     c.Format,
		OutputPath: c.File,
		Categories: c.Categories,
	}
}

// IsCategoryEnabled returns whether logging is enabled for a category.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}
