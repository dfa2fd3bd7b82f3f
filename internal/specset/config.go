package specset

import (
	"fmt"
	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/viant/afs"

	"validate-specs/internal/document"
)

// LoadConfig controls how specification files are found and merged.
type LoadConfig struct {
	// Extensions lists the file extensions read as YAML.
	Extensions []string
	// Include holds doublestar patterns, relative to the package directory.
	// When empty every file with a matching extension is read.
	Include []string
	// MergeLists makes inheritance append lists instead of replacing them.
	MergeLists bool
	// Logger receives load progress. Defaults to slog.Default().
	Logger *slog.Logger
	// Metrics is optional.
	Metrics *Metrics
	// FS is the storage service files are read through. Defaults to afs.New().
	FS afs.Service
}

// DefaultConfig returns the default load configuration.
func DefaultConfig() LoadConfig {
	return LoadConfig{
		Extensions: []string{".yaml", ".yml"},
		Logger:     slog.Default(),
	}
}

func (c LoadConfig) withDefaults() (LoadConfig, error) {
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultConfig().Extensions
	}

	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	if c.FS == nil {
		c.FS = afs.New()
	}

	for _, p := range c.Include {
		if !doublestar.ValidatePattern(p) {
			return c, fmt.Errorf("invalid include pattern %q", p)
		}
	}

	return c, nil
}

func (c LoadConfig) mergeOptions() []document.MergeOption {
	if c.MergeLists {
		return []document.MergeOption{document.WithListAppend()}
	}

	return nil
}
