package watcher

import (
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Options configures the watcher.
type Options struct {
	// Files restricts events to these base names. Empty means every file.
	Files []string

	// IgnorePatterns are filepath.Match patterns on the base name.
	IgnorePatterns []string

	// Quiet is how long the directory must be still before the handler runs.
	Quiet time.Duration
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.Quiet <= 0 {
		o.Quiet = 500 * time.Millisecond
	}
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{"*.tmp", "*.swp", "*~"}
	}
}

// shouldIgnore reports whether path is outside the watched set.
func (o *Options) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	for _, pattern := range o.IgnorePatterns {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return len(o.Files) > 0 && !slices.Contains(o.Files, base)
}
