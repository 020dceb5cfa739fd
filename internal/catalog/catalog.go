// Package catalog holds the destination catalog: the ordered set of
// category-labeled filesystem paths offered to the user as transfer
// targets. The catalog is built once at startup and immutable afterwards.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry maps a human-readable category label to a download path.
type Entry struct {
	Label string `yaml:"label"`
	Path  string `yaml:"path"`
}

// Catalog is an ordered list of destination entries. Labels are unique.
type Catalog []Entry

// Default categories used when no catalog file is configured. Paths match
// the daemon-side layout the deployment has always used.
func Default() Catalog {
	return Catalog{
		{Label: "🎬 Movies", Path: "/downloads/complete/movies"},
		{Label: "📺 TV Shows", Path: "/downloads/complete/tvseries"},
		{Label: "📚 Books", Path: "/downloads/complete/books"},
		{Label: "🎮 Games", Path: "/downloads/complete/games"},
		{Label: "📁 Other", Path: "/downloads/complete/soft"},
		{Label: "📖 Courses", Path: "/downloads/complete/courses"},
	}
}

// LoadFile reads and parses a catalog YAML file (a list of label/path
// items) and validates it.
func LoadFile(filePath string) (Catalog, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the catalog invariants: at least one entry, unique
// non-empty labels, non-empty paths.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	seen := make(map[string]bool, len(c))
	for i, e := range c {
		if e.Label == "" {
			return fmt.Errorf("catalog entry %d has an empty label", i)
		}
		if e.Path == "" {
			return fmt.Errorf("catalog entry %q has an empty path", e.Label)
		}
		if seen[e.Label] {
			return fmt.Errorf("duplicate catalog label %q", e.Label)
		}
		seen[e.Label] = true
	}
	return nil
}
