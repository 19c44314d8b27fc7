// Package project loads the optional buzz.toml manifest that names a
// package and supplements the import search path (§6 "Module
// resolution"). It is sugar over the same search-path mechanism -L
// flags and BUZZ_PATH already provide; a script with no manifest works
// exactly as it did before one existed.
package project

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest is the parsed contents of a buzz.toml file.
type Manifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	// Import lists additional search roots, resolved relative to the
	// manifest's own directory (§6 "each -L path").
	Import struct {
		Roots []string `toml:"roots"`
	} `toml:"import"`

	// dir is the directory the manifest was loaded from, used to resolve
	// Import.Roots to absolute paths.
	dir string
}

// SearchRoots returns Import.Roots resolved against the manifest's
// directory.
func (m *Manifest) SearchRoots() []string {
	if m == nil {
		return nil
	}
	roots := make([]string, len(m.Import.Roots))
	for i, r := range m.Import.Roots {
		if filepath.IsAbs(r) {
			roots[i] = r
		} else {
			roots[i] = filepath.Join(m.dir, r)
		}
	}
	return roots
}

// Find walks upward from startDir looking for a buzz.toml, the same way
// the donor toolchain discovers its own project manifest. It returns
// (nil, nil) — not an error — when none is found; a manifest is always
// optional.
func Find(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, "buzz.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Load parses the manifest at path.
func Load(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, err
	}
	m.dir = filepath.Dir(path)
	return &m, nil
}
