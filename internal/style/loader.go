package style

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader resolves presets by name or path.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader creates a Loader with the standard search paths.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "screensnip", "styles"),
		SystemDir: "/usr/share/screensnip/styles",
	}
}

// Load resolves a preset. Order: explicit file path, embedded presets,
// ConfigDir, SystemDir. An empty name returns the default preset.
func (l *Loader) Load(name string) (*Style, error) {
	if name == "" {
		return Default(), nil
	}

	if _, err := os.Stat(name); err == nil {
		return parseFile(name)
	}

	filename := name
	if !strings.HasSuffix(filename, ".style") {
		filename += ".style"
	}

	if f, err := embeddedStyles.Open("defaults/" + filename); err == nil {
		defer f.Close()
		return Parse(f)
	}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return parseFile(path)
		}
	}
	return nil, fmt.Errorf("style %q not found", name)
}

func parseFile(path string) (*Style, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
