package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Paths holds all the file system paths used by the application
type Paths struct {
	Home       string // ~/.scrollwin
	ConfigPath string // ~/.scrollwin/config.json
	LogsRoot   string // ~/.scrollwin/logs
}

// DefaultPaths returns the default paths, rooted at $SCROLLWIN_HOME when set.
func DefaultPaths() (*Paths, error) {
	root := strings.TrimSpace(os.Getenv("SCROLLWIN_HOME"))
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		root = filepath.Join(home, ".scrollwin")
	}
	return PathsAt(root), nil
}

// PathsAt returns the layout under an explicit root directory.
func PathsAt(root string) *Paths {
	return &Paths{
		Home:       root,
		ConfigPath: filepath.Join(root, "config.json"),
		LogsRoot:   filepath.Join(root, "logs"),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Home, p.LogsRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
