// Package prefs handles curator user preferences persistence.
// Preferences are stored in ~/.config/curator/prefs.toml.
package prefs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds the view settings restored on the next start.
type Prefs struct {
	Theme    string `toml:"theme"`
	SortKey  string `toml:"sort_key"`
	SortDir  string `toml:"sort_dir"`
	PageSize int    `toml:"page_size,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/curator/prefs.toml"
	defaultTheme     = "Nightfox"
	defaultSortDir   = "asc"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

func defaults() Prefs {
	return Prefs{Theme: defaultTheme, SortDir: defaultSortDir}
}

// Load reads preferences from the given path. Any problem reading the file
// yields defaults; preferences are never worth failing startup over.
func Load(path string) Prefs {
	resolved, err := resolvePath(path)
	if err != nil {
		return defaults()
	}

	file, err := os.Open(resolved)
	if err != nil {
		return defaults()
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return defaults()
	}

	p := defaults()
	if err := toml.Unmarshal(bytes, &p); err != nil {
		return defaults()
	}

	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	p.SortKey = strings.TrimSpace(p.SortKey)
	switch strings.ToLower(strings.TrimSpace(p.SortDir)) {
	case "desc":
		p.SortDir = "desc"
	default:
		p.SortDir = defaultSortDir
	}
	if p.PageSize < 0 {
		p.PageSize = 0
	}
	return p
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
