package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/nowdoing/internal/tracker"
)

type statusFile struct {
	Statuses []tracker.Status `yaml:"statuses"`
}

// LoadStatuses reads a YAML status list. A missing file yields nil, nil so the
// built-in defaults stay in effect.
func LoadStatuses(path string) ([]tracker.Status, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read statuses file: %w", err)
	}

	var f statusFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode statuses file: %w", err)
	}
	for i := range f.Statuses {
		if f.Statuses[i].Kind == "" {
			f.Statuses[i].Kind = tracker.KindActive
		}
	}
	if err := tracker.ValidateStatuses(f.Statuses); err != nil {
		return nil, fmt.Errorf("statuses file %s: %w", path, err)
	}
	return f.Statuses, nil
}

// WriteStatuses saves statuses as YAML, creating parent directories.
func WriteStatuses(path string, statuses []tracker.Status) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create statuses dir: %w", err)
	}
	raw, err := yaml.Marshal(statusFile{Statuses: statuses})
	if err != nil {
		return fmt.Errorf("encode statuses: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write statuses file: %w", err)
	}
	return nil
}
