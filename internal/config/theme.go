package config

import (
	"fmt"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// Manifest reads the theme manifest file. It returns nil when no file is
// configured.
func (t ThemeConfig) Manifest() (*theme.Manifest, error) {
	path := strings.TrimSpace(t.File)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read theme %s: %w", path, err)
	}
	var manifest theme.Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("config: parse theme %s: %w", path, err)
	}
	return &manifest, nil
}
