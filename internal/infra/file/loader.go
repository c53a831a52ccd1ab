// Package file loads game configurations from JSON documents on disk and
// carries the bundled default ladder.
package file

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"millionaire-quiz/internal/domain"
)

// DefaultConfigID names the bundled configuration.
const DefaultConfigID = "classic"

//go:embed default.json
var defaultConfigJSON []byte

// Default returns the bundled 12-step configuration.
func Default() domain.GameConfig {
	cfg, err := Parse(defaultConfigJSON)
	if err != nil {
		panic(fmt.Sprintf("bundled game config: %v", err))
	}
	return cfg
}

// Parse decodes and validates a JSON configuration document.
func Parse(data []byte) (domain.GameConfig, error) {
	var cfg domain.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return domain.GameConfig{}, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return domain.GameConfig{}, err
	}
	return cfg, nil
}

// ReadConfig reads and validates the configuration stored at path.
func ReadConfig(path string) (domain.GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.GameConfig{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return domain.GameConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Loader resolves config ids to <dir>/<id>.json. The bundled configuration
// answers for DefaultConfigID unless the directory overrides it.
type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

func (l *Loader) LoadConfig(_ context.Context, configID string) (domain.GameConfig, error) {
	if configID == "" || strings.ContainsAny(configID, `/\`) || strings.HasPrefix(configID, ".") {
		return domain.GameConfig{}, fmt.Errorf("%w: %q", domain.ErrConfigNotFound, configID)
	}
	if l.dir != "" {
		cfg, err := ReadConfig(filepath.Join(l.dir, configID+".json"))
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.GameConfig{}, err
		}
	}
	if configID == DefaultConfigID {
		return Default(), nil
	}
	return domain.GameConfig{}, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, configID)
}
