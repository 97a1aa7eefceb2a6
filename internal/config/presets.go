// Package config loads the background preset catalog.
//
// Presets are named scene descriptions the UI offers as one-click background
// replacements. A preset dispatch sets the session prompt to the preset's
// prompt and immediately runs a replace transform with it.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

//go:embed presets.toml
var defaultPresetsTOML []byte

// Preset is one named background scene.
type Preset struct {
	ID     string `toml:"id" json:"id"`
	Label  string `toml:"label" json:"label"`
	Prompt string `toml:"prompt" json:"prompt"`
}

type catalog struct {
	Presets []Preset `toml:"preset"`
}

// DefaultPresets returns the built-in preset catalog.
func DefaultPresets() []Preset {
	presets, err := parsePresets(defaultPresetsTOML)
	if err != nil {
		// The embedded file ships with the binary; a parse failure here is a
		// build defect, not a runtime condition.
		panic(fmt.Sprintf("embedded presets.toml is invalid: %v", err))
	}
	return presets
}

// LoadPresets reads a preset catalog from a TOML file. An empty path or a
// missing file falls back to the built-in catalog.
func LoadPresets(path string) ([]Preset, error) {
	if path == "" {
		return DefaultPresets(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", path).Msg("Preset file not found, using built-in presets")
			return DefaultPresets(), nil
		}
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}
	presets, err := parsePresets(data)
	if err != nil {
		return nil, fmt.Errorf("invalid preset file %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("count", len(presets)).Msg("Presets loaded")
	return presets, nil
}

func parsePresets(data []byte) ([]Preset, error) {
	var c catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if len(c.Presets) == 0 {
		return nil, fmt.Errorf("no presets defined")
	}
	seen := make(map[string]bool, len(c.Presets))
	for i, p := range c.Presets {
		if p.ID == "" || p.Label == "" || p.Prompt == "" {
			return nil, fmt.Errorf("preset %d: id, label, and prompt are all required", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate preset id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return c.Presets, nil
}

// FindPreset looks up a preset by ID.
func FindPreset(presets []Preset, id string) (Preset, bool) {
	for _, p := range presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}
