package motion

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.json
var embeddedPresets embed.FS

// PresetData is the on-disk form of a preset (JSON or YAML).
type PresetData struct {
	Description string    `json:"description" yaml:"description"`
	Angles      []float64 `json:"angles" yaml:"angles"`
	Rate        float64   `json:"rate,omitempty" yaml:"rate,omitempty"`
	Mode        Mode      `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// Preset is a named joint pose that can be added to a sequence as a keyframe.
type Preset struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Angles      Angles  `json:"angles"`
	Rate        float64 `json:"rate,omitempty"`
	Mode        Mode    `json:"mode"`
}

// Keyframe returns a new keyframe built from the preset.
func (p *Preset) Keyframe() Keyframe {
	kf := NewKeyframe(p.Angles)
	kf.Rate = p.Rate
	if p.Mode.Valid() {
		kf.Mode = p.Mode
	}
	return kf
}

// LoadEmbedded loads a built-in preset by name.
func LoadEmbedded(name string) (*Preset, error) {
	data, err := embeddedPresets.ReadFile(fmt.Sprintf("data/%s.json", name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return parsePreset(name, data, json.Unmarshal)
}

// ListEmbedded returns the names of all built-in presets.
func ListEmbedded() ([]string, error) {
	entries, err := embeddedPresets.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded presets: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	return names, nil
}

// LoadFromFile loads a preset from a .json, .yaml or .yml file. The name is the file's base name.
func LoadFromFile(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	ext := filepath.Ext(path)
	name := strings.TrimSuffix(filepath.Base(path), ext)

	switch strings.ToLower(ext) {
	case ".json":
		return parsePreset(name, data, json.Unmarshal)
	case ".yaml", ".yml":
		return parsePreset(name, data, yaml.Unmarshal)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrInvalidPreset, ext)
	}
}

// LoadFromDirectory loads every preset file in dir.
func LoadFromDirectory(dir string) ([]*Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list preset files: %w", err)
	}

	var presets []*Preset
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		p, err := LoadFromFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", entry.Name(), err)
		}
		presets = append(presets, p)
	}
	return presets, nil
}

func parsePreset(name string, data []byte, unmarshal func([]byte, any) error) (*Preset, error) {
	var raw PresetData
	if err := unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPreset, name, err)
	}
	if len(raw.Angles) != JointCount {
		return nil, fmt.Errorf("%w: %s has %d angles, want %d", ErrInvalidPreset, name, len(raw.Angles), JointCount)
	}
	if raw.Mode != "" && !raw.Mode.Valid() {
		return nil, fmt.Errorf("%w: %s has unknown mode %q", ErrInvalidPreset, name, raw.Mode)
	}
	if raw.Mode == "" {
		raw.Mode = ModeDuration
	}

	p := &Preset{
		Name:        name,
		Description: raw.Description,
		Rate:        raw.Rate,
		Mode:        raw.Mode,
	}
	copy(p.Angles[:], raw.Angles)
	return p, nil
}

// Library holds named presets.
type Library struct {
	mu      sync.RWMutex
	presets map[string]*Preset
}

// NewLibrary creates an empty preset library.
func NewLibrary() *Library {
	return &Library{presets: make(map[string]*Preset)}
}

// LoadBuiltIn registers every embedded preset.
func (l *Library) LoadBuiltIn() error {
	names, err := ListEmbedded()
	if err != nil {
		return err
	}
	for _, name := range names {
		p, err := LoadEmbedded(name)
		if err != nil {
			return fmt.Errorf("failed to load preset %q: %w", name, err)
		}
		l.Register(p)
	}
	return nil
}

// LoadDir registers every preset found in dir, replacing built-ins of the same name.
func (l *Library) LoadDir(dir string) error {
	presets, err := LoadFromDirectory(dir)
	if err != nil {
		return err
	}
	for _, p := range presets {
		l.Register(p)
	}
	return nil
}

// Register adds or replaces a preset.
func (l *Library) Register(p *Preset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.presets[p.Name] = p
}

// Get retrieves a preset by name.
func (l *Library) Get(name string) (*Preset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, nil
}

// List returns every preset sorted by name.
func (l *Library) List() []*Preset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Preset, 0, len(l.presets))
	for _, p := range l.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the number of presets.
func (l *Library) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.presets)
}

// Search returns preset names whose name or description contains query, ignoring case.
func (l *Library) Search(query string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	q := strings.ToLower(query)
	var matches []string
	for name, p := range l.presets {
		if strings.Contains(strings.ToLower(name), q) || strings.Contains(strings.ToLower(p.Description), q) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches
}
