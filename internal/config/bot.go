package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/biomebot/internal/model"
)

// PartConfig is a part entry in a bot file. The dictionary is given inline
// with Dict or read from DictFile, relative to the bot file.
type PartConfig struct {
	Name         string  `yaml:"name"`
	Availability float64 `yaml:"availability"`
	Generosity   float64 `yaml:"generosity"`
	Retention    float64 `yaml:"retention"`
	Dict         string  `yaml:"dict,omitempty"`
	DictFile     string  `yaml:"dictFile,omitempty"`
}

// BotFile is a bot definition on disk.
type BotFile struct {
	ID           string          `yaml:"id"`
	DisplayName  string          `yaml:"displayName"`
	PhotoURL     string          `yaml:"photoURL,omitempty"`
	CreatorUID   string          `yaml:"creatorUID,omitempty"`
	CreatorName  string          `yaml:"creatorName,omitempty"`
	Timestamp    time.Time       `yaml:"timestamp,omitempty"`
	Parts        []string        `yaml:"parts"`
	Hub          model.HubParams `yaml:"hub"`
	Memory       string          `yaml:"memory,omitempty"`
	MemoryFile   string          `yaml:"memoryFile,omitempty"`
	PartSettings []PartConfig    `yaml:"partSettings"`

	path string
}

// LoadBot reads a bot file.
func LoadBot(path string) (*BotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bot file: %w", err)
	}
	f := &BotFile{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse bot file: %w", err)
	}
	if f.ID == "" {
		return nil, fmt.Errorf("bot file %s: id is required", path)
	}
	seen := map[string]bool{}
	for _, p := range f.PartSettings {
		if p.Name == "" {
			return nil, fmt.Errorf("bot file %s: part without a name", path)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("bot file %s: duplicate part %q", path, p.Name)
		}
		seen[p.Name] = true
	}
	f.path = path
	return f, nil
}

// Path returns the file the bot was loaded from.
func (f *BotFile) Path() string {
	return f.path
}

// Save writes the bot file to path, or back to where it was loaded from when
// path is empty.
func (f *BotFile) Save(path string) error {
	if path == "" {
		path = f.path
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal bot file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write bot file: %w", err)
	}
	f.path = path
	return nil
}

// Settings resolves the bot settings, reading MemoryFile when set.
func (f *BotFile) Settings() (model.BotSettings, error) {
	mem := f.Memory
	if f.MemoryFile != "" {
		data, err := os.ReadFile(f.resolve(f.MemoryFile))
		if err != nil {
			return model.BotSettings{}, fmt.Errorf("read memory file: %w", err)
		}
		mem = string(data)
	}
	return model.BotSettings{
		ID:          f.ID,
		DisplayName: f.DisplayName,
		PhotoURL:    f.PhotoURL,
		CreatorUID:  f.CreatorUID,
		CreatorName: f.CreatorName,
		Timestamp:   f.Timestamp,
		Parts:       append([]string(nil), f.Parts...),
		Memory:      mem,
		Hub:         f.Hub,
	}, nil
}

// Part resolves one part's settings, reading DictFile when set.
func (f *BotFile) Part(name string) (model.PartSettings, error) {
	i := f.partIndex(name)
	if i < 0 {
		return model.PartSettings{}, fmt.Errorf("unknown part %q", name)
	}
	p := f.PartSettings[i]
	src := p.Dict
	if p.DictFile != "" {
		data, err := os.ReadFile(f.resolve(p.DictFile))
		if err != nil {
			return model.PartSettings{}, fmt.Errorf("read dictionary for %s: %w", name, err)
		}
		src = string(data)
	}
	return model.PartSettings{
		Name:         p.Name,
		Availability: p.Availability,
		Generosity:   p.Generosity,
		Retention:    p.Retention,
		DictSource:   src,
	}, nil
}

// RaisePart moves name one place toward the front of the default order.
func (f *BotFile) RaisePart(name string) error {
	i := slices.Index(f.Parts, name)
	if i < 0 {
		return fmt.Errorf("part %q is not in the order", name)
	}
	if i > 0 {
		f.Parts[i-1], f.Parts[i] = f.Parts[i], f.Parts[i-1]
	}
	return nil
}

// DropPart moves name one place toward the back of the default order.
func (f *BotFile) DropPart(name string) error {
	i := slices.Index(f.Parts, name)
	if i < 0 {
		return fmt.Errorf("part %q is not in the order", name)
	}
	if i < len(f.Parts)-1 {
		f.Parts[i+1], f.Parts[i] = f.Parts[i], f.Parts[i+1]
	}
	return nil
}

// RemovePart deletes name from the default order and its settings.
func (f *BotFile) RemovePart(name string) error {
	i := slices.Index(f.Parts, name)
	j := f.partIndex(name)
	if i < 0 && j < 0 {
		return fmt.Errorf("unknown part %q", name)
	}
	if i >= 0 {
		f.Parts = slices.Delete(f.Parts, i, i+1)
	}
	if j >= 0 {
		f.PartSettings = slices.Delete(f.PartSettings, j, j+1)
	}
	return nil
}

func (f *BotFile) partIndex(name string) int {
	return slices.IndexFunc(f.PartSettings, func(p PartConfig) bool { return p.Name == name })
}

func (f *BotFile) resolve(p string) string {
	if filepath.IsAbs(p) || f.path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(f.path), p)
}
