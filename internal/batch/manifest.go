package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Item is one model to render, as listed in an input manifest.
type Item struct {
	Name       string `json:"name" yaml:"name"`
	Geometry   string `json:"geometry" yaml:"geometry"`
	Identifier string `json:"identifier,omitempty" yaml:"identifier"`
	Texture    string `json:"texture,omitempty" yaml:"texture"`
	Animations string `json:"animations,omitempty" yaml:"animations"`
}

// ManifestEntry represents one item in the output manifest.
type ManifestEntry struct {
	Name     string `json:"name"`
	Geometry string `json:"geometry"`
	Texture  string `json:"texture,omitempty"`
	Image    string `json:"image,omitempty"`
	Error    string `json:"error,omitempty"`
}

// LoadItems reads an input manifest: a YAML (.yaml/.yml) or JSON list of
// items. Relative paths are taken from the manifest's directory.
func LoadItems(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch: read %s: %w", path, err)
	}

	var items []Item
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &items)
	default:
		err = json.Unmarshal(data, &items)
	}
	if err != nil {
		return nil, fmt.Errorf("batch: parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range items {
		it := &items[i]
		if it.Geometry == "" {
			return nil, fmt.Errorf("batch: %s: item %d has no geometry", path, i)
		}
		it.Geometry = relTo(dir, it.Geometry)
		it.Texture = relTo(dir, it.Texture)
		it.Animations = relTo(dir, it.Animations)
		if it.Name == "" {
			it.Name = it.Identifier
		}
		if it.Name == "" {
			it.Name = strings.TrimSuffix(filepath.Base(it.Geometry), ".json")
		}
	}
	return items, nil
}

func relTo(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// WriteManifest writes the results as JSON. Image paths are relative to the
// manifest's directory.
func WriteManifest(path string, results []Result) error {
	dir := filepath.Dir(path)
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		e := ManifestEntry{
			Name:     r.Name,
			Geometry: r.Geometry,
			Texture:  r.Texture,
			Error:    r.Error,
		}
		if r.Success {
			e.Image = r.Output
			if rel, err := filepath.Rel(dir, r.Output); err == nil {
				e.Image = filepath.ToSlash(rel)
			}
		}
		entries[i] = e
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
