// Package garden holds the built-in gardening reference catalog.
package garden

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LocalImagePrefix is the only accepted prefix for images served from the static dir.
const LocalImagePrefix = "images/"

//go:embed plants.yaml
var plantsYAML []byte

// Plant describes care requirements for one plant. Notes is the only optional field.
type Plant struct {
	Name       string `yaml:"name" json:"name"`
	LatinName  string `yaml:"latin_name" json:"latin_name"`
	Category   string `yaml:"category" json:"category"`
	Icon       string `yaml:"icon" json:"icon"`
	Image      string `yaml:"image" json:"image"`
	Sunlight   string `yaml:"sunlight" json:"sunlight"`
	Water      string `yaml:"water" json:"water"`
	Season     string `yaml:"season" json:"season"`
	Difficulty string `yaml:"difficulty" json:"difficulty"`
	Location   string `yaml:"location" json:"location"`
	Spacing    string `yaml:"spacing" json:"spacing"`
	Soil       string `yaml:"soil" json:"soil"`
	Harvest    string `yaml:"harvest" json:"harvest"`
	Notes      string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// IsRemoteImage reports whether Image is an absolute URL.
func (p Plant) IsRemoteImage() bool {
	return strings.HasPrefix(p.Image, "http://") || strings.HasPrefix(p.Image, "https://")
}

func (p Plant) required() []struct{ name, value string } {
	return []struct{ name, value string }{
		{"name", p.Name},
		{"latin_name", p.LatinName},
		{"category", p.Category},
		{"icon", p.Icon},
		{"image", p.Image},
		{"sunlight", p.Sunlight},
		{"water", p.Water},
		{"season", p.Season},
		{"difficulty", p.Difficulty},
		{"location", p.Location},
		{"spacing", p.Spacing},
		{"soil", p.Soil},
		{"harvest", p.Harvest},
	}
}

// Catalog is the immutable plant list loaded at startup.
type Catalog struct {
	plants []Plant
}

// Load decodes the built-in catalog and validates it. Warnings are returned
// for local images missing under staticDir; any other problem is an error.
func Load(staticDir string) (*Catalog, []string, error) {
	return Parse(plantsYAML, staticDir)
}

// Parse is Load for an arbitrary YAML document.
func Parse(doc []byte, staticDir string) (*Catalog, []string, error) {
	var plants []Plant
	if err := yaml.Unmarshal(doc, &plants); err != nil {
		return nil, nil, fmt.Errorf("decode gardening catalog: %w", err)
	}
	if len(plants) == 0 {
		return nil, nil, errors.New("gardening catalog is empty")
	}

	warnings, err := Validate(plants, staticDir)
	if err != nil {
		return nil, warnings, err
	}
	return &Catalog{plants: plants}, warnings, nil
}

// Validate checks every entry. It fails on the first missing required field
// or malformed image reference, and collects a warning for each local image
// that does not exist on disk. staticDir == "" skips the file check.
func Validate(plants []Plant, staticDir string) ([]string, error) {
	var warnings []string
	for i, p := range plants {
		label := p.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}

		for _, f := range p.required() {
			if strings.TrimSpace(f.value) == "" {
				return warnings, fmt.Errorf("plant %s: missing required field %q", label, f.name)
			}
		}

		if err := checkImageRef(p.Image); err != nil {
			return warnings, fmt.Errorf("plant %s: %w", label, err)
		}

		if !p.IsRemoteImage() && staticDir != "" {
			path := filepath.Join(staticDir, filepath.FromSlash(p.Image))
			if _, err := os.Stat(path); err != nil {
				warnings = append(warnings, fmt.Sprintf("plant %s: image %s not found", label, path))
			}
		}
	}
	return warnings, nil
}

func checkImageRef(ref string) error {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		u, err := url.Parse(ref)
		if err != nil || u.Host == "" {
			return fmt.Errorf("image %q is not a valid URL", ref)
		}
		return nil
	}
	if !strings.HasPrefix(ref, LocalImagePrefix) || len(ref) == len(LocalImagePrefix) {
		return fmt.Errorf("image %q must start with %q or be an absolute http(s) URL", ref, LocalImagePrefix)
	}
	if strings.Contains(ref, "..") {
		return fmt.Errorf("image %q must not contain '..'", ref)
	}
	return nil
}

// Plants returns a copy of the catalog.
func (c *Catalog) Plants() []Plant {
	out := make([]Plant, len(c.plants))
	copy(out, c.plants)
	return out
}

// LocalImages lists image paths relative to the static dir.
func (c *Catalog) LocalImages() []string {
	var out []string
	for _, p := range c.plants {
		if !p.IsRemoteImage() {
			out = append(out, p.Image)
		}
	}
	return out
}
