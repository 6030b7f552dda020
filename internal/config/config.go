// Package config loads and saves the host-side configuration profile a
// CLI or other caller hands to the core (spec.md §6.3): the aligner's
// SimilarityConfig and the token aligner's Config, bundled into one
// YAML file. Grounded in the teacher's pkg/validate/profile.go
// (LoadProfileFromFile / SaveProfileToFile), which does the same
// read-YAML-bytes-into-a-typed-struct job for a validation profile.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/latticework/contractdiff/internal/align"
	"github.com/latticework/contractdiff/internal/tokenalign"
)

// Profile bundles every tunable the core accepts, the on-disk
// equivalent of the `config` parameter to compare() in spec.md §4.8.
type Profile struct {
	Name       string                   `yaml:"name"`
	Similarity align.SimilarityConfig   `yaml:"similarity"`
	TokenAlign tokenalign.Config        `yaml:"token_align"`
}

// DefaultProfile returns a Profile built from both subsystems' defaults.
func DefaultProfile() Profile {
	return Profile{
		Name:       "default",
		Similarity: align.DefaultSimilarityConfig(),
		TokenAlign: tokenalign.DefaultConfig(),
	}
}

// LoadFromFile reads a YAML profile from disk.
func LoadFromFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile file %s: %w", path, err)
	}
	return FromYAML(data)
}

// FromYAML parses a Profile from YAML bytes, falling back to the
// default for any field left unset in the source document.
func FromYAML(data []byte) (Profile, error) {
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse YAML profile: %w", err)
	}
	return p, nil
}

// ToYAML serializes a Profile to YAML bytes.
func (p Profile) ToYAML() ([]byte, error) {
	return yaml.Marshal(p)
}

// SaveToFile writes a Profile to a YAML file on disk.
func (p Profile) SaveToFile(path string) error {
	data, err := p.ToYAML()
	if err != nil {
		return fmt.Errorf("serialize profile to YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write profile file %s: %w", path, err)
	}
	return nil
}
