// Package validate holds the per-field checks that turn a provider record
// into findings. Every check is pure: it never fails, it only reports.
package validate

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed heuristics.yaml
var defaultHeuristicsYAML []byte

// Heuristics holds the lookup tables the validators match against.
type Heuristics struct {
	// PlaceholderPhones are normalized ten-digit strings known to be filler.
	PlaceholderPhones []string `yaml:"placeholder_phones"`
	// OutdatedAddressMarkers are normalized substrings that mark an address
	// as a known stale placeholder.
	OutdatedAddressMarkers []string `yaml:"outdated_address_markers"`
}

// DefaultHeuristics returns the embedded heuristic tables.
func DefaultHeuristics() *Heuristics {
	var h Heuristics
	if err := yaml.Unmarshal(defaultHeuristicsYAML, &h); err != nil {
		panic("validate: embedded heuristics.yaml is malformed: " + err.Error())
	}
	return &h
}

// LoadHeuristics reads heuristic tables from a YAML file. Sections left
// empty in the file keep the embedded defaults.
func LoadHeuristics(path string) (*Heuristics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "validate: read heuristics %s", path)
	}

	h := DefaultHeuristics()
	var override Heuristics
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrapf(err, "validate: parse heuristics %s", path)
	}

	if len(override.PlaceholderPhones) > 0 {
		h.PlaceholderPhones = override.PlaceholderPhones
	}
	if len(override.OutdatedAddressMarkers) > 0 {
		h.OutdatedAddressMarkers = override.OutdatedAddressMarkers
	}
	return h, nil
}
