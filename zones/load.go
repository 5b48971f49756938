package zones

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"go-fleetmap/types"
)

type zoneFile struct {
	Zones []types.Zone `yaml:"zones"`
}

// Load reads a zone list from a YAML file of the form
//
//	zones:
//	  - id: ixelles
//	    name: Ixelles
//	    center: [4.372, 50.827]
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading zones file: %w", err)
	}

	var f zoneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing zones YAML: %w", err)
	}
	if len(f.Zones) == 0 {
		return nil, fmt.Errorf("zones file %s declares no zones", path)
	}

	return NewRegistry(f.Zones)
}

// LoadOrDefault loads path when it is set and falls back to the Brussels communes otherwise.
func LoadOrDefault(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
