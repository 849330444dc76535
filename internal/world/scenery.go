package world

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadScenery reads a pre-parsed scenery description from a JSON file at
// path. The decoded
// RawScenery still goes through Build's three ordered passes, so a
// malformed file surfaces as the same configuration-error class as a bad
// importer output would.
func LoadScenery(path string) (*RawScenery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("world: read scenery %s: %w", path, err)
	}
	var raw RawScenery
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("world: parse scenery %s: %w", path, err)
	}
	return &raw, nil
}
