package models

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ToJSON renders the aggregate result as indented JSON.
func (r *AggregatedResult) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result to JSON: %w", err)
	}
	return data, nil
}

// ToYAML renders the aggregate result as YAML, used for archival exports and
// test fixtures.
func (r *AggregatedResult) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal result to YAML: %w", err)
	}
	return data, nil
}
