package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/scale-contest/scale-eval/sim"
)

// TierTable maps test case ids to scoring tiers.
type TierTable struct {
	Cases []TierEntry `yaml:"cases"`
}

// TierEntry is one test case classification.
type TierEntry struct {
	ID   int    `yaml:"id"`
	Tier string `yaml:"tier"`
}

// LoadTierTable reads a tier table from a YAML file.
func LoadTierTable(path string) (*TierTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var table TierTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing tier table %s: %w", path, err)
	}
	return &table, nil
}

// Classify returns the tier for a test case id, falling back to the
// built-in id ranges when the table has no entry for it.
func (t *TierTable) Classify(id int) sim.Tier {
	for _, entry := range t.Cases {
		if entry.ID == id {
			return sim.Tier(entry.Tier)
		}
	}
	return sim.ClassifyTestCase(id)
}
