package seed

import (
	"fmt"
	"os"

	"amizades/internal/models"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written data set for local development.
type Fixture struct {
	Profiles    []models.Profile `yaml:"profiles"`
	Friendships [][]string       `yaml:"friendships"`
	Requests    []FixtureRequest `yaml:"requests"`
}

// FixtureRequest is a pending request in a fixture.
type FixtureRequest struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LoadFixture reads and validates a YAML fixture.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes a YAML fixture and checks that every edge names a known profile.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	known := make(map[string]bool, len(f.Profiles))
	for _, p := range f.Profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("fixture profile %q has no id", p.Username)
		}
		if known[p.ID] {
			return nil, fmt.Errorf("fixture profile id %q is duplicated", p.ID)
		}
		known[p.ID] = true
	}
	for _, pair := range f.Friendships {
		if len(pair) != 2 {
			return nil, fmt.Errorf("fixture friendship %v must name exactly two profiles", pair)
		}
		if !known[pair[0]] || !known[pair[1]] {
			return nil, fmt.Errorf("fixture friendship %v references an unknown profile", pair)
		}
	}
	for _, r := range f.Requests {
		if !known[r.From] || !known[r.To] {
			return nil, fmt.Errorf("fixture request %s->%s references an unknown profile", r.From, r.To)
		}
	}
	return &f, nil
}
