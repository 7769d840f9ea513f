// Package seed loads the default workspace contents from a YAML file.
package seed

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/models"
)

// Plan is a sample plan as written in the seed file.
type Plan struct {
	Place         string `yaml:"place"`
	Type          string `yaml:"type"`
	Time          string `yaml:"time"`
	Status        string `yaml:"status"`
	Location      string `yaml:"location"`
	GoogleMapLink string `yaml:"google_map_link"`
	CreatedBy     string `yaml:"created_by"`
}

// Seed holds the default locations and sample plans.
type Seed struct {
	Locations []string `yaml:"locations"`
	Plans     []Plan   `yaml:"plans"`
}

// Load reads a seed file. A missing file yields an empty Seed.
func Load(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Seed{}, nil
		}
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes seed YAML.
func Parse(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}
	return &s, nil
}

// BuildPlans normalizes the sample plans, attributing those without a creator to owner.
func (s *Seed) BuildPlans(owner core.Actor, now time.Time) ([]models.Plan, error) {
	plans := make([]models.Plan, 0, len(s.Plans))
	for i, p := range s.Plans {
		plan, err := core.NormalizePlan(models.PlanInput{
			Place:         p.Place,
			Type:          p.Type,
			Time:          p.Time,
			Status:        p.Status,
			Location:      p.Location,
			GoogleMapLink: p.GoogleMapLink,
			CreatedBy:     p.CreatedBy,
		}, owner, now)
		if err != nil {
			return nil, fmt.Errorf("seed: plan %d (%q): %w", i, p.Place, err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
