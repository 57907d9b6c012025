package catalog

import (
	"fmt"
	"os"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"gopkg.in/yaml.v3"
)

// taxonomyFile is the YAML shape of a catalog file.
type taxonomyFile struct {
	Version    int            `yaml:"version"`
	Categories []categoryYAML `yaml:"categories"`
}

type categoryYAML struct {
	ID    string     `yaml:"id"`
	Name  string     `yaml:"name"`
	Areas []areaYAML `yaml:"areas"`
}

type areaYAML struct {
	ID      string      `yaml:"id"`
	Name    string      `yaml:"name"`
	Focuses []focusYAML `yaml:"focuses"`
}

type focusYAML struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Activities []activityYAML `yaml:"activities"`
}

type activityYAML struct {
	ID                 string      `yaml:"id"`
	Name               string      `yaml:"name"`
	Goal               string      `yaml:"goal,omitempty"`
	Hypothesis         string      `yaml:"hypothesis,omitempty"`
	Uncertainties      string      `yaml:"uncertainties,omitempty"`
	Alternatives       string      `yaml:"alternatives,omitempty"`
	DevelopmentProcess string      `yaml:"development_process,omitempty"`
	Phases             []phaseYAML `yaml:"phases"`
}

type phaseYAML struct {
	ID    string     `yaml:"id"`
	Name  string     `yaml:"name"`
	Steps []stepYAML `yaml:"steps"`
}

type stepYAML struct {
	ID            string             `yaml:"id"`
	Name          string             `yaml:"name"`
	Subcomponents []subcomponentYAML `yaml:"subcomponents"`
}

type subcomponentYAML struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Hint string `yaml:"hint,omitempty"`
}

// Load reads a YAML taxonomy file and returns an indexed catalog.
func Load(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var file taxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	if file.Version != 1 {
		return nil, fmt.Errorf("unsupported catalog version %d", file.Version)
	}

	nodes, err := flatten(&file)
	if err != nil {
		return nil, err
	}
	return NewMemory(nodes), nil
}

func flatten(file *taxonomyFile) ([]*domain.TaxonomyNode, error) {
	var nodes []*domain.TaxonomyNode
	seen := make(map[string]bool)

	add := func(n *domain.TaxonomyNode) error {
		if n.ID == "" {
			return fmt.Errorf("catalog %s %q has no id", n.Level, n.Name)
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate catalog id %q", n.ID)
		}
		seen[n.ID] = true
		nodes = append(nodes, n)
		return nil
	}

	for _, cat := range file.Categories {
		if err := add(&domain.TaxonomyNode{ID: cat.ID, Name: cat.Name, Level: domain.LevelCategory}); err != nil {
			return nil, err
		}
		for _, area := range cat.Areas {
			if err := add(&domain.TaxonomyNode{ID: area.ID, Name: area.Name, Level: domain.LevelArea, ParentID: cat.ID}); err != nil {
				return nil, err
			}
			for _, focus := range area.Focuses {
				if err := add(&domain.TaxonomyNode{ID: focus.ID, Name: focus.Name, Level: domain.LevelFocus, ParentID: area.ID}); err != nil {
					return nil, err
				}
				for _, act := range focus.Activities {
					if err := add(&domain.TaxonomyNode{
						ID: act.ID, Name: act.Name, Level: domain.LevelActivity, ParentID: focus.ID,
						Goal:               act.Goal,
						Hypothesis:         act.Hypothesis,
						Uncertainties:      act.Uncertainties,
						Alternatives:       act.Alternatives,
						DevelopmentProcess: act.DevelopmentProcess,
					}); err != nil {
						return nil, err
					}
					for _, phase := range act.Phases {
						if err := add(&domain.TaxonomyNode{ID: phase.ID, Name: phase.Name, Level: domain.LevelPhase, ParentID: act.ID}); err != nil {
							return nil, err
						}
						for _, step := range phase.Steps {
							if err := add(&domain.TaxonomyNode{ID: step.ID, Name: step.Name, Level: domain.LevelStep, ParentID: phase.ID}); err != nil {
								return nil, err
							}
							for _, sub := range step.Subcomponents {
								if err := add(&domain.TaxonomyNode{
									ID: sub.ID, Name: sub.Name, Level: domain.LevelSubcomponent,
									ParentID: step.ID, Hint: sub.Hint,
								}); err != nil {
									return nil, err
								}
							}
						}
					}
				}
			}
		}
	}

	return nodes, nil
}
