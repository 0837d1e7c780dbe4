package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SelectionPolicy lists the feature groups (by label) that must have a selection
// before a configuration can be committed. An empty policy requires nothing.
//
//	default:
//	  required_groups: []
//	products:
//	  12:
//	    required_groups: ["Color", "Storage"]
type SelectionPolicy struct {
	Default  GroupRequirement          `yaml:"default"`
	Products map[uint]GroupRequirement `yaml:"products"`
}

type GroupRequirement struct {
	RequiredGroups []string `yaml:"required_groups"`
}

// LoadPolicy reads the policy file at path. A missing file yields the default (empty) policy.
func LoadPolicy(path string) (*SelectionPolicy, error) {
	policy := &SelectionPolicy{Products: map[uint]GroupRequirement{}}
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return policy, nil
		}
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	return ParsePolicy(data)
}

func ParsePolicy(data []byte) (*SelectionPolicy, error) {
	policy := &SelectionPolicy{}
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}
	if policy.Products == nil {
		policy.Products = map[uint]GroupRequirement{}
	}
	return policy, nil
}

// RequiredLabels returns the group labels required for productID.
// A product entry replaces the default list rather than extending it.
func (p *SelectionPolicy) RequiredLabels(productID uint) []string {
	if p == nil {
		return nil
	}
	req, ok := p.Products[productID]
	if !ok {
		req = p.Default
	}

	labels := make([]string, 0, len(req.RequiredGroups))
	for _, label := range req.RequiredGroups {
		label = strings.TrimSpace(label)
		if label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}
