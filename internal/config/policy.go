package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// NamingPolicy customizes the naming convention sent to the model.
type NamingPolicy struct {
	// Rules replace the default naming convention lines.
	Rules []string `yaml:"rules"`
	// DefaultInstructions are used when a request carries no instructions.
	DefaultInstructions string `yaml:"default_instructions"`
}

// LoadNamingPolicy loads a naming policy from a YAML file.
func LoadNamingPolicy(path string) (*NamingPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var policy NamingPolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, err
	}

	rules := policy.Rules[:0]
	for _, r := range policy.Rules {
		if r = strings.TrimSpace(r); r != "" {
			rules = append(rules, r)
		}
	}
	policy.Rules = rules
	policy.DefaultInstructions = strings.TrimSpace(policy.DefaultInstructions)

	if len(policy.Rules) == 0 && policy.DefaultInstructions == "" {
		return nil, fmt.Errorf("%s: policy defines neither rules nor default_instructions", path)
	}
	return &policy, nil
}
