package api

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// InstancesConfig lists repositories that each get their own workflow run.
type InstancesConfig struct {
	Instances []Instance `yaml:"instances"`
}

// Instance is one workflow run with its own initial context.
type Instance struct {
	Name       string         `yaml:"name"`
	Repository string         `yaml:"repository"`
	Context    map[string]any `yaml:"context"`
}

// TaskContext returns the instance context with the repository applied.
func (i Instance) TaskContext() Values {
	ctx := make(Values, len(i.Context)+1)
	for k, v := range i.Context {
		ctx[k] = v
	}
	if i.Repository != "" {
		ctx[KeyRepository] = i.Repository
	}
	return ctx
}

// LoadInstances reads an instances YAML file, unmarshals it, and validates.
func LoadInstances(filename string) (*InstancesConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading instances file: %w", err)
	}

	var cfg InstancesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing instances file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating instances file: %w", err)
	}

	return &cfg, nil
}

// Validate checks the instances configuration for errors.
func (c *InstancesConfig) Validate() error {
	if len(c.Instances) == 0 {
		return fmt.Errorf("instances list is empty")
	}

	names := make(map[string]bool)

	for i, inst := range c.Instances {
		if inst.Name == "" {
			return fmt.Errorf("instance %d: name is required", i)
		}
		if names[inst.Name] {
			return fmt.Errorf("instance %q: duplicate name", inst.Name)
		}
		names[inst.Name] = true
	}

	return nil
}
