package policy

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a policy file and merges it over the built-in defaults.
// Only keys present in the file override defaults; absent keys keep their
// default values so a minimal file stays minimal.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse policy file %q: %w", path, err)
	}

	if cfg.Version != 1 {
		return nil, errors.New("unsupported policy version")
	}

	if cfg.Rules == nil {
		cfg.Rules = make(map[string]RuleConfig)
	}
	if err := mergeProbeBounds(cfg, data); err != nil {
		return nil, fmt.Errorf("parse policy file %q: %w", path, err)
	}
	if err := cfg.CompilePatterns(); err != nil {
		return nil, fmt.Errorf("policy file %q: %w", path, err)
	}

	return cfg, nil
}

// mergeProbeBounds overlays the file's probe_bounds entries field-wise over
// the default bounds. Plain unmarshalling would replace a whole TimingBounds
// struct per probe type, silently zeroing every floor and ceiling the file
// leaves out.
func mergeProbeBounds(cfg *Config, data []byte) error {
	var shadow struct {
		ProbeBounds map[string]yaml.Node `yaml:"probe_bounds"`
	}
	if err := yaml.Unmarshal(data, &shadow); err != nil {
		return err
	}
	if shadow.ProbeBounds == nil {
		if cfg.ProbeBounds == nil {
			cfg.ProbeBounds = Default().ProbeBounds
		}
		return nil
	}

	merged := Default().ProbeBounds
	for probeType, node := range shadow.ProbeBounds {
		bounds := merged[probeType]
		if err := node.Decode(&bounds); err != nil {
			return fmt.Errorf("probe_bounds.%s: %w", probeType, err)
		}
		merged[probeType] = bounds
	}
	cfg.ProbeBounds = merged
	return nil
}
