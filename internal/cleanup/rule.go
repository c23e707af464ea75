package cleanup

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"

	"github.com/devenv-tools/devenv/internal/cleanup/manifest"
)

// RuleType selects the transformation a rule performs.
type RuleType string

const (
	RuleBlockDelete     RuleType = "block-delete"
	RuleLineTag         RuleType = "line-tag"
	RuleDependencyPrune RuleType = "dependency-prune"
	RuleFileGlobDelete  RuleType = "file-glob-delete"
)

var ruleTypes = []RuleType{RuleBlockDelete, RuleLineTag, RuleDependencyPrune, RuleFileGlobDelete}

// Rule is one declarative cleanup rule. Immutable during a run.
type Rule struct {
	ID            string   `yaml:"id"`
	Type          RuleType `yaml:"type"`
	Glob          string   `yaml:"glob,omitempty"`
	StartMarker   string   `yaml:"start_marker,omitempty"`
	EndMarker     string   `yaml:"end_marker,omitempty"`
	Tag           string   `yaml:"tag,omitempty"`
	Ecosystem     string   `yaml:"ecosystem,omitempty"`
	RemoveDeps    []string `yaml:"remove_deps,omitempty"`
	RemoveDevDeps []string `yaml:"remove_dev_deps,omitempty"`
	Feature       string   `yaml:"feature,omitempty"` // only triggers when listed via --feature
	Reason        string   `yaml:"reason,omitempty"`
}

// Profile is a named rule set.
type Profile struct {
	Description string `yaml:"description,omitempty"`
	Rules       []Rule `yaml:"rules"`
}

// Config is the parsed rule configuration file.
type Config struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// DefaultConfigNames are searched in the project dir when --config is not given.
var DefaultConfigNames = []string{"devenv.cleanup.yaml", "devenv.cleanup.yml", ".devenv/cleanup.yaml"}

// LoadConfig reads and validates a rule configuration.
// Any failure is a *ConfigError and fatal to the run.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return ParseConfig(path, data)
}

// ParseConfig parses and validates raw YAML config data.
func ParseConfig(path string, data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if len(cfg.Profiles) == 0 {
		return nil, &ConfigError{Path: path, Err: errors.New("no profiles defined")}
	}
	for name, profile := range cfg.Profiles {
		seen := make(map[string]bool)
		for i, r := range profile.Rules {
			if err := validateRule(r); err != nil {
				return nil, &ConfigError{Path: path, Err: fmt.Errorf("profile %q rule %d: %w", name, i, err)}
			}
			if seen[r.ID] {
				return nil, &ConfigError{Path: path, Err: fmt.Errorf("profile %q: duplicate rule id %q", name, r.ID)}
			}
			seen[r.ID] = true
		}
	}
	return &cfg, nil
}

func validateRule(r Rule) error {
	if r.ID == "" {
		return errors.New("missing id")
	}
	if !slices.Contains(ruleTypes, r.Type) {
		return fmt.Errorf("rule %q: unknown type %q", r.ID, r.Type)
	}
	switch r.Type {
	case RuleBlockDelete:
		if r.Glob == "" || r.StartMarker == "" || r.EndMarker == "" {
			return fmt.Errorf("rule %q: block-delete requires glob, start_marker and end_marker", r.ID)
		}
	case RuleLineTag:
		if r.Glob == "" || r.Tag == "" {
			return fmt.Errorf("rule %q: line-tag requires glob and tag", r.ID)
		}
	case RuleDependencyPrune:
		if r.Ecosystem == "" {
			return fmt.Errorf("rule %q: dependency-prune requires ecosystem", r.ID)
		}
		if _, err := manifest.ParseEcosystem(r.Ecosystem); err != nil {
			return fmt.Errorf("rule %q: %w", r.ID, err)
		}
		if len(r.RemoveDeps) == 0 && len(r.RemoveDevDeps) == 0 {
			return fmt.Errorf("rule %q: dependency-prune requires remove_deps or remove_dev_deps", r.ID)
		}
	case RuleFileGlobDelete:
		if r.Glob == "" {
			return fmt.Errorf("rule %q: file-glob-delete requires glob", r.ID)
		}
	}
	return nil
}

// ResolveProfile returns the named profile's rules.
// Unknown names fail with a fuzzy "did you mean" suggestion.
func (c *Config) ResolveProfile(name string) ([]Rule, error) {
	if p, ok := c.Profiles[name]; ok {
		return p.Rules, nil
	}
	names := make([]string, 0, len(c.Profiles))
	for n := range c.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	if suggestion := closest(name, names); suggestion != "" {
		return nil, &ConfigError{Err: fmt.Errorf("unknown profile %q (did you mean %q?)", name, suggestion)}
	}
	return nil, &ConfigError{Err: fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(names, ", "))}
}

// FilterRules applies --only/--exclude id lists and --feature gating.
// Unknown ids in only/exclude are fatal: a typo silently disabling a rule
// would defeat the point of an explicit filter.
func FilterRules(rules []Rule, only, exclude, features []string) ([]Rule, error) {
	known := make(map[string]bool, len(rules))
	ids := make([]string, 0, len(rules))
	for _, r := range rules {
		known[r.ID] = true
		ids = append(ids, r.ID)
	}
	for _, id := range append(append([]string{}, only...), exclude...) {
		if !known[id] {
			if suggestion := closest(id, ids); suggestion != "" {
				return nil, &ConfigError{Err: fmt.Errorf("unknown rule id %q (did you mean %q?)", id, suggestion)}
			}
			return nil, &ConfigError{Err: fmt.Errorf("unknown rule id %q", id)}
		}
	}

	featureSet := make(map[string]bool, len(features))
	for _, f := range features {
		featureSet[f] = true
	}

	var out []Rule
	for _, r := range rules {
		if len(only) > 0 && !slices.Contains(only, r.ID) {
			continue
		}
		if slices.Contains(exclude, r.ID) {
			continue
		}
		if r.Feature != "" && !featureSet[r.Feature] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// closest returns the best fuzzy match for name among candidates, or "".
func closest(name string, candidates []string) string {
	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}
	return candidates[matches[0].Index]
}
