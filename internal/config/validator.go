package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// knownKeys are the top-level keys a config file may contain
var knownKeys = []string{
	schemaVersionKey,
	"template",
	"output",
	"templatesPath",
	"pluginsPath",
	"token",
	"force",
	"localAssets",
	"github",
	"customize",
	"plugins",
	"pluginConfig",
	"logging",
	"metrics",
}

// Validator checks the raw structure of a config file before it is decoded
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateKeys rejects unknown top-level keys
func (v *Validator) ValidateKeys(raw map[string]any) error {
	var unknown []string
	for key := range raw {
		if !slices.Contains(knownKeys, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("invalid config properties: %s", strings.Join(unknown, ", "))
}

// ValidatePlugins requires plugins to map ids to booleans
func (v *Validator) ValidatePlugins(raw map[string]any) error {
	value, ok := raw["plugins"]
	if !ok || value == nil {
		return nil
	}
	plugins, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("plugins must be an object of plugin id to boolean")
	}

	var bad []string
	for id, enabled := range plugins {
		if _, ok := enabled.(bool); !ok {
			bad = append(bad, id)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	return fmt.Errorf("plugins values must be booleans: %s", strings.Join(bad, ", "))
}

// ValidatePluginConfig requires pluginConfig to map ids to objects
func (v *Validator) ValidatePluginConfig(raw map[string]any) error {
	value, ok := raw["pluginConfig"]
	if !ok || value == nil {
		return nil
	}
	configs, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("pluginConfig must be an object of plugin id to object")
	}

	var bad []string
	for id, cfg := range configs {
		if _, ok := cfg.(map[string]any); !ok {
			bad = append(bad, id)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	return fmt.Errorf("pluginConfig values must be objects: %s", strings.Join(bad, ", "))
}

// ValidateRaw runs every structural check and joins the failures
func (v *Validator) ValidateRaw(raw map[string]any) error {
	var errs []error
	for _, check := range []func(map[string]any) error{v.ValidateKeys, v.ValidatePlugins, v.ValidatePluginConfig} {
		if err := check(raw); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
