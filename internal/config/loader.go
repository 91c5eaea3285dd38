package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. GH_PROFILE_TEMPLATE
const EnvPrefix = "GH_PROFILE"

// envKeys are bound even when the file does not mention them
var envKeys = []string{"token", "template", "output", "logging.level"}

// Loader handles configuration loading
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader. An empty path means
// DefaultFileName in the working directory.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// GetConfigPath returns the config file path
func (l *Loader) GetConfigPath() string {
	if l.configPath != "" {
		return l.configPath
	}
	return DefaultFileName
}

// LoadRaw reads the config file into a generic map without migrating it.
// A missing file yields (nil, nil).
func (l *Loader) LoadRaw() (map[string]any, error) {
	configPath := l.GetConfigPath()

	content, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw any
	if isYAML(configPath) {
		err = yaml.Unmarshal(content, &raw)
	} else {
		err = json.Unmarshal(content, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: config must be an object", ErrInvalidConfig)
	}
	return m, nil
}

// Load loads, migrates and validates the configuration. A missing file
// yields DefaultConfig with environment overrides applied.
func (l *Loader) Load() (*Config, error) {
	raw, err := l.LoadRaw()
	if err != nil {
		return nil, err
	}

	var migrated map[string]any
	if raw != nil {
		if version, ok := raw[schemaVersionKey]; ok && !isV2(raw) {
			return nil, fmt.Errorf("%w: unsupported $schemaVersion %v", ErrInvalidConfig, version)
		}
		migrated = Migrate(raw)
		if err := NewValidator().ValidateRaw(migrated); err != nil {
			return nil, err
		}
	}

	// Setup viper
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if migrated != nil {
		if err := v.MergeConfigMap(migrated); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.SchemaVersion = SchemaVersion
	restorePluginSections(cfg, migrated)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// restorePluginSections copies plugins and pluginConfig from the raw file.
// Viper lowercases nested keys, and plugin ids and plugin config keys must
// reach the registry as written.
func restorePluginSections(cfg *Config, raw map[string]any) {
	if plugins, ok := raw["plugins"].(map[string]any); ok {
		cfg.Plugins = make(map[string]bool, len(plugins))
		for id, value := range plugins {
			if enabled, ok := value.(bool); ok {
				cfg.Plugins[id] = enabled
			}
		}
	}

	if sections, ok := raw["pluginConfig"].(map[string]any); ok {
		cfg.PluginConfig = make(map[string]map[string]any, len(sections))
		for id, value := range sections {
			if section, ok := value.(map[string]any); ok {
				cfg.PluginConfig[id] = maps.Clone(section)
			}
		}
	}
}

// SaveRaw writes raw to the config path, as YAML or JSON by extension. Keys
// are written exactly as given.
func (l *Loader) SaveRaw(raw map[string]any) error {
	configPath := l.GetConfigPath()

	data, err := Marshal(raw, isYAML(configPath))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal encodes raw as indented JSON or YAML
func Marshal(raw map[string]any, asYAML bool) ([]byte, error) {
	if asYAML {
		data, err := yaml.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		return data, nil
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return append(data, '\n'), nil
}

// Load is a convenience function that creates a loader and loads the config
func Load(configPath string) (*Config, error) {
	loader := NewLoader(configPath)
	return loader.Load()
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
