package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// SchemaVersion is the config schema written by this version
const SchemaVersion = 2

// DefaultFileName is looked up in the working directory when no path is given
const DefaultFileName = "gh-profile.config.json"

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the gh-profile configuration file
type Config struct {
	SchemaVersion int `json:"$schemaVersion" mapstructure:"$schemaVersion" yaml:"$schemaVersion"`

	// Template id used when --template is absent
	Template string `json:"template" mapstructure:"template" yaml:"template"`

	// Output path used when --output is absent
	Output string `json:"output" mapstructure:"output" yaml:"output"`

	TemplatesPath string `json:"templatesPath,omitempty" mapstructure:"templatesPath" yaml:"templatesPath,omitempty"`
	PluginsPath   string `json:"pluginsPath,omitempty" mapstructure:"pluginsPath" yaml:"pluginsPath,omitempty"`

	Token       string `json:"token,omitempty" mapstructure:"token" yaml:"token,omitempty"`
	Force       bool   `json:"force,omitempty" mapstructure:"force" yaml:"force,omitempty"`
	LocalAssets bool   `json:"localAssets,omitempty" mapstructure:"localAssets" yaml:"localAssets,omitempty"`

	GitHub    GitHubConfig    `json:"github" mapstructure:"github" yaml:"github"`
	Customize CustomizeConfig `json:"customize" mapstructure:"customize" yaml:"customize"`

	// Plugins holds enable (true) / disable (false) overrides keyed by plugin id
	Plugins map[string]bool `json:"plugins,omitempty" mapstructure:"plugins" yaml:"plugins,omitempty"`

	// PluginConfig holds per-plugin settings keyed by plugin id
	PluginConfig map[string]map[string]any `json:"pluginConfig,omitempty" mapstructure:"pluginConfig" yaml:"pluginConfig,omitempty"`

	Logging LoggingConfig `json:"logging" mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics" yaml:"metrics"`
}

// GitHubConfig controls which repositories are considered
type GitHubConfig struct {
	IncludePrivate bool     `json:"includePrivate" mapstructure:"includePrivate" yaml:"includePrivate"`
	ExcludeRepos   []string `json:"excludeRepos" mapstructure:"excludeRepos" yaml:"excludeRepos"`
	PinnedRepos    []string `json:"pinnedRepos" mapstructure:"pinnedRepos" yaml:"pinnedRepos"`
	// APIURL points at a GitHub Enterprise API root
	APIURL string `json:"apiUrl,omitempty" mapstructure:"apiUrl" yaml:"apiUrl,omitempty"`
}

// CustomizeConfig holds presentation switches
type CustomizeConfig struct {
	ShowLanguages bool     `json:"showLanguages" mapstructure:"showLanguages" yaml:"showLanguages"`
	ShowStats     bool     `json:"showStats" mapstructure:"showStats" yaml:"showStats"`
	ShowSocial    bool     `json:"showSocial" mapstructure:"showSocial" yaml:"showSocial"`
	Sections      []string `json:"sections" mapstructure:"sections" yaml:"sections"`
	Tools         []string `json:"tools,omitempty" mapstructure:"tools" yaml:"tools,omitempty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level" yaml:"level"`
	File      string `json:"file,omitempty" mapstructure:"file" yaml:"file,omitempty"`
	MaxSize   int    `json:"maxSize" mapstructure:"maxSize" yaml:"maxSize"` // MB
	MaxAge    int    `json:"maxAge" mapstructure:"maxAge" yaml:"maxAge"`    // days
	Compress  bool   `json:"compress" mapstructure:"compress" yaml:"compress"`
	Redaction bool   `json:"redaction" mapstructure:"redaction" yaml:"redaction"`
}

// MetricsConfig controls metrics export
type MetricsConfig struct {
	// Textfile is a node_exporter textfile collector path written after each run
	Textfile string `json:"textfile,omitempty" mapstructure:"textfile" yaml:"textfile,omitempty"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		SchemaVersion: SchemaVersion,
		Template:      "default",
		Output:        "./README.md",
		GitHub: GitHubConfig{
			ExcludeRepos: []string{},
			PinnedRepos:  []string{},
		},
		Customize: CustomizeConfig{
			ShowLanguages: true,
			ShowStats:     true,
			ShowSocial:    true,
			Sections:      []string{},
		},
		Plugins:      map[string]bool{},
		PluginConfig: map[string]map[string]any{},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSize:   10,
			MaxAge:    7,
			Compress:  true,
			Redaction: true,
		},
	}
}

// String returns a JSON representation of the config with the token masked
func (c *Config) String() string {
	masked := *c
	if masked.Token != "" {
		masked.Token = "***"
	}
	data, _ := json.MarshalIndent(masked, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Template == "" {
		errs = append(errs, fmt.Errorf("template id cannot be empty"))
	}
	if c.SchemaVersion != 0 && c.SchemaVersion != SchemaVersion {
		errs = append(errs, fmt.Errorf("unsupported $schemaVersion %d", c.SchemaVersion))
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil || c.Logging.Level == "" {
		errs = append(errs, fmt.Errorf("invalid log level: %q", c.Logging.Level))
	}
	if c.Logging.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("logging.maxSize must be >= 0"))
	}
	if c.Logging.MaxAge < 0 {
		errs = append(errs, fmt.Errorf("logging.maxAge must be >= 0"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// ResolveToken picks the GitHub token: flag, then config (which already
// carries GH_PROFILE_TOKEN), then GITHUB_TOKEN from lookup
func ResolveToken(flag string, cfg *Config, lookup func(string) string) string {
	if flag != "" {
		return flag
	}
	if cfg != nil && cfg.Token != "" {
		return cfg.Token
	}
	if lookup != nil {
		return lookup("GITHUB_TOKEN")
	}
	return ""
}
