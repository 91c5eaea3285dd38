package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

// ManifestFile is the manifest name looked up in every plugin directory
const ManifestFile = "plugin.json"

// DefaultHookTimeout bounds a script hook when the manifest sets none
const DefaultHookTimeout = 30 * time.Second

// Manifest describes a script plugin on disk
type Manifest struct {
	Metadata

	// Engine is a semver constraint the running gh-profile version must satisfy
	Engine  string            `json:"engine,omitempty"`
	Timeout string            `json:"timeout,omitempty"`
	Hooks   map[string]string `json:"hooks"`

	// Dir is the plugin directory; hook commands run there
	Dir string `json:"-"`
}

// HookTimeout returns the parsed timeout, or DefaultHookTimeout
func (m *Manifest) HookTimeout() time.Duration {
	if m.Timeout == "" {
		return DefaultHookTimeout
	}
	d, err := time.ParseDuration(m.Timeout)
	if err != nil || d <= 0 {
		return DefaultHookTimeout
	}
	return d
}

// ManifestLoader loads and validates plugin manifests
type ManifestLoader struct {
	logger        zerolog.Logger
	schemaLoader  gojsonschema.JSONLoader
	engineVersion *semver.Version
}

// NewManifestLoader creates a manifest loader. engineVersion is the running
// application version; manifests with an engine constraint it does not
// satisfy are rejected. An empty or unparsable version skips that check.
func NewManifestLoader(logger zerolog.Logger, engineVersion string) *ManifestLoader {
	l := &ManifestLoader{
		logger:       logger.With().Str("component", "manifest-loader").Logger(),
		schemaLoader: gojsonschema.NewStringLoader(ManifestSchema),
	}
	if engineVersion != "" {
		v, err := semver.NewVersion(engineVersion)
		if err != nil {
			l.logger.Warn().Err(err).Str("version", engineVersion).Msg("Unparsable engine version, skipping engine checks")
		} else {
			l.engineVersion = v
		}
	}
	return l
}

// LoadManifest loads and validates a plugin manifest from a file
func (m *ManifestLoader) LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	manifest, err := m.ParseManifest(data)
	if err != nil {
		return nil, err
	}
	manifest.Dir = filepath.Dir(path)

	m.logger.Debug().
		Str("id", manifest.ID).
		Str("version", manifest.Version).
		Msg("Loaded manifest")

	return manifest, nil
}

// ParseManifest parses and validates manifest JSON
func (m *ManifestLoader) ParseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}

	if err := m.validateSchema(data); err != nil {
		return nil, fmt.Errorf("manifest schema validation failed: %w", err)
	}

	if err := m.validateManifest(&manifest); err != nil {
		return nil, err
	}

	return &manifest, nil
}

func (m *ManifestLoader) validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(m.schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			msgs = append(msgs, resultErr.String())
		}
		return fmt.Errorf("schema validation errors: %s", strings.Join(msgs, "; "))
	}

	return nil
}

// validateManifest performs the checks the schema cannot express
func (m *ManifestLoader) validateManifest(manifest *Manifest) error {
	for _, hook := range sortedKeys(manifest.Hooks) {
		if !ValidHook(hook) {
			return &ValidationError{PluginID: manifest.ID, Hook: hook, Reason: "is not a recognized hook"}
		}
		if strings.TrimSpace(manifest.Hooks[hook]) == "" {
			return &ValidationError{PluginID: manifest.ID, Hook: hook, Reason: "must be a non-empty command"}
		}
	}

	if manifest.Timeout != "" {
		if d, err := time.ParseDuration(manifest.Timeout); err != nil || d <= 0 {
			return &ValidationError{PluginID: manifest.ID, Reason: fmt.Sprintf("invalid timeout %q", manifest.Timeout)}
		}
	}

	return m.CheckEngine(manifest)
}

// CheckEngine verifies the manifest's engine constraint against the running version
func (m *ManifestLoader) CheckEngine(manifest *Manifest) error {
	if manifest.Engine == "" || m.engineVersion == nil {
		return nil
	}

	constraint, err := semver.NewConstraint(manifest.Engine)
	if err != nil {
		return &ValidationError{PluginID: manifest.ID, Reason: fmt.Sprintf("invalid engine constraint %q: %v", manifest.Engine, err)}
	}

	if !constraint.Check(m.engineVersion) {
		return &ValidationError{
			PluginID: manifest.ID,
			Reason:   fmt.Sprintf("requires gh-profile %s, running %s", manifest.Engine, m.engineVersion),
		}
	}
	return nil
}
