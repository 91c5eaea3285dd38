package plugin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DiscoveredPlugin is a plugin directory found on disk
type DiscoveredPlugin struct {
	// Name is the directory name, not necessarily the manifest id
	Name         string
	Path         string
	ManifestPath string
}

// Discovery scans directories to find script plugins
type Discovery struct {
	logger zerolog.Logger
}

// NewDiscovery creates a new plugin discovery instance
func NewDiscovery(logger zerolog.Logger) *Discovery {
	return &Discovery{
		logger: logger.With().Str("component", "plugin-discovery").Logger(),
	}
}

// Discover scans every directory in dirs, in order. Missing directories are
// skipped; other scan failures are logged and the directory is skipped.
func (d *Discovery) Discover(dirs ...string) []DiscoveredPlugin {
	var discovered []DiscoveredPlugin
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		plugins, err := d.scanDirectory(dir)
		if err != nil {
			d.logger.Warn().Err(err).Str("dir", dir).Msg("Failed to scan plugin directory")
			continue
		}
		discovered = append(discovered, plugins...)
	}

	d.logger.Debug().Int("count", len(discovered)).Msg("Plugin discovery completed")
	return discovered
}

// scanDirectory scans a single directory for plugins. os.ReadDir sorts
// entries by name, which fixes the registration order of script plugins.
func (d *Discovery) scanDirectory(dir string) ([]DiscoveredPlugin, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			d.logger.Debug().Str("dir", dir).Msg("Directory does not exist, skipping")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var discovered []DiscoveredPlugin
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginDir := filepath.Join(dir, entry.Name())
		manifestPath := filepath.Join(pluginDir, ManifestFile)

		if _, err := os.Stat(manifestPath); err != nil {
			if os.IsNotExist(err) {
				d.logger.Debug().
					Str("dir", pluginDir).
					Msg("Directory does not contain plugin.json, skipping")
				continue
			}
			d.logger.Warn().
				Err(err).
				Str("dir", pluginDir).
				Msg("Failed to check for plugin.json")
			continue
		}

		plugin := DiscoveredPlugin{
			Name:         entry.Name(),
			Path:         pluginDir,
			ManifestPath: manifestPath,
		}
		discovered = append(discovered, plugin)
		d.logger.Debug().
			Str("name", plugin.Name).
			Str("path", plugin.Path).
			Msg("Discovered plugin")
	}

	return discovered, nil
}
