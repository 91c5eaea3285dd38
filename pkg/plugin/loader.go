package plugin

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// LoadResult summarises a LoadDir run. Keys of Errors are directory names
// for manifests that failed to load, and plugin ids otherwise.
type LoadResult struct {
	Loaded []string
	Failed []string
	Errors map[string]error
}

// Loader discovers script plugins and registers them
type Loader struct {
	logger         zerolog.Logger
	discovery      *Discovery
	manifestLoader *ManifestLoader
}

// NewLoader creates a loader; engineVersion gates manifest engine constraints
func NewLoader(logger zerolog.Logger, engineVersion string) *Loader {
	return &Loader{
		logger:         logger.With().Str("component", "plugin-loader").Logger(),
		discovery:      NewDiscovery(logger),
		manifestLoader: NewManifestLoader(logger, engineVersion),
	}
}

// LoadDir registers every valid script plugin under dir with reg. Invalid
// manifests and rejected registrations are logged and skipped. A missing
// directory yields an empty result.
func (l *Loader) LoadDir(ctx context.Context, dir string, reg *Registry) (*LoadResult, error) {
	result := &LoadResult{
		Loaded: []string{},
		Failed: []string{},
		Errors: make(map[string]error),
	}

	for _, discovered := range l.discovery.Discover(dir) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		manifest, err := l.manifestLoader.LoadManifest(discovered.ManifestPath)
		if err != nil {
			l.logger.Warn().Err(err).Str("dir", discovered.Path).Msg("Skipping script plugin")
			result.Failed = append(result.Failed, discovered.Name)
			result.Errors[discovered.Name] = err
			continue
		}

		if !reg.Register(NewScriptPlugin(manifest, l.logger, WithOptionsSource(reg.Options))) {
			result.Failed = append(result.Failed, manifest.ID)
			result.Errors[manifest.ID] = fmt.Errorf("plugin %s was rejected by the registry", manifest.ID)
			continue
		}
		result.Loaded = append(result.Loaded, manifest.ID)
	}

	l.logger.Debug().
		Str("dir", dir).
		Int("loaded", len(result.Loaded)).
		Int("failed", len(result.Failed)).
		Msg("Script plugins loaded")
	return result, nil
}
