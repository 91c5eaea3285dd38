package plugin

import "strings"

// Validate reports whether p satisfies the plugin contract. It never panics.
func Validate(p *Plugin) bool {
	return AssertValid(p) == nil
}

// AssertValid checks p against the plugin contract and returns a
// *ValidationError describing the first failed check.
//
// Checks run in order: non-nil candidate, required metadata fields (all
// missing names are reported together), at least one implemented hook.
// Hook fields are typed, so "hook is not callable" cannot happen for a
// Plugin value; manifests are checked for that in ManifestLoader.
func AssertValid(p *Plugin) error {
	if p == nil {
		return &ValidationError{Reason: "plugin must not be nil"}
	}

	if missing := missingMetadata(p.Metadata); len(missing) > 0 {
		return &ValidationError{PluginID: p.Metadata.ID, Missing: missing}
	}

	if len(p.ImplementedHooks()) == 0 {
		return &ValidationError{
			PluginID: p.Metadata.ID,
			Reason:   "plugin must implement at least one lifecycle hook (init, beforeRender, render, afterRender)",
		}
	}

	return nil
}

func missingMetadata(m Metadata) []string {
	required := []struct {
		name  string
		value string
	}{
		{"id", m.ID},
		{"name", m.Name},
		{"description", m.Description},
		{"version", m.Version},
		{"author", m.Author},
	}

	var missing []string
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}
