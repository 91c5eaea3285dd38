package config

import "maps"

const schemaVersionKey = "$schemaVersion"

// DetectVersion returns 2 for configs stamped with $schemaVersion 2 and 1
// for everything else
func DetectVersion(raw any) int {
	if isV2(raw) {
		return 2
	}
	return 1
}

// Migrate upgrades raw to the current schema. v2 input is copied, v1 input
// (no $schemaVersion) is stamped and gains templatesPath, and anything that
// is not an object becomes an empty v2 config. raw is never modified.
func Migrate(raw any) map[string]any {
	if isV2(raw) {
		return maps.Clone(raw.(map[string]any))
	}

	if m, ok := raw.(map[string]any); ok {
		if _, stamped := m[schemaVersionKey]; !stamped {
			migrated := maps.Clone(m)
			migrated[schemaVersionKey] = SchemaVersion
			if _, ok := migrated["templatesPath"]; !ok {
				migrated["templatesPath"] = ""
			}
			return migrated
		}
	}

	return emptyV2()
}

func isV2(raw any) bool {
	m, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	switch v := m[schemaVersionKey].(type) {
	case int:
		return v == SchemaVersion
	case float64:
		return v == SchemaVersion
	}
	return false
}

func emptyV2() map[string]any {
	return map[string]any{
		schemaVersionKey: SchemaVersion,
		"template":       "",
		"output":         "",
		"github": map[string]any{
			"includePrivate": false,
			"excludeRepos":   []any{},
			"pinnedRepos":    []any{},
		},
		"customize": map[string]any{
			"showLanguages": false,
			"showStats":     false,
			"showSocial":    false,
			"sections":      []any{},
		},
	}
}
