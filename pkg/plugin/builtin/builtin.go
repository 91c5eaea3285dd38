// Package builtin provides the plugins shipped with gh-profile.
package builtin

import "github.com/harun/ghprofile/pkg/plugin"

const author = "gh-profile"

// All returns fresh instances of every built-in plugin in registration order
func All() []*plugin.Plugin {
	return []*plugin.Plugin{
		Socials(),
		Projects(),
		Stats(),
	}
}

// IDs lists the built-in plugin ids in registration order
func IDs() []string {
	plugins := All()
	ids := make([]string, 0, len(plugins))
	for _, p := range plugins {
		ids = append(ids, p.ID())
	}
	return ids
}
