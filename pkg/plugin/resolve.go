package plugin

import (
	"sort"
	"strings"
)

// ResolutionInput is everything the resolver weighs, highest tier first
type ResolutionInput struct {
	AllPluginIDs []string
	CLIEnable    []string
	CLIDisable   []string
	// Config holds persisted enable (true) / disable (false) overrides
	Config map[string]bool
}

// Resolution partitions AllPluginIDs into enabled and disabled ids
type Resolution struct {
	Enabled  []string
	Disabled []string
}

// IsEnabled reports whether id resolved to enabled
func (r Resolution) IsEnabled(id string) bool {
	return contains(r.Enabled, id)
}

// IsDisabled reports whether id resolved to disabled
func (r Resolution) IsDisabled(id string) bool {
	return contains(r.Disabled, id)
}

// Resolve computes final plugin enablement. Precedence, highest first:
// CLI disables, CLI enables, config disables (unless CLI-enabled), config
// enables (unless already disabled), then default enable. A disable is never
// undone by a later rule. Ids outside AllPluginIDs are ignored.
func Resolve(in ResolutionInput) Resolution {
	enabled := newOrderedSet()
	disabled := newOrderedSet()

	cliEnabled := make(map[string]struct{}, len(in.CLIEnable))
	for _, id := range in.CLIEnable {
		cliEnabled[id] = struct{}{}
	}

	configIDs := make([]string, 0, len(in.Config))
	for id := range in.Config {
		configIDs = append(configIDs, id)
	}
	sort.Strings(configIDs)

	for _, id := range in.CLIDisable {
		disabled.add(id)
		enabled.remove(id)
	}

	for _, id := range in.CLIEnable {
		if !disabled.has(id) {
			enabled.add(id)
		}
	}

	for _, id := range configIDs {
		if in.Config[id] {
			continue
		}
		if _, ok := cliEnabled[id]; ok {
			continue
		}
		disabled.add(id)
		enabled.remove(id)
	}

	for _, id := range configIDs {
		if in.Config[id] && !disabled.has(id) {
			enabled.add(id)
		}
	}

	known := make(map[string]struct{}, len(in.AllPluginIDs))
	for _, id := range in.AllPluginIDs {
		known[id] = struct{}{}
		if !disabled.has(id) && !enabled.has(id) {
			enabled.add(id)
		}
	}

	return Resolution{
		Enabled:  enabled.filter(known),
		Disabled: disabled.filter(known),
	}
}

// ParseFlags splits repeated and comma separated --enable-plugin /
// --disable-plugin values into id lists, dropping blanks.
func ParseFlags(enable, disable []string) (enabled, disabled []string) {
	return splitIDs(enable), splitIDs(disable)
}

func splitIDs(values []string) []string {
	var ids []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ids = append(ids, part)
			}
		}
	}
	return ids
}

type orderedSet struct {
	order []string
	index map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: make(map[string]struct{})}
}

func (s *orderedSet) add(id string) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *orderedSet) remove(id string) {
	if _, ok := s.index[id]; !ok {
		return
	}
	delete(s.index, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *orderedSet) has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *orderedSet) filter(known map[string]struct{}) []string {
	out := make([]string, 0, len(s.order))
	for _, id := range s.order {
		if _, ok := known[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func contains(values []string, id string) bool {
	for _, value := range values {
		if value == id {
			return true
		}
	}
	return false
}
