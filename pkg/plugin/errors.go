package plugin

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotInitialized is returned by every Runner phase before Registry.Initialize
	ErrNotInitialized = errors.New("plugin registry is not initialized")

	// ErrAlreadyInitialized is returned when setup needs a registry that has
	// not run Initialize yet
	ErrAlreadyInitialized = errors.New("plugin registry is already initialized")

	// ErrUnchanged lets Render/AfterRender keep the current content without failing
	ErrUnchanged = errors.New("plugin left content unchanged")
)

// ValidationError describes why a candidate is not a usable plugin
type ValidationError struct {
	PluginID string
	// Missing lists metadata fields that are absent or empty, in check order
	Missing []string
	// Hook names the offending hook, if any
	Hook   string
	Reason string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid plugin")
	if e.PluginID != "" {
		fmt.Fprintf(&b, " '%s'", e.PluginID)
	}
	b.WriteString(": ")
	switch {
	case len(e.Missing) > 0:
		fmt.Fprintf(&b, "missing required metadata fields: %s", strings.Join(e.Missing, ", "))
	case e.Hook != "":
		fmt.Fprintf(&b, "%s %s", e.Hook, e.Reason)
	default:
		b.WriteString(e.Reason)
	}
	return b.String()
}

// HookError is a failure raised by a plugin hook
type HookError struct {
	PluginID string
	Phase    Hook
	Err      error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("plugin %s failed during %s: %v", e.PluginID, e.Phase, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking hook
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
