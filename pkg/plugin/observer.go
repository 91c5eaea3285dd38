package plugin

import (
	"errors"
	"runtime/debug"
	"time"
)

// Outcome classifies a single hook invocation
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeError     Outcome = "error"
)

// HookObserver is notified after every hook invocation. Implementations must
// not call back into the Registry.
type HookObserver interface {
	ObserveHook(pluginID string, hook Hook, outcome Outcome, duration time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveHook(string, Hook, Outcome, time.Duration) {}

// call runs fn, converting a panic into a *PanicError
func call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrUnchanged):
		return OutcomeUnchanged
	default:
		return OutcomeError
	}
}
