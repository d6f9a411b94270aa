package entity

import (
	"errors"
	"fmt"
)

var (
	ErrBrowserLaunch       = errors.New("browser launch failed")
	ErrSessionClosed       = errors.New("browser session closed")
	ErrStrictModeViolation = errors.New("strict mode violation")
	ErrElementResolution   = errors.New("element resolution failed")
	ErrScriptExecution     = errors.New("script execution failed")

	ErrNotFound          = errors.New("artifact not found")
	ErrStoreUnconfigured = errors.New("IMAGE_SERVER environment variable not set")
	ErrStoreUnavailable  = errors.New("artifact store unavailable")

	ErrUnknownCommand   = errors.New("unknown command")
	ErrInvalidArguments = errors.New("invalid arguments")
)

// BrowserLaunchError is sticky: once returned, the session refuses every
// later command until the process restarts.
type BrowserLaunchError struct {
	Engine string
	Err    error
}

func (e *BrowserLaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s browser: %v", e.Engine, e.Err)
}

func (e *BrowserLaunchError) Unwrap() error { return e.Err }

func (e *BrowserLaunchError) Is(target error) bool { return target == ErrBrowserLaunch }

// StrictModeViolationError is raised by an engine when an action that needs
// a single element matched several. Count is 0 when the engine does not
// report it.
type StrictModeViolationError struct {
	Expression string
	Count      int
	Err        error
}

func (e *StrictModeViolationError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("strict mode violation: %q resolved to %d elements", e.Expression, e.Count)
}

func (e *StrictModeViolationError) Unwrap() error { return e.Err }

func (e *StrictModeViolationError) Is(target error) bool { return target == ErrStrictModeViolation }

type ElementResolutionError struct {
	Verb     string
	Target   string
	Attempts int
	Cause    error
}

func (e *ElementResolutionError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("Failed (twice) to %s %s: %v", e.Verb, e.Target, e.Cause)
	}
	return fmt.Sprintf("Failed to %s %s: %v", e.Verb, e.Target, e.Cause)
}

func (e *ElementResolutionError) Unwrap() error { return e.Cause }

func (e *ElementResolutionError) Is(target error) bool { return target == ErrElementResolution }

type ScriptExecutionError struct {
	Message string
	Err     error
}

func (e *ScriptExecutionError) Error() string {
	return "Script execution failed: " + e.Message
}

func (e *ScriptExecutionError) Unwrap() error { return e.Err }

func (e *ScriptExecutionError) Is(target error) bool { return target == ErrScriptExecution }

// StoreError carries the failing operation and, for HTTP backends, the
// status text reported by the server.
type StoreError struct {
	Op     string
	Status string
	Err    error
}

func (e *StoreError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("failed to %s image: %s", e.Op, e.Status)
	}
	return fmt.Sprintf("failed to %s image: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
