// Package dynerr defines the control plane's error taxonomy (spec §7).
// Every failure the orchestrator produces is one of these concrete
// types, so call-sites decide retry/rollback behavior with errors.As
// instead of matching on message strings.
package dynerr

import (
	"errors"
	"fmt"
)

// ValidationError means the input failed schema or naming rules. Never
// retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// StateError means an invariant would have been violated by a write.
// Never retried; fatal to the operation.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return "state invariant: " + e.Message }

// ProviderErrorKind classifies a ProviderError.
type ProviderErrorKind string

const (
	ProviderErrorNotFound   ProviderErrorKind = "not_found"
	ProviderErrorConflict   ProviderErrorKind = "conflict"
	ProviderErrorRateLimit  ProviderErrorKind = "rate_limit"
	ProviderErrorServer     ProviderErrorKind = "server_error"
	ProviderErrorAuth       ProviderErrorKind = "auth"
	ProviderErrorValidation ProviderErrorKind = "validation"
)

// ProviderError wraps a failed compute/DNS/origin-CA call.
type ProviderError struct {
	Kind      ProviderErrorKind
	Message   string
	Cause     error
	retryable bool
}

func NewProviderError(kind ProviderErrorKind, message string, retryable bool, cause error) *ProviderError {
	return &ProviderError{Kind: kind, Message: message, Cause: cause, retryable: retryable}
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error (%s): %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// Retryable reports whether this specific provider error is transient.
func (e *ProviderError) Retryable() bool { return e.retryable }

// TransportError means the remote executor could not reach or execute on
// a host. Retried per §5.
type TransportError struct {
	Host    string
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error (%s): %s: %v", e.Host, e.Message, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

func (e *TransportError) Retryable() bool { return true }

// ConvergenceError means a rendered artifact failed to reach the desired
// state on a node. Not retried; surfaced with the offending artifact name.
type ConvergenceError struct {
	Artifact string
	Message  string
	Stderr   string
}

func (e *ConvergenceError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("convergence failed for %s: %s (stderr: %s)", e.Artifact, e.Message, e.Stderr)
	}
	return fmt.Sprintf("convergence failed for %s: %s", e.Artifact, e.Message)
}

// HealthError means a readiness check exhausted its retries.
type HealthError struct {
	Check   string
	Message string
}

func (e *HealthError) Error() string {
	return fmt.Sprintf("health check %s failed: %s", e.Check, e.Message)
}

// SecretLeak means a write attempted to persist a forbidden key. Fatal;
// the state document is not written.
type SecretLeak struct {
	Path string
}

func (e *SecretLeak) Error() string {
	return fmt.Sprintf("refusing to persist state: forbidden key at %s", e.Path)
}

// IOFailure wraps a filesystem error encountered while loading or saving
// the state document.
type IOFailure struct {
	Op      string
	Path    string
	Cause   error
}

func (e *IOFailure) Error() string {
	return fmt.Sprintf("state I/O failure during %s on %s: %v", e.Op, e.Path, e.Cause)
}

func (e *IOFailure) Unwrap() error { return e.Cause }

// SchemaError means a loaded or about-to-be-written document failed
// schema validation. No silent migration is attempted.
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string { return "state schema error: " + e.Message }

// NotFoundError means a primary key lookup found nothing. Returned as an
// absent value by most accessors; this type exists for call-sites that
// need to distinguish "absent" from "I/O failure" through errors.As.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// PartialFailureError collects per-item failures from a fan-out
// operation (spec §7: "errors are per-node; success count is
// reported and already-created nodes persist in state").
type PartialFailureError struct {
	Operation string
	Causes    []error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s: %d step(s) failed: %v", e.Operation, len(e.Causes), e.Causes)
}

func (e *PartialFailureError) Unwrap() []error { return e.Causes }

// retryabler is implemented by error types that know their own
// retryability (ProviderError, TransportError).
type retryabler interface {
	Retryable() bool
}

// Retryable reports whether err should be retried per the policy in
// spec §5 ("truly transient failures... are retried; validation, auth,
// schema, not-found are not").
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var r retryabler
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}
