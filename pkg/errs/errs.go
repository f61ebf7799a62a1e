// Package errs defines the stable error kinds a flow run can fail with.
//
// Each kind is a concrete type rather than a sentinel value so callers can
// carry structured detail (which field, which step, which resource) and
// still use errors.As/errors.Is against the kind.
package errs

import "fmt"

// BadStep reports a missing or invalid required field on a step.
type BadStep struct {
	StepType string
	Field    string
}

func (e *BadStep) Error() string {
	return fmt.Sprintf("bad step %q: missing or invalid field %q", e.StepType, e.Field)
}

// NewBadStep builds a BadStep for the given step type and field name.
func NewBadStep(stepType, field string) *BadStep {
	return &BadStep{StepType: stepType, Field: field}
}

// UnsupportedStepType reports that the dispatcher has no handler registered
// for a step's type.
type UnsupportedStepType struct {
	Type string
}

func (e *UnsupportedStepType) Error() string {
	return fmt.Sprintf("unsupported step.type %q", e.Type)
}

// TimeoutExpired reports that a waitFor, execPod, or outer flow deadline
// elapsed before the awaited condition held.
type TimeoutExpired struct {
	Op string
}

func (e *TimeoutExpired) Error() string {
	return fmt.Sprintf("%s timed out", e.Op)
}

// ClusterApiError wraps an underlying Kubernetes API failure that is not a
// plain 404 (404s are handled by the caller as a normal "does not exist").
type ClusterApiError struct {
	Cause error
}

func (e *ClusterApiError) Error() string {
	return fmt.Sprintf("cluster API error: %v", e.Cause)
}

func (e *ClusterApiError) Unwrap() error { return e.Cause }

// RemoteFetchError reports that an `include` HTTP(S) fetch failed.
type RemoteFetchError struct {
	Source string
	Cause  error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("fetching %q: %v", e.Source, e.Cause)
}

func (e *RemoteFetchError) Unwrap() error { return e.Cause }

// ExecFailed reports that an ephemeral pod terminated with phase Failed.
type ExecFailed struct {
	Logs string
}

func (e *ExecFailed) Error() string {
	return fmt.Sprintf("command execution failed, logs: %s", e.Logs)
}
