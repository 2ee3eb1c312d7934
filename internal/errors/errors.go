// Package errors provides the error definitions shared by the planner's
// outer layers: snapshot loading, configuration and the CLI. The scheduling
// core never fails; it reports problems as anomalies instead, so everything
// here concerns getting a snapshot into the engine and results out of it.
//
// # Error Types
//
// Domain-specific errors:
//   - SnapshotError: a snapshot file could not be read or decoded
//
// Semantic errors:
//   - NotFoundError: a named resource (file, team, item) does not exist
//   - ValidationError: invalid input such as a bad config value
//
// # Usage
//
//	err := errors.NewSnapshotError("decode failed", errors.ErrSnapshotInvalid).
//		WithPath("q3.yaml").WithFormat("yaml")
//
//	if errors.Is(err, errors.ErrSnapshotInvalid) { ... }
//
//	var snapErr *errors.SnapshotError
//	if errors.As(err, &snapErr) { ... }
//
// # Error Classification
//
// Errors carry a Severity and two flags. Retryable errors are transient:
// watch mode keeps running after them, because an editor may be halfway
// through saving the snapshot. User-facing errors are safe to print as-is.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo Severity = iota
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Snapshot-related sentinel errors
var (
	// ErrSnapshotNotFound indicates that the snapshot file does not exist.
	ErrSnapshotNotFound = New("snapshot not found")
	// ErrSnapshotInvalid indicates that the snapshot could not be decoded.
	ErrSnapshotInvalid = New("snapshot is invalid")
	// ErrUnknownFormat indicates a snapshot or output format that is not supported.
	ErrUnknownFormat = New("unknown format")
)

// Configuration-related sentinel errors
var (
	// ErrConfigInvalid indicates that the configuration failed validation.
	ErrConfigInvalid = New("configuration is invalid")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// classified is implemented by every error type in this package.
type classified interface {
	error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the operation may succeed when repeated.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// SnapshotError represents a failure to load a snapshot.
//
// Example:
//
//	err := errors.NewSnapshotError("decode failed", errors.ErrSnapshotInvalid)
//	err = err.WithPath("q3.yaml").WithFormat("yaml")
//	fmt.Println(err) // "snapshot error [path=q3.yaml, format=yaml]: decode failed: snapshot is invalid"
type SnapshotError struct {
	baseError
	Path   string
	Format string
}

// NewSnapshotError creates a new SnapshotError.
func NewSnapshotError(message string, cause error) *SnapshotError {
	return &SnapshotError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithPath adds the snapshot path to the error context.
func (e *SnapshotError) WithPath(path string) *SnapshotError {
	e.Path = path
	return e
}

// WithFormat adds the snapshot format to the error context.
func (e *SnapshotError) WithFormat(format string) *SnapshotError {
	e.Format = format
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *SnapshotError) WithRetryable(r bool) *SnapshotError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *SnapshotError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	if e.Format != "" {
		parts = append(parts, fmt.Sprintf("format=%s", e.Format))
	}

	prefix := "snapshot error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("snapshot error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SnapshotError) Is(target error) bool {
	if _, ok := target.(*SnapshotError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("team", "Platform")
//	fmt.Println(err) // "team 'Platform' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("must be positive")
//	err = err.WithField("scenario.sp_to_weeks").WithValue(-1)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition.
// Watch mode logs retryable errors and waits for the next change instead of
// exiting.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var c classified
	if As(err, &c) {
		return c.IsRetryable()
	}
	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var c classified
	if As(err, &c) {
		return c.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors not defined in this package.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityInfo
	}

	var c classified
	if As(err, &c) {
		return c.Severity()
	}

	// Default to Error severity for unknown errors
	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to load config")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to load snapshot %s", path)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
