package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Connection errors (FFCN)
	ErrCodeConnectionFailed     ErrorCode = "FFCN1001"
	ErrCodeConnectionTimeout    ErrorCode = "FFCN1002"
	ErrCodeAuthenticationFailed ErrorCode = "FFCN1003"
	ErrCodeNetworkUnavailable   ErrorCode = "FFCN1004"

	// Configuration errors (FFCF)
	ErrCodeConfigNotFound   ErrorCode = "FFCF2001"
	ErrCodeConfigInvalid    ErrorCode = "FFCF2002"
	ErrCodeConfigMissing    ErrorCode = "FFCF2003"
	ErrCodeConfigPermission ErrorCode = "FFCF2004"

	// SQL execution errors (FFSQ)
	ErrCodeSQLExecution      ErrorCode = "FFSQ4001"
	ErrCodeSQLPermission     ErrorCode = "FFSQ4002"
	ErrCodeSQLTimeout        ErrorCode = "FFSQ4003"
	ErrCodeSQLTransaction    ErrorCode = "FFSQ4004"
	ErrCodeSQLObjectNotFound ErrorCode = "FFSQ4005"
	ErrCodeStagingFailed     ErrorCode = "FFSQ4006"
	ErrCodeCopyLoadFailed    ErrorCode = "FFSQ4007"
	ErrCodeResultParsing     ErrorCode = "FFSQ4008"
	ErrCodeSwapFailed        ErrorCode = "FFSQ4009"

	// File system / dataset errors (FFFS)
	ErrCodeFileNotFound      ErrorCode = "FFFS5001"
	ErrCodeFilePermission    ErrorCode = "FFFS5002"
	ErrCodeDatasetIncomplete ErrorCode = "FFFS5003"
	ErrCodeDatasetSyncFailed ErrorCode = "FFFS5004"
	ErrCodeFileOperation     ErrorCode = "FFFS5005"

	// Validation errors (FFVL)
	ErrCodeValidationFailed ErrorCode = "FFVL6001"
	ErrCodeInvalidInput     ErrorCode = "FFVL6002"
	ErrCodeRequiredField    ErrorCode = "FFVL6003"

	// Security errors (FFSC)
	ErrCodeSecurityViolation  ErrorCode = "FFSC7001"
	ErrCodeEncryptionFailed   ErrorCode = "FFSC7002"
	ErrCodeCredentialNotFound ErrorCode = "FFSC7003"

	// System errors (FFIN)
	ErrCodeInternal           ErrorCode = "FFIN9001"
	ErrCodeTimeout            ErrorCode = "FFIN9002"
	ErrCodeResourceExhausted  ErrorCode = "FFIN9003"
	ErrCodeServiceUnavailable ErrorCode = "FFIN9004"
	ErrCodeCancelled          ErrorCode = "FFIN9005"
	ErrCodeMaxRetriesExceeded ErrorCode = "FFIN9006"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL" // System failure, requires immediate attention
	SeverityError    ErrorSeverity = "ERROR"    // Operation failed, but system continues
	SeverityWarning  ErrorSeverity = "WARNING"  // Operation succeeded with issues
	SeverityInfo     ErrorSeverity = "INFO"     // Informational, not an error
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Stack       string
	Timestamp   time.Time
	Recoverable bool
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		Severity:    SeverityError,
		Context:     make(map[string]interface{}),
		Stack:       captureStack(),
		Timestamp:   time.Now(),
		Recoverable: false,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	// If wrapping another AppError, inherit some properties
	if ae, ok := err.(*AppError); ok {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithContextMap merges a map of context values into the error
func (e *AppError) WithContextMap(values map[string]interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	for k, v := range values {
		e.Context[k] = v
	}
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// AsRecoverable marks the error as recoverable
func (e *AppError) AsRecoverable() *AppError {
	e.Recoverable = true
	return e
}

// captureStack captures the current stack trace
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			b.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return b.String()
}

// Common error constructors

// ConnectionError creates a connection-related error
func ConnectionError(message string, cause error) *AppError {
	return Wrap(cause, ErrCodeConnectionFailed, message).
		WithSeverity(SeverityError).
		WithSuggestions(
			"Check your network connection",
			"Verify the Snowflake endpoint is accessible",
			"Check firewall settings",
		)
}

// ConfigError creates a configuration-related error
func ConfigError(message string, field string) *AppError {
	return New(ErrCodeConfigInvalid, message).
		WithContext("field", field).
		WithSuggestions(
			fmt.Sprintf("Check the '%s' configuration value", field),
			"Run 'flakeforge setup' to reconfigure",
			"Refer to the configuration documentation",
		)
}

// SQLError creates an SQL execution error
func SQLError(message string, query string, cause error) *AppError {
	err := Wrap(cause, ErrCodeSQLExecution, message).
		WithContext("query", truncateString(query, 200))

	if cause != nil {
		causeStr := strings.ToLower(cause.Error())
		if strings.Contains(causeStr, "permission") || strings.Contains(causeStr, "access denied") {
			err.Code = ErrCodeSQLPermission
			_ = err.WithSuggestions(
				"Check user permissions in Snowflake",
				"Verify the role has required privileges",
				"Contact your Snowflake administrator",
			)
		} else if strings.Contains(causeStr, "timeout") {
			err.Code = ErrCodeSQLTimeout
			_ = err.WithSuggestions(
				"Increase the statement timeout setting",
				"Check Snowflake warehouse size",
			)
		} else if strings.Contains(causeStr, "does not exist") || strings.Contains(causeStr, "not found") {
			err.Code = ErrCodeSQLObjectNotFound
			_ = err.WithSuggestions(
				"Verify the object exists in the target database/schema",
				"Run 'flakeforge run' once to provision the warehouse objects",
			)
		}
	}

	return err
}

// StepError creates a step-fatal batch error carrying the failing step name
func StepError(step string, table string, cause error) *AppError {
	return Wrap(cause, ErrCodeSQLExecution, fmt.Sprintf("Step %s failed", step)).
		WithContext("step", step).
		WithContext("table", table).
		WithSeverity(SeverityError)
}

// DatasetError creates a batch-fatal source availability error
func DatasetError(message string, file string) *AppError {
	return New(ErrCodeDatasetIncomplete, message).
		WithContext("file", file).
		WithSeverity(SeverityCritical).
		WithSuggestions(
			"Check the dataset path in config.yaml",
			"Verify the six source CSV extracts are present",
		)
}

// ValidationError creates a validation error
func ValidationError(field string, value interface{}, reason string) *AppError {
	return New(ErrCodeValidationFailed, fmt.Sprintf("Validation failed for %s: %s", field, reason)).
		WithContext("field", field).
		WithContext("value", value).
		WithSeverity(SeverityWarning).
		AsRecoverable()
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Recoverable
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
