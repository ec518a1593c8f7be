package errors

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "basic error",
			err:      New(ErrCodeConnectionFailed, "Connection failed"),
			expected: "[FFCN1001] ERROR: Connection failed",
		},
		{
			name: "error with suggestions",
			err: New(ErrCodeConnectionFailed, "Connection failed").
				WithSuggestions("Check network", "Verify credentials"),
			expected: "[FFCN1001] ERROR: Connection failed\nSuggestions:\n  1. Check network\n  2. Verify credentials",
		},
		{
			name: "error with context",
			err: New(ErrCodeConnectionFailed, "Connection failed").
				WithContext("account", "xy12345").
				WithContext("port", 443),
			expected: "[FFCN1001] ERROR: Connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != ErrCodeConnectionFailed {
				t.Errorf("Expected code %s, got %s", ErrCodeConnectionFailed, tt.err.Code)
			}
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Expected error string %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	// Create base error
	baseErr := fmt.Errorf("database connection refused")

	// Wrap error
	appErr := Wrap(baseErr, ErrCodeConnectionFailed, "Failed to connect to Snowflake")

	if appErr.Cause != baseErr {
		t.Error("Wrapped error should contain original error as cause")
	}

	if appErr.Code != ErrCodeConnectionFailed {
		t.Errorf("Expected code %s, got %s", ErrCodeConnectionFailed, appErr.Code)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "no-op") != nil {
		t.Error("Wrapping nil should return nil")
	}
}

func TestStepError(t *testing.T) {
	cause := fmt.Errorf("numeric value out of range")
	err := StepError("silver.crm_sales_details", "crm_sales_details", cause)

	if err.Context["step"] != "silver.crm_sales_details" {
		t.Errorf("Expected failing step name in context, got %v", err.Context["step"])
	}
	if err.Severity != SeverityError {
		t.Errorf("Expected ERROR severity, got %s", err.Severity)
	}
	if err.Unwrap() != cause {
		t.Error("Expected StepError to preserve the cause")
	}
}

func TestDatasetError(t *testing.T) {
	err := DatasetError("Source file missing", "cust_info.csv")

	if err.Code != ErrCodeDatasetIncomplete {
		t.Errorf("Expected code %s, got %s", ErrCodeDatasetIncomplete, err.Code)
	}
	if err.Severity != SeverityCritical {
		t.Errorf("Expected CRITICAL severity, got %s", err.Severity)
	}
	if err.Context["file"] != "cust_info.csv" {
		t.Errorf("Expected file name in context, got %v", err.Context["file"])
	}
}

func TestSQLErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		cause    error
		wantCode ErrorCode
	}{
		{
			name:     "permission denied",
			cause:    fmt.Errorf("access denied for role"),
			wantCode: ErrCodeSQLPermission,
		},
		{
			name:     "timeout",
			cause:    fmt.Errorf("statement timeout exceeded"),
			wantCode: ErrCodeSQLTimeout,
		},
		{
			name:     "object not found",
			cause:    fmt.Errorf("Object 'BRONZE.CRM_CUSTOMER_INFO' does not exist"),
			wantCode: ErrCodeSQLObjectNotFound,
		},
		{
			name:     "generic",
			cause:    fmt.Errorf("numeric value out of range"),
			wantCode: ErrCodeSQLExecution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SQLError("Execution failed", "SELECT 1", tt.cause)
			if err.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, err.Code)
			}
		})
	}
}

func TestRetryLogic(t *testing.T) {
	attempts := 0
	maxAttempts := 3

	config := &RetryConfig{
		MaxRetries:   maxAttempts - 1,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       false,
		RetryableError: func(err error) bool {
			return true
		},
	}

	ctx := context.Background()

	// Test successful retry
	err := Retry(ctx, config, func(ctx context.Context) error {
		attempts++
		if attempts < maxAttempts {
			return New(ErrCodeConnectionTimeout, "Timeout").AsRecoverable()
		}
		return nil
	})

	if err != nil {
		t.Error("Expected retry to succeed")
	}

	if attempts != maxAttempts {
		t.Errorf("Expected %d attempts, got %d", maxAttempts, attempts)
	}
}

func TestRetryExhaustion(t *testing.T) {
	config := &RetryConfig{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
		RetryableError: func(err error) bool {
			return true
		},
	}

	err := Retry(context.Background(), config, func(ctx context.Context) error {
		return New(ErrCodeConnectionTimeout, "Timeout").AsRecoverable()
	})

	if err == nil {
		t.Fatal("Expected error after retries exhausted")
	}
	if GetErrorCode(err) != ErrCodeMaxRetriesExceeded {
		t.Errorf("Expected code %s, got %s", ErrCodeMaxRetriesExceeded, GetErrorCode(err))
	}
}

func TestNonRetryableError(t *testing.T) {
	attempts := 0
	config := DefaultRetryConfig()
	config.InitialDelay = time.Millisecond

	err := Retry(context.Background(), config, func(ctx context.Context) error {
		attempts++
		return New(ErrCodeConfigInvalid, "Bad config")
	})

	if err == nil {
		t.Fatal("Expected error")
	}
	if attempts != 1 {
		t.Errorf("Non-retryable error should not be retried, got %d attempts", attempts)
	}
}

func TestCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 100*time.Millisecond)
	ctx := context.Background()

	// First failure
	err := cb.Execute(ctx, func() error {
		return fmt.Errorf("failure 1")
	})
	if err == nil {
		t.Error("Expected error")
	}

	// Second failure - should open circuit
	err = cb.Execute(ctx, func() error {
		return fmt.Errorf("failure 2")
	})
	if err == nil {
		t.Error("Expected error")
	}

	// Circuit should be open now
	err = cb.Execute(ctx, func() error {
		return nil
	})
	if err == nil {
		t.Error("Expected circuit open error")
	}
	if GetErrorCode(err) != ErrCodeServiceUnavailable {
		t.Errorf("Expected code %s, got %s", ErrCodeServiceUnavailable, GetErrorCode(err))
	}
	if cb.GetState() != "open" {
		t.Errorf("Expected open state, got %s", cb.GetState())
	}

	// Wait for reset timeout; next success should close the circuit
	time.Sleep(150 * time.Millisecond)

	err = cb.Execute(ctx, func() error {
		return nil
	})
	if err != nil {
		t.Errorf("Expected half-open circuit to allow execution, got %v", err)
	}
	if cb.GetState() != "closed" {
		t.Errorf("Expected closed state after recovery, got %s", cb.GetState())
	}
}

func TestIsRecoverable(t *testing.T) {
	if IsRecoverable(fmt.Errorf("plain")) {
		t.Error("Plain errors are not recoverable")
	}
	if !IsRecoverable(New(ErrCodeConnectionTimeout, "Timeout").AsRecoverable()) {
		t.Error("Expected recoverable error")
	}
}
