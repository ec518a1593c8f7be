package errors

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"flakeforge/internal/common"
)

// ErrorHandler provides centralized error handling and logging
type ErrorHandler struct {
	logFile   *os.File
	logWriter io.Writer
	errorLog  []ErrorLogEntry
	mu        sync.Mutex
	config    ErrorHandlerConfig
}

// ErrorHandlerConfig configures the error handler
type ErrorHandlerConfig struct {
	LogToFile     bool
	LogFilePath   string
	MaxLogEntries int
}

// ErrorLogEntry represents a logged error
type ErrorLogEntry struct {
	Timestamp   time.Time              `json:"timestamp"`
	Code        ErrorCode              `json:"code"`
	Severity    ErrorSeverity          `json:"severity"`
	Message     string                 `json:"message"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Stack       string                 `json:"stack,omitempty"`
	Recoverable bool                   `json:"recoverable"`
}

// DefaultErrorHandlerConfig returns default configuration
func DefaultErrorHandlerConfig() ErrorHandlerConfig {
	homeDir, _ := os.UserHomeDir()
	return ErrorHandlerConfig{
		LogToFile:     true,
		LogFilePath:   filepath.Join(homeDir, ".flakeforge", "errors.log"),
		MaxLogEntries: 1000,
	}
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(config ErrorHandlerConfig) (*ErrorHandler, error) {
	handler := &ErrorHandler{
		config:   config,
		errorLog: make([]ErrorLogEntry, 0),
	}

	if config.LogToFile {
		// Ensure log directory exists
		logDir := filepath.Dir(config.LogFilePath)
		if err := os.MkdirAll(logDir, common.DirPermissionSecure); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(config.LogFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, common.FilePermissionSecure)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}

		handler.logFile = file
		handler.logWriter = file
	} else {
		handler.logWriter = os.Stderr
	}

	return handler, nil
}

// Handle processes an error with full context: it appends the structured
// entry to the JSON error log and prints an operator-facing message.
func (h *ErrorHandler) Handle(err error) {
	if err == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Convert to AppError if needed
	appErr, ok := err.(*AppError)
	if !ok {
		appErr = Wrap(err, ErrCodeInternal, err.Error())
	}

	entry := ErrorLogEntry{
		Timestamp:   appErr.Timestamp,
		Code:        appErr.Code,
		Severity:    appErr.Severity,
		Message:     appErr.Message,
		Context:     appErr.Context,
		Stack:       appErr.Stack,
		Recoverable: appErr.Recoverable,
	}

	h.errorLog = append(h.errorLog, entry)
	if len(h.errorLog) > h.config.MaxLogEntries {
		h.errorLog = h.errorLog[1:]
	}

	h.writeLog(entry)
	h.displayError(appErr)
}

// writeLog writes an error entry to the log as one JSON line
func (h *ErrorHandler) writeLog(entry ErrorLogEntry) {
	jsonData, err := sonic.Marshal(entry)
	if err != nil {
		fmt.Fprintf(h.logWriter, "Failed to marshal error log: %v\n", err)
		return
	}

	fmt.Fprintln(h.logWriter, string(jsonData))
}

// displayError displays a user-friendly error message
func (h *ErrorHandler) displayError(err *AppError) {
	var severityColor string
	switch err.Severity {
	case SeverityCritical:
		severityColor = "\033[31m" // Red
	case SeverityError:
		severityColor = "\033[91m" // Light Red
	case SeverityWarning:
		severityColor = "\033[33m" // Yellow
	case SeverityInfo:
		severityColor = "\033[36m" // Cyan
	default:
		severityColor = "\033[0m"
	}

	resetColor := "\033[0m"

	fmt.Fprintf(os.Stderr, "\n%s[%s] %s%s\n", severityColor, err.Code, err.Message, resetColor)

	if len(err.Context) > 0 {
		fmt.Fprintln(os.Stderr, "\nContext:")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if len(err.Suggestions) > 0 {
		fmt.Fprintln(os.Stderr, "\nSuggestions:")
		for i, suggestion := range err.Suggestions {
			fmt.Fprintf(os.Stderr, "  %d. %s\n", i+1, suggestion)
		}
	}

	if err.Severity == SeverityCritical {
		fmt.Fprintln(os.Stderr, "\nFor support, please include:")
		fmt.Fprintf(os.Stderr, "  - Error code: %s\n", err.Code)
		fmt.Fprintf(os.Stderr, "  - Log file: %s\n", h.config.LogFilePath)
		fmt.Fprintf(os.Stderr, "  - Timestamp: %s\n", err.Timestamp.Format(time.RFC3339))
	}
}

// GetErrorSummary returns counts of errors handled so far, by severity and code
func (h *ErrorHandler) GetErrorSummary() map[string]interface{} {
	h.mu.Lock()
	defer h.mu.Unlock()

	bySeverity := make(map[ErrorSeverity]int)
	byCode := make(map[ErrorCode]int)
	for _, entry := range h.errorLog {
		bySeverity[entry.Severity]++
		byCode[entry.Code]++
	}

	return map[string]interface{}{
		"total_errors": len(h.errorLog),
		"by_severity":  bySeverity,
		"by_code":      byCode,
	}
}

// Close closes the error handler and releases resources
func (h *ErrorHandler) Close() error {
	if h.logFile != nil {
		return h.logFile.Close()
	}
	return nil
}

// GlobalErrorHandler is a singleton instance
var globalHandler *ErrorHandler
var globalHandlerOnce sync.Once

// GetGlobalErrorHandler returns the global error handler instance
func GetGlobalErrorHandler() *ErrorHandler {
	globalHandlerOnce.Do(func() {
		handler, err := NewErrorHandler(DefaultErrorHandlerConfig())
		if err != nil {
			// Fallback to stderr-only handler
			handler = &ErrorHandler{
				logWriter: os.Stderr,
				errorLog:  make([]ErrorLogEntry, 0),
			}
		}
		globalHandler = handler
	})
	return globalHandler
}
