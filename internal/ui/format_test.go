package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"milliseconds", 250 * time.Millisecond, "250ms"},
		{"seconds", 3200 * time.Millisecond, "3.2s"},
		{"minutes", 95 * time.Second, "1m35s"},
		{"hours", 2*time.Hour + 30*time.Minute, "2h30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.duration))
		})
	}
}

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantHit bool
	}{
		{"auth failure", "Authentication failed for user", true},
		{"missing source", "Source file cust_info.csv not found", true},
		{"missing object", "Object 'SILVER.CRM_SALES_DETAILS' does not exist", true},
		{"unknown", "something completely different", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := getSuggestion(tt.message)
			if tt.wantHit {
				assert.NotEmpty(t, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestColorFuncPassthrough(t *testing.T) {
	// Colors are disabled when stdout is not a TTY, as in tests
	fn := colorFunc("red")
	if supportsColor {
		t.Skip("stdout is a TTY")
	}
	assert.Equal(t, "plain", fn("plain"))
}
