package models

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMaritalStatus(t *testing.T) {
	tests := []struct {
		input string
		want  MaritalStatus
	}{
		{"S", MaritalStatusSingle},
		{"s", MaritalStatusSingle},
		{"  M  ", MaritalStatusMarried},
		{"m", MaritalStatusMarried},
		{"", MaritalStatusUnknown},
		{"divorced", MaritalStatusUnknown},
		{"X", MaritalStatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMaritalStatus(tt.input))
		})
	}
}

func TestGenderFromCode(t *testing.T) {
	tests := []struct {
		input string
		want  Gender
	}{
		{"F", GenderFemale},
		{" f ", GenderFemale},
		{"M", GenderMale},
		{"m", GenderMale},
		{"", GenderUnknown},
		{"U", GenderUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, GenderFromCode(tt.input))
		})
	}
}

func TestGenderFromText(t *testing.T) {
	tests := []struct {
		input string
		want  Gender
	}{
		{"FEMALE", GenderFemale},
		{"female", GenderFemale},
		{"F", GenderFemale},
		{"Male", GenderMale},
		{"M", GenderMale},
		{"  MALE ", GenderMale},
		{"", GenderUnknown},
		{"nonbinary", GenderUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, GenderFromText(tt.input))
		})
	}
}

func TestParseProductLine(t *testing.T) {
	tests := []struct {
		input string
		want  ProductLine
	}{
		{"M", ProductLineMountain},
		{"m", ProductLineMountain},
		{"R", ProductLineRoad},
		{"S", ProductLineOtherSales},
		{"T", ProductLineTouring},
		{" t ", ProductLineTouring},
		{"", ProductLineUnknown},
		{"Z", ProductLineUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseProductLine(tt.input))
		})
	}
}

func TestNormalizeCountry(t *testing.T) {
	valid := func(s string) sql.NullString {
		return sql.NullString{String: s, Valid: true}
	}

	tests := []struct {
		name  string
		input sql.NullString
		want  string
	}{
		{"null", sql.NullString{}, "N/A"},
		{"empty", valid(""), "N/A"},
		{"whitespace only", valid("   "), "N/A"},
		{"DE exact", valid("DE"), "Germany"},
		{"de lowercase passes through", valid("de"), "de"},
		{"US", valid("US"), "United States"},
		{"usa lowercase", valid("usa"), "United States"},
		{"USA padded", valid(" USA "), "United States"},
		{"full name unchanged", valid("Australia"), "Australia"},
		{"trimmed passthrough", valid("  France "), "France"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCountry(tt.input))
		})
	}
}
