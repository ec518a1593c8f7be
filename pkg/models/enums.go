package models

import (
	"database/sql"
	"strings"
)

// MaritalStatus is the closed set of conformed marital status values.
// Anything outside the mapped codes collapses to MaritalStatusUnknown so
// downstream consumers never see an unmapped value.
type MaritalStatus string

const (
	MaritalStatusSingle  MaritalStatus = "Single"
	MaritalStatusMarried MaritalStatus = "Married"
	MaritalStatusUnknown MaritalStatus = "N/A"
)

// ParseMaritalStatus maps a raw CRM marital status code to the conformed set.
// Matching is case-insensitive on the trimmed input: S -> Single, M -> Married.
func ParseMaritalStatus(code string) MaritalStatus {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "S":
		return MaritalStatusSingle
	case "M":
		return MaritalStatusMarried
	default:
		return MaritalStatusUnknown
	}
}

func (m MaritalStatus) String() string { return string(m) }

// Gender is the closed set of conformed gender values.
type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = "N/A"
)

// GenderFromCode maps a single-letter CRM gender code (F/M) to the conformed
// set. Case-insensitive, trimmed; anything else is GenderUnknown.
func GenderFromCode(code string) Gender {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "F":
		return GenderFemale
	case "M":
		return GenderMale
	default:
		return GenderUnknown
	}
}

// GenderFromText maps the ERP gender spelling, which arrives both as single
// letters and full words (F/FEMALE, M/MALE).
func GenderFromText(text string) Gender {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "F", "FEMALE":
		return GenderFemale
	case "M", "MALE":
		return GenderMale
	default:
		return GenderUnknown
	}
}

func (g Gender) String() string { return string(g) }

// ProductLine is the closed set of conformed product line values.
type ProductLine string

const (
	ProductLineMountain   ProductLine = "Mountain"
	ProductLineRoad       ProductLine = "Road"
	ProductLineOtherSales ProductLine = "Other Sales"
	ProductLineTouring    ProductLine = "Touring"
	ProductLineUnknown    ProductLine = "N/A"
)

// ParseProductLine maps a raw CRM product line code to the conformed set.
// Case-insensitive, trimmed: M, R, S, T; anything else is ProductLineUnknown.
func ParseProductLine(code string) ProductLine {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "M":
		return ProductLineMountain
	case "R":
		return ProductLineRoad
	case "S":
		return ProductLineOtherSales
	case "T":
		return ProductLineTouring
	default:
		return ProductLineUnknown
	}
}

func (p ProductLine) String() string { return string(p) }

// NormalizeCountry conforms an ERP country code to its full name:
// DE (exact match on the trimmed value) -> Germany, US/USA (case-insensitive)
// -> United States, NULL or empty -> N/A. Unrecognized values pass through
// trimmed but otherwise unchanged.
func NormalizeCountry(country sql.NullString) string {
	if !country.Valid {
		return "N/A"
	}
	trimmed := strings.TrimSpace(country.String)
	if trimmed == "" {
		return "N/A"
	}
	if trimmed == "DE" {
		return "Germany"
	}
	switch strings.ToUpper(trimmed) {
	case "US", "USA":
		return "United States"
	}
	return trimmed
}
