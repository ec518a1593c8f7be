package silver

import (
	"database/sql"
	"strings"
	"time"

	"flakeforge/pkg/models"
)

// TransformCategories passes the product category reference through
// unchanged. The rule exists so the table participates in the same staged
// full-refresh cycle as every other silver table.
func TransformCategories(rows []models.BronzeProductCategory) ([]models.SilverProductCategory, Counters) {
	c := Counters{RowsIn: len(rows)}

	out := make([]models.SilverProductCategory, len(rows))
	for i, row := range rows {
		out[i] = models.SilverProductCategory{
			CategoryID:  row.ID,
			Category:    row.Category,
			Subcategory: row.Subcategory,
			Maintenance: row.Maintenance,
		}
	}

	c.RowsOut = len(out)
	return out, c
}

// TransformCustomerDemo conforms the ERP demographics extract: the legacy
// NAS prefix is stripped from customer ids so they join against the CRM
// customer key, birthdates after the batch start are nulled, and the gender
// spelling maps through the closed enum.
func TransformCustomerDemo(rows []models.BronzeCustomerDemo, now time.Time) ([]models.SilverCustomerDemo, Counters) {
	c := Counters{RowsIn: len(rows)}

	out := make([]models.SilverCustomerDemo, len(rows))
	for i, row := range rows {
		id := strings.TrimSpace(row.CustomerID.String)
		if strings.HasPrefix(id, "NAS") {
			id = id[3:]
		}

		birthdate := row.Birthdate
		if birthdate.Valid && birthdate.Time.After(now) {
			birthdate = sql.NullTime{}
			c.DatesNulled++
		}

		gender := models.GenderFromText(row.Gender.String)
		if gender == models.GenderUnknown {
			c.NullsDefaulted++
		}

		out[i] = models.SilverCustomerDemo{
			CustomerID: id,
			Birthdate:  birthdate,
			Gender:     gender,
		}
	}

	c.RowsOut = len(out)
	return out, c
}

// TransformLocations conforms the ERP location extract: customer id hyphens
// stripped so the ids join against the CRM customer key, and country codes
// normalized to full names.
func TransformLocations(rows []models.BronzeCustomerLocation) ([]models.SilverCustomerLocation, Counters) {
	c := Counters{RowsIn: len(rows)}

	out := make([]models.SilverCustomerLocation, len(rows))
	for i, row := range rows {
		country := models.NormalizeCountry(row.Country)
		if country == "N/A" {
			c.NullsDefaulted++
		}

		out[i] = models.SilverCustomerLocation{
			CustomerID: strings.ReplaceAll(strings.TrimSpace(row.CustomerID.String), "-", ""),
			Country:    country,
		}
	}

	c.RowsOut = len(out)
	return out, c
}
