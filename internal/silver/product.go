package silver

import (
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"flakeforge/pkg/models"
)

// DeriveCategoryID maps a raw product key to its category id: the first five
// characters with hyphens replaced by underscores. Shorter keys map whole.
func DeriveCategoryID(rawKey string) string {
	if len(rawKey) > 5 {
		rawKey = rawKey[:5]
	}
	return strings.ReplaceAll(rawKey, "-", "_")
}

// DeriveProductKey extracts the cleaned product key: everything from the
// seventh character on. Shorter keys yield an empty key.
func DeriveProductKey(rawKey string) string {
	if len(rawKey) < 7 {
		return ""
	}
	return rawKey[6:]
}

// TransformProducts conforms raw product rows: category id and cleaned key
// derived from the raw key, NULL costs defaulted to zero, product line
// mapped through the closed enum, start dates truncated to the day, and the
// version end date recomputed as the next version's start date minus one day
// within the same cleaned key. The raw end date from bronze is ignored.
func TransformProducts(rows []models.BronzeProductInfo) ([]models.SilverProductInfo, Counters) {
	c := Counters{RowsIn: len(rows)}

	out := make([]models.SilverProductInfo, len(rows))
	for i, row := range rows {
		cost := decimal.Zero
		if row.Cost.Valid {
			cost = row.Cost.Decimal
		} else {
			c.NullsDefaulted++
		}

		line := models.ParseProductLine(row.Line.String)
		if line == models.ProductLineUnknown {
			c.NullsDefaulted++
		}

		start := row.StartDate
		if start.Valid {
			start.Time = truncateToDay(start.Time)
		}

		out[i] = models.SilverProductInfo{
			ProductID:   row.ID,
			CategoryID:  DeriveCategoryID(row.Key.String),
			ProductKey:  DeriveProductKey(row.Key.String),
			ProductName: strings.TrimSpace(row.Name.String),
			Cost:        cost,
			ProductLine: line,
			StartDate:   start,
		}
	}

	c.ValuesRecomputed += chainEndDates(out)
	c.RowsOut = len(out)
	return out, c
}

// chainEndDates closes each product version: within one cleaned key, ordered
// by start date (bronze offset breaks ties), a version ends the day before
// the next one starts. The latest version stays open with a NULL end date.
// Returns the number of end dates set.
func chainEndDates(products []models.SilverProductInfo) int {
	byKey := make(map[string][]int)
	keys := make([]string, 0)
	for i := range products {
		key := products[i].ProductKey
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], i)
	}

	recomputed := 0
	for _, key := range keys {
		idxs := byKey[key]
		sort.SliceStable(idxs, func(a, b int) bool {
			return startsBefore(products[idxs[a]].StartDate, products[idxs[b]].StartDate)
		})
		for j := 0; j < len(idxs)-1; j++ {
			next := products[idxs[j+1]].StartDate
			if !next.Valid {
				continue
			}
			products[idxs[j]].EndDate = sql.NullTime{
				Time:  next.Time.AddDate(0, 0, -1),
				Valid: true,
			}
			recomputed++
		}
	}
	return recomputed
}

// startsBefore orders version start dates with NULL sorting first. Equal
// dates are not "before", so the stable sort preserves bronze offset order.
func startsBefore(a, b sql.NullTime) bool {
	switch {
	case !a.Valid && !b.Valid:
		return false
	case !a.Valid:
		return true
	case !b.Valid:
		return false
	default:
		return a.Time.Before(b.Time)
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
