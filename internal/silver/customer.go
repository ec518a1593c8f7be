package silver

import (
	"strings"

	"flakeforge/pkg/models"
)

// TransformCustomers conforms raw customer rows. Rows without a customer id
// are dropped. Duplicate ids collapse to the version with the greatest
// create date; on ties (including two NULL dates) the later bronze row wins,
// so reruns over identical input pick the same survivor. Names are trimmed
// and coded fields map through the closed enums.
func TransformCustomers(rows []models.BronzeCustomerInfo) ([]models.SilverCustomerInfo, Counters) {
	c := Counters{RowsIn: len(rows)}

	winner := make(map[int64]int, len(rows))
	order := make([]int64, 0, len(rows))
	for i, row := range rows {
		if !row.ID.Valid {
			c.RowsDropped++
			continue
		}
		id := row.ID.Int64
		prev, seen := winner[id]
		if !seen {
			winner[id] = i
			order = append(order, id)
			continue
		}
		c.DuplicatesDropped++
		if newerVersion(rows[prev], row) {
			winner[id] = i
		}
	}

	out := make([]models.SilverCustomerInfo, 0, len(order))
	for _, id := range order {
		row := rows[winner[id]]

		marital := models.ParseMaritalStatus(row.MaritalStatus.String)
		if marital == models.MaritalStatusUnknown {
			c.NullsDefaulted++
		}
		gender := models.GenderFromCode(row.Gender.String)
		if gender == models.GenderUnknown {
			c.NullsDefaulted++
		}

		out = append(out, models.SilverCustomerInfo{
			CustomerID:    id,
			CustomerKey:   row.Key,
			FirstName:     strings.TrimSpace(row.FirstName.String),
			LastName:      strings.TrimSpace(row.LastName.String),
			MaritalStatus: marital,
			Gender:        gender,
			CreateDate:    row.CreateDate,
		})
	}

	c.RowsOut = len(out)
	return out, c
}

// newerVersion reports whether candidate supersedes current: a strictly
// greater create date, or an equal one (candidate always has the greater
// bronze offset). A NULL create date sorts before any valid one.
func newerVersion(current, candidate models.BronzeCustomerInfo) bool {
	switch {
	case !candidate.CreateDate.Valid && !current.CreateDate.Valid:
		return true
	case !candidate.CreateDate.Valid:
		return false
	case !current.CreateDate.Valid:
		return true
	default:
		return !candidate.CreateDate.Time.Before(current.CreateDate.Time)
	}
}
