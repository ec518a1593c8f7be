package silver

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"flakeforge/pkg/models"
)

// centTolerance is the largest amount/quantity*price discrepancy treated as
// rounding noise rather than a bad value.
var centTolerance = decimal.NewFromFloat(0.01)

// ParseDateInt converts an 8-digit YYYYMMDD integer into a date. Zero,
// a wrong digit count, and impossible calendar dates (month 13, Feb 30)
// all become NULL.
func ParseDateInt(v sql.NullInt64) sql.NullTime {
	if !v.Valid || v.Int64 == 0 {
		return sql.NullTime{}
	}
	s := strconv.FormatInt(v.Int64, 10)
	if len(s) != 8 {
		return sql.NullTime{}
	}
	t, err := time.Parse("20060102", s)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// RepairMeasures reconciles the three sales measures. The amount is replaced
// with quantity * |price| when it is NULL, non-positive, or off by more than
// a cent; the price, when NULL or non-positive, is derived from the ORIGINAL
// incoming amount divided by quantity (NULL when quantity is zero or
// missing). Returns the repaired pair and how many values changed.
func RepairMeasures(amount decimal.NullDecimal, quantity sql.NullInt64, price decimal.NullDecimal) (decimal.NullDecimal, decimal.NullDecimal, int) {
	orig := amount
	repairs := 0

	var expected decimal.NullDecimal
	if quantity.Valid && price.Valid {
		expected = decimal.NullDecimal{
			Decimal: decimal.NewFromInt(quantity.Int64).Mul(price.Decimal.Abs()),
			Valid:   true,
		}
	}

	repairedAmount := amount
	if !amount.Valid || amount.Decimal.LessThanOrEqual(decimal.Zero) ||
		(expected.Valid && amount.Decimal.Sub(expected.Decimal).Abs().GreaterThan(centTolerance)) {
		repairedAmount = expected
		if !nullDecimalEqual(orig, expected) {
			repairs++
		}
	}

	repairedPrice := price
	if !price.Valid || price.Decimal.LessThanOrEqual(decimal.Zero) {
		var derived decimal.NullDecimal
		if orig.Valid && quantity.Valid && quantity.Int64 != 0 {
			derived = decimal.NullDecimal{
				Decimal: orig.Decimal.Div(decimal.NewFromInt(quantity.Int64)),
				Valid:   true,
			}
		}
		repairedPrice = derived
		if !nullDecimalEqual(price, derived) {
			repairs++
		}
	}

	return repairedAmount, repairedPrice, repairs
}

func nullDecimalEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	if !a.Valid {
		return true
	}
	return a.Decimal.Equal(b.Decimal)
}

// TransformSales conforms raw sales rows: integer dates validated into real
// dates and the measure triple repaired row by row.
func TransformSales(rows []models.BronzeSalesDetail) ([]models.SilverSalesDetail, Counters) {
	c := Counters{RowsIn: len(rows)}

	out := make([]models.SilverSalesDetail, len(rows))
	for i, row := range rows {
		orderDate := ParseDateInt(row.OrderDate)
		shipDate := ParseDateInt(row.ShipDate)
		dueDate := ParseDateInt(row.DueDate)
		c.DatesNulled += countNulledDate(row.OrderDate, orderDate) +
			countNulledDate(row.ShipDate, shipDate) +
			countNulledDate(row.DueDate, dueDate)

		amount, price, repairs := RepairMeasures(row.SalesAmount, row.Quantity, row.Price)
		c.ValuesRecomputed += repairs

		out[i] = models.SilverSalesDetail{
			OrderNumber: row.OrderNumber,
			ProductKey:  row.ProductKey,
			CustomerID:  row.CustomerID,
			OrderDate:   orderDate,
			ShipDate:    shipDate,
			DueDate:     dueDate,
			SalesAmount: amount,
			Quantity:    row.Quantity,
			Price:       price,
		}
	}

	c.RowsOut = len(out)
	return out, c
}

func countNulledDate(in sql.NullInt64, parsed sql.NullTime) int {
	if in.Valid && !parsed.Valid {
		return 1
	}
	return 0
}
