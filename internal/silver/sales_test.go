package silver

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flakeforge/pkg/models"
)

func nd(v float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}

func TestParseDateInt(t *testing.T) {
	tests := []struct {
		name  string
		in    sql.NullInt64
		valid bool
		want  string
	}{
		{"valid date", ni(20101229), true, "2010-12-29"},
		{"null", sql.NullInt64{}, false, ""},
		{"zero", ni(0), false, ""},
		{"seven digits", ni(2010122), false, ""},
		{"nine digits", ni(201012290), false, ""},
		{"month 13", ni(20101329), false, ""},
		{"february 30", ni(20100230), false, ""},
		{"leap day valid", ni(20120229), true, "2012-02-29"},
		{"leap day invalid", ni(20110229), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDateInt(tt.in)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Time.Format("2006-01-02"))
			}
		})
	}
}

func TestRepairMeasures(t *testing.T) {
	tests := []struct {
		name       string
		amount     decimal.NullDecimal
		quantity   sql.NullInt64
		price      decimal.NullDecimal
		wantAmount decimal.NullDecimal
		wantPrice  decimal.NullDecimal
		repairs    int
	}{
		{
			name:       "consistent row untouched",
			amount:     nd(100), quantity: ni(5), price: nd(20),
			wantAmount: nd(100), wantPrice: nd(20),
			repairs: 0,
		},
		{
			name:       "null amount recomputed",
			amount:     decimal.NullDecimal{}, quantity: ni(5), price: nd(20),
			wantAmount: nd(100), wantPrice: nd(20),
			repairs: 1,
		},
		{
			name:       "negative price drives amount, price rederived",
			amount:     decimal.NullDecimal{}, quantity: ni(5), price: nd(-20),
			wantAmount: nd(100), wantPrice: decimal.NullDecimal{},
			repairs: 2,
		},
		{
			name:       "mismatched amount recomputed",
			amount:     nd(90), quantity: ni(5), price: nd(20),
			wantAmount: nd(100), wantPrice: nd(20),
			repairs: 1,
		},
		{
			name:       "cent rounding tolerated",
			amount:     nd(100.005), quantity: ni(5), price: nd(20),
			wantAmount: nd(100.005), wantPrice: nd(20),
			repairs: 0,
		},
		{
			name:       "price derived from original amount",
			amount:     nd(1000), quantity: ni(10), price: decimal.NullDecimal{},
			wantAmount: nd(1000), wantPrice: nd(100),
			repairs: 1,
		},
		{
			name:       "zero quantity guards division",
			amount:     nd(1000), quantity: ni(0), price: decimal.NullDecimal{},
			wantAmount: nd(1000), wantPrice: decimal.NullDecimal{},
			repairs: 0,
		},
		{
			name:       "null quantity guards division",
			amount:     nd(1000), quantity: sql.NullInt64{}, price: decimal.NullDecimal{},
			wantAmount: nd(1000), wantPrice: decimal.NullDecimal{},
			repairs: 0,
		},
		{
			name:       "everything null stays null",
			amount:     decimal.NullDecimal{}, quantity: sql.NullInt64{}, price: decimal.NullDecimal{},
			wantAmount: decimal.NullDecimal{}, wantPrice: decimal.NullDecimal{},
			repairs: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, price, repairs := RepairMeasures(tt.amount, tt.quantity, tt.price)
			assert.True(t, nullDecimalEqual(tt.wantAmount, amount), "amount: want %v got %v", tt.wantAmount, amount)
			assert.True(t, nullDecimalEqual(tt.wantPrice, price), "price: want %v got %v", tt.wantPrice, price)
			assert.Equal(t, tt.repairs, repairs)
		})
	}
}

func TestRepairMeasuresReadsOriginalAmountForPrice(t *testing.T) {
	// Amount gets repaired to 100 (5 * 20), but the price derivation for a
	// broken price must divide the ORIGINAL amount, not the repaired one.
	amount, price, _ := RepairMeasures(nd(500), ni(5), nd(-20))
	assert.True(t, nullDecimalEqual(nd(100), amount))
	require.True(t, price.Valid)
	assert.True(t, price.Decimal.Equal(decimal.NewFromInt(100)), "got %v", price.Decimal)
}

func TestTransformSales(t *testing.T) {
	rows := []models.BronzeSalesDetail{
		{
			OrderNumber: ns("SO43697"),
			ProductKey:  ns("BK-R93R-62"),
			CustomerID:  ni(21768),
			OrderDate:   ni(20101229),
			ShipDate:    ni(20110105),
			DueDate:     ni(20110110),
			SalesAmount: nd(3578),
			Quantity:    ni(1),
			Price:       nd(3578),
		},
		{
			OrderNumber: ns("SO43698"),
			ProductKey:  ns("BK-R93R-44"),
			CustomerID:  ni(28389),
			OrderDate:   ni(0),
			ShipDate:    ni(20110105),
			DueDate:     ni(20110110),
			SalesAmount: decimal.NullDecimal{},
			Quantity:    ni(5),
			Price:       nd(20),
		},
	}

	out, c := TransformSales(rows)
	require.Len(t, out, 2)

	assert.True(t, out[0].OrderDate.Valid)
	assert.True(t, out[0].SalesAmount.Decimal.Equal(decimal.NewFromInt(3578)))

	assert.False(t, out[1].OrderDate.Valid)
	assert.True(t, out[1].SalesAmount.Decimal.Equal(decimal.NewFromInt(100)))

	assert.Equal(t, 2, c.RowsIn)
	assert.Equal(t, 2, c.RowsOut)
	assert.Equal(t, 1, c.DatesNulled)
	assert.Equal(t, 1, c.ValuesRecomputed)
}

func TestTransformSalesIdempotent(t *testing.T) {
	rows := []models.BronzeSalesDetail{
		{OrderNumber: ns("SO1"), OrderDate: ni(20101229), SalesAmount: nd(100), Quantity: ni(5), Price: nd(20)},
		{OrderNumber: ns("SO2"), OrderDate: ni(99), SalesAmount: decimal.NullDecimal{}, Quantity: ni(2), Price: nd(30)},
	}

	first, _ := TransformSales(rows)
	second, _ := TransformSales(rows)
	assert.Equal(t, first, second)
}
