package core_test

import (
	"encoding/json"
	"testing"

	"business-dashboard/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func order(id, date, total string) core.Order {
	return core.Order{ID: id, OrderDate: core.MustParseDate(date), TotalAmount: money(total)}
}

func expense(id, date, amount string) core.Expense {
	return core.Expense{ID: id, Date: core.MustParseDate(date), Amount: money(amount)}
}

func TestSummarize_EndToEndAllTime(t *testing.T) {
	ds := &core.Dataset{
		Orders: []core.Order{
			order("o1", "2023-10-01", "10.00"),
			order("o2", "2023-10-01", "20.00"),
			order("o3", "2023-10-02", "5.00"),
		},
	}

	m := core.Summarize(ds, core.WindowAll, core.MustParseDate("2023-10-02"))

	assert.True(t, m.TotalSales.Equal(money("35.00")), "sales %s", m.TotalSales)
	assert.True(t, m.TotalExpenses.IsZero())
	assert.True(t, m.Profit.Equal(money("35.00")), "profit %s", m.Profit)
	assert.True(t, m.Margin.Equal(decimal.NewFromInt(100)), "margin %s", m.Margin)
	assert.Equal(t, "100.0", m.MarginString())
	assert.Nil(t, m.From)
	assert.Equal(t, 3, m.OrderCount)

	require.Len(t, m.SalesSeries, 2)
	assert.Equal(t, "2023-10-01", m.SalesSeries[0].Date.String())
	assert.True(t, m.SalesSeries[0].Value.Equal(money("30.00")))
	assert.Equal(t, "2023-10-02", m.SalesSeries[1].Date.String())
	assert.True(t, m.SalesSeries[1].Value.Equal(money("5.00")))
	assert.Equal(t, "Oct 1", m.SalesSeries[0].Label)
}

func TestSummarize_ZeroSalesMargin(t *testing.T) {
	ds := &core.Dataset{
		Expenses: []core.Expense{expense("e1", "2023-10-01", "120.00")},
	}

	m := core.Summarize(ds, core.WindowAll, core.MustParseDate("2023-10-02"))

	assert.True(t, m.Margin.IsZero())
	assert.Equal(t, "0.0", m.MarginString())
	assert.True(t, m.Profit.Equal(money("-120.00")))
	assert.True(t, m.AverageOrderValue.IsZero())
}

func TestSummarize_SevenDaySeriesIsComplete(t *testing.T) {
	today := core.MustParseDate("2023-10-15")
	ds := &core.Dataset{
		Orders: []core.Order{
			order("o1", "2023-10-14", "50.00"),
			order("o2", "2023-10-08", "12.50"), // lower bound, included
			order("o3", "2023-10-07", "99.00"), // one day too old
		},
		Expenses: []core.Expense{expense("e1", "2023-10-10", "20.00")},
	}

	m := core.Summarize(ds, core.Window7d, today)

	require.Len(t, m.SalesSeries, 8)
	require.Len(t, m.ProfitSeries, 8)
	require.NotNil(t, m.From)
	assert.Equal(t, "2023-10-08", m.From.String())
	assert.Equal(t, "2023-10-08", m.SalesSeries[0].Date.String())
	assert.Equal(t, "2023-10-15", m.SalesSeries[7].Date.String())

	for i, p := range m.SalesSeries {
		assert.False(t, p.Value.IsNegative())
		if i > 0 {
			assert.True(t, m.SalesSeries[i-1].Date.Before(p.Date))
		}
	}

	assert.True(t, m.SalesSeries[0].Value.Equal(money("12.50")))
	assert.True(t, m.SalesSeries[1].Value.IsZero(), "quiet day charts as zero")
	assert.True(t, m.ProfitSeries[2].Value.Equal(money("-20.00")), "expense-only day")
	assert.True(t, m.TotalSales.Equal(money("62.50")))
	assert.Equal(t, 2, m.OrderCount)
	assert.True(t, m.AverageOrderValue.Equal(money("31.25")))
}

func TestSummarize_ThirtyDayWindow(t *testing.T) {
	today := core.MustParseDate("2023-10-15")
	m := core.Summarize(&core.Dataset{}, core.Window30d, today)

	require.Len(t, m.SalesSeries, 31)
	assert.Equal(t, "2023-09-15", m.SalesSeries[0].Date.String())
	assert.Empty(t, m.LowStock)
}

func TestSummarize_AllTimeIncludesExpenseOnlyDays(t *testing.T) {
	ds := &core.Dataset{
		Orders:   []core.Order{order("o1", "2023-10-03", "40.00")},
		Expenses: []core.Expense{expense("e1", "2023-10-01", "15.00"), expense("e2", "2023-10-03", "10.00")},
	}

	m := core.Summarize(ds, core.WindowAll, core.MustParseDate("2023-10-05"))

	require.Len(t, m.ProfitSeries, 2)
	assert.Equal(t, "2023-10-01", m.ProfitSeries[0].Date.String())
	assert.True(t, m.ProfitSeries[0].Value.Equal(money("-15.00")))
	assert.True(t, m.ProfitSeries[1].Value.Equal(money("30.00")))
	assert.True(t, m.Margin.Equal(money("37.5")), "margin %s", m.Margin)
}

func TestSummarize_Idempotent(t *testing.T) {
	ds := generate(42)
	today := ds.AsOf

	for _, w := range []core.Window{core.Window7d, core.Window30d, core.WindowAll} {
		first, err := json.Marshal(core.Summarize(ds, w, today))
		require.NoError(t, err)
		second, err := json.Marshal(core.Summarize(ds, w, today))
		require.NoError(t, err)
		assert.JSONEq(t, string(first), string(second), "window %s", w)
	}

	again := generate(42)
	assert.Equal(t, again, ds, "Summarize mutated the dataset")
}

func TestSummarize_GeneratedThirtyDayTotalsMatchAllTime(t *testing.T) {
	// The generator covers exactly the 30d window, so both views agree on totals.
	ds := generate(7)
	m30 := core.Summarize(ds, core.Window30d, ds.AsOf)
	all := core.Summarize(ds, core.WindowAll, ds.AsOf)

	assert.True(t, m30.TotalSales.Equal(all.TotalSales))
	assert.True(t, m30.TotalExpenses.Equal(all.TotalExpenses))
	assert.Len(t, all.SalesSeries, 31)
}

func TestLowStockAlerts(t *testing.T) {
	ds := &core.Dataset{
		Products: []core.Product{
			{ID: "p1", Name: "Butter Chicken"},
			{ID: "p2", Name: "Garlic Naan"},
			{ID: "p3", Name: "Mango Lassi"},
		},
		InventoryItems: []core.InventoryItem{
			{ID: "i1", ProductID: "p1", QuantityOnHand: 5, ReorderPoint: 10},
			{ID: "i2", ProductID: "p2", QuantityOnHand: 20, ReorderPoint: 10},
			{ID: "i3", ProductID: "p3", QuantityOnHand: 10, ReorderPoint: 10},
			{ID: "i4", ProductID: "gone", QuantityOnHand: 1, ReorderPoint: 10},
		},
		// Old orders must not affect the global stock check.
		Orders: []core.Order{order("o1", "2001-01-01", "1.00")},
	}

	m := core.Summarize(ds, core.Window7d, core.MustParseDate("2023-10-15"))

	require.Len(t, m.LowStock, 3)
	assert.Equal(t, "Butter Chicken", m.LowStock[0].ProductName)
	assert.Equal(t, 5, m.LowStock[0].QuantityOnHand)
	assert.Equal(t, 10, m.LowStock[0].ReorderPoint)
	assert.Equal(t, "Mango Lassi", m.LowStock[1].ProductName, "equal to reorder point counts as low")
	assert.Equal(t, "Unknown Product", m.LowStock[2].ProductName)
	for _, a := range m.LowStock {
		assert.NotEqual(t, "Garlic Naan", a.ProductName)
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in      string
		want    core.Window
		wantErr bool
	}{
		{"7d", core.Window7d, false},
		{"30d", core.Window30d, false},
		{"all", core.WindowAll, false},
		{"", core.Window30d, false},
		{"90d", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := core.ParseWindow(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrUnknownWindow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProduct_Margin(t *testing.T) {
	p := core.Product{UnitPrice: money("18.00"), UnitCost: money("6.50")}
	assert.Equal(t, "63.9", p.Margin().StringFixed(1))
	assert.True(t, core.Product{}.Margin().IsZero())
}
