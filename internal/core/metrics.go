package core

import (
	"slices"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SeriesPoint is one day of a chart series.
type SeriesPoint struct {
	Date  Date            `json:"date"`
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// LowStockAlert is an inventory row at or below its reorder point, joined to
// the product's display name.
type LowStockAlert struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	QuantityOnHand int    `json:"quantity_on_hand"`
	ReorderPoint   int    `json:"reorder_point"`
	Location       string `json:"warehouse_location"`
}

// Metrics is the view-ready summary of a dataset for one window.
type Metrics struct {
	Window            Window          `json:"window"`
	From              *Date           `json:"from,omitempty"` // nil for WindowAll
	To                Date            `json:"to"`
	OrderCount        int             `json:"order_count"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	Profit            decimal.Decimal `json:"profit"`
	Margin            decimal.Decimal `json:"margin"` // percent, one decimal place
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	SalesSeries       []SeriesPoint   `json:"sales_series"`
	ExpenseSeries     []SeriesPoint   `json:"expense_series"`
	ProfitSeries      []SeriesPoint   `json:"profit_series"`
	LowStock          []LowStockAlert `json:"low_stock"`
}

// MarginString renders the margin the way the dashboard shows it, e.g. "37.5".
func (m Metrics) MarginString() string {
	return m.Margin.StringFixed(1)
}

// ComputeMetrics summarizes ds over w, ending on the current local day.
func ComputeMetrics(ds *Dataset, w Window) Metrics {
	return Summarize(ds, w, Today())
}

// Summarize is the pure aggregation behind ComputeMetrics. It never mutates ds
// and returns identical output for identical input.
func Summarize(ds *Dataset, w Window, today Date) Metrics {
	m := Metrics{
		Window:            w,
		To:                today,
		TotalSales:        decimal.Zero,
		TotalExpenses:     decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}

	sales := make(map[Date]decimal.Decimal)
	expenses := make(map[Date]decimal.Decimal)
	days := make(map[Date]struct{})

	// Bounded windows show every day, so quiet days chart as zero bars.
	if from, ok := w.LowerBound(today); ok {
		m.From = &from
		for d := from; !d.After(today); d = d.AddDays(1) {
			days[d] = struct{}{}
		}
	}

	for _, o := range ds.Orders {
		if !w.Contains(o.OrderDate, today) {
			continue
		}
		m.OrderCount++
		m.TotalSales = m.TotalSales.Add(o.TotalAmount)
		sales[o.OrderDate] = sales[o.OrderDate].Add(o.TotalAmount)
		days[o.OrderDate] = struct{}{}
	}

	for _, e := range ds.Expenses {
		if !w.Contains(e.Date, today) {
			continue
		}
		m.TotalExpenses = m.TotalExpenses.Add(e.Amount)
		expenses[e.Date] = expenses[e.Date].Add(e.Amount)
		days[e.Date] = struct{}{}
	}

	m.Profit = m.TotalSales.Sub(m.TotalExpenses)
	m.Margin = marginPercent(m.Profit, m.TotalSales)
	if m.OrderCount > 0 {
		m.AverageOrderValue = m.TotalSales.Div(decimal.NewFromInt(int64(m.OrderCount))).Round(2)
	}

	ordered := make([]Date, 0, len(days))
	for d := range days {
		ordered = append(ordered, d)
	}
	slices.SortFunc(ordered, Date.Compare)

	m.SalesSeries = make([]SeriesPoint, 0, len(ordered))
	m.ExpenseSeries = make([]SeriesPoint, 0, len(ordered))
	m.ProfitSeries = make([]SeriesPoint, 0, len(ordered))
	for _, d := range ordered {
		s, e := sales[d], expenses[d]
		m.SalesSeries = append(m.SalesSeries, SeriesPoint{Date: d, Label: d.Label(), Value: s})
		m.ExpenseSeries = append(m.ExpenseSeries, SeriesPoint{Date: d, Label: d.Label(), Value: e})
		m.ProfitSeries = append(m.ProfitSeries, SeriesPoint{Date: d, Label: d.Label(), Value: s.Sub(e)})
	}

	m.LowStock = LowStockAlerts(ds)
	return m
}

// marginPercent returns profit/sales as a percentage rounded to one decimal
// place, or zero when there are no sales.
func marginPercent(profit, sales decimal.Decimal) decimal.Decimal {
	if !sales.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(sales).Mul(hundred).Round(1)
}

// LowStockAlerts lists every inventory item at or below its reorder point.
// The check is global and ignores any time window.
func LowStockAlerts(ds *Dataset) []LowStockAlert {
	alerts := []LowStockAlert{}
	for _, inv := range ds.InventoryItems {
		if !inv.NeedsReorder() {
			continue
		}
		name := "Unknown Product"
		if p, ok := ds.ProductByID(inv.ProductID); ok {
			name = p.Name
		}
		alerts = append(alerts, LowStockAlert{
			ProductID:      inv.ProductID,
			ProductName:    name,
			QuantityOnHand: inv.QuantityOnHand,
			ReorderPoint:   inv.ReorderPoint,
			Location:       inv.Location,
		})
	}
	return alerts
}
