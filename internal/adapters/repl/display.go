package repl

import (
	"fmt"
	"io"
	"strings"

	"business-dashboard/internal/app"
)

// PrintMetrics renders the KPI cards, the daily series and the low-stock list.
func PrintMetrics(w io.Writer, m *app.MetricsResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  %-58s\n", "BUSINESS DASHBOARD")
	fmt.Fprintf(w, "  Window   : %s\n", windowRange(m))
	fmt.Fprintf(w, "  Snapshot : %s (seed %d)\n", m.SnapshotID, m.Seed)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  %-30s %29s\n", "Total Sales", m.TotalSales.StringFixed(2))
	fmt.Fprintf(w, "  %-30s %29s\n", "Total Expenses", m.TotalExpenses.StringFixed(2))
	fmt.Fprintf(w, "  %-30s %29s\n", "Net Profit", m.Profit.StringFixed(2))
	fmt.Fprintf(w, "  %-30s %28s%%\n", "Profit Margin", m.MarginDisplay)
	fmt.Fprintf(w, "  %-30s %29d\n", "Orders", m.OrderCount)
	fmt.Fprintf(w, "  %-30s %29s\n", "Average Order Value", m.AverageOrderValue.StringFixed(2))
	fmt.Fprintln(w, strings.Repeat("-", 62))
	fmt.Fprintf(w, "  %-12s %-8s %12s %12s %12s\n", "DATE", "LABEL", "SALES", "EXPENSES", "PROFIT")
	fmt.Fprintln(w, strings.Repeat("-", 62))
	for i, p := range m.SalesSeries {
		var expense, profit string
		if i < len(m.ExpenseSeries) {
			expense = m.ExpenseSeries[i].Value.StringFixed(2)
		}
		if i < len(m.ProfitSeries) {
			profit = m.ProfitSeries[i].Value.StringFixed(2)
		}
		fmt.Fprintf(w, "  %-12s %-8s %12s %12s %12s\n", p.Date, p.Label, p.Value.StringFixed(2), expense, profit)
	}
	fmt.Fprintln(w, strings.Repeat("=", 62))

	if len(m.LowStock) == 0 {
		fmt.Fprintln(w, "  Inventory healthy: nothing at or below its reorder point.")
		fmt.Fprintln(w, strings.Repeat("=", 62))
		return
	}
	fmt.Fprintf(w, "  LOW STOCK (%d)\n", len(m.LowStock))
	fmt.Fprintf(w, "  %-30s %8s %8s  %s\n", "PRODUCT", "ON HAND", "REORDER", "LOCATION")
	fmt.Fprintln(w, strings.Repeat("-", 62))
	for _, a := range m.LowStock {
		fmt.Fprintf(w, "  %-30s %8d %8d  %s\n", truncate(a.ProductName, 30), a.QuantityOnHand, a.ReorderPoint, a.Location)
	}
	fmt.Fprintln(w, strings.Repeat("=", 62))
}

func windowRange(m *app.MetricsResult) string {
	if m.From == nil {
		return fmt.Sprintf("%s (all time, through %s)", m.Window, m.To)
	}
	return fmt.Sprintf("%s (%s to %s)", m.Window, m.From, m.To)
}

// PrintProducts renders the product catalog with stock and margin.
func PrintProducts(w io.Writer, result *app.ProductListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "  PRODUCTS")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	if len(result.Products) == 0 {
		fmt.Fprintln(w, "  No products found.")
		fmt.Fprintln(w, strings.Repeat("=", 80))
		return
	}
	fmt.Fprintf(w, "  %-8s %-24s %-14s %9s %9s %6s %7s\n", "SKU", "NAME", "CATEGORY", "PRICE", "COST", "STOCK", "MARGIN")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, p := range result.Products {
		flag := ""
		if p.LowStock {
			flag = " !"
		}
		fmt.Fprintf(w, "  %-8s %-24s %-14s %9s %9s %6d %6s%%%s\n",
			p.SKU, truncate(p.Name, 24), truncate(p.CategoryName, 14),
			p.UnitPrice.StringFixed(2), p.UnitCost.StringFixed(2), p.Stock, p.MarginPct.StringFixed(1), flag)
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

// PrintCustomers renders customers by lifetime value.
func PrintCustomers(w io.Writer, result *app.CustomerListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "  CUSTOMERS (by lifetime value)")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	if len(result.Customers) == 0 {
		fmt.Fprintln(w, "  No customers found.")
		fmt.Fprintln(w, strings.Repeat("=", 80))
		return
	}
	fmt.Fprintf(w, "  %-8s %-22s %-10s %-14s %12s  %s\n", "ID", "NAME", "TYPE", "CITY", "LTV", "LAST ORDER")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, c := range result.Customers {
		last := "-"
		if !c.LastPurchaseDate.IsZero() {
			last = c.LastPurchaseDate.String()
		}
		fmt.Fprintf(w, "  %-8s %-22s %-10s %-14s %12s  %s\n",
			c.ID, truncate(c.Name, 22), c.Type, truncate(c.City, 14), c.LifetimeValue.StringFixed(2), last)
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

// PrintTransactions renders orders and expenses, newest first.
func PrintTransactions(w io.Writer, result *app.TransactionListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "  ORDERS (%d)\n", len(result.Orders))
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "  %-14s %-10s %-20s %-10s %-9s %5s %10s\n", "ORDER NO", "DATE", "CUSTOMER", "STATUS", "CHANNEL", "ITEMS", "TOTAL")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, o := range result.Orders {
		fmt.Fprintf(w, "  %-14s %-10s %-20s %-10s %-9s %5d %10s\n",
			o.OrderNumber, o.OrderDate, truncate(o.CustomerName, 20), o.Status, o.Channel, o.ItemCount, o.TotalAmount.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "  EXPENSES (%d)\n", len(result.Expenses))
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "  %-10s %-22s %-32s %10s\n", "DATE", "CATEGORY", "VENDOR", "AMOUNT")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, e := range result.Expenses {
		fmt.Fprintf(w, "  %-10s %-22s %-32s %10s\n",
			e.Date, truncate(e.CategoryName, 22), truncate(e.Vendor, 32), e.Amount.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

// PrintInsights renders insight cards.
func PrintInsights(w io.Writer, result *app.InsightsResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	header := "AI INSIGHTS"
	switch {
	case result.Fallback:
		header += " (offline suggestions)"
	case result.Cached:
		header += " (cached)"
	}
	fmt.Fprintf(w, "  %s\n", header)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	for i, in := range result.Insights {
		if i > 0 {
			fmt.Fprintln(w, strings.Repeat("-", 62))
		}
		fmt.Fprintf(w, "  [%s] %s\n", strings.ToUpper(string(in.Type)), in.Title)
		fmt.Fprintf(w, "  %s\n", in.Description)
		fmt.Fprintf(w, "  Next step: %s\n", in.ActionItem)
	}
	fmt.Fprintln(w, strings.Repeat("=", 62))
}

// PrintChat renders one analyst reply.
func PrintChat(w io.Writer, result *app.ChatResult) {
	prefix := "[AI]"
	if result.Degraded {
		prefix = "[AI offline]"
	}
	fmt.Fprintf(w, "\n%s %s\n", prefix, result.Reply)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
