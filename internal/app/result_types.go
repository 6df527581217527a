package app

import (
	"time"

	"business-dashboard/internal/ai"
	"business-dashboard/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SnapshotMeta identifies the dataset a result was computed from.
type SnapshotMeta struct {
	SnapshotID  uuid.UUID `json:"snapshot_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Seed        uint64    `json:"seed"`
}

// DatasetResult is returned by Regenerate and Dataset.
type DatasetResult struct {
	SnapshotMeta
	Dataset *core.Dataset `json:"dataset"`
}

// MetricsResult is returned by Metrics.
type MetricsResult struct {
	SnapshotMeta
	core.Metrics
	MarginDisplay string `json:"margin_display"`
}

// ProductRow is one catalog line as the products view shows it.
type ProductRow struct {
	core.Product
	CategoryName string          `json:"category_name"`
	Stock        int             `json:"stock"`
	MarginPct    decimal.Decimal `json:"margin_pct"`
	LowStock     bool            `json:"low_stock"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	SnapshotMeta
	Products   []ProductRow           `json:"products"`
	Categories []core.ProductCategory `json:"categories"`
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	SnapshotMeta
	Customers []core.Customer `json:"customers"`
}

// OrderRow is an order with its customer name and line count joined.
type OrderRow struct {
	core.Order
	CustomerName string `json:"customer_name"`
	ItemCount    int    `json:"item_count"`
}

// ExpenseRow is an expense with its category name joined.
type ExpenseRow struct {
	core.Expense
	CategoryName string `json:"category_name"`
}

// TransactionListResult is returned by ListTransactions.
type TransactionListResult struct {
	SnapshotMeta
	Orders   []OrderRow   `json:"orders"`
	Expenses []ExpenseRow `json:"expenses"`
}

// ChatResult is returned by Ask.
type ChatResult struct {
	Reply    string `json:"reply"`
	Degraded bool   `json:"degraded"`
}

// InsightsResult is returned by Insights.
type InsightsResult struct {
	SnapshotID  uuid.UUID    `json:"snapshot_id"`
	Insights    []ai.Insight `json:"insights"`
	Fallback    bool         `json:"fallback"`
	Cached      bool         `json:"cached"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// ExportResult is returned by ExportSnapshot.
type ExportResult struct {
	SnapshotMeta
	Orders   int `json:"orders"`
	Expenses int `json:"expenses"`
}
