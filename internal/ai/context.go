package ai

import (
	"encoding/json"
	"fmt"

	"business-dashboard/internal/core"

	"github.com/shopspring/decimal"
)

const (
	contextOrderLimit   = 20
	contextExpenseLimit = 10
)

type contextProduct struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// BusinessContext is the dataset summary sent with every AI request.
type BusinessContext struct {
	Products       []contextProduct     `json:"products"`
	RecentOrders   []core.Order         `json:"recent_orders"`
	InventoryAlert []core.InventoryItem `json:"inventory_alert"`
	RecentExpenses []core.Expense       `json:"recent_expenses"`
}

// Summarize picks the slice of ds the model sees: every product, the newest
// orders and expenses, and inventory strictly below its reorder point.
// ds.Orders and ds.Expenses are expected newest first, as generated.
func Summarize(ds *core.Dataset) BusinessContext {
	bc := BusinessContext{
		Products:       make([]contextProduct, 0, len(ds.Products)),
		RecentOrders:   head(ds.Orders, contextOrderLimit),
		InventoryAlert: []core.InventoryItem{},
		RecentExpenses: head(ds.Expenses, contextExpenseLimit),
	}
	for _, p := range ds.Products {
		bc.Products = append(bc.Products, contextProduct{ID: p.ID, Name: p.Name, Price: p.UnitPrice})
	}
	for _, inv := range ds.InventoryItems {
		if inv.QuantityOnHand < inv.ReorderPoint {
			bc.InventoryAlert = append(bc.InventoryAlert, inv)
		}
	}
	return bc
}

// BuildContext renders Summarize(ds) as the JSON string embedded in prompts.
func BuildContext(ds *core.Dataset) (string, error) {
	b, err := json.Marshal(Summarize(ds))
	if err != nil {
		return "", fmt.Errorf("marshal business context: %w", err)
	}
	return string(b), nil
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	return append(make([]T, 0, len(s)), s...)
}
