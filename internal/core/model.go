package core

import "github.com/shopspring/decimal"

// TaxRate is the sales tax applied to every order subtotal.
var TaxRate = decimal.RequireFromString("0.08")

var taxFactor = decimal.NewFromInt(1).Add(TaxRate)

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderCompleted OrderStatus = "Completed"
	OrderCancelled OrderStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "Paid"
	PaymentUnpaid   PaymentStatus = "Unpaid"
	PaymentRefunded PaymentStatus = "Refunded"
)

type Channel string

const (
	ChannelOnline  Channel = "Online"
	ChannelInStore Channel = "In-Store"
)

// Payment methods shared by orders and expenses.
const (
	PaymentCash         = "Cash"
	PaymentCreditCard   = "Credit Card"
	PaymentPayPal       = "PayPal"
	PaymentBankTransfer = "Bank Transfer"
	PaymentCheck        = "Check"
)

type CustomerType string

const (
	CustomerRetail    CustomerType = "Retail"
	CustomerWholesale CustomerType = "Wholesale"
	CustomerVIP       CustomerType = "VIP"
)

// ProductCategory groups products on the menu. ParentID is carried for
// hierarchies but the generator never sets it.
type ProductCategory struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *string `json:"parent_category_id,omitempty"`
}

// Product is a menu item. UnitCost is expected, not enforced, to stay at or
// below UnitPrice.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	CategoryID    string          `json:"category_id"`
	SKU           string          `json:"sku"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	UnitPrice     decimal.Decimal `json:"base_price"`
	UnitCost      decimal.Decimal `json:"cost_price"`
	IsActive      bool            `json:"is_active"`
}

// Margin returns (price - cost) / price as a percentage rounded to one
// decimal place, or zero for an unpriced product.
func (p Product) Margin() decimal.Decimal {
	return marginPercent(p.UnitPrice.Sub(p.UnitCost), p.UnitPrice)
}

// InventoryItem is the single stock row of a product.
type InventoryItem struct {
	ID               string `json:"id"`
	ProductID        string `json:"product_id"`
	QuantityOnHand   int    `json:"quantity_on_hand"`
	QuantityReserved int    `json:"quantity_reserved"`
	ReorderPoint     int    `json:"reorder_point"`
	ReorderQuantity  int    `json:"reorder_quantity"`
	Location         string `json:"warehouse_location"`
}

// NeedsReorder reports whether on-hand stock is at or below the reorder point.
func (i InventoryItem) NeedsReorder() bool {
	return i.QuantityOnHand <= i.ReorderPoint
}

// Customer is a repeat guest. LifetimeValue and LastPurchaseDate are
// accumulated by the generator from the orders assigned to the customer.
type Customer struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	Address           string          `json:"address"`
	City              string          `json:"city"`
	State             string          `json:"state"`
	PostalCode        string          `json:"postal_code"`
	FirstPurchaseDate Date            `json:"first_purchase_date"`
	LastPurchaseDate  Date            `json:"last_purchase_date"`
	LifetimeValue     decimal.Decimal `json:"lifetime_value"`
	Type              CustomerType    `json:"customer_type"`
}

// Order is a priced sales order header. Amounts are set by PriceOrder.
type Order struct {
	ID             string          `json:"id"`
	OrderNumber    string          `json:"order_number"`
	CustomerID     string          `json:"customer_id"`
	OrderDate      Date            `json:"order_date"`
	Status         OrderStatus     `json:"order_status"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	Channel        Channel         `json:"order_channel"`
	SubtotalAmount decimal.Decimal `json:"subtotal_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaymentMethod  string          `json:"payment_method"`
}

// OrderItem is one line of an order. UnitPrice is the product price at the
// time of sale.
type OrderItem struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"order_id"`
	ProductID  string          `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// PriceOrder sets the order's subtotal to the sum of its item totals, tax to
// subtotal × TaxRate and total to subtotal × (1 + TaxRate). No discounts are
// applied.
func PriceOrder(o *Order, items []OrderItem) {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.TotalPrice)
	}
	o.SubtotalAmount = subtotal
	o.TaxAmount = subtotal.Mul(TaxRate)
	o.DiscountAmount = decimal.Zero
	o.TotalAmount = subtotal.Mul(taxFactor)
}

type ExpenseCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Expense struct {
	ID            string          `json:"id"`
	Date          Date            `json:"date"`
	CategoryID    string          `json:"category_id"`
	Vendor        string          `json:"vendor"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes,omitempty"`
}

// Dataset is the complete entity set produced by one generator run.
// A Dataset is never mutated after it is returned; consumers share it read-only
// and a new run replaces it wholesale.
type Dataset struct {
	AsOf              Date              `json:"as_of"`
	Products          []Product         `json:"products"`
	ProductCategories []ProductCategory `json:"product_categories"`
	InventoryItems    []InventoryItem   `json:"inventory_items"`
	Customers         []Customer        `json:"customers"`
	Orders            []Order           `json:"orders"`
	OrderItems        []OrderItem       `json:"order_items"`
	Expenses          []Expense         `json:"expenses"`
	ExpenseCategories []ExpenseCategory `json:"expense_categories"`
}

// ProductByID returns the product with the given id.
func (ds *Dataset) ProductByID(id string) (Product, bool) {
	for _, p := range ds.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// CategoryName resolves a product category id to its name, or "Uncategorized".
func (ds *Dataset) CategoryName(id string) string {
	for _, c := range ds.ProductCategories {
		if c.ID == id {
			return c.Name
		}
	}
	return "Uncategorized"
}

// CustomerName resolves a customer id to its name, or "Unknown Customer".
func (ds *Dataset) CustomerName(id string) string {
	for _, c := range ds.Customers {
		if c.ID == id {
			return c.Name
		}
	}
	return "Unknown Customer"
}

// ExpenseCategoryName resolves an expense category id to its name.
func (ds *Dataset) ExpenseCategoryName(id string) string {
	for _, c := range ds.ExpenseCategories {
		if c.ID == id {
			return c.Name
		}
	}
	return "Other"
}

// ItemsForOrder returns the order items belonging to orderID in creation order.
func (ds *Dataset) ItemsForOrder(orderID string) []OrderItem {
	var out []OrderItem
	for _, it := range ds.OrderItems {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out
}

// StockOnHand sums quantity on hand across every inventory row of a product.
func (ds *Dataset) StockOnHand(productID string) int {
	total := 0
	for _, inv := range ds.InventoryItems {
		if inv.ProductID == productID {
			total += inv.QuantityOnHand
		}
	}
	return total
}
