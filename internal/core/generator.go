package core

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Generation parameters for the synthetic trading history.
const (
	HistoryDays = 30 // days before "today" included in a run; the window is HistoryDays+1 long

	orderNumberBase = 10000

	weekendMinOrders = 8
	weekendMaxOrders = 15
	weekdayMinOrders = 3
	weekdayMaxOrders = 8

	maxItemsPerOrder = 4
	maxItemQuantity  = 2

	onlineProbability        = 0.4
	creditCardProbability    = 0.5
	randomExpenseProbability = 0.3

	restockMin       = 400
	restockSpread    = 200
	smallExpenseMin  = 20
	smallExpenseSpan = 100 // inclusive span: amounts fall in [20, 120]

	initialStockMin    = 5
	initialStockSpread = 50
	reorderPoint       = 10
	reorderQuantity    = 30
)

var rentAmount = decimal.RequireFromString("2500.00")

// Generator produces synthetic datasets. It is safe for concurrent use; runs
// are serialized because the underlying random source is not.
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	today func() Date
}

type GeneratorOption func(*Generator)

// WithRand makes the generator draw from r. Use a seeded source for reproducible output.
func WithRand(r *rand.Rand) GeneratorOption {
	return func(g *Generator) { g.rng = r }
}

// WithSeed is shorthand for WithRand(NewSeededRand(seed)).
func WithSeed(seed uint64) GeneratorOption {
	return func(g *Generator) { g.rng = NewSeededRand(seed) }
}

// NewSeededRand returns the PCG source a seed stands for. GenerateDataset over
// NewSeededRand(s) yields the same dataset for the same s and day.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// WithToday pins the last day of the generated window.
func WithToday(d Date) GeneratorOption {
	return func(g *Generator) { g.today = func() Date { return d } }
}

// NewGenerator returns a Generator. Without options it uses an unseeded
// source and the local calendar day, so every run differs.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		today: Today,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a new, independent dataset.
func (g *Generator) Generate() *Dataset {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GenerateDataset(g.rng, g.today())
}

// GenerateDataset builds the synthetic history for the HistoryDays+1 days
// ending on today (inclusive). The only state it touches is rng.
func GenerateDataset(rng *rand.Rand, today Date) *Dataset {
	products := seedProducts()
	customers := seedCustomers()

	ds := &Dataset{
		AsOf:              today,
		Products:          products,
		ProductCategories: seedProductCategories(),
		InventoryItems:    seedInventory(rng, products),
		ExpenseCategories: seedExpenseCategories(),
	}

	lifetime := make(map[string]decimal.Decimal, len(customers))
	lastPurchase := make(map[string]Date, len(customers))

	for daysAgo := HistoryDays; daysAgo >= 0; daysAgo-- {
		day := today.AddDays(-daysAgo)

		numOrders := orderCount(rng, day)
		for j := 0; j < numOrders; j++ {
			customer := customers[rng.IntN(len(customers))]
			order, items := buildOrder(rng, products, day, daysAgo, j, len(ds.Orders))
			order.CustomerID = customer.ID

			ds.Orders = append(ds.Orders, order)
			ds.OrderItems = append(ds.OrderItems, items...)

			lifetime[customer.ID] = lifetime[customer.ID].Add(order.TotalAmount)
			lastPurchase[customer.ID] = day
		}

		ds.Expenses = append(ds.Expenses, dailyExpenses(rng, day, daysAgo)...)
	}

	for i := range customers {
		c := &customers[i]
		c.LifetimeValue = lifetime[c.ID]
		if d, ok := lastPurchase[c.ID]; ok {
			c.LastPurchaseDate = d
		}
	}
	ds.Customers = customers

	slices.SortStableFunc(ds.Orders, func(a, b Order) int { return b.OrderDate.Compare(a.OrderDate) })
	slices.SortStableFunc(ds.Expenses, func(a, b Expense) int { return b.Date.Compare(a.Date) })

	return ds
}

// intBetween draws uniformly from [lo, hi] inclusive.
func intBetween(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

func orderCount(rng *rand.Rand, day Date) int {
	if day.IsWeekend() {
		return intBetween(rng, weekendMinOrders, weekendMaxOrders)
	}
	return intBetween(rng, weekdayMinOrders, weekdayMaxOrders)
}

func seedInventory(rng *rand.Rand, products []Product) []InventoryItem {
	items := make([]InventoryItem, 0, len(products))
	for idx, p := range products {
		location := "Pantry"
		if idx%2 == 0 {
			location = "Kitchen Fridge"
		}
		items = append(items, InventoryItem{
			ID:              "inv_" + p.ID,
			ProductID:       p.ID,
			QuantityOnHand:  initialStockMin + rng.IntN(initialStockSpread),
			ReorderPoint:    reorderPoint,
			ReorderQuantity: reorderQuantity,
			Location:        location,
		})
	}
	return items
}

// buildOrder draws the items of one order and prices it. seq is the number of
// orders created so far in this run and determines the order number.
func buildOrder(rng *rand.Rand, products []Product, day Date, daysAgo, j, seq int) (Order, []OrderItem) {
	orderID := fmt.Sprintf("ord_%d_%d", daysAgo, j)

	numItems := intBetween(rng, 1, maxItemsPerOrder)
	items := make([]OrderItem, 0, numItems)
	for k := 0; k < numItems; k++ {
		p := products[rng.IntN(len(products))]
		qty := intBetween(rng, 1, maxItemQuantity)
		items = append(items, OrderItem{
			ID:         fmt.Sprintf("oi_%s_%d", orderID, k),
			OrderID:    orderID,
			ProductID:  p.ID,
			Quantity:   qty,
			UnitPrice:  p.UnitPrice,
			TotalPrice: p.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
		})
	}

	channel := ChannelInStore
	if rng.Float64() < onlineProbability {
		channel = ChannelOnline
	}
	payment := PaymentCash
	if rng.Float64() < creditCardProbability {
		payment = PaymentCreditCard
	}

	order := Order{
		ID:            orderID,
		OrderNumber:   fmt.Sprintf("ORD-%d", orderNumberBase+seq),
		OrderDate:     day,
		Status:        OrderCompleted,
		PaymentStatus: PaymentPaid,
		Channel:       channel,
		PaymentMethod: payment,
	}
	PriceOrder(&order, items)
	return order, items
}

// dailyExpenses applies the three independent emission rules to one day.
func dailyExpenses(rng *rand.Rand, day Date, daysAgo int) []Expense {
	var out []Expense

	if day.Day == 1 {
		out = append(out, Expense{
			ID:            fmt.Sprintf("exp_rent_%d", daysAgo),
			Date:          day,
			CategoryID:    ExpenseCategoryRent,
			Vendor:        "City Properties",
			Amount:        rentAmount,
			PaymentMethod: PaymentBankTransfer,
			Notes:         "Monthly Rent",
		})
	}

	if day.Weekday() == time.Monday {
		amount := restockMin + rng.Float64()*restockSpread
		out = append(out, Expense{
			ID:            fmt.Sprintf("exp_food_%d", daysAgo),
			Date:          day,
			CategoryID:    ExpenseCategoryFoodCost,
			Vendor:        "Spice Route Traders",
			Amount:        decimal.NewFromFloat(amount).Round(2),
			PaymentMethod: PaymentCheck,
			Notes:         "Weekly Supply Restock",
		})
	}

	if rng.Float64() < randomExpenseProbability {
		marketing := rng.Float64() < 0.5
		e := Expense{
			ID:            fmt.Sprintf("exp_rnd_%d", daysAgo),
			Date:          day,
			CategoryID:    ExpenseCategoryUtilities,
			Vendor:        "Metro Electric",
			Amount:        decimal.NewFromInt(int64(intBetween(rng, smallExpenseMin, smallExpenseMin+smallExpenseSpan))),
			PaymentMethod: PaymentCreditCard,
			Notes:         "Utility Bill",
		}
		if marketing {
			e.CategoryID = ExpenseCategoryMarketing
			e.Vendor = "Facebook Ads"
			e.Notes = "Boost Post"
		}
		out = append(out, e)
	}

	return out
}
