package core_test

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"
	"time"

	"business-dashboard/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	genToday = core.MustParseDate("2023-10-15") // a Sunday; window covers 2023-09-15..2023-10-15
	seeds    = []uint64{1, 7, 42, 2024, 99991}
)

func generate(seed uint64) *core.Dataset {
	return core.GenerateDataset(rand.New(rand.NewPCG(seed, seed+1)), genToday)
}

func TestGenerate_OrderTotals(t *testing.T) {
	factor := decimal.RequireFromString("1.08")
	for _, seed := range seeds {
		ds := generate(seed)
		require.NotEmpty(t, ds.Orders)

		for _, o := range ds.Orders {
			items := ds.ItemsForOrder(o.ID)
			require.NotEmpty(t, items, "order %s has no items", o.ID)
			assert.LessOrEqual(t, len(items), 4)

			sum := decimal.Zero
			for _, it := range items {
				assert.Contains(t, []int{1, 2}, it.Quantity)
				assert.True(t, it.TotalPrice.Equal(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))))
				sum = sum.Add(it.TotalPrice)
			}

			assert.True(t, o.SubtotalAmount.Equal(sum), "seed %d order %s: subtotal %s != items %s", seed, o.ID, o.SubtotalAmount, sum)
			assert.True(t, o.TotalAmount.Equal(o.SubtotalAmount.Mul(factor)), "seed %d order %s: total %s", seed, o.ID, o.TotalAmount)
			assert.True(t, o.TaxAmount.Equal(o.SubtotalAmount.Mul(core.TaxRate)))
			assert.Equal(t, core.OrderCompleted, o.Status)
			assert.Equal(t, core.PaymentPaid, o.PaymentStatus)
		}
	}
}

func TestGenerate_LifetimeValueMatchesOrders(t *testing.T) {
	for _, seed := range seeds {
		ds := generate(seed)

		want := map[string]decimal.Decimal{}
		latest := map[string]core.Date{}
		for _, o := range ds.Orders {
			want[o.CustomerID] = want[o.CustomerID].Add(o.TotalAmount)
			if o.OrderDate.After(latest[o.CustomerID]) {
				latest[o.CustomerID] = o.OrderDate
			}
		}

		for _, c := range ds.Customers {
			assert.True(t, c.LifetimeValue.Equal(want[c.ID]), "seed %d customer %s: ltv %s want %s", seed, c.ID, c.LifetimeValue, want[c.ID])
			if d, ok := latest[c.ID]; ok {
				assert.Equal(t, d, c.LastPurchaseDate)
			}
		}
	}
}

func TestGenerate_OrdersPerDay(t *testing.T) {
	for _, seed := range seeds {
		ds := generate(seed)

		perDay := map[core.Date]int{}
		for _, o := range ds.Orders {
			perDay[o.OrderDate]++
		}

		first := genToday.AddDays(-core.HistoryDays)
		assert.Len(t, perDay, core.HistoryDays+1)
		for d := first; !d.After(genToday); d = d.AddDays(1) {
			n := perDay[d]
			if d.IsWeekend() {
				assert.True(t, n >= 8 && n <= 15, "seed %d weekend %s: %d orders", seed, d, n)
			} else {
				assert.True(t, n >= 3 && n <= 8, "seed %d weekday %s: %d orders", seed, d, n)
			}
		}
	}
}

func TestGenerate_OrderNumbersFollowCreationOrder(t *testing.T) {
	ds := generate(42)

	seen := map[int]core.Order{}
	for _, o := range ds.Orders {
		require.True(t, strings.HasPrefix(o.OrderNumber, "ORD-"))
		n, err := strconv.Atoi(strings.TrimPrefix(o.OrderNumber, "ORD-"))
		require.NoError(t, err)
		_, dup := seen[n]
		require.False(t, dup, "duplicate order number %d", n)
		seen[n] = o
	}

	for i := 0; i < len(ds.Orders); i++ {
		o, ok := seen[10000+i]
		require.True(t, ok, "missing ORD-%d", 10000+i)
		if prev, ok := seen[10000+i-1]; ok {
			assert.False(t, o.OrderDate.Before(prev.OrderDate), "ORD-%d dated before its predecessor", 10000+i)
		}
	}
}

func TestGenerate_SortedNewestFirst(t *testing.T) {
	ds := generate(7)
	for i := 1; i < len(ds.Orders); i++ {
		assert.False(t, ds.Orders[i].OrderDate.After(ds.Orders[i-1].OrderDate))
	}
	for i := 1; i < len(ds.Expenses); i++ {
		assert.False(t, ds.Expenses[i].Date.After(ds.Expenses[i-1].Date))
	}
}

func TestGenerate_ExpenseRules(t *testing.T) {
	for _, seed := range seeds {
		ds := generate(seed)

		rentDays, restockDays := 0, 0
		for _, e := range ds.Expenses {
			switch e.CategoryID {
			case core.ExpenseCategoryRent:
				rentDays++
				assert.Equal(t, 1, e.Date.Day)
				assert.True(t, e.Amount.Equal(decimal.NewFromInt(2500)))
			case core.ExpenseCategoryFoodCost:
				restockDays++
				assert.Equal(t, time.Monday, e.Date.Weekday())
				assert.True(t, e.Amount.GreaterThanOrEqual(decimal.NewFromInt(400)) && e.Amount.LessThanOrEqual(decimal.NewFromInt(600)), "restock %s", e.Amount)
			case core.ExpenseCategoryUtilities, core.ExpenseCategoryMarketing:
				assert.True(t, e.Amount.GreaterThanOrEqual(decimal.NewFromInt(20)) && e.Amount.LessThanOrEqual(decimal.NewFromInt(120)), "small expense %s", e.Amount)
				if e.CategoryID == core.ExpenseCategoryMarketing {
					assert.Equal(t, "Facebook Ads", e.Vendor)
				} else {
					assert.Equal(t, "Metro Electric", e.Vendor)
				}
			default:
				t.Errorf("unexpected expense category %s", e.CategoryID)
			}
		}

		// 2023-09-15..2023-10-15 contains exactly one 1st and four Mondays.
		assert.Equal(t, 1, rentDays, "seed %d", seed)
		assert.Equal(t, 4, restockDays, "seed %d", seed)
	}
}

func TestGenerate_InventorySeed(t *testing.T) {
	ds := generate(2024)
	require.Len(t, ds.InventoryItems, len(ds.Products))

	byProduct := map[string]int{}
	for _, inv := range ds.InventoryItems {
		byProduct[inv.ProductID]++
		assert.True(t, inv.QuantityOnHand >= 5 && inv.QuantityOnHand <= 54, "on hand %d", inv.QuantityOnHand)
		assert.Equal(t, 10, inv.ReorderPoint)
		assert.Equal(t, 30, inv.ReorderQuantity)
	}
	for _, p := range ds.Products {
		assert.Equal(t, 1, byProduct[p.ID], "product %s", p.ID)
	}
}

func TestGenerate_DeterministicForSeed(t *testing.T) {
	a := generate(99991)
	b := generate(99991)
	assert.Equal(t, a, b)

	c := generate(1)
	assert.NotEqual(t, fmt.Sprint(len(a.Orders), a.Orders[0].TotalAmount), fmt.Sprint(len(c.Orders), c.Orders[0].TotalAmount))
}

func TestGenerator_RunsAreIndependent(t *testing.T) {
	g := core.NewGenerator(core.WithSeed(5), core.WithToday(genToday))

	first := g.Generate()
	snapshot := first.Customers[0].LifetimeValue
	second := g.Generate()

	assert.True(t, first.Customers[0].LifetimeValue.Equal(snapshot), "second run mutated the first dataset")
	second.Products[0].Name = "changed"
	assert.Equal(t, "Butter Chicken", first.Products[0].Name)
	assert.Equal(t, genToday, second.AsOf)
}
