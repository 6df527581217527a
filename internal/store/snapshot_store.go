package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"business-dashboard/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrSnapshotNotFound is returned when no snapshot has the requested id.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotInfo summarizes one exported dataset.
type SnapshotInfo struct {
	ID          uuid.UUID `json:"id"`
	AsOf        core.Date `json:"as_of"`
	Seed        *uint64   `json:"seed,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	OrderCount  int       `json:"order_count"`
}

// SnapshotStore persists generated datasets to Postgres for offline analysis.
type SnapshotStore interface {
	Save(ctx context.Context, id uuid.UUID, seed *uint64, ds *core.Dataset) error
	List(ctx context.Context) ([]SnapshotInfo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgSnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore returns a SnapshotStore backed by pool. The schema comes
// from migrations/001_dashboard_schema.sql.
func NewSnapshotStore(pool *pgxpool.Pool) SnapshotStore {
	return &pgSnapshotStore{pool: pool}
}

// Save writes ds under id in one transaction. Rows go through COPY, one
// table at a time.
func (s *pgSnapshotStore) Save(ctx context.Context, id uuid.UUID, seed *uint64, ds *core.Dataset) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var seedParam *int64
	if seed != nil {
		v := int64(*seed)
		seedParam = &v
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO dataset_snapshots (id, as_of, seed) VALUES ($1, $2, $3)",
		id, date(ds.AsOf), seedParam,
	); err != nil {
		return fmt.Errorf("insert snapshot %s: %w", id, err)
	}

	copies := []struct {
		table   string
		columns []string
		rows    func() ([][]any, error)
	}{
		{"snapshot_product_categories", []string{"snapshot_id", "id", "name", "description", "parent_id"}, func() ([][]any, error) {
			rows := make([][]any, 0, len(ds.ProductCategories))
			for _, c := range ds.ProductCategories {
				rows = append(rows, []any{id, c.ID, c.Name, c.Description, c.ParentID})
			}
			return rows, nil
		}},
		{"snapshot_products", []string{"snapshot_id", "id", "name", "description", "category_id", "sku", "unit_of_measure", "base_price", "cost_price", "is_active"}, func() ([][]any, error) {
			rows := make([][]any, 0, len(ds.Products))
			for _, p := range ds.Products {
				price, err := numeric(p.UnitPrice)
				if err != nil {
					return nil, err
				}
				cost, err := numeric(p.UnitCost)
				if err != nil {
					return nil, err
				}
				rows = append(rows, []any{id, p.ID, p.Name, p.Description, p.CategoryID, p.SKU, p.UnitOfMeasure, price, cost, p.IsActive})
			}
			return rows, nil
		}},
		{"snapshot_inventory_items", []string{"snapshot_id", "id", "product_id", "quantity_on_hand", "quantity_reserved", "reorder_point", "reorder_quantity", "warehouse_location"}, func() ([][]any, error) {
			rows := make([][]any, 0, len(ds.InventoryItems))
			for _, inv := range ds.InventoryItems {
				rows = append(rows, []any{id, inv.ID, inv.ProductID, int32(inv.QuantityOnHand), int32(inv.QuantityReserved), int32(inv.ReorderPoint), int32(inv.ReorderQuantity), inv.Location})
			}
			return rows, nil
		}},
		{"snapshot_customers", []string{"snapshot_id", "id", "name", "email", "phone", "address", "city", "state", "postal_code", "first_purchase_date", "last_purchase_date", "lifetime_value", "customer_type"}, func() ([][]any, error) {
			rows := make([][]any, 0, len(ds.Customers))
			for _, c := range ds.Customers {
				ltv, err := numeric(c.LifetimeValue)
				if err != nil {
					return nil, err
				}
				rows = append(rows, []any{id, c.ID, c.Name, c.Email, c.Phone, c.Address, c.City, c.State, c.PostalCode, date(c.FirstPurchaseDate), date(c.LastPurchaseDate), ltv, string(c.Type)})
			}
			return rows, nil
		}},
		{"snapshot_orders", []string{"snapshot_id", "id", "order_number", "customer_id", "order_date", "order_status", "payment_status", "payment_method", "order_channel", "subtotal_amount", "tax_amount", "discount_amount", "total_amount"}, func() ([][]any, error) {
			rows := make([][]any, 0, len(ds.Orders))
			for _, o := range ds.Orders {
				amounts, err := numerics(o.SubtotalAmount, o.TaxAmount, o.DiscountAmount, o.TotalAmount)
				if err != nil {
					return nil, err
				}
				rows = append(rows, []any{id, o.ID, o.OrderNumber, o.CustomerID, date(o.OrderDate), string(o.Status), string(o.PaymentStatus), o.PaymentMethod, string(o.Channel), amounts[0], amounts[1], amounts[2], amounts[3]})
			}
			return rows, nil
		}},
		{"snapshot_order_items", []string{"snapshot_id", "id", "order_id", "product_id", "quantity", "unit_price", "total_price"}, func() ([][]any, error) {
			rows := make([][]any, 0, len(ds.OrderItems))
			for _, it := range ds.OrderItems {
				amounts, err := numerics(it.UnitPrice, it.TotalPrice)
				if err != nil {
					return nil, err
				}
				rows = append(rows, []any{id, it.ID, it.OrderID, it.ProductID, int32(it.Quantity), amounts[0], amounts[1]})
			}
			return rows, nil
		}},
		{"snapshot_expense_categories", []string{"snapshot_id", "id", "name", "description"}, func() ([][]any, error) {
			rows := make([][]any, 0, len(ds.ExpenseCategories))
			for _, c := range ds.ExpenseCategories {
				rows = append(rows, []any{id, c.ID, c.Name, c.Description})
			}
			return rows, nil
		}},
		{"snapshot_expenses", []string{"snapshot_id", "id", "expense_date", "category_id", "vendor", "amount", "payment_method", "notes"}, func() ([][]any, error) {
			rows := make([][]any, 0, len(ds.Expenses))
			for _, e := range ds.Expenses {
				amount, err := numeric(e.Amount)
				if err != nil {
					return nil, err
				}
				rows = append(rows, []any{id, e.ID, date(e.Date), e.CategoryID, e.Vendor, amount, e.PaymentMethod, e.Notes})
			}
			return rows, nil
		}},
	}

	for _, c := range copies {
		rows, err := c.rows()
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.table, err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{c.table}, c.columns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copy %s: %w", c.table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot %s: %w", id, err)
	}
	return nil
}

// List returns every snapshot, newest first.
func (s *pgSnapshotStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.as_of, s.seed, s.generated_at,
		       (SELECT COUNT(*) FROM snapshot_orders o WHERE o.snapshot_id = s.id)
		FROM dataset_snapshots s
		ORDER BY s.generated_at DESC, s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var (
			info  SnapshotInfo
			asOf  time.Time
			seed  *int64
			count int64
		)
		if err := rows.Scan(&info.ID, &asOf, &seed, &info.GeneratedAt, &count); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		info.AsOf = core.DateOf(asOf)
		info.OrderCount = int(count)
		if seed != nil {
			v := uint64(*seed)
			info.Seed = &v
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes a snapshot and, by cascade, all of its rows.
func (s *pgSnapshotStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM dataset_snapshots WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

// ── encoding helpers ──────────────────────────────────────────────────────────

func date(d core.Date) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

func numeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("numeric %s: %w", d, err)
	}
	return n, nil
}

func numerics(ds ...decimal.Decimal) ([]pgtype.Numeric, error) {
	out := make([]pgtype.Numeric, len(ds))
	for i, d := range ds {
		n, err := numeric(d)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
