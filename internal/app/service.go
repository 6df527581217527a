package app

import (
	"context"
	"errors"
)

var (
	// ErrNoDataset is returned before the first Regenerate.
	ErrNoDataset = errors.New("no dataset generated yet")

	// ErrExportDisabled is returned by ExportSnapshot when no database is configured.
	ErrExportDisabled = errors.New("snapshot export is disabled: DATABASE_URL not set")
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// Regenerate builds a new synthetic dataset and makes it the current snapshot.
	// The previous snapshot is replaced wholesale.
	Regenerate(ctx context.Context) (*DatasetResult, error)

	// Dataset returns the current snapshot.
	Dataset(ctx context.Context) (*DatasetResult, error)

	// Metrics summarizes the current snapshot over window ("7d", "30d", "all";
	// empty selects 30d).
	Metrics(ctx context.Context, window string) (*MetricsResult, error)

	// ListProducts returns catalog rows with category name, stock and margin,
	// narrowed by filter.
	ListProducts(ctx context.Context, filter ProductFilter) (*ProductListResult, error)

	// ListCustomers returns customers ordered by lifetime value, highest first.
	ListCustomers(ctx context.Context) (*CustomerListResult, error)

	// ListTransactions returns orders and expenses, newest first, with display names joined.
	ListTransactions(ctx context.Context) (*TransactionListResult, error)

	// Ask answers a free-form question about the current snapshot. AI failures
	// never surface as errors: the reply is replaced by a friendly message and
	// flagged Degraded.
	Ask(ctx context.Context, req AskRequest) (*ChatResult, error)

	// Insights returns three insights for the current snapshot, cached per
	// snapshot. refresh bypasses the cache. When the model is unavailable the
	// canned fallback list is returned and flagged Fallback.
	Insights(ctx context.Context, refresh bool) (*InsightsResult, error)

	// ExportSnapshot writes the current snapshot to Postgres.
	ExportSnapshot(ctx context.Context) (*ExportResult, error)
}
