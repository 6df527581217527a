package app_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"business-dashboard/internal/ai"
	"business-dashboard/internal/app"
	"business-dashboard/internal/cache"
	"business-dashboard/internal/core"
	"business-dashboard/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = core.MustParseDate("2024-03-15")

type fakeAnalyst struct {
	mu           sync.Mutex
	askCalls     int
	insightCalls int
	lastPrompt   string
	lastContext  string

	reply       string
	askErr      error
	insights    []ai.Insight
	insightsErr error

	started chan struct{}
	release chan struct{}
}

func (f *fakeAnalyst) Ask(_ context.Context, prompt, contextJSON string) (string, error) {
	f.mu.Lock()
	f.askCalls++
	f.lastPrompt = prompt
	f.lastContext = contextJSON
	f.mu.Unlock()
	return f.reply, f.askErr
}

func (f *fakeAnalyst) Insights(ctx context.Context, contextJSON string) ([]ai.Insight, error) {
	f.mu.Lock()
	f.insightCalls++
	f.lastContext = contextJSON
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.insights, f.insightsErr
}

func (f *fakeAnalyst) calls() (ask, insights int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.askCalls, f.insightCalls
}

var liveInsights = []ai.Insight{
	{Title: "Naan margins", Type: ai.InsightOpportunity, Description: "Bread sells well.", ActionItem: "Bundle naan."},
	{Title: "Rice stock", Type: ai.InsightRisk, Description: "Basmati is low.", ActionItem: "Reorder rice."},
	{Title: "Utilities", Type: ai.InsightOptimization, Description: "Bills are high.", ActionItem: "Audit usage."},
}

func newService(t *testing.T, opts ...app.Option) app.ApplicationService {
	t.Helper()
	base := []app.Option{
		app.WithSeed(42),
		app.WithClock(func() core.Date { return testToday }, time.Now),
	}
	svc := app.NewAppService(append(base, opts...)...)
	_, err := svc.Regenerate(context.Background())
	require.NoError(t, err)
	return svc
}

// ── Dataset lifecycle ─────────────────────────────────────────────────────────

func TestAppService_NoDatasetBeforeRegenerate(t *testing.T) {
	svc := app.NewAppService()
	ctx := context.Background()

	_, err := svc.Dataset(ctx)
	assert.ErrorIs(t, err, app.ErrNoDataset)
	_, err = svc.Metrics(ctx, "7d")
	assert.ErrorIs(t, err, app.ErrNoDataset)
	_, err = svc.Insights(ctx, false)
	assert.ErrorIs(t, err, app.ErrNoDataset)
}

func TestAppService_RegenerateReplacesSnapshot(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, err := svc.Dataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), first.Seed)
	assert.Equal(t, testToday, first.Dataset.AsOf)

	second, err := svc.Regenerate(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.SnapshotID, second.SnapshotID)
	assert.NotEqual(t, first.Seed, second.Seed)

	current, err := svc.Dataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.SnapshotID, current.SnapshotID)
}

func TestAppService_SeedReproducesDataset(t *testing.T) {
	svc := newService(t)
	res, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	again := core.GenerateDataset(core.NewSeededRand(res.Seed), testToday)
	assert.Equal(t, again, res.Dataset)
}

// ── Views ─────────────────────────────────────────────────────────────────────

func TestAppService_Metrics(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	res, err := svc.Metrics(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, core.Window30d, res.Window)
	assert.Len(t, res.SalesSeries, 31)
	assert.Equal(t, res.MarginString(), res.MarginDisplay)
	assert.True(t, res.Profit.Equal(res.TotalSales.Sub(res.TotalExpenses)))

	week, err := svc.Metrics(ctx, "7d")
	require.NoError(t, err)
	assert.Len(t, week.SalesSeries, 8)
	assert.True(t, week.TotalSales.LessThanOrEqual(res.TotalSales))

	_, err = svc.Metrics(ctx, "quarter")
	assert.ErrorIs(t, err, core.ErrUnknownWindow)
}

func TestAppService_ListProducts(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	all, err := svc.ListProducts(ctx, app.ProductFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, all.Products)
	assert.NotEmpty(t, all.Categories)
	for _, row := range all.Products {
		assert.NotEmpty(t, row.CategoryName)
		assert.True(t, row.MarginPct.Equal(row.Margin()))
	}

	sameAsAll, err := svc.ListProducts(ctx, app.ProductFilter{CategoryID: "all"})
	require.NoError(t, err)
	assert.Len(t, sameAsAll.Products, len(all.Products))

	category := all.Products[0].CategoryID
	byCategory, err := svc.ListProducts(ctx, app.ProductFilter{CategoryID: category})
	require.NoError(t, err)
	require.NotEmpty(t, byCategory.Products)
	for _, row := range byCategory.Products {
		assert.Equal(t, category, row.CategoryID)
	}

	target := all.Products[len(all.Products)-1]
	byName, err := svc.ListProducts(ctx, app.ProductFilter{Query: "  " + strings.ToUpper(target.Name) + " "})
	require.NoError(t, err)
	assert.True(t, slices.ContainsFunc(byName.Products, func(r app.ProductRow) bool { return r.ID == target.ID }))

	bySKU, err := svc.ListProducts(ctx, app.ProductFilter{Query: strings.ToLower(target.SKU)})
	require.NoError(t, err)
	assert.True(t, slices.ContainsFunc(bySKU.Products, func(r app.ProductRow) bool { return r.ID == target.ID }))
	assert.Less(t, len(bySKU.Products), len(all.Products))

	none, err := svc.ListProducts(ctx, app.ProductFilter{Query: "no such dish"})
	require.NoError(t, err)
	assert.NotNil(t, none.Products)
	assert.Empty(t, none.Products)
}

func TestAppService_ListProductsRejectsLongQuery(t *testing.T) {
	svc := newService(t)
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}

	_, err := svc.ListProducts(context.Background(), app.ProductFilter{Query: string(long)})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}

func TestAppService_ListCustomersByLifetimeValue(t *testing.T) {
	svc := newService(t)

	res, err := svc.ListCustomers(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, res.Customers)
	for i := 1; i < len(res.Customers); i++ {
		assert.True(t, res.Customers[i-1].LifetimeValue.GreaterThanOrEqual(res.Customers[i].LifetimeValue))
	}

	ds, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Customers, len(ds.Dataset.Customers))
}

func TestAppService_ListTransactions(t *testing.T) {
	svc := newService(t)

	res, err := svc.ListTransactions(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, res.Orders)
	require.NotEmpty(t, res.Expenses)

	for i, o := range res.Orders {
		assert.NotEmpty(t, o.CustomerName)
		assert.Positive(t, o.ItemCount)
		if i > 0 {
			assert.False(t, res.Orders[i-1].OrderDate.Before(o.OrderDate), "orders newest first")
		}
	}
	for _, e := range res.Expenses {
		assert.NotEmpty(t, e.CategoryName)
	}
}

// ── Chat ──────────────────────────────────────────────────────────────────────

func TestAppService_Ask(t *testing.T) {
	fake := &fakeAnalyst{reply: "Sell more naan."}
	svc := newService(t, app.WithAnalyst(fake))

	res, err := svc.Ask(context.Background(), app.AskRequest{Prompt: "  How do I grow?  "})
	require.NoError(t, err)
	assert.Equal(t, "Sell more naan.", res.Reply)
	assert.False(t, res.Degraded)
	assert.Equal(t, "How do I grow?", fake.lastPrompt)
	assert.Contains(t, fake.lastContext, `"recent_orders"`)
}

func TestAppService_AskDegradesOnFailure(t *testing.T) {
	fake := &fakeAnalyst{askErr: errors.New("upstream 500")}
	svc := newService(t, app.WithAnalyst(fake))

	res, err := svc.Ask(context.Background(), app.AskRequest{Prompt: "Status?"})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, app.FriendlyErrorReply, res.Reply)
}

func TestAppService_AskWithoutAnalyst(t *testing.T) {
	svc := newService(t)

	res, err := svc.Ask(context.Background(), app.AskRequest{Prompt: "Status?"})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, app.FriendlyErrorReply, res.Reply)
}

func TestAppService_AskRejectsBlankPrompt(t *testing.T) {
	fake := &fakeAnalyst{reply: "unused"}
	svc := newService(t, app.WithAnalyst(fake))

	_, err := svc.Ask(context.Background(), app.AskRequest{Prompt: "   "})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
	ask, _ := fake.calls()
	assert.Zero(t, ask)
}

// ── Insights ──────────────────────────────────────────────────────────────────

func TestAppService_InsightsCachedPerSnapshot(t *testing.T) {
	fake := &fakeAnalyst{insights: liveInsights}
	svc := newService(t, app.WithAnalyst(fake))
	ctx := context.Background()

	first, err := svc.Insights(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, liveInsights, first.Insights)
	assert.False(t, first.Cached)
	assert.False(t, first.Fallback)

	second, err := svc.Insights(ctx, false)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, liveInsights, second.Insights)
	assert.Equal(t, first.SnapshotID, second.SnapshotID)
	assert.True(t, first.GeneratedAt.Equal(second.GeneratedAt))

	_, calls := fake.calls()
	assert.Equal(t, 1, calls)

	refreshed, err := svc.Insights(ctx, true)
	require.NoError(t, err)
	assert.False(t, refreshed.Cached)
	_, calls = fake.calls()
	assert.Equal(t, 2, calls)

	_, err = svc.Regenerate(ctx)
	require.NoError(t, err)
	fresh, err := svc.Insights(ctx, false)
	require.NoError(t, err)
	assert.False(t, fresh.Cached)
	assert.NotEqual(t, first.SnapshotID, fresh.SnapshotID)
	_, calls = fake.calls()
	assert.Equal(t, 3, calls)
}

func TestAppService_InsightsFallbackIsNotCached(t *testing.T) {
	fake := &fakeAnalyst{insightsErr: errors.New("rate limited")}
	svc := newService(t, app.WithAnalyst(fake))
	ctx := context.Background()

	res, err := svc.Insights(ctx, false)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, ai.FallbackInsights(), res.Insights)

	fake.mu.Lock()
	fake.insightsErr = nil
	fake.insights = liveInsights
	fake.mu.Unlock()

	res, err = svc.Insights(ctx, false)
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.False(t, res.Cached)
	assert.Equal(t, liveInsights, res.Insights)
}

func TestAppService_InsightsWithoutAnalyst(t *testing.T) {
	svc := newService(t)

	res, err := svc.Insights(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Len(t, res.Insights, 3)
}

func TestAppService_InsightsConcurrentCallsShareOneRequest(t *testing.T) {
	fake := &fakeAnalyst{insights: liveInsights, release: make(chan struct{})}
	svc := newService(t, app.WithAnalyst(fake))

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*app.InsightsResult, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.Insights(context.Background(), false)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(fake.release)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, liveInsights, results[i].Insights)
	}
	_, calls := fake.calls()
	assert.Equal(t, 1, calls)
}

func TestAppService_InsightsForReplacedSnapshotAreNotCached(t *testing.T) {
	mem := cache.NewMemoryStore()
	fake := &fakeAnalyst{
		insights: liveInsights,
		started:  make(chan struct{}, 1),
		release:  make(chan struct{}),
	}
	svc := newService(t, app.WithAnalyst(fake), app.WithCache(mem))
	ctx := context.Background()

	before, err := svc.Dataset(ctx)
	require.NoError(t, err)

	done := make(chan *app.InsightsResult, 1)
	go func() {
		res, err := svc.Insights(ctx, false)
		assert.NoError(t, err)
		done <- res
	}()

	<-fake.started
	_, err = svc.Regenerate(ctx)
	require.NoError(t, err)
	close(fake.release)

	stale := <-done
	require.NotNil(t, stale)
	assert.Equal(t, before.SnapshotID, stale.SnapshotID)
	assert.Equal(t, liveInsights, stale.Insights)
	assert.Zero(t, mem.Len())

	fake.started = nil
	current, err := svc.Insights(ctx, false)
	require.NoError(t, err)
	assert.NotEqual(t, before.SnapshotID, current.SnapshotID)
	assert.False(t, current.Cached)
	assert.Equal(t, 1, mem.Len())
}

func TestAppService_CallerCancelDoesNotAbortSharedInsights(t *testing.T) {
	fake := &fakeAnalyst{insights: liveInsights, release: make(chan struct{})}
	svc := newService(t, app.WithAnalyst(fake))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Insights(ctx, false)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	close(fake.release)
	require.NoError(t, <-done)

	res, err := svc.Insights(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.False(t, res.Fallback)
}

// ── Export ────────────────────────────────────────────────────────────────────

type fakeSnapshotStore struct {
	saved []uuid.UUID
	seeds []uint64
}

func (f *fakeSnapshotStore) Save(_ context.Context, id uuid.UUID, seed *uint64, _ *core.Dataset) error {
	f.saved = append(f.saved, id)
	if seed != nil {
		f.seeds = append(f.seeds, *seed)
	}
	return nil
}

func (f *fakeSnapshotStore) List(context.Context) ([]store.SnapshotInfo, error) { return nil, nil }

func (f *fakeSnapshotStore) Delete(context.Context, uuid.UUID) error { return nil }

func TestAppService_ExportSnapshot(t *testing.T) {
	ctx := context.Background()

	_, err := newService(t).ExportSnapshot(ctx)
	assert.ErrorIs(t, err, app.ErrExportDisabled)

	st := &fakeSnapshotStore{}
	svc := newService(t, app.WithSnapshotStore(st))
	res, err := svc.ExportSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{res.SnapshotID}, st.saved)
	assert.Equal(t, []uint64{42}, st.seeds)
	assert.Positive(t, res.Orders)
	assert.Positive(t, res.Expenses)
}
