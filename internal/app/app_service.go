package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"business-dashboard/internal/ai"
	"business-dashboard/internal/cache"
	"business-dashboard/internal/core"
	"business-dashboard/internal/logger"
	"business-dashboard/internal/store"
	"business-dashboard/internal/telemetry"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// FriendlyErrorReply replaces the chat answer whenever the analyst fails.
const FriendlyErrorReply = "I'm having trouble connecting to your business database right now. Please check your connection or API key."

const (
	defaultInsightsTTL = 10 * time.Minute
	defaultAITimeout   = 60 * time.Second
)

var validate = validator.New()

// snapshot is one generated dataset plus its identity. It is never mutated
// after being published.
type snapshot struct {
	meta SnapshotMeta
	data *core.Dataset
}

type appService struct {
	analyst  ai.Analyst
	cache    cache.Store
	store    store.SnapshotStore
	metrics  *telemetry.Metrics
	ttl      time.Duration
	timeout  time.Duration
	today    func() core.Date
	now      func() time.Time
	newID    func() uuid.UUID
	flight   singleflight.Group
	seedMu   sync.Mutex
	seedRand *rand.Rand
	nextSeed *uint64

	mu      sync.RWMutex
	current *snapshot
}

// Option configures NewAppService.
type Option func(*appService)

// WithAnalyst sets the AI backend. Without one, Ask and Insights always degrade.
func WithAnalyst(a ai.Analyst) Option { return func(s *appService) { s.analyst = a } }

// WithCache sets the insights cache. Defaults to an in-memory store.
func WithCache(c cache.Store) Option { return func(s *appService) { s.cache = c } }

// WithSnapshotStore enables ExportSnapshot.
func WithSnapshotStore(st store.SnapshotStore) Option { return func(s *appService) { s.store = st } }

// WithMetrics records generation, AI and cache activity.
func WithMetrics(m *telemetry.Metrics) Option { return func(s *appService) { s.metrics = m } }

// WithInsightsTTL sets how long cached insights stay valid.
func WithInsightsTTL(d time.Duration) Option { return func(s *appService) { s.ttl = d } }

// WithAITimeout bounds each upstream AI call.
func WithAITimeout(d time.Duration) Option { return func(s *appService) { s.timeout = d } }

// WithSeed makes the first Regenerate use seed and derives later seeds from
// it, so a whole session is reproducible.
func WithSeed(seed uint64) Option {
	return func(s *appService) {
		s.nextSeed = &seed
		s.seedRand = core.NewSeededRand(seed)
	}
}

// WithClock pins the calendar day used for generation and windows, and the
// wall clock used for timestamps.
func WithClock(today func() core.Date, now func() time.Time) Option {
	return func(s *appService) {
		s.today = today
		s.now = now
	}
}

// NewAppService constructs an appService that satisfies ApplicationService.
// Call Regenerate once before serving requests.
func NewAppService(opts ...Option) ApplicationService {
	s := &appService{
		cache:    cache.NewMemoryStore(),
		ttl:      defaultInsightsTTL,
		timeout:  defaultAITimeout,
		today:    core.Today,
		now:      time.Now,
		newID:    uuid.New,
		seedRand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ── Dataset lifecycle ─────────────────────────────────────────────────────────

// Regenerate builds a new dataset and swaps it in atomically.
func (s *appService) Regenerate(ctx context.Context) (*DatasetResult, error) {
	seed := s.drawSeed()
	ds := core.GenerateDataset(core.NewSeededRand(seed), s.today())

	snap := &snapshot{
		meta: SnapshotMeta{
			SnapshotID:  s.newID(),
			GeneratedAt: s.now().UTC(),
			Seed:        seed,
		},
		data: ds,
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	lowStock := len(core.LowStockAlerts(ds))
	s.metrics.DatasetGenerated(lowStock)
	logger.FromContext(ctx).Info("dataset generated",
		zap.String("snapshot_id", snap.meta.SnapshotID.String()),
		zap.Uint64("seed", seed),
		zap.String("as_of", ds.AsOf.String()),
		zap.Int("orders", len(ds.Orders)),
		zap.Int("expenses", len(ds.Expenses)),
		zap.Int("low_stock", lowStock),
	)

	return &DatasetResult{SnapshotMeta: snap.meta, Dataset: ds}, nil
}

// Dataset returns the current snapshot.
func (s *appService) Dataset(ctx context.Context) (*DatasetResult, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return &DatasetResult{SnapshotMeta: snap.meta, Dataset: snap.data}, nil
}

// ── Views ─────────────────────────────────────────────────────────────────────

// Metrics summarizes the current snapshot over the requested window.
func (s *appService) Metrics(ctx context.Context, window string) (*MetricsResult, error) {
	w, err := core.ParseWindow(window)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	m := core.Summarize(snap.data, w, s.today())
	return &MetricsResult{SnapshotMeta: snap.meta, Metrics: m, MarginDisplay: m.MarginString()}, nil
}

// ListProducts returns catalog rows narrowed by filter, in catalog order.
func (s *appService) ListProducts(ctx context.Context, filter ProductFilter) (*ProductListResult, error) {
	if err := validate.Struct(filter); err != nil {
		return nil, fmt.Errorf("invalid product filter: %w", err)
	}
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	ds := snap.data

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	category := strings.TrimSpace(filter.CategoryID)
	if category == "all" {
		category = ""
	}

	low := make(map[string]bool)
	for _, inv := range ds.InventoryItems {
		if inv.NeedsReorder() {
			low[inv.ProductID] = true
		}
	}

	rows := []ProductRow{}
	for _, p := range ds.Products {
		if category != "" && p.CategoryID != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.SKU), query) {
			continue
		}
		rows = append(rows, ProductRow{
			Product:      p,
			CategoryName: ds.CategoryName(p.CategoryID),
			Stock:        ds.StockOnHand(p.ID),
			MarginPct:    p.Margin(),
			LowStock:     low[p.ID],
		})
	}

	return &ProductListResult{
		SnapshotMeta: snap.meta,
		Products:     rows,
		Categories:   slices.Clone(ds.ProductCategories),
	}, nil
}

// ListCustomers returns customers by lifetime value, highest first. Ties keep
// catalog order.
func (s *appService) ListCustomers(ctx context.Context) (*CustomerListResult, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	customers := slices.Clone(snap.data.Customers)
	slices.SortStableFunc(customers, func(a, b core.Customer) int {
		return b.LifetimeValue.Cmp(a.LifetimeValue)
	})
	return &CustomerListResult{SnapshotMeta: snap.meta, Customers: customers}, nil
}

// ListTransactions returns orders and expenses with display names joined.
func (s *appService) ListTransactions(ctx context.Context) (*TransactionListResult, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	ds := snap.data

	itemCounts := make(map[string]int, len(ds.Orders))
	for _, it := range ds.OrderItems {
		itemCounts[it.OrderID]++
	}

	orders := make([]OrderRow, 0, len(ds.Orders))
	for _, o := range ds.Orders {
		orders = append(orders, OrderRow{
			Order:        o,
			CustomerName: ds.CustomerName(o.CustomerID),
			ItemCount:    itemCounts[o.ID],
		})
	}
	expenses := make([]ExpenseRow, 0, len(ds.Expenses))
	for _, e := range ds.Expenses {
		expenses = append(expenses, ExpenseRow{
			Expense:      e,
			CategoryName: ds.ExpenseCategoryName(e.CategoryID),
		})
	}
	return &TransactionListResult{SnapshotMeta: snap.meta, Orders: orders, Expenses: expenses}, nil
}

// ── AI ────────────────────────────────────────────────────────────────────────

// Ask forwards the prompt with the current business context to the analyst.
func (s *appService) Ask(ctx context.Context, req AskRequest) (*ChatResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).With(zap.String("snapshot_id", snap.meta.SnapshotID.String()))

	if s.analyst == nil {
		s.metrics.ObserveAI("chat", telemetry.OutcomeFallback, 0)
		log.Warn("chat degraded: no analyst configured")
		return &ChatResult{Reply: FriendlyErrorReply, Degraded: true}, nil
	}

	contextJSON, err := ai.BuildContext(snap.data)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()
	reply, err := s.analyst.Ask(callCtx, req.Prompt, contextJSON)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.ObserveAI("chat", telemetry.OutcomeError, elapsed)
		log.Error("chat request failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return &ChatResult{Reply: FriendlyErrorReply, Degraded: true}, nil
	}

	s.metrics.ObserveAI("chat", telemetry.OutcomeOK, elapsed)
	log.Info("chat answered", zap.Duration("elapsed", elapsed), zap.Int("reply_len", len(reply)))
	return &ChatResult{Reply: reply}, nil
}

// cachedInsights is the cache payload for one snapshot.
type cachedInsights struct {
	Insights    []ai.Insight `json:"insights"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Insights serves insights for the current snapshot. Concurrent requests for
// the same snapshot share one upstream call. A result computed for a snapshot
// that was replaced mid-flight is returned to its callers but not cached.
func (s *appService) Insights(ctx context.Context, refresh bool) (*InsightsResult, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	key := insightsKey(snap.meta.SnapshotID)
	log := logger.FromContext(ctx).With(zap.String("snapshot_id", snap.meta.SnapshotID.String()))

	if !refresh {
		if res, ok := s.cachedInsights(ctx, key, snap, log); ok {
			return res, nil
		}
	}

	v, err, shared := s.flight.Do(key, func() (any, error) {
		return s.computeInsights(context.WithoutCancel(ctx), key, snap, log), nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug("insights request joined an in-flight call")
	}
	res := *v.(*InsightsResult)
	res.Insights = slices.Clone(res.Insights)
	return &res, nil
}

func (s *appService) cachedInsights(ctx context.Context, key string, snap *snapshot, log *zap.Logger) (*InsightsResult, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn("insights cache read failed, continuing without cache", zap.Error(err))
		}
		s.metrics.InsightsCacheHit(false)
		return nil, false
	}
	var c cachedInsights
	if err := json.Unmarshal(data, &c); err != nil {
		log.Warn("failed to unmarshal cached insights, continuing without cache", zap.Error(err))
		s.metrics.InsightsCacheHit(false)
		return nil, false
	}
	s.metrics.InsightsCacheHit(true)
	return &InsightsResult{
		SnapshotID:  snap.meta.SnapshotID,
		Insights:    c.Insights,
		Cached:      true,
		GeneratedAt: c.GeneratedAt,
	}, true
}

func (s *appService) computeInsights(ctx context.Context, key string, snap *snapshot, log *zap.Logger) *InsightsResult {
	res := &InsightsResult{SnapshotID: snap.meta.SnapshotID, GeneratedAt: s.now().UTC()}

	fallback := func(outcome string, elapsed time.Duration) *InsightsResult {
		s.metrics.ObserveAI("insights", outcome, elapsed)
		res.Insights = ai.FallbackInsights()
		res.Fallback = true
		return res
	}

	if s.analyst == nil {
		log.Warn("insights degraded: no analyst configured")
		return fallback(telemetry.OutcomeFallback, 0)
	}

	contextJSON, err := ai.BuildContext(snap.data)
	if err != nil {
		log.Error("failed to build insights context", zap.Error(err))
		return fallback(telemetry.OutcomeError, 0)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()
	insights, err := s.analyst.Insights(callCtx, contextJSON)
	elapsed := time.Since(start)
	if err != nil {
		log.Error("insights request failed, serving fallback", zap.Error(err), zap.Duration("elapsed", elapsed))
		return fallback(telemetry.OutcomeError, elapsed)
	}

	s.metrics.ObserveAI("insights", telemetry.OutcomeOK, elapsed)
	res.Insights = insights

	if !s.isCurrent(snap) {
		log.Info("dataset replaced while insights were computed; result not cached")
		return res
	}
	payload, err := json.Marshal(cachedInsights{Insights: insights, GeneratedAt: res.GeneratedAt})
	if err != nil {
		log.Warn("failed to marshal insights for cache", zap.Error(err))
		return res
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		log.Warn("failed to cache insights", zap.Error(err))
	}
	return res
}

// ── Export ────────────────────────────────────────────────────────────────────

// ExportSnapshot saves the current snapshot through the configured store.
func (s *appService) ExportSnapshot(ctx context.Context) (*ExportResult, error) {
	if s.store == nil {
		return nil, ErrExportDisabled
	}
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	seed := snap.meta.Seed
	if err := s.store.Save(ctx, snap.meta.SnapshotID, &seed, snap.data); err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	logger.FromContext(ctx).Info("snapshot exported", zap.String("snapshot_id", snap.meta.SnapshotID.String()))
	return &ExportResult{
		SnapshotMeta: snap.meta,
		Orders:       len(snap.data.Orders),
		Expenses:     len(snap.data.Expenses),
	}, nil
}

// ── private helpers ───────────────────────────────────────────────────────────

func (s *appService) snapshot() (*snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoDataset
	}
	return s.current, nil
}

func (s *appService) isCurrent(snap *snapshot) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current == snap
}

// drawSeed returns the configured seed on first use, then seeds drawn from
// the session's seed source.
func (s *appService) drawSeed() uint64 {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	if s.nextSeed != nil {
		seed := *s.nextSeed
		s.nextSeed = nil
		return seed
	}
	return s.seedRand.Uint64()
}

func insightsKey(id uuid.UUID) string {
	return "insights:" + id.String()
}
