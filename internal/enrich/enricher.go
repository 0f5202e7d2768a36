package enrich

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"order-enricher/internal/metrics"
	"order-enricher/internal/model"
)

// metadataFetchLimit bounds concurrent per-item metadata lookups.
const metadataFetchLimit = 4

// Options configure an Enricher.
type Options struct {
	// Strategy is the default sample selection strategy.
	Strategy Strategy
	// Timeout bounds every individual store call. Expiry degrades the
	// affected stage exactly like a transport failure. Zero disables.
	Timeout time.Duration
}

// RequestOptions override enrichment behavior for a single request,
// typically from the Note-Options header.
type RequestOptions struct {
	DisableSample bool
	Strategy      Strategy // empty = configured default
}

// Degradation records an enrichment stage that fell back to degraded
// output instead of failing the request.
type Degradation struct {
	Stage  string
	Reason string
}

// Enrichment is the outcome of processing one order. Degradations let
// callers and tests inspect the fallback path without reading logs.
type Enrichment struct {
	Note         string
	FirstOrder   bool
	Sample       string // empty when no recommendation was produced
	Degradations []Degradation
	Written      bool
}

// Enricher runs the full pipeline for incoming orders: aggregate
// history, recommend a sample, fetch item metadata, compose the note,
// and write it back. All state is per-request; an Enricher is safe for
// concurrent use.
type Enricher struct {
	store       StoreClient
	recommender *Recommender
	logger      *slog.Logger
	metrics     *metrics.Registry
	strategy    Strategy
}

// New creates an Enricher. The metrics registry may be nil.
func New(store StoreClient, logger *slog.Logger, m *metrics.Registry, opts Options) *Enricher {
	if opts.Timeout > 0 {
		store = timeoutStore{inner: store, timeout: opts.Timeout}
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyRanked
	}
	return &Enricher{
		store:       store,
		recommender: NewRecommender(store, logger),
		logger:      logger,
		metrics:     m,
		strategy:    strategy,
	}
}

// Recommender returns the sample recommender, letting callers adjust
// its random source.
func (e *Enricher) Recommender() *Recommender {
	return e.recommender
}

// Preview runs every stage except the final write and returns the
// composed note. Enrichment failures degrade the output; they never
// surface as errors.
func (e *Enricher) Preview(ctx context.Context, order *model.Order, req RequestOptions) *Enrichment {
	result := &Enrichment{}

	history, err := AggregateHistory(ctx, e.store, order.CustomerID())
	if err != nil {
		e.degrade(result, metrics.StageHistory, err)
	}
	result.FirstOrder = history.FirstOrder()

	if !req.DisableSample {
		strategy := req.Strategy
		if strategy == "" {
			strategy = e.strategy
		}
		sample, err := e.recommender.Recommend(ctx, order, history, strategy)
		if err != nil {
			e.degrade(result, metrics.StageRecommend, err)
		}
		result.Sample = sample
	}

	itemLines := e.renderItems(ctx, order, result)

	result.Note = ComposeNote(order, result.FirstOrder, itemLines, result.Sample)
	return result
}

// Enrich runs Preview and writes the composed note back to the order.
// Unlike the enrichment stages, a write failure is a real error and is
// returned to the caller alongside the partial result.
func (e *Enricher) Enrich(ctx context.Context, order *model.Order, req RequestOptions) (*Enrichment, error) {
	result := e.Preview(ctx, order, req)

	if err := e.store.UpdateOrderNote(ctx, order.ID, result.Note); err != nil {
		if e.metrics != nil {
			e.metrics.NoteWriteFailures.Inc()
		}
		return result, err
	}
	result.Written = true
	if e.metrics != nil {
		e.metrics.NoteWrites.Inc()
	}
	return result, nil
}

// RecommendSample aggregates history and runs only the recommendation
// stage. Used by the MCP tool surface; unlike Preview, failures are
// returned so the caller can report them.
func (e *Enricher) RecommendSample(ctx context.Context, order *model.Order, strategy Strategy) (string, error) {
	history, err := AggregateHistory(ctx, e.store, order.CustomerID())
	if err != nil {
		return "", err
	}
	if strategy == "" {
		strategy = e.strategy
	}
	return e.recommender.Recommend(ctx, order, history, strategy)
}

// renderItems fetches metadata for every line item concurrently and
// renders one line per item. Lines keep the original line-item order
// regardless of fetch completion order: each goroutine writes to its
// own index.
func (e *Enricher) renderItems(ctx context.Context, order *model.Order, result *Enrichment) []string {
	metas := make([]ItemMetadata, len(order.LineItems))
	errs := make([]error, len(order.LineItems))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(metadataFetchLimit)
	for i, item := range order.LineItems {
		g.Go(func() error {
			metas[i], errs[i] = FetchItemMetadata(gctx, e.store, item.ProductID)
			return nil
		})
	}
	g.Wait()

	lines := make([]string, len(order.LineItems))
	for i, item := range order.LineItems {
		if errs[i] != nil {
			e.degrade(result, metrics.StageMetadata, errs[i])
		}
		lines[i] = ItemLine(item.Qty(), metas[i])
	}
	return lines
}

// degrade records a stage falling back to degraded output.
func (e *Enricher) degrade(result *Enrichment, stage string, err error) {
	result.Degradations = append(result.Degradations, Degradation{Stage: stage, Reason: err.Error()})
	e.logger.Warn("enrichment degraded",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
	if e.metrics != nil {
		e.metrics.Degraded.WithLabelValues(stage).Inc()
	}
}

// timeoutStore bounds every store call with a fixed timeout so one
// stalled upstream call cannot hold the whole request.
type timeoutStore struct {
	inner   StoreClient
	timeout time.Duration
}

func (t timeoutStore) ListOrders(ctx context.Context, customerID int64) ([]model.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.ListOrders(ctx, customerID)
}

func (t timeoutStore) GetProductMetafields(ctx context.Context, productID int64) ([]model.Metafield, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.GetProductMetafields(ctx, productID)
}

func (t timeoutStore) GetProductCollections(ctx context.Context, productID int64) ([]model.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.GetProductCollections(ctx, productID)
}

func (t timeoutStore) ListCollects(ctx context.Context, collectionID int64) ([]model.Collect, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.ListCollects(ctx, collectionID)
}

func (t timeoutStore) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.GetProduct(ctx, productID)
}

func (t timeoutStore) UpdateOrderNote(ctx context.Context, orderID int64, note string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.UpdateOrderNote(ctx, orderID, note)
}

var _ StoreClient = timeoutStore{}
