package enrich

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"
	"strings"

	"order-enricher/internal/model"
)

// Strategy selects how the sample is picked among eligible candidates.
type Strategy string

const (
	// StrategyRanked picks the first eligible candidate in rank order.
	// Deterministic; the default.
	StrategyRanked Strategy = "ranked"
	// StrategyRandom picks uniformly among all eligible candidates
	// within the rank cap.
	StrategyRandom Strategy = "random"
)

// maxSampleCandidates caps how many ranked candidates are considered
// before giving up on a recommendation.
const maxSampleCandidates = 30

// excludedIngredient blocks any candidate whose metadata mentions it.
// Matcha samples are never shipped unsolicited.
const excludedIngredient = "matcha"

// Recommender selects at most one sample product for an order based on
// the customer's purchase affinity.
type Recommender struct {
	store   StoreClient
	logger  *slog.Logger
	randInt func(n int) int
}

// NewRecommender creates a Recommender backed by the given store.
func NewRecommender(store StoreClient, logger *slog.Logger) *Recommender {
	return &Recommender{store: store, logger: logger, randInt: rand.Intn}
}

// SetRandom overrides the random source used by StrategyRandom.
// Tests inject a deterministic function.
func (r *Recommender) SetRandom(f func(n int) int) {
	r.randInt = f
}

// Recommend returns the title of the recommended sample, or an empty
// string when no eligible candidate exists - which is not an error.
// A transport failure aborts only the recommendation; the caller logs
// it and composes the note without a sample line.
func (r *Recommender) Recommend(ctx context.Context, order *model.Order, history History, strategy Strategy) (string, error) {
	affinities := r.collectionAffinities(ctx, order)
	favorite, ok := favoriteCollection(affinities)
	if !ok {
		return "", nil
	}

	collects, err := r.store.ListCollects(ctx, favorite.ID)
	if err != nil {
		return "", err
	}

	candidates := rankCandidates(collects, history)
	return r.pick(ctx, candidates, history, strategy)
}

// collectionAffinity pairs a collection with the quantity-weighted
// presence of the current order's items in it.
type collectionAffinity struct {
	ID     int64
	Title  string
	Weight int
}

// collectionAffinities accumulates, per collection, the summed
// quantities of current-order items belonging to it. Affinities keep
// first-seen order so ranking ties break stably. A failed lookup for
// one item is logged and skipped; the remaining items still count.
func (r *Recommender) collectionAffinities(ctx context.Context, order *model.Order) []collectionAffinity {
	index := make(map[int64]int)
	var affinities []collectionAffinity

	for _, item := range order.LineItems {
		collections, err := r.store.GetProductCollections(ctx, item.ProductID)
		if err != nil {
			r.logger.Warn("fetching product collections failed",
				slog.Int64("product_id", item.ProductID),
				slog.String("error", err.Error()),
			)
			continue
		}
		for _, coll := range collections {
			i, seen := index[coll.ID]
			if !seen {
				i = len(affinities)
				index[coll.ID] = i
				affinities = append(affinities, collectionAffinity{ID: coll.ID, Title: coll.Title})
			}
			affinities[i].Weight += item.Qty()
		}
	}
	return affinities
}

// favoriteCollection returns the highest-weighted collection.
// Stable sort: ties go to the collection seen first.
func favoriteCollection(affinities []collectionAffinity) (collectionAffinity, bool) {
	if len(affinities) == 0 {
		return collectionAffinity{}, false
	}
	ranked := make([]collectionAffinity, len(affinities))
	copy(ranked, affinities)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Weight > ranked[j].Weight
	})
	return ranked[0], true
}

// rankCandidates deduplicates the collection's products and ranks them
// by the customer's historical purchase count, descending, stable.
func rankCandidates(collects []model.Collect, history History) []int64 {
	seen := make(map[int64]bool)
	var candidates []int64
	for _, c := range collects {
		if c.ProductID == 0 || seen[c.ProductID] {
			continue
		}
		seen[c.ProductID] = true
		candidates = append(candidates, c.ProductID)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return history.PurchaseCounts[candidates[i]] > history.PurchaseCounts[candidates[j]]
	})
	return candidates
}

// pick walks the ranked candidates, applies the exclusion filters, and
// selects per strategy. Rank order decides, never completion order.
func (r *Recommender) pick(ctx context.Context, candidates []int64, history History, strategy Strategy) (string, error) {
	if len(candidates) > maxSampleCandidates {
		candidates = candidates[:maxSampleCandidates]
	}

	var survivors []string
	for _, id := range candidates {
		if history.PastProductIDs[id] {
			continue
		}

		metafields, err := r.store.GetProductMetafields(ctx, id)
		if err != nil {
			return "", err
		}
		if mentionsIngredient(metafields, excludedIngredient) {
			continue
		}

		raw, _ := metafieldLookup(metafields, subheadingNamespace, subheadingKey)
		title := StripTags(raw)
		if title == "" {
			// No subheading to present; fall back to the product title.
			product, err := r.store.GetProduct(ctx, id)
			if err != nil {
				r.logger.Warn("fetching candidate product failed",
					slog.Int64("product_id", id),
					slog.String("error", err.Error()),
				)
				continue
			}
			title = StripTags(product.Title)
			if title == "" {
				continue
			}
		}
		if history.PastTitleKeys[TitleKey(title)] {
			continue
		}

		if strategy != StrategyRandom {
			return title, nil
		}
		survivors = append(survivors, title)
	}

	if len(survivors) == 0 {
		return "", nil
	}
	return survivors[r.randInt(len(survivors))], nil
}

// mentionsIngredient reports whether any metadata value contains the
// ingredient, case-insensitive.
func mentionsIngredient(metafields []model.Metafield, ingredient string) bool {
	for _, m := range metafields {
		if strings.Contains(strings.ToLower(m.Value), ingredient) {
			return true
		}
	}
	return false
}
