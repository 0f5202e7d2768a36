package enrich

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"order-enricher/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recommendStore builds the fixture: two items whose quantities favor
// the "Blacks" collection, which contains products 10, 20 and 30.
func recommendStore(t *testing.T) *Mock {
	t.Helper()
	return &Mock{
		GetProductCollectionsFunc: func(ctx context.Context, productID int64) ([]model.Collection, error) {
			switch productID {
			case 1:
				return []model.Collection{{ID: 100, Title: "Greens"}}, nil
			case 2:
				return []model.Collection{{ID: 200, Title: "Blacks"}}, nil
			}
			return nil, nil
		},
		ListCollectsFunc: func(ctx context.Context, collectionID int64) ([]model.Collect, error) {
			if collectionID != 200 {
				t.Errorf("ListCollects collectionID = %d, want favorite 200", collectionID)
			}
			return []model.Collect{
				{ID: 1, CollectionID: 200, ProductID: 10},
				{ID: 2, CollectionID: 200, ProductID: 20},
				{ID: 3, CollectionID: 200, ProductID: 30},
			}, nil
		},
		GetProductMetafieldsFunc: func(ctx context.Context, productID int64) ([]model.Metafield, error) {
			switch productID {
			case 10:
				return []model.Metafield{{Namespace: "subheading", Key: "swd", Value: "<p>Jasmine</p>"}}, nil
			case 20:
				return []model.Metafield{{Namespace: "subheading", Key: "swd", Value: "Earl Grey"}}, nil
			case 30:
				return []model.Metafield{{Namespace: "subheading", Key: "swd", Value: "Matcha Blend"}}, nil
			}
			return nil, nil
		},
	}
}

func recommendOrder() *model.Order {
	return &model.Order{
		LineItems: []model.LineItem{
			{ProductID: 1, Quantity: 1},
			{ProductID: 2, Quantity: 3},
		},
	}
}

func TestRecommendRanked(t *testing.T) {
	store := recommendStore(t)
	r := NewRecommender(store, testLogger())

	// Product 30 ranks first on purchase count but mentions the excluded
	// ingredient; 10 is next in collect order.
	history := emptyHistory()
	history.PurchaseCounts[30] = 5

	got, err := r.Recommend(context.Background(), recommendOrder(), history, StrategyRanked)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got != "Jasmine" {
		t.Errorf("Recommend() = %q, want %q", got, "Jasmine")
	}
}

func TestRecommendSkipsPurchasedProducts(t *testing.T) {
	store := recommendStore(t)
	r := NewRecommender(store, testLogger())

	history := emptyHistory()
	history.PastProductIDs[10] = true

	got, err := r.Recommend(context.Background(), recommendOrder(), history, StrategyRanked)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got != "Earl Grey" {
		t.Errorf("Recommend() = %q, want %q", got, "Earl Grey")
	}
}

func TestRecommendSkipsPurchasedTitles(t *testing.T) {
	store := recommendStore(t)
	r := NewRecommender(store, testLogger())

	// Same product family bought before under a different variant title.
	history := emptyHistory()
	history.PastTitleKeys["jasmine"] = true

	got, err := r.Recommend(context.Background(), recommendOrder(), history, StrategyRanked)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got != "Earl Grey" {
		t.Errorf("Recommend() = %q, want %q", got, "Earl Grey")
	}
}

func TestRecommendExhausted(t *testing.T) {
	store := recommendStore(t)
	r := NewRecommender(store, testLogger())

	history := emptyHistory()
	history.PastProductIDs[10] = true
	history.PastProductIDs[20] = true
	// 30 is matcha, so nothing is left.

	got, err := r.Recommend(context.Background(), recommendOrder(), history, StrategyRanked)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got != "" {
		t.Errorf("Recommend() = %q, want empty when every candidate is excluded", got)
	}
}

func TestRecommendRandomStrategy(t *testing.T) {
	store := recommendStore(t)
	r := NewRecommender(store, testLogger())
	r.SetRandom(func(n int) int { return n - 1 })

	// Survivors in rank order are Jasmine and Earl Grey; the injected
	// random source picks the last one.
	got, err := r.Recommend(context.Background(), recommendOrder(), emptyHistory(), StrategyRandom)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got != "Earl Grey" {
		t.Errorf("Recommend() = %q, want %q", got, "Earl Grey")
	}
}

func TestRecommendNoCollections(t *testing.T) {
	store := &Mock{}
	r := NewRecommender(store, testLogger())

	got, err := r.Recommend(context.Background(), recommendOrder(), emptyHistory(), StrategyRanked)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got != "" {
		t.Errorf("Recommend() = %q, want empty without collections", got)
	}
}

func TestRecommendCollectsFailure(t *testing.T) {
	upstream := errors.New("rate limited")
	store := recommendStore(t)
	store.ListCollectsFunc = func(ctx context.Context, collectionID int64) ([]model.Collect, error) {
		return nil, upstream
	}
	r := NewRecommender(store, testLogger())

	_, err := r.Recommend(context.Background(), recommendOrder(), emptyHistory(), StrategyRanked)
	if !errors.Is(err, upstream) {
		t.Errorf("error = %v, want %v", err, upstream)
	}
}

func TestRecommendPartialCollectionFailure(t *testing.T) {
	store := recommendStore(t)
	inner := store.GetProductCollectionsFunc
	store.GetProductCollectionsFunc = func(ctx context.Context, productID int64) ([]model.Collection, error) {
		if productID == 1 {
			return nil, errors.New("timeout")
		}
		return inner(ctx, productID)
	}
	r := NewRecommender(store, testLogger())

	// The failed item is skipped; the other still drives the favorite.
	got, err := r.Recommend(context.Background(), recommendOrder(), emptyHistory(), StrategyRanked)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got != "Jasmine" {
		t.Errorf("Recommend() = %q, want %q", got, "Jasmine")
	}
}

func TestRecommendProductTitleFallback(t *testing.T) {
	store := recommendStore(t)
	store.GetProductMetafieldsFunc = func(ctx context.Context, productID int64) ([]model.Metafield, error) {
		return nil, nil // no subheading anywhere
	}
	store.GetProductFunc = func(ctx context.Context, productID int64) (*model.Product, error) {
		if productID == 10 {
			return &model.Product{ID: 10, Title: "Jasmine Pearl"}, nil
		}
		return nil, model.NewNotFoundError("product")
	}
	r := NewRecommender(store, testLogger())

	got, err := r.Recommend(context.Background(), recommendOrder(), emptyHistory(), StrategyRanked)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got != "Jasmine Pearl" {
		t.Errorf("Recommend() = %q, want %q", got, "Jasmine Pearl")
	}
}

func TestRecommendCandidateCap(t *testing.T) {
	store := recommendStore(t)
	store.ListCollectsFunc = func(ctx context.Context, collectionID int64) ([]model.Collect, error) {
		var collects []model.Collect
		for i := int64(0); i < 40; i++ {
			collects = append(collects, model.Collect{ID: i, CollectionID: 200, ProductID: 1000 + i})
		}
		return collects, nil
	}
	var fetched int
	store.GetProductMetafieldsFunc = func(ctx context.Context, productID int64) ([]model.Metafield, error) {
		fetched++
		return []model.Metafield{{Namespace: "subheading", Key: "swd", Value: "Matcha"}}, nil
	}
	r := NewRecommender(store, testLogger())

	got, err := r.Recommend(context.Background(), recommendOrder(), emptyHistory(), StrategyRanked)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got != "" {
		t.Errorf("Recommend() = %q, want empty", got)
	}
	if fetched != 30 {
		t.Errorf("metafield fetches = %d, want capped at 30", fetched)
	}
}
