package enrich

import (
	"context"

	"order-enricher/internal/model"
)

// Mock implements StoreClient for testing.
// Each method can be configured via function fields; unset methods
// return empty results so tests only wire what they exercise.
type Mock struct {
	ListOrdersFunc            func(ctx context.Context, customerID int64) ([]model.Order, error)
	GetProductMetafieldsFunc  func(ctx context.Context, productID int64) ([]model.Metafield, error)
	GetProductCollectionsFunc func(ctx context.Context, productID int64) ([]model.Collection, error)
	ListCollectsFunc          func(ctx context.Context, collectionID int64) ([]model.Collect, error)
	GetProductFunc            func(ctx context.Context, productID int64) (*model.Product, error)
	UpdateOrderNoteFunc       func(ctx context.Context, orderID int64, note string) error
}

func (m *Mock) ListOrders(ctx context.Context, customerID int64) ([]model.Order, error) {
	if m.ListOrdersFunc != nil {
		return m.ListOrdersFunc(ctx, customerID)
	}
	return nil, nil
}

func (m *Mock) GetProductMetafields(ctx context.Context, productID int64) ([]model.Metafield, error) {
	if m.GetProductMetafieldsFunc != nil {
		return m.GetProductMetafieldsFunc(ctx, productID)
	}
	return nil, nil
}

func (m *Mock) GetProductCollections(ctx context.Context, productID int64) ([]model.Collection, error) {
	if m.GetProductCollectionsFunc != nil {
		return m.GetProductCollectionsFunc(ctx, productID)
	}
	return nil, nil
}

func (m *Mock) ListCollects(ctx context.Context, collectionID int64) ([]model.Collect, error) {
	if m.ListCollectsFunc != nil {
		return m.ListCollectsFunc(ctx, collectionID)
	}
	return nil, nil
}

func (m *Mock) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, productID)
	}
	return nil, model.NewNotFoundError("product")
}

func (m *Mock) UpdateOrderNote(ctx context.Context, orderID int64, note string) error {
	if m.UpdateOrderNoteFunc != nil {
		return m.UpdateOrderNoteFunc(ctx, orderID, note)
	}
	return nil
}

// Verify Mock implements StoreClient at compile time.
var _ StoreClient = (*Mock)(nil)
