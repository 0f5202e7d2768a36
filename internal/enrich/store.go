// Package enrich implements the order-note enrichment pipeline: purchase
// history aggregation, sample recommendation, per-item metadata lookup,
// and note composition. Stages are pure where possible and consume the
// store through a narrow interface so each one is testable in isolation.
package enrich

import (
	"context"

	"order-enricher/internal/model"
)

// StoreClient abstracts the commerce platform operations the pipeline
// needs. The Shopify Admin client implements it; tests use Mock.
type StoreClient interface {
	// ListOrders returns every order of the customer regardless of status,
	// including the order that triggered the current webhook.
	ListOrders(ctx context.Context, customerID int64) ([]model.Order, error)

	// GetProductMetafields returns all metadata entries of a product.
	GetProductMetafields(ctx context.Context, productID int64) ([]model.Metafield, error)

	// GetProductCollections returns the collections a product belongs to.
	GetProductCollections(ctx context.Context, productID int64) ([]model.Collection, error)

	// ListCollects returns collection membership records for a collection.
	ListCollects(ctx context.Context, collectionID int64) ([]model.Collect, error)

	// GetProduct returns a product detail record.
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)

	// UpdateOrderNote replaces the order's note field.
	UpdateOrderNote(ctx context.Context, orderID int64, note string) error
}
