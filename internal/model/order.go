// Package model defines the order domain types and error taxonomy
// shared across the enricher.
package model

// Order is the Shopify order as delivered by the orders/create webhook.
// Webhook senders wrap it under an "order" key or post it at the top
// level; the handler accepts both. Orders are never mutated after
// decoding - the enricher only reads them and writes a new note back
// through the API.
type Order struct {
	ID             int64      `json:"id"`
	Note           string     `json:"note"`
	CustomerLocale string     `json:"customer_locale"`
	Customer       *Customer  `json:"customer,omitempty"`
	LineItems      []LineItem `json:"line_items"`
}

// CustomerID returns the customer identifier, or 0 when the order
// carries no customer reference (guest checkout).
func (o *Order) CustomerID() int64 {
	if o == nil || o.Customer == nil {
		return 0
	}
	return o.Customer.ID
}

// Customer is the subset of the Shopify customer record consumed here.
// The free-text note is used as a language hint for the greeting.
type Customer struct {
	ID   int64  `json:"id"`
	Note string `json:"note"`
}

// LineItem is one product-and-quantity entry within an order.
type LineItem struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
}

// Qty returns the display quantity. Absent, zero, or negative
// quantities render as 1.
func (li LineItem) Qty() int {
	if li.Quantity < 1 {
		return 1
	}
	return li.Quantity
}

// Metafield is one namespace/key/value metadata entry on a product.
// Only (subheading, swd) and (weight, wgt) are consumed by the
// enricher; everything else passes through the ingredient filter only.
type Metafield struct {
	ID        int64  `json:"id"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

// Collection is a named product grouping used for merchandising.
type Collection struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Collect is a collection membership record linking a product to a
// custom collection.
type Collect struct {
	ID           int64 `json:"id"`
	CollectionID int64 `json:"collection_id"`
	ProductID    int64 `json:"product_id"`
}

// Product is the subset of the product detail record consumed here.
type Product struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}
