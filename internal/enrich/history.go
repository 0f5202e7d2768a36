package enrich

import (
	"context"
)

// History is the customer's purchase history derived fresh for one
// request and discarded afterwards. OrderCount includes the order that
// triggered the webhook, because the platform persists an order before
// delivering its creation webhook; FirstOrder encodes that convention.
type History struct {
	OrderCount     int
	PastProductIDs map[int64]bool
	PastTitleKeys  map[string]bool
	PurchaseCounts map[int64]int
}

// FirstOrder reports whether the triggering order is the customer's
// first. Exactly one total order on record means no prior purchases.
func (h History) FirstOrder() bool {
	return h.OrderCount == 1
}

// emptyHistory returns a History with initialized maps and no orders.
func emptyHistory() History {
	return History{
		PastProductIDs: make(map[int64]bool),
		PastTitleKeys:  make(map[string]bool),
		PurchaseCounts: make(map[int64]int),
	}
}

// AggregateHistory derives the purchase history of a customer from all
// their orders regardless of status. A zero customer ID (guest order)
// yields an empty history without touching the store and without error.
// A transport failure returns an empty history together with the cause;
// the caller logs it and treats the customer as having no history.
func AggregateHistory(ctx context.Context, store StoreClient, customerID int64) (History, error) {
	history := emptyHistory()
	if customerID == 0 {
		return history, nil
	}

	orders, err := store.ListOrders(ctx, customerID)
	if err != nil {
		return emptyHistory(), err
	}

	history.OrderCount = len(orders)
	for _, order := range orders {
		for _, item := range order.LineItems {
			if item.ProductID != 0 {
				history.PastProductIDs[item.ProductID] = true
				history.PurchaseCounts[item.ProductID] += item.Quantity
			}
			if item.Title != "" {
				history.PastTitleKeys[TitleKey(item.Title)] = true
			}
		}
	}
	return history, nil
}
