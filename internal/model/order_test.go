package model

import (
	"encoding/json"
	"testing"
)

func TestOrderCustomerID(t *testing.T) {
	tests := []struct {
		name  string
		order *Order
		want  int64
	}{
		{"with customer", &Order{Customer: &Customer{ID: 9}}, 9},
		{"guest checkout", &Order{}, 0},
		{"nil order", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.order.CustomerID(); got != tt.want {
				t.Errorf("CustomerID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLineItemQty(t *testing.T) {
	tests := []struct {
		quantity int
		want     int
	}{
		{2, 2},
		{1, 1},
		{0, 1},
		{-3, 1},
	}

	for _, tt := range tests {
		li := LineItem{Quantity: tt.quantity}
		if got := li.Qty(); got != tt.want {
			t.Errorf("Qty() with quantity %d = %d, want %d", tt.quantity, got, tt.want)
		}
	}
}

func TestOrderDecoding(t *testing.T) {
	payload := `{
		"id": 450789469,
		"note": "ring the bell",
		"customer_locale": "he-IL",
		"customer": {"id": 9, "note": "regular"},
		"line_items": [
			{"product_id": 55, "title": "Green Tea | 100g", "quantity": 2}
		]
	}`

	var order Order
	if err := json.Unmarshal([]byte(payload), &order); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if order.ID != 450789469 || order.Note != "ring the bell" {
		t.Errorf("order = %+v", order)
	}
	if order.CustomerLocale != "he-IL" {
		t.Errorf("CustomerLocale = %q", order.CustomerLocale)
	}
	if order.CustomerID() != 9 {
		t.Errorf("CustomerID() = %d, want 9", order.CustomerID())
	}
	if len(order.LineItems) != 1 {
		t.Fatalf("LineItems = %+v, want one item", order.LineItems)
	}
	item := order.LineItems[0]
	if item.ProductID != 55 || item.Title != "Green Tea | 100g" || item.Quantity != 2 {
		t.Errorf("line item = %+v", item)
	}
}
