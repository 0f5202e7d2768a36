package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"order-enricher/internal/model"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{
		BaseURL:     srv.URL,
		AccessToken: "test-token",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{AccessToken: "tok"}); err == nil {
		t.Error("New() without store domain should fail")
	}
	if _, err := New(Config{StoreDomain: "shop.example.com"}); err == nil {
		t.Error("New() without access token should fail")
	}
}

func TestListOrders(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Shopify-Access-Token"); got != "test-token" {
			t.Errorf("access token header = %q, want test-token", got)
		}
		if r.URL.Path != "/admin/api/2023-10/orders.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("customer_id") != "9" || q.Get("status") != "any" {
			t.Errorf("query = %q, want customer_id=9&status=any", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"orders": []map[string]interface{}{
				{"id": 1, "line_items": []map[string]interface{}{{"product_id": 55, "quantity": 2}}},
			},
		})
	})

	orders, err := client.ListOrders(context.Background(), 9)
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(orders) != 1 || orders[0].ID != 1 {
		t.Fatalf("orders = %+v, want one order with ID 1", orders)
	}
	if len(orders[0].LineItems) != 1 || orders[0].LineItems[0].ProductID != 55 {
		t.Errorf("line items = %+v", orders[0].LineItems)
	}
}

func TestGetProductMetafields(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2023-10/products/55/metafields.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"metafields": []map[string]interface{}{
				{"id": 1, "namespace": "subheading", "key": "swd", "value": "Green"},
			},
		})
	})

	metafields, err := client.GetProductMetafields(context.Background(), 55)
	if err != nil {
		t.Fatalf("GetProductMetafields() error = %v", err)
	}
	if len(metafields) != 1 || metafields[0].Namespace != "subheading" || metafields[0].Value != "Green" {
		t.Errorf("metafields = %+v", metafields)
	}
}

func TestListCollects(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2023-10/collects.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("collection_id") != "200" || q.Get("limit") != "250" {
			t.Errorf("query = %q, want collection_id=200&limit=250", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"collects": []map[string]interface{}{{"id": 1, "collection_id": 200, "product_id": 10}},
		})
	})

	collects, err := client.ListCollects(context.Background(), 200)
	if err != nil {
		t.Fatalf("ListCollects() error = %v", err)
	}
	if len(collects) != 1 || collects[0].ProductID != 10 {
		t.Errorf("collects = %+v", collects)
	}
}

func TestUpdateOrderNote(t *testing.T) {
	var body map[string]map[string]interface{}
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q, want PUT", r.Method)
		}
		if r.URL.Path != "/admin/api/2023-10/orders/1.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.Write([]byte("{}"))
	})

	if err := client.UpdateOrderNote(context.Background(), 1, "hello"); err != nil {
		t.Fatalf("UpdateOrderNote() error = %v", err)
	}
	order := body["order"]
	if order["id"] != float64(1) || order["note"] != "hello" {
		t.Errorf("request body order = %v, want id 1 and note hello", order)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"errors":"invalid token"}`, model.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, `{}`, model.ErrUnauthorized},
		{"not found", http.StatusNotFound, `{"errors":"Not Found"}`, model.ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, `{}`, model.ErrRateLimited},
		{"unprocessable", http.StatusUnprocessableEntity, `{"errors":"bad note"}`, model.ErrInvalidRequest},
		{"server error", http.StatusInternalServerError, ``, model.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.ListOrders(context.Background(), 9)
			if err == nil {
				t.Fatal("ListOrders() error = nil, want error")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, not wrapping %v", err, tt.sentinel)
			}
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Errorf("error = %v, want *model.APIError", err)
			}
		})
	}
}

func TestConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // connection refused from here on

	client, err := New(Config{BaseURL: url, AccessToken: "tok"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = client.ListOrders(context.Background(), 9)
	if !errors.Is(err, model.ErrUpstream) {
		t.Errorf("error = %v, want wrapping %v", err, model.ErrUpstream)
	}
}
