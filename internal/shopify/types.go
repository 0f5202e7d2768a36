package shopify

import (
	"encoding/json"

	"order-enricher/internal/model"
)

// Admin REST API response envelopes. Every resource is wrapped in a
// named key, e.g. {"orders": [...]}.

type ordersEnvelope struct {
	Orders []model.Order `json:"orders"`
}

type metafieldsEnvelope struct {
	Metafields []model.Metafield `json:"metafields"`
}

type collectionsEnvelope struct {
	Collections []model.Collection `json:"collections"`
}

type collectsEnvelope struct {
	Collects []model.Collect `json:"collects"`
}

type productEnvelope struct {
	Product model.Product `json:"product"`
}

// orderNoteUpdate is the PUT orders/{id}.json body. Only the note field
// is replaced; Shopify treats absent fields as untouched.
type orderNoteUpdate struct {
	Order orderNotePatch `json:"order"`
}

type orderNotePatch struct {
	ID   int64  `json:"id"`
	Note string `json:"note"`
}

// apiErrorEnvelope is Shopify's error body. "errors" is a string for
// simple failures and an object keyed by field for validation failures,
// so it is kept raw and stringified best effort.
type apiErrorEnvelope struct {
	Errors json.RawMessage `json:"errors"`
}
