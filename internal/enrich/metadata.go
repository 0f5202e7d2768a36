package enrich

import (
	"context"
	"regexp"
	"strings"

	"order-enricher/internal/model"
)

// Placeholder substitutes any missing metadata value in rendered lines.
const Placeholder = "—"

// Metafield namespace/key pairs consumed by the enricher.
const (
	subheadingNamespace = "subheading"
	subheadingKey       = "swd"
	weightNamespace     = "weight"
	weightKey           = "wgt"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes HTML-like tags and trims surrounding whitespace.
// Merchants paste rich text into metafields; the note is plain text.
// Idempotent: stripping an already-stripped string is a no-op.
func StripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// TitleKey normalizes a product title for past-purchase comparison:
// lower-cased, with any trailing "| ..." variant suffix removed.
func TitleKey(title string) string {
	key := strings.ToLower(title)
	if i := strings.Index(key, "|"); i >= 0 {
		key = key[:i]
	}
	return strings.TrimSpace(key)
}

// ItemMetadata is the normalized metadata of one ordered product.
// Unavailable marks a degraded lookup: the item still renders, with a
// metadata-unavailable marker instead of subheading and weight.
type ItemMetadata struct {
	Subheading  string
	Weight      string
	Unavailable bool
}

// FetchItemMetadata retrieves and normalizes the subheading and weight
// metafields of a product. A transport failure returns the degraded
// value together with the cause; the caller logs it and keeps going -
// metadata problems never abort the request.
func FetchItemMetadata(ctx context.Context, store StoreClient, productID int64) (ItemMetadata, error) {
	metafields, err := store.GetProductMetafields(ctx, productID)
	if err != nil {
		return ItemMetadata{Unavailable: true}, err
	}

	return ItemMetadata{
		Subheading: StripTags(metafieldValue(metafields, subheadingNamespace, subheadingKey)),
		Weight:     StripTags(metafieldValue(metafields, weightNamespace, weightKey)),
	}, nil
}

// metafieldValue returns the first entry matching namespace and key,
// or the placeholder when absent.
func metafieldValue(metafields []model.Metafield, namespace, key string) string {
	if v, ok := metafieldLookup(metafields, namespace, key); ok {
		return v
	}
	return Placeholder
}

// metafieldLookup returns the first entry matching namespace and key.
func metafieldLookup(metafields []model.Metafield, namespace, key string) (string, bool) {
	for _, m := range metafields {
		if m.Namespace == namespace && m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}
