package enrich

import (
	"fmt"
	"strings"

	"order-enricher/internal/model"
)

// Note text fragments. The note is read by fulfillment staff; the
// wording and emoji markers are fixed strings the packing floor is
// trained on, so they stay exactly as the store uses them.
const (
	customerNoteLabel = "📝 Customer Note:"
	greetingHebrew    = "📄 Положить буклет на иврите"
	greetingDefault   = "📄 Положить буклет на русском"
	samplePrefix      = "🎁 Пробник: "
	metadataMissing   = "(метафилды недоступны)"
)

// hebrewOrder reports whether the first-order greeting should use the
// Hebrew variant: the order locale starts with "he", or the customer's
// free-text note hints at Hebrew.
func hebrewOrder(order *model.Order) bool {
	if strings.HasPrefix(strings.ToLower(order.CustomerLocale), "he") {
		return true
	}
	if order.Customer == nil {
		return false
	}
	hint := strings.ToLower(order.Customer.Note)
	return strings.Contains(hint, "hebrew") || strings.Contains(hint, "עברית")
}

// Greeting returns the locale-appropriate first-order greeting line.
func Greeting(order *model.Order) string {
	if hebrewOrder(order) {
		return greetingHebrew
	}
	return greetingDefault
}

// ItemLine renders one ordered item as quantity, subheading, and weight.
// Degraded metadata renders a shorter line with the unavailable marker.
func ItemLine(qty int, md ItemMetadata) string {
	if md.Unavailable {
		return fmt.Sprintf("×%d | %s", qty, metadataMissing)
	}
	return fmt.Sprintf("×%d | %s | %s", qty, md.Subheading, md.Weight)
}

// ComposeNote assembles the final note text. Section order is fixed:
// customer note block, first-order greeting, one line per item in
// original order, sample line. Blocks are separated by a blank line and
// omitted entirely when empty.
func ComposeNote(order *model.Order, firstOrder bool, itemLines []string, sampleTitle string) string {
	var blocks []string
	if firstOrder {
		blocks = append(blocks, Greeting(order))
	}
	blocks = append(blocks, itemLines...)
	if sampleTitle != "" {
		blocks = append(blocks, samplePrefix+sampleTitle)
	}

	body := strings.Join(blocks, "\n\n")
	if order.Note != "" {
		return customerNoteLabel + "\n" + order.Note + "\n\n" + body
	}
	return body
}
