package pipeline

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// nonNumericRe strips everything that cannot appear in a decimal literal,
// which also removes currency symbols and thousands separators.
var nonNumericRe = regexp.MustCompile(`[^0-9.\-]`)

var currencyCodeRe = regexp.MustCompile(`^[A-Za-z]{3}$`)

// currencySymbols maps single-character symbols to 3-letter codes.
var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₹": "INR",
	"₽": "RUB",
	"¢": "USD",
}

// categorySynonyms maps common lowercase category spellings models produce
// to the canonical set.
var categorySynonyms = map[string]string{
	"restaurant":  "Food",
	"grocery":     "Food",
	"groceries":   "Food",
	"cafe":        "Food",
	"supermarket": "Food",
	"gas":         "Transport",
	"fuel":        "Transport",
	"taxi":        "Transport",
	"parking":     "Transport",
	"pharmacy":    "Healthcare",
	"medical":     "Healthcare",
	"doctor":      "Healthcare",
	"retail":      "Shopping",
	"store":       "Shopping",
	"clothing":    "Shopping",
	"electronics": "Shopping",
	"cinema":      "Entertainment",
	"movies":      "Entertainment",
}

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"01-02-2006",
	"02-01-2006",
	"2006/01/02",
}

var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"03:04 PM",
	"3:04PM",
	"03:04PM",
}

// normalizeRecord turns a decoded model reply into a schema-conformant
// record. Every field is repaired independently; nothing here fails.
func normalizeRecord(m map[string]any, now time.Time) *Record {
	rec := &Record{
		MerchantName:    stringField(m, "merchant_name", DefaultMerchant),
		MerchantAddress: optionalString(m, "merchant_address"),
		TransactionDate: normalizeDate(optionalString(m, "transaction_date"), now),
		TransactionTime: normalizeTime(optionalString(m, "transaction_time")),
		TotalAmount:     requiredAmount(m, "total_amount"),
		Subtotal:        optionalAmount(m, "subtotal"),
		TaxAmount:       optionalAmount(m, "tax_amount"),
		TipAmount:       optionalAmount(m, "tip_amount"),
		DiscountAmount:  optionalAmount(m, "discount_amount"),
		Currency:        normalizeCurrency(optionalString(m, "currency")),
		Category:        normalizeCategory(optionalString(m, "category")),
		PaymentMethod:   optionalString(m, "payment_method"),
		ReceiptNumber:   optionalString(m, "receipt_number"),
		Cashier:         optionalString(m, "cashier"),
		Items:           normalizeItems(m["items"]),
		Confidence:      normalizeConfidence(m["confidence"]),
		ExtractionNotes: optionalString(m, "extraction_notes"),
	}

	return rec
}

// stringField returns the trimmed string at key, or def when the value is
// absent, null, empty, or not a string.
func stringField(m map[string]any, key, def string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func optionalString(m map[string]any, key string) string {
	return stringField(m, key, "")
}

// coerceFloat extracts a number from a decoded JSON value. Textual values
// are cleaned of currency symbols and separators before parsing.
func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(nonNumericRe.ReplaceAllString(n, ""), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func requiredAmount(m map[string]any, key string) float64 {
	f, ok := coerceFloat(m[key])
	if !ok {
		return 0
	}
	return clampNonNegative(f)
}

// optionalAmount keeps absent fields absent; present but unusable values
// fall back to zero like any other monetary field.
func optionalAmount(m map[string]any, key string) *float64 {
	v, ok := m[key]
	if !ok {
		return nil
	}
	f, _ := coerceFloat(v)
	f = clampNonNegative(f)
	return &f
}

func normalizeConfidence(v any) float64 {
	f, ok := coerceFloat(v)
	if !ok {
		return DefaultConfidence
	}
	return clamp01(f)
}

func normalizeDate(s string, now time.Time) string {
	if s != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(dateLayouts[0])
			}
		}
	}
	return now.Format(dateLayouts[0])
}

func normalizeTime(s string) string {
	s = strings.ToUpper(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(timeLayouts[0])
		}
	}
	return ""
}

func normalizeCurrency(s string) string {
	if code, ok := currencySymbols[s]; ok {
		return code
	}
	if currencyCodeRe.MatchString(s) {
		return strings.ToUpper(s)
	}
	return DefaultCurrency
}

func normalizeCategory(s string) string {
	if s == "" {
		return DefaultCategory
	}
	for _, c := range categories {
		if c == s {
			return c
		}
	}
	lower := strings.ToLower(s)
	for _, c := range categories {
		if strings.ToLower(c) == lower {
			return c
		}
	}
	if c, ok := categorySynonyms[lower]; ok {
		return c
	}
	slog.Warn("Unrecognized category, defaulting", "category", s)
	return DefaultCategory
}

func normalizeItems(v any) []LineItem {
	raw, ok := v.([]any)
	if !ok {
		return []LineItem{}
	}

	items := make([]LineItem, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name := stringField(m, "name", unknownItemName)
		if name == unknownItemName {
			continue
		}
		items = append(items, LineItem{
			Name:       name,
			Quantity:   itemQuantity(m["quantity"]),
			UnitPrice:  itemPrice(m["unit_price"]),
			TotalPrice: itemPrice(m["total_price"]),
		})
	}

	return items
}

// itemQuantity truncates fractional quantities and never goes below one.
func itemQuantity(v any) int {
	f, ok := coerceFloat(v)
	if !ok {
		return 1
	}
	q := int(f)
	if q < 1 {
		return 1
	}
	return q
}

func itemPrice(v any) float64 {
	f, _ := coerceFloat(v)
	return clampNonNegative(f)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func clampNonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
