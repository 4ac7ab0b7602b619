package pipeline

// Defaults substituted for missing or unusable required fields.
const (
	DefaultMerchant   = "Unknown"
	DefaultCurrency   = "USD"
	DefaultCategory   = "Other"
	DefaultConfidence = 0.5

	// fallbackConfidence marks records the pipeline could not extract
	// structured data for.
	fallbackConfidence = 0.1

	// parseFailureNote is the diagnostic attached to fallback records.
	parseFailureNote = "Failed to parse AI response"

	// unknownItemName is the sentinel for line items extracted without a name.
	unknownItemName = "Unknown Item"
)

// categories is the closed set of expense categories. Every record leaving
// the pipeline carries exactly one of these.
var categories = []string{
	"Food",
	"Transport",
	"Utilities",
	"Shopping",
	"Entertainment",
	"Healthcare",
	"Education",
	"Other",
}

// Categories returns the expense categories records may carry.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// LineItem is a single purchased item extracted from a receipt.
type LineItem struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

// Record is the normalized expense record extracted from a receipt image.
// Optional monetary fields are pointers so an extracted zero survives
// serialization while absent fields are omitted.
type Record struct {
	MerchantName    string     `json:"merchant_name"`
	MerchantAddress string     `json:"merchant_address,omitempty"`
	TransactionDate string     `json:"transaction_date"`
	TransactionTime string     `json:"transaction_time,omitempty"`
	TotalAmount     float64    `json:"total_amount"`
	Subtotal        *float64   `json:"subtotal,omitempty"`
	TaxAmount       *float64   `json:"tax_amount,omitempty"`
	TipAmount       *float64   `json:"tip_amount,omitempty"`
	DiscountAmount  *float64   `json:"discount_amount,omitempty"`
	Currency        string     `json:"currency"`
	Category        string     `json:"category"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	ReceiptNumber   string     `json:"receipt_number,omitempty"`
	Cashier         string     `json:"cashier,omitempty"`
	Items           []LineItem `json:"items"`
	Confidence      float64    `json:"confidence"`
	ExtractionNotes string     `json:"extraction_notes,omitempty"`
}

// addNote appends a diagnostic to the record's extraction notes. Existing
// notes are never overwritten.
func (r *Record) addNote(note string) {
	if r.ExtractionNotes == "" {
		r.ExtractionNotes = note
		return
	}
	r.ExtractionNotes += "; " + note
}
