package pipeline

import (
	"fmt"
	"math"
)

// Thresholds tunes the arithmetic consistency checks. The zero value
// disables nothing; use DefaultThresholds.
type Thresholds struct {
	// ItemSumTolerance is the relative difference allowed between the sum
	// of line-item totals and the receipt total.
	ItemSumTolerance float64

	// ReconcileTolerance is the relative deviation allowed between
	// subtotal + tax - discount + tip and the receipt total.
	ReconcileTolerance float64

	// MaxPlausibleTotal is the amount above which a total is treated as a
	// likely misread.
	MaxPlausibleTotal float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ItemSumTolerance:   0.10,
		ReconcileTolerance: 0.05,
		MaxPlausibleTotal:  10000,
	}
}

// crossValidate folds consistency checks into the record's confidence.
// Penalties sum and only ever lower the score; no check rejects the record.
func crossValidate(rec *Record, t Thresholds) {
	penalty := 0.0

	if len(rec.Items) > 0 && rec.TotalAmount > 0 {
		sum := 0.0
		for _, item := range rec.Items {
			sum += item.TotalPrice
		}
		if sum > 0 && math.Abs(sum-rec.TotalAmount)/rec.TotalAmount > t.ItemSumTolerance {
			penalty += 0.2
			rec.addNote(fmt.Sprintf("Item total %.2f does not match receipt total %.2f", sum, rec.TotalAmount))
		}
	}

	if rec.Subtotal != nil && *rec.Subtotal > 0 && rec.TotalAmount > 0 {
		expected := *rec.Subtotal + amountOrZero(rec.TaxAmount) - amountOrZero(rec.DiscountAmount) + amountOrZero(rec.TipAmount)
		if math.Abs(expected-rec.TotalAmount)/rec.TotalAmount > t.ReconcileTolerance {
			penalty += 0.1
		}
	}

	if rec.TotalAmount > t.MaxPlausibleTotal {
		penalty += 0.1
	}

	if rec.MerchantName == DefaultMerchant {
		penalty += 0.2
	}

	if penalty > 0 {
		rec.Confidence = clamp01(rec.Confidence - penalty)
	}
}

func amountOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
