package receipt

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Summary aggregates spending across stored receipts
type Summary struct {
	TotalSpent         float64            `json:"total_spent"`
	ReceiptCount       int                `json:"receipt_count"`
	AverageAmount      float64            `json:"average_amount"`
	MostCommonCategory string             `json:"most_common_category,omitempty"`
	CategoryTotals     map[string]float64 `json:"category_totals"`
	DailySpending      map[string]float64 `json:"daily_spending"`
}

// summarize folds receipts into a Summary. Running totals use decimal
// arithmetic so cents don't drift; floats appear only at the JSON boundary.
func summarize(receipts []*Receipt) *Summary {
	total := decimal.Zero
	categoryTotals := make(map[string]decimal.Decimal)
	dailySpending := make(map[string]decimal.Decimal)
	categoryCounts := make(map[string]int)

	for _, r := range receipts {
		amount := decimal.NewFromFloat(r.Record.TotalAmount)
		total = total.Add(amount)
		categoryTotals[r.Record.Category] = categoryTotals[r.Record.Category].Add(amount)
		dailySpending[r.Record.TransactionDate] = dailySpending[r.Record.TransactionDate].Add(amount)
		categoryCounts[r.Record.Category]++
	}

	summary := &Summary{
		ReceiptCount:   len(receipts),
		CategoryTotals: make(map[string]float64, len(categoryTotals)),
		DailySpending:  make(map[string]float64, len(dailySpending)),
	}

	summary.TotalSpent, _ = total.Float64()
	if len(receipts) > 0 {
		average := total.Div(decimal.NewFromInt(int64(len(receipts)))).Round(2)
		summary.AverageAmount, _ = average.Float64()
	}

	for category, amount := range categoryTotals {
		summary.CategoryTotals[category], _ = amount.Float64()
	}
	for day, amount := range dailySpending {
		summary.DailySpending[day], _ = amount.Float64()
	}

	// Ties resolve to the alphabetically first category so the answer is
	// stable across runs
	names := make([]string, 0, len(categoryCounts))
	for name := range categoryCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if summary.MostCommonCategory == "" || categoryCounts[name] > categoryCounts[summary.MostCommonCategory] {
			summary.MostCommonCategory = name
		}
	}

	return summary
}
