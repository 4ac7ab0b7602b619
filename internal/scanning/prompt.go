package scanning

import (
	"fmt"
	"strings"

	"github.com/zombor/receiptd/internal/pipeline"
)

// advancedPromptTemplate asks for every field the record schema carries,
// including line items and the secondary monetary fields.
const advancedPromptTemplate = `You are an expert OCR and financial analysis AI. Read every piece of text on this receipt image and extract it into structured JSON with extreme precision.

Instructions:
1. Respond with ONLY a valid JSON object - no explanations, no markdown, no additional text
2. Be exact with numbers and dates
3. Use the merchant type and purchased items to choose the most appropriate category
4. Extract individual line items when they are clearly visible
5. Account for taxes, discounts, and tips separately

Return ONLY valid JSON in this exact format:
{
  "merchant_name": "exact name as printed on the receipt",
  "merchant_address": "full address if visible, null if not",
  "transaction_date": "YYYY-MM-DD",
  "transaction_time": "HH:MM if visible, null if not",
  "total_amount": 0.00,
  "subtotal": 0.00,
  "tax_amount": 0.00,
  "tip_amount": 0.00,
  "discount_amount": 0.00,
  "currency": "3-letter currency code (USD, EUR, THB, ...)",
  "category": "choose ONE from: %s",
  "payment_method": "Cash, Card, Mobile, etc. if visible",
  "items": [
    {
      "name": "item description",
      "quantity": 1,
      "unit_price": 0.00,
      "total_price": 0.00
    }
  ],
  "receipt_number": "receipt or transaction number if visible",
  "cashier": "cashier name or ID if visible",
  "confidence": 0.0,
  "extraction_notes": "any issues or uncertainties"
}

Category guidance:
- Food: restaurants, groceries, cafes, food delivery
- Transport: gas stations, public transport, parking, car services
- Utilities: phone, internet, electricity, water bills
- Shopping: retail stores, clothing, electronics, general merchandise
- Entertainment: movies, games, events, recreational activities
- Healthcare: pharmacies, medical services, health products
- Education: books, courses, educational materials
- Other: services, fees, or unclear categories

Rules:
- If text is unclear, make reasonable assumptions but lower the confidence
- Monetary values must be plain numbers without currency symbols
- Dates use ISO format (YYYY-MM-DD)
- If items are not clearly itemized, create a single item with the total
- Handle partial or damaged receipts gracefully

Remember: respond with ONLY the JSON object.`

// simplePromptTemplate asks only for the required fields. Cheaper and good
// enough for clean, printed receipts.
const simplePromptTemplate = `Analyze this receipt image and extract key information into JSON format.

Respond with ONLY this JSON structure:
{
  "merchant_name": "store name",
  "transaction_date": "YYYY-MM-DD",
  "total_amount": 0.00,
  "currency": "USD",
  "category": "choose from: %s",
  "confidence": 0.95
}

Choose the category that best matches the type of store or items purchased.`

// selectPrompt returns the extraction prompt for the requested detail level
func selectPrompt(advanced bool) string {
	categories := strings.Join(pipeline.Categories(), ", ")
	if advanced {
		return fmt.Sprintf(advancedPromptTemplate, categories)
	}
	return fmt.Sprintf(simplePromptTemplate, categories)
}
