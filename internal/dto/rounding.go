package dto

import "github.com/shopspring/decimal"

// Money rounds a currency amount for presentation.
func Money(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// Qty rounds a quantity or ratio for presentation.
func Qty(d decimal.Decimal) decimal.Decimal { return d.Round(4) }

// Pages returns the number of pages needed for total rows.
func Pages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
