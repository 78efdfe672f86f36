package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/stocklane/stocklane/internal/shared"
)

func validateProduct(input ProductInput) error {
	if err := shared.ValidateStruct(input); err != nil {
		return err
	}
	var fields []string
	if !monetary(input.CostPrice) {
		fields = append(fields, "cost_price")
	}
	if !monetary(input.SalePrice) {
		fields = append(fields, "sale_price")
	}
	if len(fields) > 0 {
		return shared.NewValidationError(fields...)
	}
	return nil
}

// monetary reports whether d fits a two-decimal money column.
func monetary(d decimal.Decimal) bool {
	return d.Exponent() >= -2
}
