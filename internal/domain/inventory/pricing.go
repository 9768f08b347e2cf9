package inventory

import "github.com/shopspring/decimal"

// PriceLine precio entrante para un producto (línea de entrada de mercancía).
type PriceLine struct {
	ProductID string
	UnitPrice *decimal.Decimal
}

// IncomingPrices devuelve, por producto, el último precio positivo informado en las líneas,
// en orden de primera aparición del producto.
func IncomingPrices(lines []PriceLine) (order []string, prices map[string]decimal.Decimal) {
	prices = make(map[string]decimal.Decimal)
	for _, l := range lines {
		if l.UnitPrice == nil || !l.UnitPrice.IsPositive() {
			continue
		}
		if _, seen := prices[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		prices[l.ProductID] = *l.UnitPrice
	}
	return order, prices
}

// PriceChange resultado de comparar el precio de catálogo con el entrante.
// changed es false si son iguales; needsConfirmation es true si el nuevo es menor.
func PriceChange(current, incoming decimal.Decimal) (changed, needsConfirmation bool) {
	if incoming.Equal(current) {
		return false, false
	}
	return true, incoming.LessThan(current)
}

// ShouldApply aumentos siempre; disminuciones solo si fueron confirmadas.
func ShouldApply(needsConfirmation, confirmLowerPrices bool) bool {
	return !needsConfirmation || confirmLowerPrices
}
