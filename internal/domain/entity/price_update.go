package entity

import "github.com/shopspring/decimal"

// PriceUpdateInfo diferencia entre el precio de catálogo y el precio de una entrada.
// NeedsConfirmation es true cuando el nuevo precio es menor al actual.
type PriceUpdateInfo struct {
	ProductID         string
	ProductName       string
	CurrentPrice      decimal.Decimal
	NewPrice          decimal.Decimal
	NeedsConfirmation bool
	Applied           bool
}
