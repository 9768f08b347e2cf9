package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleNumberLayout formato del consecutivo de venta: S-<yyyyMMdd>-<HHmmss>.
const SaleNumberLayout = "20060102-150405"

// Sale cabecera de una venta. Inmutable una vez creada salvo Notes.
type Sale struct {
	ID        string
	Number    string
	Date      time.Time
	SellerID  string
	ClientID  string
	Total     decimal.Decimal // suma de LineTotal
	Notes     string
	CreatedAt time.Time
	CreatedBy string
	UpdatedAt time.Time
	UpdatedBy string
	Lines     []SaleLine
}

// SaleLine línea de venta. UnitPrice se captura al momento de la venta.
type SaleLine struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal // Quantity * UnitPrice, calculado en el servidor
}
