package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxSKULength longitud máxima del SKU, en caracteres.
const MaxSKULength = 50

// Product representa un producto del catálogo. Nunca se elimina físicamente: se desactiva.
// El stock se maneja por bodega en StockRecord.
type Product struct {
	ID        string
	SKU       string // único en el catálogo
	Name      string
	Category  string
	Price     decimal.Decimal // precio de venta (>= 0)
	MinStock  int             // nivel mínimo de stock para reposición
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
