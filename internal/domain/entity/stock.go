package entity

import (
	"math"
	"time"
)

// MaxQuantity tope de una cantidad (línea o saldo por bodega); coincide con la columna INTEGER.
const MaxQuantity = math.MaxInt32

// StockRecord cantidad disponible de un producto en una bodega. Clave (ProductID, WarehouseID).
// Se crea implícitamente con la primera entrada y nunca se elimina; Quantity >= 0 siempre.
type StockRecord struct {
	ProductID   string
	WarehouseID string
	Quantity    int
	UpdatedAt   time.Time
	UpdatedBy   string

	// Denormalizados en lectura.
	WarehouseName string
	ProductName   string
}
