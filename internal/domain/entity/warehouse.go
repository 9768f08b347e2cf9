package entity

import "time"

// MaxCodeLength longitud máxima del código de bodega, en caracteres.
const MaxCodeLength = 20

// Warehouse representa una bodega donde se almacena inventario (multi-bodega).
type Warehouse struct {
	ID        string
	Code      string // único
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
