package entity

import "time"

// Client representa un cliente. Toda venta debe referenciar un cliente activo.
type Client struct {
	ID        string
	Name      string
	TaxID     string // NIT o Cédula
	Email     string
	Phone     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
