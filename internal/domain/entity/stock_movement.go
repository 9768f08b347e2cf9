package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de inventario (conjunto cerrado).
type MovementType uint8

const (
	MovementTypeUnknown    MovementType = iota
	MovementTypeReceipt                 // entrada a bodega destino
	MovementTypeIssue                   // salida de bodega origen
	MovementTypeTransfer                // traslado origen -> destino
	MovementTypeAdjustment              // ajuste con signo en bodega destino
)

var movementTypeNames = map[MovementType]string{
	MovementTypeReceipt:    "RECEIPT",
	MovementTypeIssue:      "ISSUE",
	MovementTypeTransfer:   "TRANSFER",
	MovementTypeAdjustment: "ADJUSTMENT",
}

func (t MovementType) String() string {
	if s, ok := movementTypeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseMovementType convierte el nombre (sin distinguir mayúsculas) al tipo.
func ParseMovementType(s string) (MovementType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for t, name := range movementTypeNames {
		if name == s {
			return t, nil
		}
	}
	return MovementTypeUnknown, fmt.Errorf("tipo de movimiento %q desconocido", s)
}

// MarshalText serializa el tipo como su nombre.
func (t MovementType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText acepta el nombre del tipo.
func (t *MovementType) UnmarshalText(b []byte) error {
	parsed, err := ParseMovementType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// StockMovement cabecera de un movimiento de inventario.
type StockMovement struct {
	ID                     string
	Number                 string
	Type                   MovementType
	SourceWarehouseID      string // vacío si no aplica
	DestinationWarehouseID string // vacío si no aplica
	Reason                 string
	Notes                  string
	CreatedAt              time.Time
	CreatedBy              string
	Lines                  []StockMovementLine
}

// StockMovementLine línea de movimiento. UnitPrice solo aplica a entradas.
type StockMovementLine struct {
	ID         string
	MovementID string
	ProductID  string
	Quantity   int
	UnitPrice  *decimal.Decimal
}
