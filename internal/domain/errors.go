package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrBusy         = errors.New("motor de inventario ocupado, intente de nuevo")

	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrAllocationShortfall = errors.New("faltante en la asignación de bodegas")
	ErrInvariantViolation  = errors.New("violación de invariante de stock")

	ErrClientRequired    = fmt.Errorf("%w: la venta requiere cliente", ErrInvalidInput)
	ErrClientInactive    = fmt.Errorf("%w: cliente inactivo", ErrConflict)
	ErrProductInactive   = fmt.Errorf("%w: producto inactivo", ErrConflict)
	ErrWarehouseInactive = fmt.Errorf("%w: bodega inactiva", ErrConflict)

	// Errores calificados por tipo de movimiento.
	ErrMissingSourceWarehouse      = fmt.Errorf("%w: bodega origen requerida", ErrInvalidInput)
	ErrMissingDestinationWarehouse = fmt.Errorf("%w: bodega destino requerida", ErrInvalidInput)
	ErrSameWarehouse               = fmt.Errorf("%w: origen y destino deben ser distintos", ErrInvalidInput)
	ErrMissingReason               = fmt.Errorf("%w: el ajuste requiere motivo", ErrInvalidInput)
	ErrUnknownMovementType         = fmt.Errorf("%w: tipo de movimiento desconocido", ErrInvalidInput)
)

// ValidationError error de forma en la entrada (campo faltante, cantidad no positiva, precio negativo).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError incluye producto, bodega (vacía = total de bodegas), solicitado y disponible.
type InsufficientStockError struct {
	ProductID     string
	ProductName   string
	WarehouseName string
	Requested     int
	Available     int
}

func (e *InsufficientStockError) Error() string {
	if e.WarehouseName != "" {
		return fmt.Sprintf("stock insuficiente de %q en bodega %q: solicitado %d, disponible %d",
			e.ProductName, e.WarehouseName, e.Requested, e.Available)
	}
	return fmt.Sprintf("stock insuficiente de %q: solicitado %d, disponible %d",
		e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// AllocationShortfallError la validación dio stock suficiente pero el recorrido de bodegas no cubrió la demanda.
type AllocationShortfallError struct {
	ProductID string
	Requested int
	Remaining int
}

func (e *AllocationShortfallError) Error() string {
	return fmt.Sprintf("faltante en asignación del producto %s: solicitado %d, sin cubrir %d",
		e.ProductID, e.Requested, e.Remaining)
}

func (e *AllocationShortfallError) Unwrap() error { return ErrAllocationShortfall }

// InvariantViolationError escritura que dejaría una cantidad negativa.
type InvariantViolationError struct {
	ProductID   string
	WarehouseID string
	Quantity    int
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("cantidad negativa (%d) para producto %s en bodega %s",
		e.Quantity, e.ProductID, e.WarehouseID)
}

func (e *InvariantViolationError) Unwrap() error { return ErrInvariantViolation }

// IsConsistencyFailure indica un error que no debería ocurrir y requiere alerta a operadores.
func IsConsistencyFailure(err error) bool {
	return errors.Is(err, ErrAllocationShortfall) || errors.Is(err, ErrInvariantViolation)
}

// IsBusinessError errores esperados de validación o de estado; no son fallas del sistema.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrDuplicate)
}
