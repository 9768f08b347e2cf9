package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMovementRequest body para POST /api/inventory/movements.
// type: RECEIPT | ISSUE | TRANSFER | ADJUSTMENT.
type CreateMovementRequest struct {
	Type                   string                `json:"type"`
	SourceWarehouseID      string                `json:"source_warehouse_id,omitempty"`
	DestinationWarehouseID string                `json:"destination_warehouse_id,omitempty"`
	Reason                 string                `json:"reason,omitempty"`
	Notes                  string                `json:"notes,omitempty"`
	Lines                  []MovementLineRequest `json:"lines"`
	ApplyPrices            bool                  `json:"apply_prices,omitempty"`
	ConfirmLowerPrices     bool                  `json:"confirm_lower_prices,omitempty"`
}

// MovementLineRequest línea de movimiento. unit_price solo en entradas.
type MovementLineRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// MovementResponse movimiento registrado.
type MovementResponse struct {
	ID                     string                `json:"id"`
	Number                 string                `json:"number"`
	Type                   string                `json:"type,omitempty"`
	SourceWarehouseID      string                `json:"source_warehouse_id,omitempty"`
	DestinationWarehouseID string                `json:"destination_warehouse_id,omitempty"`
	Reason                 string                `json:"reason,omitempty"`
	Notes                  string                `json:"notes,omitempty"`
	CreatedAt              *time.Time            `json:"created_at,omitempty"`
	CreatedBy              string                `json:"created_by,omitempty"`
	Lines                  []MovementLineRequest `json:"lines,omitempty"`
	PriceUpdates           []PriceUpdateResponse `json:"price_updates,omitempty"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockByWarehouse cantidad de un producto en una bodega.
type StockByWarehouse struct {
	WarehouseID   string `json:"warehouse_id"`
	WarehouseName string `json:"warehouse_name,omitempty"`
	Quantity      int    `json:"quantity"`
}

// ProductStockResponse disponibilidad de un producto por bodega y total.
type ProductStockResponse struct {
	ProductID  string             `json:"product_id"`
	Total      int                `json:"total"`
	Warehouses []StockByWarehouse `json:"warehouses"`
}

// WarehouseStockItem producto con stock en una bodega.
type WarehouseStockItem struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Quantity    int       `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   string    `json:"updated_by,omitempty"`
}

// PriceLineRequest precio entrante por producto.
type PriceLineRequest struct {
	ProductID string           `json:"product_id"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// PriceCheckRequest body para POST /api/inventory/price-updates/check y /apply.
type PriceCheckRequest struct {
	Lines              []PriceLineRequest `json:"lines"`
	ConfirmLowerPrices bool               `json:"confirm_lower_prices,omitempty"`
}

// PriceUpdateResponse diferencia de precio detectada (y si se aplicó).
type PriceUpdateResponse struct {
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	CurrentPrice      decimal.Decimal `json:"current_price"`
	NewPrice          decimal.Decimal `json:"new_price"`
	NeedsConfirmation bool            `json:"needs_confirmation"`
	Applied           bool            `json:"applied"`
}

// LowStockItemDTO producto activo con stock total por debajo de su mínimo.
type LowStockItemDTO struct {
	ProductID         string `json:"product_id"`
	SKU               string `json:"sku"`
	ProductName       string `json:"product_name"`
	CurrentStock      int    `json:"current_stock"`
	MinStock          int    `json:"min_stock"`
	IdealStock        int    `json:"ideal_stock"`         // MinStock * 1.5 redondeado hacia arriba
	SuggestedOrderQty int    `json:"suggested_order_qty"` // IdealStock - CurrentStock
	Priority          int    `json:"priority"`            // 1 = más urgente
}
