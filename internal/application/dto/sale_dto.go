package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body para POST /api/sales. seller_id vacío = usuario del token.
type CreateSaleRequest struct {
	SellerID string            `json:"seller_id,omitempty"`
	ClientID string            `json:"client_id"`
	Notes    string            `json:"notes,omitempty"`
	Lines    []SaleLineRequest `json:"lines"`
}

// SaleLineRequest línea de venta. unit_price omitido = precio de catálogo.
// line_total se ignora: se recalcula en el servidor.
type SaleLineRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	LineTotal *decimal.Decimal `json:"line_total,omitempty"`
}

// UpdateSaleRequest body para PATCH /api/sales/:id (solo notas).
type UpdateSaleRequest struct {
	Notes string `json:"notes"`
}

// SaleLineResponse línea de venta en respuestas.
type SaleLineResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleResponse venta en respuestas.
type SaleResponse struct {
	ID         string             `json:"id"`
	Number     string             `json:"number"`
	Date       time.Time          `json:"date"`
	SellerID   string             `json:"seller_id"`
	ClientID   string             `json:"client_id"`
	ClientName string             `json:"client_name,omitempty"`
	Total      decimal.Decimal    `json:"total"`
	Notes      string             `json:"notes,omitempty"`
	CreatedBy  string             `json:"created_by"`
	UpdatedAt  time.Time          `json:"updated_at"`
	UpdatedBy  string             `json:"updated_by"`
	Lines      []SaleLineResponse `json:"lines"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
