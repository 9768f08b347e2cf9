package sales

import (
	"context"

	"github.com/jhoicas/inventario-engine/internal/domain/entity"
)

// ReceiptLine línea de venta enriquecida para el comprobante.
type ReceiptLine struct {
	entity.SaleLine
	ProductName string
	SKU         string
}

// ReceiptGenerator genera el comprobante PDF de una venta.
type ReceiptGenerator interface {
	GenerateSaleReceipt(ctx context.Context, sale *entity.Sale, client *entity.Client, lines []ReceiptLine) ([]byte, error)
}
