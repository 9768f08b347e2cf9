package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
)

// ReceiptUseCase genera el comprobante (PDF) de una venta registrada.
type ReceiptUseCase struct {
	sales     repository.SaleRepository
	clients   repository.ClientRepository
	products  repository.ProductRepository
	generator ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso inyectando todas sus dependencias.
func NewReceiptUseCase(
	sales repository.SaleRepository,
	clients repository.ClientRepository,
	products repository.ProductRepository,
	generator ReceiptGenerator,
) *ReceiptUseCase {
	return &ReceiptUseCase{sales: sales, clients: clients, products: products, generator: generator}
}

// SaleReceiptPDF devuelve el PDF y el nombre de archivo sugerido.
func (uc *ReceiptUseCase) SaleReceiptPDF(ctx context.Context, saleID string) (pdfBytes []byte, filename string, err error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, "", fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}

	client, err := uc.clients.GetByID(ctx, sale.ClientID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener cliente: %w", err)
	}
	if client == nil {
		return nil, "", fmt.Errorf("%w: cliente %s", domain.ErrNotFound, sale.ClientID)
	}

	lines := make([]ReceiptLine, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		rl := ReceiptLine{SaleLine: l, ProductName: "Producto " + l.ProductID}
		if p, pErr := uc.products.GetByID(ctx, l.ProductID); pErr == nil && p != nil {
			rl.ProductName = p.Name
			rl.SKU = p.SKU
		}
		lines = append(lines, rl)
	}

	pdfBytes, err = uc.generator.GenerateSaleReceipt(ctx, sale, client, lines)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("venta_%s.pdf", sale.Number), nil
}
