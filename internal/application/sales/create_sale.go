package sales

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-engine/internal/application/audit"
	"github.com/jhoicas/inventario-engine/internal/application/dto"
	"github.com/jhoicas/inventario-engine/internal/application/inventory"
	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-engine/internal/domain/inventory"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
	"github.com/jhoicas/inventario-engine/pkg/logger"
)

// CreateSaleUseCase crea una venta y descuenta el inventario en una sola transacción,
// bajo el mismo candado global que los movimientos.
type CreateSaleUseCase struct {
	txRunner inventory.TxRunner
	gate     *inventory.Gate
	recorder *audit.Recorder
	log      *logger.Logger
	now      func() time.Time

	// Solo lectura (fuera de la transacción).
	sales    repository.SaleRepository
	clients  repository.ClientRepository
	products repository.ProductRepository
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(
	txRunner inventory.TxRunner,
	gate *inventory.Gate,
	recorder *audit.Recorder,
	sales repository.SaleRepository,
	clients repository.ClientRepository,
	products repository.ProductRepository,
	log *logger.Logger,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner: txRunner,
		gate:     gate,
		recorder: recorder,
		log:      log.Component("sales"),
		now:      time.Now,
		sales:    sales,
		clients:  clients,
		products: products,
	}
}

// SaleInput entrada para registrar una venta. ActorID vacío = SellerID.
type SaleInput struct {
	SellerID string
	ClientID string
	ActorID  string
	Notes    string
	Lines    []SaleLineInput
}

// SaleLineInput línea de venta. UnitPrice nil = precio de catálogo.
type SaleLineInput struct {
	ProductID string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// SaleResult venta registrada.
type SaleResult struct {
	ID     string
	Number string
	Total  decimal.Decimal
}

// CreateSale valida cliente y líneas, verifica stock total por producto agregado,
// persiste cabecera y líneas y descuenta por bodega en orden alfabético. Todo o nada.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, in SaleInput) (*SaleResult, error) {
	if err := validateSale(in); err != nil {
		return nil, err
	}
	actor := in.ActorID
	if actor == "" {
		actor = in.SellerID
	}

	release, err := uc.gate.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, span := tracer.Start(ctx, "sales.CreateSale")
	defer span.End()
	span.SetAttributes(attribute.Int("sale.lines", len(in.Lines)))

	now := uc.now()
	trail := audit.NewTrail(actor, now)
	var result *SaleResult

	err = uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		var err error
		result, err = uc.create(ctx, repos, in, actor, now, trail)
		return err
	})
	if err != nil {
		span.RecordError(err)
		if domain.IsConsistencyFailure(err) {
			uc.log.Error().Err(err).
				Str("seller", in.SellerID).
				Str("client", in.ClientID).
				Int("lines", len(in.Lines)).
				Msg("falla de consistencia al registrar venta; transacción revertida")
		} else if !domain.IsBusinessError(err) {
			uc.log.Error().Err(err).Str("client", in.ClientID).Msg("registrar venta")
		}
		return nil, err
	}

	uc.recorder.Flush(ctx, trail)
	salesCreated.Add(ctx, 1)
	uc.log.Info().
		Str("sale_id", result.ID).
		Str("number", result.Number).
		Str("total", result.Total.StringFixed(2)).
		Str("seller", in.SellerID).
		Msg("venta registrada")
	return result, nil
}

func (uc *CreateSaleUseCase) create(
	ctx context.Context,
	repos inventory.Repos,
	in SaleInput,
	actor string,
	now time.Time,
	trail *audit.Trail,
) (*SaleResult, error) {
	client, err := repos.Clients.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, in.ClientID)
	}
	if !client.Active {
		return nil, fmt.Errorf("%w: %s", domain.ErrClientInactive, client.Name)
	}

	ids := make([]string, len(in.Lines))
	qtys := make([]int, len(in.Lines))
	for i, l := range in.Lines {
		ids[i], qtys[i] = l.ProductID, l.Quantity
	}
	demands := invdomain.Aggregate(ids, qtys)

	ledger := inventory.NewLedger(repos.Stock)
	products := make(map[string]*entity.Product, len(demands))
	for _, d := range demands {
		p, err := inventory.ActiveProduct(ctx, repos.Products, d.ProductID)
		if err != nil {
			return nil, err
		}
		sources, err := ledger.LockSources(ctx, d.ProductID)
		if err != nil {
			return nil, err
		}
		if available := invdomain.Total(sources); d.Quantity > available {
			return nil, &domain.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   d.Quantity,
				Available:   available,
			}
		}
		products[p.ID] = p
	}

	number, err := inventory.NextNumber(ctx, func(attempt int) string {
		return invdomain.SaleNumber(now, attempt)
	}, repos.Sales.NumberExists)
	if err != nil {
		return nil, err
	}

	sale := &entity.Sale{
		ID:        uuid.New().String(),
		Number:    number,
		Date:      now,
		SellerID:  in.SellerID,
		ClientID:  client.ID,
		Notes:     in.Notes,
		CreatedAt: now,
		CreatedBy: actor,
		UpdatedAt: now,
		UpdatedBy: actor,
		Lines:     make([]entity.SaleLine, 0, len(in.Lines)),
	}
	total := decimal.Zero
	for _, l := range in.Lines {
		price := products[l.ProductID].Price
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		lineTotal := price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		total = total.Add(lineTotal)
		sale.Lines = append(sale.Lines, entity.SaleLine{
			ID:        uuid.New().String(),
			SaleID:    sale.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: price,
			LineTotal: lineTotal,
		})
	}
	sale.Total = total

	if err := repos.Sales.Create(ctx, sale); err != nil {
		return nil, err
	}

	allocator := inventory.NewAllocator(ledger, uc.log)
	for _, d := range demands {
		deductions, err := allocator.Deduct(ctx, products[d.ProductID], d.Quantity, actor)
		if err != nil {
			return nil, err
		}
		for _, ded := range deductions {
			trail.StockChange(ded.ProductID, ded.WarehouseID, ded.Before, ded.After)
		}
	}
	trail.Record(audit.TableSales, sale.ID, entity.AuditActionInsert, "number", "", sale.Number)

	return &SaleResult{ID: sale.ID, Number: sale.Number, Total: sale.Total}, nil
}

// validateSale forma de la entrada. Cada línea se valida antes de agrupar.
func validateSale(in SaleInput) error {
	if in.SellerID == "" {
		return domain.Invalid("seller_id", "requerido")
	}
	if in.ClientID == "" {
		return domain.ErrClientRequired
	}
	if len(in.Lines) == 0 {
		return domain.Invalid("lines", "se requiere al menos una línea")
	}
	for i, l := range in.Lines {
		field := "lines[" + strconv.Itoa(i) + "]"
		if l.ProductID == "" {
			return domain.Invalid(field+".product_id", "requerido")
		}
		if l.Quantity <= 0 {
			return domain.Invalid(field+".quantity", "debe ser mayor que cero")
		}
		if l.Quantity > entity.MaxQuantity {
			return domain.Invalid(field+".quantity", "excede el máximo permitido")
		}
		if l.UnitPrice != nil && l.UnitPrice.IsNegative() {
			return domain.Invalid(field+".unit_price", "no puede ser negativo")
		}
	}
	return nil
}

// GetSale venta con líneas, nombre del cliente y de los productos.
func (uc *CreateSaleUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	resp := toSaleResponse(sale)
	if c, _ := uc.clients.GetByID(ctx, sale.ClientID); c != nil {
		resp.ClientName = c.Name
	}
	for i := range resp.Lines {
		if p, _ := uc.products.GetByID(ctx, resp.Lines[i].ProductID); p != nil {
			resp.Lines[i].ProductName = p.Name
		}
	}
	return resp, nil
}

// ListSales ventas más recientes primero.
func (uc *CreateSaleUseCase) ListSales(ctx context.Context, limit, offset int) ([]dto.SaleResponse, error) {
	limit, offset = inventory.NormalizePage(limit, offset)
	list, err := uc.sales.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toSaleResponse(s))
	}
	return out, nil
}

// UpdateSaleNotes único cambio permitido sobre una venta registrada; queda auditado.
func (uc *CreateSaleUseCase) UpdateSaleNotes(ctx context.Context, id, notes, actorID string) error {
	if actorID == "" {
		return domain.Invalid("actor_id", "requerido")
	}
	now := uc.now()
	trail := audit.NewTrail(actorID, now)
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		sale, err := repos.Sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
		}
		if sale.Notes == notes {
			return nil
		}
		if err := repos.Sales.UpdateNotes(ctx, id, notes, actorID, now); err != nil {
			return err
		}
		trail.Record(audit.TableSales, id, entity.AuditActionUpdate, "notes", sale.Notes, notes)
		return nil
	})
	if err != nil {
		return err
	}
	uc.recorder.Flush(ctx, trail)
	return nil
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:        s.ID,
		Number:    s.Number,
		Date:      s.Date,
		SellerID:  s.SellerID,
		ClientID:  s.ClientID,
		Total:     s.Total,
		Notes:     s.Notes,
		CreatedBy: s.CreatedBy,
		UpdatedAt: s.UpdatedAt,
		UpdatedBy: s.UpdatedBy,
		Lines:     make([]dto.SaleLineResponse, 0, len(s.Lines)),
	}
	for _, l := range s.Lines {
		resp.Lines = append(resp.Lines, dto.SaleLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	return resp
}
