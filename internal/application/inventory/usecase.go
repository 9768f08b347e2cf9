package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-engine/internal/application/audit"
	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-engine/internal/domain/inventory"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
	"github.com/jhoicas/inventario-engine/pkg/logger"
)

// maxNumberAttempts intentos de sufijo para el consecutivo antes de rendirse.
const maxNumberAttempts = 100

// RegisterMovementUseCase registra movimientos de inventario (RECEIPT, ISSUE, TRANSFER, ADJUSTMENT)
// bajo el candado global y en una sola transacción con bloqueo de filas (SELECT FOR UPDATE).
type RegisterMovementUseCase struct {
	txRunner TxRunner
	gate     *Gate
	recorder *audit.Recorder
	log      *logger.Logger
	now      func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner TxRunner, gate *Gate, recorder *audit.Recorder, log *logger.Logger) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner: txRunner,
		gate:     gate,
		recorder: recorder,
		log:      log.Component("movements"),
		now:      time.Now,
	}
}

// MovementInput entrada para registrar un movimiento.
// RECEIPT: destino. ISSUE: origen. TRANSFER: origen y destino distintos. ADJUSTMENT: destino y motivo;
// en ajustes la cantidad lleva signo (negativa descuenta) y no puede ser cero.
type MovementInput struct {
	Type                   entity.MovementType
	SourceWarehouseID      string
	DestinationWarehouseID string
	Reason                 string
	Notes                  string
	ActorID                string
	Lines                  []MovementLineInput

	// Solo RECEIPT: concilia precios de catálogo en la misma transacción.
	ApplyPrices        bool
	ConfirmLowerPrices bool
}

// MovementLineInput línea de movimiento. UnitPrice solo se usa en entradas.
type MovementLineInput struct {
	ProductID string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// MovementResult resultado de un movimiento registrado.
type MovementResult struct {
	ID           string
	Number       string
	PriceUpdates []entity.PriceUpdateInfo
}

// movementRule campos requeridos y efecto de un tipo de movimiento.
// source: la línea descuenta de origen. destination: la línea suma en destino.
type movementRule struct {
	source      bool
	destination bool
	reason      bool
	signed      bool
}

func ruleFor(t entity.MovementType) (movementRule, error) {
	switch t {
	case entity.MovementTypeReceipt:
		return movementRule{destination: true}, nil
	case entity.MovementTypeIssue:
		return movementRule{source: true}, nil
	case entity.MovementTypeTransfer:
		return movementRule{source: true, destination: true}, nil
	case entity.MovementTypeAdjustment:
		return movementRule{destination: true, reason: true, signed: true}, nil
	default:
		return movementRule{}, domain.ErrUnknownMovementType
	}
}

// CreateMovement valida según el tipo, verifica existencias contra la bodega indicada,
// persiste cabecera y líneas, aplica el efecto vía Ledger y audita. Todo o nada.
func (uc *RegisterMovementUseCase) CreateMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	rule, err := validateMovement(in)
	if err != nil {
		return nil, err
	}

	release, err := uc.gate.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, span := tracer.Start(ctx, "inventory.CreateMovement")
	defer span.End()
	span.SetAttributes(attribute.String("movement.type", in.Type.String()), attribute.Int("movement.lines", len(in.Lines)))

	now := uc.now()
	trail := audit.NewTrail(in.ActorID, now)
	var result *MovementResult

	err = uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		result, err = uc.register(ctx, repos, rule, in, now, trail)
		return err
	})
	if err != nil {
		span.RecordError(err)
		if domain.IsConsistencyFailure(err) {
			uc.log.Error().Err(err).
				Str("type", in.Type.String()).
				Str("source", in.SourceWarehouseID).
				Str("destination", in.DestinationWarehouseID).
				Str("actor", in.ActorID).
				Msg("falla de consistencia al registrar movimiento; transacción revertida")
		} else if !domain.IsBusinessError(err) {
			uc.log.Error().Err(err).Str("type", in.Type.String()).Msg("registrar movimiento")
		}
		return nil, err
	}

	uc.recorder.Flush(ctx, trail)
	movementsCreated.Add(ctx, 1)
	uc.log.Info().
		Str("movement_id", result.ID).
		Str("number", result.Number).
		Str("type", in.Type.String()).
		Int("lines", len(in.Lines)).
		Str("actor", in.ActorID).
		Msg("movimiento registrado")
	return result, nil
}

func (uc *RegisterMovementUseCase) register(
	ctx context.Context,
	repos Repos,
	rule movementRule,
	in MovementInput,
	now time.Time,
	trail *audit.Trail,
) (*MovementResult, error) {
	var source, destination *entity.Warehouse
	var err error
	if rule.source {
		if source, err = ActiveWarehouse(ctx, repos.Warehouses, in.SourceWarehouseID); err != nil {
			return nil, err
		}
	}
	if rule.destination {
		if destination, err = ActiveWarehouse(ctx, repos.Warehouses, in.DestinationWarehouseID); err != nil {
			return nil, err
		}
	}

	// Productos: existen y están activos.
	products := make(map[string]*entity.Product, len(in.Lines))
	for _, l := range in.Lines {
		if _, ok := products[l.ProductID]; ok {
			continue
		}
		p, err := ActiveProduct(ctx, repos.Products, l.ProductID)
		if err != nil {
			return nil, err
		}
		products[l.ProductID] = p
	}

	ledger := NewLedger(repos.Stock)
	if rule.source {
		if err := checkSufficiency(ctx, ledger, source, in.Lines, products, -1); err != nil {
			return nil, err
		}
	}
	if rule.signed {
		if err := checkSufficiency(ctx, ledger, destination, in.Lines, products, 1); err != nil {
			return nil, err
		}
	}

	number, err := NextNumber(ctx, func(attempt int) string {
		return invdomain.MovementNumber(in.Type, now, attempt)
	}, repos.Movements.NumberExists)
	if err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:                     uuid.New().String(),
		Number:                 number,
		Type:                   in.Type,
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Reason:                 strings.TrimSpace(in.Reason),
		Notes:                  in.Notes,
		CreatedAt:              now,
		CreatedBy:              in.ActorID,
		Lines:                  make([]entity.StockMovementLine, 0, len(in.Lines)),
	}
	if !rule.source {
		mov.SourceWarehouseID = ""
	}
	if !rule.destination {
		mov.DestinationWarehouseID = ""
	}
	for _, l := range in.Lines {
		mov.Lines = append(mov.Lines, entity.StockMovementLine{
			ID:         uuid.New().String(),
			MovementID: mov.ID,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
		})
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	trail.Record(audit.TableStockMovements, mov.ID, entity.AuditActionInsert, "number", "", mov.Number)

	// Efecto por línea vía Ledger.
	for _, l := range mov.Lines {
		if rule.source {
			if err := shift(ctx, ledger, trail, l.ProductID, source.ID, -l.Quantity, in.ActorID); err != nil {
				return nil, err
			}
		}
		if rule.destination {
			if err := shift(ctx, ledger, trail, l.ProductID, destination.ID, l.Quantity, in.ActorID); err != nil {
				return nil, err
			}
		}
	}

	result := &MovementResult{ID: mov.ID, Number: mov.Number}
	if in.ApplyPrices {
		priceLines := make([]invdomain.PriceLine, 0, len(in.Lines))
		for _, l := range in.Lines {
			priceLines = append(priceLines, invdomain.PriceLine{ProductID: l.ProductID, UnitPrice: l.UnitPrice})
		}
		result.PriceUpdates, err = applyPriceUpdates(ctx, repos.Products, priceLines, in.ConfirmLowerPrices, trail, now)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// validateMovement forma de la entrada según el tipo; no consulta la BD.
func validateMovement(in MovementInput) (movementRule, error) {
	rule, err := ruleFor(in.Type)
	if err != nil {
		return rule, err
	}
	if rule.source && in.SourceWarehouseID == "" {
		return rule, domain.ErrMissingSourceWarehouse
	}
	if rule.destination && in.DestinationWarehouseID == "" {
		return rule, domain.ErrMissingDestinationWarehouse
	}
	if rule.source && rule.destination && in.SourceWarehouseID == in.DestinationWarehouseID {
		return rule, domain.ErrSameWarehouse
	}
	if rule.reason && strings.TrimSpace(in.Reason) == "" {
		return rule, domain.ErrMissingReason
	}
	if in.ApplyPrices && in.Type != entity.MovementTypeReceipt {
		return rule, domain.Invalid("apply_prices", "solo aplica a entradas")
	}
	if in.ActorID == "" {
		return rule, domain.Invalid("actor_id", "requerido")
	}
	if len(in.Lines) == 0 {
		return rule, domain.Invalid("lines", "se requiere al menos una línea")
	}
	for i, l := range in.Lines {
		field := "lines[" + strconv.Itoa(i) + "]"
		if l.ProductID == "" {
			return rule, domain.Invalid(field+".product_id", "requerido")
		}
		switch {
		case rule.signed && l.Quantity == 0:
			return rule, domain.Invalid(field+".quantity", "debe ser distinta de cero")
		case !rule.signed && l.Quantity <= 0:
			return rule, domain.Invalid(field+".quantity", "debe ser mayor que cero")
		case l.Quantity > entity.MaxQuantity || l.Quantity < -entity.MaxQuantity:
			return rule, domain.Invalid(field+".quantity", "excede el máximo permitido")
		}
		if l.UnitPrice != nil && l.UnitPrice.IsNegative() {
			return rule, domain.Invalid(field+".unit_price", "no puede ser negativo")
		}
	}
	return rule, nil
}

// checkSufficiency simula las líneas sobre la bodega indicada (sign -1 descuenta la cantidad,
// 1 aplica la cantidad con su signo) y falla si alguna dejaría stock negativo.
func checkSufficiency(
	ctx context.Context,
	ledger *Ledger,
	wh *entity.Warehouse,
	lines []MovementLineInput,
	products map[string]*entity.Product,
	sign int,
) error {
	current := make(map[string]int)
	running := make(map[string]int)
	for _, l := range lines {
		if _, ok := current[l.ProductID]; !ok {
			qty, err := ledger.LockQuantity(ctx, l.ProductID, wh.ID)
			if err != nil {
				return err
			}
			current[l.ProductID] = qty
			running[l.ProductID] = qty
		}
		delta := sign * l.Quantity
		running[l.ProductID] += delta
		if running[l.ProductID] < 0 {
			return &domain.InsufficientStockError{
				ProductID:     l.ProductID,
				ProductName:   products[l.ProductID].Name,
				WarehouseName: wh.Name,
				Requested:     totalOut(lines, l.ProductID, sign),
				Available:     current[l.ProductID],
			}
		}
	}
	return nil
}

// totalOut unidades que las líneas sacan del producto en la bodega.
func totalOut(lines []MovementLineInput, productID string, sign int) int {
	total := 0
	for _, l := range lines {
		if l.ProductID != productID {
			continue
		}
		if d := sign * l.Quantity; d < 0 {
			total -= d
		}
	}
	return total
}

// shift suma delta a la cantidad de (producto, bodega) y audita el cambio.
func shift(ctx context.Context, ledger *Ledger, trail *audit.Trail, productID, warehouseID string, delta int, actor string) error {
	before, err := ledger.LockQuantity(ctx, productID, warehouseID)
	if err != nil {
		return err
	}
	after := before + delta
	if after > entity.MaxQuantity {
		return domain.Invalid("quantity", fmt.Sprintf("el saldo superaría %d unidades", entity.MaxQuantity))
	}
	if err := ledger.SetQuantity(ctx, productID, warehouseID, after, actor); err != nil {
		return err
	}
	trail.StockChange(productID, warehouseID, before, after)
	return nil
}

// ActiveWarehouse bodega existente y activa.
func ActiveWarehouse(ctx context.Context, repo repository.WarehouseRepository, id string) (*entity.Warehouse, error) {
	wh, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	if !wh.Active {
		return nil, fmt.Errorf("%w: %s", domain.ErrWarehouseInactive, wh.Name)
	}
	return wh, nil
}

// ActiveProduct producto existente y activo.
func ActiveProduct(ctx context.Context, repo repository.ProductRepository, id string) (*entity.Product, error) {
	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	if !p.Active {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductInactive, p.Name)
	}
	return p, nil
}

// NextNumber primer consecutivo libre; format(0) es el número sin sufijo.
func NextNumber(ctx context.Context, format func(attempt int) string, exists func(context.Context, string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		n := format(attempt)
		taken, err := exists(ctx, n)
		if err != nil {
			return "", err
		}
		if !taken {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: sin consecutivo libre para %s", domain.ErrConflict, format(0))
}
