package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-engine/internal/application/audit"
	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-engine/internal/domain/inventory"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
	"github.com/jhoicas/inventario-engine/pkg/logger"
)

// PriceReconciliationUseCase compara precios de entradas con el catálogo y aplica los cambios.
// Los aumentos se aplican siempre; las disminuciones solo con confirmación.
type PriceReconciliationUseCase struct {
	products repository.ProductRepository
	txRunner TxRunner
	gate     *Gate
	recorder *audit.Recorder
	log      *logger.Logger
	now      func() time.Time
}

// NewPriceReconciliationUseCase construye el caso de uso.
func NewPriceReconciliationUseCase(
	products repository.ProductRepository,
	txRunner TxRunner,
	gate *Gate,
	recorder *audit.Recorder,
	log *logger.Logger,
) *PriceReconciliationUseCase {
	return &PriceReconciliationUseCase{
		products: products,
		txRunner: txRunner,
		gate:     gate,
		recorder: recorder,
		log:      log.Component("prices"),
		now:      time.Now,
	}
}

// CheckPriceUpdates una entrada por producto cuyo precio entrante positivo difiere del catálogo.
func (uc *PriceReconciliationUseCase) CheckPriceUpdates(ctx context.Context, lines []invdomain.PriceLine) ([]entity.PriceUpdateInfo, error) {
	return checkPriceUpdates(ctx, uc.products, lines)
}

// ApplyPriceUpdates aplica los cambios en una transacción y audita cada precio modificado.
func (uc *PriceReconciliationUseCase) ApplyPriceUpdates(
	ctx context.Context,
	lines []invdomain.PriceLine,
	confirmLowerPrices bool,
	actorID string,
) ([]entity.PriceUpdateInfo, error) {
	if actorID == "" {
		return nil, domain.Invalid("actor_id", "requerido")
	}
	release, err := uc.gate.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, span := tracer.Start(ctx, "inventory.ApplyPriceUpdates")
	defer span.End()

	now := uc.now()
	trail := audit.NewTrail(actorID, now)
	var updates []entity.PriceUpdateInfo
	err = uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		updates, err = applyPriceUpdates(ctx, repos.Products, lines, confirmLowerPrices, trail, now)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.recorder.Flush(ctx, trail)
	uc.log.Info().
		Str("actor", actorID).
		Int("candidates", len(updates)).
		Int("applied", countApplied(updates)).
		Msg("precios conciliados")
	return updates, nil
}

func checkPriceUpdates(ctx context.Context, products repository.ProductRepository, lines []invdomain.PriceLine) ([]entity.PriceUpdateInfo, error) {
	order, prices := invdomain.IncomingPrices(lines)
	out := make([]entity.PriceUpdateInfo, 0, len(order))
	for _, productID := range order {
		product, err := products.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
		}
		incoming := prices[productID]
		changed, needsConfirmation := invdomain.PriceChange(product.Price, incoming)
		if !changed {
			continue
		}
		out = append(out, entity.PriceUpdateInfo{
			ProductID:         product.ID,
			ProductName:       product.Name,
			CurrentPrice:      product.Price,
			NewPrice:          incoming,
			NeedsConfirmation: needsConfirmation,
		})
	}
	return out, nil
}

func applyPriceUpdates(
	ctx context.Context,
	products repository.ProductRepository,
	lines []invdomain.PriceLine,
	confirmLowerPrices bool,
	trail *audit.Trail,
	now time.Time,
) ([]entity.PriceUpdateInfo, error) {
	updates, err := checkPriceUpdates(ctx, products, lines)
	if err != nil {
		return nil, err
	}
	for i := range updates {
		u := &updates[i]
		if !invdomain.ShouldApply(u.NeedsConfirmation, confirmLowerPrices) {
			continue
		}
		if err := products.UpdatePrice(ctx, u.ProductID, u.NewPrice, now); err != nil {
			return nil, err
		}
		u.Applied = true
		priceUpdatesApplied.Add(ctx, 1)
		trail.Record(audit.TableProducts, u.ProductID, entity.AuditActionUpdate, "price",
			u.CurrentPrice.String(), u.NewPrice.String())
	}
	return updates, nil
}

func countApplied(updates []entity.PriceUpdateInfo) int {
	n := 0
	for _, u := range updates {
		if u.Applied {
			n++
		}
	}
	return n
}
