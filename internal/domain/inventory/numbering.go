package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/inventario-engine/internal/domain/entity"
)

// Prefijos de consecutivo por tipo de movimiento.
var movementPrefixes = map[entity.MovementType]string{
	entity.MovementTypeReceipt:    "ENT",
	entity.MovementTypeIssue:      "SAL",
	entity.MovementTypeTransfer:   "TRA",
	entity.MovementTypeAdjustment: "AJU",
}

// SaleNumber S-<yyyyMMdd>-<HHmmss>; attempt > 0 agrega un sufijo para evitar colisiones en el mismo segundo.
func SaleNumber(at time.Time, attempt int) string {
	return withSuffix("S-"+at.Format(entity.SaleNumberLayout), attempt)
}

// MovementNumber <prefijo>-<yyyyMMdd>-<HHmmss>, prefijo según el tipo.
func MovementNumber(t entity.MovementType, at time.Time, attempt int) string {
	prefix, ok := movementPrefixes[t]
	if !ok {
		prefix = "MOV"
	}
	return withSuffix(prefix+"-"+at.Format(entity.SaleNumberLayout), attempt)
}

func withSuffix(base string, attempt int) string {
	if attempt <= 0 {
		return base
	}
	return fmt.Sprintf("%s-%02d", base, attempt)
}
