package inventory

import (
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/inventario-engine/pkg/telemetry"
)

const instrumentationName = "github.com/jhoicas/inventario-engine/internal/application/inventory"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	movementsCreated     = telemetry.Counter(meter, "movements_created_total", "movimientos de inventario registrados")
	allocationShortfalls = telemetry.Counter(meter, "allocation_shortfalls_total", "faltantes de asignación (fallas de consistencia)")
	gateTimeouts         = telemetry.Counter(meter, "gate_timeouts_total", "esperas del candado global que superaron el timeout")
	priceUpdatesApplied  = telemetry.Counter(meter, "price_updates_applied_total", "precios de catálogo actualizados desde entradas")
)
