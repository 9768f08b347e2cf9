package sales

import (
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/inventario-engine/pkg/telemetry"
)

const instrumentationName = "github.com/jhoicas/inventario-engine/internal/application/sales"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	salesCreated = telemetry.Counter(meter, "sales_created_total", "ventas registradas")
)
