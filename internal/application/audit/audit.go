// Package audit acumula los cambios de una operación y los entrega a la bitácora
// después del commit. Una falla de la bitácora nunca oculta el resultado de la operación.
package audit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	"github.com/jhoicas/inventario-engine/pkg/logger"
)

// Tablas auditadas.
const (
	TableSales          = "sales"
	TableStockMovements = "stock_movements"
	TableStockRecords   = "stock_records"
	TableProducts       = "products"
)

// Sink destino de las entradas de auditoría: LogChange(table, recordId, action, field, old, new, actor).
type Sink interface {
	LogChange(ctx context.Context, entry entity.AuditEntry) error
}

// Trail cambios acumulados durante una transacción, todos del mismo actor.
type Trail struct {
	actorID string
	at      time.Time
	entries []entity.AuditEntry
}

// NewTrail construye un trail vacío.
func NewTrail(actorID string, at time.Time) *Trail {
	return &Trail{actorID: actorID, at: at}
}

// Record agrega un cambio.
func (t *Trail) Record(table, recordID, action, field, oldValue, newValue string) {
	t.entries = append(t.entries, entity.AuditEntry{
		ID:        uuid.New().String(),
		Table:     table,
		RecordID:  recordID,
		Action:    action,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		ActorID:   t.actorID,
		CreatedAt: t.at,
	})
}

// StockChange registra el cambio de cantidad de un StockRecord.
func (t *Trail) StockChange(productID, warehouseID string, before, after int) {
	t.Record(TableStockRecords, StockRecordID(productID, warehouseID), entity.AuditActionUpdate,
		"quantity", strconv.Itoa(before), strconv.Itoa(after))
}

// Entries devuelve una copia de las entradas acumuladas.
func (t *Trail) Entries() []entity.AuditEntry {
	out := make([]entity.AuditEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len cantidad de entradas.
func (t *Trail) Len() int { return len(t.entries) }

// StockRecordID identificador de auditoría de un StockRecord.
func StockRecordID(productID, warehouseID string) string {
	return productID + "@" + warehouseID
}

// Recorder entrega trails al Sink en modo best-effort.
type Recorder struct {
	sink Sink
	log  *logger.Logger
}

// NewRecorder construye el recorder. sink puede ser nil (solo log).
func NewRecorder(sink Sink, log *logger.Logger) *Recorder {
	return &Recorder{sink: sink, log: log}
}

// Flush escribe todas las entradas del trail. Los errores se registran como warn y se descartan.
// Devuelve cuántas entradas se escribieron.
func (r *Recorder) Flush(ctx context.Context, trail *Trail) int {
	if trail == nil || r.sink == nil {
		return 0
	}
	written := 0
	for _, e := range trail.entries {
		if err := r.sink.LogChange(ctx, e); err != nil {
			r.log.Warn().Err(err).
				Str("table", e.Table).
				Str("record_id", e.RecordID).
				Str("field", e.Field).
				Msg("auditoría: no se pudo registrar el cambio")
			continue
		}
		written++
	}
	return written
}
