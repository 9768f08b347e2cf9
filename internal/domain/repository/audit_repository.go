package repository

import (
	"context"

	"github.com/jhoicas/inventario-engine/internal/domain/entity"
)

// AuditRepository persistencia de la bitácora de cambios.
type AuditRepository interface {
	Insert(ctx context.Context, entry *entity.AuditEntry) error
	ListByRecord(ctx context.Context, table, recordID string) ([]*entity.AuditEntry, error)
}
