package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-engine/internal/application/audit"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
)

var (
	_ repository.AuditRepository = (*AuditRepo)(nil)
	_ audit.Sink                 = (*AuditRepo)(nil)
)

// AuditRepo bitácora de cambios en la tabla audit_log.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Se usa con el pool: la bitácora se escribe después del commit.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Insert persiste una entrada.
func (r *AuditRepo) Insert(ctx context.Context, e *entity.AuditEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO audit_log (id, table_name, record_id, action, field, old_value, new_value, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.Table, e.RecordID, e.Action, e.Field, e.OldValue, e.NewValue, e.ActorID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// LogChange implementa audit.Sink.
func (r *AuditRepo) LogChange(ctx context.Context, e entity.AuditEntry) error {
	return r.Insert(ctx, &e)
}

// ListByRecord historial de un registro, más antiguo primero.
func (r *AuditRepo) ListByRecord(ctx context.Context, table, recordID string) ([]*entity.AuditEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, table_name, record_id, action, field, old_value, new_value, actor_id, created_at
		FROM audit_log WHERE table_name = $1 AND record_id = $2 ORDER BY created_at, id`, table, recordID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(&e.ID, &e.Table, &e.RecordID, &e.Action, &e.Field, &e.OldValue, &e.NewValue,
			&e.ActorID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
