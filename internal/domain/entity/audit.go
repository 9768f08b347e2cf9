package entity

import "time"

// Acciones de auditoría.
const (
	AuditActionInsert = "INSERT"
	AuditActionUpdate = "UPDATE"
)

// AuditEntry cambio auditado sobre un registro.
type AuditEntry struct {
	ID        string
	Table     string
	RecordID  string
	Action    string
	Field     string
	OldValue  string
	NewValue  string
	ActorID   string
	CreatedAt time.Time
}
