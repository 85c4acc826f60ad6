package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Repository es el puerto de persistencia genérico. List y ListPage
// aplican los mismos filtros y orden; ListPage añade la ventana de
// página y Count devuelve el total del mismo conjunto filtrado.
type Repository[T Record] interface {
	Insert(ctx context.Context, rec T) error
	GetByID(ctx context.Context, id uuid.UUID) (T, error)
	Update(ctx context.Context, rec T) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q Query) ([]T, error)
	ListPage(ctx context.Context, q Query) ([]T, error)
	Count(ctx context.Context, q Query) (int64, error)
}

// Capability es el permiso que exige cada operación del borde.
type Capability string

const (
	CapabilityRead  Capability = "read"
	CapabilityWrite Capability = "write"
)

// CapabilityChecker decide si la petición actual puede ejercer una
// capability. Los fallos llegan ya clasificados como StatusError.
type CapabilityChecker interface {
	Check(ctx context.Context, cap Capability) error
}

// AuditEntry es una mutación registrada para analítica.
type AuditEntry struct {
	ID        uuid.UUID
	Entity    string
	RecordID  string
	EventType string
	Payload   json.RawMessage
	EventTime time.Time
}

// AuditSink recibe lotes de entradas de auditoría.
type AuditSink interface {
	LogBatch(ctx context.Context, entries []AuditEntry) error
}

// DailyTrend agrega las mutaciones de un día.
type DailyTrend struct {
	Day     time.Time `json:"day"`
	Created uint64    `json:"created"`
	Updated uint64    `json:"updated"`
	Deleted uint64    `json:"deleted"`
}
