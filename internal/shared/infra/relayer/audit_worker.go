package relayer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
	sharedEvents "github.com/davicafu/crudlab/internal/shared/infra/events"
)

// AuditWorker drena eventos de mutación del bus y los vuelca por lotes
// en el sink analítico. Pierde eventos antes que bloquear el camino de
// las peticiones: un fallo del sink se loguea y el lote se descarta.
type AuditWorker struct {
	events <-chan interface{}
	sink   sharedDomain.AuditSink
	period time.Duration
	limit  int
	log    *zap.Logger
}

func NewAuditWorker(events <-chan interface{}, sink sharedDomain.AuditSink, period time.Duration, limit int, log *zap.Logger) *AuditWorker {
	return &AuditWorker{
		events: events,
		sink:   sink,
		period: period,
		limit:  limit,
		log:    log,
	}
}

// Start lanza el worker en background hasta que el contexto se cancele.
func (w *AuditWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *AuditWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.period)
	defer ticker.Stop()

	var batch []sharedDomain.AuditEntry

	for {
		select {
		case raw, ok := <-w.events:
			if !ok {
				w.flush(ctx, batch)
				return
			}
			evt, isEvent := raw.(sharedEvents.IntegrationEvent)
			if !isEvent {
				continue
			}
			batch = append(batch, toAuditEntry(evt))
			if len(batch) >= w.limit {
				w.flush(ctx, batch)
				batch = nil
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(ctx, batch)
				batch = nil
			}

		case <-ctx.Done():
			w.flush(context.Background(), batch)
			return
		}
	}
}

func (w *AuditWorker) flush(ctx context.Context, batch []sharedDomain.AuditEntry) {
	if len(batch) == 0 {
		return
	}

	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := w.sink.LogBatch(flushCtx, batch); err != nil {
		w.log.Error("Failed to flush audit batch",
			zap.Int("size", len(batch)),
			zap.Error(err))
		return
	}
	w.log.Debug("Audit batch flushed", zap.Int("size", len(batch)))
}

// toAuditEntry deriva la entidad del tipo de evento ("item.created").
func toAuditEntry(evt sharedEvents.IntegrationEvent) sharedDomain.AuditEntry {
	entity := evt.Type
	if i := strings.IndexByte(evt.Type, '.'); i > 0 {
		entity = evt.Type[:i]
	}
	return sharedDomain.AuditEntry{
		ID:        uuid.New(),
		Entity:    entity,
		RecordID:  evt.Key,
		EventType: evt.Type,
		Payload:   evt.Data,
		EventTime: evt.Timestamp,
	}
}
