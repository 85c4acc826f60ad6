package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
	sharedEvents "github.com/davicafu/crudlab/internal/shared/infra/events"
	sharedBus "github.com/davicafu/crudlab/internal/shared/infra/platform/bus"
	sharedCache "github.com/davicafu/crudlab/internal/shared/infra/platform/cache"
	sharedUtils "github.com/davicafu/crudlab/internal/shared/infra/utils"
)

const (
	cacheTTLSecs = 60
	readAttempts = 3
	retryDelay   = 100 * time.Millisecond
)

// CRUDService implementa los casos de uso genéricos de una entidad:
// lecturas con cache-aside y reintentos, mutaciones con invalidación de
// caché y publicación de eventos, y listados con metadatos de paginación.
type CRUDService[T sharedDomain.Record] struct {
	entity string // nombre en minúsculas para cache keys y tipos de evento
	repo   sharedDomain.Repository[T]
	cache  sharedCache.Cache
	bus    sharedBus.EventBus
	log    *zap.Logger
}

// NewCRUDService constructor. cache y bus pueden ser nil.
func NewCRUDService[T sharedDomain.Record](entity string, repo sharedDomain.Repository[T], cache sharedCache.Cache, bus sharedBus.EventBus, log *zap.Logger) *CRUDService[T] {
	return &CRUDService[T]{
		entity: strings.ToLower(entity),
		repo:   repo,
		cache:  cache,
		bus:    bus,
		log:    log,
	}
}

func (s *CRUDService[T]) cacheKey(id uuid.UUID) string {
	return sharedDomain.CacheKeyByID(s.entity, id)
}

// Create persiste el registro (id y timestamps ya asignados por el
// constructor de la entidad) y devuelve lo almacenado.
func (s *CRUDService[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := s.repo.Insert(ctx, rec); err != nil {
		return zero, err
	}

	sharedCache.SyncSet(ctx, s.cache, s.cacheKey(rec.RecordID()), rec, cacheTTLSecs, s.log)
	s.publish(ctx, s.entity+".created", rec.RecordID(), rec)
	return rec, nil
}

// Get obtiene un registro (primero intenta desde cache, luego el repo
// con reintentos) y repuebla la caché en background.
func (s *CRUDService[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T

	if s.cache != nil {
		var cached T
		if ok, _ := s.cache.Get(ctx, s.cacheKey(id), &cached); ok {
			return cached, nil
		}
	}

	var rec T
	err := sharedUtils.Retry(ctx, readAttempts, retryDelay, func() error {
		var err error
		rec, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return zero, err
	}

	sharedCache.AsyncSet(s.cache, s.cacheKey(id), rec, cacheTTLSecs, s.log)
	return rec, nil
}

// GetForUpdate lee directamente del repo, sin consultar ni repoblar la
// caché: es la lectura previa de las rutas de mutación, que no debe
// dejar escrituras de caché pendientes compitiendo con la invalidación.
func (s *CRUDService[T]) GetForUpdate(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T

	var rec T
	err := sharedUtils.Retry(ctx, readAttempts, retryDelay, func() error {
		var err error
		rec, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return zero, err
	}
	return rec, nil
}

// Update aplica la mutación, refresca updated_at y escribe la caché de
// forma síncrona: al devolver el control el estado anterior ya no es
// visible.
func (s *CRUDService[T]) Update(ctx context.Context, rec T) error {
	rec.Touch(time.Now().UTC())

	if err := s.repo.Update(ctx, rec); err != nil {
		return err
	}

	sharedCache.SyncSet(ctx, s.cache, s.cacheKey(rec.RecordID()), rec, cacheTTLSecs, s.log)
	s.publish(ctx, s.entity+".updated", rec.RecordID(), rec)
	return nil
}

// Delete elimina el registro; ErrNotFound si no existía. La invalidación
// de caché es síncrona para que un get posterior nunca sirva el registro
// borrado.
func (s *CRUDService[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	sharedCache.SyncDelete(ctx, s.cache, s.cacheKey(id), s.log)
	s.publish(ctx, s.entity+".deleted", id, id)
	return nil
}

// ListAll devuelve el conjunto completo que cumple la query.
func (s *CRUDService[T]) ListAll(ctx context.Context, q sharedDomain.Query) ([]T, error) {
	return s.repo.List(ctx, q)
}

// ListPage devuelve la página pedida junto con los metadatos derivados
// del MISMO conjunto filtrado. Una página fuera de rango devuelve slice
// vacío con metadatos correctos.
func (s *CRUDService[T]) ListPage(ctx context.Context, q sharedDomain.Query) ([]T, sharedDomain.PageMeta, error) {
	total, err := s.repo.Count(ctx, q)
	if err != nil {
		return nil, sharedDomain.PageMeta{}, err
	}

	recs, err := s.repo.ListPage(ctx, q)
	if err != nil {
		return nil, sharedDomain.PageMeta{}, err
	}

	return recs, sharedDomain.NewPageMeta(total, q.Page, q.Limit), nil
}

// publish emite el evento de mutación sin bloquear ni fallar la petición.
func (s *CRUDService[T]) publish(ctx context.Context, eventType string, id uuid.UUID, payload interface{}) {
	if s.bus == nil {
		return
	}

	evt, err := sharedEvents.NewIntegrationEvent(eventType, id.String(), payload)
	if err != nil {
		s.log.Warn("Failed to build integration event", zap.String("type", eventType), zap.Error(err))
		return
	}

	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.bus.Publish(pubCtx, evt); err != nil {
			s.log.Warn("Failed to publish event", zap.String("type", eventType), zap.Error(err))
		}
	}()
}
