package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AsyncSet repuebla la caché en background sin bloquear la respuesta.
// Sólo el camino de lectura lo usa: una mutación nunca deja su escritura
// de caché pendiente al devolver el control.
func AsyncSet(cache Cache, key string, value interface{}, ttlSecs int, log *zap.Logger) {
	if cache == nil {
		return
	}

	go func() {
		// Operación de "dispara y olvida": queremos que la caché se
		// actualice aunque el contexto de la petición ya esté cancelado.
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		if err := cache.Set(ctx, key, value, ttlSecs); err != nil {
			log.Warn("Cache update failed",
				zap.String("key", key),
				zap.Error(err))
		}
	}()
}

// SyncSet actualiza la caché dentro del camino de la petición; un fallo
// de caché se loguea y no falla la operación.
func SyncSet(ctx context.Context, cache Cache, key string, value interface{}, ttlSecs int, log *zap.Logger) {
	if cache == nil {
		return
	}

	if err := cache.Set(ctx, key, value, ttlSecs); err != nil {
		log.Warn("Cache update failed",
			zap.String("key", key),
			zap.Error(err))
	}
}

// SyncDelete invalida la key dentro del camino de la petición.
func SyncDelete(ctx context.Context, cache Cache, key string, log *zap.Logger) {
	if cache == nil {
		return
	}

	if err := cache.Delete(ctx, key); err != nil {
		log.Warn("Cache deletion failed",
			zap.String("key", key),
			zap.Error(err))
	}
}
