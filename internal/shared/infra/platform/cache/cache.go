package cache

import "context"

// Cache define una caché de clave-valor genérica.
type Cache interface {
	// Get intenta poblar dest (puntero) con el valor asociado a la key.
	// Devuelve (true, nil) si hay hit y dest fue rellenado.
	// Devuelve (false, nil) si es miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set serializa y guarda el valor con TTL en segundos.
	Set(ctx context.Context, key string, val interface{}, ttlSecs int) error

	// Delete elimina la key de la caché.
	Delete(ctx context.Context, key string) error
}
