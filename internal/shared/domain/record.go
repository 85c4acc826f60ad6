package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record es el contrato mínimo de una entidad persistible: identidad
// estable y refresco de su timestamp de modificación.
type Record interface {
	RecordID() uuid.UUID
	Touch(now time.Time)
}

// Schema es el registro de campos dinámicos de una entidad: qué columnas
// admiten orden y búsqueda y cuál es su campo numérico filtrable. Todo
// campo que llega por query param se valida contra este registro antes
// de tocar el backend.
type Schema struct {
	Entity       string // nombre visible en mensajes ("Item")
	Table        string // tabla o colección ("items")
	NumericField string // campo de los filtros min_value/max_value
	Sortable     []string
	Searchable   []string
}

func (s Schema) CanSort(field string) bool {
	for _, f := range s.Sortable {
		if f == field {
			return true
		}
	}
	return false
}

func (s Schema) CanSearch(field string) bool {
	for _, f := range s.Searchable {
		if f == field {
			return true
		}
	}
	return false
}

// SortField resuelve el campo de orden: vacío cae al default, cualquier
// otro valor debe estar registrado como ordenable.
func (s Schema) SortField(field string) (string, error) {
	if field == "" {
		return DefaultSortField, nil
	}
	if !s.CanSort(field) {
		return "", fmt.Errorf("%w: cannot sort by %q", ErrInvalidInput, field)
	}
	return field, nil
}

// CacheKeyByID construye la clave de caché canónica de un registro.
func CacheKeyByID(entity string, id uuid.UUID) string {
	return entity + ":id:" + id.String()
}
