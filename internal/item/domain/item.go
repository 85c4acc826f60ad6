package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
)

// Item es la entidad de ejemplo del servicio: un registro con un campo
// numérico filtrable (value) y dos campos de texto buscables.
type Item struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Value       int64     `json:"value"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	_ sharedDomain.Record = (*Item)(nil)
)

// ItemRepository es el puerto de persistencia de Item.
type ItemRepository = sharedDomain.Repository[*Item]

// NewItem crea un Item con id nuevo y ambos timestamps iguales en UTC.
func NewItem(name string, value int64, description string) *Item {
	now := time.Now().UTC()
	return &Item{
		ID:          uuid.New(),
		Name:        name,
		Value:       value,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (i *Item) RecordID() uuid.UUID { return i.ID }

// Touch refresca updated_at; created_at nunca cambia tras la creación.
func (i *Item) Touch(now time.Time) { i.UpdatedAt = now }

// Schema declara los campos dinámicos válidos para ordenar y buscar.
func Schema() sharedDomain.Schema {
	return sharedDomain.Schema{
		Entity:       "Item",
		Table:        "items",
		NumericField: "value",
		Sortable:     []string{"id", "name", "value", "created_at", "updated_at"},
		Searchable:   []string{"name", "description"},
	}
}
