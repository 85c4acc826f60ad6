package bus

import "context"

// Keyer expone la clave de partición de un evento o entidad.
type Keyer interface {
	PartitionKey() string
}

// EventBus publica eventos de integración. La semántica de topic y el
// formato del payload los decide cada adapter.
type EventBus interface {
	Publish(ctx context.Context, event interface{}) error
}
