package events

import (
	"encoding/json"
	"time"
)

// IntegrationEvent es la base de todos los eventos de mutación que salen
// por el bus: tipo ("item.created", ...), clave de partición y payload.
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Key       string          `json:"key,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// PartitionKey implementa bus.Keyer.
func (e IntegrationEvent) PartitionKey() string {
	return e.Key
}

// NewIntegrationEvent serializa el payload y construye el evento.
func NewIntegrationEvent(eventType, key string, payload interface{}) (IntegrationEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return IntegrationEvent{}, err
	}
	return IntegrationEvent{
		Type:      eventType,
		Key:       key,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}
