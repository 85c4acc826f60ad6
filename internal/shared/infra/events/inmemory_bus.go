package events

import (
	"context"
	"sync"

	sharedBus "github.com/davicafu/crudlab/internal/shared/infra/platform/bus"
)

// InMemoryEventBus implementa un bus de eventos para UN solo topic usando
// canales de Go. Útil en despliegues locales sin Kafka.
type InMemoryEventBus struct {
	subscribers []chan interface{}
	mu          sync.RWMutex
	topic       string
}

var _ sharedBus.EventBus = (*InMemoryEventBus)(nil)

// NewInMemoryEventBus crea un bus para un topic específico.
func NewInMemoryEventBus(topic string) *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make([]chan interface{}, 0),
		topic:       topic,
	}
}

// Publish envía el evento a todos los suscriptores sin bloquear: si el
// buffer de un suscriptor está lleno, ese suscriptor pierde el evento.
func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, subChan := range b.subscribers {
		select {
		case subChan <- event:
		default:
		}
	}
	return nil
}

// Subscribe registra un nuevo oyente con el buffer indicado.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	subChan := make(chan interface{}, bufferSize)
	b.subscribers = append(b.subscribers, subChan)
	return subChan
}
