// Package eventstest ofrece un events.Publisher en memoria para pruebas.
package eventstest

import (
	"context"
	"sync"
)

type Published struct {
	RoutingKey string
	Payload    any
}

// Recorder guarda en orden cada evento publicado. Si Err no es nil,
// Publish lo devuelve después de registrar el evento.
type Recorder struct {
	mu     sync.Mutex
	events []Published
	Err    error
}

func (r *Recorder) Publish(_ context.Context, routingKey string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{RoutingKey: routingKey, Payload: payload})
	return r.Err
}

func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}

func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.events))
	for _, e := range r.events {
		keys = append(keys, e.RoutingKey)
	}
	return keys
}
