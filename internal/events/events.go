// Package events define los eventos del dominio y los publica en RabbitMQ.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Routing keys
const (
	RKBookCreated    = "catalog.book.created"
	RKBookDeleted    = "catalog.book.deleted"
	RKUserRegistered = "user.registered"
	RKCartItemAdded  = "cart.item_added"
	RKCartCleared    = "cart.cleared"
)

// Publisher envía un payload con una routing key. Las implementaciones
// deben ser seguras para uso concurrente.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type BookCreated struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Price  float64 `json:"price"`
}

type BookDeleted struct {
	ID int64 `json:"id"`
}

type UserRegistered struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type CartItemAdded struct {
	UserID   int64 `json:"user_id"`
	BookID   int64 `json:"book_id"`
	Quantity int   `json:"quantity"`
}

type CartCleared struct {
	UserID int64 `json:"user_id"`
}

// Envelope es la forma en el cable de todo mensaje publicado.
type Envelope struct {
	ID        string              `json:"id"`
	Type      string              `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Payload   jsoniter.RawMessage `json:"payload"`
}

// Encode envuelve el payload en un Envelope y lo serializa.
func Encode(eventType string, payload any, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: now.UTC(),
		Payload:   raw,
	})
}

// Decode es el inverso de Encode; payload puede ser nil para omitirlo.
func Decode(body []byte, payload any) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, err
	}
	if payload != nil {
		if err := json.Unmarshal(env.Payload, payload); err != nil {
			return Envelope{}, err
		}
	}
	return env, nil
}
