// Package event carries reservation domain events to brokers and to the live
// websocket feed.
package event

import (
	"encoding/json"
	"fmt"
	"restobook/shared/timezone"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	ReservationCreated       Type = "reservation.created"
	ReservationStatusChanged Type = "reservation.status_changed"
	ReservationDeleted       Type = "reservation.deleted"
)

// Envelope is the wire form of every event. Stream names the realtime topic
// the event is fanned out to and may be empty.
type Envelope struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	Key        string          `json:"key"`
	Stream     string          `json:"stream,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func New(eventType Type, key, stream string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}

	return Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		Stream:     stream,
		OccurredAt: timezone.Now(),
		Payload:    raw,
	}, nil
}

func (e Envelope) Decode(target any) error {
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}

	return nil
}

func Unmarshal(data []byte) (Envelope, error) {
	var envelope Envelope

	if err := json.Unmarshal(data, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("failed to decode event envelope: %w", err)
	}

	if envelope.Type == "" {
		return Envelope{}, fmt.Errorf("event envelope without type")
	}

	return envelope, nil
}
