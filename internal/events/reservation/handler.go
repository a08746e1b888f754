// Package reservation turns reservation events into customer notifications.
package reservation

import (
	"context"

	"restobook/internal/domains/reservation/model"
	"restobook/shared/event"

	"github.com/rs/zerolog/log"
)

type Notification struct {
	Recipient string
	Subject   string
	// Reference lets the customer look the reservation up without an account.
	Reference string
	EventID   string
}

type Notifier struct {
	// Send defaults to logging the notification.
	Send func(ctx context.Context, notification Notification) error
}

func New() *Notifier {
	return &Notifier{Send: logNotification}
}

func (n *Notifier) Handle(ctx context.Context, envelope event.Envelope) error {
	var payload model.Event
	if err := envelope.Decode(&payload); err != nil {
		log.Error().Err(err).Str("event_id", envelope.ID).Msg("Dropping undecodable reservation event")

		return nil
	}

	subject, ok := subjectFor(envelope.Type, payload)
	if !ok {
		log.Debug().Str("event_type", string(envelope.Type)).Msg("No notification for event")

		return nil
	}

	return n.Send(ctx, Notification{
		Recipient: payload.CustomerEmail,
		Subject:   subject,
		Reference: payload.Reference,
		EventID:   envelope.ID,
	})
}

func subjectFor(eventType event.Type, payload model.Event) (string, bool) {
	when := payload.ReservationDate + " " + payload.ReservationTime

	switch eventType {
	case event.ReservationCreated:
		return "We received your reservation for " + when, true
	case event.ReservationStatusChanged:
		switch payload.Status {
		case model.StatusConfirmed:
			return "Your reservation for " + when + " is confirmed", true
		case model.StatusCancelled:
			return "Your reservation for " + when + " was cancelled", true
		case model.StatusCompleted:
			return "Thanks for dining with us on " + payload.ReservationDate, true
		default:
			return "Your reservation for " + when + " is now " + string(payload.Status), true
		}
	case event.ReservationDeleted:
		return "Your reservation for " + when + " was removed", true
	default:
		return "", false
	}
}

func logNotification(_ context.Context, notification Notification) error {
	log.Info().
		Str("recipient", notification.Recipient).
		Str("subject", notification.Subject).
		Str("reference", notification.Reference).
		Str("event_id", notification.EventID).
		Msg("Customer notified")

	return nil
}
