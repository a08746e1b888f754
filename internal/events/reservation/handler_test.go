package reservation_test

import (
	"context"
	"errors"
	"testing"

	"restobook/internal/domains/reservation/model"
	"restobook/internal/events/reservation"
	"restobook/shared/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(t *testing.T, eventType event.Type, status, previous model.Status) event.Envelope {
	t.Helper()

	e, err := event.New(eventType, "12", "restaurant.3", model.Event{
		ReservationID:   12,
		RestaurantID:    3,
		Status:          status,
		PreviousStatus:  previous,
		CustomerName:    "Ada",
		CustomerEmail:   "ada@example.com",
		ReservationDate: "2026-11-02",
		ReservationTime: "19:30",
		PartySize:       4,
	})
	require.NoError(t, err)

	return e
}

func TestNotifier_Handle(t *testing.T) {
	tests := []struct {
		name        string
		envelope    func(t *testing.T) event.Envelope
		sendErr     error
		wantSubject string
		wantErr     bool
	}{
		{
			name: "created",
			envelope: func(t *testing.T) event.Envelope {
				return envelope(t, event.ReservationCreated, model.StatusPending, "")
			},
			wantSubject: "We received your reservation for 2026-11-02 19:30",
		},
		{
			name: "confirmed",
			envelope: func(t *testing.T) event.Envelope {
				return envelope(t, event.ReservationStatusChanged, model.StatusConfirmed, model.StatusPending)
			},
			wantSubject: "Your reservation for 2026-11-02 19:30 is confirmed",
		},
		{
			name: "cancelled",
			envelope: func(t *testing.T) event.Envelope {
				return envelope(t, event.ReservationStatusChanged, model.StatusCancelled, model.StatusConfirmed)
			},
			wantSubject: "Your reservation for 2026-11-02 19:30 was cancelled",
		},
		{
			name: "completed",
			envelope: func(t *testing.T) event.Envelope {
				return envelope(t, event.ReservationStatusChanged, model.StatusCompleted, model.StatusConfirmed)
			},
			wantSubject: "Thanks for dining with us on 2026-11-02",
		},
		{
			name: "unknown event type is ignored",
			envelope: func(t *testing.T) event.Envelope {
				return envelope(t, event.Type("reservation.archived"), model.StatusCompleted, "")
			},
		},
		{
			name: "deleted",
			envelope: func(t *testing.T) event.Envelope {
				return envelope(t, event.ReservationDeleted, model.StatusPending, "")
			},
			wantSubject: "Your reservation for 2026-11-02 19:30 was removed",
		},
		{
			name: "undecodable payload is dropped",
			envelope: func(_ *testing.T) event.Envelope {
				return event.Envelope{ID: "x", Type: event.ReservationCreated, Payload: []byte(`"oops"`)}
			},
		},
		{
			name: "send failure is returned for redelivery",
			envelope: func(t *testing.T) event.Envelope {
				return envelope(t, event.ReservationCreated, model.StatusPending, "")
			},
			sendErr:     errors.New("smtp down"),
			wantSubject: "We received your reservation for 2026-11-02 19:30",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sent []reservation.Notification

			notifier := reservation.New()
			notifier.Send = func(_ context.Context, n reservation.Notification) error {
				sent = append(sent, n)

				return tt.sendErr
			}

			err := notifier.Handle(context.Background(), tt.envelope(t))

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			if tt.wantSubject == "" {
				assert.Empty(t, sent)

				return
			}

			require.Len(t, sent, 1)
			assert.Equal(t, tt.wantSubject, sent[0].Subject)
			assert.Equal(t, "ada@example.com", sent[0].Recipient)
		})
	}
}
