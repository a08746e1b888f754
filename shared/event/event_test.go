package event_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"restobook/config"
	kafkaClient "restobook/infras/kafka"
	kafkaMocks "restobook/infras/kafka/mocks"
	"restobook/infras/otel/mocks"
	rabbitClient "restobook/infras/rabbitmq"
	rabbitMocks "restobook/infras/rabbitmq/mocks"
	"restobook/shared/constant"
	"restobook/shared/event"
	hubMocks "restobook/shared/realtime/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type seated struct {
	ReservationID int64  `json:"reservation_id"`
	Status        string `json:"status"`
}

func TestEnvelope_RoundTrip(t *testing.T) {
	envelope, err := event.New(event.ReservationCreated, "12", "restaurant:3", seated{ReservationID: 12, Status: "PENDING"})
	require.NoError(t, err)
	assert.NotEmpty(t, envelope.ID)
	assert.False(t, envelope.OccurredAt.IsZero())

	var payload seated
	require.NoError(t, envelope.Decode(&payload))
	assert.Equal(t, int64(12), payload.ReservationID)

	_, err = event.Unmarshal([]byte(`{"key":"1"}`))
	assert.Error(t, err)

	_, err = event.Unmarshal([]byte(`not json`))
	assert.Error(t, err)
}

func TestPublisher_Publish(t *testing.T) {
	envelope, err := event.New(event.ReservationStatusChanged, "5", "restaurant:1", seated{ReservationID: 5, Status: "CONFIRMED"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		driver    string
		setupMock func(k *kafkaMocks.MockClient, r *rabbitMocks.MockClient, h *hubMocks.MockHub)
		wantErr   bool
	}{
		{
			name:   "no broker still feeds live stream",
			driver: "",
			setupMock: func(_ *kafkaMocks.MockClient, _ *rabbitMocks.MockClient, h *hubMocks.MockHub) {
				h.EXPECT().Broadcast("restaurant:1", gomock.Any()).Return(1)
			},
		},
		{
			name:   "kafka",
			driver: constant.EventDriverKafka,
			setupMock: func(k *kafkaMocks.MockClient, _ *rabbitMocks.MockClient, h *hubMocks.MockHub) {
				h.EXPECT().Broadcast(gomock.Any(), gomock.Any()).Return(0)
				k.EXPECT().SendMessages(gomock.Any(), "reservations", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, messages ...kafkaClient.Message) error {
						assert.Len(t, messages, 1)
						assert.Equal(t, "5", messages[0].Key)

						decoded, err := event.Unmarshal(messages[0].Value)
						assert.NoError(t, err)
						assert.Equal(t, event.ReservationStatusChanged, decoded.Type)

						return nil
					})
			},
		},
		{
			name:   "rabbitmq",
			driver: constant.EventDriverRabbitMQ,
			setupMock: func(_ *kafkaMocks.MockClient, r *rabbitMocks.MockClient, h *hubMocks.MockHub) {
				h.EXPECT().Broadcast(gomock.Any(), gomock.Any()).Return(0)
				r.EXPECT().Publish(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, message rabbitClient.Message) error {
						assert.Equal(t, string(event.ReservationStatusChanged), message.Type)

						return nil
					})
			},
		},
		{
			name:   "broker failure",
			driver: constant.EventDriverKafka,
			setupMock: func(k *kafkaMocks.MockClient, _ *rabbitMocks.MockClient, h *hubMocks.MockHub) {
				h.EXPECT().Broadcast(gomock.Any(), gomock.Any()).Return(0)
				k.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
			},
			wantErr: true,
		},
		{
			name:   "unknown driver",
			driver: "carrier-pigeon",
			setupMock: func(_ *kafkaMocks.MockClient, _ *rabbitMocks.MockClient, h *hubMocks.MockHub) {
				h.EXPECT().Broadcast(gomock.Any(), gomock.Any()).Return(0)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			mockKafka := kafkaMocks.NewMockClient(ctrl)
			mockRabbit := rabbitMocks.NewMockClient(ctrl)
			mockHub := hubMocks.NewMockHub(ctrl)

			cfg := &config.Config{}
			cfg.Events.Driver = tt.driver
			cfg.Events.Topic = "reservations"

			tt.setupMock(mockKafka, mockRabbit, mockHub)

			publisher := event.NewPublisher(cfg, mockKafka, mockRabbit, mockHub, mocks.NewOtel())

			err := publisher.Publish(context.Background(), envelope)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubscriber_Subscribe(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockRabbit := rabbitMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Events.Driver = constant.EventDriverRabbitMQ

	envelope, err := event.New(event.ReservationDeleted, "9", "", seated{ReservationID: 9})
	require.NoError(t, err)

	mockRabbit.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, handler rabbitClient.Handler) error {
			assert.Error(t, handler(ctx, rabbitClient.Message{Body: []byte("garbage")}))

			body, err := json.Marshal(envelope)
			require.NoError(t, err)

			return handler(ctx, rabbitClient.Message{Body: body})
		})

	var received []event.Type

	err = event.NewSubscriber(cfg, mockKafka, mockRabbit).Subscribe(context.Background(), func(_ context.Context, e event.Envelope) error {
		received = append(received, e.Type)

		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []event.Type{event.ReservationDeleted}, received)

	cfg.Events.Driver = constant.EventDriverNone
	assert.Error(t, event.NewSubscriber(cfg, mockKafka, mockRabbit).Subscribe(context.Background(), nil))
}
