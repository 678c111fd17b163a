package events

import (
	"context"
	"time"

	"dometriks/pkg/kafka"
	"dometriks/pkg/logger"
	"dometriks/pkg/model"
)

const (
	TypeBookingCreated    = "booking.created"
	TypeBookingAssigned   = "booking.assigned"
	TypeBookingSurveyDone = "booking.survey_done"
	TypeBookingCompleted  = "booking.completed"

	schemaVersion = "1"
)

// BookingEvent is the payload published on every lifecycle transition.
type BookingEvent struct {
	BookingID          string               `json:"booking_id"`
	Status             model.BookingStatus  `json:"status"`
	EngineerStatus     model.EngineerStatus `json:"engineer_status"`
	AssignedEngineerID string               `json:"assigned_engineer_id,omitempty"`
	OccurredAt         time.Time            `json:"occurred_at"`
}

// Publisher emits lifecycle events. Publishing is best-effort by
// contract: the state transition is already committed when an event is
// emitted, so a publish failure is logged and never surfaced to the
// caller.
type Publisher interface {
	Publish(ctx context.Context, eventType string, booking *model.Booking)
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, source string, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, booking *model.Booking) {
	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(BookingEvent{
			BookingID:          booking.ID,
			Status:             booking.Status,
			EngineerStatus:     booking.EngineerStatus,
			AssignedEngineerID: booking.AssignedEngineerID,
			OccurredAt:         time.Now().UTC(),
		}).
		WithEventID("").
		WithEventType(eventType).
		WithSchemaVersion(schemaVersion).
		WithSource(p.source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

type noopPublisher struct{}

// NewNoopPublisher is used when event publishing is disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, *model.Booking) {}
