package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Имена доменных событий жизненного цикла бронирования
const (
	EventBookingCreated     = "booking.created"
	EventBookingConfirmed   = "booking.confirmed"
	EventBookingStarted     = "booking.started"
	EventBookingCompleted   = "booking.completed"
	EventBookingCancelled   = "booking.cancelled"
	EventBookingNoShow      = "booking.no_show"
	EventBookingRescheduled = "booking.rescheduled"
	EventBookingRated       = "booking.rated"
	EventLowRatingAlert     = "booking.low_rating_alert"
	EventPaymentFailed      = "booking.payment_failed"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Envelope конверт доменного события
type Envelope struct {
	EventID    string          `json:"event_id"`
	Name       string          `json:"name"`
	BookingID  int64           `json:"booking_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Publisher публикует доменные события в Kafka.
// Публикация идёт после фиксации транзакции; ошибка публикации логируется
// и не влияет на результат бизнес-операции.
type Publisher struct {
	writer *kafka.Writer
	log    Logger
}

// NewPublisher создает publisher для заданных брокеров и топика
func NewPublisher(brokers []string, topic string, log Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	return &Publisher{
		writer: writer,
		log:    log,
	}
}

// Publish отправляет событие с ключом по bookingID для сохранения порядка в партиции
func (p *Publisher) Publish(ctx context.Context, name string, bookingID int64, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("events: marshal payload for %s: %w", name, err)
		}
		raw = data
	}

	envelope := Envelope{
		EventID:    uuid.NewString(),
		Name:       name,
		BookingID:  bookingID,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("events: marshal envelope for %s: %w", name, err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", bookingID)),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: write %s for booking=%d: %w", name, bookingID, err)
	}

	p.log.Info("Published event %s for booking=%d", name, bookingID)
	return nil
}

// Close закрывает продюсера
func (p *Publisher) Close() error {
	return p.writer.Close()
}
