package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// EventTypeMovementRecorded valor del header event-type de cada mensaje.
const EventTypeMovementRecorded = "stock.movement.recorded"

const publishTimeout = 5 * time.Second

var _ inventory.MovementPublisher = (*KafkaPublisher)(nil)

// ErrPublisherUnavailable el circuit breaker está abierto.
var ErrPublisherUnavailable = errors.New("publicador de movimientos no disponible")

// PublishObserver recibe el resultado de cada publicación (métricas).
type PublishObserver interface {
	ObservePublish(success bool)
}

// MovementEvent payload JSON publicado por cada movimiento confirmado.
type MovementEvent struct {
	MovementID     string    `json:"movement_id"`
	ProductID      string    `json:"product_id"`
	VariationID    string    `json:"variation_id,omitempty"`
	Type           string    `json:"type"`
	Reason         string    `json:"reason"`
	Quantity       int       `json:"quantity"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	ReferenceType  string    `json:"reference_type,omitempty"`
	ReferenceID    string    `json:"reference_id,omitempty"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publica movimientos en Kafka detrás de un circuit breaker.
type KafkaPublisher struct {
	writer   messageWriter
	breaker  *gobreaker.CircuitBreaker
	observer PublishObserver
	log      *logger.Logger
}

// NewKafkaPublisher crea el writer con clave por SKU (mismo SKU, misma partición).
func NewKafkaPublisher(brokers []string, topic string, observer PublishObserver, log *logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
	}
	return newKafkaPublisher(writer, observer, log)
}

func newKafkaPublisher(w messageWriter, observer PublishObserver, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.Nop()
	}
	settings := gobreaker.Settings{
		Name:        "kafka-movements",
		MaxRequests: 5,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				return true
			}
			if counts.Requests >= 10 {
				return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("cambio de estado del circuit breaker")
		},
	}
	return &KafkaPublisher{
		writer:   w,
		breaker:  gobreaker.NewCircuitBreaker(settings),
		observer: observer,
		log:      log,
	}
}

// PublishMovement serializa y envía el movimiento. Con el breaker abierto falla rápido.
func (p *KafkaPublisher) PublishMovement(ctx context.Context, m *entity.StockMovement) error {
	msg, err := buildMessage(m)
	if err != nil {
		return err
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		return nil, p.writer.WriteMessages(ctx, msg)
	})
	if p.observer != nil {
		p.observer.ObservePublish(err == nil)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrPublisherUnavailable
	}
	if err != nil {
		return fmt.Errorf("write stock movement to kafka: %w", err)
	}
	return nil
}

// Close libera el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func buildMessage(m *entity.StockMovement) (kafka.Message, error) {
	if m == nil {
		return kafka.Message{}, errors.New("movimiento nil")
	}
	value, err := json.Marshal(MovementEvent{
		MovementID:     m.ID,
		ProductID:      m.ProductID,
		VariationID:    m.VariationID,
		Type:           string(m.Type),
		Reason:         string(m.Reason),
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt.UTC(),
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal stock movement event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(m.Key()),
		Value: value,
		Time:  m.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(EventTypeMovementRecorded)},
		},
	}, nil
}
