package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type countingObserver struct{ ok, failed int }

func (o *countingObserver) ObservePublish(success bool) {
	if success {
		o.ok++
	} else {
		o.failed++
	}
}

func sampleMovement() *entity.StockMovement {
	return &entity.StockMovement{
		ID:             "mov-1",
		ProductID:      "p1",
		VariationID:    "v1",
		Type:           entity.MovementTypeOut,
		Reason:         entity.ReasonSale,
		Quantity:       -3,
		QuantityBefore: 10,
		QuantityAfter:  7,
		CreatedBy:      "u1",
		CreatedAt:      time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC),
	}
}

// ─── buildMessage ─────────────────────────────────────────────────────────────

func TestBuildMessage_ClaveHeaderYPayload(t *testing.T) {
	msg, err := buildMessage(sampleMovement())
	require.NoError(t, err)

	assert.Equal(t, "p1:v1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, EventTypeMovementRecorded, string(msg.Headers[0].Value))

	var ev MovementEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, "mov-1", ev.MovementID)
	assert.Equal(t, "out", ev.Type)
	assert.Equal(t, "sale", ev.Reason)
	assert.Equal(t, -3, ev.Quantity)
	assert.Equal(t, 10, ev.QuantityBefore)
	assert.Equal(t, 7, ev.QuantityAfter)
}

func TestBuildMessage_ProductoSimpleSinVariacion(t *testing.T) {
	m := sampleMovement()
	m.VariationID = ""
	msg, err := buildMessage(m)
	require.NoError(t, err)
	assert.Equal(t, "p1", string(msg.Key))
	assert.NotContains(t, string(msg.Value), "variation_id")
}

func TestBuildMessage_Nil(t *testing.T) {
	_, err := buildMessage(nil)
	assert.Error(t, err)
}

// ─── PublishMovement ──────────────────────────────────────────────────────────

func TestPublishMovement_EscribeYObserva(t *testing.T) {
	w := &fakeWriter{}
	obs := &countingObserver{}
	p := newKafkaPublisher(w, obs, nil)

	require.NoError(t, p.PublishMovement(context.Background(), sampleMovement()))
	assert.Len(t, w.msgs, 1)
	assert.Equal(t, 1, obs.ok)
}

func TestPublishMovement_BreakerSeAbreTrasFallosConsecutivos(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	obs := &countingObserver{}
	p := newKafkaPublisher(w, obs, nil)

	for i := 0; i < 5; i++ {
		err := p.PublishMovement(context.Background(), sampleMovement())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrPublisherUnavailable)
	}
	err := p.PublishMovement(context.Background(), sampleMovement())
	assert.ErrorIs(t, err, ErrPublisherUnavailable)
	assert.Equal(t, 6, obs.failed)
}
