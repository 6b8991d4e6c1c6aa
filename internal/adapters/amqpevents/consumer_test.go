package amqpevents

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StefanUPB/tng-gtk-common/config"
	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
)

type settlement struct {
	tag     uint64
	ack     bool
	requeue bool
}

type fakeAcknowledger struct {
	mu      sync.Mutex
	settled []settlement
}

func (f *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settled = append(f.settled, settlement{tag: tag, ack: true})
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settled = append(f.settled, settlement{tag: tag, requeue: requeue})
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func (f *fakeAcknowledger) all() []settlement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]settlement(nil), f.settled...)
}

type ingesterFunc func(ctx context.Context, event model.CallbackEvent) (model.ProcessRecord, error)

func (f ingesterFunc) Ingest(ctx context.Context, event model.CallbackEvent) (model.ProcessRecord, error) {
	return f(ctx, event)
}

func newTestConsumer(t *testing.T, ing Ingester) *Consumer {
	t.Helper()
	c, err := NewConsumer(ConsumerOptions{
		Config:   config.EventsConfig{Queue: "package.process.events", Prefetch: 1},
		Ingester: ing,
	})
	require.NoError(t, err)
	return c
}

func TestConsumer_Handle(t *testing.T) {
	var seen []model.CallbackEvent
	ing := ingesterFunc(func(_ context.Context, event model.CallbackEvent) (model.ProcessRecord, error) {
		seen = append(seen, event)
		switch event.CorrelationID() {
		case "store-down":
			return model.ProcessRecord{}, errors.New("redis: connection refused")
		case "bad-status":
			return model.ProcessRecord{}, apperrors.Validation("invalid status")
		}
		return model.ProcessRecord{ProcessID: event.CorrelationID(), Status: model.ProcessStatusSuccess}, nil
	})
	c := newTestConsumer(t, ing)

	tests := []struct {
		name string
		body string
		want Outcome
		ack  bool
		rq   bool
	}{
		{name: "valid", body: `{"package_process_uuid":"p-1","package_process_status":"success"}`, want: OutcomeAcked, ack: true},
		{name: "empty", body: ``, want: OutcomeRejected},
		{name: "garbage", body: `not json`, want: OutcomeRejected},
		{name: "unknown status", body: `{"process_id":"p-2","status":"lost"}`, want: OutcomeRejected},
		{name: "ingest rejects", body: `{"process_id":"bad-status","status":"running"}`, want: OutcomeRejected},
		{name: "store failure", body: `{"process_id":"store-down","status":"running"}`, want: OutcomeRequeued, rq: true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			d := amqp.Delivery{Acknowledger: ack, DeliveryTag: uint64(i + 1), Body: []byte(tt.body)}

			assert.Equal(t, tt.want, c.Handle(context.Background(), d))

			settled := ack.all()
			require.Len(t, settled, 1)
			assert.Equal(t, uint64(i+1), settled[0].tag)
			assert.Equal(t, tt.ack, settled[0].ack)
			assert.Equal(t, tt.rq, settled[0].requeue)
		})
	}

	// Malformed deliveries never reach the ingester.
	assert.Len(t, seen, 3)
}

func TestConsumer_ServeStopsOnCancel(t *testing.T) {
	ingested := make(chan string, 4)
	c := newTestConsumer(t, ingesterFunc(func(_ context.Context, e model.CallbackEvent) (model.ProcessRecord, error) {
		ingested <- e.CorrelationID()
		return model.ProcessRecord{ProcessID: e.CorrelationID()}, nil
	}))

	deliveries := make(chan amqp.Delivery, 2)
	ack := &fakeAcknowledger{}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(`{"process_id":"a","status":"running"}`)}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte(`{"process_id":"b","status":"success"}`)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx, deliveries) }()

	assert.Equal(t, "a", <-ingested)
	assert.Equal(t, "b", <-ingested)
	require.Eventually(t, func() bool { return len(ack.all()) == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestConsumer_ServeReportsClosedChannel(t *testing.T) {
	c := newTestConsumer(t, ingesterFunc(func(context.Context, model.CallbackEvent) (model.ProcessRecord, error) {
		return model.ProcessRecord{}, nil
	}))
	deliveries := make(chan amqp.Delivery)
	close(deliveries)

	err := c.Serve(context.Background(), deliveries)
	require.Error(t, err)
}

func TestConsumer_RunRequiresURL(t *testing.T) {
	c := newTestConsumer(t, ingesterFunc(func(context.Context, model.CallbackEvent) (model.ProcessRecord, error) {
		return model.ProcessRecord{}, nil
	}))
	require.Error(t, c.Run(context.Background()))
}

func TestNewConsumer_Validation(t *testing.T) {
	_, err := NewConsumer(ConsumerOptions{Config: config.EventsConfig{Queue: "q"}})
	require.Error(t, err)
	_, err = NewConsumer(ConsumerOptions{Ingester: ingesterFunc(nil)})
	require.Error(t, err)
}
