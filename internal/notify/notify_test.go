package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return r.err
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	ok := &recorder{}
	failing := &recorder{err: errors.New("broker down")}
	p := NewMulti(ok, failing, NewNoop())

	err := p.Publish(context.Background(), Event{Type: EventApproved, RequestID: "#PED-2026-0001"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "broker down")
	assert.Len(t, ok.events, 1)
	assert.Len(t, failing.events, 1)
}

func TestNewKafka_WithoutBrokersIsNoop(t *testing.T) {
	p := NewKafka(nil, "")
	assert.IsType(t, noop{}, p)
	assert.NoError(t, p.Publish(context.Background(), Event{}))
}

func TestNewKafka_DefaultTopic(t *testing.T) {
	p := NewKafka([]string{"localhost:9092"}, "")
	kp, ok := p.(*kafkaPublisher)
	require.True(t, ok)
	assert.Equal(t, "purchase-requests.events", kp.w.Topic)
	assert.NoError(t, kp.Close())
}
