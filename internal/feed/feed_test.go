package feed

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/domain"
	"github.com/xela07ax/clawdjob/internal/infra"
	"github.com/xela07ax/clawdjob/internal/repository/filestore"
)

type capturePublisher struct {
	mu      sync.Mutex
	events  []Event
	batches int
	err     error
}

func (p *capturePublisher) PublishBatch(_ context.Context, events []Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches++
	p.events = append(p.events, events...)
	return p.err
}

func (p *capturePublisher) snapshot() ([]Event, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...), p.batches
}

type countingObserver struct{ n atomic.Int32 }

func (o *countingObserver) ObserveFeedDropped() { o.n.Add(1) }

func TestBroadcaster_DrainsOnStop(t *testing.T) {
	pub := &capturePublisher{}
	b := NewBroadcaster(pub, Options{FlushInterval: time.Hour}, zap.NewNop())
	b.Start()

	for i := 0; i < 10; i++ {
		b.Activity(domain.ActivityLog{ID: "log", Type: domain.ActivityThinking})
	}
	b.AgentState(domain.AgentState{Status: domain.StatusWaiting})
	b.Stop()

	events, _ := pub.snapshot()
	require.Len(t, events, 11)
	assert.Equal(t, infra.RedisChanActivity, events[0].Channel)
	assert.Equal(t, infra.RedisChanAgentState, events[10].Channel)

	var state domain.AgentState
	require.NoError(t, json.Unmarshal(events[10].Payload, &state))
	assert.Equal(t, domain.StatusWaiting, state.Status)
}

func TestBroadcaster_FlushesByBatchSize(t *testing.T) {
	pub := &capturePublisher{}
	b := NewBroadcaster(pub, Options{BatchSize: 2, FlushInterval: time.Hour}, zap.NewNop())
	b.Start()

	for i := 0; i < 4; i++ {
		b.Activity(domain.ActivityLog{Type: domain.ActivityJobFound})
	}

	assert.Eventually(t, func() bool {
		events, _ := pub.snapshot()
		return len(events) == 4
	}, time.Second, 10*time.Millisecond)
	b.Stop()

	_, batches := pub.snapshot()
	assert.Equal(t, 2, batches)
}

func TestBroadcaster_DropsAfterStop(t *testing.T) {
	obs := &countingObserver{}
	b := NewBroadcaster(NopPublisher{}, Options{Observer: obs}, zap.NewNop())
	b.Start()
	b.Stop()
	b.Stop()

	b.Activity(domain.ActivityLog{Type: domain.ActivityError})
	assert.Equal(t, int32(1), obs.n.Load())
}

func TestBroadcaster_OverflowIsCounted(t *testing.T) {
	obs := &countingObserver{}
	// Воркер не запущен: буфер на одно событие заполняется сразу
	b := NewBroadcaster(NopPublisher{}, Options{BufferSize: 1, Observer: obs}, zap.NewNop())

	b.Activity(domain.ActivityLog{})
	b.Activity(domain.ActivityLog{})
	b.Activity(domain.ActivityLog{})
	assert.Equal(t, int32(2), obs.n.Load())
}

func TestBroadcaster_PublisherErrorDoesNotStopWorker(t *testing.T) {
	pub := &capturePublisher{err: errors.New("redis down")}
	b := NewBroadcaster(pub, Options{BatchSize: 1, FlushInterval: time.Hour}, zap.NewNop())
	b.Start()

	b.Activity(domain.ActivityLog{})
	b.Activity(domain.ActivityLog{})
	b.Stop()

	events, _ := pub.snapshot()
	assert.Len(t, events, 2)
}

func TestWrap_PublishesSuccessfulWrites(t *testing.T) {
	st, err := filestore.New(t.TempDir(), 0)
	require.NoError(t, err)

	pub := &capturePublisher{}
	b := NewBroadcaster(pub, Options{FlushInterval: time.Hour}, zap.NewNop())
	b.Start()

	wrapped := Wrap(st, b)
	ctx := context.Background()

	saved, err := wrapped.AddActivityLog(ctx, domain.ActivityLog{Type: domain.ActivitySearchStarted, Message: "go"})
	require.NoError(t, err)
	_, err = wrapped.SetAgentState(ctx, domain.AgentStateUpdate{Status: domain.StatusSearching})
	require.NoError(t, err)
	// Чтение проходит в исходное хранилище без событий
	_, err = wrapped.GetApplications(ctx)
	require.NoError(t, err)
	b.Stop()

	events, _ := pub.snapshot()
	require.Len(t, events, 2)

	var entry domain.ActivityLog
	require.NoError(t, json.Unmarshal(events[0].Payload, &entry))
	assert.Equal(t, saved.ID, entry.ID)
}
