package feed

/*
Пакет feed транслирует журнал действий и смену состояния агента наружу
(живая лента дашборда). Механика взята из буферизованного аудитора:
- неблокирующая запись из цикла охоты, переполненный буфер сбрасывает событие;
- пакетная отправка по таймеру или по размеру пачки;
- Stop закрывает вход и дожидается финального сброса.
*/

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/domain"
	"github.com/xela07ax/clawdjob/internal/infra"
)

// Event готовое к отправке сообщение: канал и JSON-полезная нагрузка
type Event struct {
	Channel string
	Payload []byte
}

// Publisher физическая доставка пачки событий (Redis Pub/Sub или заглушка)
type Publisher interface {
	PublishBatch(ctx context.Context, events []Event) error
}

// DropObserver учет сброшенных событий
type DropObserver interface {
	ObserveFeedDropped()
}

type nopDropObserver struct{}

func (nopDropObserver) ObserveFeedDropped() {}

type Options struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
	Observer      DropObserver
}

func (o Options) withDefaults() Options {
	if o.BufferSize <= 0 {
		o.BufferSize = 256
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 500 * time.Millisecond
	}
	if o.Observer == nil {
		o.Observer = nopDropObserver{}
	}
	return o
}

type Broadcaster struct {
	ch     chan Event
	pub    Publisher
	opts   Options
	logger *zap.Logger
	wg     sync.WaitGroup

	// mu защищает закрытие канала от конкурентной отправки
	mu     sync.RWMutex
	closed bool
}

func NewBroadcaster(pub Publisher, opts Options, logger *zap.Logger) *Broadcaster {
	opts = opts.withDefaults()
	return &Broadcaster{
		ch:     make(chan Event, opts.BufferSize),
		pub:    pub,
		opts:   opts,
		logger: logger.Named("feed"),
	}
}

func (b *Broadcaster) Start() {
	b.wg.Add(1)
	go b.worker()
}

// Stop запирает вход и ждет, пока воркер отправит остаток буфера
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.ch)
	b.mu.Unlock()

	b.wg.Wait()
	b.logger.Info("feed stopped")
}

// Activity публикует запись журнала
func (b *Broadcaster) Activity(entry domain.ActivityLog) {
	b.emit(infra.RedisChanActivity, entry)
}

// AgentState публикует новое состояние агента
func (b *Broadcaster) AgentState(state domain.AgentState) {
	b.emit(infra.RedisChanAgentState, state)
}

func (b *Broadcaster) emit(channel string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		b.logger.Error("feed encode failed", zap.String("channel", channel), zap.Error(err))
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.opts.Observer.ObserveFeedDropped()
		return
	}

	// Load shedding: лента не должна тормозить цикл охоты
	select {
	case b.ch <- Event{Channel: channel, Payload: payload}:
	default:
		b.opts.Observer.ObserveFeedDropped()
		b.logger.Warn("feed buffer overflow", zap.String("channel", channel))
	}
}

func (b *Broadcaster) worker() {
	defer b.wg.Done()

	batch := make([]Event, 0, b.opts.BatchSize)
	ticker := time.NewTicker(b.opts.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: к моменту финального сброса основной контекст уже отменен
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.pub.PublishBatch(ctx, batch); err != nil {
			b.logger.Warn("feed flush failed", zap.Int("events", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case ev, ok := <-b.ch:
			if !ok {
				flush()
				return
			}
			batch = append(batch, ev)
			if len(batch) >= b.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// NopPublisher используется, когда Redis не настроен
type NopPublisher struct{}

func (NopPublisher) PublishBatch(context.Context, []Event) error { return nil }
