package eventbus

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed возвращается при публикации в закрытую шину
var ErrClosed = errors.New("eventbus: closed")

// Типы событий структуры
const (
	TypeShift        = "structure.shift"
	TypeProbeRefresh = "structure.probe_refresh"
	TypeClimbEnter   = "climb.enter"
	TypeClimbExit    = "climb.exit"
)

// Envelope описывает универсальный контейнер события.
type Envelope struct {
	ID            string            `json:"id"`             // UUID
	Timestamp     time.Time         `json:"timestamp"`      // UTC
	Source        string            `json:"source"`         // Имя сервиса-источника
	EventType     string            `json:"event_type"`     // structure.shift, climb.enter…
	Version       int               `json:"version"`        // Схема полезной нагрузки
	CorrelationID string            `json:"correlation_id"` // Для связывания цепочек
	Priority      int               `json:"priority"`       // 0=Low … 9=Critical (для backpressure)
	Payload       []byte            `json:"payload"`        // JSON
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Filter позволяет подписаться только на нужные события.
type Filter struct {
	Types   []string // Если пусто — все типы.
	Sources []string // Если пусто — все источники.
}

// Subscription возвращается при подписке; позволяет отписаться.
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события. Чтобы публиковать из обработчика в ту же
// шину, передавайте полученный ctx: тогда при полном буфере публикация
// не блокирует доставку.
type Handler func(ctx context.Context, ev *Envelope)

// Stats агрегированные метрики шины.
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// EventBus определяет абстракцию шины событий.
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
	Close() error
}

//================ In-Memory implementation =================//

// memoryBus держит один буфер и одну горутину доставки.
// Подписчики хранятся срезом, который заменяется целиком при подписке
// и отписке, поэтому доставка читает его без блокировки.
type memoryBus struct {
	subsMu sync.Mutex
	subs   atomic.Pointer[[]*memSub]
	nextID uint64

	sendMu  sync.RWMutex // closed и запись в queue
	closed  bool
	queue   chan *Envelope
	done    chan struct{}
	pending sync.WaitGroup // отложенные публикации из обработчиков

	published atomic.Uint64
	consumed  atomic.Uint64
	dropped   atomic.Uint64
}

// lowPriority — события ниже этого приоритета выбрасываются при полном буфере
const lowPriority = 5

// deliveryKey помечает контекст, переданный обработчику этой шиной
type deliveryKey struct{}

// NewMemoryBus создаёт in-memory Bus с указанным буфером.
// События доставляются подписчикам по одному, в порядке публикации
// и в порядке подписки.
func NewMemoryBus(capacity int) EventBus {
	mb := &memoryBus{
		queue: make(chan *Envelope, capacity),
		done:  make(chan struct{}),
	}
	mb.subs.Store(&[]*memSub{})
	go mb.deliver()
	return mb
}

func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	mb.sendMu.RLock()
	defer mb.sendMu.RUnlock()
	if mb.closed {
		return ErrClosed
	}

	select {
	case mb.queue <- ev:
		mb.published.Add(1)
		return nil
	default:
	}

	if ev.Priority < lowPriority {
		mb.dropped.Add(1)
		return nil
	}
	// Обработчик этой же шины не может ждать места: буфер освобождает
	// его собственная горутина доставки. Событие уходит позже,
	// после уже стоящих в очереди.
	if ctx.Value(deliveryKey{}) == mb {
		mb.pending.Add(1)
		go func() {
			defer mb.pending.Done()
			mb.queue <- ev
			mb.published.Add(1)
		}()
		return nil
	}
	// важные события ждут места в буфере
	select {
	case mb.queue <- ev:
		mb.published.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	cctx, cancel := context.WithCancel(ctx)
	cctx = context.WithValue(cctx, deliveryKey{}, mb)

	mb.subsMu.Lock()
	defer mb.subsMu.Unlock()
	mb.nextID++
	sub := &memSub{bus: mb, id: mb.nextID, filter: f, handler: h, ctx: cctx, cancel: cancel}
	cur := *mb.subs.Load()
	next := make([]*memSub, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, sub)
	mb.subs.Store(&next)
	return sub, nil
}

func (mb *memoryBus) Metrics() Stats {
	return Stats{
		Published: mb.published.Load(),
		Consumed:  mb.consumed.Load(),
		Dropped:   mb.dropped.Load(),
		InFlight:  len(mb.queue),
	}
}

// Close прекращает приём событий и дожидается доставки буфера
func (mb *memoryBus) Close() error {
	mb.sendMu.Lock()
	if mb.closed {
		mb.sendMu.Unlock()
		return nil
	}
	mb.closed = true
	mb.sendMu.Unlock()
	mb.pending.Wait()
	close(mb.queue)
	<-mb.done
	return nil
}

func (mb *memoryBus) deliver() {
	defer close(mb.done)
	for ev := range mb.queue {
		for _, sub := range *mb.subs.Load() {
			if sub.ctx.Err() != nil || !sub.filter.match(ev) {
				continue
			}
			sub.handler(sub.ctx, ev)
			mb.consumed.Add(1)
		}
	}
}

func (mb *memoryBus) remove(id uint64) {
	mb.subsMu.Lock()
	defer mb.subsMu.Unlock()
	cur := *mb.subs.Load()
	next := make([]*memSub, 0, len(cur))
	for _, s := range cur {
		if s.id != id {
			next = append(next, s)
		}
	}
	mb.subs.Store(&next)
}

// match сообщает, проходит ли событие фильтр. Пустой список пропускает всё.
func (f Filter) match(ev *Envelope) bool {
	return anyOrContains(f.Types, ev.EventType) && anyOrContains(f.Sources, ev.Source)
}

func anyOrContains(list []string, v string) bool {
	return len(list) == 0 || slices.Contains(list, v)
}

type memSub struct {
	bus     *memoryBus
	id      uint64
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
}

func (s *memSub) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		s.bus.remove(s.id)
	})
}
