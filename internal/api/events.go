package api

import (
	"context"
	"sync"

	"github.com/annel0/endless-structure/internal/eventbus"
)

// defaultEventLogSize — сколько последних событий держит журнал
const defaultEventLogSize = 256

// EventLog хранит последние события шины в кольцевом буфере.
// Нужен для отладки: посмотреть, что структура публиковала недавно.
type EventLog struct {
	mu    sync.RWMutex
	ring  []*eventbus.Envelope
	next  int
	full  bool
	total uint64

	sub eventbus.Subscription
}

// NewEventLog создаёт журнал на size событий (<=0 — размер по умолчанию)
func NewEventLog(size int) *EventLog {
	if size <= 0 {
		size = defaultEventLogSize
	}
	return &EventLog{ring: make([]*eventbus.Envelope, size)}
}

// Attach подписывает журнал на все события шины
func (l *EventLog) Attach(ctx context.Context, bus eventbus.EventBus) error {
	sub, err := bus.Subscribe(ctx, eventbus.Filter{}, func(_ context.Context, ev *eventbus.Envelope) {
		l.Append(ev)
	})
	if err != nil {
		return err
	}
	l.sub = sub
	return nil
}

// Detach отписывает журнал
func (l *EventLog) Detach() {
	if l.sub != nil {
		l.sub.Unsubscribe()
		l.sub = nil
	}
}

// Append кладёт событие, вытесняя самое старое
func (l *EventLog) Append(ev *eventbus.Envelope) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring[l.next] = ev
	l.next = (l.next + 1) % len(l.ring)
	if l.next == 0 {
		l.full = true
	}
	l.total++
}

// Total возвращает число событий, прошедших через журнал
func (l *EventLog) Total() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total
}

// Recent возвращает до limit последних событий нужного типа, от новых к старым.
// Пустой eventType — все типы, limit<=0 — без ограничения.
func (l *EventLog) Recent(eventType string, limit int) []*eventbus.Envelope {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := l.next
	if l.full {
		n = len(l.ring)
	}
	out := make([]*eventbus.Envelope, 0, n)
	for i := 1; i <= n; i++ {
		ev := l.ring[(l.next-i+len(l.ring))%len(l.ring)]
		if eventType != "" && ev.EventType != eventType {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
