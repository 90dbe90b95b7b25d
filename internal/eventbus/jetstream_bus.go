package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	nats "github.com/nats-io/nats.go"
)

// subjectPrefix — префикс NATS subject; полный subject: structure.events.<type>
const subjectPrefix = "structure.events."

// DefaultStream — имя стрима по умолчанию
const DefaultStream = "STRUCTURE"

// JetStreamBus реализует EventBus поверх NATS JetStream.
// Повторная публикация конверта с тем же ID отбрасывается сервером (Nats-Msg-Id).
type JetStreamBus struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	stream string

	published atomic.Uint64
	consumed  atomic.Uint64
	dropped   atomic.Uint64
	closed    atomic.Bool

	mu   sync.Mutex
	subs map[*jetSub]struct{}
}

// NewJetStreamBus подключается к NATS и создаёт стрим, если его ещё нет.
// url: nats://127.0.0.1:4222; пустой stream — DefaultStream; retention 0 — без ограничения по возрасту.
func NewJetStreamBus(url, stream string, retention time.Duration) (*JetStreamBus, error) {
	if stream == "" {
		stream = DefaultStream
	}

	nc, err := nats.Connect(url,
		nats.Name("endless-structure"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	if _, err := js.StreamInfo(stream); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:       stream,
			Subjects:   []string{subjectPrefix + ">"},
			Retention:  nats.LimitsPolicy,
			MaxAge:     retention,
			Storage:    nats.FileStorage,
			Duplicates: time.Minute,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("add stream %s: %w", stream, err)
		}
	}

	return &JetStreamBus{nc: nc, js: js, stream: stream, subs: make(map[*jetSub]struct{})}, nil
}

// subjectFor возвращает subject для типа события
func subjectFor(eventType string) string {
	return subjectPrefix + eventType
}

// Publish кладёт конверт в JSON в subject structure.events.<type>
func (jb *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	if jb.closed.Load() {
		return ErrClosed
	}
	data, err := json.Marshal(ev)
	if err != nil {
		jb.dropped.Add(1)
		return fmt.Errorf("marshal envelope %s: %w", ev.ID, err)
	}
	if _, err := jb.js.Publish(subjectFor(ev.EventType), data, nats.Context(ctx), nats.MsgId(ev.ID)); err != nil {
		jb.dropped.Add(1)
		return fmt.Errorf("publish %s: %w", ev.EventType, err)
	}
	jb.published.Add(1)
	return nil
}

// Subscribe создаёт эфемерный consumer на каждый тип фильтра (или один на все типы)
// и получает только новые сообщения. Фильтр по источникам применяется на клиенте.
func (jb *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	if jb.closed.Load() {
		return nil, ErrClosed
	}
	subjects := []string{subjectPrefix + ">"}
	if len(f.Types) > 0 {
		subjects = subjects[:0]
		for _, t := range f.Types {
			subjects = append(subjects, subjectFor(t))
		}
	}

	cb := func(msg *nats.Msg) {
		var ev Envelope
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			jb.dropped.Add(1)
		} else if f.match(&ev) {
			h(ctx, &ev)
			jb.consumed.Add(1)
		}
		_ = msg.Ack()
	}

	js := &jetSub{bus: jb}
	for _, subj := range subjects {
		s, err := jb.js.Subscribe(subj, cb,
			nats.BindStream(jb.stream),
			nats.DeliverNew(),
			nats.ManualAck(),
			nats.AckWait(30*time.Second),
		)
		if err != nil {
			js.Unsubscribe()
			return nil, fmt.Errorf("subscribe %s: %w", subj, err)
		}
		js.subs = append(js.subs, s)
	}

	jb.mu.Lock()
	jb.subs[js] = struct{}{}
	jb.mu.Unlock()
	return js, nil
}

// jetSub объединяет подписки по нескольким subject
type jetSub struct {
	bus  *JetStreamBus
	once sync.Once
	subs []*nats.Subscription
}

func (j *jetSub) Unsubscribe() {
	j.once.Do(func() {
		for _, s := range j.subs {
			_ = s.Unsubscribe()
		}
		j.bus.mu.Lock()
		delete(j.bus.subs, j)
		j.bus.mu.Unlock()
	})
}

// Metrics возвращает счётчики клиента; очередь хранит сам JetStream
func (jb *JetStreamBus) Metrics() Stats {
	return Stats{
		Published: jb.published.Load(),
		Consumed:  jb.consumed.Load(),
		Dropped:   jb.dropped.Load(),
	}
}

// Close снимает подписки и сливает соединение
func (jb *JetStreamBus) Close() error {
	if !jb.closed.CompareAndSwap(false, true) {
		return nil
	}
	jb.mu.Lock()
	subs := make([]*jetSub, 0, len(jb.subs))
	for s := range jb.subs {
		subs = append(subs, s)
	}
	jb.mu.Unlock()
	for _, s := range subs {
		s.Unsubscribe()
	}
	return jb.nc.Drain()
}
