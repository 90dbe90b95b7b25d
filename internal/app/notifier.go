package app

import (
	"context"
	"sync/atomic"

	"github.com/annel0/endless-structure/internal/eventbus"
	"github.com/annel0/endless-structure/internal/logging"
	"github.com/annel0/endless-structure/internal/structure"
	"github.com/annel0/endless-structure/internal/vec"
)

// ShiftPayload — полезная нагрузка structure.shift
type ShiftPayload struct {
	Axis      string        `json:"axis"`
	Dir       int           `json:"dir"`
	Anchor    vec.Vec3Float `json:"anchor"`
	Created   []uint64      `json:"created"`
	Destroyed []uint64      `json:"destroyed"`
	Ropes     int           `json:"ropes"`
	Ramps     int           `json:"ramps"`
}

// ProbeRefreshPayload — полезная нагрузка structure.probe_refresh
type ProbeRefreshPayload struct {
	Agent   vec.Vec3Float   `json:"agent"`
	Mirrors []vec.Vec3Float `json:"mirrors"`
	Count   uint64          `json:"count"`
}

// ClimbPayload — полезная нагрузка climb.enter / climb.exit
type ClimbPayload struct {
	Agent vec.Vec3Float `json:"agent"`
	Tick  uint64        `json:"tick"`
}

// Notifier публикует события структуры в шину. Реализует structure.Hooks.
// Ошибки публикации не останавливают генерацию: они логируются и считаются.
type Notifier struct {
	ctx    context.Context
	bus    eventbus.EventBus
	source string
	log    *logging.Logger
	failed atomic.Uint64
}

// NewNotifier создаёт публикатора; ctx ограничивает все публикации
func NewNotifier(ctx context.Context, bus eventbus.EventBus, source string, log *logging.Logger) *Notifier {
	if log == nil {
		log = logging.Default()
	}
	return &Notifier{ctx: ctx, bus: bus, source: source, log: log}
}

// Failed возвращает число неудачных публикаций
func (n *Notifier) Failed() uint64 { return n.failed.Load() }

func (n *Notifier) SlabShifted(ev structure.ShiftEvent) {
	n.publish(eventbus.TypeShift, 5, ShiftPayload{
		Axis:      ev.Axis.String(),
		Dir:       ev.Dir,
		Anchor:    ev.Anchor,
		Created:   ev.Created,
		Destroyed: ev.Destroyed,
		Ropes:     ev.Ropes,
		Ramps:     ev.Ramps,
	})
}

func (n *Notifier) ProbeRefresh(ev structure.ProbeRefreshEvent) {
	n.publish(eventbus.TypeProbeRefresh, 3, ProbeRefreshPayload{
		Agent:   ev.Agent,
		Mirrors: ev.Mirrors,
		Count:   ev.Count,
	})
}

// Climb публикует переход агента через границу области лазания
func (n *Notifier) Climb(tr structure.ClimbTransition, agent vec.Vec3Float, tick uint64) {
	var eventType string
	switch tr {
	case structure.ClimbEnter:
		eventType = eventbus.TypeClimbEnter
	case structure.ClimbExit:
		eventType = eventbus.TypeClimbExit
	default:
		return
	}
	n.publish(eventType, 7, ClimbPayload{Agent: agent, Tick: tick})
}

func (n *Notifier) publish(eventType string, priority int, payload interface{}) {
	if n.bus == nil {
		return
	}
	env, err := eventbus.NewEnvelope(n.source, eventType, payload)
	if err != nil {
		n.failed.Add(1)
		n.log.Warnf("[Notifier] кодирование %s: %v", eventType, err)
		return
	}
	env.Priority = priority
	if err := n.bus.Publish(n.ctx, env); err != nil {
		n.failed.Add(1)
		n.log.Warnf("[Notifier] публикация %s: %v", eventType, err)
	}
}
