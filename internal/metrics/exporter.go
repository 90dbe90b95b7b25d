// Package metrics переносит счётчики генерации структуры в Prometheus.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/endless-structure/internal/structure"
)

// StatsSource — всё, что умеет отдавать снимок счётчиков. *structure.Stats подходит.
type StatsSource interface {
	Snapshot() structure.StatsSnapshot
}

// counter связывает Prometheus-счётчик с полем снимка
type counter struct {
	c     prometheus.Counter
	value func(structure.StatsSnapshot) uint64
}

// StructureExporter периодически переносит приращения Stats в счётчики.
type StructureExporter struct {
	src     StatsSource
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
	started atomic.Bool

	mu       sync.Mutex
	prev     structure.StatsSnapshot
	counters []counter
	climbing prometheus.Gauge
}

// NewStructureExporter регистрирует метрики в reg (nil — глобальный регистр).
func NewStructureExporter(src StatsSource, reg prometheus.Registerer) *StructureExporter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	e := &StructureExporter{
		src:  src,
		quit: make(chan struct{}),
		done: make(chan struct{}),
		climbing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "structure",
			Name:      "agent_climbing",
			Help:      "1, если агент сейчас внутри области лазания.",
		}),
	}

	def := func(name, help string, value func(structure.StatsSnapshot) uint64) {
		e.counters = append(e.counters, counter{
			c: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "structure",
				Name:      name,
				Help:      help,
			}),
			value: value,
		})
	}
	def("ticks_total", "Обработанных тиков.", func(s structure.StatsSnapshot) uint64 { return s.Ticks })
	def("shifts_total", "Сдвигов окна по всем осям.", func(s structure.StatsSnapshot) uint64 { return s.Shifts })
	def("tiles_created_total", "Созданных тайлов.", func(s structure.StatsSnapshot) uint64 { return s.TilesCreated })
	def("tiles_destroyed_total", "Уничтоженных тайлов.", func(s structure.StatsSnapshot) uint64 { return s.TilesDestroyed })
	def("columns_created_total", "Созданных колонн опоры.", func(s structure.StatsSnapshot) uint64 { return s.ColumnsCreated })
	def("columns_destroyed_total", "Уничтоженных колонн опоры.", func(s structure.StatsSnapshot) uint64 { return s.ColumnsDestroyed })
	def("ropes_placed_total", "Размещённых верёвок.", func(s structure.StatsSnapshot) uint64 { return s.RopesPlaced })
	def("ropes_rejected_total", "Верёвок, отклонённых из-за резерваций.", func(s structure.StatsSnapshot) uint64 { return s.RopesRejected })
	def("ramps_placed_total", "Размещённых пандусов.", func(s structure.StatsSnapshot) uint64 { return s.RampsPlaced })
	def("ramps_rejected_total", "Пандусов, отклонённых из-за резерваций.", func(s structure.StatsSnapshot) uint64 { return s.RampsRejected })
	def("probe_refreshes_total", "Запросов на обновление проб отражений.", func(s structure.StatsSnapshot) uint64 { return s.ProbeRefreshes })
	def("overruns_total", "Тиков, после которых агент остался вне центрального тайла.", func(s structure.StatsSnapshot) uint64 { return s.Overruns })

	collectors := make([]prometheus.Collector, 0, len(e.counters)+1)
	for _, c := range e.counters {
		collectors = append(collectors, c.c)
	}
	collectors = append(collectors, e.climbing)
	reg.MustRegister(collectors...)
	return e
}

// SetClimbing обновляет gauge лазания
func (e *StructureExporter) SetClimbing(inside bool) {
	if inside {
		e.climbing.Set(1)
		return
	}
	e.climbing.Set(0)
}

// Start запускает фоновое обновление. Неблокирующий, повторный вызов игнорируется.
func (e *StructureExporter) Start(interval time.Duration) {
	if !e.started.CompareAndSwap(false, true) {
		return
	}
	go e.loop(interval)
}

// Stop останавливает цикл, делая последний Collect.
// Без Start просто собирает дельты.
func (e *StructureExporter) Stop() {
	e.once.Do(func() {
		close(e.quit)
		if e.started.Load() {
			<-e.done
			return
		}
		e.Collect()
	})
}

// Collect прибавляет дельты с прошлого вызова
func (e *StructureExporter) Collect() {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.src.Snapshot()
	for _, c := range e.counters {
		if d := c.value(cur) - c.value(e.prev); d > 0 {
			c.c.Add(float64(d))
		}
	}
	e.prev = cur
}

func (e *StructureExporter) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(e.done)

	for {
		select {
		case <-ticker.C:
			e.Collect()
		case <-e.quit:
			e.Collect()
			return
		}
	}
}
