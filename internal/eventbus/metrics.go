package eventbus

import "github.com/prometheus/client_golang/prometheus"

// Collector отдаёт Stats шины в Prometheus в момент скрейпа.
// Фоновых горутин нет: значения читаются из Metrics() при каждом Collect.
type Collector struct {
	bus EventBus

	published *prometheus.Desc
	consumed  *prometheus.Desc
	dropped   *prometheus.Desc
	inflight  *prometheus.Desc
}

// NewCollector создаёт коллектор; labels добавляются ко всем метрикам как константы
func NewCollector(bus EventBus, labels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("eventbus", "", name), help, nil, labels)
	}
	return &Collector{
		bus:       bus,
		published: desc("messages_published_total", "Сообщений, принятых шиной."),
		consumed:  desc("messages_consumed_total", "Доставок подписчикам."),
		dropped:   desc("messages_dropped_total", "Сообщений, отброшенных из-за ошибок или back-pressure."),
		inflight:  desc("messages_inflight", "Сообщений в очереди, ещё не доставленных."),
	}
}

// Describe реализует prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.published
	ch <- c.consumed
	ch <- c.dropped
	ch <- c.inflight
}

// Collect реализует prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.bus.Metrics()
	ch <- prometheus.MustNewConstMetric(c.published, prometheus.CounterValue, float64(s.Published))
	ch <- prometheus.MustNewConstMetric(c.consumed, prometheus.CounterValue, float64(s.Consumed))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.Dropped))
	ch <- prometheus.MustNewConstMetric(c.inflight, prometheus.GaugeValue, float64(s.InFlight))
}
