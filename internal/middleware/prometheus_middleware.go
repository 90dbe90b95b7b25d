package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsPath — маршрут экспорта метрик; сам в метрики не попадает
const metricsPath = "/metrics"

// DefaultBuckets — границы гистограммы длительности. Отладочные ручки отвечают из памяти,
// поэтому сетка сдвинута в сторону миллисекунд.
var DefaultBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1}

// PrometheusMiddleware снимает HTTP-метрики Gin:
//
//	<ns>_http_request_duration_seconds{method,path,status}  histogram
//	<ns>_http_requests_inflight                             gauge
//	<ns>_http_request_errors_total{method,path,status}      counter, только 4xx/5xx
//
// path — шаблон маршрута (/api/tiles/:i/:j/:k), поэтому число серий ограничено.
type PrometheusMiddleware struct {
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
	errors   *prometheus.CounterVec
	skip     map[string]bool
}

// NewPrometheusMiddleware регистрирует метрики с префиксом namespace в reg
// (nil — prometheus.DefaultRegisterer).
func NewPrometheusMiddleware(namespace string, reg prometheus.Registerer, skipPaths ...string) *PrometheusMiddleware {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := []string{"method", "path", "status"}
	pm := &PrometheusMiddleware{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Длительность HTTP-запросов.",
			Buckets:   DefaultBuckets,
		}, labels),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "Запросы, которые обрабатываются прямо сейчас.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_errors_total",
			Help:      "Запросы, завершившиеся статусом 4xx или 5xx.",
		}, labels),
		skip: map[string]bool{metricsPath: true},
	}
	for _, p := range skipPaths {
		pm.skip[p] = true
	}
	reg.MustRegister(pm.duration, pm.inflight, pm.errors)
	return pm
}

// Handler возвращает middleware для router.Use()
func (pm *PrometheusMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched" // 404 без маршрута не должен плодить серии по сырому URL
		}
		if pm.skip[path] {
			c.Next()
			return
		}

		pm.inflight.Inc()
		start := time.Now()
		defer func() {
			pm.inflight.Dec()
			code := c.Writer.Status()
			status := strconv.Itoa(code)
			pm.duration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
			if code >= 400 {
				pm.errors.WithLabelValues(c.Request.Method, path, status).Inc()
			}
		}()
		c.Next()
	}
}

// RegisterMetricsEndpoint добавляет GET /metrics с метриками из g
// (nil — глобальный регистр).
func (pm *PrometheusMiddleware) RegisterMetricsEndpoint(r gin.IRoutes, g prometheus.Gatherer) {
	h := promhttp.Handler()
	if g != nil {
		h = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
	r.GET(metricsPath, gin.WrapH(h))
}
