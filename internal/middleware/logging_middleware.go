package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/endless-structure/internal/logging"
)

// TraceHeader — заголовок с trace-ID; принимается во входящем запросе и отдаётся в ответе
const TraceHeader = "X-Trace-ID"

// TraceKey — ключ trace-ID в gin.Context
const TraceKey = "trace_id"

// RequestLogger присваивает запросу trace-ID и пишет строку в лог по завершении.
// Приоритет trace-ID: активный OTel span, заголовок X-Trace-ID, новый UUID.
type RequestLogger struct {
	log *logging.Logger
}

// NewRequestLogger создаёт middleware; nil — логгер по умолчанию
func NewRequestLogger(log *logging.Logger) *RequestLogger {
	if log == nil {
		log = logging.Default()
	}
	return &RequestLogger{log: log}
}

// traceID выбирает идентификатор для запроса
func traceID(c *gin.Context) string {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	if h := c.GetHeader(TraceHeader); h != "" {
		return h
	}
	return uuid.NewString()
}

func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := traceID(c)
		c.Set(TraceKey, id)
		c.Header(TraceHeader, id)

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		rl.log.Debugf("[HTTP] ▶ %s %s ip=%s trace=%s", c.Request.Method, route, c.ClientIP(), id)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		logf := rl.log.Infof
		if status >= 500 || len(c.Errors) > 0 {
			logf = rl.log.Warnf
		}
		logf("[HTTP] ◀ %s %s %d %s trace=%s", c.Request.Method, route, status, time.Since(start), id)
	}
}
