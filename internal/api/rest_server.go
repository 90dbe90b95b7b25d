package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/endless-structure/internal/eventbus"
	"github.com/annel0/endless-structure/internal/logging"
	"github.com/annel0/endless-structure/internal/middleware"
	"github.com/annel0/endless-structure/internal/structure"
	"github.com/annel0/endless-structure/internal/vec"
)

// Version — версия сервиса в /api/server
const Version = "v0.1.0"

// StateSource отдаёт последнее опубликованное состояние раннера
type StateSource interface {
	Latest() *structure.Snapshot
	Agent() (pos vec.Vec3Float, climbing bool)
}

// RestServer представляет отладочный REST API только для чтения
type RestServer struct {
	router  *gin.Engine
	http    *http.Server
	source  StateSource
	bus     eventbus.EventBus
	events  *EventLog
	log     *logging.Logger
	metrics *ServerMetrics
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string               // адрес для запуска, по умолчанию ":8090"
	Source   StateSource          // источник снимков
	Bus      eventbus.EventBus    // необязательно: статистика шины в /api/stats
	Events   *EventLog            // необязательно: недавние события в /api/events
	Logger   *logging.Logger      // nil — логгер по умолчанию
	Registry *prometheus.Registry // nil — глобальный регистр Prometheus
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8090"
	}
	if config.Logger == nil {
		config.Logger = logging.Default()
	}

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	loggerMw := middleware.NewRequestLogger(config.Logger)
	router.Use(loggerMw.Handler())

	router.Use(otelgin.Middleware("structure_api"))

	var (
		reg prometheus.Registerer
		gat prometheus.Gatherer
	)
	if config.Registry != nil {
		reg, gat = config.Registry, config.Registry
	}
	promMw := middleware.NewPrometheusMiddleware("structure_api", reg)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, gat)

	rs := &RestServer{
		router:  router,
		source:  config.Source,
		bus:     config.Bus,
		events:  config.Events,
		log:     config.Logger,
		metrics: NewServerMetrics(),
	}
	rs.http = &http.Server{
		Addr:              config.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	rs.setupRoutes()
	return rs
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/window", rs.handleWindow)
		api.GET("/tiles/:i/:j/:k", rs.handleTile)
		api.GET("/reservations/:x/:y/:z", rs.handleReservations)
		api.GET("/climbable", rs.handleClimbable)
		api.GET("/events", rs.handleEvents)
		api.GET("/stats", rs.handleStats)
		api.GET("/server", rs.handleServerInfo)
	}
}

// Handler возвращает http.Handler сервера (используется в тестах)
func (rs *RestServer) Handler() http.Handler { return rs.router }

// Start блокирует до остановки сервера
func (rs *RestServer) Start() error {
	rs.log.Infof("🌐 REST API слушает %s", rs.http.Addr)
	if err := rs.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop выполняет graceful shutdown
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.http.Shutdown(ctx)
}

// snapshot возвращает последний снимок или пишет 503
func (rs *RestServer) snapshot(c *gin.Context) (*structure.Snapshot, bool) {
	var snap *structure.Snapshot
	if rs.source != nil {
		snap = rs.source.Latest()
	}
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Структура ещё не запущена",
		})
		return nil, false
	}
	return snap, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, GenericResponse{Success: false, Message: msg})
}

// intParams читает три целых параметра пути
func intParams(c *gin.Context, names ...string) (vec.Vec3, bool) {
	var out [3]int
	for i, name := range names {
		v, err := strconv.Atoi(c.Param(name))
		if err != nil {
			badRequest(c, "Неверный параметр "+name)
			return vec.Vec3{}, false
		}
		out[i] = v
	}
	return vec.Vec3{X: out[0], Y: out[1], Z: out[2]}, true
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	ready := rs.source != nil && rs.source.Latest() != nil
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"ready":  ready,
		"time":   time.Now().Unix(),
	})
}

func (rs *RestServer) handleWindow(c *gin.Context) {
	snap, ok := rs.snapshot(c)
	if !ok {
		return
	}
	pos, climbing := rs.source.Agent()
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Состояние окна",
		Data:    newWindowView(snap, pos, climbing),
	})
}

func (rs *RestServer) handleTile(c *gin.Context) {
	coord, ok := intParams(c, "i", "j", "k")
	if !ok {
		return
	}
	snap, ok := rs.snapshot(c)
	if !ok {
		return
	}
	t, ok := snap.Tile(coord)
	if !ok {
		notFound(c, "Тайл вне окна")
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Тайл",
		Data:    newTileView(coord, t, snap.TileLength),
	})
}

func (rs *RestServer) handleReservations(c *gin.Context) {
	coord, ok := intParams(c, "x", "y", "z")
	if !ok {
		return
	}
	snap, ok := rs.snapshot(c)
	if !ok {
		return
	}
	slots, ok := reservationView(snap.Reservations, coord)
	if !ok {
		notFound(c, "Ячейка вне сетки резерваций")
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Резервации",
		Data:    gin.H{"coord": coord, "slots": slots},
	})
}

func (rs *RestServer) handleClimbable(c *gin.Context) {
	var p [3]float64
	for i, name := range []string{"x", "y", "z"} {
		v, err := strconv.ParseFloat(c.Query(name), 64)
		if err != nil {
			badRequest(c, "Неверный параметр "+name)
			return
		}
		p[i] = v
	}
	snap, ok := rs.snapshot(c)
	if !ok {
		return
	}
	point := vec.Vec3Float{X: p[0], Y: p[1], Z: p[2]}
	data := gin.H{
		"point":     point,
		"climbable": snap.IsClimbable(point),
		"solid":     snap.SolidAt(point),
	}
	if coord, inside := snap.TileContaining(point); inside {
		data["tile"] = coord
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Проверка лазания", Data: data})
}

func (rs *RestServer) handleEvents(c *gin.Context) {
	if rs.events == nil {
		notFound(c, "Журнал событий отключён")
		return
	}
	limit := 50
	if q := c.Query("limit"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 0 {
			badRequest(c, "Неверный параметр limit")
			return
		}
		limit = v
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Недавние события",
		Data: gin.H{
			"total":  rs.events.Total(),
			"events": rs.events.Recent(c.Query("type"), limit),
		},
	})
}

func (rs *RestServer) handleStats(c *gin.Context) {
	snap, ok := rs.snapshot(c)
	if !ok {
		return
	}
	stats := map[string]interface{}{
		"structure": snap.Stats,
		"runtime":   rs.metrics.RuntimeStats(),
	}
	if rs.bus != nil {
		bs := rs.bus.Metrics()
		stats["eventbus"] = gin.H{
			"published": bs.Published,
			"consumed":  bs.Consumed,
			"dropped":   bs.Dropped,
			"inflight":  bs.InFlight,
		}
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data:    stats,
	})
}

func (rs *RestServer) handleServerInfo(c *gin.Context) {
	info := map[string]interface{}{
		"version": Version,
		"name":    "Endless Structure",
		"status":  "running",
		"uptime":  rs.metrics.UptimeString(),
	}
	if rss, err := rs.metrics.RSSMegabytes(); err == nil {
		info["rss_mb"] = rss
	}
	if cpu, err := rs.metrics.CPUPercent(); err == nil {
		info["cpu_percent"] = cpu
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    info,
	})
}
