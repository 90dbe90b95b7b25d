package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/annel0/endless-structure/internal/api"
	"github.com/annel0/endless-structure/internal/app"
	"github.com/annel0/endless-structure/internal/config"
	"github.com/annel0/endless-structure/internal/eventbus"
	"github.com/annel0/endless-structure/internal/logging"
	"github.com/annel0/endless-structure/internal/metrics"
	"github.com/annel0/endless-structure/internal/observability"
	"github.com/annel0/endless-structure/internal/structure"
)

const serviceSource = "endless-structure"

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию ENV STRUCTURE_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем систему логирования
	logging.LogDir = cfg.Logging.Dir
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	consoleLevel := logging.ParseLevel(cfg.Logging.ConsoleLevel)
	fileLevel := logging.ParseLevel(cfg.Logging.FileLevel)
	logging.Default().SetLevels(consoleLevel, fileLevel)
	logging.GetLoggerManager().SetDefaultLevels(consoleLevel, fileLevel)

	logging.Info("🧱 Запуск Endless Structure: L=%d, tl=%.2f, seed=%d",
		cfg.Structure.SideLength, cfg.Structure.TileLength, cfg.Structure.Seed)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === OBSERVABILITY ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry, logging.Default())
	if err != nil {
		logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// === EVENT BUS ===
	bus, err := newBus(cfg.EventBus)
	if err != nil {
		logging.Error("❌ Ошибка подключения к шине событий: %v", err)
		os.Exit(1)
	}
	busLog := logging.GetEventBusLogger()
	if _, err := eventbus.StartLoggingListener(ctx, bus, busLog); err != nil {
		logging.Warn("LoggingListener не запущен: %v", err)
	}
	registry.MustRegister(eventbus.NewCollector(bus, nil))

	eventLog := api.NewEventLog(0)
	if err := eventLog.Attach(ctx, bus); err != nil {
		logging.Warn("Журнал событий не подключён: %v", err)
	}

	// === STRUCTURE ===
	notifier := app.NewNotifier(ctx, bus, serviceSource, busLog)
	st, err := structure.New(cfg.StructureConfig(),
		structure.WithRandom(structure.NewRandom(cfg.Structure.Seed)),
		structure.WithHooks(notifier),
		structure.WithLogger(logging.GetStructureLogger()),
	)
	if err != nil {
		logging.Error("❌ Неверная конфигурация структуры: %v", err)
		os.Exit(1)
	}

	structExporter := metrics.NewStructureExporter(st.Stats(), registry)
	structExporter.Start(time.Second)

	walker := app.NewWalker(cfg.Agent.AgentStart(), cfg.Agent.Route(), cfg.Agent.Speed)
	runner := app.NewRunner(st, walker,
		app.WithNotifier(notifier),
		app.WithClimbObserver(structExporter),
		app.WithRunnerLogger(logging.GetServerLogger()),
		app.WithTickRate(cfg.Agent.TickRate),
	)

	// === REST API ===
	gin.SetMode(gin.ReleaseMode)
	restPort := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	rest := api.NewRestServer(api.Config{
		Port:     restPort,
		Source:   runner,
		Bus:      bus,
		Events:   eventLog,
		Logger:   logging.GetAPILogger(),
		Registry: registry,
	})
	go func() {
		if err := rest.Start(); err != nil {
			logging.Error("❌ Ошибка REST API: %v", err)
			stop()
		}
	}()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost%s", restPort)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restPort)
	logging.Info("   📈 Метрики: http://localhost%s/metrics", restPort)

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("❌ Runner остановлен с ошибкой: %v", err)
	}

	// === GRACEFUL SHUTDOWN ===
	logging.Info("📡 Завершение работы...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rest.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	eventLog.Detach()
	structExporter.Stop()
	if err := bus.Close(); err != nil {
		logging.Error("❌ Ошибка закрытия шины: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки OpenTelemetry: %v", err)
	}

	s := st.Stats().Snapshot()
	logging.Info("👋 Сервер остановлен: тиков %d, сдвигов %d, верёвок %d, пандусов %d",
		s.Ticks, s.Shifts, s.RopesPlaced, s.RampsPlaced)
}

// newBus выбирает JetStream при заданном URL, иначе in-memory шину
func newBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		logging.Info("📨 Шина событий: in-memory")
		return eventbus.NewMemoryBus(1024), nil
	}
	retention := time.Duration(cfg.Retention) * time.Hour
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, retention)
	if err != nil {
		return nil, err
	}
	logging.Info("📨 Шина событий: JetStream %s, stream=%s", cfg.URL, cfg.Stream)
	return bus, nil
}
