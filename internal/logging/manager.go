package logging

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

// Имена компонентов сервиса
const (
	ComponentStructure = "structure"
	ComponentServer    = "server"
	ComponentAPI       = "api"
	ComponentEventBus  = "eventbus"
)

// LoggerManager держит по одному логгеру на компонент и общие пороги для новых логгеров.
type LoggerManager struct {
	mu           sync.Mutex
	loggers      map[string]*Logger
	consoleLevel LogLevel
	fileLevel    LogLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = NewLoggerManager()
	})
	return globalManager
}

// NewLoggerManager создаёт пустой менеджер с порогами INFO (консоль) и TRACE (файл)
func NewLoggerManager() *LoggerManager {
	return &LoggerManager{
		loggers:      make(map[string]*Logger),
		consoleLevel: INFO,
		fileLevel:    TRACE,
	}
}

// SetDefaultLevels меняет пороги всех текущих логгеров и тех, что будут созданы позже
func (lm *LoggerManager) SetDefaultLevels(consoleLevel, fileLevel LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.consoleLevel, lm.fileLevel = consoleLevel, fileLevel
	for _, l := range lm.loggers {
		l.SetLevels(consoleLevel, fileLevel)
	}
}

// GetLogger возвращает логгер компонента, при первом обращении открывая его файл
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if l, ok := lm.loggers[component]; ok {
		return l, nil
	}
	l, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("logger for %s: %w", component, err)
	}
	l.SetLevels(lm.consoleLevel, lm.fileLevel)
	lm.loggers[component] = l
	return l, nil
}

// MustGetLogger возвращает логгер компонента; без файла откатывается на stdout
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	l, err := lm.GetLogger(component)
	if err == nil {
		return l
	}
	lm.mu.Lock()
	defer lm.mu.Unlock()
	fallback := NewConsoleLogger(os.Stdout, lm.consoleLevel)
	fallback.component = component
	lm.loggers[component] = fallback
	return fallback
}

// Register подменяет логгер компонента (тесты, CLI)
func (lm *LoggerManager) Register(component string, logger *Logger) {
	lm.mu.Lock()
	lm.loggers[component] = logger
	lm.mu.Unlock()
}

// SetLogLevel меняет пороги одного компонента
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.Lock()
	l, ok := lm.loggers[component]
	lm.mu.Unlock()
	if !ok {
		return fmt.Errorf("logger for component %s not found", component)
	}
	l.SetLevels(consoleLevel, fileLevel)
	return nil
}

// Components возвращает отсортированные имена зарегистрированных компонентов
func (lm *LoggerManager) Components() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	out := make([]string, 0, len(lm.loggers))
	for c := range lm.loggers {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// CloseAll закрывает файлы всех логгеров и очищает реестр
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var firstErr error
	for c, l := range lm.loggers {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close logger %s: %w", c, err)
		}
	}
	lm.loggers = make(map[string]*Logger)
	return firstErr
}

// GetComponentLogger — логгер компонента из глобального менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetStructureLogger() *Logger { return GetComponentLogger(ComponentStructure) }

func GetServerLogger() *Logger { return GetComponentLogger(ComponentServer) }

func GetAPILogger() *Logger { return GetComponentLogger(ComponentAPI) }

func GetEventBusLogger() *Logger { return GetComponentLogger(ComponentEventBus) }
