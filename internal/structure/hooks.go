package structure

import "github.com/annel0/endless-structure/internal/vec"

// Logger — минимальный интерфейс журнала ядра. *logging.Logger ему удовлетворяет.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}

// ShiftEvent описывает один сдвиг окна вдоль оси
type ShiftEvent struct {
	Axis      vec.Axis
	Dir       int
	Anchor    vec.Vec3Float
	Created   []uint64 // ID тайлов ведущего слоя
	Destroyed []uint64 // ID тайлов отброшенного слоя
	Ropes     int      // Верёвки, размещённые в новом слое
	Ramps     int      // Пандусы, размещённые в новом слое
}

// ProbeRefreshEvent просит рендерер обновить пробы отражений
type ProbeRefreshEvent struct {
	Agent   vec.Vec3Float
	Mirrors []vec.Vec3Float // Зеркала в пределах 3*tileLength от агента
	Count   uint64          // Номер обновления
}

// Hooks получает события структуры. Вызывается синхронно внутри Step.
type Hooks interface {
	SlabShifted(ev ShiftEvent)
	ProbeRefresh(ev ProbeRefreshEvent)
}

// NopHooks игнорирует все события
type NopHooks struct{}

func (NopHooks) SlabShifted(ShiftEvent)          {}
func (NopHooks) ProbeRefresh(ProbeRefreshEvent) {}
