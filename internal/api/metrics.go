package api

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

var errNoProcess = errors.New("process metrics unavailable")

// ServerMetrics снимает метрики процесса для /api/server и /api/stats
type ServerMetrics struct {
	started time.Time
	proc    *process.Process
}

// NewServerMetrics запоминает время старта и открывает описатель процесса.
// Без доступа к /proc остаются только runtime-метрики.
func NewServerMetrics() *ServerMetrics {
	sm := &ServerMetrics{started: time.Now()}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		sm.proc = p
	}
	return sm
}

// Uptime возвращает время работы с точностью до секунды
func (sm *ServerMetrics) Uptime() time.Duration {
	return time.Since(sm.started).Truncate(time.Second)
}

// UptimeString форматирует аптайм как "2д 3ч 4м 5с", опуская старшие нулевые разряды
func (sm *ServerMetrics) UptimeString() string {
	return formatUptime(sm.Uptime())
}

func formatUptime(d time.Duration) string {
	s := int64(d / time.Second)
	days, s := s/86400, s%86400
	hours, s := s/3600, s%3600
	minutes, s := s/60, s%60
	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, s)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, s)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, s)
	}
	return fmt.Sprintf("%dс", s)
}

// CPUPercent — загрузка CPU процессом с момента старта
func (sm *ServerMetrics) CPUPercent() (float64, error) {
	if sm.proc == nil {
		return 0, errNoProcess
	}
	return sm.proc.CPUPercent()
}

// RSSMegabytes — резидентная память процесса
func (sm *ServerMetrics) RSSMegabytes() (float64, error) {
	if sm.proc == nil {
		return 0, errNoProcess
	}
	info, err := sm.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(info.RSS) / (1 << 20), nil
}

// RuntimeStats — куча и горутины Go runtime
func (sm *ServerMetrics) RuntimeStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return map[string]interface{}{
		"heap_alloc_mb": float64(m.HeapAlloc) / (1 << 20),
		"sys_mb":        float64(m.Sys) / (1 << 20),
		"num_gc":        m.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}
}
