package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/endless-structure/internal/structure"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.Metric[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("метрика %s не найдена", name)
	return 0
}

func TestStructureExporter_Deltas(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats := &structure.Stats{}
	e := NewStructureExporter(stats, reg)

	stats.Shifts.Add(3)
	stats.TilesCreated.Add(363)
	e.Collect()
	assert.Equal(t, float64(3), counterValue(t, reg, "structure_shifts_total"))
	assert.Equal(t, float64(363), counterValue(t, reg, "structure_tiles_created_total"))

	// Повторный Collect без изменений ничего не добавляет
	e.Collect()
	assert.Equal(t, float64(3), counterValue(t, reg, "structure_shifts_total"))

	stats.Shifts.Add(2)
	stats.Overruns.Add(1)
	e.Collect()
	assert.Equal(t, float64(5), counterValue(t, reg, "structure_shifts_total"))
	assert.Equal(t, float64(1), counterValue(t, reg, "structure_overruns_total"))
}

func TestStructureExporter_RegistersAll(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewStructureExporter(&structure.Stats{}, reg)

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 13, n, "12 счётчиков и gauge лазания")
}

func TestStructureExporter_Climbing(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewStructureExporter(&structure.Stats{}, reg)

	e.SetClimbing(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(e.climbing))
	e.SetClimbing(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(e.climbing))
}

func TestStructureExporter_StopFlushes(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats := &structure.Stats{}
	e := NewStructureExporter(stats, reg)

	e.Start(time.Hour)
	stats.Ticks.Add(7)
	e.Stop()
	e.Stop()

	assert.Equal(t, float64(7), counterValue(t, reg, "structure_ticks_total"))
}

func TestStructureExporter_StopWithoutStart(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats := &structure.Stats{}
	e := NewStructureExporter(stats, reg)
	stats.Shifts.Add(2)

	stopped := make(chan struct{})
	go func() {
		e.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop без Start не должен блокироваться")
	}
	assert.Equal(t, float64(2), counterValue(t, reg, "structure_shifts_total"), "дельты собираются и без цикла")
}

func TestStructureExporter_DoubleStart(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats := &structure.Stats{}
	e := NewStructureExporter(stats, reg)

	e.Start(time.Hour)
	e.Start(time.Hour)
	stats.Ticks.Add(1)
	assert.NotPanics(t, e.Stop, "второй цикл не запускается")
	assert.Equal(t, float64(1), counterValue(t, reg, "structure_ticks_total"))
}
