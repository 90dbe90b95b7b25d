package structure

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/annel0/endless-structure/internal/vec"
)

// quietRandom никогда не выбрасывает ноль при n>1: полы обычные, стен и фич нет
type quietRandom struct{}

func (quietRandom) Intn(n int) int {
	if n > 1 {
		return 1
	}
	return 0
}

// scriptedRandom выдаёт заранее заданные значения и запоминает запрошенные n
type scriptedRandom struct {
	values []int
	asked  []int
}

func (r *scriptedRandom) Intn(n int) int {
	r.asked = append(r.asked, n)
	if len(r.values) == 0 {
		if n > 1 {
			return 1
		}
		return 0
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v % n
}

type recordingHooks struct {
	shifts []ShiftEvent
	probes []ProbeRefreshEvent
}

func (h *recordingHooks) SlabShifted(ev ShiftEvent)          { h.shifts = append(h.shifts, ev) }
func (h *recordingHooks) ProbeRefresh(ev ProbeRefreshEvent) { h.probes = append(h.probes, ev) }

func testConfig(side int, tileLength float64) Config {
	return Config{
		SideLength: side,
		TileLength: tileLength,
		Materials: Materials{
			Floor:      []Handle{10, 11, 12},
			Slide:      []Handle{20, 21, 22},
			Plexiglass: 30,
			Mirror:     31,
			Rope:       32,
			WallNet:    33,
		},
		Chances: DefaultChances(),
	}
}

func newStarted(t *testing.T, side int, tileLength float64, opts ...Option) *Structure {
	t.Helper()
	s, err := New(testConfig(side, tileLength), opts...)
	require.NoError(t, err)
	require.NoError(t, s.Start(vec.Vec3Float{}))
	return s
}

func v3(x, y, z int) vec.Vec3 { return vec.Vec3{X: x, Y: y, Z: z} }
