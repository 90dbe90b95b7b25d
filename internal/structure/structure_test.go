package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/endless-structure/internal/vec"
)

// wallsRandom ставит стену везде, где это разрешено, и больше ничего
type wallsRandom struct{}

func (wallsRandom) Intn(n int) int {
	if n == 2 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return 0
}

func TestNewValidatesConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"чётная сторона", func(c *Config) { c.SideLength = 4 }, ErrInvalidSideLength},
		{"слишком маленькая сторона", func(c *Config) { c.SideLength = 1 }, ErrInvalidSideLength},
		{"нулевой тайл", func(c *Config) { c.TileLength = 0 }, ErrInvalidTileLength},
		{"нет материалов", func(c *Config) { c.Materials.Floor = nil }, ErrNoFloorMaterials},
		{"мало горок", func(c *Config) { c.Materials.Slide = c.Materials.Slide[:1] }, ErrSlideMaterials},
		{"нулевой шанс", func(c *Config) { c.Chances.RampOneIn = 0 }, ErrInvalidChance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(5, 1)
			tc.mutate(&cfg)
			_, err := New(cfg)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := New(DefaultConfig())
	assert.NoError(t, err, "конфигурация по умолчанию должна быть валидной")
}

func TestStartAndStepLifecycle(t *testing.T) {
	s, err := New(testConfig(5, 1))
	require.NoError(t, err)

	_, err = s.Step(vec.Vec3Float{})
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Nil(t, s.Snapshot())
	assert.Nil(t, s.TileAt(0, 0, 0))
	assert.Equal(t, 0, s.TileCount())

	require.NoError(t, s.Start(vec.Vec3Float{}))
	assert.ErrorIs(t, s.Start(vec.Vec3Float{}), ErrAlreadyStarted)
	assert.True(t, s.Started())
}

// Scenario A
func TestStartBuildsWindowAroundAgent(t *testing.T) {
	s := newStarted(t, 5, 1, WithRandom(NewRandom(7)))

	assert.Equal(t, 125, s.TileCount(), "окно должно содержать L^3 тайлов")
	assert.Equal(t, 25, s.SupportCount(), "колонн должно быть L^2")
	assert.Equal(t, 9*9*9*5, s.Reservations().Cells())
	assert.Equal(t, vec.Vec3Float{}, s.TileAt(2, 2, 2).Position, "центральный тайл совпадает с позицией агента")

	low, high := s.Bounds(vec.AxisX)
	assert.Equal(t, -0.5, low)
	assert.Equal(t, 0.5, high)
}

func TestStartRoundsTowardZero(t *testing.T) {
	s, err := New(testConfig(5, 2), WithRandom(quietRandom{}))
	require.NoError(t, err)
	require.NoError(t, s.Start(vec.Vec3Float{X: 1.7, Y: -2.9, Z: 0.4}))

	want := vec.Vec3Float{X: 1, Y: -2, Z: 0}
	assert.Equal(t, want, s.Anchor())
	assert.Equal(t, want, s.TileAt(2, 2, 2).Position)
	assert.Equal(t, vec.Vec3Float{X: -3, Y: -6, Z: -4}, s.TileAt(0, 0, 0).Position)
}

func TestCenterSeamHasNoWalls(t *testing.T) {
	s := newStarted(t, 5, 1, WithRandom(wallsRandom{}))

	center := s.TileAt(2, 2, 2)
	assert.False(t, center.Walls[0].Present(), "центр не должен отгораживаться от себя")
	assert.False(t, center.Walls[1].Present())
	assert.False(t, s.TileAt(1, 2, 2).Walls[0].Present(), "грань X соседа слева подавлена")
	assert.False(t, s.TileAt(2, 2, 1).Walls[1].Present(), "грань Z соседа сзади подавлена")
	assert.True(t, s.TileAt(1, 2, 2).Walls[1].Present(), "прочие грани не подавляются")
}

// Scenario B
func TestStepShiftsSlabAlongX(t *testing.T) {
	hooks := &recordingHooks{}
	s := newStarted(t, 5, 1, WithRandom(quietRandom{}), WithHooks(hooks))

	var trailing []uint64
	for j := 0; j < 5; j++ {
		for k := 0; k < 5; k++ {
			trailing = append(trailing, s.TileAt(0, j, k).ID)
		}
	}
	survivor := s.TileAt(1, 3, 3)

	res := s.Reservations()
	res.Reserve(v3(4, 0, 0), SlotWallA)
	res.Reserve(v3(-2, 0, 0), SlotFloor) // хвостовой слой сетки резерваций

	step, err := s.Step(vec.Vec3Float{X: 1})
	require.NoError(t, err)
	assert.Equal(t, v3(1, 0, 0), step.Changes)
	assert.True(t, step.Shifted)
	assert.False(t, step.Lagging)

	require.Len(t, hooks.shifts, 1)
	ev := hooks.shifts[0]
	assert.Equal(t, vec.AxisX, ev.Axis)
	assert.Equal(t, 1, ev.Dir)
	assert.ElementsMatch(t, trailing, ev.Destroyed, "должен уйти ровно слой i=0")
	assert.Len(t, ev.Created, 25)

	assert.Same(t, survivor, s.TileAt(0, 3, 3), "выжившие тайлы переезжают на -1 по X")
	assert.Equal(t, vec.Vec3Float{X: 1}, s.Anchor())
	for j := 0; j < 5; j++ {
		for k := 0; k < 5; k++ {
			tile := s.TileAt(4, j, k)
			assert.Contains(t, ev.Created, tile.ID)
			assert.Equal(t, vec.Vec3Float{X: 3, Y: float64(j - 2), Z: float64(k - 2)}, tile.Position)
		}
	}

	assert.True(t, res.IsReserved(v3(3, 0, 0), SlotWallA), "резервация переезжает вместе с окном")
	assert.False(t, res.IsReserved(v3(4, 0, 0), SlotWallA), "в новый слой не копируются старые флаги")
	assert.Equal(t, 1, res.Count())

	stats := s.Stats().Snapshot()
	assert.Equal(t, uint64(1), stats.Shifts)
	assert.Equal(t, uint64(25), stats.TilesDestroyed)
	assert.Equal(t, uint64(125+25), stats.TilesCreated)
	assert.Equal(t, uint64(5), stats.ColumnsDestroyed)
}

func TestStepShiftAndBack(t *testing.T) {
	s := newStarted(t, 5, 2, WithRandom(NewRandom(3)))
	anchor := s.Anchor()
	low, high := s.Bounds(vec.AxisZ)

	step, err := s.Step(vec.Vec3Float{Z: -2})
	require.NoError(t, err)
	assert.Equal(t, v3(0, 0, -1), step.Changes)

	step, err = s.Step(vec.Vec3Float{})
	require.NoError(t, err)
	assert.Equal(t, v3(0, 0, 1), step.Changes)

	assert.Equal(t, anchor, s.Anchor())
	l2, h2 := s.Bounds(vec.AxisZ)
	assert.Equal(t, low, l2)
	assert.Equal(t, high, h2)
	assertPositions(t, s)
}

func TestStepWithinTileDoesNothing(t *testing.T) {
	s := newStarted(t, 5, 4, WithRandom(quietRandom{}))
	step, err := s.Step(vec.Vec3Float{X: 1.9, Y: -2, Z: 2})
	require.NoError(t, err)
	assert.False(t, step.Shifted, "граница включительна: 2 = tl/2")
	assert.Equal(t, vec.Vec3{}, step.Changes)
}

func TestStepLagsOnFastMovement(t *testing.T) {
	s := newStarted(t, 5, 1, WithRandom(quietRandom{}))

	step, err := s.Step(vec.Vec3Float{X: 5, Y: -3})
	require.NoError(t, err)
	assert.Equal(t, v3(1, -1, 0), step.Changes, "по каждой оси только один сдвиг за тик")
	assert.True(t, step.Lagging)
	assert.Equal(t, uint64(1), s.Stats().Overruns.Load())

	for i := 0; i < 3; i++ {
		_, err = s.Step(vec.Vec3Float{X: 5, Y: -3})
		require.NoError(t, err)
	}
	step, err = s.Step(vec.Vec3Float{X: 5, Y: -3})
	require.NoError(t, err)
	assert.False(t, step.Lagging, "окно догоняет агента за несколько тиков")
	assert.Equal(t, vec.Vec3Float{X: 5, Y: -3}, s.Anchor())
}

func TestProbeRefreshEveryRadiusMinusOneTicks(t *testing.T) {
	hooks := &recordingHooks{}
	s := newStarted(t, 5, 1, WithRandom(quietRandom{}), WithHooks(hooks))

	refreshes := 0
	for x := 1; x <= 6; x++ {
		step, err := s.Step(vec.Vec3Float{X: float64(x), Z: float64(x)})
		require.NoError(t, err)
		if step.ProbeRefresh {
			refreshes++
		}
	}
	_, err := s.Step(vec.Vec3Float{X: 6, Z: 6})
	require.NoError(t, err)

	assert.Equal(t, 3, refreshes, "радиус 3: обновление каждые 2 тика со сдвигом")
	assert.Len(t, hooks.probes, 3)
	assert.Len(t, hooks.shifts, 12, "по два сдвига за тик")
	assert.Equal(t, uint64(3), hooks.probes[2].Count)
}

func TestProbeRefreshReportsNearbyMirrors(t *testing.T) {
	hooks := &recordingHooks{}
	s := newStarted(t, 3, 1, WithRandom(quietRandom{}), WithHooks(hooks))
	s.TileAt(1, 1, 0).Walls[1] = Wall{Kind: WallSolidWithMirror}
	s.TileAt(0, 0, 0).Walls[0] = Wall{Kind: WallSolidWithMirror}

	_, err := s.Step(vec.Vec3Float{Y: 1})
	require.NoError(t, err)
	require.Len(t, hooks.probes, 1, "радиус 2: обновление на каждом тике со сдвигом")

	// Тайл (1,1,0) после сдвига по Y стал (1,0,0); зеркало на (0, 0, -0.5)
	assert.Contains(t, hooks.probes[0].Mirrors, vec.Vec3Float{Z: -0.5})
	assert.Len(t, hooks.probes[0].Mirrors, 1, "тайл (0,0,0) ушёл из окна")
}

func TestRandomWalkKeepsInvariants(t *testing.T) {
	s := newStarted(t, 7, 2, WithRandom(NewRandom(42)))
	walk := NewRandom(99)
	agent := vec.Vec3Float{}

	for tick := 0; tick < 150; tick++ {
		axis := vec.Axes[walk.Intn(3)]
		dir := float64(walk.Intn(2)*2 - 1)
		agent.Set(axis, agent.Get(axis)+dir*1.5)

		_, err := s.Step(agent)
		require.NoError(t, err)

		require.Equal(t, 343, s.TileCount(), "тик %d", tick)
		require.Equal(t, 49, s.SupportCount(), "тик %d", tick)
		require.Equal(t, 13*13*13*5, s.Reservations().Cells())
	}
	assertPositions(t, s)

	for i := 0; i < 7; i++ {
		for j := 0; j < 7; j++ {
			col := s.Support(i, j)
			assert.InDelta(t, s.supports.PositionOf(s.Anchor(), i, j).X, col.Position.X, 1e-9)
			assert.InDelta(t, s.Anchor().Y, col.Position.Y, 1e-9)
			assert.InDelta(t, s.supports.PositionOf(s.Anchor(), i, j).Z, col.Position.Z, 1e-9)
		}
	}
	assert.Greater(t, s.Stats().Shifts.Load(), uint64(0))
}

func TestSameSeedSameWorld(t *testing.T) {
	walk := []vec.Vec3Float{{X: 3}, {X: 6}, {X: 6, Y: -3}, {X: 6, Y: -3, Z: 9}}
	build := func() *Snapshot {
		s := newStarted(t, 7, 2, WithRandom(NewRandom(2024)))
		for _, p := range walk {
			_, err := s.Step(p)
			require.NoError(t, err)
		}
		return s.Snapshot()
	}

	a, b := build(), build()
	assert.Equal(t, a.Tiles, b.Tiles, "одинаковое зерно даёт одинаковый мир")
	assert.Equal(t, a.Reservations.Count(), b.Reservations.Count())
}

func TestTileContaining(t *testing.T) {
	s := newStarted(t, 5, 2, WithRandom(quietRandom{}))

	c, ok := s.TileContaining(vec.Vec3Float{X: 0.9, Y: -0.9, Z: 0})
	assert.True(t, ok)
	assert.Equal(t, v3(2, 2, 2), c)

	c, ok = s.TileContaining(vec.Vec3Float{X: -4, Y: 3.5, Z: 1.2})
	assert.True(t, ok)
	assert.Equal(t, v3(0, 4, 3), c)

	_, ok = s.TileContaining(vec.Vec3Float{X: 100})
	assert.False(t, ok)
}

func TestSnapshotIsDetached(t *testing.T) {
	s := newStarted(t, 5, 1, WithRandom(quietRandom{}))
	snap := s.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 125, snap.TileCount())
	assert.Len(t, snap.Supports, 25)

	tile, ok := snap.Tile(v3(2, 2, 2))
	require.True(t, ok)
	assert.Equal(t, s.TileAt(2, 2, 2).ID, tile.ID)
	_, ok = snap.Tile(v3(5, 0, 0))
	assert.False(t, ok)

	s.Reservations().Reserve(v3(0, 0, 0), SlotFloor)
	_, err := s.Step(vec.Vec3Float{Y: 1})
	require.NoError(t, err)

	assert.False(t, snap.Reservations.IsReserved(v3(0, 0, 0), SlotFloor), "снимок не видит новых резерваций")
	assert.Equal(t, vec.Vec3Float{}, snap.Anchor)
	tile, _ = snap.Tile(v3(2, 2, 2))
	assert.NotEqual(t, s.TileAt(2, 2, 2).ID, tile.ID, "окно уехало, снимок остался")
}

func assertPositions(t *testing.T, s *Structure) {
	t.Helper()
	tl := s.TileLength()
	r := float64(s.Radius())
	anchor := s.Anchor()
	s.tiles.Each(func(c vec.Vec3, tile *Tile) {
		want := vec.Vec3Float{
			X: anchor.X + tl*(float64(c.X)-r+1),
			Y: anchor.Y + tl*(float64(c.Y)-r+1),
			Z: anchor.Z + tl*(float64(c.Z)-r+1),
		}
		assert.InDelta(t, want.X, tile.Position.X, 1e-9, "тайл %v", c)
		assert.InDelta(t, want.Y, tile.Position.Y, 1e-9, "тайл %v", c)
		assert.InDelta(t, want.Z, tile.Position.Z, 1e-9, "тайл %v", c)
	})
}

func TestRampClearanceSurvivesShiftPastEdge(t *testing.T) {
	s := newStarted(t, 5, 1, WithRandom(quietRandom{}))
	fg := s.Features()
	res := s.Reservations()

	// Пандус в верхнем слое: потолок и площадка лежат за окном
	c := v3(1, 4, 1)
	require.True(t, fg.PlaceRamp(c, RampTiltX, 1))
	assert.True(t, res.IsReserved(v3(1, 5, 1), SlotFloor), "потолок за окном резервируется")
	assert.True(t, res.IsReserved(v3(1, 5, 2), SlotFloor))
	assert.True(t, res.IsReserved(v3(1, 5, 2), SlotWallB))

	step, err := s.Step(vec.Vec3Float{Y: 1})
	require.NoError(t, err)
	require.Equal(t, v3(0, 1, 0), step.Changes)

	assert.Equal(t, FloorRamp, s.TileAt(1, 3, 1).Floor.Kind, "пандус переехал на -1 по Y")
	above := s.TileAt(1, 4, 1)
	assert.Equal(t, FloorAbsent, above.Floor.Kind, "пол над пандусом не строится заново")
	assert.True(t, res.IsReserved(v3(1, 4, 1), SlotFloor))
	assert.Equal(t, FloorAbsent, s.TileAt(1, 4, 2).Floor.Kind)
	assert.False(t, s.TileAt(1, 4, 2).Walls[1].Present())
	assert.False(t, above.Crossbars[1].Present, "перекладина X над пандусом не строится")
	assert.True(t, above.Crossbars[0].Present)
}
