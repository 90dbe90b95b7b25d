package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/endless-structure/internal/eventbus"
	"github.com/annel0/endless-structure/internal/structure"
	"github.com/annel0/endless-structure/internal/vec"
)

// scriptedPosition отдаёт заданные позиции по очереди, затем повторяет последнюю
type scriptedPosition struct {
	points []vec.Vec3Float
	calls  int
}

func (s *scriptedPosition) Position() vec.Vec3Float {
	i := s.calls
	if i >= len(s.points) {
		i = len(s.points) - 1
	}
	s.calls++
	return s.points[i]
}

// collector собирает события шины
type collector struct {
	mu     sync.Mutex
	events []*eventbus.Envelope
}

func (c *collector) handle(_ context.Context, ev *eventbus.Envelope) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev.EventType)
	}
	return out
}

func (c *collector) count(eventType string) int {
	n := 0
	for _, t := range c.types() {
		if t == eventType {
			n++
		}
	}
	return n
}

type climbObserver struct{ states []bool }

func (o *climbObserver) SetClimbing(inside bool) { o.states = append(o.states, inside) }

func testConfig() structure.Config {
	cfg := structure.DefaultConfig()
	cfg.SideLength = 7
	cfg.TileLength = 4
	return cfg
}

func newBus(t *testing.T) (eventbus.EventBus, *collector) {
	t.Helper()
	bus := eventbus.NewMemoryBus(1024)
	c := &collector{}
	_, err := bus.Subscribe(context.Background(), eventbus.Filter{}, c.handle)
	require.NoError(t, err)
	return bus, c
}

func TestWalker_FollowsRoute(t *testing.T) {
	route := []vec.Vec3Float{{X: 2}, {X: 2, Z: 2}}
	w := NewWalker(vec.Vec3Float{}, route, 1)

	assert.Equal(t, vec.Vec3Float{X: 1}, w.Position())
	assert.Equal(t, vec.Vec3Float{X: 2}, w.Position())
	assert.Equal(t, 1, w.Target(), "после достижения точки цель переключается")
	assert.Equal(t, vec.Vec3Float{X: 2, Z: 1}, w.Position())
	assert.Equal(t, vec.Vec3Float{X: 2, Z: 2}, w.Position())
	assert.Equal(t, 0, w.Target(), "маршрут замыкается на первую точку")
}

func TestWalker_CarriesRemainder(t *testing.T) {
	route := []vec.Vec3Float{{X: 1}, {X: 1, Y: 10}}
	w := NewWalker(vec.Vec3Float{}, route, 3)

	p := w.Position()
	assert.InDelta(t, 1.0, p.X, 1e-9)
	assert.InDelta(t, 2.0, p.Y, 1e-9, "остаток хода уходит на следующий отрезок")
}

func TestWalker_NoRoute(t *testing.T) {
	start := vec.Vec3Float{X: 3, Y: 1}
	w := NewWalker(start, nil, 1)
	assert.Equal(t, start, w.Position())
	assert.Equal(t, start, NewWalker(start, []vec.Vec3Float{{X: 9}}, 0).Position())
}

func TestDrift(t *testing.T) {
	d := NewDrift(vec.Vec3Float{}, vec.Vec3Float{Z: -10}, 0.5)
	d.Position()
	p := d.Position()
	assert.InDelta(t, -1.0, p.Z, 1e-9)
	assert.Zero(t, p.X)

	still := NewDrift(vec.Vec3Float{X: 1}, vec.Vec3Float{}, 1)
	assert.Equal(t, vec.Vec3Float{X: 1}, still.Position())
}

func TestRunner_FirstTickStarts(t *testing.T) {
	st, err := structure.New(testConfig(), structure.WithRandom(structure.NewRandom(1)))
	require.NoError(t, err)

	r := NewRunner(st, StaticPosition{X: 0.7, Y: 0.2, Z: -0.4})
	assert.Nil(t, r.Latest(), "до первого тика снимка нет")

	res, err := r.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Shifted)
	require.NotNil(t, r.Latest())
	assert.True(t, st.Started())
	assert.Equal(t, 7*7*7, r.Latest().TileCount())

	pos, _ := r.Agent()
	assert.Equal(t, vec.Vec3Float{X: 0.7, Y: 0.2, Z: -0.4}, pos)
	assert.Equal(t, uint64(1), r.Ticks())
}

func TestRunner_PublishesShifts(t *testing.T) {
	bus, c := newBus(t)
	n := NewNotifier(context.Background(), bus, "test", nil)

	st, err := structure.New(testConfig(),
		structure.WithRandom(structure.NewRandom(3)),
		structure.WithHooks(n))
	require.NoError(t, err)

	r := NewRunner(st, NewDrift(vec.Vec3Float{}, vec.Vec3Float{X: 1}, 1), WithNotifier(n))
	for i := 0; i < 20; i++ {
		res, err := r.Tick(context.Background())
		require.NoError(t, err)
		assert.False(t, res.Lagging, "скорость меньше тайла за тик")
	}
	require.NoError(t, bus.Close())

	// Агент прошёл 20 единиц при тайле 4: окно сдвигалось по X несколько раз
	shifts := c.count(eventbus.TypeShift)
	assert.GreaterOrEqual(t, shifts, 4)
	assert.Equal(t, uint64(shifts), st.Stats().Snapshot().Shifts)
	assert.Zero(t, n.Failed())

	c.mu.Lock()
	var p ShiftPayload
	require.NoError(t, c.events[0].Decode(&p))
	c.mu.Unlock()
	assert.Equal(t, "x", p.Axis)
	assert.Equal(t, 1, p.Dir)
	assert.Len(t, p.Created, 7*7, "новый слой целиком")
	assert.Len(t, p.Destroyed, 7*7)
}

// findRope подбирает зерно, при котором в стартовом окне есть верёвка
func findRope(t *testing.T) (int64, structure.ClimbRegion) {
	t.Helper()
	for seed := int64(1); seed < 200; seed++ {
		st, err := structure.New(testConfig(), structure.WithRandom(structure.NewRandom(seed)))
		require.NoError(t, err)
		require.NoError(t, st.Start(vec.Vec3Float{}))
		if regions := st.ClimbRegions(); len(regions) > 0 {
			return seed, regions[0]
		}
	}
	t.Fatal("не нашлось зерна с верёвкой")
	return 0, structure.ClimbRegion{}
}

func TestRunner_ClimbEvents(t *testing.T) {
	seed, region := findRope(t)

	bus, c := newBus(t)
	n := NewNotifier(context.Background(), bus, "test", nil)
	st, err := structure.New(testConfig(), structure.WithRandom(structure.NewRandom(seed)))
	require.NoError(t, err)

	// Точка на высоте верхнего тайла верёвки: окно сдвигается к нему и тайл не отбрасывается
	inside := region.Center.Add(vec.Vec3Float{Y: region.Height - 2})
	obs := &climbObserver{}
	pos := &scriptedPosition{points: []vec.Vec3Float{
		{},
		inside,
		inside,
		inside.Add(vec.Vec3Float{X: 5 * region.Radius}),
	}}
	r := NewRunner(st, pos, WithNotifier(n), WithClimbObserver(obs))

	for i := 0; i < 4; i++ {
		_, err := r.Tick(context.Background())
		require.NoError(t, err)
		if i == 1 {
			_, climbing := r.Agent()
			assert.True(t, climbing, "точка внутри области лазания")
		}
	}
	require.NoError(t, bus.Close())

	assert.Equal(t, []bool{false, true, true, false}, obs.states)
	assert.Equal(t, 1, c.count(eventbus.TypeClimbEnter), "вход публикуется один раз")
	assert.Equal(t, 1, c.count(eventbus.TypeClimbExit))

	var enter *eventbus.Envelope
	c.mu.Lock()
	for _, ev := range c.events {
		if ev.EventType == eventbus.TypeClimbEnter {
			enter = ev
		}
	}
	c.mu.Unlock()
	require.NotNil(t, enter)
	var p ClimbPayload
	require.NoError(t, enter.Decode(&p))
	assert.Equal(t, uint64(2), p.Tick)
	assert.Equal(t, inside, p.Agent)
	assert.Equal(t, 7, enter.Priority)
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	st, err := structure.New(testConfig())
	require.NoError(t, err)
	r := NewRunner(st, StaticPosition{}, WithTickRate(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return r.Latest() != nil }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run не завершился после отмены")
	}
}

func TestNotifier_ClosedBus(t *testing.T) {
	bus := eventbus.NewMemoryBus(4)
	require.NoError(t, bus.Close())

	n := NewNotifier(context.Background(), bus, "test", nil)
	n.SlabShifted(structure.ShiftEvent{Axis: vec.AxisY, Dir: -1})
	n.Climb(structure.ClimbNone, vec.Vec3Float{}, 1)
	assert.Equal(t, uint64(1), n.Failed(), "ClimbNone не публикуется")
}

func TestNotifier_ProbePayload(t *testing.T) {
	bus, c := newBus(t)
	n := NewNotifier(context.Background(), bus, "structure", nil)

	mirrors := []vec.Vec3Float{{X: 4, Y: 2}, {Z: -4}}
	n.ProbeRefresh(structure.ProbeRefreshEvent{Agent: vec.Vec3Float{X: 1}, Mirrors: mirrors, Count: 3})
	require.NoError(t, bus.Close())

	require.Equal(t, []string{eventbus.TypeProbeRefresh}, c.types())
	ev := c.events[0]
	assert.Equal(t, "structure", ev.Source)
	var p ProbeRefreshPayload
	require.NoError(t, ev.Decode(&p))
	assert.Equal(t, mirrors, p.Mirrors)
	assert.Equal(t, uint64(3), p.Count)
}
