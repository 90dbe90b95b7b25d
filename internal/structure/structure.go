// Package structure генерирует бесконечную решётчатую структуру вокруг
// движущегося агента. В памяти живёт только окно L^3 тайлов; при пересечении
// границы центрального тайла окно сдвигается на один слой.
package structure

import (
	"fmt"

	"github.com/annel0/endless-structure/internal/vec"
)

// Option настраивает Structure
type Option func(*Structure)

// WithRandom задаёт источник случайности
func WithRandom(r Random) Option {
	return func(s *Structure) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithHooks задаёт получателя событий
func WithHooks(h Hooks) Option {
	return func(s *Structure) {
		if h != nil {
			s.hooks = h
		}
	}
}

// WithLogger задаёт журнал
func WithLogger(l Logger) Option {
	return func(s *Structure) {
		if l != nil {
			s.log = l
		}
	}
}

// StepResult описывает итог одного тика
type StepResult struct {
	Changes      vec.Vec3 // Сдвиг по каждой оси: -1, 0 или +1
	Shifted      bool
	Lagging      bool // Агент всё ещё вне центрального тайла после сдвига
	ProbeRefresh bool
}

// Structure — скользящее окно тайлов вместе с резервациями и колоннами.
// Не потокобезопасна: Start и Step вызываются из одной горутины.
type Structure struct {
	cfg        Config
	side       int
	radius     int
	tileLength float64

	anchor vec.Vec3Float
	bounds [3][2]float64

	tiles        *TileGrid
	supports     *SupportColumnGrid
	reservations *ReservationGrid
	features     *FeatureGenerator

	rng   Random
	hooks Hooks
	log   Logger
	stats *Stats

	probeCounter int
	started      bool
}

// New проверяет конфигурацию и создаёт незапущенную структуру
func New(cfg Config, opts ...Option) (*Structure, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid structure config: %w", err)
	}
	s := &Structure{
		cfg:        cfg,
		side:       cfg.SideLength,
		radius:     (cfg.SideLength + 1) / 2,
		tileLength: cfg.TileLength,
		hooks:      NopHooks{},
		log:        nopLogger{},
		stats:      &Stats{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = NewRandom(1)
	}
	return s, nil
}

// Start строит окно вокруг округлённой позиции агента
func (s *Structure) Start(agent vec.Vec3Float) error {
	if s.started {
		return ErrAlreadyStarted
	}

	rounded := agent.Truncated()
	s.anchor = rounded
	for _, axis := range vec.Axes {
		p := rounded.Get(axis)
		s.bounds[axis] = [2]float64{p - s.tileLength/2, p + s.tileLength/2}
	}

	s.reservations = NewReservationGrid(s.side)
	s.tiles = newTileGrid(s.side, s.tileLength, s.anchor)
	s.supports = newSupportColumnGrid(s.side, s.tileLength, s.anchor)
	s.features = newFeatureGenerator(s.tiles, s.reservations, s.cfg, s.rng, s.stats, s.log)

	s.stats.TilesCreated.Add(uint64(s.tiles.Len()))
	s.stats.ColumnsCreated.Add(uint64(s.supports.Len()))

	ropes, ramps := s.features.populate(s.tiles.all(), modeInitial)
	s.started = true

	s.log.Infof("структура L=%d tl=%.2f запущена в (%.2f, %.2f, %.2f): верёвок %d, пандусов %d",
		s.side, s.tileLength, s.anchor.X, s.anchor.Y, s.anchor.Z, ropes, ramps)
	return nil
}

// Step читает позицию агента один раз и сдвигает окно по осям X, Y, Z.
// За тик по каждой оси выполняется не больше одного сдвига.
func (s *Structure) Step(agent vec.Vec3Float) (StepResult, error) {
	var res StepResult
	if !s.started {
		return res, ErrNotStarted
	}
	s.stats.Ticks.Add(1)

	rounded := agent.Truncated()
	for _, axis := range vec.Axes {
		dir := s.changeFor(axis, rounded.Get(axis))
		if dir == 0 {
			continue
		}
		res.Changes.Set(axis, dir)
		res.Shifted = true
		s.shift(axis, dir)
	}

	for _, axis := range vec.Axes {
		if s.changeFor(axis, rounded.Get(axis)) != 0 {
			res.Lagging = true
		}
	}
	if res.Lagging {
		s.stats.Overruns.Add(1)
		s.log.Warnf("агент (%.2f, %.2f, %.2f) опережает окно больше чем на тайл за тик", agent.X, agent.Y, agent.Z)
	}

	if res.Shifted {
		s.probeCounter++
		if s.probeCounter >= s.probeInterval() {
			s.probeCounter = 0
			res.ProbeRefresh = true
			s.refreshProbes(agent)
		}
	}
	return res, nil
}

// changeFor сравнивает позицию с границами центрального тайла
func (s *Structure) changeFor(axis vec.Axis, p float64) int {
	b := s.bounds[axis]
	switch {
	case p < b[0]:
		return -1
	case p > b[1]:
		return 1
	default:
		return 0
	}
}

func (s *Structure) probeInterval() int {
	if s.radius-1 < 1 {
		return 1
	}
	return s.radius - 1
}

// shift выполняет один сдвиг: резервации, тайлы, колонны, пол и стены, фичи
func (s *Structure) shift(axis vec.Axis, dir int) {
	step := float64(dir) * s.tileLength
	s.bounds[axis][0] += step
	s.bounds[axis][1] += step
	s.anchor.Set(axis, s.anchor.Get(axis)+step)

	s.reservations.Shift(axis, dir)
	destroyed := s.tiles.Shift(axis, dir, s.anchor)
	colsCreated, colsDestroyed := s.supports.Shift(axis, dir, s.anchor)

	slab := s.tiles.slab(axis, dir)
	ropes, ramps := s.features.populate(slab, modeStream)

	created := make([]uint64, 0, len(slab))
	for _, c := range slab {
		created = append(created, s.tiles.At(c).ID)
	}

	s.stats.Shifts.Add(1)
	s.stats.TilesCreated.Add(uint64(len(created)))
	s.stats.TilesDestroyed.Add(uint64(len(destroyed)))
	s.stats.ColumnsCreated.Add(uint64(colsCreated))
	s.stats.ColumnsDestroyed.Add(uint64(colsDestroyed))

	s.log.Debugf("сдвиг %s%+d: якорь (%.2f, %.2f, %.2f), верёвок %d, пандусов %d",
		axis, dir, s.anchor.X, s.anchor.Y, s.anchor.Z, ropes, ramps)

	s.hooks.SlabShifted(ShiftEvent{
		Axis:      axis,
		Dir:       dir,
		Anchor:    s.anchor,
		Created:   created,
		Destroyed: destroyed,
		Ropes:     ropes,
		Ramps:     ramps,
	})
}

// refreshProbes собирает зеркала рядом с агентом и сообщает рендереру
func (s *Structure) refreshProbes(agent vec.Vec3Float) {
	limit := mirrorDistance * s.tileLength
	var mirrors []vec.Vec3Float
	s.tiles.Each(func(_ vec.Vec3, t *Tile) {
		for l := 0; l < 2; l++ {
			if t.Walls[l].Kind != WallSolidWithMirror {
				continue
			}
			tr, _ := WallTransform(t, l, s.tileLength)
			if tr.Position.DistanceTo(agent) <= limit {
				mirrors = append(mirrors, tr.Position)
			}
		}
	})
	n := s.stats.ProbeRefreshes.Add(1)
	s.hooks.ProbeRefresh(ProbeRefreshEvent{Agent: agent, Mirrors: mirrors, Count: n})
}

// Tile возвращает тайл по координате окна или nil
func (s *Structure) Tile(c vec.Vec3) *Tile {
	if !s.started {
		return nil
	}
	return s.tiles.At(c)
}

// TileAt — то же, что Tile, по отдельным индексам
func (s *Structure) TileAt(i, j, k int) *Tile {
	return s.Tile(vec.Vec3{X: i, Y: j, Z: k})
}

// TileContaining возвращает координату тайла, в который попадает мировая точка
func (s *Structure) TileContaining(p vec.Vec3Float) (vec.Vec3, bool) {
	if !s.started {
		return vec.Vec3{}, false
	}
	c := tileIndex(p, s.anchor, s.tileLength, s.radius)
	return c, c.InCube(s.side)
}

// Support возвращает колонну по координате (i по X, j по Z) или nil
func (s *Structure) Support(i, j int) *SupportColumn {
	if !s.started {
		return nil
	}
	return s.supports.At(i, j)
}

// Reservations возвращает сетку резерваций (nil до Start)
func (s *Structure) Reservations() *ReservationGrid { return s.reservations }

// Anchor возвращает мировую позицию тайла-центра
func (s *Structure) Anchor() vec.Vec3Float { return s.anchor }

// Bounds возвращает границы центрального тайла по оси
func (s *Structure) Bounds(axis vec.Axis) (low, high float64) {
	b := s.bounds[axis]
	return b[0], b[1]
}

// SideLength возвращает L
func (s *Structure) SideLength() int { return s.side }

// Radius возвращает (L+1)/2
func (s *Structure) Radius() int { return s.radius }

// TileLength возвращает длину ребра тайла
func (s *Structure) TileLength() float64 { return s.tileLength }

// Started сообщает, построено ли окно
func (s *Structure) Started() bool { return s.started }

// TileCount возвращает число живых тайлов
func (s *Structure) TileCount() int {
	if !s.started {
		return 0
	}
	return s.tiles.Len()
}

// SupportCount возвращает число колонн
func (s *Structure) SupportCount() int {
	if !s.started {
		return 0
	}
	return s.supports.Len()
}

// Stats возвращает счётчики генерации
func (s *Structure) Stats() *Stats { return s.stats }

// Features возвращает генератор фич для ручного размещения
func (s *Structure) Features() *FeatureGenerator { return s.features }

// ClimbRegions возвращает области лазания всех верёвок окна
func (s *Structure) ClimbRegions() []ClimbRegion {
	if !s.started {
		return nil
	}
	tiles := make([]*Tile, 0, s.tiles.cells.Len())
	s.tiles.Each(func(_ vec.Vec3, t *Tile) { tiles = append(tiles, t) })
	return climbRegionsOf(tiles)
}

// IsClimbable сообщает, может ли агент в точке p лезть по верёвке
func (s *Structure) IsClimbable(p vec.Vec3Float) bool {
	return anyContains(s.ClimbRegions(), p)
}
