package app

import "github.com/annel0/endless-structure/internal/vec"

// PositionSource отдаёт позицию агента. Раннер вызывает Position ровно один раз за тик,
// поэтому симулируемые источники продвигают агента внутри вызова.
type PositionSource interface {
	Position() vec.Vec3Float
}

// StaticPosition — агент, стоящий на месте
type StaticPosition vec.Vec3Float

func (p StaticPosition) Position() vec.Vec3Float { return vec.Vec3Float(p) }

// Walker ведёт агента по маршруту с постоянной скоростью и возвращается к первой точке.
type Walker struct {
	pos    vec.Vec3Float
	route  []vec.Vec3Float
	target int
	speed  float64
}

// NewWalker создаёт агента в start; speed — мировых единиц за тик
func NewWalker(start vec.Vec3Float, route []vec.Vec3Float, speed float64) *Walker {
	return &Walker{pos: start, route: route, speed: speed}
}

// Position продвигает агента на один тик и возвращает новую позицию.
// Остаток хода после достижения точки переносится на следующий отрезок.
func (w *Walker) Position() vec.Vec3Float {
	if len(w.route) == 0 || w.speed <= 0 {
		return w.pos
	}
	left := w.speed
	for i := 0; i < len(w.route) && left > 0; i++ {
		goal := w.route[w.target]
		d := w.pos.DistanceTo(goal)
		if d > left {
			w.pos = w.pos.Add(goal.Sub(w.pos).Mul(left / d))
			return w.pos
		}
		w.pos = goal
		left -= d
		w.target = (w.target + 1) % len(w.route)
	}
	return w.pos
}

// Target возвращает индекс текущей точки маршрута
func (w *Walker) Target() int { return w.target }

// Drift ведёт агента по прямой с постоянной скоростью
type Drift struct {
	pos  vec.Vec3Float
	step vec.Vec3Float
}

// NewDrift создаёт прямолинейное движение вдоль dir (нормализуется)
func NewDrift(start, dir vec.Vec3Float, speed float64) *Drift {
	d := &Drift{pos: start}
	if l := dir.Length(); l > 0 {
		d.step = dir.Mul(speed / l)
	}
	return d
}

func (d *Drift) Position() vec.Vec3Float {
	d.pos = d.pos.Add(d.step)
	return d.pos
}
