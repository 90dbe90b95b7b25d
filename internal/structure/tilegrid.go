package structure

import (
	"math"

	"github.com/annel0/endless-structure/internal/vec"
)

// TileGrid — трёхмерное скользящее окно тайлов
type TileGrid struct {
	side       int
	radius     int
	tileLength float64
	cells      *Window[*Tile]
	nextID     uint64
}

// newTileGrid создаёт L^3 пустых тайлов вокруг якоря
func newTileGrid(side int, tileLength float64, anchor vec.Vec3Float) *TileGrid {
	g := &TileGrid{
		side:       side,
		radius:     (side + 1) / 2,
		tileLength: tileLength,
	}
	g.cells = NewWindow[*Tile](side, 3, func(idx [3]int) *Tile {
		return g.newTile(anchor, idx)
	})
	return g
}

func (g *TileGrid) newTile(anchor vec.Vec3Float, idx [3]int) *Tile {
	g.nextID++
	return &Tile{
		ID:       g.nextID,
		Position: g.PositionOf(anchor, vec.Vec3{X: idx[0], Y: idx[1], Z: idx[2]}),
	}
}

// PositionOf вычисляет мировую позицию тайла: anchor + tl*(idx - radius + 1)
func (g *TileGrid) PositionOf(anchor vec.Vec3Float, c vec.Vec3) vec.Vec3Float {
	off := float64(1 - g.radius)
	return vec.Vec3Float{
		X: anchor.X + g.tileLength*(float64(c.X)+off),
		Y: anchor.Y + g.tileLength*(float64(c.Y)+off),
		Z: anchor.Z + g.tileLength*(float64(c.Z)+off),
	}
}

// At возвращает тайл или nil вне окна
func (g *TileGrid) At(c vec.Vec3) *Tile {
	t, _ := g.cells.At([3]int{c.X, c.Y, c.Z})
	return t
}

// Len возвращает число живых тайлов
func (g *TileGrid) Len() int {
	n := 0
	g.cells.Each(func(_ [3]int, t *Tile) {
		if t != nil {
			n++
		}
	})
	return n
}

// Each обходит тайлы в порядке i, j, k
func (g *TileGrid) Each(fn func(c vec.Vec3, t *Tile)) {
	g.cells.Each(func(idx [3]int, t *Tile) {
		fn(vec.Vec3{X: idx[0], Y: idx[1], Z: idx[2]}, t)
	})
}

// Shift отбрасывает хвостовой слой и создаёт ведущий слой от нового якоря.
// Возвращает идентификаторы удалённых тайлов.
func (g *TileGrid) Shift(axis vec.Axis, dir int, anchor vec.Vec3Float) []uint64 {
	dropped := make([]uint64, 0, g.side*g.side)
	g.cells.Shift(int(axis), dir,
		func(t *Tile) {
			if t != nil {
				dropped = append(dropped, t.ID)
			}
		},
		func(idx [3]int) *Tile {
			return g.newTile(anchor, idx)
		})
	return dropped
}

// slab перечисляет координаты ведущего слоя вдоль оси в порядке
// обхода оставшихся двух осей (внешняя, затем внутренняя)
func (g *TileGrid) slab(axis vec.Axis, dir int) []vec.Vec3 {
	lead := g.side - 1
	if dir < 0 {
		lead = 0
	}
	coords := make([]vec.Vec3, 0, g.side*g.side)
	for a := 0; a < g.side; a++ {
		for b := 0; b < g.side; b++ {
			var c vec.Vec3
			switch axis {
			case vec.AxisX:
				c = vec.Vec3{X: lead, Y: a, Z: b}
			case vec.AxisY:
				c = vec.Vec3{X: a, Y: lead, Z: b}
			default:
				c = vec.Vec3{X: a, Y: b, Z: lead}
			}
			coords = append(coords, c)
		}
	}
	return coords
}

// all перечисляет все координаты окна в порядке i, j, k
func (g *TileGrid) all() []vec.Vec3 {
	coords := make([]vec.Vec3, 0, g.cells.Len())
	g.Each(func(c vec.Vec3, _ *Tile) {
		coords = append(coords, c)
	})
	return coords
}

// tileIndex переводит мировую точку в координату окна (без проверки границ)
func tileIndex(p, anchor vec.Vec3Float, tileLength float64, radius int) vec.Vec3 {
	var c vec.Vec3
	for _, axis := range vec.Axes {
		d := (p.Get(axis) - anchor.Get(axis)) / tileLength
		c.Set(axis, int(math.Floor(d+0.5))+radius-1)
	}
	return c
}
