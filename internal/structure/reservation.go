package structure

import (
	"math/bits"

	"github.com/annel0/endless-structure/internal/vec"
)

// Slot — категория резервации внутри ячейки
type Slot int

const (
	SlotFloor     Slot = iota // Пол
	SlotWallA                 // Стена по грани X
	SlotWallB                 // Стена по грани Z
	SlotCrossbarZ             // Перекладина вдоль Z
	SlotCrossbarX             // Перекладина вдоль X
)

// SlotCount — число слотов в ячейке
const SlotCount = 5

// String возвращает имя слота
func (s Slot) String() string {
	switch s {
	case SlotFloor:
		return "floor"
	case SlotWallA:
		return "wall_a"
	case SlotWallB:
		return "wall_b"
	case SlotCrossbarZ:
		return "crossbar_z"
	case SlotCrossbarX:
		return "crossbar_x"
	default:
		return "unknown"
	}
}

func (s Slot) valid() bool { return s >= 0 && s < SlotCount }

// slotMask хранит пять флагов ячейки в одном байте
type slotMask uint8

// ReservationGrid — индекс занятости удвоенного размера.
// Координаты принимаются в пространстве тайлов и смещаются на (L-1)/2:
// окно тайлов стоит в центре сетки, и с каждой стороны остаётся запас
// в (L-1)/2 ячеек для фич, выходящих за окно.
type ReservationGrid struct {
	tileSide int
	offset   int
	cells    *Window[slotMask]
}

// NewReservationGrid создаёт пустую сетку для окна тайлов со стороной tileSide
func NewReservationGrid(tileSide int) *ReservationGrid {
	return &ReservationGrid{
		tileSide: tileSide,
		offset:   (tileSide - 1) / 2,
		cells:    NewWindow[slotMask](2*tileSide-1, 3, nil),
	}
}

// Side возвращает сторону сетки резерваций (2L-1)
func (g *ReservationGrid) Side() int { return g.cells.Size() }

// Radius возвращает радиус сетки резерваций (L)
func (g *ReservationGrid) Radius() int { return g.tileSide }

// Offset возвращает смещение из пространства тайлов ((L-1)/2)
func (g *ReservationGrid) Offset() int { return g.offset }

// Cells возвращает общее число флагов: (2L-1)^3 * 5
func (g *ReservationGrid) Cells() int { return g.cells.Len() * SlotCount }

func (g *ReservationGrid) toReserved(c vec.Vec3) [3]int {
	return [3]int{c.X + g.offset, c.Y + g.offset, c.Z + g.offset}
}

// Reserve помечает слот занятым. Вне сетки вызов ничего не делает.
func (g *ReservationGrid) Reserve(c vec.Vec3, s Slot) {
	if !s.valid() {
		return
	}
	idx := g.toReserved(c)
	if m, ok := g.cells.At(idx); ok {
		g.cells.Set(idx, m|1<<uint(s))
	}
}

// Unreserve снимает флаг слота. Вне сетки вызов ничего не делает.
func (g *ReservationGrid) Unreserve(c vec.Vec3, s Slot) {
	if !s.valid() {
		return
	}
	idx := g.toReserved(c)
	if m, ok := g.cells.At(idx); ok {
		g.cells.Set(idx, m&^(1<<uint(s)))
	}
}

// IsReserved проверяет флаг слота; вне сетки всегда false
func (g *ReservationGrid) IsReserved(c vec.Vec3, s Slot) bool {
	if !s.valid() {
		return false
	}
	m, ok := g.cells.At(g.toReserved(c))
	return ok && m&(1<<uint(s)) != 0
}

// Shift сдвигает сетку на один слой вдоль оси; новый слой пуст
func (g *ReservationGrid) Shift(axis vec.Axis, dir int) {
	g.cells.Shift(int(axis), dir, nil, func([3]int) slotMask { return 0 })
}

// Count возвращает число установленных флагов
func (g *ReservationGrid) Count() int {
	n := 0
	g.cells.Each(func(_ [3]int, m slotMask) {
		n += bits.OnesCount8(uint8(m))
	})
	return n
}

// Clone возвращает независимую копию сетки
func (g *ReservationGrid) Clone() *ReservationGrid {
	return &ReservationGrid{
		tileSide: g.tileSide,
		offset:   g.offset,
		cells:    g.cells.Clone(),
	}
}
