package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/endless-structure/internal/vec"
)

func TestReservationRoundTrip(t *testing.T) {
	g := NewReservationGrid(5)
	c := v3(1, -2, 3)

	for s := Slot(0); s < SlotCount; s++ {
		assert.False(t, g.IsReserved(c, s))
		g.Reserve(c, s)
		assert.True(t, g.IsReserved(c, s), "слот %s должен быть занят", s)
		g.Reserve(c, s)
		assert.True(t, g.IsReserved(c, s), "повторная резервация идемпотентна")
		g.Unreserve(c, s)
		assert.False(t, g.IsReserved(c, s), "слот %s должен освободиться", s)
	}
	assert.Equal(t, 0, g.Count())
}

func TestReservationSlotsIndependent(t *testing.T) {
	g := NewReservationGrid(3)
	g.Reserve(v3(0, 0, 0), SlotWallB)
	assert.True(t, g.IsReserved(v3(0, 0, 0), SlotWallB))
	assert.False(t, g.IsReserved(v3(0, 0, 0), SlotWallA))
	assert.False(t, g.IsReserved(v3(0, 0, 1), SlotWallB))
	assert.Equal(t, 1, g.Count())
}

func TestReservationOutOfRange(t *testing.T) {
	g := NewReservationGrid(5)
	assert.Equal(t, 9, g.Side())
	assert.Equal(t, 5, g.Radius())
	assert.Equal(t, 9*9*9*5, g.Cells())

	// Допустимо: от -(L-1)/2 до L-1+(L-1)/2
	g.Reserve(v3(-2, 6, 0), SlotFloor)
	assert.True(t, g.IsReserved(v3(-2, 6, 0), SlotFloor))

	for _, c := range []vec.Vec3{v3(-3, 0, 0), v3(0, 7, 0), v3(0, 0, 100), v3(-100, -100, -100)} {
		g.Reserve(c, SlotFloor)
		assert.False(t, g.IsReserved(c, SlotFloor), "вне сетки чтение возвращает false")
	}
	assert.False(t, g.IsReserved(v3(0, 0, 0), Slot(7)), "несуществующий слот не занят")
	g.Reserve(v3(0, 0, 0), Slot(-1))
	assert.Equal(t, 1, g.Count(), "записи вне сетки отбрасываются")
}

func TestReservationShift(t *testing.T) {
	g := NewReservationGrid(5)
	g.Reserve(v3(6, 0, 0), SlotFloor)  // ведущий слой при +X
	g.Reserve(v3(-2, 1, 1), SlotWallA) // хвостовой слой при +X
	g.Reserve(v3(0, 2, 2), SlotCrossbarX)

	g.Shift(vec.AxisX, 1)

	assert.True(t, g.IsReserved(v3(5, 0, 0), SlotFloor), "флаг должен переехать на -1 по X")
	assert.False(t, g.IsReserved(v3(6, 0, 0), SlotFloor), "новый слой должен быть пуст")
	assert.True(t, g.IsReserved(v3(-1, 2, 2), SlotCrossbarX))
	assert.Equal(t, 2, g.Count(), "флаг хвостового слоя отбрасывается")

	g.Shift(vec.AxisX, -1)
	assert.True(t, g.IsReserved(v3(6, 0, 0), SlotFloor))
	assert.True(t, g.IsReserved(v3(0, 2, 2), SlotCrossbarX))
	assert.False(t, g.IsReserved(v3(-2, 1, 1), SlotWallA), "отброшенный флаг не возвращается")
}

func TestReservationShiftEachAxis(t *testing.T) {
	for _, axis := range vec.Axes {
		g := NewReservationGrid(3)
		c := v3(0, 0, 0)
		g.Reserve(c, SlotWallB)
		g.Shift(axis, -1)
		assert.True(t, g.IsReserved(vec.Unit(axis, 1), SlotWallB), "ось %s", axis)
		assert.False(t, g.IsReserved(c, SlotWallB), "ось %s", axis)
	}
}

func TestReservationClone(t *testing.T) {
	g := NewReservationGrid(3)
	g.Reserve(v3(1, 1, 1), SlotFloor)
	c := g.Clone()
	g.Unreserve(v3(1, 1, 1), SlotFloor)
	assert.True(t, c.IsReserved(v3(1, 1, 1), SlotFloor), "копия независима от оригинала")
}

func TestReservationMarginIsSymmetric(t *testing.T) {
	for _, side := range []int{3, 5, 7, 9} {
		g := NewReservationGrid(side)
		margin := (side - 1) / 2
		assert.Equal(t, margin, g.Offset(), "L=%d", side)

		low, high := v3(-margin, 0, 0), v3(side-1+margin, 0, 0)
		g.Reserve(low, SlotFloor)
		g.Reserve(high, SlotFloor)
		assert.True(t, g.IsReserved(low, SlotFloor), "L=%d: запас со стороны минуса", side)
		assert.True(t, g.IsReserved(high, SlotFloor), "L=%d: запас со стороны плюса", side)

		g.Reserve(v3(-margin-1, 0, 0), SlotFloor)
		g.Reserve(v3(side+margin, 0, 0), SlotFloor)
		assert.Equal(t, 2, g.Count(), "L=%d: за запасом записи отбрасываются", side)
	}
}
