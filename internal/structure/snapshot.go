package structure

import "github.com/annel0/endless-structure/internal/vec"

// Snapshot — неизменяемая копия состояния окна для чтения из других горутин
type Snapshot struct {
	SideLength   int
	Radius       int
	TileLength   float64
	Anchor       vec.Vec3Float
	Bounds       [3][2]float64
	Tiles        []Tile // Порядок i, j, k; k меняется быстрее всего
	Supports     []SupportColumn
	Reservations *ReservationGrid
	Climb        []ClimbRegion
	Stats        StatsSnapshot
}

// Snapshot копирует текущее состояние. До Start возвращает nil.
func (s *Structure) Snapshot() *Snapshot {
	if !s.started {
		return nil
	}
	snap := &Snapshot{
		SideLength:   s.side,
		Radius:       s.radius,
		TileLength:   s.tileLength,
		Anchor:       s.anchor,
		Bounds:       s.bounds,
		Tiles:        make([]Tile, 0, s.tiles.cells.Len()),
		Supports:     make([]SupportColumn, 0, s.supports.cells.Len()),
		Reservations: s.reservations.Clone(),
		Climb:        s.ClimbRegions(),
		Stats:        s.stats.Snapshot(),
	}
	s.tiles.Each(func(_ vec.Vec3, t *Tile) {
		snap.Tiles = append(snap.Tiles, *t)
	})
	s.supports.cells.Each(func(_ [3]int, c *SupportColumn) {
		snap.Supports = append(snap.Supports, *c)
	})
	return snap
}

// Tile возвращает копию тайла по координате окна
func (sn *Snapshot) Tile(c vec.Vec3) (Tile, bool) {
	if !c.InCube(sn.SideLength) {
		return Tile{}, false
	}
	n := sn.SideLength
	return sn.Tiles[(c.X*n+c.Y)*n+c.Z], true
}

// TileContaining возвращает координату тайла, содержащего мировую точку
func (sn *Snapshot) TileContaining(p vec.Vec3Float) (vec.Vec3, bool) {
	c := tileIndex(p, sn.Anchor, sn.TileLength, sn.Radius)
	return c, c.InCube(sn.SideLength)
}

// IsClimbable проверяет точку по областям лазания снимка
func (sn *Snapshot) IsClimbable(p vec.Vec3Float) bool {
	return anyContains(sn.Climb, p)
}

// TileCount возвращает число тайлов в снимке
func (sn *Snapshot) TileCount() int { return len(sn.Tiles) }

// SolidAt сообщает, попадает ли точка в твёрдый пол или стену.
// Пол лежит на нижней грани тайла, стена на дальней, поэтому
// проверяются и соседние тайлы.
func (sn *Snapshot) SolidAt(p vec.Vec3Float) bool {
	c := tileIndex(p, sn.Anchor, sn.TileLength, sn.Radius)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				t, ok := sn.Tile(c.Add(vec.Vec3{X: dx, Y: dy, Z: dz}))
				if ok && solidTileAt(&t, sn.TileLength, p) {
					return true
				}
			}
		}
	}
	return false
}

func solidTileAt(t *Tile, tl float64, p vec.Vec3Float) bool {
	if t.Floor.Kind == FloorPlain || t.Floor.Kind == FloorFragile {
		if tr, ok := FloorTransform(t, tl); ok && tr.Contains(p) {
			return true
		}
	}
	for l := 0; l < 2; l++ {
		if tr, ok := WallTransform(t, l, tl); ok && tr.Contains(p) {
			return true
		}
	}
	return false
}
