package structure

import "github.com/annel0/endless-structure/internal/vec"

// PlaceRope пытается повесить верёвку длиной length с пола тайла c.
// Колонна полов и стены основания должны быть свободны; иначе тайл
// остаётся без изменений и возвращается false.
func (fg *FeatureGenerator) PlaceRope(c vec.Vec3, length int) bool {
	top := fg.tiles.At(c)
	if top == nil || length < 2 {
		fg.stats.RopesRejected.Add(1)
		return false
	}

	bottom := c.Add(vec.Vec3{Y: 1 - length})
	for f := 0; f < length-1; f++ {
		if fg.res.IsReserved(c.Add(vec.Vec3{Y: -f}), SlotFloor) {
			fg.rejectRope(c, length)
			return false
		}
	}
	if fg.res.IsReserved(bottom, SlotWallA) || fg.res.IsReserved(bottom, SlotWallB) {
		fg.rejectRope(c, length)
		return false
	}

	fg.res.Reserve(c, SlotFloor)
	for f := 1; f < length-1; f++ {
		p := c.Add(vec.Vec3{Y: -f})
		fg.clearFloor(p)
		fg.res.Reserve(p, SlotFloor)
	}

	// Основание открыто со всех четырёх сторон
	base := []struct {
		at   vec.Vec3
		slot Slot
	}{
		{bottom, SlotWallA},
		{bottom, SlotWallB},
		{bottom.Add(vec.Vec3{X: -1}), SlotWallA},
		{bottom.Add(vec.Vec3{Z: -1}), SlotWallB},
	}
	for _, b := range base {
		fg.res.Reserve(b.at, b.slot)
		fg.clearSlot(b.at, b.slot)
	}

	top.Floor = Floor{
		Kind:     FloorRope,
		Material: fg.mats.Rope,
		Rope: &Rope{
			Length: length,
			Top:    c,
			Climb:  newClimbRegion(top, length, fg.tileLength),
		},
	}

	fg.stats.RopesPlaced.Add(1)
	fg.log.Debugf("верёвка длиной %d в тайле %d (%d,%d,%d)", length, top.ID, c.X, c.Y, c.Z)
	return true
}

func (fg *FeatureGenerator) rejectRope(c vec.Vec3, length int) {
	fg.stats.RopesRejected.Add(1)
	fg.log.Debugf("верёвка длиной %d в (%d,%d,%d) отклонена: слот занят", length, c.X, c.Y, c.Z)
}
