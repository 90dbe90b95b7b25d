package structure

import "github.com/annel0/endless-structure/internal/vec"

// rampRule — одна ячейка окрестности пандуса.
// carve=false означает, что ячейка только проверяется.
type rampRule struct {
	offset vec.Vec3
	slot   Slot
	carve  bool
}

type rampCase struct {
	tilt RampTilt
	sign int
}

func rule(dx, dy, dz int, s Slot, carve bool) rampRule {
	return rampRule{offset: vec.Vec3{X: dx, Y: dy, Z: dz}, slot: s, carve: carve}
}

// rampRules перечисляет окрестность каждого из четырёх вариантов наклона.
// Проверка и расчистка читают одну и ту же таблицу.
var rampRules = map[rampCase][]rampRule{
	{RampTiltX, -1}: {
		rule(0, 0, 0, SlotFloor, false),
		rule(0, 0, 0, SlotWallA, true),
		rule(0, 0, 0, SlotWallB, true),
		rule(0, 1, 0, SlotFloor, true),
		rule(-1, 0, 0, SlotWallA, true),
		rule(0, 0, -1, SlotWallB, true),
		rule(0, 0, -1, SlotWallA, true),
		rule(-1, 0, -1, SlotWallA, true),
		rule(0, 1, -1, SlotFloor, true),
		rule(0, 0, -1, SlotFloor, false),
		rule(0, 1, -2, SlotWallB, true),
		rule(0, 1, -1, SlotCrossbarX, true),
	},
	{RampTiltX, 1}: {
		rule(0, 0, 0, SlotFloor, false),
		rule(0, 0, 0, SlotWallA, true),
		rule(0, 0, 0, SlotWallB, true),
		rule(0, 1, 0, SlotFloor, true),
		rule(-1, 0, 0, SlotWallA, true),
		rule(0, 0, -1, SlotWallB, true),
		rule(0, 0, 1, SlotWallA, true),
		rule(-1, 0, 1, SlotWallA, true),
		rule(0, 1, 1, SlotFloor, true),
		rule(0, 0, 1, SlotFloor, false),
		rule(0, 1, 1, SlotWallB, true),
		rule(0, 1, 0, SlotCrossbarX, true),
	},
	{RampTiltZ, -1}: {
		rule(0, 0, 0, SlotFloor, false),
		rule(0, 0, 0, SlotWallA, true),
		rule(0, 0, 0, SlotWallB, true),
		rule(0, 1, 0, SlotFloor, true),
		rule(-1, 0, 0, SlotWallA, true),
		rule(0, 0, -1, SlotWallB, true),
		rule(-1, 0, 0, SlotWallB, true),
		rule(-1, 0, -1, SlotWallB, true),
		rule(-1, 1, 0, SlotFloor, true),
		rule(-1, 0, 0, SlotFloor, false),
		rule(-2, 1, 0, SlotWallA, true),
		rule(-1, 1, 0, SlotCrossbarZ, true),
	},
	{RampTiltZ, 1}: {
		rule(0, 0, 0, SlotFloor, false),
		rule(0, 0, 0, SlotWallA, true),
		rule(0, 0, 0, SlotWallB, true),
		rule(0, 1, 0, SlotFloor, true),
		rule(-1, 0, 0, SlotWallA, true),
		rule(0, 0, -1, SlotWallB, true),
		rule(1, 0, 0, SlotWallB, true),
		rule(1, 0, -1, SlotWallB, true),
		rule(1, 1, 0, SlotFloor, true),
		rule(1, 0, 0, SlotFloor, false),
		rule(1, 1, 0, SlotWallA, true),
		rule(0, 1, 0, SlotCrossbarZ, true),
	},
}

// CheckRampReservations возвращает true, если хотя бы одна ячейка
// окрестности пандуса уже зарезервирована
func (fg *FeatureGenerator) CheckRampReservations(c vec.Vec3, tilt RampTilt, sign int) bool {
	rules, ok := rampRules[rampCase{tilt, sign}]
	if !ok {
		return true
	}
	for _, r := range rules {
		if fg.res.IsReserved(c.Add(r.offset), r.slot) {
			return true
		}
	}
	return false
}

// PlaceRamp превращает пол тайла в пандус и расчищает окрестность.
// При конфликте резерваций тайл не меняется и возвращается false.
func (fg *FeatureGenerator) PlaceRamp(c vec.Vec3, tilt RampTilt, sign int) bool {
	t := fg.tiles.At(c)
	if t == nil || t.Floor.Kind != FloorPlain || fg.CheckRampReservations(c, tilt, sign) {
		fg.stats.RampsRejected.Add(1)
		fg.log.Debugf("пандус %s%+d в (%d,%d,%d) отклонён", tilt, sign, c.X, c.Y, c.Z)
		return false
	}

	t.Floor.Kind = FloorRamp
	t.Floor.Ramp = &Ramp{Tilt: tilt, Sign: sign}

	for _, r := range rampRules[rampCase{tilt, sign}] {
		if !r.carve {
			continue
		}
		p := c.Add(r.offset)
		fg.clearSlot(p, r.slot)
		fg.res.Reserve(p, r.slot)
	}
	// Свой пол тоже занят, иначе верёвка сверху снесёт пандус
	fg.res.Reserve(c, SlotFloor)

	fg.stats.RampsPlaced.Add(1)
	fg.log.Debugf("пандус %s%+d в тайле %d (%d,%d,%d)", tilt, sign, t.ID, c.X, c.Y, c.Z)
	return true
}
