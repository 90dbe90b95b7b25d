package structure

import (
	"github.com/annel0/endless-structure/internal/physics"
	"github.com/annel0/endless-structure/internal/vec"
)

const (
	floorInset     = 0.95
	wallInset      = 0.9
	slabThickness  = 0.2
	beamDiameter   = 0.25
	beamDrop       = 0.03125
	rampAngle      = 26.57
	rampStretch    = 2.24 * 0.98
	ropeDiameter   = 0.15
	mirrorDistance = 3 // в длинах тайла
)

// Transform — мировое размещение примитива для рендерера.
// Rotation задаётся углами Эйлера в градусах.
type Transform struct {
	Position vec.Vec3Float `json:"position"`
	Scale    vec.Vec3Float `json:"scale"`
	Rotation vec.Vec3Float `json:"rotation"`
}

// Box возвращает выровненный по осям коллайдер примитива.
// Поворот на 90° вокруг Y меняет местами X и Z, наклонённые примитивы не поддерживаются.
func (t Transform) Box() (*physics.BoxCollider, bool) {
	switch t.Rotation {
	case vec.Vec3Float{}:
		return physics.NewBoxCollider(t.Scale), true
	case vec.Vec3Float{Y: 90}, vec.Vec3Float{Y: -90}:
		return physics.NewBoxCollider(vec.Vec3Float{X: t.Scale.Z, Y: t.Scale.Y, Z: t.Scale.X}), true
	}
	return nil, false
}

// Contains проверяет, лежит ли точка внутри примитива
func (t Transform) Contains(p vec.Vec3Float) bool {
	box, ok := t.Box()
	return ok && box.IsPointInside(t.Position, p)
}

// FloorTransform возвращает размещение пола; ok=false, если геометрии нет
func FloorTransform(t *Tile, tl float64) (Transform, bool) {
	switch t.Floor.Kind {
	case FloorPlain, FloorFragile:
		return Transform{
			Position: t.Position.Add(vec.Vec3Float{Y: -tl / 2}),
			Scale:    vec.Vec3Float{X: tl * floorInset, Y: slabThickness, Z: tl * floorInset},
		}, true
	case FloorRamp:
		if t.Floor.Ramp == nil {
			return Transform{}, false
		}
		s := float64(t.Floor.Ramp.Sign)
		if t.Floor.Ramp.Tilt == RampTiltX {
			return Transform{
				Position: t.Position.Add(vec.Vec3Float{Z: tl / 2 * s}),
				Scale:    vec.Vec3Float{X: tl, Y: slabThickness, Z: tl * rampStretch},
				Rotation: vec.Vec3Float{X: -s * rampAngle},
			}, true
		}
		return Transform{
			Position: t.Position.Add(vec.Vec3Float{X: tl / 2 * s}),
			Scale:    vec.Vec3Float{X: tl * rampStretch, Y: slabThickness, Z: tl},
			Rotation: vec.Vec3Float{Z: s * rampAngle},
		}, true
	case FloorRope:
		if t.Floor.Rope == nil {
			return Transform{}, false
		}
		c := t.Floor.Rope.Climb
		return Transform{
			Position: c.Center,
			Scale:    vec.Vec3Float{X: ropeDiameter, Y: c.Height, Z: ropeDiameter},
		}, true
	default:
		return Transform{}, false
	}
}

// WallTransform возвращает размещение стены l; ok=false, если стены нет
func WallTransform(t *Tile, l int, tl float64) (Transform, bool) {
	if l < 0 || l > 1 || !t.Walls[l].Present() {
		return Transform{}, false
	}
	tr := Transform{Scale: vec.Vec3Float{X: tl * wallInset, Y: tl * wallInset, Z: slabThickness}}
	if l == 0 {
		tr.Position = t.Position.Add(vec.Vec3Float{X: tl / 2})
		tr.Rotation = vec.Vec3Float{Y: 90}
	} else {
		tr.Position = t.Position.Add(vec.Vec3Float{Z: tl / 2})
	}
	return tr, true
}

// CrossbarTransform возвращает размещение перекладины l; ok=false, если её нет
func CrossbarTransform(t *Tile, l int, tl float64) (Transform, bool) {
	if l < 0 || l > 1 || !t.Crossbars[l].Present {
		return Transform{}, false
	}
	tr := Transform{Scale: vec.Vec3Float{X: beamDiameter, Y: tl / 2, Z: beamDiameter}}
	if l == 0 {
		tr.Position = t.Position.Add(vec.Vec3Float{X: tl / 2, Y: -tl/2 - beamDrop})
		tr.Rotation = vec.Vec3Float{X: -90}
	} else {
		tr.Position = t.Position.Add(vec.Vec3Float{Y: -tl/2 - beamDrop, Z: tl / 2})
		tr.Rotation = vec.Vec3Float{Z: 90}
	}
	return tr, true
}

// SupportTransform возвращает размещение вертикальной колонны
func SupportTransform(c *SupportColumn) Transform {
	return Transform{
		Position: c.Position,
		Scale:    vec.Vec3Float{X: beamDiameter, Y: c.Height / 2, Z: beamDiameter},
	}
}
