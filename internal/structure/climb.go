package structure

import (
	"github.com/annel0/endless-structure/internal/physics"
	"github.com/annel0/endless-structure/internal/vec"
)

// ropeHitboxRadius — радиус объёма лазания (единичный цилиндр)
const ropeHitboxRadius = 0.5

// ClimbRegion — вертикальный цилиндр, внутри которого агент может лезть по верёвке.
// По высоте занимает Center.Y ± Height.
type ClimbRegion struct {
	Tile   uint64        `json:"tile"`
	Center vec.Vec3Float `json:"center"`
	Radius float64       `json:"radius"`
	Height float64       `json:"height"`
}

func newClimbRegion(top *Tile, length int, tileLength float64) ClimbRegion {
	l := float64(length)
	center := top.Position
	center.Y += -tileLength*l/2 + tileLength/2 + tileLength/8
	return ClimbRegion{
		Tile:   top.ID,
		Center: center,
		Radius: ropeHitboxRadius,
		Height: tileLength*l/2 - tileLength/8,
	}
}

// Contains проверяет, лежит ли точка внутри области
func (r ClimbRegion) Contains(p vec.Vec3Float) bool {
	return physics.NewCylinderCollider(r.Radius, r.Height).IsPointInside(r.Center, p)
}

// ClimbTransition — смена состояния лазания
type ClimbTransition int

const (
	ClimbNone  ClimbTransition = iota
	ClimbEnter                 // Агент вошёл в область
	ClimbExit                  // Агент вышел из области
)

// String возвращает имя перехода
func (t ClimbTransition) String() string {
	switch t {
	case ClimbEnter:
		return "enter"
	case ClimbExit:
		return "exit"
	default:
		return "none"
	}
}

// ClimbTracker превращает покадровый признак "можно лезть" в события входа и выхода
type ClimbTracker struct {
	inside bool
}

// Update принимает текущий признак и возвращает переход
func (ct *ClimbTracker) Update(climbable bool) ClimbTransition {
	switch {
	case climbable && !ct.inside:
		ct.inside = true
		return ClimbEnter
	case !climbable && ct.inside:
		ct.inside = false
		return ClimbExit
	default:
		return ClimbNone
	}
}

// Inside сообщает, находится ли агент в области лазания
func (ct *ClimbTracker) Inside() bool { return ct.inside }

func climbRegionsOf(tiles []*Tile) []ClimbRegion {
	var regions []ClimbRegion
	for _, t := range tiles {
		if t != nil && t.Floor.Kind == FloorRope && t.Floor.Rope != nil {
			regions = append(regions, t.Floor.Rope.Climb)
		}
	}
	return regions
}

func anyContains(regions []ClimbRegion, p vec.Vec3Float) bool {
	for _, r := range regions {
		if r.Contains(p) {
			return true
		}
	}
	return false
}
