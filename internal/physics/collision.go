package physics

import (
	"math"

	"github.com/annel0/endless-structure/internal/vec"
)

// BoxCollider представляет выровненный по осям параллелепипед
type BoxCollider struct {
	Size vec.Vec3Float // Полные размеры по осям
}

// NewBoxCollider создаёт новый коллайдер с указанными размерами
func NewBoxCollider(size vec.Vec3Float) *BoxCollider {
	return &BoxCollider{Size: size}
}

// IsPointInside проверяет, находится ли точка внутри коллайдера
func (bc *BoxCollider) IsPointInside(colliderPos, point vec.Vec3Float) bool {
	d := point.Sub(colliderPos)
	return math.Abs(d.X) <= bc.Size.X/2 &&
		math.Abs(d.Y) <= bc.Size.Y/2 &&
		math.Abs(d.Z) <= bc.Size.Z/2
}

// CheckBoxCollision проверяет пересечение двух коллайдеров
func CheckBoxCollision(pos1 vec.Vec3Float, collider1 *BoxCollider, pos2 vec.Vec3Float, collider2 *BoxCollider) bool {
	d := pos1.Sub(pos2)
	return math.Abs(d.X) < (collider1.Size.X+collider2.Size.X)/2 &&
		math.Abs(d.Y) < (collider1.Size.Y+collider2.Size.Y)/2 &&
		math.Abs(d.Z) < (collider1.Size.Z+collider2.Size.Z)/2
}

// CylinderCollider представляет вертикальный цилиндр (ось Y).
// HalfHeight совпадает с масштабом примитива цилиндра по Y: тело занимает
// [center.Y-HalfHeight, center.Y+HalfHeight].
type CylinderCollider struct {
	Radius     float64
	HalfHeight float64
}

// NewCylinderCollider создаёт вертикальный цилиндр
func NewCylinderCollider(radius, halfHeight float64) *CylinderCollider {
	return &CylinderCollider{Radius: radius, HalfHeight: halfHeight}
}

// IsPointInside проверяет, находится ли точка внутри цилиндра
func (cc *CylinderCollider) IsPointInside(colliderPos, point vec.Vec3Float) bool {
	d := point.Sub(colliderPos)
	if math.Abs(d.Y) > cc.HalfHeight {
		return false
	}
	return d.X*d.X+d.Z*d.Z <= cc.Radius*cc.Radius
}
