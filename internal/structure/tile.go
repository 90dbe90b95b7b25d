package structure

import "github.com/annel0/endless-structure/internal/vec"

// FloorKind — вид пола тайла
type FloorKind int

const (
	FloorAbsent  FloorKind = iota // Геометрии нет: снесена фичей или пропущена из-за резервации
	FloorPlain                    // Обычный пол
	FloorFragile                  // Прозрачный "плексиглас"
	FloorRope                     // Верх верёвки
	FloorRamp                     // Наклонный пандус
)

// String возвращает имя вида пола
func (k FloorKind) String() string {
	switch k {
	case FloorAbsent:
		return "absent"
	case FloorPlain:
		return "plain"
	case FloorFragile:
		return "fragile"
	case FloorRope:
		return "rope"
	case FloorRamp:
		return "ramp"
	default:
		return "unknown"
	}
}

// RampTilt — ось, вокруг которой наклонён пандус
type RampTilt int

const (
	RampTiltX RampTilt = iota // Поворот вокруг X, пандус вытянут вдоль Z
	RampTiltZ                 // Поворот вокруг Z, пандус вытянут вдоль X
)

// String возвращает имя оси наклона
func (t RampTilt) String() string {
	if t == RampTiltZ {
		return "tilt_z"
	}
	return "tilt_x"
}

// Rope описывает верёвку, свисающую с пола тайла
type Rope struct {
	Length int
	Top    vec.Vec3 // Координата верхнего тайла на момент размещения
	Climb  ClimbRegion
}

// Ramp описывает пандус
type Ramp struct {
	Tilt RampTilt
	Sign int // -1 или +1
}

// Floor — элемент пола тайла
type Floor struct {
	Kind     FloorKind
	Material Handle
	Rope     *Rope
	Ramp     *Ramp
}

// Destroyable сообщает, есть ли у пола геометрия, которую фичи могут снести.
// Верёвка не сносится: её верхний пол всегда зарезервирован.
func (f Floor) Destroyable() bool {
	switch f.Kind {
	case FloorPlain, FloorFragile, FloorRamp:
		return true
	default:
		return false
	}
}

// WallKind — вид стены
type WallKind int

const (
	WallAbsent WallKind = iota
	WallNetOnly
	WallSolid
	WallSolidWithMirror
	WallSlideTrigger
)

// String возвращает имя вида стены
func (k WallKind) String() string {
	switch k {
	case WallAbsent:
		return "absent"
	case WallNetOnly:
		return "net"
	case WallSolid:
		return "solid"
	case WallSolidWithMirror:
		return "mirror"
	case WallSlideTrigger:
		return "slide"
	default:
		return "unknown"
	}
}

// Wall — элемент стены. Слот 0 — грань X, слот 1 — грань Z.
type Wall struct {
	Kind     WallKind
	Material Handle
}

// Present сообщает, стоит ли стена
func (w Wall) Present() bool { return w.Kind != WallAbsent }

// Crossbar — горизонтальная перекладина под гранью тайла
type Crossbar struct {
	Present bool
}

// Tile — ячейка окна
type Tile struct {
	ID        uint64
	Position  vec.Vec3Float
	Floor     Floor
	Walls     [2]Wall
	Crossbars [2]Crossbar
}

// wallSlot возвращает слот резервации для стены l
func wallSlot(l int) Slot { return SlotWallA + Slot(l) }

// crossbarSlot возвращает слот резервации для перекладины l
func crossbarSlot(l int) Slot { return SlotCrossbarZ + Slot(l) }
