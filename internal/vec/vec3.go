package vec

// Axis обозначает одну из трёх пространственных осей
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes перечисляет оси в фиксированном порядке обработки (X, затем Y, затем Z)
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

// String возвращает имя оси
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// Vec3 представляет трехмерный вектор с целочисленными координатами
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Unit возвращает единичный вектор вдоль оси, умноженный на dir
func Unit(axis Axis, dir int) Vec3 {
	var v Vec3
	v.Set(axis, dir)
	return v
}

// Get возвращает компоненту по оси
func (v Vec3) Get(axis Axis) int {
	switch axis {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// Set устанавливает компоненту по оси
func (v *Vec3) Set(axis Axis, value int) {
	switch axis {
	case AxisX:
		v.X = value
	case AxisY:
		v.Y = value
	default:
		v.Z = value
	}
}

// DistanceTo возвращает квадрат расстояния до другого вектора
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return float64(dx*dx + dy*dy + dz*dz)
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// InCube проверяет, что все компоненты лежат в [0, n)
func (v Vec3) InCube(n int) bool {
	return v.X >= 0 && v.X < n && v.Y >= 0 && v.Y < n && v.Z >= 0 && v.Z < n
}
