package structure

import "math/rand"

// Random — источник случайности генератора. *rand.Rand ему удовлетворяет.
type Random interface {
	// Intn возвращает значение из [0, n), n > 0
	Intn(n int) int
}

// NewRandom создаёт детерминированный источник с заданным зерном
func NewRandom(seed int64) Random {
	return rand.New(rand.NewSource(seed))
}

// oneIn выпадает с вероятностью 1/n
func oneIn(r Random, n int) bool {
	return r.Intn(n) == 0
}

// rangeInt возвращает значение из [min, max); пустой диапазон даёт min
func rangeInt(r Random, min, max int) int {
	if max <= min {
		return min
	}
	return min + r.Intn(max-min)
}
