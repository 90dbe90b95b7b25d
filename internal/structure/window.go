package structure

// Window — плотный куб со стороной n в dims измерениях (2 или 3),
// хранится построчно: последний индекс меняется быстрее всего.
// Это единственный примитив сдвига, общий для сетки тайлов,
// сетки резерваций и сетки колонн.
type Window[T any] struct {
	n      int
	dims   int
	stride [3]int
	cells  []T
}

// NewWindow создаёт окно и заполняет каждую ячейку через fill (может быть nil)
func NewWindow[T any](n, dims int, fill func(idx [3]int) T) *Window[T] {
	if dims < 2 {
		dims = 2
	}
	if dims > 3 {
		dims = 3
	}
	w := &Window[T]{n: n, dims: dims}
	total := 1
	for d := dims - 1; d >= 0; d-- {
		w.stride[d] = total
		total *= n
	}
	w.cells = make([]T, total)
	if fill != nil {
		for off := range w.cells {
			w.cells[off] = fill(w.decode(off))
		}
	}
	return w
}

// Size возвращает длину стороны
func (w *Window[T]) Size() int { return w.n }

// Len возвращает общее число ячеек
func (w *Window[T]) Len() int { return len(w.cells) }

func (w *Window[T]) decode(off int) [3]int {
	var idx [3]int
	for d := 0; d < w.dims; d++ {
		idx[d] = off / w.stride[d]
		off %= w.stride[d]
	}
	return idx
}

func (w *Window[T]) offset(idx [3]int) (int, bool) {
	off := 0
	for d := 0; d < w.dims; d++ {
		if idx[d] < 0 || idx[d] >= w.n {
			return 0, false
		}
		off += idx[d] * w.stride[d]
	}
	return off, true
}

// At возвращает значение ячейки; ok=false вне окна
func (w *Window[T]) At(idx [3]int) (T, bool) {
	off, ok := w.offset(idx)
	if !ok {
		var zero T
		return zero, false
	}
	return w.cells[off], true
}

// Set записывает значение; вне окна запись игнорируется
func (w *Window[T]) Set(idx [3]int, v T) bool {
	off, ok := w.offset(idx)
	if !ok {
		return false
	}
	w.cells[off] = v
	return true
}

// Each обходит все ячейки в порядке хранения
func (w *Window[T]) Each(fn func(idx [3]int, v T)) {
	for off, v := range w.cells {
		fn(w.decode(off), v)
	}
}

// Clone возвращает поверхностную копию окна
func (w *Window[T]) Clone() *Window[T] {
	c := *w
	c.cells = make([]T, len(w.cells))
	copy(c.cells, w.cells)
	return &c
}

// Shift сдвигает окно на одну ячейку вдоль измерения dim.
// dir=+1: ячейка с индексом 0 отбрасывается, остальные переезжают к началу,
// освободившаяся ячейка n-1 заполняется через fill. dir=-1 — зеркально.
// Копирование идёт в порядке, при котором ячейка читается до перезаписи.
func (w *Window[T]) Shift(dim, dir int, drop func(T), fill func(idx [3]int) T) {
	if (dir != 1 && dir != -1) || dim < 0 || dim >= w.dims {
		return
	}

	stride := w.stride[dim]
	trailing, leading := 0, w.n-1
	if dir < 0 {
		trailing, leading = w.n-1, 0
	}

	w.eachLine(dim, func(base [3]int) {
		start, _ := w.offset(base)
		if drop != nil {
			drop(w.cells[start+trailing*stride])
		}
		if dir > 0 {
			for p := 0; p < w.n-1; p++ {
				w.cells[start+p*stride] = w.cells[start+(p+1)*stride]
			}
		} else {
			for p := w.n - 1; p > 0; p-- {
				w.cells[start+p*stride] = w.cells[start+(p-1)*stride]
			}
		}

		idx := base
		idx[dim] = leading
		var v T
		if fill != nil {
			v = fill(idx)
		}
		w.cells[start+leading*stride] = v
	})
}

// eachLine вызывает fn для начала каждой линии вдоль dim (индекс dim равен 0)
func (w *Window[T]) eachLine(dim int, fn func(base [3]int)) {
	lines := len(w.cells) / w.n
	for q := 0; q < lines; q++ {
		var base [3]int
		rest := q
		for d := w.dims - 1; d >= 0; d-- {
			if d == dim {
				continue
			}
			base[d] = rest % w.n
			rest /= w.n
		}
		fn(base)
	}
}
