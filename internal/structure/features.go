package structure

import "github.com/annel0/endless-structure/internal/vec"

// populationMode различает начальное заполнение и потоковую догенерацию
type populationMode int

const (
	modeInitial populationMode = iota
	modeStream
)

// FeatureGenerator решает, что стоит в каждом тайле: пол, стены,
// перекладины, верёвки и пандусы. Все решения сверяются с сеткой резерваций.
type FeatureGenerator struct {
	tiles      *TileGrid
	res        *ReservationGrid
	rng        Random
	mats       Materials
	chances    Chances
	side       int
	radius     int
	center     int
	tileLength float64
	stats      *Stats
	log        Logger
}

func newFeatureGenerator(tiles *TileGrid, res *ReservationGrid, cfg Config, rng Random, stats *Stats, log Logger) *FeatureGenerator {
	radius := (cfg.SideLength + 1) / 2
	return &FeatureGenerator{
		tiles:      tiles,
		res:        res,
		rng:        rng,
		mats:       cfg.Materials,
		chances:    cfg.Chances,
		side:       cfg.SideLength,
		radius:     radius,
		center:     radius - 1,
		tileLength: cfg.TileLength,
		stats:      stats,
		log:        log,
	}
}

// populate строит пол и стены для всех координат, затем запускает проход фич
func (fg *FeatureGenerator) populate(coords []vec.Vec3, mode populationMode) (ropes, ramps int) {
	for _, c := range coords {
		fg.buildTile(c, mode)
	}
	for _, c := range coords {
		switch fg.decorateTile(c, mode) {
		case FloorRope:
			ropes++
		case FloorRamp:
			ramps++
		}
	}
	return ropes, ramps
}

// buildTile генерирует пол, две стены и две перекладины одного тайла
func (fg *FeatureGenerator) buildTile(c vec.Vec3, mode populationMode) {
	t := fg.tiles.At(c)
	if t == nil {
		return
	}

	if !fg.res.IsReserved(c, SlotFloor) {
		material := fg.rng.Intn(len(fg.mats.Floor))
		t.Floor = Floor{Kind: FloorPlain, Material: fg.mats.Floor[material]}
		if oneIn(fg.rng, fg.chances.FragileOneIn) {
			t.Floor = Floor{Kind: FloorFragile, Material: fg.mats.Plexiglass}
		}
	}

	mirrorOneIn := fg.chances.MirrorInitialOneIn
	if mode == modeStream {
		mirrorOneIn = fg.chances.MirrorStreamOneIn
	}

	for l := 0; l < 2; l++ {
		t.Walls[l] = Wall{}
		doWall := oneIn(fg.rng, fg.chances.WallOneIn)
		if fg.seamSuppressed(c, l) || fg.res.IsReserved(c, wallSlot(l)) {
			doWall = false
		}
		if !doWall {
			continue
		}

		material := fg.rng.Intn(len(fg.mats.Floor))
		solid := oneIn(fg.rng, fg.chances.SolidOneIn)
		mirror := oneIn(fg.rng, mirrorOneIn)
		slide := oneIn(fg.rng, fg.chances.SlideOneIn)

		switch {
		case solid && mirror:
			t.Walls[l] = Wall{Kind: WallSolidWithMirror, Material: fg.mats.Floor[material]}
		case solid:
			t.Walls[l] = Wall{Kind: WallSolid, Material: fg.mats.Floor[material]}
		case slide:
			t.Walls[l] = Wall{Kind: WallSlideTrigger, Material: fg.mats.Slide[material]}
		default:
			t.Walls[l] = Wall{Kind: WallNetOnly, Material: fg.mats.WallNet}
		}
	}

	for l := 0; l < 2; l++ {
		t.Crossbars[l] = Crossbar{Present: !fg.res.IsReserved(c, crossbarSlot(l))}
	}
}

// seamSuppressed запрещает стены, отрезающие центр структуры от соседей
func (fg *FeatureGenerator) seamSuppressed(c vec.Vec3, l int) bool {
	m := fg.center
	switch {
	case c.X == m && c.Y == m && c.Z == m:
		return true
	case l == 0 && c.X == m-1 && c.Y == m && c.Z == m:
		return true
	case l == 1 && c.X == m && c.Y == m && c.Z == m-1:
		return true
	}
	return false
}

// onCentralAxis сообщает, лежит ли тайл на центральной строке или колонне
func (fg *FeatureGenerator) onCentralAxis(c vec.Vec3) bool {
	return c.X == fg.center || c.Z == fg.center
}

// inCentralBlock сообщает, лежит ли тайл в блоке 3x3x3 вокруг центра
func (fg *FeatureGenerator) inCentralBlock(c vec.Vec3) bool {
	near := func(v int) bool { return v >= fg.center-1 && v <= fg.center+1 }
	return near(c.X) && near(c.Y) && near(c.Z)
}

// decorateTile пытается поставить верёвку, иначе пандус.
// Возвращает вид размещённой фичи или FloorAbsent.
func (fg *FeatureGenerator) decorateTile(c vec.Vec3, mode populationMode) FloorKind {
	t := fg.tiles.At(c)
	if t == nil {
		return FloorAbsent
	}

	if oneIn(fg.rng, fg.chances.RopeOneIn) && !fg.onCentralAxis(c) && t.Floor.Destroyable() {
		length := rangeInt(fg.rng, 2, fg.radius-1)
		if fg.PlaceRope(c, length) {
			return FloorRope
		}
		return FloorAbsent
	}

	if oneIn(fg.rng, fg.chances.RampOneIn) && t.Floor.Kind == FloorPlain &&
		(mode == modeStream || !fg.inCentralBlock(c)) {
		tilt := RampTilt(fg.rng.Intn(2))
		sign := fg.rng.Intn(2)
		if sign == 0 {
			sign = -1
		}
		if fg.PlaceRamp(c, tilt, sign) {
			return FloorRamp
		}
	}
	return FloorAbsent
}

// clearFloor сносит геометрию пола; отсутствующая геометрия и координаты
// вне окна пропускаются
func (fg *FeatureGenerator) clearFloor(c vec.Vec3) {
	t := fg.tiles.At(c)
	if t == nil || !t.Floor.Destroyable() {
		return
	}
	t.Floor = Floor{}
}

func (fg *FeatureGenerator) clearWall(c vec.Vec3, l int) {
	t := fg.tiles.At(c)
	if t == nil || !t.Walls[l].Present() {
		return
	}
	t.Walls[l] = Wall{}
}

func (fg *FeatureGenerator) clearCrossbar(c vec.Vec3, l int) {
	t := fg.tiles.At(c)
	if t == nil || !t.Crossbars[l].Present {
		return
	}
	t.Crossbars[l] = Crossbar{}
}

// clearSlot сносит геометрию, соответствующую слоту резервации
func (fg *FeatureGenerator) clearSlot(c vec.Vec3, s Slot) {
	switch s {
	case SlotFloor:
		fg.clearFloor(c)
	case SlotWallA, SlotWallB:
		fg.clearWall(c, int(s-SlotWallA))
	case SlotCrossbarZ, SlotCrossbarX:
		fg.clearCrossbar(c, int(s-SlotCrossbarZ))
	}
}
