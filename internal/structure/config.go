package structure

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSideLength = errors.New("side length must be odd and at least 3")
	ErrInvalidTileLength = errors.New("tile length must be positive")
	ErrNoFloorMaterials  = errors.New("at least one floor material is required")
	ErrSlideMaterials    = errors.New("every floor material needs a slide material")
	ErrInvalidChance     = errors.New("chance denominators must be at least 1")
	ErrNotStarted        = errors.New("structure is not started")
	ErrAlreadyStarted    = errors.New("structure is already started")
)

// Handle — непрозрачный идентификатор ресурса рендерера или физики
type Handle uint32

// Materials содержит ресурсы, выдаваемые на этапе конфигурации
type Materials struct {
	Floor             []Handle // Материалы пола; индекс выбирает и материал горки
	Slide             []Handle // Материалы стен-горок, по одному на материал пола
	Plexiglass        Handle
	Mirror            Handle
	Rope              Handle
	WallNet           Handle
	VerticalSupport   Handle
	HorizontalSupport Handle
	SupportPhysics    Handle
	PlasticPhysics    Handle
	GroundLayer       Handle
	ConvexMesh        Handle
}

// Chances — знаменатели вероятностей вида "один из N"
type Chances struct {
	FragileOneIn       int
	WallOneIn          int
	SolidOneIn         int
	MirrorInitialOneIn int
	MirrorStreamOneIn  int
	SlideOneIn         int
	RopeOneIn          int
	RampOneIn          int
}

// DefaultChances возвращает стандартные вероятности генерации
func DefaultChances() Chances {
	return Chances{
		FragileOneIn:       32,
		WallOneIn:          2,
		SolidOneIn:         7,
		MirrorInitialOneIn: 20,
		MirrorStreamOneIn:  50,
		SlideOneIn:         120,
		RopeOneIn:          32,
		RampOneIn:          32,
	}
}

func (c Chances) validate() error {
	values := []struct {
		name  string
		value int
	}{
		{"fragile", c.FragileOneIn},
		{"wall", c.WallOneIn},
		{"solid", c.SolidOneIn},
		{"mirror_initial", c.MirrorInitialOneIn},
		{"mirror_stream", c.MirrorStreamOneIn},
		{"slide", c.SlideOneIn},
		{"rope", c.RopeOneIn},
		{"ramp", c.RampOneIn},
	}
	for _, v := range values {
		if v.value < 1 {
			return fmt.Errorf("%s=%d: %w", v.name, v.value, ErrInvalidChance)
		}
	}
	return nil
}

// Config — параметры построения структуры
type Config struct {
	SideLength int     // L, нечётное, не меньше 3
	TileLength float64 // Длина ребра тайла в мировых единицах
	Materials  Materials
	Chances    Chances
}

// DefaultConfig возвращает конфигурацию L=11, tileLength=4 с одним материалом пола
func DefaultConfig() Config {
	return Config{
		SideLength: 11,
		TileLength: 4,
		Materials: Materials{
			Floor: []Handle{1},
			Slide: []Handle{2},
		},
		Chances: DefaultChances(),
	}
}

// Validate проверяет конфигурацию
func (c Config) Validate() error {
	if c.SideLength < 3 || c.SideLength%2 == 0 {
		return fmt.Errorf("side length %d: %w", c.SideLength, ErrInvalidSideLength)
	}
	if c.TileLength <= 0 {
		return fmt.Errorf("tile length %v: %w", c.TileLength, ErrInvalidTileLength)
	}
	if len(c.Materials.Floor) == 0 {
		return ErrNoFloorMaterials
	}
	if len(c.Materials.Slide) < len(c.Materials.Floor) {
		return fmt.Errorf("%d slide for %d floor: %w",
			len(c.Materials.Slide), len(c.Materials.Floor), ErrSlideMaterials)
	}
	return c.Chances.validate()
}
