package api

import (
	"github.com/annel0/endless-structure/internal/structure"
	"github.com/annel0/endless-structure/internal/vec"
)

// AgentView — положение агента на момент последнего тика
type AgentView struct {
	Position vec.Vec3Float `json:"position"`
	Tile     *vec.Vec3     `json:"tile,omitempty"`
	Climbing bool          `json:"climbing"`
}

// WindowView — сводка по окну
type WindowView struct {
	SideLength int                     `json:"side_length"`
	Radius     int                     `json:"radius"`
	TileLength float64                 `json:"tile_length"`
	Anchor     vec.Vec3Float           `json:"anchor"`
	Bounds     [3][2]float64           `json:"bounds"`
	Tiles      int                     `json:"tiles"`
	Supports   int                     `json:"supports"`
	Reserved   int                     `json:"reserved_slots"`
	Floors     map[string]int          `json:"floors"`
	Walls      map[string]int          `json:"walls"`
	Climb      []structure.ClimbRegion `json:"climb_regions"`
	Agent      AgentView               `json:"agent"`
}

// FloorView — пол тайла с геометрией
type FloorView struct {
	Kind      string               `json:"kind"`
	Material  structure.Handle     `json:"material"`
	Rope      *RopeView            `json:"rope,omitempty"`
	Ramp      *RampView            `json:"ramp,omitempty"`
	Transform *structure.Transform `json:"transform,omitempty"`
}

type RopeView struct {
	Length int                   `json:"length"`
	Top    vec.Vec3              `json:"top"`
	Climb  structure.ClimbRegion `json:"climb"`
}

type RampView struct {
	Tilt string `json:"tilt"`
	Sign int    `json:"sign"`
}

type WallView struct {
	Kind      string               `json:"kind"`
	Material  structure.Handle     `json:"material"`
	Transform *structure.Transform `json:"transform,omitempty"`
}

type CrossbarView struct {
	Present   bool                 `json:"present"`
	Transform *structure.Transform `json:"transform,omitempty"`
}

// TileView — полное описание тайла для /api/tiles
type TileView struct {
	ID        uint64          `json:"id"`
	Coord     vec.Vec3        `json:"coord"`
	Position  vec.Vec3Float   `json:"position"`
	Floor     FloorView       `json:"floor"`
	Walls     [2]WallView     `json:"walls"`
	Crossbars [2]CrossbarView `json:"crossbars"`
}

func transformOrNil(t structure.Transform, ok bool) *structure.Transform {
	if !ok {
		return nil
	}
	return &t
}

func newTileView(c vec.Vec3, t structure.Tile, tl float64) TileView {
	v := TileView{
		ID:       t.ID,
		Coord:    c,
		Position: t.Position,
		Floor: FloorView{
			Kind:      t.Floor.Kind.String(),
			Material:  t.Floor.Material,
			Transform: transformOrNil(structure.FloorTransform(&t, tl)),
		},
	}
	if r := t.Floor.Rope; r != nil {
		v.Floor.Rope = &RopeView{Length: r.Length, Top: r.Top, Climb: r.Climb}
	}
	if r := t.Floor.Ramp; r != nil {
		v.Floor.Ramp = &RampView{Tilt: r.Tilt.String(), Sign: r.Sign}
	}
	for l := 0; l < 2; l++ {
		v.Walls[l] = WallView{
			Kind:      t.Walls[l].Kind.String(),
			Material:  t.Walls[l].Material,
			Transform: transformOrNil(structure.WallTransform(&t, l, tl)),
		}
		v.Crossbars[l] = CrossbarView{
			Present:   t.Crossbars[l].Present,
			Transform: transformOrNil(structure.CrossbarTransform(&t, l, tl)),
		}
	}
	return v
}

func newWindowView(snap *structure.Snapshot, agent vec.Vec3Float, climbing bool) WindowView {
	v := WindowView{
		SideLength: snap.SideLength,
		Radius:     snap.Radius,
		TileLength: snap.TileLength,
		Anchor:     snap.Anchor,
		Bounds:     snap.Bounds,
		Tiles:      snap.TileCount(),
		Supports:   len(snap.Supports),
		Reserved:   snap.Reservations.Count(),
		Floors:     make(map[string]int),
		Walls:      make(map[string]int),
		Climb:      snap.Climb,
		Agent:      AgentView{Position: agent, Climbing: climbing},
	}
	for _, t := range snap.Tiles {
		v.Floors[t.Floor.Kind.String()]++
		for _, w := range t.Walls {
			v.Walls[w.Kind.String()]++
		}
	}
	if c, ok := snap.TileContaining(agent); ok {
		v.Agent.Tile = &c
	}
	return v
}

// reservationView возвращает флаги всех слотов ячейки; ok=false вне сетки
func reservationView(g *structure.ReservationGrid, c vec.Vec3) (map[string]bool, bool) {
	for _, x := range [3]int{c.X, c.Y, c.Z} {
		if x+g.Offset() < 0 || x+g.Offset() >= g.Side() {
			return nil, false
		}
	}
	out := make(map[string]bool, structure.SlotCount)
	for s := structure.Slot(0); s < structure.SlotCount; s++ {
		out[s.String()] = g.IsReserved(c, s)
	}
	return out, true
}
