package structure

import "sync/atomic"

// Stats — счётчики генерации. Читать можно из любой горутины.
type Stats struct {
	Ticks            atomic.Uint64
	Shifts           atomic.Uint64
	TilesCreated     atomic.Uint64
	TilesDestroyed   atomic.Uint64
	ColumnsCreated   atomic.Uint64
	ColumnsDestroyed atomic.Uint64
	RopesPlaced      atomic.Uint64
	RopesRejected    atomic.Uint64
	RampsPlaced      atomic.Uint64
	RampsRejected    atomic.Uint64
	ProbeRefreshes   atomic.Uint64
	Overruns         atomic.Uint64
}

// StatsSnapshot — значения счётчиков на момент чтения
type StatsSnapshot struct {
	Ticks            uint64 `json:"ticks"`
	Shifts           uint64 `json:"shifts"`
	TilesCreated     uint64 `json:"tiles_created"`
	TilesDestroyed   uint64 `json:"tiles_destroyed"`
	ColumnsCreated   uint64 `json:"columns_created"`
	ColumnsDestroyed uint64 `json:"columns_destroyed"`
	RopesPlaced      uint64 `json:"ropes_placed"`
	RopesRejected    uint64 `json:"ropes_rejected"`
	RampsPlaced      uint64 `json:"ramps_placed"`
	RampsRejected    uint64 `json:"ramps_rejected"`
	ProbeRefreshes   uint64 `json:"probe_refreshes"`
	Overruns         uint64 `json:"overruns"`
}

// Snapshot читает все счётчики
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Ticks:            s.Ticks.Load(),
		Shifts:           s.Shifts.Load(),
		TilesCreated:     s.TilesCreated.Load(),
		TilesDestroyed:   s.TilesDestroyed.Load(),
		ColumnsCreated:   s.ColumnsCreated.Load(),
		ColumnsDestroyed: s.ColumnsDestroyed.Load(),
		RopesPlaced:      s.RopesPlaced.Load(),
		RopesRejected:    s.RopesRejected.Load(),
		RampsPlaced:      s.RampsPlaced.Load(),
		RampsRejected:    s.RampsRejected.Load(),
		ProbeRefreshes:   s.ProbeRefreshes.Load(),
		Overruns:         s.Overruns.Load(),
	}
}
