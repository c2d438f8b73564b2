package main

import (
	"errors"
	"math"
	"time"
)

// PlayerSnapshot is the client-reported state applied wholesale on
// updatePlayer. Position, velocity and cell topology are trusted; the
// gate only normalizes derived values and rejects structurally broken
// payloads.
type PlayerSnapshot struct {
	Cells            []Cell   `json:"cells"`
	Currency         float64  `json:"currency"`
	Upgrades         Upgrades `json:"upgrades"`
	TemporaryEffects Effects  `json:"temporaryEffects"`
}

// SnapshotGate is the single seam through which client snapshots reach
// room state. Swapping in a server-computed implementation replaces the
// trust boundary without touching broadcast or lifecycle code.
type SnapshotGate interface {
	Apply(p *Player, snap PlayerSnapshot) error
}

var (
	errNoCells     = errors.New("snapshot has no cells")
	errBadCellMass = errors.New("snapshot cell has non-positive mass")
)

// trustingGate accepts client snapshots after normalizing invariants:
// radius re-derived from mass, exactly one main cell, non-negative
// currency, effect timers bounded by the shop catalog durations.
type trustingGate struct{}

// NewTrustingGate returns the default client-authoritative gate
func NewTrustingGate() SnapshotGate {
	return trustingGate{}
}

func (trustingGate) Apply(p *Player, snap PlayerSnapshot) error {
	if len(snap.Cells) == 0 {
		return errNoCells
	}
	cells := make([]Cell, len(snap.Cells))
	copy(cells, snap.Cells)

	mainSeen := false
	for i := range cells {
		if cells[i].Mass <= 0 {
			return errBadCellMass
		}
		cells[i].SetMass(cells[i].Mass)
		if cells[i].Generation < 1 {
			cells[i].Generation = 1
		}
		cells[i].X = Clamp(cells[i].X, -MapHalfExtent, MapHalfExtent)
		cells[i].Y = Clamp(cells[i].Y, -MapHalfExtent, MapHalfExtent)
		if cells[i].IsMain {
			if mainSeen {
				cells[i].IsMain = false
			}
			mainSeen = true
		}
	}
	if !mainSeen {
		cells[0].IsMain = true
	}

	fx := snap.TemporaryEffects
	clampEffect(&fx.DoubleConsume, MaxEffectDuration(UpgradeDoubleConsume))
	clampEffect(&fx.MegaConsume, MaxEffectDuration(UpgradeMegaConsume))

	p.Cells = cells
	p.Currency = math.Max(0, snap.Currency)
	p.Upgrades = snap.Upgrades
	p.TemporaryEffects = fx
	p.RecomputeTotalMass()
	p.LastUpdate = time.Now().UnixMilli()
	return nil
}

func clampEffect(e *TemporaryEffect, maxMs float64) {
	if e.TimeLeft < 0 {
		e.TimeLeft = 0
	}
	if maxMs > 0 && e.TimeLeft > maxMs {
		e.TimeLeft = maxMs
	}
	if e.TimeLeft == 0 {
		e.Active = false
	}
}
