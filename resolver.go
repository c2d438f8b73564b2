package main

import "math"

// ResolverMode selects which checks a resolver instance applies.
// The same rule set runs in three contexts: offline play applies outcomes
// immediately, networked prediction defers to server confirmation, and the
// authoritative instance inside a Room arbitrates shared state.
type ResolverMode int

const (
	ModeOffline ResolverMode = iota
	ModePredictive
	ModeAuthoritative
)

// Resolver holds the interaction rules every runtime context must agree on
type Resolver struct {
	Mode ResolverMode
}

// AppliesLocally reports whether consumption outcomes take effect without
// waiting for server confirmation.
func (r Resolver) AppliesLocally() bool {
	return r.Mode == ModeOffline
}

// CanConsume reports whether a cell consumes a consumable.
// The single rule, applied in every context: center distance strictly
// below the cell's radius.
func (r Resolver) CanConsume(cell Cell, c Consumable) bool {
	return Distance(cell.X, cell.Y, c.X, c.Y) < cell.Radius
}

// ConsumeGain returns the mass gained from a consumable: the canonical
// mass, doubled under doubleConsume and quintupled under megaConsume.
// Both effects stack multiplicatively.
func (r Resolver) ConsumeGain(c Consumable, fx Effects) float64 {
	gain := CanonicalMass(c.Mass)
	if fx.DoubleConsume.Active {
		gain *= 2
	}
	if fx.MegaConsume.Active {
		gain *= 5
	}
	return gain
}

// MaxCells returns the division limit for a player
func (r Resolver) MaxCells(up Upgrades) int {
	if up.Expansion {
		return BaseMaxCells + 1
	}
	return BaseMaxCells
}

// CanDivide reports whether the cell at idx may divide right now
func (r Resolver) CanDivide(cells []Cell, idx int, up Upgrades) bool {
	if idx < 0 || idx >= len(cells) {
		return false
	}
	return cells[idx].Mass >= MinDivideMass && len(cells) < r.MaxCells(up)
}

// Divide splits the cell at idx toward the target point. The source keeps
// 60% of its mass and the new cell gets 40%, conserving total mass exactly.
// The new cell is offset along the target direction by both radii plus a
// fixed clearance and launched at a fixed speed. Returns the extended
// slice and whether the division happened.
func (r Resolver) Divide(cells []Cell, idx int, targetX, targetY float64, up Upgrades) ([]Cell, bool) {
	if !r.CanDivide(cells, idx, up) {
		return cells, false
	}
	src := &cells[idx]

	dx := targetX - src.X
	dy := targetY - src.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist < 10 {
		return cells, false
	}
	dirX := dx / dist
	dirY := dy / dist

	newMass := src.Mass * (1 - DivisionKeepRatio)
	keptMass := src.Mass * DivisionKeepRatio

	newCell := Cell{
		ID:         len(cells),
		X:          src.X + dirX*(src.Radius+MassToRadius(newMass)+DivisionClearance),
		Y:          src.Y + dirY*(src.Radius+MassToRadius(newMass)+DivisionClearance),
		Color:      src.Color,
		VelocityX:  dirX * DivisionLaunchSpeed,
		VelocityY:  dirY * DivisionLaunchSpeed,
		IsMain:     false,
		Generation: src.Generation + 1,
	}
	newCell.SetMass(newMass)
	src.SetMass(keptMass)

	return append(cells, newCell), true
}

// MergePass merges overlapping same-player cells. The larger absorbs the
// smaller; on equal mass the lower-index cell absorbs. Any non-main cell
// overlapping the main cell is absorbed into it regardless of size.
// Merging is mass-additive and removes the absorbed cell.
func (r Resolver) MergePass(cells []Cell) []Cell {
	// Non-main pairs first
	for {
		merged := false
		for i := 0; i < len(cells) && !merged; i++ {
			if cells[i].IsMain {
				continue
			}
			for j := i + 1; j < len(cells); j++ {
				if cells[j].IsMain {
					continue
				}
				if !overlap(cells[i], cells[j]) {
					continue
				}
				winner, loser := i, j
				if cells[j].Mass > cells[i].Mass {
					winner, loser = j, i
				}
				cells[winner].SetMass(cells[winner].Mass + cells[loser].Mass)
				cells = append(cells[:loser], cells[loser+1:]...)
				merged = true
				break
			}
		}
		if !merged {
			break
		}
	}

	// Main cell absorbs any non-main it touches
	main := -1
	for i := range cells {
		if cells[i].IsMain {
			main = i
			break
		}
	}
	if main < 0 {
		return cells
	}
	for i := len(cells) - 1; i >= 0; i-- {
		if i == main || !overlap(cells[main], cells[i]) {
			continue
		}
		cells[main].SetMass(cells[main].Mass + cells[i].Mass)
		cells = append(cells[:i], cells[i+1:]...)
		if i < main {
			main--
		}
	}
	return cells
}

func overlap(a, b Cell) bool {
	return Distance(a.X, a.Y, b.X, b.Y) < a.Radius+b.Radius
}

// FormationStep advances non-main cells by one tick. Without pull they
// track a circular formation around the main cell (radius grows per rank,
// angles evenly distributed) with a spring correction proportional to the
// main cell's recent displacement. With pull active they accelerate toward
// the main cell at constant force. Velocity is damped by friction and
// capped at the global maximum every tick.
func (r Resolver) FormationStep(cells []Cell, mainDX, mainDY float64, pulling bool) {
	main := -1
	for i := range cells {
		if cells[i].IsMain {
			main = i
			break
		}
	}
	if main < 0 {
		return
	}
	mc := cells[main]
	nonMain := len(cells) - 1
	if nonMain <= 0 {
		return
	}

	rank := 0
	for i := range cells {
		if i == main {
			continue
		}
		cell := &cells[i]
		cell.VelocityX *= CellFriction
		cell.VelocityY *= CellFriction

		if pulling {
			dx := mc.X - cell.X
			dy := mc.Y - cell.Y
			if dist := math.Sqrt(dx*dx + dy*dy); dist > 0 {
				cell.VelocityX += dx / dist * AttractionForce
				cell.VelocityY += dy / dist * AttractionForce
			}
		} else {
			radius := mc.Radius + FormationBaseGap + float64(rank)*FormationRankGap
			angle := float64(rank) * 2 * math.Pi / float64(nonMain)
			targetX := mc.X + math.Cos(angle)*radius
			targetY := mc.Y + math.Sin(angle)*radius

			dx := targetX - cell.X
			dy := targetY - cell.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist > 10 {
				followSpeed := math.Sqrt(mainDX*mainDX+mainDY*mainDY) * 0.4
				if followSpeed == 0 {
					followSpeed = AttractionForce * 0.2
				}
				force := followSpeed / math.Max(dist, 1)
				cell.VelocityX += dx * force
				cell.VelocityY += dy * force
			}
			// Carry half the main cell's displacement
			cell.X += mainDX * 0.5
			cell.Y += mainDY * 0.5
		}

		if speed := math.Sqrt(cell.VelocityX*cell.VelocityX + cell.VelocityY*cell.VelocityY); speed > CellMaxSpeed {
			cell.VelocityX = cell.VelocityX / speed * CellMaxSpeed
			cell.VelocityY = cell.VelocityY / speed * CellMaxSpeed
		}
		cell.X = Clamp(cell.X+cell.VelocityX, -MapHalfExtent, MapHalfExtent)
		cell.Y = Clamp(cell.Y+cell.VelocityY, -MapHalfExtent, MapHalfExtent)
		rank++
	}
}

// CanPrey reports whether an attacker of the given total mass eliminates
// a victim. The attacker needs a strict 20% advantage; exactly 1.2x fails.
func (r Resolver) CanPrey(attackerMass, victimMass float64) bool {
	return attackerMass > victimMass*PredationAdvantage
}
