package main

import (
	"math"
	"time"
)

const (
	MapHalfExtent = 2000.0 // playable area is [-2000, 2000]^2
	InitialMass   = 100.0
	MinDivideMass = 50.0

	DivisionKeepRatio   = 0.6 // source cell keeps 60%, new cell gets 40%
	DivisionClearance   = 10.0
	DivisionLaunchSpeed = 5.0
	BaseMaxCells        = 5

	CellFriction     = 0.98
	CellMaxSpeed     = 8.0
	AttractionForce  = 0.3
	FormationBaseGap = 80.0
	FormationRankGap = 30.0

	PredationAdvantage = 1.2 // attacker needs a strict 20% mass edge
)

// playerColors is the palette assigned to joining players
var playerColors = []string{
	"#00ff88", "#ff6b6b", "#4ecdc4", "#45b7d1",
	"#96ceb4", "#feca57", "#ff9ff3", "#54a0ff",
}

// Cell is one growable circular unit belonging to a player.
// Radius is always derived from mass; use SetMass to keep them in sync.
type Cell struct {
	ID         int     `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Mass       float64 `json:"mass"`
	Radius     float64 `json:"radius"`
	Color      string  `json:"color"`
	VelocityX  float64 `json:"velocityX"`
	VelocityY  float64 `json:"velocityY"`
	IsMain     bool    `json:"isMain"`
	Generation int     `json:"generation"`
}

// MassToRadius converts cell mass to its rendered radius
func MassToRadius(mass float64) float64 {
	if mass <= 0 {
		return 0
	}
	return math.Sqrt(mass) * 2
}

// SetMass updates mass and recomputes the derived radius
func (c *Cell) SetMass(mass float64) {
	c.Mass = mass
	c.Radius = MassToRadius(mass)
}

// TemporaryEffect is a time-limited consumption multiplier
type TemporaryEffect struct {
	Active   bool    `json:"active"`
	TimeLeft float64 `json:"timeLeft"` // ms
}

// Effects holds the two purchasable temporary effects
type Effects struct {
	DoubleConsume TemporaryEffect `json:"doubleConsume"`
	MegaConsume   TemporaryEffect `json:"megaConsume"`
}

// Upgrades are permanent flags bought in the shop
type Upgrades struct {
	Armor         bool `json:"armor"`
	Speed         bool `json:"speed"`
	DoubleConsume bool `json:"doubleConsume"`
	MegaConsume   bool `json:"megaConsume"`
	Expansion     bool `json:"expansion"`
}

// Player is one room member. ID is the connection identity.
type Player struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Color            string   `json:"color"`
	Cells            []Cell   `json:"cells"`
	Currency         float64  `json:"currency"`
	Upgrades         Upgrades `json:"upgrades"`
	TemporaryEffects Effects  `json:"temporaryEffects"`
	IsAlive          bool     `json:"isAlive"`
	TotalMass        float64  `json:"totalMass"`
	LastUpdate       int64    `json:"lastUpdate"` // unix ms

	// AuthID links to a persistent account, 0 for anonymous players
	AuthID int64 `json:"-" msgpack:"-"`
}

// NewPlayer creates a player with one main cell at a random map position
func NewPlayer(id, name, color string) *Player {
	if color == "" {
		color = playerColors[int(randFloat()*float64(len(playerColors)))%len(playerColors)]
	}
	p := &Player{
		ID:         id,
		Name:       name,
		Color:      color,
		Cells:      []Cell{newMainCell(color)},
		IsAlive:    true,
		LastUpdate: time.Now().UnixMilli(),
	}
	p.RecomputeTotalMass()
	return p
}

func newMainCell(color string) Cell {
	c := Cell{
		ID:         0,
		X:          randCoord(),
		Y:          randCoord(),
		Color:      color,
		IsMain:     true,
		Generation: 1,
	}
	c.SetMass(InitialMass)
	return c
}

// MainCell returns a pointer to the player's main cell, or nil
func (p *Player) MainCell() *Cell {
	for i := range p.Cells {
		if p.Cells[i].IsMain {
			return &p.Cells[i]
		}
	}
	return nil
}

// RecomputeTotalMass re-derives TotalMass from the cell masses
func (p *Player) RecomputeTotalMass() {
	total := 0.0
	for i := range p.Cells {
		total += p.Cells[i].Mass
	}
	p.TotalMass = total
}

// ResetToSpawn puts the player back to a single fresh main cell,
// keeping the original color. Used on respawn after predation.
func (p *Player) ResetToSpawn() {
	p.IsAlive = true
	p.Cells = []Cell{newMainCell(p.Color)}
	p.RecomputeTotalMass()
}
