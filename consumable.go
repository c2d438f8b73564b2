package main

import (
	"math"

	"github.com/google/uuid"
)

const (
	ConsumableFloor = 50 // target pool population per room
	ConsumeReward   = 5.0
	DivideReward    = 10.0
	PredationPayout = 0.1 // attacker earns victimMass * this
)

// consumableMasses are the only masses a consumable may carry.
// Server-received values are snapped to the nearest entry.
var consumableMasses = []float64{5, 15, 25}

var consumableColors = []string{
	"#ff6b6b", "#4ecdc4", "#45b7d1", "#96ceb4", "#feca57",
}

// Consumable is a static map object that grows a cell on contact
type Consumable struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Mass  float64 `json:"mass"`
	Color string  `json:"color"`
}

// NewConsumable spawns a consumable at a random map position with a
// canonical mass. IDs come from a UUID source so an identifier is never
// reused while a previous holder is still in the pool.
func NewConsumable() Consumable {
	return Consumable{
		ID:    uuid.NewString(),
		X:     randCoord(),
		Y:     randCoord(),
		Mass:  consumableMasses[int(randFloat()*float64(len(consumableMasses)))%len(consumableMasses)],
		Color: consumableColors[int(randFloat()*float64(len(consumableColors)))%len(consumableColors)],
	}
}

// CanonicalMass snaps an arbitrary reported mass to the nearest allowed
// value. Midpoints resolve downward (10 -> 5, 20 -> 15) because the first
// candidate wins on equal distance.
func CanonicalMass(m float64) float64 {
	v := math.Round(m)
	best := consumableMasses[0]
	diff := math.Inf(1)
	for _, a := range consumableMasses {
		if d := math.Abs(a - v); d < diff {
			diff = d
			best = a
		}
	}
	return best
}
