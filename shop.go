package main

// Upgrade identifiers, shared between the catalog, player flags and
// temporary effects.
const (
	UpgradeArmor         = "armor"
	UpgradeSpeed         = "speed"
	UpgradeDoubleConsume = "doubleConsume"
	UpgradeMegaConsume   = "megaConsume"
	UpgradeExpansion     = "expansion"
)

// ShopItem describes one purchasable upgrade. Purchases happen on the
// client; the server uses the catalog to bound what snapshots may claim
// (effect durations in particular).
type ShopItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Cost       float64 `json:"cost"`
	Effect     float64 `json:"effect,omitempty"`   // fractional bonus for permanent upgrades
	DurationMs float64 `json:"duration,omitempty"` // lifetime for temporary effects
	Temporary  bool    `json:"temporary"`
}

// ShopCatalog is the full upgrade list
var ShopCatalog = []ShopItem{
	{ID: UpgradeArmor, Name: "Armor", Cost: 200, Effect: 0.2},
	{ID: UpgradeSpeed, Name: "Speed", Cost: 150, Effect: 0.15},
	{ID: UpgradeDoubleConsume, Name: "Double Consume", Cost: 250, DurationMs: 30000, Temporary: true},
	{ID: UpgradeMegaConsume, Name: "Mega Consume", Cost: 500, DurationMs: 15000, Temporary: true},
	{ID: UpgradeExpansion, Name: "Expansion", Cost: 300, Effect: 1},
}

// ShopCatalogMap provides O(1) lookup by upgrade ID
var ShopCatalogMap map[string]ShopItem

func init() {
	ShopCatalogMap = make(map[string]ShopItem, len(ShopCatalog))
	for _, item := range ShopCatalog {
		ShopCatalogMap[item.ID] = item
	}
}

// MaxEffectDuration returns the catalog duration for a temporary effect,
// used to cap client-reported timers.
func MaxEffectDuration(id string) float64 {
	if item, ok := ShopCatalogMap[id]; ok && item.Temporary {
		return item.DurationMs
	}
	return 0
}
