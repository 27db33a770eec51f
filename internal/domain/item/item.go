// Package item defines the core domain entities for in-game items and inventory.
// This package is PURE and must NOT import any infrastructure packages.
package item

// Item is an immutable description of something the player can carry.
// Two items are equal when every field is equal.
type Item struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Image       string `json:"image" yaml:"image"` // sprite key, resolved by the asset catalog
}

// Well-known item keys used by the machine catalog and objectives.
const (
	KeyScrap      = "scrap"
	KeyIce        = "ice"
	KeyBattery    = "battery"
	KeySeeds      = "seeds"
	KeyFood       = "food"
	KeyCanister   = "oxygen_canister"
	KeyRocketPart = "rocket_part"
)

// Registry contains all known items, keyed by name.
var Registry = map[string]Item{
	KeyScrap: {
		Name:        KeyScrap,
		Description: "Twisted hull plating salvaged from the landing site.",
		Image:       "items/scrap",
	},
	KeyIce: {
		Name:        KeyIce,
		Description: "Subsurface ice. Melts into water, splits into oxygen.",
		Image:       "items/ice",
	},
	KeyBattery: {
		Name:        KeyBattery,
		Description: "A charged cell from the solar array.",
		Image:       "items/battery",
	},
	KeySeeds: {
		Name:        KeySeeds,
		Description: "Vacuum-sealed potato seeds.",
		Image:       "items/seeds",
	},
	KeyFood: {
		Name:        KeyFood,
		Description: "Greenhouse potatoes. Not great, not terrible.",
		Image:       "items/food",
	},
	KeyCanister: {
		Name:        KeyCanister,
		Description: "Pressurised oxygen for the long walk outside.",
		Image:       "items/oxygen_canister",
	},
	KeyRocketPart: {
		Name:        KeyRocketPart,
		Description: "A machined component for the ascent vehicle.",
		Image:       "items/rocket_part",
	},
}

// GetItem returns the registered item with the given name.
func GetItem(name string) (Item, bool) {
	it, ok := Registry[name]
	return it, ok
}
