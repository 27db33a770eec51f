package item

import "testing"

func TestInventoryAddMergesStacks(t *testing.T) {
	scrap := Registry[KeyScrap]
	ice := Registry[KeyIce]

	inv := NewInventory(Stack{Item: scrap, Count: 2}, Stack{Item: ice, Count: 1}, Stack{Item: scrap, Count: 3})

	if len(inv.Stacks) != 2 {
		t.Fatalf("Expected 2 stacks, got %d", len(inv.Stacks))
	}
	if inv.Quantity(KeyScrap) != 5 {
		t.Errorf("Expected 5 scrap, got %d", inv.Quantity(KeyScrap))
	}
	if inv.Stacks[0].Item.Name != KeyScrap {
		t.Errorf("Expected scrap to keep the first slot, got %s", inv.Stacks[0].Item.Name)
	}
}

func TestInventoryRemove(t *testing.T) {
	inv := NewInventory(Stack{Item: Registry[KeyBattery], Count: 1})

	if inv.Remove(KeyBattery, 2) {
		t.Errorf("Expected removing more than held to fail")
	}
	if inv.Quantity(KeyBattery) != 1 {
		t.Errorf("Expected a failed remove to leave 1 battery, got %d", inv.Quantity(KeyBattery))
	}
	if !inv.Remove(KeyBattery, 1) {
		t.Fatalf("Expected removing the last battery to succeed")
	}
	if len(inv.Stacks) != 1 || inv.Stacks[0].Count != 0 {
		t.Errorf("Expected an empty stack to stay in place, got %+v", inv.Stacks)
	}
	if inv.Remove(KeySeeds, 1) {
		t.Errorf("Expected removing an item never held to fail")
	}
	if !inv.Remove(KeySeeds, 0) {
		t.Errorf("Expected removing zero of anything to succeed")
	}
}

func TestInventoryCloneIsDeep(t *testing.T) {
	inv := NewInventory(Stack{Item: Registry[KeyFood], Count: 2})
	c := inv.Clone()
	c.Add(Registry[KeyFood], 1)

	if inv.Quantity(KeyFood) != 2 {
		t.Errorf("Expected the original to keep 2 food, got %d", inv.Quantity(KeyFood))
	}
	if inv.Equal(c) {
		t.Errorf("Expected the modified clone to differ")
	}
	if !(Inventory{}).Equal(Inventory{Stacks: []Stack{}}) {
		t.Errorf("Expected nil and empty inventories to be equal")
	}
}

func TestRegistryLookup(t *testing.T) {
	it, ok := GetItem(KeyRocketPart)
	if !ok || it.Name != KeyRocketPart {
		t.Errorf("Expected rocket part to be registered, got %+v", it)
	}
	if _, ok := GetItem("unobtainium"); ok {
		t.Errorf("Expected unknown items to be missing")
	}
}
