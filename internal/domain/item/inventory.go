package item

import "golang.org/x/exp/slices"

// Stack is a quantity of one item.
type Stack struct {
	Item  Item   `json:"item" yaml:"item"`
	Count uint32 `json:"count" yaml:"count"`
}

// Inventory is an ordered list of stacks keyed by item name.
// A stack whose count drops to zero stays in place, so display order is stable.
type Inventory struct {
	Stacks []Stack `json:"stacks" yaml:"stacks"`
}

// NewInventory builds an inventory from stacks, merging duplicates.
func NewInventory(stacks ...Stack) Inventory {
	var inv Inventory
	for _, s := range stacks {
		inv.Add(s.Item, s.Count)
	}
	return inv
}

func (inv *Inventory) index(name string) int {
	return slices.IndexFunc(inv.Stacks, func(s Stack) bool { return s.Item.Name == name })
}

// Quantity returns how many of the named item are held.
func (inv Inventory) Quantity(name string) uint32 {
	if i := inv.index(name); i >= 0 {
		return inv.Stacks[i].Count
	}
	return 0
}

// Add puts n of it into the inventory, appending a new stack if needed.
func (inv *Inventory) Add(it Item, n uint32) {
	if i := inv.index(it.Name); i >= 0 {
		inv.Stacks[i].Count += n
		return
	}
	inv.Stacks = append(inv.Stacks, Stack{Item: it, Count: n})
}

// Remove takes n of the named item. It returns false and leaves the
// inventory untouched if fewer than n are held.
func (inv *Inventory) Remove(name string, n uint32) bool {
	i := inv.index(name)
	if i < 0 {
		return n == 0
	}
	if inv.Stacks[i].Count < n {
		return false
	}
	inv.Stacks[i].Count -= n
	return true
}

// Clone returns a deep copy.
func (inv Inventory) Clone() Inventory {
	return Inventory{Stacks: slices.Clone(inv.Stacks)}
}

// Equal compares stacks in order. A nil and an empty inventory are equal.
func (inv Inventory) Equal(o Inventory) bool {
	return slices.Equal(inv.Stacks, o.Stacks)
}
