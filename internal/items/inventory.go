// Package items provides the fixed-slot inventory the race and vendor flows
// mutate. Slot allocation is a collaborator of the session machine, not part
// of it: the engine only asks for a free slot and writes the reward there.
package items

import "fmt"

// SlotCount is the size of a player's main inventory.
const SlotCount = 50

// Item is one inventory stack. A zero ID marks an empty slot; Opt carries
// the stack count (or option bits for bound items).
type Item struct {
	ID   int32 `json:"id"`
	Type int32 `json:"type"`
	Opt  int32 `json:"opt"`
}

// IsEmpty reports whether the item is the empty-slot sentinel.
func (it Item) IsEmpty() bool {
	return it.ID == 0 && it.Type == 0
}

// Inventory is a fixed array of slots. It is not safe for concurrent use;
// the hub's dispatch discipline serializes access.
type Inventory struct {
	slots [SlotCount]Item
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{}
}

// FindFreeSlot returns the index of the first empty slot, or -1 when the
// inventory is full.
func (inv *Inventory) FindFreeSlot() int {
	for i := range inv.slots {
		if inv.slots[i].IsEmpty() {
			return i
		}
	}
	return -1
}

// Get returns the item in a slot.
func (inv *Inventory) Get(slot int) (Item, error) {
	if slot < 0 || slot >= SlotCount {
		return Item{}, fmt.Errorf("inventory slot %d out of range", slot)
	}
	return inv.slots[slot], nil
}

// Set writes an item into a slot, replacing whatever was there.
func (inv *Inventory) Set(slot int, item Item) error {
	if slot < 0 || slot >= SlotCount {
		return fmt.Errorf("inventory slot %d out of range", slot)
	}
	inv.slots[slot] = item
	return nil
}

// Clear empties a slot.
func (inv *Inventory) Clear(slot int) error {
	return inv.Set(slot, Item{})
}
