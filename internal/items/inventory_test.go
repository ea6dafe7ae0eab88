package items

import "testing"

func TestFindFreeSlotSkipsOccupied(t *testing.T) {
	inv := NewInventory()
	if err := inv.Set(0, Item{ID: 101, Type: 9, Opt: 1}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := inv.Set(1, Item{ID: 102, Type: 9, Opt: 1}); err != nil {
		t.Fatalf("set: %v", err)
	}

	if slot := inv.FindFreeSlot(); slot != 2 {
		t.Fatalf("expected first free slot 2, got %d", slot)
	}
}

func TestFindFreeSlotFullInventory(t *testing.T) {
	inv := NewInventory()
	for i := 0; i < SlotCount; i++ {
		if err := inv.Set(i, Item{ID: 1, Type: 9, Opt: 1}); err != nil {
			t.Fatalf("set slot %d: %v", i, err)
		}
	}
	if slot := inv.FindFreeSlot(); slot != -1 {
		t.Fatalf("expected -1 for a full inventory, got %d", slot)
	}
}

func TestClearReopensSlot(t *testing.T) {
	inv := NewInventory()
	for i := 0; i < 3; i++ {
		if err := inv.Set(i, Item{ID: 1, Type: 9, Opt: 1}); err != nil {
			t.Fatalf("set slot %d: %v", i, err)
		}
	}
	if err := inv.Clear(1); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if slot := inv.FindFreeSlot(); slot != 1 {
		t.Fatalf("expected cleared slot 1 to be reused, got %d", slot)
	}
}

func TestGetRejectsOutOfRange(t *testing.T) {
	inv := NewInventory()
	if _, err := inv.Get(-1); err == nil {
		t.Fatalf("expected error for negative slot")
	}
	if _, err := inv.Get(SlotCount); err == nil {
		t.Fatalf("expected error for slot past the end")
	}
}
