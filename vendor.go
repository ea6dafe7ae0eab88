package server

import (
	"ringrace/server/internal/items"
)

// vendorTableLimit caps how many listings a table response carries.
const vendorTableLimit = 20

// crocPotOptionBits marks bound items; anything with these bits set cannot
// be sold.
const crocPotOptionBits = 1 << 16

// batteryCap is the per-type battery ceiling.
const batteryCap = 9999

// Battery item ids on the wire.
const (
	batteryItemW int32 = 3
	batteryItemN int32 = 4
)

func wireToItem(w WireItem) items.Item {
	return items.Item{ID: w.ID, Type: w.Type, Opt: w.Opt}
}

func itemToWire(it items.Item) WireItem {
	return WireItem{ID: it.ID, Type: it.Type, Opt: it.Opt}
}

func vendorFail() []any {
	return []any{vendorFailMessage{Type: msgVendorFail, Code: 0}}
}

// vendorStart acks the dialog open; no validation happens until a
// transaction is attempted.
func (h *Hub) vendorStart(msg ClientMessage) []any {
	return []any{vendorStartMessage{Type: msgVendorStartOK, NPCID: msg.NPCID, VendorID: msg.VendorID}}
}

// vendorTable returns a vendor's sale listings. Mismatched or unknown
// vendors drop the request silently, unlike the transactional flows.
func (h *Hub) vendorTable(msg ClientMessage) []any {
	if msg.VendorID != msg.NPCID {
		return nil
	}
	listings, ok := h.catalog.VendorListings(msg.VendorID)
	if !ok {
		return nil
	}

	resp := vendorTableMessage{Type: msgVendorTableOK}
	for i, listing := range listings {
		if i >= vendorTableLimit {
			break
		}
		resp.Listings = append(resp.Listings, vendorListingMessage{
			Item:     WireItem{ID: listing.ItemID, Type: listing.Type},
			Sort:     listing.Sort,
			VendorID: msg.VendorID,
		})
	}
	return []any{resp}
}

// vendorBuy validates a purchase against the vendor's listings and the item
// price table, then charges the player and fills the first free slot.
func (h *Hub) vendorBuy(plr *playerState, msg ClientMessage) []any {
	if msg.VendorID != msg.NPCID {
		h.log.Warn().Int32("vendor", msg.VendorID).Int32("npc", msg.NPCID).Msg("vendor id mismatch on buy")
		return vendorFail()
	}
	listings, ok := h.catalog.VendorListings(msg.VendorID)
	if !ok {
		h.log.Warn().Int32("vendor", msg.VendorID).Msg("unknown vendor on buy")
		return vendorFail()
	}

	listed := false
	for _, listing := range listings {
		if listing.ItemID == msg.Item.ID && listing.Type == msg.Item.Type {
			listed = true
			break
		}
	}
	if !listed {
		h.log.Warn().Str("player", plr.ID).Int32("item", msg.Item.ID).Msg("player tried to buy an item not on sale")
		return vendorFail()
	}

	info, ok := h.catalog.Item(msg.Item.ID, msg.Item.Type)
	if !ok {
		h.log.Warn().Int32("item", msg.Item.ID).Int32("type", msg.Item.Type).Msg("item missing from price table on buy")
		return vendorFail()
	}

	cost := info.BuyPrice
	if info.StackSize > 1 {
		cost = info.BuyPrice * int(msg.Item.Opt)
	}
	slot := plr.Inventory.FindFreeSlot()
	if cost > plr.Money || slot == -1 {
		return vendorFail()
	}
	// Crate-style items carry no stack size, so only sized stacks are
	// bounded here.
	if info.StackSize != 0 && int(msg.Item.Opt) > info.StackSize {
		return vendorFail()
	}

	if int32(slot) != msg.Slot {
		h.log.Warn().Int32("client", msg.Slot).Int("server", slot).Msg("client and server disagree on bought item slot")
	}

	plr.Money -= cost
	plr.Inventory.Set(slot, wireToItem(msg.Item))

	return []any{vendorBuyMessage{
		Type:  msgVendorBuyOK,
		Money: plr.Money,
		Slot:  slot,
		Item:  msg.Item,
	}}
}

// vendorSell moves part or all of a stack into the buyback list and credits
// the sell price.
func (h *Hub) vendorSell(plr *playerState, msg ClientMessage) []any {
	if msg.Slot < 0 || msg.Slot >= items.SlotCount || msg.Count < 0 {
		h.log.Warn().Str("player", plr.ID).Int32("slot", msg.Slot).Msg("sell slot out of range")
		return vendorFail()
	}

	item, err := plr.Inventory.Get(int(msg.Slot))
	if err != nil {
		return vendorFail()
	}
	info, ok := h.catalog.Item(item.ID, item.Type)
	if !ok || !info.Sellable || item.Opt < msg.Count {
		h.log.Warn().Int32("item", item.ID).Int32("type", item.Type).Msg("item not sellable")
		return vendorFail()
	}
	if item.Opt >= crocPotOptionBits {
		return vendorFail()
	}

	sold := item
	remaining := items.Item{}
	if item.Opt-msg.Count > 0 {
		// Selling part of a stack.
		remaining = item
		remaining.Opt -= msg.Count
		sold.Opt = msg.Count
	}
	plr.Inventory.Set(int(msg.Slot), remaining)
	plr.Money += info.SellPrice * int(msg.Count)
	plr.pushBuyback(sold)

	return []any{vendorSellMessage{
		Type:      msgVendorSellOK,
		Money:     plr.Money,
		Slot:      int(msg.Slot),
		Sold:      itemToWire(sold),
		Remaining: itemToWire(remaining),
	}}
}

// vendorBuyback repurchases a recently sold item at its sell price.
func (h *Hub) vendorBuyback(plr *playerState, msg ClientMessage) []any {
	idx := int(msg.ListID) - 1
	if idx < 0 || idx >= len(plr.buyback) {
		return vendorFail()
	}

	// The client sends the index it clicked but removes the first
	// identical item from its own list, so the server does the same.
	item := plr.buyback[idx]
	plr.removeBuyback(item)

	info, ok := h.catalog.Item(item.ID, item.Type)
	if !ok {
		h.log.Warn().Int32("item", item.ID).Int32("type", item.Type).Msg("item missing from price table on buyback")
		return vendorFail()
	}

	// Buyback charges the sell price, not the buy price.
	cost := info.SellPrice
	if info.StackSize > 1 {
		cost = info.SellPrice * int(item.Opt)
	}
	slot := plr.Inventory.FindFreeSlot()
	if cost > plr.Money || slot == -1 {
		return vendorFail()
	}

	if int32(slot) != msg.Slot {
		h.log.Warn().Int32("client", msg.Slot).Int("server", slot).Msg("client and server disagree on buyback slot")
	}

	plr.Money -= cost
	plr.Inventory.Set(slot, item)

	return []any{vendorBuybackMessage{
		Type:  msgVendorBuybackOK,
		Money: plr.Money,
		Slot:  slot,
		Item:  itemToWire(item),
	}}
}

// vendorBattery tops up the weapon or nano battery. The charge is the delta
// actually applied after the cap, so overfilling never overcharges.
func (h *Hub) vendorBattery(plr *playerState, msg ClientMessage) []any {
	cost := int(msg.Item.Opt) * 100
	atCap := plr.BatteryN >= batteryCap
	if msg.Item.ID == batteryItemW {
		atCap = plr.BatteryW >= batteryCap
	}
	if atCap || plr.Money < cost || msg.Item.Opt < 0 {
		return vendorFail()
	}

	before := plr.BatteryW + plr.BatteryN
	if msg.Item.ID == batteryItemW {
		plr.BatteryW += int(msg.Item.Opt) * 100
	}
	if msg.Item.ID == batteryItemN {
		plr.BatteryN += int(msg.Item.Opt) * 100
	}
	if plr.BatteryW > batteryCap {
		plr.BatteryW = batteryCap
	}
	if plr.BatteryN > batteryCap {
		plr.BatteryN = batteryCap
	}
	plr.Money -= plr.BatteryW + plr.BatteryN - before

	return []any{vendorBatteryMessage{
		Type:     msgVendorBatteryOK,
		Money:    plr.Money,
		BatteryW: plr.BatteryW,
		BatteryN: plr.BatteryN,
	}}
}
