package server

// Wire message contracts. Requests share one flat envelope decoded by the
// websocket layer; responses are typed per message so the field set stays
// explicit. Requests that fail their preconditions produce no response at
// all — the client protocol has no error channel for them.

// Client request types.
const (
	MsgRaceStart     = "race_start"
	MsgRingCollect   = "ring_collect"
	MsgRaceCancel    = "race_cancel"
	MsgRaceFinish    = "race_finish"
	MsgVendorStart   = "vendor_start"
	MsgVendorTable   = "vendor_table"
	MsgVendorBuy     = "vendor_buy"
	MsgVendorSell    = "vendor_sell"
	MsgVendorBuyback = "vendor_buyback"
	MsgVendorBattery = "vendor_battery"
)

// WireItem mirrors an inventory stack on the wire.
type WireItem struct {
	ID   int32 `json:"id"`
	Type int32 `json:"type"`
	Opt  int32 `json:"opt"`
}

// ClientMessage is the flat request envelope. Fields are meaningful per
// Type; unused ones stay zero.
type ClientMessage struct {
	Type       string   `json:"type"`
	AgentID    int32    `json:"agentId,omitempty"`
	Mode       int32    `json:"mode,omitempty"`
	TicketSlot int32    `json:"ticketSlot,omitempty"`
	RingID     int32    `json:"ringId,omitempty"`
	VendorID   int32    `json:"vendorId,omitempty"`
	NPCID      int32    `json:"npcId,omitempty"`
	Slot       int32    `json:"slot,omitempty"`
	Count      int32    `json:"count,omitempty"`
	ListID     int32    `json:"listId,omitempty"`
	Item       WireItem `json:"item"`
}

type raceStartMessage struct {
	Type      string `json:"type"`
	LimitTime int    `json:"limitTime"`
}

type ringMessage struct {
	Type      string `json:"type"`
	RingID    int32  `json:"ringId"`
	RingCount int    `json:"ringCount"`
}

type raceCancelMessage struct {
	Type string `json:"type"`
}

type relocateMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	Zone int32   `json:"zone"`
}

type rewardItemMessage struct {
	Slot int      `json:"slot"`
	Item WireItem `json:"item"`
}

type raceFinishMessage struct {
	Type          string             `json:"type"`
	Rank          int                `json:"rank"`
	RingCount     int                `json:"ringCount"`
	Score         int                `json:"score"`
	Time          int64              `json:"time"`
	Mode          int32              `json:"mode"`
	RewardFM      int                `json:"rewardFusionMatter"`
	FusionMatter  int                `json:"fusionMatter"`
	Fatigue       int                `json:"fatigue"`
	FatigueLevel  int                `json:"fatigueLevel"`
	TopRank       int                `json:"topRank"`
	TopRingCount  int                `json:"topRingCount"`
	TopScore      int                `json:"topScore"`
	TopTime       int64              `json:"topTime"`
	Reward        *rewardItemMessage `json:"reward,omitempty"`
}

type vendorStartMessage struct {
	Type     string `json:"type"`
	NPCID    int32  `json:"npcId"`
	VendorID int32  `json:"vendorId"`
}

type vendorListingMessage struct {
	Item     WireItem `json:"item"`
	Sort     int      `json:"sort"`
	VendorID int32    `json:"vendorId"`
}

type vendorTableMessage struct {
	Type     string                 `json:"type"`
	Listings []vendorListingMessage `json:"listings"`
}

type vendorBuyMessage struct {
	Type  string   `json:"type"`
	Money int      `json:"money"`
	Slot  int      `json:"slot"`
	Item  WireItem `json:"item"`
}

type vendorSellMessage struct {
	Type      string   `json:"type"`
	Money     int      `json:"money"`
	Slot      int      `json:"slot"`
	Sold      WireItem `json:"sold"`
	Remaining WireItem `json:"remaining"`
}

type vendorBuybackMessage struct {
	Type  string   `json:"type"`
	Money int      `json:"money"`
	Slot  int      `json:"slot"`
	Item  WireItem `json:"item"`
}

type vendorBatteryMessage struct {
	Type     string `json:"type"`
	Money    int    `json:"money"`
	BatteryW int    `json:"batteryW"`
	BatteryN int    `json:"batteryN"`
}

type vendorFailMessage struct {
	Type string `json:"type"`
	Code int    `json:"code"`
}

// Response type tags.
const (
	msgRaceStartOK     = "race_start_ok"
	msgRingOK          = "ring_ok"
	msgRaceCancelOK    = "race_cancel_ok"
	msgRelocate        = "relocate"
	msgRaceFinishOK    = "race_finish_ok"
	msgVendorStartOK   = "vendor_start_ok"
	msgVendorTableOK   = "vendor_table_ok"
	msgVendorBuyOK     = "vendor_buy_ok"
	msgVendorSellOK    = "vendor_sell_ok"
	msgVendorBuybackOK = "vendor_buyback_ok"
	msgVendorBatteryOK = "vendor_battery_ok"
	msgVendorFail      = "vendor_fail"
)
