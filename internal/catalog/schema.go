package catalog

// The document types model the designer-authored YAML files under config/.
// They are exported so the schema generator in cmd/schema can reflect over
// them and produce a machine-readable contract for validation and editor
// tooling.

// ZoneDocument declares the race parameters for one instanced zone. A raceId
// of 0 means the zone hosts no race and requests against it are ignored.
type ZoneDocument struct {
	Zone        int32   `yaml:"zone" json:"zone" jsonschema:"title=Zone number,description=Instanced zone this config applies to"`
	RaceID      int32   `yaml:"raceId" json:"raceId" jsonschema:"title=Race id,description=Race identifier; 0 marks a zone with no race"`
	PodFactor   float64 `yaml:"podFactor" json:"podFactor" jsonschema:"description=Weight of collected pods in the score exponent"`
	TimeFactor  float64 `yaml:"timeFactor" json:"timeFactor" jsonschema:"description=Weight of elapsed time in the score exponent"`
	ScaleFactor float64 `yaml:"scaleFactor" json:"scaleFactor" jsonschema:"description=Constant offset in the score exponent"`
	MaxPods     int     `yaml:"maxPods" json:"maxPods" jsonschema:"description=Pod count normalization bound; must be positive"`
	MaxTime     int     `yaml:"maxTime" json:"maxTime" jsonschema:"description=Time limit in seconds; must be positive"`
	MaxScore    int     `yaml:"maxScore" json:"maxScore" jsonschema:"description=Score cap applied when capping is enabled"`
}

// AgentDocument places a race agent NPC in a zone. Agents mark the start and
// finish lines; requests resolve them to their containing zone.
type AgentDocument struct {
	ID   int32   `yaml:"id" json:"id" jsonschema:"title=Agent id"`
	Zone int32   `yaml:"zone" json:"zone" jsonschema:"description=Zone the agent stands in"`
	X    float64 `yaml:"x" json:"x"`
	Y    float64 `yaml:"y" json:"y"`
	Z    float64 `yaml:"z" json:"z"`
}

// RewardTierDocument pairs a score threshold with the item granted at that
// tier. Tiers are authored best-first and thresholds must never increase.
type RewardTierDocument struct {
	MinScore int   `yaml:"minScore" json:"minScore" jsonschema:"description=Lowest score that still reaches this tier"`
	ItemID   int32 `yaml:"itemId" json:"itemId" jsonschema:"description=Reward item id; 0 grants nothing"`
}

// RewardDocument is the reward table for one race.
type RewardDocument struct {
	RaceID int32                `yaml:"raceId" json:"raceId"`
	Tiers  []RewardTierDocument `yaml:"tiers" json:"tiers" jsonschema:"minItems=1"`
}

// ItemDocument carries the trade data the vendor flows consult.
type ItemDocument struct {
	ID        int32 `yaml:"id" json:"id"`
	Type      int32 `yaml:"type" json:"type"`
	BuyPrice  int   `yaml:"buyPrice" json:"buyPrice"`
	SellPrice int   `yaml:"sellPrice" json:"sellPrice"`
	StackSize int   `yaml:"stackSize" json:"stackSize" jsonschema:"description=0 for unstackable crate-style items"`
	Sellable  bool  `yaml:"sellable" json:"sellable"`
}

// VendorListingDocument is one sale slot on a vendor's table.
type VendorListingDocument struct {
	ItemID int32 `yaml:"itemId" json:"itemId"`
	Type   int32 `yaml:"type" json:"type"`
	Sort   int   `yaml:"sort" json:"sort"`
}

// VendorDocument binds a vendor NPC to its listings.
type VendorDocument struct {
	VendorID int32                   `yaml:"vendorId" json:"vendorId"`
	Listings []VendorListingDocument `yaml:"listings" json:"listings"`
}

// RacesFile is the root of config/races.yaml.
type RacesFile struct {
	Zones  []ZoneDocument  `yaml:"zones" json:"zones"`
	Agents []AgentDocument `yaml:"agents" json:"agents"`
}

// RewardsFile is the root of config/rewards.yaml.
type RewardsFile struct {
	Rewards []RewardDocument `yaml:"rewards" json:"rewards"`
}

// ItemsFile is the root of config/items.yaml.
type ItemsFile struct {
	Items   []ItemDocument   `yaml:"items" json:"items"`
	Vendors []VendorDocument `yaml:"vendors" json:"vendors"`
}
