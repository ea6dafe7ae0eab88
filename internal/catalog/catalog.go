// Package catalog loads the designer-authored race, reward, and item tables
// and serves them as immutable lookups. Everything is read once at startup;
// the accessors are safe for concurrent use because nothing mutates after
// Load returns.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ZoneConfig is the resolved race configuration for one zone.
type ZoneConfig struct {
	Zone        int32
	RaceID      int32
	PodFactor   float64
	TimeFactor  float64
	ScaleFactor float64
	MaxPods     int
	MaxTime     int
	MaxScore    int
}

// Agent is a start/finish line NPC resolved to its containing zone.
type Agent struct {
	ID   int32
	Zone int32
	X, Y float64
	Z    float64
}

// RewardTable holds index-aligned thresholds and reward item ids; index 0 is
// the top tier and thresholds never increase.
type RewardTable struct {
	Thresholds []int
	ItemIDs    []int32
}

// ItemInfo is the trade data for one item id/type pair.
type ItemInfo struct {
	ID        int32
	Type      int32
	BuyPrice  int
	SellPrice int
	StackSize int
	Sellable  bool
}

// VendorListing is one entry on a vendor's sale table.
type VendorListing struct {
	ItemID int32
	Type   int32
	Sort   int
}

type itemKey struct {
	id  int32
	typ int32
}

// Paths names the YAML files a catalog is assembled from.
type Paths struct {
	Races   string
	Rewards string
	Items   string
}

// Catalog is the read-only lookup table handed to the hub at construction.
type Catalog struct {
	zones   map[int32]ZoneConfig
	agents  map[int32]Agent
	rewards map[int32]RewardTable
	items   map[itemKey]ItemInfo
	vendors map[int32][]VendorListing
}

// Load reads and validates the catalog files. All referenced files must
// exist; an empty items path is allowed for deployments without vendors.
func Load(paths Paths) (*Catalog, error) {
	c := &Catalog{
		zones:   make(map[int32]ZoneConfig),
		agents:  make(map[int32]Agent),
		rewards: make(map[int32]RewardTable),
		items:   make(map[itemKey]ItemInfo),
		vendors: make(map[int32][]VendorListing),
	}

	var races RacesFile
	if err := readYAML(paths.Races, &races); err != nil {
		return nil, fmt.Errorf("load races: %w", err)
	}
	for _, doc := range races.Zones {
		if _, dup := c.zones[doc.Zone]; dup {
			return nil, fmt.Errorf("zone %d configured twice", doc.Zone)
		}
		if doc.RaceID != 0 {
			if doc.MaxPods <= 0 {
				return nil, fmt.Errorf("zone %d: maxPods must be positive, got %d", doc.Zone, doc.MaxPods)
			}
			if doc.MaxTime <= 0 {
				return nil, fmt.Errorf("zone %d: maxTime must be positive, got %d", doc.Zone, doc.MaxTime)
			}
		}
		c.zones[doc.Zone] = ZoneConfig{
			Zone:        doc.Zone,
			RaceID:      doc.RaceID,
			PodFactor:   doc.PodFactor,
			TimeFactor:  doc.TimeFactor,
			ScaleFactor: doc.ScaleFactor,
			MaxPods:     doc.MaxPods,
			MaxTime:     doc.MaxTime,
			MaxScore:    doc.MaxScore,
		}
	}
	for _, doc := range races.Agents {
		if _, dup := c.agents[doc.ID]; dup {
			return nil, fmt.Errorf("agent %d configured twice", doc.ID)
		}
		c.agents[doc.ID] = Agent{ID: doc.ID, Zone: doc.Zone, X: doc.X, Y: doc.Y, Z: doc.Z}
	}

	var rewards RewardsFile
	if err := readYAML(paths.Rewards, &rewards); err != nil {
		return nil, fmt.Errorf("load rewards: %w", err)
	}
	for _, doc := range rewards.Rewards {
		table, err := buildRewardTable(doc)
		if err != nil {
			return nil, err
		}
		c.rewards[doc.RaceID] = table
	}

	for zone, cfg := range c.zones {
		if cfg.RaceID == 0 {
			continue
		}
		if _, ok := c.rewards[cfg.RaceID]; !ok {
			return nil, fmt.Errorf("zone %d references race %d with no reward table", zone, cfg.RaceID)
		}
	}

	if paths.Items != "" {
		var items ItemsFile
		if err := readYAML(paths.Items, &items); err != nil {
			return nil, fmt.Errorf("load items: %w", err)
		}
		for _, doc := range items.Items {
			c.items[itemKey{doc.ID, doc.Type}] = ItemInfo{
				ID:        doc.ID,
				Type:      doc.Type,
				BuyPrice:  doc.BuyPrice,
				SellPrice: doc.SellPrice,
				StackSize: doc.StackSize,
				Sellable:  doc.Sellable,
			}
		}
		for _, doc := range items.Vendors {
			listings := make([]VendorListing, 0, len(doc.Listings))
			for _, l := range doc.Listings {
				listings = append(listings, VendorListing{ItemID: l.ItemID, Type: l.Type, Sort: l.Sort})
			}
			c.vendors[doc.VendorID] = listings
		}
	}

	return c, nil
}

func buildRewardTable(doc RewardDocument) (RewardTable, error) {
	if len(doc.Tiers) == 0 {
		return RewardTable{}, fmt.Errorf("race %d: reward table has no tiers", doc.RaceID)
	}
	table := RewardTable{
		Thresholds: make([]int, 0, len(doc.Tiers)),
		ItemIDs:    make([]int32, 0, len(doc.Tiers)),
	}
	prev := doc.Tiers[0].MinScore
	for i, tier := range doc.Tiers {
		if tier.MinScore > prev {
			return RewardTable{}, fmt.Errorf("race %d: tier %d threshold %d exceeds tier %d", doc.RaceID, i, tier.MinScore, i-1)
		}
		prev = tier.MinScore
		table.Thresholds = append(table.Thresholds, tier.MinScore)
		table.ItemIDs = append(table.ItemIDs, tier.ItemID)
	}
	return table, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ZoneRace resolves a zone to its race config. The bool is false both for
// unknown zones and for zones whose raceId is the 0 sentinel.
func (c *Catalog) ZoneRace(zone int32) (ZoneConfig, bool) {
	cfg, ok := c.zones[zone]
	if !ok || cfg.RaceID == 0 {
		return ZoneConfig{}, false
	}
	return cfg, true
}

// Agent resolves an agent NPC by id.
func (c *Catalog) Agent(id int32) (Agent, bool) {
	a, ok := c.agents[id]
	return a, ok
}

// Rewards returns the reward table for a race.
func (c *Catalog) Rewards(raceID int32) (RewardTable, bool) {
	t, ok := c.rewards[raceID]
	return t, ok
}

// Item returns the trade data for an item id/type pair.
func (c *Catalog) Item(id, typ int32) (ItemInfo, bool) {
	info, ok := c.items[itemKey{id, typ}]
	return info, ok
}

// VendorListings returns the sale table for a vendor, or false if the vendor
// is unknown.
func (c *Catalog) VendorListings(vendorID int32) ([]VendorListing, bool) {
	listings, ok := c.vendors[vendorID]
	return listings, ok
}
