package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validRaces = `
zones:
  - zone: 33
    raceId: 1
    podFactor: 5
    timeFactor: 10
    scaleFactor: 1
    maxPods: 20
    maxTime: 300
    maxScore: 999
  - zone: 40
    raceId: 0
agents:
  - id: 2803
    zone: 33
    x: 100
    y: 200
  - id: 2804
    zone: 33
`

const validRewards = `
rewards:
  - raceId: 1
    tiers:
      - minScore: 500
        itemId: 101
      - minScore: 300
        itemId: 102
      - minScore: 100
        itemId: 0
`

const validItems = `
items:
  - id: 101
    type: 9
    buyPrice: 100
    sellPrice: 25
    stackSize: 10
    sellable: true
vendors:
  - vendorId: 1301
    listings:
      - itemId: 101
        type: 9
        sort: 0
`

func writeCatalog(t *testing.T, races, rewards, items string) Paths {
	t.Helper()
	dir := t.TempDir()
	paths := Paths{
		Races:   filepath.Join(dir, "races.yaml"),
		Rewards: filepath.Join(dir, "rewards.yaml"),
	}
	if err := os.WriteFile(paths.Races, []byte(races), 0o644); err != nil {
		t.Fatalf("write races: %v", err)
	}
	if err := os.WriteFile(paths.Rewards, []byte(rewards), 0o644); err != nil {
		t.Fatalf("write rewards: %v", err)
	}
	if items != "" {
		paths.Items = filepath.Join(dir, "items.yaml")
		if err := os.WriteFile(paths.Items, []byte(items), 0o644); err != nil {
			t.Fatalf("write items: %v", err)
		}
	}
	return paths
}

func TestLoadResolvesZonesAgentsAndRewards(t *testing.T) {
	c, err := Load(writeCatalog(t, validRaces, validRewards, validItems))
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	cfg, ok := c.ZoneRace(33)
	if !ok {
		t.Fatalf("expected zone 33 to host a race")
	}
	if cfg.RaceID != 1 || cfg.MaxTime != 300 {
		t.Fatalf("unexpected zone config: %+v", cfg)
	}

	if _, ok := c.ZoneRace(40); ok {
		t.Fatalf("raceId 0 must behave as the no-race sentinel")
	}
	if _, ok := c.ZoneRace(99); ok {
		t.Fatalf("unknown zone must not resolve")
	}

	agent, ok := c.Agent(2803)
	if !ok || agent.Zone != 33 {
		t.Fatalf("expected agent 2803 in zone 33, got %+v ok=%v", agent, ok)
	}

	table, ok := c.Rewards(1)
	if !ok {
		t.Fatalf("expected reward table for race 1")
	}
	if len(table.Thresholds) != 3 || len(table.ItemIDs) != 3 {
		t.Fatalf("expected 3 aligned tiers, got %d/%d", len(table.Thresholds), len(table.ItemIDs))
	}
	if table.Thresholds[0] != 500 || table.ItemIDs[1] != 102 {
		t.Fatalf("tiers out of order: %+v", table)
	}

	item, ok := c.Item(101, 9)
	if !ok || item.BuyPrice != 100 {
		t.Fatalf("expected item 101/9 with buy price 100, got %+v ok=%v", item, ok)
	}
	listings, ok := c.VendorListings(1301)
	if !ok || len(listings) != 1 {
		t.Fatalf("expected one listing for vendor 1301")
	}
}

func TestLoadRejectsNonPositiveBounds(t *testing.T) {
	races := strings.Replace(validRaces, "maxPods: 20", "maxPods: 0", 1)
	if _, err := Load(writeCatalog(t, races, validRewards, "")); err == nil {
		t.Fatalf("expected maxPods validation error")
	}

	races = strings.Replace(validRaces, "maxTime: 300", "maxTime: -5", 1)
	if _, err := Load(writeCatalog(t, races, validRewards, "")); err == nil {
		t.Fatalf("expected maxTime validation error")
	}
}

func TestLoadRejectsIncreasingThresholds(t *testing.T) {
	rewards := strings.Replace(validRewards, "minScore: 300", "minScore: 600", 1)
	if _, err := Load(writeCatalog(t, validRaces, rewards, "")); err == nil {
		t.Fatalf("expected threshold ordering error")
	}
}

func TestLoadRejectsMissingRewardTable(t *testing.T) {
	if _, err := Load(writeCatalog(t, validRaces, "rewards: []", "")); err == nil {
		t.Fatalf("expected missing reward table error")
	}
}

func TestLoadRejectsDuplicateZone(t *testing.T) {
	dup := `
zones:
  - zone: 33
    raceId: 1
    podFactor: 1
    timeFactor: 1
    scaleFactor: 0
    maxPods: 1
    maxTime: 1
  - zone: 33
    raceId: 2
    podFactor: 1
    timeFactor: 1
    scaleFactor: 0
    maxPods: 1
    maxTime: 1
`
	rewardsBoth := `
rewards:
  - raceId: 1
    tiers:
      - minScore: 0
        itemId: 0
  - raceId: 2
    tiers:
      - minScore: 0
        itemId: 0
`
	if _, err := Load(writeCatalog(t, dup, rewardsBoth, "")); err == nil {
		t.Fatalf("expected duplicate zone error")
	}
}
