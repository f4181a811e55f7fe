package state

import (
	"testing"

	"github.com/nathoo/questcore/types"
)

func testBlueprint() *Blueprint {
	return &Blueprint{
		Title:           "Test Game",
		MaximumScore:    10,
		InitialLocation: "entrance",
		Locations: map[types.LocationID]types.Location{
			"entrance": {
				ID:          "entrance",
				Description: "The entrance.",
				Exits: map[types.DirectionID]types.Exit{
					"north": {Destination: "hall"},
				},
			},
			"hall": {
				ID:          "hall",
				Description: "A grand hall.",
				Exits: map[types.DirectionID]types.Exit{
					"south": {Destination: "entrance"},
				},
			},
		},
		Items: map[types.ItemID]types.Item{
			"rusty_key": {
				ID: "rusty_key",
				Attributes: map[types.AttributeID]types.AttributeValue{
					"name":     types.StringAttr("rusty key"),
					"parent":   types.ParentAttr(types.InLocation("hall")),
					"takable":  types.BoolAttr(true),
				},
			},
			"chest": {
				ID: "chest",
				Attributes: map[types.AttributeID]types.AttributeValue{
					"name":     types.StringAttr("chest"),
					"parent":   types.ParentAttr(types.InLocation("entrance")),
					"container": types.BoolAttr(true),
					"open":      types.BoolAttr(true),
					"capacity":  types.IntAttr(5),
				},
			},
		},
	}
}

func TestNewStatePlacesPlayerAtStart(t *testing.T) {
	s := NewState(testBlueprint())
	if s.Player.Location != "entrance" {
		t.Fatalf("expected player at entrance, got %s", s.Player.Location)
	}
}

func TestItemNameDefaultsToID(t *testing.T) {
	s := NewState(testBlueprint())
	if ItemName(s, "rusty_key") != "rusty key" {
		t.Fatalf("expected name attribute to win, got %q", ItemName(s, "rusty_key"))
	}
	if ItemName(s, "chest") != "chest" {
		t.Fatalf("got %q", ItemName(s, "chest"))
	}
	if ItemName(s, "nonexistent") != "nonexistent" {
		t.Fatalf("expected fallback to raw id")
	}
}

func TestCheckInvariantsForestCycle(t *testing.T) {
	s := NewState(testBlueprint())
	// Introduce a cycle: chest's parent is rusty_key, rusty_key's parent is chest.
	chest := s.Items["chest"]
	chest.Attributes["parent"] = types.ParentAttr(types.InItem("rusty_key"))
	s.Items["chest"] = chest

	key := s.Items["rusty_key"]
	key.Attributes["parent"] = types.ParentAttr(types.InItem("chest"))
	s.Items["rusty_key"] = key

	if err := CheckInvariants(s); err == nil {
		t.Fatal("expected cycle to be detected")
	}
}

func TestCheckInvariantsCapacity(t *testing.T) {
	s := NewState(testBlueprint())
	for i := 0; i < 6; i++ {
		id := types.ItemID("stone")
		it := types.Item{
			ID: id,
			Attributes: map[types.AttributeID]types.AttributeValue{
				"parent": types.ParentAttr(types.InItem("chest")),
				"size":   types.IntAttr(1),
			},
		}
		s.Items[types.ItemID(string(id)+string(rune('0'+i)))] = it
	}
	if err := CheckInvariants(s); err == nil {
		t.Fatal("expected capacity violation (6 stones > capacity 5)")
	}
}

func TestCheckInvariantsWornRequiresHeld(t *testing.T) {
	s := NewState(testBlueprint())
	key := s.Items["rusty_key"]
	key.Attributes["worn"] = types.BoolAttr(true)
	// parent remains Location(hall), not Player — violates worn ⇒ held.
	s.Items["rusty_key"] = key

	if err := CheckInvariants(s); err == nil {
		t.Fatal("expected worn-without-held violation")
	}
}

func TestCheckInvariantsExitIntegrity(t *testing.T) {
	s := NewState(testBlueprint())
	loc := s.Locations["entrance"]
	loc.Exits["west"] = types.Exit{Destination: "nowhere_land"}
	s.Locations["entrance"] = loc

	if err := CheckInvariants(s); err == nil {
		t.Fatal("expected exit integrity violation")
	}
}

func TestInventoryAndHasItem(t *testing.T) {
	s := NewState(testBlueprint())
	key := s.Items["rusty_key"]
	key.Attributes["parent"] = types.ParentAttr(types.InPlayer())
	s.Items["rusty_key"] = key

	if !HasItem(s, "rusty_key") {
		t.Fatal("expected rusty_key to be in inventory")
	}
	inv := Inventory(s)
	if len(inv) != 1 || inv[0] != "rusty_key" {
		t.Fatalf("unexpected inventory: %v", inv)
	}
}
