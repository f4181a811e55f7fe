package change

import (
	"testing"

	"github.com/nathoo/questcore/engine/state"
	"github.com/nathoo/questcore/types"
)

func testState() *types.GameState {
	bp := &state.Blueprint{
		InitialLocation: "entrance",
		MaximumScore:    10,
		Locations: map[types.LocationID]types.Location{
			"entrance": {ID: "entrance", Exits: map[types.DirectionID]types.Exit{}},
			"hall":     {ID: "hall", Exits: map[types.DirectionID]types.Exit{}},
		},
		Items: map[types.ItemID]types.Item{
			"key": {ID: "key", Attributes: map[types.AttributeID]types.AttributeValue{
				"parent": types.ParentAttr(types.InLocation("entrance")),
			}},
		},
	}
	return state.NewState(bp)
}

func TestApplyMoveItemCommits(t *testing.T) {
	s := testState()
	_, err := Apply(s, []types.StateChange{
		{Kind: types.ChangeMoveItem, MoveItemID: "key", NewParent: types.InPlayer()},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.HasItem(s, "key") {
		t.Fatal("expected key to be held by player")
	}
}

func TestApplyRejectsInvalidBatchAndLeavesStateUnchanged(t *testing.T) {
	s := testState()
	before := state.Parent(s, "key")

	_, err := Apply(s, []types.StateChange{
		// Move key to player, then mark it worn while also moving it away
		// from the player again — violates worn ⇒ held.
		{Kind: types.ChangeMoveItem, MoveItemID: "key", NewParent: types.InPlayer()},
		{Kind: types.ChangeSetAttribute, Target: types.ItemEntity("key"), Attribute: "worn", Value: types.BoolAttr(true)},
		{Kind: types.ChangeMoveItem, MoveItemID: "key", NewParent: types.InLocation("hall")},
		{Kind: types.ChangeSetAttribute, Target: types.ItemEntity("key"), Attribute: "worn", Value: types.BoolAttr(true)},
	})
	if err == nil {
		t.Fatal("expected invariant violation")
	}
	after := state.Parent(s, "key")
	if !before.Equal(after) {
		t.Fatalf("state mutated despite rollback: before=%v after=%v", before, after)
	}
}

func TestApplyAdjustScoreClamps(t *testing.T) {
	s := testState()
	_, err := Apply(s, []types.StateChange{
		{Kind: types.ChangeAdjustScore, Delta: 100},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Player.Score != s.MaxScore {
		t.Fatalf("expected score clamped to max %d, got %d", s.MaxScore, s.Player.Score)
	}
}

func TestApplyIncrementTurn(t *testing.T) {
	s := testState()
	_, err := Apply(s, []types.StateChange{{Kind: types.ChangeIncrementTurn}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Turn != 1 {
		t.Fatalf("expected turn 1, got %d", s.Turn)
	}
}

func TestApplyStartAndCancelFuse(t *testing.T) {
	s := testState()
	Apply(s, []types.StateChange{{Kind: types.ChangeStartFuse, Fuse: "match", Turns: 3}})
	if s.ActiveFuses["match"] != 3 {
		t.Fatalf("expected fuse started with 3 turns")
	}
	Apply(s, []types.StateChange{{Kind: types.ChangeCancelFuse, Fuse: "match"}})
	if _, ok := s.ActiveFuses["match"]; ok {
		t.Fatal("expected fuse cancelled")
	}
}
