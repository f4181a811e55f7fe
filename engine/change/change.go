// Package change implements Apply: the sole means of evolving a GameState
// (spec.md §4.3). Every mutation arrives as a types.StateChange value;
// Apply works against a scratch copy of the state and only commits it back
// if the whole batch leaves every invariant in engine/state intact.
package change

import (
	"github.com/nathoo/questcore/engine/state"
	"github.com/nathoo/questcore/types"
)

// Apply applies a batch of changes to *s as a single atomic unit: changes
// are applied in order to a working copy, invariants are checked once
// against the result, and only then is the working copy committed back
// into *s. On invariant violation the batch is entirely rejected and *s is
// left unmodified — this is the "rollback" spec.md §4.3/§8 requires.
func Apply(s *types.GameState, changes []types.StateChange) ([]types.Event, error) {
	working := deepClone(s)
	var events []types.Event

	for _, c := range changes {
		events = append(events, apply(working, c)...)
	}

	if err := state.CheckInvariants(working); err != nil {
		return nil, err
	}

	*s = *working
	return events, nil
}

func apply(s *types.GameState, c types.StateChange) []types.Event {
	switch c.Kind {
	case types.ChangeMoveItem:
		return applyMoveItem(s, c)
	case types.ChangeSetAttribute:
		return applySetAttribute(s, c)
	case types.ChangeClearAttribute:
		return applyClearAttribute(s, c)
	case types.ChangeSetPlayerLocation:
		s.Player.Location = c.Location
		return []types.Event{{Type: "room_entered", Data: map[string]any{"location": c.Location}}}
	case types.ChangeAdjustHealth:
		return applyAdjustHealth(s, c)
	case types.ChangeAdjustScore:
		return applyAdjustScore(s, c)
	case types.ChangeStartFuse:
		s.ActiveFuses[c.Fuse] = c.Turns
		return []types.Event{{Type: "fuse_started", Data: map[string]any{"fuse": c.Fuse, "turns": c.Turns}}}
	case types.ChangeCancelFuse:
		delete(s.ActiveFuses, c.Fuse)
		return []types.Event{{Type: "fuse_cancelled", Data: map[string]any{"fuse": c.Fuse}}}
	case types.ChangeStartDaemon:
		s.ActiveDaemons[c.Daemon] = struct{}{}
		return []types.Event{{Type: "daemon_started", Data: map[string]any{"daemon": c.Daemon}}}
	case types.ChangeStopDaemon:
		delete(s.ActiveDaemons, c.Daemon)
		return []types.Event{{Type: "daemon_stopped", Data: map[string]any{"daemon": c.Daemon}}}
	case types.ChangeSetGlobal:
		s.Globals[c.GlobalKey] = c.Value
		return nil
	case types.ChangeSetPronoun:
		return applySetPronoun(s, c)
	case types.ChangeIncrementTurn:
		s.Turn++
		return nil
	default:
		return nil
	}
}

// applyMoveItem relocates an item. Worn items are silently un-worn when
// they leave the player's possession — callers that want an explicit
// "you take off the X" message should emit their own ClearAttribute first;
// this is just the invariant-preserving default.
func applyMoveItem(s *types.GameState, c types.StateChange) []types.Event {
	it, ok := s.Items[c.MoveItemID]
	if !ok {
		return nil
	}
	if c.NewParent.Kind != types.ParentPlayer {
		if it.Attributes["worn"].IsTruthy() {
			it.Attributes["worn"] = types.BoolAttr(false)
		}
	}
	it.Attributes["parent"] = types.ParentAttr(c.NewParent)
	s.Items[c.MoveItemID] = it
	return []types.Event{{Type: "item_moved", Data: map[string]any{"item": c.MoveItemID, "parent": c.NewParent}}}
}

func applySetAttribute(s *types.GameState, c types.StateChange) []types.Event {
	switch c.Target.Kind {
	case types.EntityItem:
		it, ok := s.Items[c.Target.Item]
		if !ok {
			it = types.Item{ID: c.Target.Item, Attributes: map[types.AttributeID]types.AttributeValue{}}
		}
		if it.Attributes == nil {
			it.Attributes = map[types.AttributeID]types.AttributeValue{}
		}
		it.Attributes[c.Attribute] = c.Value
		s.Items[c.Target.Item] = it
	case types.EntityLocation:
		loc, ok := s.Locations[c.Target.Location]
		if !ok {
			return nil
		}
		if loc.Attributes == nil {
			loc.Attributes = map[types.AttributeID]types.AttributeValue{}
		}
		loc.Attributes[c.Attribute] = c.Value
		s.Locations[c.Target.Location] = loc
	}
	return []types.Event{{Type: "attribute_set", Data: map[string]any{"target": c.Target, "attribute": c.Attribute}}}
}

func applyClearAttribute(s *types.GameState, c types.StateChange) []types.Event {
	switch c.Target.Kind {
	case types.EntityItem:
		it, ok := s.Items[c.Target.Item]
		if !ok {
			return nil
		}
		delete(it.Attributes, c.Attribute)
		s.Items[c.Target.Item] = it
	case types.EntityLocation:
		loc, ok := s.Locations[c.Target.Location]
		if !ok {
			return nil
		}
		delete(loc.Attributes, c.Attribute)
		s.Locations[c.Target.Location] = loc
	}
	return []types.Event{{Type: "attribute_cleared", Data: map[string]any{"target": c.Target, "attribute": c.Attribute}}}
}

func applyAdjustHealth(s *types.GameState, c types.StateChange) []types.Event {
	switch c.Target.Kind {
	case types.EntityPlayer:
		s.Player.Health = clamp(s.Player.Health+c.Delta, c.ClampLo, c.ClampHi)
		return []types.Event{{Type: "health_adjusted", Data: map[string]any{"target": "player", "health": s.Player.Health}}}
	case types.EntityItem:
		it, ok := s.Items[c.Target.Item]
		if !ok {
			return nil
		}
		cur := 0
		if v := it.Attributes["health"]; v.Kind == types.AttrInt {
			cur = v.Int
		}
		next := clamp(cur+c.Delta, c.ClampLo, c.ClampHi)
		if it.Attributes == nil {
			it.Attributes = map[types.AttributeID]types.AttributeValue{}
		}
		it.Attributes["health"] = types.IntAttr(next)
		s.Items[c.Target.Item] = it
		return []types.Event{{Type: "health_adjusted", Data: map[string]any{"target": c.Target.Item, "health": next}}}
	}
	return nil
}

func applyAdjustScore(s *types.GameState, c types.StateChange) []types.Event {
	lo, hi := c.ClampLo, c.ClampHi
	if hi == 0 {
		hi = s.MaxScore
	}
	s.Player.Score = clamp(s.Player.Score+c.Delta, lo, hi)
	return []types.Event{{Type: "score_adjusted", Data: map[string]any{"score": s.Player.Score}}}
}

func applySetPronoun(s *types.GameState, c types.StateChange) []types.Event {
	switch c.Pronoun {
	case types.PronounIt:
		s.Player.LastMentionedItem = c.PronounID
		s.Player.HasLastMentioned = true
	case types.PronounThem:
		s.Player.LastMentionedItems = c.PronounSet
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if hi > 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// deepClone copies a GameState deeply enough that mutating the clone never
// touches the original — the batch-rollback contract in Apply depends on
// this.
func deepClone(s *types.GameState) *types.GameState {
	out := &types.GameState{
		Items:         make(map[types.ItemID]types.Item, len(s.Items)),
		Locations:     make(map[types.LocationID]types.Location, len(s.Locations)),
		Player:        s.Player,
		Globals:       make(map[string]types.AttributeValue, len(s.Globals)),
		ActiveFuses:   make(map[types.FuseID]int, len(s.ActiveFuses)),
		ActiveDaemons: make(map[types.DaemonID]struct{}, len(s.ActiveDaemons)),
		Turn:          s.Turn,
		RNGSeed:       s.RNGSeed,
		RNGPosition:   s.RNGPosition,
		MaxScore:      s.MaxScore,
		Verbose:       s.Verbose,
		Visited:       make(map[types.LocationID]struct{}, len(s.Visited)),
	}
	for id, it := range s.Items {
		attrs := make(map[types.AttributeID]types.AttributeValue, len(it.Attributes))
		for k, v := range it.Attributes {
			attrs[k] = v
		}
		out.Items[id] = types.Item{ID: it.ID, Attributes: attrs}
	}
	for id, loc := range s.Locations {
		exits := make(map[types.DirectionID]types.Exit, len(loc.Exits))
		for d, e := range loc.Exits {
			exits[d] = e
		}
		attrs := make(map[types.AttributeID]types.AttributeValue, len(loc.Attributes))
		for k, v := range loc.Attributes {
			attrs[k] = v
		}
		out.Locations[id] = types.Location{ID: loc.ID, Name: loc.Name, Description: loc.Description, Exits: exits, Attributes: attrs}
	}
	for k, v := range s.Globals {
		out.Globals[k] = v
	}
	for k, v := range s.ActiveFuses {
		out.ActiveFuses[k] = v
	}
	for k := range s.ActiveDaemons {
		out.ActiveDaemons[k] = struct{}{}
	}
	for k := range s.Visited {
		out.Visited[k] = struct{}{}
	}
	if s.Player.LastMentionedItems != nil {
		out.Player.LastMentionedItems = make(map[types.ItemID]struct{}, len(s.Player.LastMentionedItems))
		for k := range s.Player.LastMentionedItems {
			out.Player.LastMentionedItems[k] = struct{}{}
		}
	}
	return out
}
