package pipeline

import (
	"fmt"

	"github.com/nathoo/questcore/engine/state"
	"github.com/nathoo/questcore/types"
)

// installBuiltinVerbs registers the standard verb set (spec.md §4.5): the
// actions every game gets for free unless a blueprint overrides them with
// its own location/item handler earlier in the chain.
func installBuiltinVerbs(r *Registry) {
	r.RegisterVerb("look", verbLook)
	r.RegisterVerb("examine", verbExamine)
	r.RegisterVerb("take", verbTake)
	r.RegisterVerb("drop", verbDrop)
	r.RegisterVerb("put", verbPut)
	r.RegisterVerb("open", verbOpen)
	r.RegisterVerb("close", verbClose)
	r.RegisterVerb("wear", verbWear)
	r.RegisterVerb("remove", verbRemove)
	r.RegisterVerb("go", verbGo)
	r.RegisterVerb("inventory", verbInventory)
	r.RegisterVerb("save", verbMeta("save"))
	r.RegisterVerb("restore", verbMeta("restore"))
	r.RegisterVerb("restart", verbMeta("restart"))
	r.RegisterVerb("quit", verbMeta("quit"))
	r.RegisterVerb("score", verbScore)
	r.RegisterVerb("verbose", verbSetVerbose(true))
	r.RegisterVerb("brief", verbSetVerbose(false))
	r.RegisterVerb("wait", verbWait)
}

func verbLook(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
	return Handled, nil, nil // narrate.DescribeLocation renders the room; dispatch just marks the turn handled.
}

func verbExamine(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
	if !cmd.HasDirect {
		return Veto, nil, []string{"Examine what?"}
	}
	id := cmd.DirectObject
	changes := []types.StateChange{
		{Kind: types.ChangeSetAttribute, Target: types.ItemEntity(id), Attribute: "touched", Value: types.BoolAttr(true)},
	}
	desc := state.GetAttr(s, id, "description")
	if desc.Kind == types.AttrString && desc.Str != "" {
		return Handled, changes, []string{desc.Str}
	}
	return Handled, changes, []string{fmt.Sprintf("You see nothing special about the %s.", state.ItemName(s, id))}
}

func verbTake(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
	if !cmd.HasDirect {
		return Veto, nil, []string{"Take what?"}
	}
	id := cmd.DirectObject
	if state.Parent(s, id).Kind == types.ParentPlayer {
		return Veto, nil, []string{fmt.Sprintf("You already have the %s.", state.ItemName(s, id))}
	}
	if !state.HasFlag(s, id, "takable") {
		return Veto, nil, []string{fmt.Sprintf("You can't take the %s.", state.ItemName(s, id))}
	}
	return Handled, []types.StateChange{
		{Kind: types.ChangeMoveItem, MoveItemID: id, NewParent: types.InPlayer()},
	}, []string{"Taken."}
}

func verbDrop(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
	if !cmd.HasDirect {
		return Veto, nil, []string{"Drop what?"}
	}
	id := cmd.DirectObject
	if state.Parent(s, id).Kind != types.ParentPlayer {
		return Veto, nil, []string{fmt.Sprintf("You aren't holding the %s.", state.ItemName(s, id))}
	}
	return Handled, []types.StateChange{
		{Kind: types.ChangeMoveItem, MoveItemID: id, NewParent: types.InLocation(s.Player.Location)},
	}, []string{"Dropped."}
}

func verbPut(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
	if !cmd.HasDirect || !cmd.HasIndirect {
		return Veto, nil, []string{"Put what where?"}
	}
	item, container := cmd.DirectObject, cmd.IndirectObject
	if state.Parent(s, item).Kind != types.ParentPlayer {
		return Veto, nil, []string{fmt.Sprintf("You aren't holding the %s.", state.ItemName(s, item))}
	}
	if !state.HasFlag(s, container, "container") && !state.HasFlag(s, container, "surface") {
		return Veto, nil, []string{fmt.Sprintf("You can't put things %s the %s.", cmd.Preposition, state.ItemName(s, container))}
	}
	if state.HasFlag(s, container, "container") && !state.HasFlag(s, container, "open") {
		return Veto, nil, []string{fmt.Sprintf("The %s is closed.", state.ItemName(s, container))}
	}
	existing := 0
	for _, child := range state.Children(s, types.InItem(container)) {
		existing += state.Size(s, child)
	}
	if cap := state.Capacity(s, container); cap != state.DefaultCapacity && existing+state.Size(s, item) > cap {
		return Veto, nil, []string{"There isn't enough room."}
	}
	return Handled, []types.StateChange{
		{Kind: types.ChangeMoveItem, MoveItemID: item, NewParent: types.InItem(container)},
	}, []string{fmt.Sprintf("You put the %s %s the %s.", state.ItemName(s, item), cmd.Preposition, state.ItemName(s, container))}
}

func verbOpen(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
	if !cmd.HasDirect {
		return Veto, nil, []string{"Open what?"}
	}
	id := cmd.DirectObject
	if !state.HasFlag(s, id, "openable") && !state.HasFlag(s, id, "container") {
		return Veto, nil, []string{fmt.Sprintf("You can't open the %s.", state.ItemName(s, id))}
	}
	if lockedBy := state.GetAttr(s, id, "lockedBy"); lockedBy.Kind == types.AttrString && lockedBy.Str != "" {
		if !state.HasItem(s, types.ItemID(lockedBy.Str)) {
			return Veto, nil, []string{fmt.Sprintf("The %s is locked.", state.ItemName(s, id))}
		}
	}
	if state.HasFlag(s, id, "open") {
		return Veto, nil, []string{fmt.Sprintf("The %s is already open.", state.ItemName(s, id))}
	}
	return Handled, []types.StateChange{
		{Kind: types.ChangeSetAttribute, Target: types.ItemEntity(id), Attribute: "open", Value: types.BoolAttr(true)},
	}, []string{fmt.Sprintf("You open the %s.", state.ItemName(s, id))}
}

func verbClose(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
	if !cmd.HasDirect {
		return Veto, nil, []string{"Close what?"}
	}
	id := cmd.DirectObject
	if !state.HasFlag(s, id, "open") {
		return Veto, nil, []string{fmt.Sprintf("The %s is already closed.", state.ItemName(s, id))}
	}
	return Handled, []types.StateChange{
		{Kind: types.ChangeClearAttribute, Target: types.ItemEntity(id), Attribute: "open"},
	}, []string{fmt.Sprintf("You close the %s.", state.ItemName(s, id))}
}

func verbWear(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
	if !cmd.HasDirect {
		return Veto, nil, []string{"Wear what?"}
	}
	id := cmd.DirectObject
	if state.Parent(s, id).Kind != types.ParentPlayer {
		return Veto, nil, []string{fmt.Sprintf("You aren't holding the %s.", state.ItemName(s, id))}
	}
	if !state.HasFlag(s, id, "wearable") {
		return Veto, nil, []string{fmt.Sprintf("You can't wear the %s.", state.ItemName(s, id))}
	}
	if state.HasFlag(s, id, "worn") {
		return Veto, nil, []string{fmt.Sprintf("You're already wearing the %s.", state.ItemName(s, id))}
	}
	return Handled, []types.StateChange{
		{Kind: types.ChangeSetAttribute, Target: types.ItemEntity(id), Attribute: "worn", Value: types.BoolAttr(true)},
	}, []string{fmt.Sprintf("You put on the %s.", state.ItemName(s, id))}
}

func verbRemove(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
	if !cmd.HasDirect {
		return Veto, nil, []string{"Remove what?"}
	}
	id := cmd.DirectObject
	if !state.HasFlag(s, id, "worn") {
		return Veto, nil, []string{fmt.Sprintf("You aren't wearing the %s.", state.ItemName(s, id))}
	}
	return Handled, []types.StateChange{
		{Kind: types.ChangeClearAttribute, Target: types.ItemEntity(id), Attribute: "worn"},
	}, []string{fmt.Sprintf("You take off the %s.", state.ItemName(s, id))}
}

func verbGo(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
	if !cmd.HasDirection {
		return Veto, nil, []string{"Go where?"}
	}
	loc, ok := s.Locations[s.Player.Location]
	if !ok {
		return Veto, nil, []string{"You can't go that way."}
	}
	exit, ok := loc.Exits[cmd.Direction]
	if !ok {
		return Veto, nil, []string{"You can't go that way."}
	}
	if exit.HasRequiredKey && !state.HasItem(s, exit.RequiredKey) {
		msg := exit.BlockedMessage
		if msg == "" {
			msg = "Something's blocking the way."
		}
		return Veto, nil, []string{msg}
	}
	return Handled, []types.StateChange{
		{Kind: types.ChangeSetPlayerLocation, Location: exit.Destination},
	}, nil
}

func verbInventory(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
	held := state.Inventory(s)
	if len(held) == 0 {
		return Handled, nil, []string{"You are carrying nothing."}
	}
	lines := []string{"You are carrying:"}
	for _, id := range held {
		name := state.ItemName(s, id)
		if state.HasFlag(s, id, "worn") {
			name += " (worn)"
		}
		lines = append(lines, "  "+name)
	}
	return Handled, nil, lines
}

// verbMeta produces a "__meta__:<kind>" output line for the engine loop to
// act on (save,
// restore, restart, quit) — these require access to fsio/ioface, which the
// pipeline package deliberately does not import.
func verbMeta(kind string) HandlerFunc {
	return func(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
		return Handled, nil, []string{"__meta__:" + kind}
	}
}

func verbScore(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
	return Handled, nil, []string{fmt.Sprintf("Your score is %d (in %d turns).", s.Player.Score, s.Turn)}
}

func verbSetVerbose(verbose bool) HandlerFunc {
	return func(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
		msg := "Brief descriptions now."
		if verbose {
			msg = "Verbose descriptions now."
		}
		return Handled, []types.StateChange{
			{Kind: types.ChangeSetGlobal, GlobalKey: "__verbose__", Value: types.BoolAttr(verbose)},
		}, []string{msg}
	}
}

func verbWait(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string) {
	return Handled, nil, []string{"Time passes."}
}
