// Package state owns GameState construction, attribute/containment
// accessors, and the invariant checks that change.Apply enforces after
// every batch (spec.md §3, §8).
package state

import (
	"fmt"
	"sort"

	"github.com/nathoo/questcore/types"
)

// Blueprint is the immutable game definition a GameState is built from —
// the compiled form of a loaded blueprint (the loader discards the Lua VM
// once this is produced, mirroring the teacher's Defs/loader split).
type Blueprint struct {
	Title           string
	AbbrevTitle     string
	Introduction    string
	Release         string
	MaximumScore    int
	InitialPlayer   types.Player
	InitialLocation types.LocationID
	Items           map[types.ItemID]types.Item
	Locations       map[types.LocationID]types.Location
	RNGSeed         int64
}

// NewState creates a fresh GameState from a blueprint.
func NewState(bp *Blueprint) *types.GameState {
	items := make(map[types.ItemID]types.Item, len(bp.Items))
	for id, it := range bp.Items {
		items[id] = cloneItem(it)
	}
	locs := make(map[types.LocationID]types.Location, len(bp.Locations))
	for id, loc := range bp.Locations {
		locs[id] = loc
	}
	player := bp.InitialPlayer
	if player.Location == "" {
		player.Location = bp.InitialLocation
	}
	if player.LastMentionedItems == nil {
		player.LastMentionedItems = map[types.ItemID]struct{}{}
	}
	return &types.GameState{
		Items:         items,
		Locations:     locs,
		Player:        player,
		Globals:       map[string]types.AttributeValue{},
		ActiveFuses:   map[types.FuseID]int{},
		ActiveDaemons: map[types.DaemonID]struct{}{},
		Turn:          0,
		RNGSeed:       bp.RNGSeed,
		MaxScore:      bp.MaximumScore,
		Visited:       map[types.LocationID]struct{}{},
	}
}

func cloneItem(it types.Item) types.Item {
	attrs := make(map[types.AttributeID]types.AttributeValue, len(it.Attributes))
	for k, v := range it.Attributes {
		attrs[k] = v
	}
	return types.Item{ID: it.ID, Attributes: attrs}
}

// GetAttr returns an item's attribute value, or the zero (AttrNone) value
// if absent.
func GetAttr(s *types.GameState, id types.ItemID, attr types.AttributeID) types.AttributeValue {
	item, ok := s.Items[id]
	if !ok {
		return types.AttributeValue{}
	}
	return item.Attributes[attr]
}

// HasFlag reports whether an item's boolean/presence attribute is truthy.
func HasFlag(s *types.GameState, id types.ItemID, attr types.AttributeID) bool {
	return GetAttr(s, id, attr).IsTruthy()
}

// LocationAttr returns a location's attribute value, or zero if absent.
func LocationAttr(s *types.GameState, id types.LocationID, attr types.AttributeID) types.AttributeValue {
	loc, ok := s.Locations[id]
	if !ok {
		return types.AttributeValue{}
	}
	return loc.Attributes[attr]
}

func LocationHasFlag(s *types.GameState, id types.LocationID, attr types.AttributeID) bool {
	return LocationAttr(s, id, attr).IsTruthy()
}

// ItemName returns the display name of an item: the "name" attribute, or
// the item's own ID if unset (spec.md §3: name defaults to = id).
func ItemName(s *types.GameState, id types.ItemID) string {
	v := GetAttr(s, id, "name")
	if v.Kind == types.AttrString && v.Str != "" {
		return v.Str
	}
	return string(id)
}

// Parent returns an item's current ParentRef (defaulting to Nowhere).
func Parent(s *types.GameState, id types.ItemID) types.ParentRef {
	v := GetAttr(s, id, "parent")
	if v.Kind == types.AttrParent {
		return v.Parent
	}
	return types.Nowhere()
}

// Children returns the IDs of items whose parent is the given ParentRef, in
// deterministic (sorted by ID) order.
func Children(s *types.GameState, parent types.ParentRef) []types.ItemID {
	var out []types.ItemID
	for id := range s.Items {
		if Parent(s, id).Equal(parent) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Inventory returns the player's carried items (parent = Player).
func Inventory(s *types.GameState) []types.ItemID {
	return Children(s, types.InPlayer())
}

// HasItem reports whether the player is carrying the given item.
func HasItem(s *types.GameState, id types.ItemID) bool {
	return Parent(s, id).Kind == types.ParentPlayer
}

// DefaultCapacity is the "large finite" capacity an item has when it
// declares no explicit capacity attribute (spec.md §3).
const DefaultCapacity = 1 << 30

// Capacity returns an item's declared capacity, or DefaultCapacity when unset.
func Capacity(s *types.GameState, id types.ItemID) int {
	v := GetAttr(s, id, "capacity")
	if v.Kind == types.AttrInt {
		return v.Int
	}
	return DefaultCapacity
}

// Size returns an item's declared size, defaulting to 1.
func Size(s *types.GameState, id types.ItemID) int {
	v := GetAttr(s, id, "size")
	if v.Kind == types.AttrInt {
		return v.Int
	}
	return 1
}

// ---- Invariant checks (spec.md §3, §8) ----

// ErrInvariantViolation is returned by CheckInvariants when a batch of
// changes would leave the state inconsistent. change.Apply rolls the whole
// batch back on this error and never commits a partially-applied state.
type ErrInvariantViolation struct {
	Reason string
}

func (e *ErrInvariantViolation) Error() string {
	return fmt.Sprintf("invariant violated: %s", e.Reason)
}

// CheckInvariants validates every invariant in spec.md §3 against the given
// state. It is called once after a whole change batch has been applied, not
// after each individual change.
func CheckInvariants(s *types.GameState) error {
	if err := checkForest(s); err != nil {
		return err
	}
	if err := checkCapacity(s); err != nil {
		return err
	}
	if err := checkWornHeld(s); err != nil {
		return err
	}
	if err := checkExitIntegrity(s); err != nil {
		return err
	}
	if err := checkScoreHealthTurn(s); err != nil {
		return err
	}
	if err := checkPronounTargets(s); err != nil {
		return err
	}
	return nil
}

// checkForest verifies the item containment graph is a forest: no cycles,
// and every Item(x) parent resolves to a known item.
func checkForest(s *types.GameState) error {
	for id := range s.Items {
		visited := map[types.ItemID]struct{}{id: {}}
		cur := Parent(s, id)
		for cur.Kind == types.ParentItem {
			if _, seen := visited[cur.Item]; seen {
				return &ErrInvariantViolation{Reason: fmt.Sprintf("cycle in containment graph at %s", id)}
			}
			if _, ok := s.Items[cur.Item]; !ok {
				return &ErrInvariantViolation{Reason: fmt.Sprintf("item %s has unknown parent item %s", id, cur.Item)}
			}
			visited[cur.Item] = struct{}{}
			cur = Parent(s, cur.Item)
		}
	}
	return nil
}

func checkCapacity(s *types.GameState) error {
	sums := map[types.ItemID]int{}
	for id := range s.Items {
		p := Parent(s, id)
		if p.Kind == types.ParentItem {
			sums[p.Item] += Size(s, id)
		}
	}
	for parent, total := range sums {
		c := Capacity(s, parent)
		if c < DefaultCapacity && total > c {
			return &ErrInvariantViolation{Reason: fmt.Sprintf("capacity exceeded for %s: %d > %d", parent, total, c)}
		}
	}
	return nil
}

func checkWornHeld(s *types.GameState) error {
	for id := range s.Items {
		if HasFlag(s, id, "worn") && Parent(s, id).Kind != types.ParentPlayer {
			return &ErrInvariantViolation{Reason: fmt.Sprintf("worn item %s is not held by the player", id)}
		}
	}
	return nil
}

func checkExitIntegrity(s *types.GameState) error {
	for id, loc := range s.Locations {
		for dir, exit := range loc.Exits {
			if _, ok := s.Locations[exit.Destination]; !ok {
				return &ErrInvariantViolation{Reason: fmt.Sprintf("location %s exit %s points to unknown location %s", id, dir, exit.Destination)}
			}
		}
	}
	return nil
}

func checkScoreHealthTurn(s *types.GameState) error {
	if s.Player.Score < 0 || (s.MaxScore > 0 && s.Player.Score > s.MaxScore) {
		return &ErrInvariantViolation{Reason: "score out of range"}
	}
	if s.Player.Health < 0 || (s.Player.MaxHealth > 0 && s.Player.Health > s.Player.MaxHealth) {
		return &ErrInvariantViolation{Reason: "health out of range"}
	}
	if s.Turn < 0 {
		return &ErrInvariantViolation{Reason: "turn counter went negative"}
	}
	return nil
}

func checkPronounTargets(s *types.GameState) error {
	if s.Player.HasLastMentioned {
		if _, ok := s.Items[s.Player.LastMentionedItem]; !ok {
			return &ErrInvariantViolation{Reason: fmt.Sprintf("pronoun target %s does not exist", s.Player.LastMentionedItem)}
		}
	}
	for id := range s.Player.LastMentionedItems {
		if _, ok := s.Items[id]; !ok {
			return &ErrInvariantViolation{Reason: fmt.Sprintf("pronoun plural target %s does not exist", id)}
		}
	}
	return nil
}
