// Package scope implements the scope resolver (spec.md §4.4): what the
// player can currently see or reach, and whether the current location is
// dark.
package scope

import (
	"sort"

	"github.com/nathoo/questcore/engine/state"
	"github.com/nathoo/questcore/types"
)

// Scope is the result of resolving what the player can perceive right now.
type Scope struct {
	Items  map[types.ItemID]struct{}
	IsDark bool
}

// Contains reports whether an item is in scope.
func (s Scope) Contains(id types.ItemID) bool {
	_, ok := s.Items[id]
	return ok
}

// Sorted returns the in-scope item IDs in deterministic order.
func (s Scope) Sorted() []types.ItemID {
	out := make([]types.ItemID, 0, len(s.Items))
	for id := range s.Items {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Resolve computes the current scope (spec.md §4.4):
//
//	start with items whose parent = Player plus items whose parent =
//	Location(player.location). Recursively add children of any container
//	that is open or transparent, and children of any surface. isDark is
//	true iff the current location is not inherentlyLit AND no in-scope item
//	has lightSource ∧ lit ∧ ¬burnedOut. Under darkness, scope is restricted
//	to the player's inventory and any self-lit held items.
func Resolve(s *types.GameState) Scope {
	loc := s.Player.Location
	base := visibleItemsIgnoringDarkness(s, loc)

	dark := computeDarkness(s, loc, base)
	if !dark {
		return Scope{Items: base, IsDark: false}
	}

	// Darkness: scope collapses to inventory plus any self-lit held items
	// (those are already inventory members, so this is just Inventory()).
	restricted := map[types.ItemID]struct{}{}
	for _, id := range state.Inventory(s) {
		restricted[id] = struct{}{}
	}
	return Scope{Items: restricted, IsDark: true}
}

func visibleItemsIgnoringDarkness(s *types.GameState, loc types.LocationID) map[types.ItemID]struct{} {
	items := map[types.ItemID]struct{}{}
	for _, id := range state.Inventory(s) {
		items[id] = struct{}{}
	}
	for _, id := range state.Children(s, types.InLocation(loc)) {
		items[id] = struct{}{}
	}

	// Fixed point: repeatedly add children of open/transparent containers
	// and children of surfaces until no more are added.
	for {
		added := false
		for id := range items {
			if !state.HasFlag(s, id, "container") {
				continue
			}
			if !(state.HasFlag(s, id, "open") || state.HasFlag(s, id, "transparent")) {
				continue
			}
			for _, child := range state.Children(s, types.InItem(id)) {
				if _, ok := items[child]; !ok {
					items[child] = struct{}{}
					added = true
				}
			}
		}
		for id := range items {
			if !state.HasFlag(s, id, "surface") {
				continue
			}
			for _, child := range state.Children(s, types.InItem(id)) {
				if _, ok := items[child]; !ok {
					items[child] = struct{}{}
					added = true
				}
			}
		}
		if !added {
			break
		}
	}
	return items
}

func computeDarkness(s *types.GameState, loc types.LocationID, inScope map[types.ItemID]struct{}) bool {
	if state.LocationHasFlag(s, loc, "inherentlyLit") {
		return false
	}
	for id := range inScope {
		if state.HasFlag(s, id, "lightSource") && state.HasFlag(s, id, "lit") && !state.HasFlag(s, id, "burnedOut") {
			return false
		}
	}
	return true
}

// Takable reports whether an item may be picked up by the player: in
// scope, and neither sacred nor fixed (spec.md §4.4: "Items with sacred or
// fixed still appear for examination but not for take").
func Takable(s *types.GameState, sc Scope, id types.ItemID) bool {
	if !sc.Contains(id) {
		return false
	}
	if state.HasFlag(s, id, "sacred") || state.HasFlag(s, id, "fixed") {
		return false
	}
	return state.HasFlag(s, id, "takable")
}
