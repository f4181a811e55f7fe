// Package narrate implements the description and message layer (spec.md §4.6,
// C8): location descriptions (long/short/first-visit), container and
// inventory listings, the dynamic/static/default description handler chain,
// the overridable canned-message catalog (Messenger), and the health-banded
// self-examination table.
package narrate

import (
	"sort"
	"strings"

	"github.com/nathoo/questcore/engine/scope"
	"github.com/nathoo/questcore/engine/state"
	"github.com/nathoo/questcore/types"
)

// Messenger is a fixed catalog of message-producing methods, represented as
// overridable function fields since Go has no method overriding: a blueprint
// that wants "It is pitch black. You are likely to be eaten by a grue."
// replaces the RoomIsDark field wholesale. Every field defaults to a plain,
// game-agnostic string via NewMessenger.
type Messenger struct {
	RoomIsDark        func() string
	NowDark           func() string
	NowLight          func() string
	YouSeeHere        func(items []string) string
	CannotTake        func(item string) string
	ContainerContents func(container string, contents []string) string
	Death             func() string
	NothingSpecial    func(item string) string
	CantGoThatWay     func() string
}

// NewMessenger returns the default catalog.
func NewMessenger() *Messenger {
	return &Messenger{
		RoomIsDark: func() string {
			return "It is pitch dark, and you can't see a thing."
		},
		NowDark: func() string {
			return "It is now pitch dark."
		},
		NowLight: func() string {
			return "The room is lit once more."
		},
		YouSeeHere: func(items []string) string {
			return "You can see " + joinWithAnd(items) + " here."
		},
		CannotTake: func(item string) string {
			return "You can't take the " + item + "."
		},
		ContainerContents: func(container string, contents []string) string {
			if len(contents) == 0 {
				return "The " + container + " is empty."
			}
			return "The " + container + " contains " + joinWithAnd(contents) + "."
		},
		Death: func() string {
			return "You have died."
		},
		NothingSpecial: func(item string) string {
			return "You see nothing special about the " + item + "."
		},
		CantGoThatWay: func() string {
			return "You can't go that way."
		},
	}
}

func joinWithAnd(items []string) string {
	switch len(items) {
	case 0:
		return "nothing"
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

// DescriptionFunc is a dynamic per-item description handler: (entity, state)
// → text.
type DescriptionFunc func(id types.ItemID, s *types.GameState) string

// DescriptionHandlerRegistry resolves an item's examine text using spec.md
// §4.6's rendering order: dynamic handler (if registered) → static
// "description" attribute fallback → Messenger.NothingSpecial default.
type DescriptionHandlerRegistry struct {
	dynamic map[types.ItemID]DescriptionFunc
	msgr    *Messenger
}

func NewDescriptionHandlerRegistry(msgr *Messenger) *DescriptionHandlerRegistry {
	return &DescriptionHandlerRegistry{dynamic: map[types.ItemID]DescriptionFunc{}, msgr: msgr}
}

// Register installs a dynamic handler for an item, by id — the blueprint
// loader's equivalent of a Lua-authored "examine" callback.
func (r *DescriptionHandlerRegistry) Register(id types.ItemID, fn DescriptionFunc) {
	r.dynamic[id] = fn
}

func (r *DescriptionHandlerRegistry) Describe(id types.ItemID, s *types.GameState) string {
	if fn, ok := r.dynamic[id]; ok {
		return fn(id, s)
	}
	if v := state.GetAttr(s, id, "description"); v.Kind == types.AttrString && v.Str != "" {
		return v.Str
	}
	return r.msgr.NothingSpecial(state.ItemName(s, id))
}

// HealthBand is one entry of the self-examination table: Text applies when
// the player's health percentage is >= MinPercent, for the highest such
// band (closed-open intervals — spec.md §4.6).
type HealthBand struct {
	MinPercent int
	Text       string
}

// DefaultHealthBands is the stock table, sorted from healthiest to most
// grievously wounded.
var DefaultHealthBands = []HealthBand{
	{95, "You are in peak condition."},
	{85, "You have a few scrapes and bruises."},
	{75, "You're a bit battered, but still standing strong."},
	{50, "You're hurting, and it shows."},
	{25, "You are badly wounded."},
	{1, "You are at death's door."},
	{0, "You are dead."},
}

// SelfExamine picks the band matching the player's current health
// percentage. maxHealth <= 0 is treated as full health (100%).
func SelfExamine(health, maxHealth int, bands []HealthBand) string {
	pct := 100
	if maxHealth > 0 {
		pct = health * 100 / maxHealth
	}
	sorted := append([]HealthBand(nil), bands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinPercent > sorted[j].MinPercent })
	for _, b := range sorted {
		if pct >= b.MinPercent {
			return b.Text
		}
	}
	return sorted[len(sorted)-1].Text
}

// DescribeLocation renders the current location: name, long or short body
// text, and what's visible on the floor — or just the darkness message when
// the room is dark (spec.md §4.6). forceLong renders the long description
// even on a revisit (the "look" verb's behavior; spec.md §4.5 step 5).
func DescribeLocation(s *types.GameState, sc scope.Scope, msgr *Messenger, forceLong bool) []string {
	loc, ok := s.Locations[s.Player.Location]
	if !ok {
		return nil
	}
	lines := []string{loc.Name}
	if sc.IsDark {
		lines = append(lines, msgr.RoomIsDark())
		return lines
	}

	_, visited := s.Visited[s.Player.Location]
	verbose := s.Verbose || s.Globals["__verbose__"].IsTruthy()
	if forceLong || !visited || verbose {
		lines = append(lines, loc.Description)
	}

	items := floorItems(s, loc.ID)
	if len(items) > 0 {
		lines = append(lines, msgr.YouSeeHere(itemNames(s, items)))
	}
	return lines
}

// floorItems lists a location's directly-placed items, excluding scenery
// (described in the room text itself, not listed separately). Scenery is
// any item with fixed set, per the glossary; scenery is kept as a synonym
// flag for blueprints that prefer to name it explicitly.
func floorItems(s *types.GameState, loc types.LocationID) []types.ItemID {
	var out []types.ItemID
	for _, id := range state.Children(s, types.InLocation(loc)) {
		if state.HasFlag(s, id, "fixed") || state.HasFlag(s, id, "scenery") {
			continue
		}
		out = append(out, id)
	}
	return out
}

func itemNames(s *types.GameState, ids []types.ItemID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = state.ItemName(s, id)
	}
	return names
}
