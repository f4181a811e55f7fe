// Package types defines the shared data structures for the Gnusto engine.
// This package contains only type definitions — no logic, no methods beyond
// trivial constructors and predicates on the identifier/attribute types.
package types

import "sort"

// ItemID, LocationID, VerbID, DirectionID, AttributeID, FuseID, DaemonID,
// and HandlerID are opaque wrappers over a lowercase string token. Equality
// and ordering are structural (plain string comparison).
type (
	ItemID      string
	LocationID  string
	VerbID      string
	DirectionID string
	AttributeID string
	FuseID      string
	DaemonID    string
	HandlerID   string
)

// AttrKind tags the variant held by an AttributeValue.
type AttrKind int

const (
	AttrNone AttrKind = iota
	AttrString
	AttrInt
	AttrBool
	AttrStringSet
	AttrIDList
	AttrParent
	AttrMap
)

// AttributeValue is a tagged sum over string, int, bool, set<string>,
// list<ItemID>, ParentRef, and a nested map. A zero AttributeValue (AttrNone)
// and AttrBool(false) are treated as equivalent for flag semantics — see
// IsTruthy.
type AttributeValue struct {
	Kind     AttrKind
	Str      string
	Int      int
	Bool     bool
	StrSet   map[string]struct{}
	IDList   []ItemID
	Parent   ParentRef
	MapValue map[string]AttributeValue
}

func StringAttr(s string) AttributeValue { return AttributeValue{Kind: AttrString, Str: s} }
func IntAttr(n int) AttributeValue       { return AttributeValue{Kind: AttrInt, Int: n} }
func BoolAttr(b bool) AttributeValue     { return AttributeValue{Kind: AttrBool, Bool: b} }

func IDListAttr(ids []ItemID) AttributeValue {
	return AttributeValue{Kind: AttrIDList, IDList: ids}
}

func ParentAttr(p ParentRef) AttributeValue { return AttributeValue{Kind: AttrParent, Parent: p} }

func StringSetAttr(words ...string) AttributeValue {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return AttributeValue{Kind: AttrStringSet, StrSet: set}
}

func MapAttr(m map[string]AttributeValue) AttributeValue {
	return AttributeValue{Kind: AttrMap, MapValue: m}
}

// IsTruthy implements flag semantics: absent and AttrBool(false) are both
// falsy; any other populated value is truthy.
func (v AttributeValue) IsTruthy() bool {
	switch v.Kind {
	case AttrNone:
		return false
	case AttrBool:
		return v.Bool
	default:
		return true
	}
}

// SortedStrings returns the members of a string-set attribute in
// deterministic (sorted) order.
func (v AttributeValue) SortedStrings() []string {
	out := make([]string, 0, len(v.StrSet))
	for w := range v.StrSet {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// ParentKind discriminates the ParentRef sum type.
type ParentKind int

const (
	ParentNowhere ParentKind = iota
	ParentPlayer
	ParentLocation
	ParentItem
)

// ParentRef encodes every containment placement an entity can have:
// Nowhere | Player | Location(LocationID) | Item(ItemID).
type ParentRef struct {
	Kind     ParentKind
	Location LocationID
	Item     ItemID
}

func Nowhere() ParentRef                 { return ParentRef{Kind: ParentNowhere} }
func InPlayer() ParentRef                { return ParentRef{Kind: ParentPlayer} }
func InLocation(id LocationID) ParentRef { return ParentRef{Kind: ParentLocation, Location: id} }
func InItem(id ItemID) ParentRef         { return ParentRef{Kind: ParentItem, Item: id} }

func (p ParentRef) Equal(o ParentRef) bool {
	if p.Kind != o.Kind {
		return false
	}
	switch p.Kind {
	case ParentLocation:
		return p.Location == o.Location
	case ParentItem:
		return p.Item == o.Item
	default:
		return true
	}
}

// Item is a world entity: an item, piece of scenery, or container. Semantic
// attributes recognized by the engine — name, synonyms, adjectives, parent,
// capacity, size, descriptions, lockedBy, lightSource|lit|on|openable|open|
// transparent|container|surface|takable|wearable|worn|fixed|touched|
// sacred|burnedOut — live in Attributes; unknown attributes are preserved
// verbatim to support per-game extensions.
type Item struct {
	ID         ItemID
	Attributes map[AttributeID]AttributeValue
}

// Exit describes one directional connection out of a Location.
type Exit struct {
	Destination    LocationID
	BlockedMessage string
	RequiredKey    ItemID
	HasRequiredKey bool
	IsOneWay       bool
}

// Location is a room in the world graph.
type Location struct {
	ID          LocationID
	Name        string
	Description string
	Exits       map[DirectionID]Exit
	Attributes  map[AttributeID]AttributeValue
}

// Player holds player-specific runtime state. Inventory is implicit: it is
// the set of items whose Parent is InPlayer(), not stored redundantly here.
type Player struct {
	Location           LocationID
	Health              int
	MaxHealth           int
	Strength            int
	Score               int
	Moves               int
	LastMentionedItem   ItemID
	HasLastMentioned    bool
	LastMentionedItems  map[ItemID]struct{}
}

// GameState (C2) is the persistent, serializable snapshot of the entire
// world: items, locations, player, global flags, time counters, active
// fuses/daemons, pronoun bindings, and score. Mutated only via change.Apply.
type GameState struct {
	Items         map[ItemID]Item
	Locations     map[LocationID]Location
	Player        Player
	Globals       map[string]AttributeValue
	ActiveFuses   map[FuseID]int // remaining turns
	ActiveDaemons map[DaemonID]struct{}
	Turn          int
	RNGSeed       int64
	RNGPosition   int64
	MaxScore      int
	Verbose       bool // true: always show long room descriptions
	Visited       map[LocationID]struct{}
}

// Intent is the parser's raw tokenized understanding of a command line
// before syntax-rule binding.
type Intent struct {
	Verb          string
	DirectWords   []string
	IndirectWords []string
	Preposition   string
	Direction     string
	RawInput      string
}

// Slot is one element of a syntax rule's pattern.
type SlotKind int

const (
	SlotVerb SlotKind = iota
	SlotDirectObject
	SlotIndirectObject
	SlotDirection
	SlotPreposition
	SlotParticle
)

// Slot binds a pattern position; Word is used by SlotPreposition/SlotParticle.
type Slot struct {
	Kind SlotKind
	Word string
}

// Cond is an object-binding condition a syntax rule may require.
type Cond int

const (
	CondHeld Cond = iota
	CondWorn
	CondInScope
	CondIsContainer
	CondIsSurface
	CondIsTakable
	CondIsWeapon
)

// SyntaxRule describes one accepted grammatical shape for a verb.
type SyntaxRule struct {
	Pattern                  []Slot
	DirectObjectConditions   []Cond
	IndirectObjectConditions []Cond
	RequiredPreposition      string
	HasRequiredPreposition   bool
	RequiresLight            bool
}

// Command is the parser's fully resolved output — what the action pipeline
// dispatches.
type Command struct {
	Verb           VerbID
	Rule           SyntaxRule
	HasRule        bool
	DirectObject   ItemID
	HasDirect      bool
	IndirectObject ItemID
	HasIndirect    bool
	Preposition    string
	Direction      DirectionID
	HasDirection   bool
	RawInput       string
}

// ChangeKind discriminates the StateChange sum type (C3).
type ChangeKind int

const (
	ChangeMoveItem ChangeKind = iota
	ChangeSetAttribute
	ChangeClearAttribute
	ChangeSetPlayerLocation
	ChangeAdjustHealth
	ChangeAdjustScore
	ChangeStartFuse
	ChangeCancelFuse
	ChangeStartDaemon
	ChangeStopDaemon
	ChangeSetGlobal
	ChangeSetPronoun
	ChangeIncrementTurn
)

// EntityKind discriminates the Entity sum type a change may target.
type EntityKind int

const (
	EntityPlayer EntityKind = iota
	EntityItem
	EntityLocation
)

// Entity names the thing a change applies to: Player | Item(ItemID) |
// Location(LocationID).
type Entity struct {
	Kind     EntityKind
	Item     ItemID
	Location LocationID
}

func PlayerEntity() Entity                { return Entity{Kind: EntityPlayer} }
func ItemEntity(id ItemID) Entity         { return Entity{Kind: EntityItem, Item: id} }
func LocationEntity(id LocationID) Entity { return Entity{Kind: EntityLocation, Location: id} }

// PronounKind selects which pronoun a SetPronoun change binds.
type PronounKind int

const (
	PronounIt PronounKind = iota
	PronounThem
)

// StateChange is a declarative mutation record — the sole means of evolving
// GameState. Only the fields relevant to Kind are populated; see change.Apply.
type StateChange struct {
	Kind ChangeKind

	// MoveItem
	MoveItemID ItemID
	NewParent  ParentRef

	// SetAttribute / ClearAttribute
	Target    Entity
	Attribute AttributeID
	Value     AttributeValue

	// SetPlayerLocation
	Location LocationID

	// AdjustHealth / AdjustScore
	Delta  int
	ClampLo int
	ClampHi int

	// StartFuse / CancelFuse
	Fuse  FuseID
	Turns int

	// StartDaemon / StopDaemon
	Daemon DaemonID

	// SetGlobal
	GlobalKey string

	// SetPronoun
	Pronoun    PronounKind
	PronounID  ItemID
	PronounSet map[ItemID]struct{}
}

// Event is an out-of-band notification produced by applying a change batch —
// consumed by daemons/handlers that react to what just happened without
// re-entering the pipeline.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of one Engine.Step call. Meta carries a CLI
// meta-command request (save, restore, restart, quit) stripped out of
// Output by the engine loop — verb handlers can only signal these by
// producing a sentinel output line, since they never see the io/fs layers.
type Result struct {
	Changes []StateChange
	Events  []Event
	Output  []string
	Meta    string
	// Vetoed is true when dispatch ended on a Veto outcome: a verb-level
	// failure or an explicit block. No state change reached the caller and
	// the turn must not advance (spec.md §4.5, §8 property 4).
	Vetoed bool
}
