package blueprint

import (
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/questcore/engine/pipeline"
	"github.com/nathoo/questcore/engine/state"
	gtime "github.com/nathoo/questcore/engine/time"
	"github.com/nathoo/questcore/engine/vocab"
	"github.com/nathoo/questcore/types"
)

// Compiled bundles the blueprint-derived collaborators a loaded game needs
// to build an engine.Engine. It carries no narrate.Messenger: a blueprint
// does not override the message catalog.
type Compiled struct {
	Blueprint *state.Blueprint
	Vocab     *vocab.Vocabulary
	Pipeline  *pipeline.Registry
	Time      *gtime.Registry
}

// compile turns a collector's raw Lua tables into engine-native types. The
// Lua VM that produced them is discarded by the caller immediately after.
func compile(coll *collector) (*Compiled, error) {
	if coll.game == nil {
		return nil, &MissingGame{}
	}
	g := compileGame(coll.game)
	if g.start == "" {
		return nil, &MissingStartLocation{}
	}

	bp := &state.Blueprint{
		Title:           g.title,
		AbbrevTitle:     g.abbrev,
		Introduction:    g.intro,
		Release:         g.release,
		MaximumScore:    g.maxScore,
		InitialLocation: types.LocationID(g.start),
		RNGSeed:         g.rngSeed,
		Items:           map[types.ItemID]types.Item{},
		Locations:       map[types.LocationID]types.Location{},
	}

	v := vocab.New()

	for _, raw := range coll.locations {
		loc, scoped := compileLocation(raw)
		bp.Locations[loc.ID] = loc
		markScopedRules(coll, scoped, "location:"+raw.id)
	}

	for _, raw := range coll.items {
		item, def, scoped := compileItem(raw)
		bp.Items[item.ID] = item
		v.AddItem(def)
		markScopedRules(coll, scoped, "item:"+raw.id)
	}

	for _, raw := range coll.verbs {
		vd, err := compileVerb(raw)
		if err != nil {
			return nil, err
		}
		v.AddVerb(vd)
	}

	p := pipeline.NewRegistry()
	for _, raw := range coll.rules {
		rs := compileRule(raw)
		fn := buildHandler(rs)
		switch {
		case rs.scope == "global":
			p.RegisterGlobalHandler(types.VerbID(rs.verb), rs.hasVerb, rs.priority, fn)
		case strings.HasPrefix(rs.scope, "location:"):
			id := types.LocationID(strings.TrimPrefix(rs.scope, "location:"))
			p.RegisterLocationHandler(id, types.VerbID(rs.verb), rs.hasVerb, rs.priority, fn)
		case strings.HasPrefix(rs.scope, "item:"):
			id := types.ItemID(strings.TrimPrefix(rs.scope, "item:"))
			p.RegisterItemHandler(id, types.VerbID(rs.verb), rs.hasVerb, rs.priority, fn)
		}
	}

	t := gtime.NewRegistry()
	for _, raw := range coll.fuses {
		effs := compileEffects(getTable(raw.table, "effects"))
		t.RegisterFuse(types.FuseID(raw.id), buildTimerFunc(effs))
	}
	for _, raw := range coll.daemons {
		effs := compileEffects(getTable(raw.table, "effects"))
		t.RegisterDaemon(types.DaemonID(raw.id), buildTimerFunc(effs))
	}

	return &Compiled{Blueprint: bp, Vocab: v, Pipeline: p, Time: t}, nil
}

// markScopedRules narrows the scope of every rule named in ids (collected
// from a Location/Item's "rules" array of Rule() marker tables) away from
// the "global" default it was registered with.
func markScopedRules(coll *collector, ids []string, scope string) {
	if len(ids) == 0 {
		return
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	for i := range coll.rules {
		if want[coll.rules[i].id] {
			coll.rules[i].scope = scope
		}
	}
}

// ---- Game ----

type gameSpec struct {
	title, abbrev, intro, release string
	maxScore                      int
	start                         string
	rngSeed                       int64
}

func compileGame(tbl *lua.LTable) gameSpec {
	seed := int64(getInt(tbl, "rngSeed"))
	if seed == 0 {
		seed = 1
	}
	return gameSpec{
		title:    getString(tbl, "title"),
		abbrev:   getString(tbl, "abbreviatedTitle"),
		intro:    getString(tbl, "introduction"),
		release:  getString(tbl, "release"),
		maxScore: getInt(tbl, "maximumScore"),
		start:    getString(tbl, "start"),
		rngSeed:  seed,
	}
}

// ---- Locations ----

func compileLocation(raw rawLocation) (types.Location, []string) {
	tbl := raw.table
	attrs := map[types.AttributeID]types.AttributeValue{}
	if getBool(tbl, "inherentlyLit", false) {
		attrs["inherentlyLit"] = types.BoolAttr(true)
	}
	loc := types.Location{
		ID:          types.LocationID(raw.id),
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		Exits:       compileExits(getTable(tbl, "exits")),
		Attributes:  attrs,
	}
	return loc, scopedRuleIDs(getTable(tbl, "rules"))
}

func compileExits(tbl *lua.LTable) map[types.DirectionID]types.Exit {
	exits := map[types.DirectionID]types.Exit{}
	if tbl == nil {
		return exits
	}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		dir := types.DirectionID(string(ks))
		switch val := v.(type) {
		case lua.LString:
			exits[dir] = types.Exit{Destination: types.LocationID(string(val))}
		case *lua.LTable:
			ex := types.Exit{Destination: types.LocationID(getString(val, "to"))}
			if key := getString(val, "key"); key != "" {
				ex.RequiredKey = types.ItemID(key)
				ex.HasRequiredKey = true
			}
			ex.BlockedMessage = getString(val, "blocked")
			ex.IsOneWay = getBool(val, "oneWay", false)
			exits[dir] = ex
		}
	})
	return exits
}

func scopedRuleIDs(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var ids []string
	tbl.ForEach(func(_, v lua.LValue) {
		if marker, ok := v.(*lua.LTable); ok {
			if id := getString(marker, "__rule_id"); id != "" {
				ids = append(ids, id)
			}
		}
	})
	return ids
}

// ---- Items ----

// itemBoolFlags are the boolean/presence attributes a blueprint's Item{...}
// table may set directly, mirroring spec.md §3's recognized attribute list.
var itemBoolFlags = []string{
	"takable", "wearable", "worn", "container", "open", "openable",
	"transparent", "surface", "lightSource", "lit", "on", "burnedOut",
	"fixed", "touched", "sacred", "scenery",
}

func compileItem(raw rawItem) (types.Item, vocab.ItemDef, []string) {
	tbl := raw.table
	attrs := map[types.AttributeID]types.AttributeValue{}

	name := getString(tbl, "name")
	if name == "" {
		name = raw.id
	}
	attrs["name"] = types.StringAttr(name)

	if desc := getString(tbl, "description"); desc != "" {
		attrs["description"] = types.StringAttr(desc)
	}
	if lockedBy := getString(tbl, "lockedBy"); lockedBy != "" {
		attrs["lockedBy"] = types.StringAttr(lockedBy)
	}
	for _, flag := range itemBoolFlags {
		if getBool(tbl, flag, false) {
			attrs[types.AttributeID(flag)] = types.BoolAttr(true)
		}
	}
	if hasNumberField(tbl, "capacity") {
		attrs["capacity"] = types.IntAttr(getInt(tbl, "capacity"))
	}
	if hasNumberField(tbl, "size") {
		attrs["size"] = types.IntAttr(getInt(tbl, "size"))
	}
	attrs["parent"] = types.ParentAttr(parseDest(getStringDefault(tbl, "parent", "player")))

	def := vocab.ItemDef{
		ID:         types.ItemID(raw.id),
		Name:       name,
		Synonyms:   tableToStringSlice(getTable(tbl, "synonyms")),
		Adjectives: tableToStringSlice(getTable(tbl, "adjectives")),
	}

	item := types.Item{ID: types.ItemID(raw.id), Attributes: attrs}
	return item, def, scopedRuleIDs(getTable(tbl, "rules"))
}

// ---- Verbs ----

func compileVerb(raw rawVerb) (vocab.VerbDef, error) {
	tbl := raw.table
	def := vocab.VerbDef{ID: types.VerbID(raw.id), Synonyms: tableToStringSlice(getTable(tbl, "synonyms"))}
	from := "verb " + raw.id
	for _, st := range tableOfTables(getTable(tbl, "syntax")) {
		rule, err := compileSyntaxRule(st, from)
		if err != nil {
			return def, err
		}
		def.Rules = append(def.Rules, rule)
	}
	return def, nil
}

func compileSyntaxRule(tbl *lua.LTable, from string) (types.SyntaxRule, error) {
	var pattern []types.Slot
	for _, w := range tableToStringSlice(getTable(tbl, "pattern")) {
		switch w {
		case "verb":
			pattern = append(pattern, types.Slot{Kind: types.SlotVerb})
		case "direct":
			pattern = append(pattern, types.Slot{Kind: types.SlotDirectObject})
		case "indirect":
			pattern = append(pattern, types.Slot{Kind: types.SlotIndirectObject})
		case "direction", "dir":
			pattern = append(pattern, types.Slot{Kind: types.SlotDirection})
		default:
			pattern = append(pattern, types.Slot{Kind: types.SlotPreposition, Word: w})
		}
	}
	directConds, err := compileConds(getTable(tbl, "directConditions"), from+" directConditions")
	if err != nil {
		return types.SyntaxRule{}, err
	}
	indirectConds, err := compileConds(getTable(tbl, "indirectConditions"), from+" indirectConditions")
	if err != nil {
		return types.SyntaxRule{}, err
	}
	return types.SyntaxRule{
		Pattern:                  pattern,
		DirectObjectConditions:   directConds,
		IndirectObjectConditions: indirectConds,
		RequiresLight:            getBool(tbl, "requiresLight", true),
	}, nil
}

func compileConds(tbl *lua.LTable, from string) ([]types.Cond, error) {
	var out []types.Cond
	for _, w := range tableToStringSlice(tbl) {
		cond, ok := condFromWord(w)
		if !ok {
			return nil, &UnknownCondition{From: from, Word: w}
		}
		out = append(out, cond)
	}
	return out, nil
}

func condFromWord(word string) (types.Cond, bool) {
	switch word {
	case "held":
		return types.CondHeld, true
	case "worn":
		return types.CondWorn, true
	case "inScope":
		return types.CondInScope, true
	case "container":
		return types.CondIsContainer, true
	case "surface":
		return types.CondIsSurface, true
	case "takable":
		return types.CondIsTakable, true
	case "weapon":
		return types.CondIsWeapon, true
	default:
		return types.Cond(0), false
	}
}

// ---- Rules ----

func compileRule(raw rawRule) ruleSpec {
	verb := getString(raw.when, "verb")
	return ruleSpec{
		id:         raw.id,
		scope:      raw.scope,
		verb:       verb,
		hasVerb:    verb != "",
		priority:   getInt(raw.when, "priority"),
		conditions: compileConditions(getTable(raw.when, "conditions")),
		effects:    compileEffects(raw.then),
	}
}

// ---- parent-reference parsing ----

func parseDest(s string) types.ParentRef {
	switch {
	case s == "" || s == "player":
		return types.InPlayer()
	case strings.HasPrefix(s, "location:"):
		return types.InLocation(types.LocationID(strings.TrimPrefix(s, "location:")))
	case strings.HasPrefix(s, "item:"):
		return types.InItem(types.ItemID(strings.TrimPrefix(s, "item:")))
	default:
		return types.InLocation(types.LocationID(s))
	}
}

// ---- Lua table helpers ----

func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if tbl == nil {
		return nil
	}
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

func getString(tbl *lua.LTable, key string) string {
	if tbl == nil {
		return ""
	}
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func getStringDefault(tbl *lua.LTable, key, def string) string {
	if s := getString(tbl, key); s != "" {
		return s
	}
	return def
}

func getBool(tbl *lua.LTable, key string, def bool) bool {
	if tbl == nil {
		return def
	}
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(b)
	}
	return def
}

func getInt(tbl *lua.LTable, key string) int {
	if tbl == nil {
		return 0
	}
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

func hasNumberField(tbl *lua.LTable, key string) bool {
	if tbl == nil {
		return false
	}
	_, ok := tbl.RawGetString(key).(lua.LNumber)
	return ok
}

func tableToStringSlice(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	n := tbl.MaxN()
	for i := 1; i <= n; i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

func tableOfTables(tbl *lua.LTable) []*lua.LTable {
	if tbl == nil {
		return nil
	}
	var out []*lua.LTable
	n := tbl.MaxN()
	for i := 1; i <= n; i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, t)
		}
	}
	return out
}

// toGoValue unwraps one Lua scalar into its plain Go equivalent, for effect
// and condition parameter maps. Numbers come through as int (gopher-lua's
// LNumber is a float64 under the hood, but every parameter this interpreter
// reads — deltas, turns, flag values — is authored as a whole number).
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LString:
		return string(val)
	case lua.LNumber:
		return int(val)
	case lua.LBool:
		return bool(val)
	default:
		return nil
	}
}
