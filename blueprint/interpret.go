package blueprint

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/questcore/engine/change"
	"github.com/nathoo/questcore/engine/pipeline"
	"github.com/nathoo/questcore/engine/state"
	"github.com/nathoo/questcore/types"
)

// condSpec/effectSpec are the compiled, declarative form of a Rule's When{}
// condition list and Then{} effect list — still just tagged data, same as
// the Lua table it came from. buildHandler/buildTimerFunc are what turn
// this data into the Go closures the pipeline and time registries run.
type condSpec struct {
	kind   string
	params map[string]any
	inner  *condSpec
}

type effectSpec struct {
	kind   string
	params map[string]any
}

// ruleSpec is a compiled Rule() registration, ready to become a
// pipeline.HandlerFunc.
type ruleSpec struct {
	id         string
	scope      string
	verb       string
	hasVerb    bool
	priority   int
	conditions []condSpec
	effects    []effectSpec
}

func compileCondition(tbl *lua.LTable) condSpec {
	kind := getString(tbl, "type")
	if kind == "not" {
		var inner *condSpec
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			c := compileCondition(innerTbl)
			inner = &c
		}
		return condSpec{kind: "not", inner: inner}
	}
	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
			params[string(ks)] = toGoValue(v)
		}
	})
	return condSpec{kind: kind, params: params}
}

func compileConditions(tbl *lua.LTable) []condSpec {
	if tbl == nil {
		return nil
	}
	var out []condSpec
	for _, t := range tableOfTables(tbl) {
		out = append(out, compileCondition(t))
	}
	return out
}

func compileEffects(tbl *lua.LTable) []effectSpec {
	if tbl == nil {
		return nil
	}
	var out []effectSpec
	for _, t := range tableOfTables(tbl) {
		kind := getString(t, "type")
		params := map[string]any{}
		t.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
				params[string(ks)] = toGoValue(v)
			}
		})
		out = append(out, effectSpec{kind: kind, params: params})
	}
	return out
}

func conditionsMet(s *types.GameState, c condSpec) bool {
	switch c.kind {
	case "held":
		id := types.ItemID(asString(c.params["item"]))
		return state.Parent(s, id).Kind == types.ParentPlayer
	case "has_flag":
		id := types.ItemID(asString(c.params["item"]))
		flag := types.AttributeID(asString(c.params["flag"]))
		return state.HasFlag(s, id, flag)
	case "global_flag":
		key := asString(c.params["key"])
		return s.Globals[key].IsTruthy()
	case "not":
		if c.inner == nil {
			return true
		}
		return !conditionsMet(s, *c.inner)
	default:
		return true
	}
}

func allConditionsMet(s *types.GameState, conds []condSpec) bool {
	for _, c := range conds {
		if !conditionsMet(s, c) {
			return false
		}
	}
	return true
}

// buildEffects turns a compiled effect list into a StateChange batch, output
// lines, and an Outcome — Veto only if one of the effects is Veto{}.
func buildEffects(effs []effectSpec) ([]types.StateChange, []string, pipeline.Outcome) {
	var changes []types.StateChange
	var out []string
	outcome := pipeline.Handled

	for _, e := range effs {
		switch e.kind {
		case "say":
			out = append(out, asString(e.params["text"]))
		case "set_flag":
			changes = append(changes, types.StateChange{
				Kind: types.ChangeSetAttribute, Target: types.ItemEntity(types.ItemID(asString(e.params["item"]))),
				Attribute: types.AttributeID(asString(e.params["flag"])), Value: types.BoolAttr(asBool(e.params["value"])),
			})
		case "clear_flag":
			changes = append(changes, types.StateChange{
				Kind: types.ChangeClearAttribute, Target: types.ItemEntity(types.ItemID(asString(e.params["item"]))),
				Attribute: types.AttributeID(asString(e.params["flag"])),
			})
		case "set_location_flag":
			changes = append(changes, types.StateChange{
				Kind: types.ChangeSetAttribute, Target: types.LocationEntity(types.LocationID(asString(e.params["location"]))),
				Attribute: types.AttributeID(asString(e.params["flag"])), Value: types.BoolAttr(asBool(e.params["value"])),
			})
		case "clear_location_flag":
			changes = append(changes, types.StateChange{
				Kind: types.ChangeClearAttribute, Target: types.LocationEntity(types.LocationID(asString(e.params["location"]))),
				Attribute: types.AttributeID(asString(e.params["flag"])),
			})
		case "move_item":
			changes = append(changes, types.StateChange{
				Kind: types.ChangeMoveItem, MoveItemID: types.ItemID(asString(e.params["item"])),
				NewParent: parseDest(asString(e.params["dest"])),
			})
		case "adjust_score":
			changes = append(changes, types.StateChange{Kind: types.ChangeAdjustScore, Delta: asInt(e.params["delta"])})
		case "adjust_health":
			changes = append(changes, types.StateChange{
				Kind: types.ChangeAdjustHealth, Target: types.PlayerEntity(), Delta: asInt(e.params["delta"]),
			})
		case "set_global":
			changes = append(changes, types.StateChange{
				Kind: types.ChangeSetGlobal, GlobalKey: asString(e.params["key"]), Value: toAttributeValue(e.params["value"]),
			})
		case "start_fuse":
			changes = append(changes, types.StateChange{
				Kind: types.ChangeStartFuse, Fuse: types.FuseID(asString(e.params["fuse"])), Turns: asInt(e.params["turns"]),
			})
		case "cancel_fuse":
			changes = append(changes, types.StateChange{Kind: types.ChangeCancelFuse, Fuse: types.FuseID(asString(e.params["fuse"]))})
		case "start_daemon":
			changes = append(changes, types.StateChange{Kind: types.ChangeStartDaemon, Daemon: types.DaemonID(asString(e.params["daemon"]))})
		case "stop_daemon":
			changes = append(changes, types.StateChange{Kind: types.ChangeStopDaemon, Daemon: types.DaemonID(asString(e.params["daemon"]))})
		case "veto":
			outcome = pipeline.Veto
		}
	}
	return changes, out, outcome
}

// buildHandler adapts a compiled rule into a pipeline.HandlerFunc. Verb
// filtering already happened at registration (Register*Handler's
// verb/hasVerb params), so this only re-checks the rule's own condition list.
func buildHandler(rs ruleSpec) pipeline.HandlerFunc {
	return func(s *types.GameState, cmd types.Command) (pipeline.Outcome, []types.StateChange, []string) {
		if !allConditionsMet(s, rs.conditions) {
			return pipeline.Pass, nil, nil
		}
		changes, out, outcome := buildEffects(rs.effects)
		return outcome, changes, out
	}
}

// buildTimerFunc adapts a fuse's or daemon's compiled effect list into a
// gtime.FuseFunc/DaemonFunc (both share this signature). Unlike a rule
// handler's StateChange batch — which the pipeline applies on the caller's
// behalf — a timer must apply its own batch, since change.Apply is the only
// way to mutate GameState and timers have no pipeline stage wrapping them.
func buildTimerFunc(effs []effectSpec) func(s *types.GameState) ([]types.Event, []string) {
	return func(s *types.GameState) ([]types.Event, []string) {
		changes, out, _ := buildEffects(effs)
		if len(changes) == 0 {
			return nil, out
		}
		events, err := change.Apply(s, changes)
		if err != nil {
			return nil, append(out, err.Error())
		}
		return events, out
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v any) int {
	n, _ := v.(int)
	return n
}

func toAttributeValue(v any) types.AttributeValue {
	switch val := v.(type) {
	case bool:
		return types.BoolAttr(val)
	case string:
		return types.StringAttr(val)
	case int:
		return types.IntAttr(val)
	default:
		return types.AttributeValue{}
	}
}
