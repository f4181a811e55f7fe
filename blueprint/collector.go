// Package blueprint loads a game's Lua definitions into a compiled,
// immutable form — the Game Blueprint (spec.md §6): a types.GameState
// builder, a vocabulary, an action pipeline, and a fuse/daemon registry.
// The Lua VM is discarded once loading finishes — zero Lua at runtime.
package blueprint

import lua "github.com/yuin/gopher-lua"

// collector accumulates raw Lua tables while the game's .lua files execute,
// before any of it is turned into engine-native types.
type collector struct {
	game      *lua.LTable
	locations []rawLocation
	items     []rawItem
	verbs     []rawVerb
	rules     []rawRule
	fuses     []rawFuse
	daemons   []rawDaemon
	order     int
}

func (c *collector) nextSourceOrder() int {
	c.order++
	return c.order
}

type rawLocation struct {
	id    string
	table *lua.LTable
}

type rawItem struct {
	id    string
	table *lua.LTable
}

type rawVerb struct {
	id    string
	table *lua.LTable
}

// rawRule holds one Rule(id, When{...}, Then{...}) registration. scope is
// filled in afterward from the marker tables a Location/Item's "rules"
// field references — "global", "location:<id>", or "item:<id>".
type rawRule struct {
	id      string
	when    *lua.LTable
	then    *lua.LTable
	scope   string
	order   int
	verb    string
	hasVerb bool
}

type rawFuse struct {
	id    string
	turns int
	table *lua.LTable
}

type rawDaemon struct {
	id    string
	table *lua.LTable
}
