// Package pipeline implements the action pipeline (spec.md §4.5): the
// per-command dispatch of before/on/after hooks across global, location, and
// item handlers, ending in a verb's built-in action and the batch of state
// changes it produces.
//
// Handler lookup and ranking is grounded on the teacher's engine/rules
// bucket-and-specificity model (collect → filter → rank → select), adapted
// from a data-driven Effect matcher to a registry of Go closures, since
// spec.md's handlers are closures a blueprint registers, not declarative
// rule tables.
package pipeline

import (
	"sort"

	"github.com/nathoo/questcore/engine/change"
	"github.com/nathoo/questcore/types"
)

// Outcome reports how a handler disposed of a command.
type Outcome int

const (
	// Pass means the handler declined to act; dispatch continues down the
	// chain (location → direct item → indirect item → global → verb).
	Pass Outcome = iota
	// Handled means the handler fully processed the command; dispatch stops.
	Handled
	// Veto means the handler blocks the command outright (e.g. "the urn is
	// too heavy"); dispatch stops and no further handler — including the
	// built-in verb action — runs.
	Veto
)

// HandlerFunc is one registered closure. It may append StateChanges and
// output lines; its Outcome determines whether dispatch continues.
type HandlerFunc func(s *types.GameState, cmd types.Command) (Outcome, []types.StateChange, []string)

// handlerEntry is one ranked registration within a bucket.
type handlerEntry struct {
	verb        types.VerbID
	hasVerb     bool
	priority    int
	sourceOrder int
	fn          HandlerFunc
}

// Registry holds every registered handler plus the built-in verb actions.
// Grounded on the teacher's Defs.Rooms[x].Rules / Entities[x].Rules /
// GlobalRules buckets (engine/rules/rules.go's collect()).
type Registry struct {
	itemHandlers     map[types.ItemID][]handlerEntry
	locationHandlers map[types.LocationID][]handlerEntry
	globalHandlers   []handlerEntry
	verbs            map[types.VerbID]HandlerFunc
	beforeTurn       []HandlerFunc
	afterTurn        []HandlerFunc
	nextSourceOrder  int
}

// NewRegistry returns an empty registry with the built-in verbs installed.
func NewRegistry() *Registry {
	r := &Registry{
		itemHandlers:     map[types.ItemID][]handlerEntry{},
		locationHandlers: map[types.LocationID][]handlerEntry{},
		verbs:            map[types.VerbID]HandlerFunc{},
	}
	installBuiltinVerbs(r)
	return r
}

// RegisterItemHandler installs a handler scoped to one item, optionally
// restricted to one verb (hasVerb=false matches every verb directed at the
// item). priority breaks ties among handlers of equal specificity within a
// bucket; registration order is the final tie-break.
func (r *Registry) RegisterItemHandler(id types.ItemID, verb types.VerbID, hasVerb bool, priority int, fn HandlerFunc) {
	r.itemHandlers[id] = append(r.itemHandlers[id], handlerEntry{
		verb: verb, hasVerb: hasVerb, priority: priority, sourceOrder: r.nextOrder(), fn: fn,
	})
}

func (r *Registry) RegisterLocationHandler(id types.LocationID, verb types.VerbID, hasVerb bool, priority int, fn HandlerFunc) {
	r.locationHandlers[id] = append(r.locationHandlers[id], handlerEntry{
		verb: verb, hasVerb: hasVerb, priority: priority, sourceOrder: r.nextOrder(), fn: fn,
	})
}

func (r *Registry) RegisterGlobalHandler(verb types.VerbID, hasVerb bool, priority int, fn HandlerFunc) {
	r.globalHandlers = append(r.globalHandlers, handlerEntry{
		verb: verb, hasVerb: hasVerb, priority: priority, sourceOrder: r.nextOrder(), fn: fn,
	})
}

// RegisterVerb installs (or overrides) a verb's built-in action — the last
// link in the chain, run only if nothing upstream Handled or Vetoed.
func (r *Registry) RegisterVerb(verb types.VerbID, fn HandlerFunc) {
	r.verbs[verb] = fn
}

// RegisterBeforeTurn / RegisterAfterTurn install whole-turn hooks that run
// once per command, before and after the rest of the chain respectively.
func (r *Registry) RegisterBeforeTurn(fn HandlerFunc) { r.beforeTurn = append(r.beforeTurn, fn) }
func (r *Registry) RegisterAfterTurn(fn HandlerFunc)  { r.afterTurn = append(r.afterTurn, fn) }

func (r *Registry) nextOrder() int {
	r.nextSourceOrder++
	return r.nextSourceOrder
}

// Dispatch runs one command through the full chain (spec.md §4.5):
// beforeTurn hooks → location handler → item handlers (direct then
// indirect) → verb's built-in action → afterTurn hooks + pronoun update.
// Each stage's StateChange batch is applied immediately so later stages see
// committed state. A batch that violates an invariant is rejected whole by
// change.Apply and Dispatch returns the error; batches applied by earlier
// stages remain in *s (Engine.Step restores the pre-command state).
func (r *Registry) Dispatch(s *types.GameState, cmd types.Command) (types.Result, error) {
	result := types.Result{}

	run := func(fn HandlerFunc) (Outcome, error) {
		outcome, changes, out := fn(s, cmd)
		result.Output = append(result.Output, out...)
		if len(changes) == 0 {
			return outcome, nil
		}
		events, err := change.Apply(s, changes)
		if err != nil {
			return outcome, err
		}
		result.Changes = append(result.Changes, changes...)
		result.Events = append(result.Events, events...)
		return outcome, nil
	}

	for _, fn := range r.beforeTurn {
		outcome, err := run(fn)
		if err != nil {
			return result, err
		}
		if outcome == Veto {
			result.Vetoed = true
			return result, nil
		}
		if outcome == Handled {
			return result, nil
		}
	}

	chain := r.bucketFor(s, cmd)
	for _, entry := range chain {
		outcome, err := run(entry.fn)
		if err != nil {
			return result, err
		}
		if outcome == Veto {
			result.Vetoed = true
			return result, nil
		}
		if outcome == Handled {
			return r.runAfterTurn(s, cmd, result, run)
		}
	}

	if verbFn, ok := r.verbs[cmd.Verb]; ok {
		outcome, err := run(verbFn)
		if err != nil {
			return result, err
		}
		if outcome == Veto {
			result.Vetoed = true
			return result, nil
		}
	}

	return r.runAfterTurn(s, cmd, result, run)
}

func (r *Registry) runAfterTurn(s *types.GameState, cmd types.Command, result types.Result, run func(HandlerFunc) (Outcome, error)) (types.Result, error) {
	for _, fn := range r.afterTurn {
		outcome, err := run(fn)
		if err != nil {
			return result, err
		}
		if outcome == Veto {
			result.Vetoed = true
			return result, nil
		}
	}

	pronoun := pronounUpdate(cmd)
	if len(pronoun) > 0 {
		events, err := change.Apply(s, pronoun)
		if err != nil {
			return result, err
		}
		result.Changes = append(result.Changes, pronoun...)
		result.Events = append(result.Events, events...)
	}
	return result, nil
}

// pronounUpdate binds "it" to a command's direct object and "them" to the
// direct+indirect pair, per spec.md §4.2's pronoun-tracking rule.
func pronounUpdate(cmd types.Command) []types.StateChange {
	var changes []types.StateChange
	if cmd.HasDirect {
		changes = append(changes, types.StateChange{
			Kind: types.ChangeSetPronoun, Pronoun: types.PronounIt, PronounID: cmd.DirectObject,
		})
	}
	if cmd.HasDirect && cmd.HasIndirect {
		set := map[types.ItemID]struct{}{cmd.DirectObject: {}, cmd.IndirectObject: {}}
		changes = append(changes, types.StateChange{Kind: types.ChangeSetPronoun, Pronoun: types.PronounThem, PronounSet: set})
	}
	return changes
}

// bucketFor collects and ranks the location/item handler chain for a
// command: location handler first, then the direct object's handlers, then
// the indirect object's — mirroring the teacher's room → target → object
// bucket order, narrowed to the two object slots this Command actually has.
func (r *Registry) bucketFor(s *types.GameState, cmd types.Command) []handlerEntry {
	var chain []handlerEntry
	chain = append(chain, rank(r.locationHandlers[s.Player.Location], cmd.Verb)...)
	if cmd.HasDirect {
		chain = append(chain, rank(r.itemHandlers[cmd.DirectObject], cmd.Verb)...)
	}
	if cmd.HasIndirect {
		chain = append(chain, rank(r.itemHandlers[cmd.IndirectObject], cmd.Verb)...)
	}
	chain = append(chain, rank(r.globalHandlers, cmd.Verb)...)
	return chain
}

// rank filters a bucket to entries matching the verb (or verb-agnostic
// entries) and orders verb-specific matches before verb-agnostic ones, then
// by priority (desc), then by registration order (asc) — the teacher's
// specificity → priority → source-order tie-break.
func rank(entries []handlerEntry, verb types.VerbID) []handlerEntry {
	var matched []handlerEntry
	for _, e := range entries {
		if e.hasVerb && e.verb != verb {
			continue
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		si, sj := specificity(matched[i]), specificity(matched[j])
		if si != sj {
			return si > sj
		}
		if matched[i].priority != matched[j].priority {
			return matched[i].priority > matched[j].priority
		}
		return matched[i].sourceOrder < matched[j].sourceOrder
	})
	return matched
}

func specificity(e handlerEntry) int {
	if e.hasVerb {
		return 1
	}
	return 0
}
